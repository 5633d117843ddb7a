package node

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/gridpool-project/gridpool/pkg/config"
	"github.com/gridpool-project/gridpool/pkg/marketplace"
	"github.com/gridpool-project/gridpool/pkg/marketstore"
)

// Marketplace owns the requestor marketplace for the lifetime of the node
// process: the strategy registry, both strategy variants and, when
// configured, the sqlite store backing the usage ledger. Callers hold it by
// reference, so marketplace state is never hidden class-level globals.
type Marketplace struct {
	Registry *marketplace.Registry
	Store    *marketstore.Store

	defaultStrategy string
}

func NewMarketplace(ctx context.Context, cfg config.MarketplaceConfig) (*Marketplace, error) {
	var store *marketstore.Store
	var factorStore marketplace.FactorStore
	if cfg.StorePath != "" {
		var err error
		store, err = marketstore.NewStore(marketstore.StoreParams{Path: cfg.StorePath})
		if err != nil {
			return nil, errors.Wrap(err, "opening market store")
		}
		factorStore = store
	}

	policy := marketplace.InvalidOfferPolicy(cfg.InvalidOfferPolicy)
	if cfg.InvalidOfferPolicy != "" && !policy.IsValid() {
		return nil, errors.Errorf("unknown invalid-offer policy: %q", cfg.InvalidOfferPolicy)
	}

	usageFactorStrategy, err := marketplace.NewUsageFactorStrategy(ctx, marketplace.UsageFactorStrategyParams{
		UsageBenchmark:     cfg.UsageBenchmark,
		InvalidOfferPolicy: policy,
		FactorStore:        factorStore,
	})
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	registry := marketplace.NewRegistry(map[string]marketplace.RequestorMarketStrategy{
		marketplace.StrategyNamePooling: marketplace.NewPoolingStrategy(marketplace.PoolingStrategyParams{
			UsageBenchmark: cfg.UsageBenchmark,
		}),
		marketplace.StrategyNameUsageFactor: usageFactorStrategy,
	})

	defaultStrategy := cfg.DefaultStrategy
	if defaultStrategy == "" {
		defaultStrategy = marketplace.StrategyNameUsageFactor
	}
	if !registry.Has(ctx, defaultStrategy) {
		if store != nil {
			store.Close()
		}
		return nil, marketplace.NewErrStrategyNotFound(defaultStrategy)
	}

	log.Ctx(ctx).Info().
		Float64("UsageBenchmark", cfg.UsageBenchmark).
		Str("DefaultStrategy", defaultStrategy).
		Bool("Persistent", store != nil).
		Msg("Requestor marketplace initialized")

	return &Marketplace{
		Registry:        registry,
		Store:           store,
		defaultStrategy: defaultStrategy,
	}, nil
}

// StrategyForTask returns the strategy registered under name, falling back
// to the configured default when the task type declares none.
func (m *Marketplace) StrategyForTask(ctx context.Context, name string) (marketplace.RequestorMarketStrategy, error) {
	if name == "" {
		name = m.defaultStrategy
	}
	return m.Registry.Get(ctx, name)
}

func (m *Marketplace) Close() error {
	if m.Store != nil {
		return m.Store.Close()
	}
	return nil
}
