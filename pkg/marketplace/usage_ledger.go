package marketplace

import (
	"context"
	"math"
	"time"

	sync "github.com/bacalhau-project/golang-mutex-tracer"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/gridpool-project/gridpool/pkg/models"
)

type UsageLedgerParams struct {
	// Store, when set, persists factors across restarts. The ledger loads
	// whatever the store holds at construction and writes through on every
	// accepted observation.
	Store FactorStore
}

// UsageLedger keeps each provider's usage factor: the multiplicative
// adjustment applied to that provider's declared performance, derived from
// observed versus reference resource consumption. The most recent
// observation replaces the previous factor outright, since a provider's
// performance may legitimately drift with load. Factors are keyed by
// provider, not by task, and persist across tasks.
type UsageLedger struct {
	factors map[string]float64
	store   FactorStore
	mu      sync.RWMutex
}

func NewUsageLedger(ctx context.Context, params UsageLedgerParams) (*UsageLedger, error) {
	ledger := &UsageLedger{
		factors: make(map[string]float64),
		store:   params.Store,
	}
	ledger.mu.EnableTracerWithOpts(sync.Opts{
		Threshold: 10 * time.Millisecond,
		Id:        "UsageLedger.mu",
	})
	if params.Store != nil {
		persisted, err := params.Store.UsageFactors(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "loading persisted usage factors")
		}
		for providerID, factor := range persisted {
			ledger.factors[providerID] = factor
		}
	}
	return ledger, nil
}

// Factor returns the provider's current usage factor, or fallback if the
// provider has never been observed. It sits on the resolution hot path and
// only takes the read lock.
func (l *UsageLedger) Factor(ctx context.Context, providerID string, fallback float64) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if factor, ok := l.factors[providerID]; ok {
		return factor
	}
	return fallback
}

// RecordUsage replaces the provider's factor with observed/reference. A
// non-positive or non-finite ratio would poison every later effective price
// computation, so such observations are rejected and the prior factor kept.
// Re-reporting the same observation is idempotent: the update replaces
// rather than accumulates.
func (l *UsageLedger) RecordUsage(ctx context.Context, providerID string, observed, reference float64) error {
	if reference <= 0 || observed <= 0 {
		return NewErrDegenerateUsage(providerID, observed, reference)
	}
	factor := observed / reference
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		return NewErrDegenerateUsage(providerID, observed, reference)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.factors[providerID] = factor
	if l.store != nil {
		if err := l.store.UpsertUsageFactor(ctx, providerID, factor); err != nil {
			return errors.Wrapf(err, "persisting usage factor for provider %s", providerID)
		}
	}

	log.Ctx(ctx).Debug().
		Str("ProviderID", providerID).
		Float64("Factor", factor).
		Msg("Usage factor updated")
	return nil
}

// Reset clears all recorded factors, in memory and in the store if present.
func (l *UsageLedger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.factors = make(map[string]float64)
	if l.store != nil {
		if err := l.store.DeleteUsageFactors(ctx); err != nil {
			return errors.Wrap(err, "clearing persisted usage factors")
		}
	}
	return nil
}

// knownFactor reports whether the provider has a recorded factor. Used in
// tests to distinguish a neutral default from a recorded 1.0.
func (l *UsageLedger) knownFactor(providerID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.factors[providerID]
	return ok
}

// neutralFactor is what Factor callers should pass when they have no better
// fallback of their own.
const neutralFactor = models.DefaultUsageFactor
