package marketplace

import (
	"context"
	"strings"
	"time"

	sync "github.com/bacalhau-project/golang-mutex-tracer"
	"golang.org/x/exp/maps"
)

// Strategy names understood by the default registry. The task definition
// loader supplies one of these per task type.
const (
	StrategyNamePooling     = "pooling"
	StrategyNameUsageFactor = "usage-factor"
)

// Registry maps a task's declared market-strategy identifier to the
// strategy implementation it should use. Pure dispatch: it holds no
// marketplace state of its own.
type Registry struct {
	strategies map[string]RequestorMarketStrategy
	mu         sync.RWMutex
}

func NewRegistry(strategies map[string]RequestorMarketStrategy) *Registry {
	registry := &Registry{
		strategies: make(map[string]RequestorMarketStrategy, len(strategies)),
	}
	registry.mu.EnableTracerWithOpts(sync.Opts{
		Threshold: 10 * time.Millisecond,
		Id:        "Registry.mu",
	})
	for name, strategy := range strategies {
		registry.strategies[sanitizeName(name)] = strategy
	}
	return registry
}

func (r *Registry) Add(name string, strategy RequestorMarketStrategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[sanitizeName(name)] = strategy
}

// Get returns the strategy registered under name.
func (r *Registry) Get(ctx context.Context, name string) (RequestorMarketStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	strategy, ok := r.strategies[sanitizeName(name)]
	if !ok {
		return nil, NewErrStrategyNotFound(name)
	}
	return strategy, nil
}

func (r *Registry) Has(ctx context.Context, name string) bool {
	_, err := r.Get(ctx, name)
	return err == nil
}

func (r *Registry) Keys(ctx context.Context) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Keys(r.strategies)
}

func sanitizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
