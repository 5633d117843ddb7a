//go:build unit || !integration

package marketplace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridpool-project/gridpool/pkg/logger"
)

func TestRegistryDispatch(t *testing.T) {
	logger.ConfigureTestLogging(t)
	ctx := context.Background()

	pooling := NewPoolingStrategy(PoolingStrategyParams{})
	usageFactor, err := NewUsageFactorStrategy(ctx, UsageFactorStrategyParams{})
	require.NoError(t, err)

	registry := NewRegistry(map[string]RequestorMarketStrategy{
		StrategyNamePooling:     pooling,
		StrategyNameUsageFactor: usageFactor,
	})

	got, err := registry.Get(ctx, StrategyNamePooling)
	require.NoError(t, err)
	require.Same(t, RequestorMarketStrategy(pooling), got)

	got, err = registry.Get(ctx, StrategyNameUsageFactor)
	require.NoError(t, err)
	require.Same(t, RequestorMarketStrategy(usageFactor), got)

	require.True(t, registry.Has(ctx, StrategyNamePooling))
	require.ElementsMatch(t, []string{StrategyNamePooling, StrategyNameUsageFactor}, registry.Keys(ctx))
}

func TestRegistryNameSanitization(t *testing.T) {
	logger.ConfigureTestLogging(t)
	ctx := context.Background()

	registry := NewRegistry(map[string]RequestorMarketStrategy{
		"Pooling": NewPoolingStrategy(PoolingStrategyParams{}),
	})

	require.True(t, registry.Has(ctx, "pooling"))
	require.True(t, registry.Has(ctx, " POOLING "))
}

func TestRegistryUnknownStrategy(t *testing.T) {
	logger.ConfigureTestLogging(t)
	ctx := context.Background()

	registry := NewRegistry(nil)
	_, err := registry.Get(ctx, "no-such-strategy")
	require.Error(t, err)
	require.IsType(t, ErrStrategyNotFound{}, err)
	require.False(t, registry.Has(ctx, "no-such-strategy"))

	registry.Add("late", NewPoolingStrategy(PoolingStrategyParams{}))
	require.True(t, registry.Has(ctx, "late"))
}
