package marketplace

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/gridpool-project/gridpool/pkg/models"
)

type PoolingStrategyParams struct {
	// UsageBenchmark defaults to models.DefaultUsageBenchmark when zero.
	UsageBenchmark float64
}

// PoolingStrategy pools offers per task and resolves them in submission
// order. It keeps no trust state: usage reports are accepted and dropped.
// Useful for task types whose assignment logic lives entirely in the caller.
type PoolingStrategy struct {
	pool      *OfferPool
	benchmark float64
}

func NewPoolingStrategy(params PoolingStrategyParams) *PoolingStrategy {
	benchmark := params.UsageBenchmark
	if benchmark <= 0 {
		benchmark = models.DefaultUsageBenchmark
	}
	return &PoolingStrategy{
		pool:      NewOfferPool(),
		benchmark: benchmark,
	}
}

func (s *PoolingStrategy) AddOffer(ctx context.Context, taskID string, offer models.Offer) error {
	if err := offer.Validate(); err != nil {
		return NewErrInvalidOffer(taskID, err)
	}
	s.pool.Add(ctx, taskID, offer)
	return nil
}

func (s *PoolingStrategy) TaskOfferCount(ctx context.Context, taskID string) int {
	return s.pool.Count(ctx, taskID)
}

func (s *PoolingStrategy) ResolveTaskOffers(ctx context.Context, taskID string) ([]models.Offer, error) {
	offers := s.pool.Drain(ctx, taskID)
	log.Ctx(ctx).Debug().
		Str("TaskID", taskID).
		Int("Offers", len(offers)).
		Msg("Resolved task offers in submission order")
	return offers, nil
}

func (s *PoolingStrategy) ReportSubtaskUsages(ctx context.Context, taskID string, usages []models.SubtaskUsage) error {
	log.Ctx(ctx).Trace().
		Str("TaskID", taskID).
		Int("Usages", len(usages)).
		Msg("Pooling strategy ignores usage reports")
	return nil
}

func (s *PoolingStrategy) UsageBenchmark() float64 {
	return s.benchmark
}

func (s *PoolingStrategy) UsageFactor(ctx context.Context, providerID string, fallback float64) float64 {
	return fallback
}

func (s *PoolingStrategy) Reset(ctx context.Context) error {
	s.pool.Reset(ctx)
	return nil
}

var _ RequestorMarketStrategy = (*PoolingStrategy)(nil)
