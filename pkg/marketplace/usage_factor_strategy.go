package marketplace

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"github.com/gridpool-project/gridpool/pkg/models"
)

type UsageFactorStrategyParams struct {
	// UsageBenchmark defaults to models.DefaultUsageBenchmark when zero.
	UsageBenchmark float64
	// InvalidOfferPolicy defaults to InvalidOfferExclude when empty.
	InvalidOfferPolicy InvalidOfferPolicy
	// FactorStore, when set, persists usage factors across restarts.
	FactorStore FactorStore
}

// UsageFactorStrategy ranks pooled offers by effective price: asked price
// normalized by declared throughput, with the throughput discounted by the
// provider's usage factor. Completed-subtask usage reports recalibrate the
// factors, so providers that overstate their benchmarks lose future
// rankings even while their raw numbers stay high.
type UsageFactorStrategy struct {
	pool          *OfferPool
	ledger        *UsageLedger
	benchmark     float64
	invalidPolicy InvalidOfferPolicy
}

func NewUsageFactorStrategy(ctx context.Context, params UsageFactorStrategyParams) (*UsageFactorStrategy, error) {
	benchmark := params.UsageBenchmark
	if benchmark <= 0 {
		benchmark = models.DefaultUsageBenchmark
	}
	policy := params.InvalidOfferPolicy
	if policy == "" {
		policy = InvalidOfferExclude
	}
	ledger, err := NewUsageLedger(ctx, UsageLedgerParams{Store: params.FactorStore})
	if err != nil {
		return nil, err
	}
	return &UsageFactorStrategy{
		pool:          NewOfferPool(),
		ledger:        ledger,
		benchmark:     benchmark,
		invalidPolicy: policy,
	}, nil
}

func (s *UsageFactorStrategy) AddOffer(ctx context.Context, taskID string, offer models.Offer) error {
	if err := offer.Validate(); err != nil {
		return NewErrInvalidOffer(taskID, err)
	}
	s.pool.Add(ctx, taskID, offer)
	return nil
}

func (s *UsageFactorStrategy) TaskOfferCount(ctx context.Context, taskID string) int {
	return s.pool.Count(ctx, taskID)
}

type scoredOffer struct {
	offer models.Offer
	price float64
}

// ResolveTaskOffers drains the task's pool and returns its offers sorted
// ascending by effective price, computed with each provider's factor as it
// stands right now. The sort is stable, so equal prices keep submission
// order and identical inputs always resolve identically. Offers that cannot
// be priced are excluded or demoted to the tail per the configured policy,
// never fatal to the rest of the pool.
func (s *UsageFactorStrategy) ResolveTaskOffers(ctx context.Context, taskID string) ([]models.Offer, error) {
	offers := s.pool.Drain(ctx, taskID)
	if len(offers) == 0 {
		return nil, nil
	}

	scored := make([]scoredOffer, 0, len(offers))
	demoted := make([]models.Offer, 0)
	for _, offer := range offers {
		factor := s.ledger.Factor(ctx, offer.ProviderID, neutralFactor)
		price, err := EffectivePrice(offer, factor, s.benchmark)
		if err != nil {
			log.Ctx(ctx).Warn().
				Err(err).
				Str("TaskID", taskID).
				Object("Offer", offer).
				Msg("Offer cannot be priced")
			if s.invalidPolicy == InvalidOfferDemote {
				demoted = append(demoted, offer)
			}
			continue
		}
		scored = append(scored, scoredOffer{offer: offer, price: price})
	}

	slices.SortStableFunc(scored, func(a, b scoredOffer) bool {
		return a.price < b.price
	})

	ranked := lo.Map(scored, func(so scoredOffer, _ int) models.Offer {
		return so.offer
	})
	ranked = append(ranked, demoted...)

	log.Ctx(ctx).Debug().
		Str("TaskID", taskID).
		Int("Offers", len(offers)).
		Int("Ranked", len(ranked)).
		Msg("Resolved task offers by effective price")
	return ranked, nil
}

// ReportSubtaskUsages records each observation against the requestor's
// usage benchmark. A degenerate observation is rejected with the provider's
// prior factor retained, without aborting the rest of the batch. Rankings
// already returned are unaffected; only future resolutions see the new
// factors.
func (s *UsageFactorStrategy) ReportSubtaskUsages(ctx context.Context, taskID string, usages []models.SubtaskUsage) error {
	var mErr *multierror.Error
	for _, usage := range usages {
		if err := s.ledger.RecordUsage(ctx, usage.ProviderID, usage.Usage, s.benchmark); err != nil {
			log.Ctx(ctx).Warn().
				Err(err).
				Str("TaskID", taskID).
				Object("Usage", usage).
				Msg("Rejected subtask usage observation")
			mErr = multierror.Append(mErr, err)
		}
	}
	return mErr.ErrorOrNil()
}

func (s *UsageFactorStrategy) UsageBenchmark() float64 {
	return s.benchmark
}

func (s *UsageFactorStrategy) UsageFactor(ctx context.Context, providerID string, fallback float64) float64 {
	return s.ledger.Factor(ctx, providerID, fallback)
}

func (s *UsageFactorStrategy) Reset(ctx context.Context) error {
	s.pool.Reset(ctx)
	return s.ledger.Reset(ctx)
}

var _ RequestorMarketStrategy = (*UsageFactorStrategy)(nil)
