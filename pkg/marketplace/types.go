package marketplace

import (
	"context"

	"github.com/gridpool-project/gridpool/pkg/models"
)

// RequestorMarketStrategy decides which provider offers a requestor accepts
// for a task, and at what implied cost. Offers arrive asynchronously from the
// network layer and accumulate in a per-task pool until the task dispatch
// loop resolves them into a ranking. Ground-truth usage observed after
// subtasks complete feeds back into the ranking of all subsequent
// resolutions.
type RequestorMarketStrategy interface {
	// AddOffer pools a structurally valid offer for the task. Malformed
	// offers are rejected here, at the boundary, so the ranking algorithm
	// never sees them.
	AddOffer(ctx context.Context, taskID string, offer models.Offer) error

	// TaskOfferCount returns the number of offers currently pooled for the
	// task. Zero for an unknown task.
	TaskOfferCount(ctx context.Context, taskID string) int

	// ResolveTaskOffers ranks the pooled offers for the task and drains the
	// pool as a single atomic step. The returned ranking is a snapshot:
	// usage reports arriving later never reorder it. An unknown task yields
	// an empty ranking, not an error.
	ResolveTaskOffers(ctx context.Context, taskID string) ([]models.Offer, error)

	// ReportSubtaskUsages records ground-truth resource consumption for
	// completed subtasks. Degenerate observations are rejected individually
	// without aborting the rest of the batch.
	ReportSubtaskUsages(ctx context.Context, taskID string, usages []models.SubtaskUsage) error

	// UsageBenchmark returns the requestor's reference usage benchmark.
	UsageBenchmark() float64

	// UsageFactor returns the provider's current trust factor, or fallback
	// if the provider has never been observed. Read-only.
	UsageFactor(ctx context.Context, providerID string, fallback float64) float64

	// Reset drops all pooled offers and recorded factors. Full
	// reinitialization only, never mid-flight.
	Reset(ctx context.Context) error
}

// FactorStore persists usage factors across process restarts. Implemented by
// the marketstore package; a nil store keeps the ledger memory-only.
type FactorStore interface {
	UsageFactors(ctx context.Context) (map[string]float64, error)
	UpsertUsageFactor(ctx context.Context, providerID string, factor float64) error
	DeleteUsageFactors(ctx context.Context) error
}

// InvalidOfferPolicy controls what the ranking does with an offer whose
// effective price cannot be computed.
type InvalidOfferPolicy string

const (
	// InvalidOfferExclude drops the offer from the ranking entirely.
	InvalidOfferExclude InvalidOfferPolicy = "exclude"
	// InvalidOfferDemote keeps the offer but places it after every offer
	// that ranked normally, preserving submission order among demoted ones.
	InvalidOfferDemote InvalidOfferPolicy = "demote"
)

func (p InvalidOfferPolicy) IsValid() bool {
	return p == InvalidOfferExclude || p == InvalidOfferDemote
}
