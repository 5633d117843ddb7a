package marketplace

import (
	"context"
	"time"

	sync "github.com/bacalhau-project/golang-mutex-tracer"
	"github.com/rs/zerolog/log"

	"github.com/gridpool-project/gridpool/pkg/models"
)

// OfferPool holds the offers received for each task in submission order.
// It is shared mutable state: offers are appended by network handlers while
// the dispatch loop counts and drains them, so every operation takes the
// pool lock. Draining a task reads and clears its sequence as one step, so
// a concurrent add is deterministically either part of the returned
// generation or starts a fresh one.
type OfferPool struct {
	pools map[string][]models.Offer
	mu    sync.RWMutex
}

func NewOfferPool() *OfferPool {
	pool := &OfferPool{
		pools: make(map[string][]models.Offer),
	}
	pool.mu.EnableTracerWithOpts(sync.Opts{
		Threshold: 10 * time.Millisecond,
		Id:        "OfferPool.mu",
	})
	return pool
}

// Add appends the offer to the task's sequence, creating it if absent.
// Offers are not deduplicated by provider: a provider may submit several
// offers for one task and they compete independently.
func (p *OfferPool) Add(ctx context.Context, taskID string, offer models.Offer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pools[taskID] = append(p.pools[taskID], offer)

	log.Ctx(ctx).Debug().
		Str("TaskID", taskID).
		Object("Offer", offer).
		Int("PoolSize", len(p.pools[taskID])).
		Msg("Offer accepted and added to pool")
}

// Count returns the number of pooled offers for the task, zero if unknown.
func (p *OfferPool) Count(ctx context.Context, taskID string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.pools[taskID])
}

// Drain removes and returns the task's offer sequence in submission order.
// The read and the clear happen under one lock acquisition.
func (p *OfferPool) Drain(ctx context.Context, taskID string) []models.Offer {
	p.mu.Lock()
	defer p.mu.Unlock()
	offers := p.pools[taskID]
	delete(p.pools, taskID)
	return offers
}

// Clear removes the task's sequence entirely if present, no-op otherwise.
func (p *OfferPool) Clear(ctx context.Context, taskID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pools, taskID)
}

// Reset drops every task's sequence.
func (p *OfferPool) Reset(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pools = make(map[string][]models.Offer)
}
