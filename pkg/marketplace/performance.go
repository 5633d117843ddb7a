package marketplace

import (
	"math"

	"github.com/gridpool-project/gridpool/pkg/models"
)

// EffectivePrice converts an offer's self-reported throughput and asked
// price into a single comparable cost figure:
//
//	effectivePrice = benchmark * price / (declaredPerformance / usageFactor)
//
// The declared throughput is discounted by the provider's usage factor
// before normalizing the price. A provider that historically consumed more
// resource than its declared benchmark implied becomes proportionally more
// expensive in the ranking, however high its raw declared performance. This
// is the anti-gaming mechanism: self-reported numbers are load-bearing only
// until ground truth arrives.
//
// Lower is better. Non-positive declared performance or usage factor cannot
// produce a defined comparison and yields ErrUnpriceableOffer.
func EffectivePrice(offer models.Offer, usageFactor, benchmark float64) (float64, error) {
	if offer.DeclaredPerformance <= 0 {
		return 0, NewErrUnpriceableOffer(offer.ProviderID, "declared performance is not positive")
	}
	if usageFactor <= 0 {
		return 0, NewErrUnpriceableOffer(offer.ProviderID, "usage factor is not positive")
	}
	if offer.Price < 0 {
		return 0, NewErrUnpriceableOffer(offer.ProviderID, "price is negative")
	}

	price := benchmark * offer.Price / (offer.DeclaredPerformance / usageFactor)
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, NewErrUnpriceableOffer(offer.ProviderID, "effective price is not finite")
	}
	return price, nil
}
