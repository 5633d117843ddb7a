package models

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Offer is a single provider's bid for a task. It is created by the network
// layer on offer receipt and owned by the offer pool until the task resolves,
// at which point it is handed by value into the ranked result.
type Offer struct {
	// ProviderID is the stable identifier of the computing node that
	// submitted the offer.
	ProviderID string

	// Price is the requested payment per unit of the provider's declared
	// usage benchmark.
	Price float64

	// DeclaredPerformance is the provider's self-reported throughput,
	// expressed as benchmark units completed per unit of the requestor's
	// reference usage benchmark. Provider-supplied and untrusted until
	// ground-truth usage reports arrive.
	DeclaredPerformance float64

	// Quality and Reputation are auxiliary scores produced by the trust
	// ranking subsystems. They are carried through but not computed here.
	Quality    [4]float64
	Reputation float64
}

// Validate returns an error if the offer would produce an undefined
// comparison result during ranking. Malformed offers are meant to be
// rejected at the network boundary, not inside the ranking algorithm.
func (o Offer) Validate() error {
	var mErr *multierror.Error
	if o.ProviderID == "" {
		mErr = multierror.Append(mErr, errors.New("offer is missing a provider ID"))
	}
	if o.Price < 0 {
		mErr = multierror.Append(mErr, errors.Errorf("offer price %f is negative", o.Price))
	}
	if o.DeclaredPerformance <= 0 {
		mErr = multierror.Append(mErr, errors.Errorf(
			"offer declared performance %f is not positive", o.DeclaredPerformance))
	}
	return mErr.ErrorOrNil()
}

func (o Offer) MarshalZerologObject(e *zerolog.Event) {
	e.Str("ProviderID", o.ProviderID).
		Float64("Price", o.Price).
		Float64("DeclaredPerformance", o.DeclaredPerformance)
}

var _ zerolog.LogObjectMarshaler = Offer{}
