package marketplace

import "fmt"

// ErrInvalidOffer is returned when an offer fails boundary validation.
type ErrInvalidOffer struct {
	TaskID string
	Reason error
}

func NewErrInvalidOffer(taskID string, reason error) ErrInvalidOffer {
	return ErrInvalidOffer{TaskID: taskID, Reason: reason}
}

func (e ErrInvalidOffer) Error() string {
	return fmt.Sprintf("invalid offer for task %s: %s", e.TaskID, e.Reason)
}

func (e ErrInvalidOffer) Unwrap() error {
	return e.Reason
}

// ErrDegenerateUsage is returned when a usage observation cannot produce a
// finite, positive factor and is rejected with the prior factor retained.
type ErrDegenerateUsage struct {
	ProviderID string
	Observed   float64
	Reference  float64
}

func NewErrDegenerateUsage(providerID string, observed, reference float64) ErrDegenerateUsage {
	return ErrDegenerateUsage{ProviderID: providerID, Observed: observed, Reference: reference}
}

func (e ErrDegenerateUsage) Error() string {
	return fmt.Sprintf("degenerate usage observation for provider %s: observed=%f reference=%f",
		e.ProviderID, e.Observed, e.Reference)
}

// ErrUnpriceableOffer is returned when an effective price cannot be computed
// from an offer's declared performance and the provider's usage factor.
type ErrUnpriceableOffer struct {
	ProviderID string
	Reason     string
}

func NewErrUnpriceableOffer(providerID, reason string) ErrUnpriceableOffer {
	return ErrUnpriceableOffer{ProviderID: providerID, Reason: reason}
}

func (e ErrUnpriceableOffer) Error() string {
	return fmt.Sprintf("cannot price offer from provider %s: %s", e.ProviderID, e.Reason)
}

// ErrStrategyNotFound is returned by the registry for an unknown strategy name.
type ErrStrategyNotFound struct {
	Name string
}

func NewErrStrategyNotFound(name string) ErrStrategyNotFound {
	return ErrStrategyNotFound{Name: name}
}

func (e ErrStrategyNotFound) Error() string {
	return "market strategy not found: " + e.Name
}
