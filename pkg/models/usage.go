package models

import (
	"github.com/rs/zerolog"
)

// DefaultUsageBenchmark is the requestor's reference workload duration used
// to normalize prices across providers of different declared performance.
const DefaultUsageBenchmark = 1.0

// DefaultUsageFactor is the neutral trust factor assigned to providers with
// no prior usage observations: declared performance is trusted at face value.
const DefaultUsageFactor = 1.0

// SubtaskUsage is one ground-truth observation reported by the execution
// layer after a subtask completes: how much resource the provider actually
// consumed while computing it.
type SubtaskUsage struct {
	ProviderID string
	SubtaskID  string

	// Usage is the observed resource consumption, e.g. elapsed compute time,
	// measured against the requestor's usage benchmark.
	Usage float64
}

func (u SubtaskUsage) MarshalZerologObject(e *zerolog.Event) {
	e.Str("ProviderID", u.ProviderID).
		Str("SubtaskID", u.SubtaskID).
		Float64("Usage", u.Usage)
}

var _ zerolog.LogObjectMarshaler = SubtaskUsage{}
