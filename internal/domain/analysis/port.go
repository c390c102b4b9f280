package analysis

import "context"

// Provider is the inference capability behind the implemented slots. One
// provider serves multiple slots, selected by model identifier.
type Provider interface {
	Analyze(ctx context.Context, model string, req Request) (ModelResult, error)
}
