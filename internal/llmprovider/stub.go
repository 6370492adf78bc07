package llmprovider

import "context"

// stub is the deterministic LM substitute of spec.md §4.9, used by tests
// and as the failure fallback.
type stub struct{}

// NewStub constructs the stub provider.
func NewStub() Provider { return stub{} }

func (stub) Name() string { return "stub" }

func (stub) Generate(_ context.Context, _ string) (string, error) {
	return DefaultStubAnswer, nil
}
