// Package llmprovider implements deskrag's C9 component. Per spec.md §9's
// design note, this models the teacher's duck-typed provider objects as a
// sealed variant over provider kinds (Stub | Remote(vendor)) behind a
// two-method interface; construction returns a typed value and Select,
// given "auto", probes in configured preference order.
package llmprovider

import "context"

// Provider is the LM provider contract of spec.md §4.9.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// DefaultStubAnswer is the deterministic string the stub provider
// returns, per the Glossary.
const DefaultStubAnswer = "hi, this was a test you pass"
