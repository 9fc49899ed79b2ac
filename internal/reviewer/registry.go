package reviewer

import (
	"fmt"

	"github.com/docreview/docreview/internal/domain"
	"github.com/docreview/docreview/internal/domain/review"
	"github.com/docreview/docreview/internal/port/completion"
)

// Constructor builds a reviewer bound to a completion client.
type Constructor func(completion.Client) Reviewer

// Registry maps reviewer kinds to constructors. It is built once at
// startup and never mutated afterwards, so lookups are safe from any
// goroutine without locking.
type Registry struct {
	client       completion.Client
	constructors map[review.Kind]Constructor
}

// NewRegistry creates a registry holding every known reviewer variant.
func NewRegistry(client completion.Client) *Registry {
	return &Registry{
		client: client,
		constructors: map[review.Kind]Constructor{
			review.KindRequirements: NewRequirements,
			review.KindArchitecture: NewArchitecture,
			review.KindSecurity:     NewSecurity,
			review.KindOperations:   NewOperations,
		},
	}
}

// Lookup returns a reviewer instance for the given kind.
func (r *Registry) Lookup(kind review.Kind) (Reviewer, error) {
	ctor, ok := r.constructors[kind]
	if !ok {
		return nil, fmt.Errorf("reviewer kind %q: %w", kind, domain.ErrNotFound)
	}
	return ctor(r.client), nil
}

// Kinds returns every registered reviewer kind in dispatch order.
func (r *Registry) Kinds() []review.Kind {
	kinds := make([]review.Kind, 0, len(r.constructors))
	for _, k := range review.AllKinds() {
		if _, ok := r.constructors[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
