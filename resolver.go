package salesdash

import (
	"context"
	"fmt"
	"sync"
)

// ParameterSource provides the filter domains.
type ParameterSource interface {
	Parameters(ctx context.Context) (*Parameters, error)
}

// Resolver loads the filter domains once and keeps them for its lifetime.
// A failed load is not remembered, the next call queries again.
type Resolver struct {
	repository ReadRepository

	mu     sync.Mutex
	params *Parameters
}

func NewResolver(repository ReadRepository) *Resolver {
	return &Resolver{repository: repository}
}

func (r *Resolver) Parameters(ctx context.Context) (*Parameters, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.params != nil {
		return r.params, nil
	}

	regions, err := r.repository.Regions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load regions: %w", err)
	}

	minDate, maxDate, err := r.repository.DateRange(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load date range: %w", err)
	}

	r.params = &Parameters{
		Regions: regions,
		MinDate: minDate,
		MaxDate: maxDate,
	}

	return r.params, nil
}
