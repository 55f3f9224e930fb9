package reference

import (
	"context"
	"sort"

	"github.com/smallbiznis/promptinvoice/internal/reference/domain"
)

type repository struct{}

// NewRepository serves the compiled-in state table.
func NewRepository() domain.Repository {
	return &repository{}
}

func (r *repository) ListStates(ctx context.Context) ([]domain.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	states := make([]domain.State, len(domain.States))
	copy(states, domain.States)
	sort.Slice(states, func(i, j int) bool {
		return states[i].Name < states[j].Name
	})
	return states, nil
}
