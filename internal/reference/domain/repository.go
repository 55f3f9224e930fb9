package domain

import "context"

type Repository interface {
	ListStates(ctx context.Context) ([]State, error)
}
