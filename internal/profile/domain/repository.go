package domain

import "context"

type Repository interface {
	// FindByUser returns nil, nil when the user has not saved a profile.
	FindByUser(ctx context.Context, userID string) (*Profile, error)
	Save(ctx context.Context, profile *Profile) error
}
