package repository

import (
	"context"
	"strings"

	profiledomain "github.com/smallbiznis/promptinvoice/internal/profile/domain"
	"github.com/smallbiznis/promptinvoice/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	store repository.Repository[profiledomain.Profile]
}

func NewRepository(db *gorm.DB) profiledomain.Repository {
	return &repo{store: repository.ProvideStore[profiledomain.Profile](db)}
}

func (r *repo) FindByUser(ctx context.Context, userID string) (*profiledomain.Profile, error) {
	return r.store.FindOne(ctx, &profiledomain.Profile{UserID: strings.TrimSpace(userID)})
}

// Save upserts by user id. created_at of an existing row is left untouched.
func (r *repo) Save(ctx context.Context, profile *profiledomain.Profile) error {
	return r.store.Upsert(ctx, profile,
		[]string{"user_id"},
		[]string{"name", "address", "email", "phone", "logo", "state", "updated_at"},
	)
}
