package repository

import (
	"context"

	"github.com/smallbiznis/promptinvoice/pkg/db/option"
)

// Repository is a generic gorm store keyed by struct filters. Zero-valued
// filter fields are ignored, as with gorm's struct conditions.
type Repository[T any] interface {
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	// FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	// Upsert inserts resource or, on a conflict over conflictColumns,
	// overwrites only updateColumns of the existing row.
	Upsert(ctx context.Context, resource *T, conflictColumns, updateColumns []string) error
	Count(ctx context.Context, query *T) (int64, error)
}
