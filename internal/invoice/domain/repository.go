package domain

import (
	"context"

	"github.com/smallbiznis/promptinvoice/pkg/db/pagination"
)

type Repository interface {
	Insert(ctx context.Context, record *Record) error
	// FindByNumber returns nil, nil when the user has no such invoice.
	FindByNumber(ctx context.Context, userID, invoiceNumber string) (*Record, error)
	// List returns records newest first, with one row beyond the page size
	// when more remain.
	List(ctx context.Context, userID string, page pagination.Pagination) ([]*Record, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}
