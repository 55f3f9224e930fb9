package repository

import (
	"context"
	"fmt"
	"strings"

	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"github.com/smallbiznis/promptinvoice/pkg/db"
	"github.com/smallbiznis/promptinvoice/pkg/db/option"
	"github.com/smallbiznis/promptinvoice/pkg/db/pagination"
	"github.com/smallbiznis/promptinvoice/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	store repository.Repository[invoicedomain.Record]
}

func NewRepository(conn *gorm.DB) invoicedomain.Repository {
	return &repo{store: repository.ProvideStore[invoicedomain.Record](conn)}
}

// Insert reports a number the user already has as ErrDuplicateNumber.
func (r *repo) Insert(ctx context.Context, record *invoicedomain.Record) error {
	if err := r.store.Create(ctx, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return fmt.Errorf("%w: %s", invoicedomain.ErrDuplicateNumber, record.InvoiceNumber)
		}
		return err
	}
	return nil
}

func (r *repo) FindByNumber(ctx context.Context, userID, invoiceNumber string) (*invoicedomain.Record, error) {
	return r.store.FindOne(ctx, &invoicedomain.Record{
		UserID:        strings.TrimSpace(userID),
		InvoiceNumber: strings.TrimSpace(invoiceNumber),
	})
}

func (r *repo) List(ctx context.Context, userID string, page pagination.Pagination) ([]*invoicedomain.Record, error) {
	return r.store.Find(ctx,
		&invoicedomain.Record{UserID: strings.TrimSpace(userID)},
		option.ApplyPagination(page),
	)
}

func (r *repo) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.store.Count(ctx, &invoicedomain.Record{UserID: strings.TrimSpace(userID)})
}
