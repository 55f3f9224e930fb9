package domain

import (
	"context"

	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
)

type Service interface {
	// Get returns invoicedomain.ErrNotFound when no profile is stored.
	Get(ctx context.Context, userID string) (invoicedomain.CompanyProfile, error)
	Save(ctx context.Context, userID string, company invoicedomain.CompanyProfile) (invoicedomain.CompanyProfile, error)
}
