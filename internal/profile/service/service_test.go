package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/promptinvoice/internal/clock"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	profiledomain "github.com/smallbiznis/promptinvoice/internal/profile/domain"
	"github.com/smallbiznis/promptinvoice/internal/profile/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (profiledomain.Service, *clock.FakeClock, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&profiledomain.Profile{}))

	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := NewService(ServiceParam{
		Log:   zap.NewNop(),
		Repo:  repository.NewRepository(db),
		Clock: clk,
	})
	return svc, clk, db
}

func TestGet_NotFound(t *testing.T) {
	svc, _, _ := setupService(t)
	_, err := svc.Get(context.Background(), "user-1")
	assert.ErrorIs(t, err, invoicedomain.ErrNotFound)
}

func TestBlankUserRejected(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, "user-1", invoicedomain.CompanyProfile{Name: "Acme Works", State: "Karnataka"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, " ")
	assert.ErrorIs(t, err, invoicedomain.ErrValidation)

	_, err = svc.Save(ctx, "", invoicedomain.CompanyProfile{Name: "Acme Works", State: "Karnataka"})
	assert.ErrorIs(t, err, invoicedomain.ErrValidation)
}

func TestSave_CanonicalizesAndUpdates(t *testing.T) {
	svc, clk, db := setupService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, "user-1", invoicedomain.CompanyProfile{
		Name:  "  Acme Works ",
		Email: "billing@acme.in",
		State: "ka",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Works", saved.Name)
	assert.Equal(t, "Karnataka", saved.State)

	clk.Advance(time.Hour)
	_, err = svc.Save(ctx, "user-1", invoicedomain.CompanyProfile{Name: "Acme Works Pvt Ltd", State: "Karnataka"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Works Pvt Ltd", got.Name)
	assert.Empty(t, got.Email)

	var stored profiledomain.Profile
	require.NoError(t, db.First(&stored, "user_id = ?", "user-1").Error)
	assert.True(t, stored.UpdatedAt.After(stored.CreatedAt))
}

func TestSave_Validation(t *testing.T) {
	svc, _, _ := setupService(t)

	cases := []struct {
		name    string
		company invoicedomain.CompanyProfile
		fields  []string
	}{
		{"missing name and state", invoicedomain.CompanyProfile{}, []string{"name", "state"}},
		{"unknown state", invoicedomain.CompanyProfile{Name: "Acme", State: "Atlantis"}, []string{"state"}},
		{"bad email", invoicedomain.CompanyProfile{Name: "Acme", State: "Goa", Email: "not-an-email"}, []string{"email"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Save(context.Background(), "user-1", tc.company)
			require.Error(t, err)

			var verr *invoicedomain.Error
			require.True(t, errors.As(err, &verr))
			got := []string{}
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tc.fields, got)
		})
	}
}
