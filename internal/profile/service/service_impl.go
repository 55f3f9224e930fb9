package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/smallbiznis/promptinvoice/internal/clock"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	profiledomain "github.com/smallbiznis/promptinvoice/internal/profile/domain"
	refdomain "github.com/smallbiznis/promptinvoice/internal/reference/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	Repo  profiledomain.Repository
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	repo  profiledomain.Repository
	clock clock.Clock
}

func NewService(p ServiceParam) profiledomain.Service {
	return &Service{
		log:   p.Log.Named("profile.service"),
		repo:  p.Repo,
		clock: p.Clock,
	}
}

func (s *Service) Get(ctx context.Context, userID string) (invoicedomain.CompanyProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return invoicedomain.CompanyProfile{}, errUserRequired()
	}
	profile, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return invoicedomain.CompanyProfile{}, err
	}
	if profile == nil {
		return invoicedomain.CompanyProfile{}, invoicedomain.ErrNotFound
	}
	return profile.Company(), nil
}

// Save stores the profile with its state in canonical form.
func (s *Service) Save(ctx context.Context, userID string, company invoicedomain.CompanyProfile) (invoicedomain.CompanyProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return invoicedomain.CompanyProfile{}, errUserRequired()
	}
	company = normalize(company)
	if err := validate(company); err != nil {
		return invoicedomain.CompanyProfile{}, err
	}

	now := s.clock.Now()
	profile := &profiledomain.Profile{
		UserID:    strings.TrimSpace(userID),
		Name:      company.Name,
		Address:   company.Address,
		Email:     company.Email,
		Phone:     company.Phone,
		Logo:      company.Logo,
		State:     company.State,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Save(ctx, profile); err != nil {
		return invoicedomain.CompanyProfile{}, err
	}

	s.log.Info("company profile saved", zap.String("state", profile.State))
	return profile.Company(), nil
}

func errUserRequired() error {
	return invoicedomain.NewValidationError(invoicedomain.FieldError{
		Field: "user_id", Code: "required", Message: "user is required",
	})
}

func normalize(c invoicedomain.CompanyProfile) invoicedomain.CompanyProfile {
	c.Name = strings.TrimSpace(c.Name)
	c.Address = strings.TrimSpace(c.Address)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Logo = strings.TrimSpace(c.Logo)
	c.State = refdomain.Canonical(c.State)
	return c
}

func validate(c invoicedomain.CompanyProfile) error {
	var fields []invoicedomain.FieldError
	if c.Name == "" {
		fields = append(fields, invoicedomain.FieldError{Field: "name", Code: "required", Message: "company name is required"})
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			fields = append(fields, invoicedomain.FieldError{Field: "email", Code: "invalid", Message: "company email is invalid"})
		}
	}
	switch {
	case c.State == "":
		fields = append(fields, invoicedomain.FieldError{Field: "state", Code: "required", Message: "company state is required"})
	default:
		if _, ok := refdomain.Lookup(c.State); !ok {
			fields = append(fields, invoicedomain.FieldError{Field: "state", Code: "unknown", Message: "company state must be an Indian state or union territory"})
		}
	}
	if len(fields) > 0 {
		return invoicedomain.NewValidationError(fields...)
	}
	return nil
}
