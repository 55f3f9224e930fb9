package domain

import (
	"time"

	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
)

// Profile is the stored company profile of one user. Invoices snapshot it at
// generation time.
type Profile struct {
	UserID    string    `gorm:"type:varchar(64);primaryKey"`
	Name      string    `gorm:"type:text;not null"`
	Address   string    `gorm:"type:text;not null;default:''"`
	Email     string    `gorm:"type:text;not null;default:''"`
	Phone     string    `gorm:"type:text;not null;default:''"`
	Logo      string    `gorm:"type:text;not null;default:''"`
	State     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName sets the database table name.
func (Profile) TableName() string { return "company_profiles" }

func (p Profile) Company() invoicedomain.CompanyProfile {
	return invoicedomain.CompanyProfile{
		Name:    p.Name,
		Address: p.Address,
		Email:   p.Email,
		Phone:   p.Phone,
		Logo:    p.Logo,
		State:   p.State,
	}
}
