package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Record is the persisted form of a generated invoice.
type Record struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	UserID        string          `gorm:"type:varchar(64);not null;uniqueIndex:ux_invoice_records_user_number,priority:1"`
	InvoiceNumber string          `gorm:"type:varchar(64);not null;uniqueIndex:ux_invoice_records_user_number,priority:2"`
	ClientName    string          `gorm:"type:text;not null;default:''"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	InvoiceData   datatypes.JSON  `gorm:"not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "invoice_records" }

// Summary is the listing view of a stored invoice.
type Summary struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}
