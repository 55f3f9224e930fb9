package option

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/promptinvoice/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before it runs.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// ApplyPagination pages by descending snowflake id and fetches one extra row
// so callers can tell whether another page exists.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if token := strings.TrimSpace(page.PageToken); token != "" {
			cursor, err := pagination.DecodeCursor(token)
			if err != nil {
				_ = db.AddError(fmt.Errorf("invalid page token: %w", err))
				return db
			}
			id, err := snowflake.ParseString(cursor.ID)
			if err != nil {
				_ = db.AddError(fmt.Errorf("invalid page token: %w", err))
				return db
			}
			db = db.Where("id < ?", id)
		}
		return db.Order("id DESC").Limit(page.Size() + 1)
	})
}
