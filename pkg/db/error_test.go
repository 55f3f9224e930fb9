package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/smallbiznis/promptinvoice/internal/config"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.False(t, IsDuplicateKeyErr(nil))
	assert.True(t, IsDuplicateKeyErr(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: invoice_records.user_id")))
	assert.True(t, IsDuplicateKeyErr(errors.New("Error 1062: Duplicate entry")))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
}

func TestDialect(t *testing.T) {
	_, err := Dialect(config.Config{DBType: "oracle"})
	assert.Error(t, err)

	d, err := Dialect(config.Config{DBType: "sqlite", DBName: "test"})
	assert.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	assert.Contains(t, PostgresDSN(config.Config{DBHost: "db", DBPort: "5432", DBName: "pi", DBSSLMode: "disable"}), "host=db")
}
