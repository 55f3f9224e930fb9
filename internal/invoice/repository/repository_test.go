package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"github.com/smallbiznis/promptinvoice/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&invoicedomain.Record{}))
	return conn
}

func newRecord(node *snowflake.Node, userID, number string) *invoicedomain.Record {
	return &invoicedomain.Record{
		ID:            node.Generate(),
		UserID:        userID,
		InvoiceNumber: number,
		ClientName:    "Globex",
		TotalAmount:   decimal.RequireFromString("354000.00"),
		InvoiceData:   datatypes.JSON(`{"invoiceNumber":"` + number + `"}`),
		CreatedAt:     time.Now().UTC(),
	}
}

func TestRepository_InsertAndFind(t *testing.T) {
	repo := NewRepository(setupDB(t))
	node, _ := snowflake.NewNode(1)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newRecord(node, "user-1", "INV-1")))

	got, err := repo.FindByNumber(ctx, "user-1", "INV-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Globex", got.ClientName)
	assert.True(t, decimal.RequireFromString("354000").Equal(got.TotalAmount))

	missing, err := repo.FindByNumber(ctx, "user-2", "INV-1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_DuplicateNumberPerUser(t *testing.T) {
	repo := NewRepository(setupDB(t))
	node, _ := snowflake.NewNode(1)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newRecord(node, "user-1", "INV-1")))
	err := repo.Insert(ctx, newRecord(node, "user-1", "INV-1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, invoicedomain.ErrDuplicateNumber)

	require.NoError(t, repo.Insert(ctx, newRecord(node, "user-2", "INV-1")))
}

func TestRepository_ListPagesNewestFirst(t *testing.T) {
	repo := NewRepository(setupDB(t))
	node, _ := snowflake.NewNode(1)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Insert(ctx, newRecord(node, "user-1", fmt.Sprintf("INV-%d", i))))
	}
	require.NoError(t, repo.Insert(ctx, newRecord(node, "user-2", "INV-X")))

	count, err := repo.CountByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)

	first, err := repo.List(ctx, "user-1", pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, "INV-5", first[0].InvoiceNumber)
	assert.Equal(t, "INV-4", first[1].InvoiceNumber)

	token, err := pagination.EncodeCursor(pagination.Cursor{ID: first[1].ID.String()})
	require.NoError(t, err)

	second, err := repo.List(ctx, "user-1", pagination.Pagination{PageSize: 2, PageToken: token})
	require.NoError(t, err)
	require.Len(t, second, 3)
	assert.Equal(t, "INV-3", second[0].InvoiceNumber)

	_, err = repo.List(ctx, "user-1", pagination.Pagination{PageToken: "not-a-token!"})
	assert.Error(t, err)
}
