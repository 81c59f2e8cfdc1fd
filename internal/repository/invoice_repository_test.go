package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextNumber(t *testing.T) {
	issueDate := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("First Of The Year", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewInvoiceRepository(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE number LIKE \$1`).
			WithArgs("INV-2026-%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.NextNumber(context.Background(), issueDate)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-00001", number)
	})

	t.Run("Sequence Continues", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewInvoiceRepository(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE number LIKE \$1`).
			WithArgs("INV-2026-%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))

		number, err := repo.NextNumber(context.Background(), issueDate)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-00042", number)
	})
}
