package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type mailItemRow struct {
	ID          uint
	WorkspaceID string
	Status      string
}

// newMockDatabase creates a Database instance backed by sqlmock
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestDatabase_WithWorkspace(t *testing.T) {
	t.Run("scopes queries to the workspace", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		workspaceID := "550e8400-e29b-41d4-a716-446655440000"

		mock.ExpectQuery(`SELECT \* FROM "mail_item_rows" WHERE workspace_id = \$1`).
			WithArgs(workspaceID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "workspace_id", "status"}).
				AddRow(1, workspaceID, "received"))

		var items []mailItemRow
		err := db.WithWorkspace(workspaceID).Find(&items).Error
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, workspaceID, items[0].WorkspaceID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("does not modify the shared handle", func(t *testing.T) {
		db, _, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		original := db.DB
		scoped := db.WithWorkspace("550e8400-e29b-41d4-a716-446655440001")

		assert.NotEqual(t, original, scoped)
		assert.Equal(t, original, db.DB)
	})

	t.Run("empty workspace ID panics", func(t *testing.T) {
		db, _, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		// Cross-tenant leakage guard
		assert.Panics(t, func() {
			db.WithWorkspace("")
		})
	})

	t.Run("hostile workspace ID stays parameterized", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		workspaceID := "ws'; DROP TABLE mail_items; --"

		mock.ExpectQuery(`SELECT \* FROM "mail_item_rows" WHERE workspace_id = \$1`).
			WithArgs(workspaceID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "workspace_id", "status"}))

		var items []mailItemRow
		err := db.WithWorkspace(workspaceID).Find(&items).Error
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("chains with further filters, ordering, and pagination", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		workspaceID := "550e8400-e29b-41d4-a716-446655440002"

		mock.ExpectQuery(`SELECT \* FROM "mail_item_rows" WHERE workspace_id = \$1 AND status = \$2 ORDER BY id DESC LIMIT \$3 OFFSET \$4`).
			WithArgs(workspaceID, "scanned", 10, 20).
			WillReturnRows(sqlmock.NewRows([]string{"id", "workspace_id", "status"}).
				AddRow(42, workspaceID, "scanned"))

		var items []mailItemRow
		err := db.WithWorkspace(workspaceID).
			Where("status = ?", "scanned").
			Order("id DESC").
			Limit(10).
			Offset(20).
			Find(&items).Error
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("distinct workspaces get distinct scopes", func(t *testing.T) {
		db, _, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		first := db.WithWorkspace("550e8400-e29b-41d4-a716-446655440003")
		second := db.WithWorkspace("550e8400-e29b-41d4-a716-446655440004")

		assert.NotEqual(t, first, second)
	})
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		// Postgres GORM inserts via Query with a RETURNING clause
		mock.ExpectQuery(`INSERT INTO "mail_item_rows"`).
			WithArgs("550e8400-e29b-41d4-a716-446655440005", "received").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&mailItemRow{
				WorkspaceID: "550e8400-e29b-41d4-a716-446655440005",
				Status:      "received",
			}).Error
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Ping(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	// GORM may ping during Open
	mock.ExpectPing()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	db := &Database{DB: gormDB}

	mock.ExpectPing()
	assert.NoError(t, db.Ping())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()

	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()

	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
	assert.GreaterOrEqual(t, stats.WaitCount, int64(0))
	assert.GreaterOrEqual(t, stats.WaitDuration, time.Duration(0))
}
