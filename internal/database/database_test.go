package database

import (
	"testing"

	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "shop.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("shop.db"))
	assert.Equal(t, "file:x?mode=memory&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", sqliteDSN("file:x?mode=memory"))
	assert.Equal(t, "shop.db?_pragma=journal_mode(WAL)", sqliteDSN("shop.db?_pragma=journal_mode(WAL)"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mssql", "whatever")
	assert.Error(t, err)
}

func TestOpenAndMigrate_SQLite(t *testing.T) {
	db, err := Open("sqlite", "file:migrate_test?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []interface{}{&models.Item{}, &models.Sale{}, &models.Customer{}, &models.Installation{}, &models.AuditLog{}, &models.ImportBatch{}, &models.User{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Item{}, "idx_items_item_category"))
}
