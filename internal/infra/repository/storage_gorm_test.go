package repository

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/micro8gents-api/internal/db"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage/storagetest"
)

func newSQLite(t *testing.T) storage.Storage {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	gdb, err := gorm.Open(sqlite.Open(dsn), db.GormConfig())
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return NewGormStorage(gdb)
}

func TestGormStorageSQLite(t *testing.T) {
	storagetest.Run(t, newSQLite)
}

// Runs only when TEST_POSTGRES_DSN points at a disposable database.
func TestGormStoragePostgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	storagetest.Run(t, func(t *testing.T) storage.Storage {
		gdb, err := gorm.Open(postgres.Open(dsn), db.GormConfig())
		require.NoError(t, err)

		require.NoError(t, gdb.Migrator().DropTable(
			"audit_logs", "subscriptions", "integrations", "bookings",
			"calls", "faqs", "hours_of_operation", "businesses", "users",
		))
		require.NoError(t, db.Migrate(gdb))

		sqlDB, err := gdb.DB()
		require.NoError(t, err)
		t.Cleanup(func() { _ = sqlDB.Close() })

		return NewGormStorage(gdb)
	})
}
