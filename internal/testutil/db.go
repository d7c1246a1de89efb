// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/auth_service/internal/db"
)

// InitTestDB opens a private in-memory sqlite database with the schema migrated.
func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err, "failed to open in-memory db")

	t.Cleanup(func() {
		_ = db.Close(gdb)
	})

	return gdb
}
