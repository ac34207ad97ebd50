package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfo-tracker/attendance-backend-go/internal/pkg/database"
)

var (
	testDB     *database.DB
	testDBErr  error
	testDBOnce sync.Once
)

// openTestDatabase migrates and connects to TEST_DATABASE_URL once per package run.
// Tests are skipped when the variable is unset.
func openTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		if err := database.RunMigrations(dsn); err != nil {
			testDBErr = fmt.Errorf("migrate test database: %w", err)
			return
		}
		testDB, testDBErr = database.NewPostgreSQLDB(dsn)
	})
	require.NoError(t, testDBErr)

	truncateTables(t, testDB)
	return testDB
}

// truncateTables clears users and attendance; the seeded categories stay.
func truncateTables(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	for _, table := range []string{"attendances", "users"} {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}

	require.NoError(t, tx.Commit(ctx))
}
