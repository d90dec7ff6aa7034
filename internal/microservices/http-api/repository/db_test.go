package repository

import (
	"testing"

	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// recordRaw collects the SQL of every Exec/Raw statement run on db.
func recordRaw(t *testing.T, db *gorm.DB) *[]string {
	t.Helper()
	var stmts []string
	err := db.Callback().Raw().After("gorm:raw").Register("test:record_raw", func(tx *gorm.DB) {
		stmts = append(stmts, tx.Statement.SQL.String())
	})
	require.NoError(t, err)
	return &stmts
}

func TestLockNames_SQLiteRunsNothing(t *testing.T) {
	db := testutil.NewDB(t)
	stmts := recordRaw(t, db)

	err := db.Transaction(func(tx *gorm.DB) error {
		return LockNames(t.Context(), tx, "unit")
	})
	require.NoError(t, err)
	assert.Empty(t, *stmts)

	q := forUpdate(db).Session(&gorm.Session{DryRun: true}).Find(&[]models.Unit{}).Statement
	assert.NotContains(t, q.SQL.String(), "FOR UPDATE")
}

func TestLockNames_PostgresStatements(t *testing.T) {
	db, err := gorm.Open(postgres.Open("host=localhost user=cookbook dbname=cookbook sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	stmts := recordRaw(t, db)

	require.NoError(t, LockNames(t.Context(), db, "unit"))
	require.Len(t, *stmts, 1)
	assert.Contains(t, (*stmts)[0], "pg_advisory_xact_lock(hashtext(")

	q := forUpdate(db).Find(&[]models.Unit{}).Statement
	assert.Contains(t, q.SQL.String(), "FOR UPDATE")
}
