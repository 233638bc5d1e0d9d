package postgres

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert receipt: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, isUniqueViolation(wrapped))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
}

func TestClampPage(t *testing.T) {
	l, o := clampPage(0, -3)
	assert.Equal(t, 50, l)
	assert.Equal(t, 0, o)
	l, _ = clampPage(9000, 0)
	assert.Equal(t, 500, l)
	l, o = clampPage(20, 40)
	assert.Equal(t, 20, l)
	assert.Equal(t, 40, o)
}

func TestNullHelpers(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "x", *nullIfEmpty("x"))
	assert.Equal(t, "", derefStr(nil))
	assert.Nil(t, nullJSON([]byte{}))
}

func TestMigracionesEmbebidas(t *testing.T) {
	up, err := fs.ReadFile(migrationsFS, "migrations/0001_init.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"pos_api_receipts", "pos_api_return_logs", "pos_api_update_logs", "pos_api_settings"} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.True(t, strings.Contains(string(up), "UNIQUE (order_id, merchant_tin)"))

	_, err = fs.ReadFile(migrationsFS, "migrations/0001_init.down.sql")
	require.NoError(t, err)
}
