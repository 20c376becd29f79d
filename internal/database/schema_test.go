package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t.Run("applies schema", func(t *testing.T) {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS branches").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, Migrate(context.Background(), db))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports failure", func(t *testing.T) {
		mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

		err := Migrate(context.Background(), db)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize schema")
	})
}

func TestSchemaConstraints(t *testing.T) {
	assert.Contains(t, Schema, "UNIQUE (branch_id, date)")
	assert.Contains(t, Schema, "voucher_no   VARCHAR(50) NOT NULL UNIQUE")
	assert.Contains(t, Schema, "ON DELETE CASCADE")
}

func TestDBConfig_DSN(t *testing.T) {
	cfg := &DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "cashbook", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=cashbook sslmode=disable", cfg.DSN())
}
