package repositories_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGORMAuditRepository_AppendFailureSurfaces(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	// No expectations: the database rejects every statement.
	repo := repositories.NewGORMAuditRepository(db)
	err = repo.Append(&models.AuditEvent{Token: "abc123", Phase: models.AuditStart})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to append audit event")

	assert.NoError(t, mock.ExpectationsWereMet())
}
