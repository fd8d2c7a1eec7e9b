package database

import (
	"fmt"
	"testing"

	"storefront/internal/logger"
	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestOpenAndMigrate_SQLite(t *testing.T) {
	db, err := Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []any{&models.User{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{}, &models.Product{}, &models.AuditEvent{}} {
		assert.True(t, db.Migrator().HasTable(table), "%T table missing", table)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	assert.Error(t, err)
}

func TestGormLogger_SkipsRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	defer logger.Replace(zap.New(core))()

	db, err := Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	logs.TakeAll()

	var user models.User
	err = db.First(&user, "id = ?", "missing").Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len(), "record not found must not be logged")

	var n int
	err = db.Raw("SELECT count(*) FROM no_such_table").Scan(&n).Error
	require.Error(t, err)
	entries := logs.All()
	require.NotEmpty(t, entries)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "no_such_table")
}
