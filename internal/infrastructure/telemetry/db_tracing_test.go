package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/outpost-commerce/backend/internal/infrastructure/telemetry"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := openTestDB(t)

	cfg := telemetry.DefaultDBTracingConfig()
	require.False(t, cfg.Enabled)

	err := telemetry.RegisterDBTracing(db, cfg, zaptest.NewLogger(t))
	assert.NoError(t, err)
}

func TestRegisterDBTracing_Enabled(t *testing.T) {
	db := openTestDB(t)

	cfg := telemetry.DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBName = "sqlite"

	err := telemetry.RegisterDBTracing(db, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	// Queries still work with the plugin attached
	var one int
	assert.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
