package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"terminal-voice-backend/config"
)

func TestDialector(t *testing.T) {
	d, err := Dialector(&config.DatabaseConfig{Driver: "postgres", DSN: "host=localhost"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialector(&config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = Dialector(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestInit_SQLiteMemory(t *testing.T) {
	db, err := Init(&config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:?cache=shared"}, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable("event_records"))
	assert.True(t, db.Migrator().HasTable("push_subscriptions"))
}
