package bootstrap

import (
	"path/filepath"
	"testing"

	"github.com/minasenanami/wonderful-editor/internal/cache"
	"github.com/minasenanami/wonderful-editor/internal/config"
	"github.com/minasenanami/wonderful-editor/internal/models"
	"github.com/minasenanami/wonderful-editor/internal/seed"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T, env string) *config.Config {
	t.Helper()
	mr := miniredis.RunT(t)
	t.Cleanup(func() { _ = cache.Close() })
	return &config.Config{
		Env:          env,
		DBDriver:     "sqlite",
		DBPath:       filepath.Join(t.TempDir(), "runtime.db"),
		DBSchemaMode: "auto",
		RedisURL:     mr.Addr(),
	}
}


func TestInitRuntime_SeedsEmptyDevelopmentDatabaseOnce(t *testing.T) {
	cfg := sqliteConfig(t, "development")
	opts := Options{SeedDemo: true, Seed: seed.Options{Users: 3, Articles: 4}}

	db, rdb, err := InitRuntime(cfg, opts)
	require.NoError(t, err)
	require.NotNil(t, rdb)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(3), users)

	require.NoError(t, seedDemo(cfg, db, opts.Seed))
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(3), users, "a populated database is left alone")
}

func TestInitRuntime_NoSeedOutsideDevelopment(t *testing.T) {
	cfg := sqliteConfig(t, "test")

	db, _, err := InitRuntime(cfg, Options{SeedDemo: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}
