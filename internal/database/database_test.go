package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/minasenanami/wonderful-editor/internal/config"
	"github.com/minasenanami/wonderful-editor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := SQLiteDSN(fmt.Sprintf("file:dbtest_%d?mode=memory&cache=shared", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBDriver:                 "postgres",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)

	require.NoError(t, configurePool(db, &config.Config{DBDriver: "sqlite"}))
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "app.db?_foreign_keys=on", SQLiteDSN("app.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", SQLiteDSN("file:x?mode=memory"))
}

func TestDialector(t *testing.T) {
	d, err := Dialector(&config.Config{DBDriver: "sqlite", DBPath: "x.db"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = Dialector(&config.Config{DBHost: "localhost", DBPort: "5432"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialector(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestApplySchema_SQLiteAutoMigrates(t *testing.T) {
	db := openSQLite(t)
	cfg := &config.Config{Env: "test", DBDriver: "sqlite", DBSchemaMode: SchemaModeHybrid}

	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	for _, model := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.True(t, db.Migrator().HasIndex(&models.ArticleLike{}, "idx_article_likes_user_article"))
	assert.True(t, db.Migrator().HasIndex(&models.Session{}, "idx_sessions_user_client"))
	assert.False(t, db.Migrator().HasColumn(&models.Article{}, "likes_count"))
}

func TestApplySchema_CascadeDeletesOwnedRows(t *testing.T) {
	db := openSQLite(t)
	cfg := &config.Config{Env: "test", DBDriver: "sqlite"}
	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	user := models.User{Name: "a", Email: "a@example.com", PasswordDigest: "x"}
	require.NoError(t, db.Create(&user).Error)
	article := models.Article{Title: "t", Body: "b", UserID: user.ID}
	require.NoError(t, db.Create(&article).Error)
	require.NoError(t, db.Create(&models.ArticleLike{UserID: user.ID, ArticleID: article.ID}).Error)

	require.NoError(t, db.Delete(&models.Article{}, article.ID).Error)

	var likes int64
	require.NoError(t, db.Model(&models.ArticleLike{}).Count(&likes).Error)
	assert.Zero(t, likes)
}

func TestGetSchemaStatus_SQLite(t *testing.T) {
	db := openSQLite(t)
	status, err := GetSchemaStatus(context.Background(), db, &config.Config{Env: "development", DBDriver: "sqlite"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Driver)
	assert.False(t, status.RunSQL)
	assert.True(t, status.RunAuto)
	assert.Empty(t, status.Pending)
}
