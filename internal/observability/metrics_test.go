package observability

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type probe struct {
	ID   uint
	Name string
}

func TestRegisterGormCallbacks_ObservesLatency(t *testing.T) {
	dsn := fmt.Sprintf("file:obs_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&probe{}))

	require.NoError(t, RegisterGormCallbacks(db))

	before := testutil.CollectAndCount(DatabaseQueryLatency)

	require.NoError(t, db.Create(&probe{Name: "a"}).Error)
	var got probe
	require.NoError(t, db.First(&got).Error)

	assert.Equal(t, "a", got.Name)
	assert.Greater(t, testutil.CollectAndCount(DatabaseQueryLatency), before)
}
