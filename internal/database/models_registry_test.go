package database

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestPersistentModels_ParentsFirst(t *testing.T) {
	cache := &sync.Map{}
	var tables []string
	for _, model := range PersistentModels() {
		s, err := schema.Parse(model, cache, schema.NamingStrategy{})
		require.NoError(t, err)
		tables = append(tables, s.Table)
	}
	assert.Equal(t, []string{"users", "articles", "article_likes", "sessions"}, tables)
}
