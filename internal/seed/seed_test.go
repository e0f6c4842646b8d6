package seed

import (
	"context"
	"testing"

	"github.com/minasenanami/wonderful-editor/internal/models"
	"github.com/minasenanami/wonderful-editor/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	res, err := NewSeeder(db, Options{Users: 5, Articles: 12, MaxLikesPerArticle: 3, RandSeed: 42}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Users)
	assert.Equal(t, 12, res.Articles)

	var users, articles, likes int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Article{}).Count(&articles).Error)
	require.NoError(t, db.Model(&models.ArticleLike{}).Count(&likes).Error)
	assert.Equal(t, int64(5), users)
	assert.Equal(t, int64(12), articles)
	assert.Equal(t, int64(res.Likes), likes)
	assert.LessOrEqual(t, likes, int64(12*3))

	var u models.User
	require.NoError(t, db.First(&u).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordDigest), []byte(DefaultPassword)))
}

func TestSeeder_Clean(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := NewSeeder(db, Options{Users: 3, Articles: 3, MaxLikesPerArticle: 2}).Run(ctx)
	require.NoError(t, err)

	res, err := NewSeeder(db, Options{Users: 2, Articles: 1, Clean: true}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Likes)

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(2), users)
}

func TestSeeder_NothingRequested(t *testing.T) {
	db := testutil.NewTestDB(t)

	res, err := NewSeeder(db, Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}
