package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/minasenanami/wonderful-editor/internal/middleware"
)

const (
	ArticleKeyPrefix      = "article:%d"
	ArticlesListKeyPrefix = "articles:list:%d:%d"
	articlesListPattern   = "articles:list:*"
)

const (
	ArticleTTL      = 10 * time.Minute
	ArticlesListTTL = 1 * time.Minute
)

func ArticleKey(articleID uint) string {
	return fmt.Sprintf(ArticleKeyPrefix, articleID)
}

func ArticlesListKey(limit, offset int) string {
	return fmt.Sprintf(ArticlesListKeyPrefix, limit, offset)
}

func Invalidate(ctx context.Context, key string) {
	if client == nil {
		return
	}
	if err := client.Del(ctx, key).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidate failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// InvalidateArticleLists drops every cached list page. List pages embed
// updated_at and author data, so any article write makes them stale.
func InvalidateArticleLists(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, articlesListPattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache scan failed", slog.String("error", err.Error()))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidate failed",
			slog.String("pattern", articlesListPattern),
			slog.String("error", err.Error()),
		)
	}
}

func InvalidateArticle(ctx context.Context, articleID uint) {
	Invalidate(ctx, ArticleKey(articleID))
	InvalidateArticleLists(ctx)
}
