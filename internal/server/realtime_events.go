package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/minasenanami/wonderful-editor/internal/featureflags"
	"github.com/minasenanami/wonderful-editor/internal/middleware"
	"github.com/minasenanami/wonderful-editor/internal/notifications"
)

const publishTimeout = 2 * time.Second

// publishArticleEvent sends ev to every feed subscriber. With Redis it goes
// through pub/sub so all instances see it; without Redis only local clients
// do. During a partial rollout only events from authors inside it are sent.
// Failures are logged and never fail the request.
func (s *Server) publishArticleEvent(ctx context.Context, ev notifications.ArticleEvent) {
	if !s.featureFlags.Enabled(featureflags.ActivityFeed, ev.ActorID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, ev); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish article event",
				slog.String("type", string(ev.Type)),
				slog.Uint64("article_id", uint64(ev.ArticleID)),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to marshal article event", slog.String("error", err.Error()))
		return
	}
	s.hub.BroadcastAll(payload)
}

// publishLikeEvent attaches the current like count when it can be read.
func (s *Server) publishLikeEvent(ctx context.Context, typ notifications.EventType, articleID, actorID uint) {
	if !s.featureFlags.Enabled(featureflags.ActivityFeed, actorID) {
		return
	}
	ev := notifications.ArticleEvent{Type: typ, ArticleID: articleID, ActorID: actorID}
	if count, err := s.likeRepo.CountByArticle(ctx, articleID); err == nil {
		ev.LikesCount = &count
	}
	s.publishArticleEvent(ctx, ev)
}
