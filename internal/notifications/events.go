// Package notifications fans article activity out to WebSocket subscribers
// through a Redis channel, so every server instance sees every event.
package notifications

import "time"

// Channel is the Redis pub/sub channel carrying article events.
const Channel = "articles:events"

// EventType names what happened to an article.
type EventType string

const (
	ArticleCreated EventType = "article_created"
	ArticleUpdated EventType = "article_updated"
	ArticleDeleted EventType = "article_deleted"
	ArticleLiked   EventType = "article_liked"
	ArticleUnliked EventType = "article_unliked"
)

// ArticleEvent is the payload published on Channel and forwarded to clients.
type ArticleEvent struct {
	Type       EventType `json:"type"`
	ArticleID  uint      `json:"article_id"`
	ActorID    uint      `json:"actor_id"`
	Title      string    `json:"title,omitempty"`
	LikesCount *int64    `json:"likes_count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
