package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wonderful_editor_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CredentialEvents counts credential lifecycle events (issued, rotated, stale, revoked, purged).
	CredentialEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wonderful_editor_credential_events_total",
		Help: "Credential lifecycle events by type",
	}, []string{"event"})

	// LikeConflicts counts rejected duplicate likes.
	LikeConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wonderful_editor_like_conflicts_total",
		Help: "Total number of duplicate like attempts",
	})

	// FeedEvents counts activity feed events published, by type.
	FeedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wonderful_editor_feed_events_total",
		Help: "Activity feed events published by type",
	}, []string{"event_type"})

	// FeedDrops counts feed messages not delivered to a WebSocket client.
	FeedDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wonderful_editor_feed_drops_total",
		Help: "Activity feed messages dropped per reason",
	}, []string{"reason"})
)

const queryStartKey = "observability:query_start"

// RegisterGormCallbacks installs callbacks that feed DatabaseQueryLatency.
func RegisterGormCallbacks(db *gorm.DB) error {
	cb := db.Callback()

	type hook struct {
		op       string
		register func(before, after func(*gorm.DB)) error
	}

	hooks := []hook{
		{"create", func(before, after func(*gorm.DB)) error {
			if err := cb.Create().Before("gorm:create").Register("observability:before_create", before); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("observability:after_create", after)
		}},
		{"query", func(before, after func(*gorm.DB)) error {
			if err := cb.Query().Before("gorm:query").Register("observability:before_query", before); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("observability:after_query", after)
		}},
		{"update", func(before, after func(*gorm.DB)) error {
			if err := cb.Update().Before("gorm:update").Register("observability:before_update", before); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("observability:after_update", after)
		}},
		{"delete", func(before, after func(*gorm.DB)) error {
			if err := cb.Delete().Before("gorm:delete").Register("observability:before_delete", before); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("observability:after_delete", after)
		}},
		{"raw", func(before, after func(*gorm.DB)) error {
			if err := cb.Raw().Before("gorm:raw").Register("observability:before_raw", before); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register("observability:after_raw", after)
		}},
	}

	for _, h := range hooks {
		if err := h.register(markQueryStart, observeQuery(h.op)); err != nil {
			return err
		}
	}
	return nil
}

func markQueryStart(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

func observeQuery(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := tx.Statement.Table
		if table == "" {
			table = "unknown"
		}
		DatabaseQueryLatency.WithLabelValues(op, table).Observe(time.Since(start).Seconds())
	}
}
