package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/minasenanami/wonderful-editor/internal/middleware"

	"gorm.io/gorm"
)

// migrationLockID is the postgres advisory lock serializing concurrent
// Up calls from several instances booting at once.
const migrationLockID = 727_001

const createMigrationLogSQL = `
CREATE TABLE IF NOT EXISTS migration_logs (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// migrationLog is one applied migration.
type migrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (migrationLog) TableName() string {
	return "migration_logs"
}

// Migrator applies and reverts SQL migrations, recording each in
// migration_logs.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
}

// NewMigrator returns a Migrator over the embedded migrations.
func NewMigrator(db *gorm.DB) (*Migrator, error) {
	ms, err := EmbeddedMigrations()
	if err != nil {
		return nil, err
	}
	return NewMigratorWith(db, ms), nil
}

// NewMigratorWith returns a Migrator over ms, which must be in version order.
func NewMigratorWith(db *gorm.DB, ms []Migration) *Migrator {
	return &Migrator{db: db, migrations: ms}
}

// Migrations lists every known migration in version order.
func (m *Migrator) Migrations() []Migration {
	return m.migrations
}

// Find returns the migration with version.
func (m *Migrator) Find(version int) (Migration, bool) {
	for _, mig := range m.migrations {
		if mig.Version == version {
			return mig, true
		}
	}
	return Migration{}, false
}

// Applied returns the applied versions in ascending order. A database that
// has never been migrated has none.
func (m *Migrator) Applied(ctx context.Context) ([]int, error) {
	var versions []int
	err := m.db.WithContext(ctx).Model(&migrationLog{}).Order("version ASC").Pluck("version", &versions).Error
	if err != nil {
		if isMissingTableError(err) {
			return []int{}, nil
		}
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	return versions, nil
}

// Pending returns the migrations not applied yet.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[int]struct{}, len(applied))
	for _, v := range applied {
		done[v] = struct{}{}
	}

	var pending []Migration
	for _, mig := range m.migrations {
		if _, ok := done[mig.Version]; !ok {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Up applies every pending migration and reports how many ran. Each one runs
// in its own transaction together with its log row.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	var count int
	err := m.withLock(ctx, func(db *gorm.DB) error {
		if err := db.Exec(createMigrationLogSQL).Error; err != nil {
			return fmt.Errorf("create migration_logs: %w", err)
		}

		applied, err := m.Applied(ctx)
		if err != nil {
			return err
		}
		if err := checkKnownVersions(applied, m.migrations); err != nil {
			return err
		}
		pending, err := m.Pending(ctx)
		if err != nil {
			return err
		}

		for _, mig := range pending {
			middleware.Logger.Info("applying migration", slog.String("migration", mig.String()))
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Exec(mig.Up).Error; err != nil {
					return fmt.Errorf("apply %s: %w", mig, err)
				}
				return tx.Create(&migrationLog{Version: mig.Version, Name: mig.Name}).Error
			})
			if err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, err
}

// Down reverts one applied migration.
func (m *Migrator) Down(ctx context.Context, version int) error {
	mig, ok := m.Find(version)
	if !ok {
		return fmt.Errorf("migration version %d not found", version)
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if i := sort.SearchInts(applied, version); i == len(applied) || applied[i] != version {
		return fmt.Errorf("migration %s has not been applied", mig)
	}

	middleware.Logger.Info("rolling back migration", slog.String("migration", mig.String()))
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(mig.Down).Error; err != nil {
			return fmt.Errorf("revert %s: %w", mig, err)
		}
		return tx.Where("version = ?", version).Delete(&migrationLog{}).Error
	})
}

// withLock runs fn on a single connection. On postgres that connection holds
// an advisory lock for the duration.
func (m *Migrator) withLock(ctx context.Context, fn func(db *gorm.DB) error) error {
	db := m.db.WithContext(ctx)
	if db.Dialector.Name() != "postgres" {
		return fn(db)
	}
	return db.Connection(func(conn *gorm.DB) error {
		if err := conn.Exec("SELECT pg_advisory_lock(?)", migrationLockID).Error; err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}
		defer func() {
			if err := conn.Exec("SELECT pg_advisory_unlock(?)", migrationLockID).Error; err != nil {
				middleware.Logger.Warn("release migration lock", slog.String("error", err.Error()))
			}
		}()
		return fn(conn)
	})
}

func isMissingTableError(err error) bool {
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

// checkKnownVersions refuses to migrate a database that has seen versions
// this binary does not ship, typically after deploying an older build.
func checkKnownVersions(applied []int, known []Migration) error {
	set := make(map[int]struct{}, len(known))
	for _, mig := range known {
		set[mig.Version] = struct{}{}
	}

	var unknown []string
	for _, v := range applied {
		if _, ok := set[v]; !ok {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("database has migrations this build does not know: %s", strings.Join(unknown, ", "))
}
