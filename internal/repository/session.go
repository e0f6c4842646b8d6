package repository

import (
	"context"
	"errors"
	"time"

	"github.com/minasenanami/wonderful-editor/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository persists credentials. Rows are keyed by (user, client).
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByClientAndHash(ctx context.Context, clientID, tokenHash string) (*models.Session, error)
	Rotate(ctx context.Context, current *models.Session, newHash string, expiresAt, usedAt time.Time) error
	Delete(ctx context.Context, id uint) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	PruneOldest(ctx context.Context, userID uint, keep int) (int64, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository returns a new SessionRepository implementation.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(session).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Client already registered")
		}
		return classify(err)
	}
	return nil
}

// FindByClientAndHash returns (nil, nil) when no session matches.
func (r *sessionRepository) FindByClientAndHash(ctx context.Context, clientID, tokenHash string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("client_id = ? AND token_hash = ?", clientID, tokenHash).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &session, nil
}

// Rotate swaps the token digest only if the row still carries the digest and
// rotation count the caller read. A lost race returns ErrStaleSession.
func (r *sessionRepository) Rotate(ctx context.Context, current *models.Session, newHash string, expiresAt, usedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND token_hash = ? AND rotation_count = ?", current.ID, current.TokenHash, current.RotationCount).
		Updates(map[string]interface{}{
			"token_hash":     newHash,
			"rotation_count": gorm.Expr("rotation_count + 1"),
			"expires_at":     expiresAt,
			"last_used_at":   usedAt,
		})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleSession
	}

	current.TokenHash = newHash
	current.RotationCount++
	current.ExpiresAt = expiresAt
	current.LastUsedAt = usedAt
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Session{}, id).Error; err != nil {
		return classify(err)
	}
	return nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	return res.RowsAffected, nil
}

// PruneOldest keeps the `keep` most recently used sessions of a user and
// deletes the rest.
func (r *sessionRepository) PruneOldest(ctx context.Context, userID uint, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	newest := r.db.Model(&models.Session{}).
		Select("id").
		Where("user_id = ?", userID).
		Order("last_used_at DESC").
		Order("id DESC").
		Limit(keep)

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id NOT IN (?)", userID, newest).
		Delete(&models.Session{})
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *sessionRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Session{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, classify(err)
	}
	return count, nil
}
