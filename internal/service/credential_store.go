package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/minasenanami/wonderful-editor/internal/middleware"
	"github.com/minasenanami/wonderful-editor/internal/models"
	"github.com/minasenanami/wonderful-editor/internal/observability"
	"github.com/minasenanami/wonderful-editor/internal/repository"

	"github.com/google/uuid"
)

// ErrCredentialNotFound covers every way a presented credential can fail to
// match a live session: unknown, expired, revoked or already rotated.
var ErrCredentialNotFound = errors.New("credential not found")

const (
	defaultSessionTTL = 14 * 24 * time.Hour
	tokenBytes        = 32
)

// Credential is a live session plus, when freshly issued or rotated, the
// plaintext token the client must send next.
type Credential struct {
	Session *models.Session
	User    *models.User
	Token   string
}

// Headers returns the values echoed to the client.
func (c *Credential) Headers() TokenHeaders {
	return TokenHeaders{
		AccessToken: c.Token,
		Client:      c.Session.ClientID,
		UID:         c.User.Email,
		Expiry:      strconv.FormatInt(c.Session.ExpiresAt.Unix(), 10),
	}
}

// CredentialStoreConfig tunes session lifetime and the per-user device cap.
type CredentialStoreConfig struct {
	TTL time.Duration
	// MaxDevices caps live sessions per user; zero means unlimited.
	MaxDevices int
}

// CredentialStore issues, looks up, rotates and revokes sessions.
type CredentialStore struct {
	sessions   repository.SessionRepository
	ttl        time.Duration
	maxDevices int
	now        func() time.Time
	newToken   func() (string, error)
}

// NewCredentialStore builds a store over the session repository.
func NewCredentialStore(sessions repository.SessionRepository, cfg CredentialStoreConfig) *CredentialStore {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &CredentialStore{
		sessions:   sessions,
		ttl:        ttl,
		maxDevices: cfg.MaxDevices,
		now:        func() time.Time { return time.Now().UTC() },
		newToken:   generateToken,
	}
}

// Issue creates a new session for user under a fresh client id.
func (s *CredentialStore) Issue(ctx context.Context, user *models.User) (*Credential, error) {
	token, err := s.newToken()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	now := s.now()
	session := &models.Session{
		UserID:     user.ID,
		ClientID:   uuid.NewString(),
		TokenHash:  hashToken(token),
		ExpiresAt:  now.Add(s.ttl),
		LastUsedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	observability.CredentialEvents.WithLabelValues("issued").Inc()

	if s.maxDevices > 0 {
		pruned, err := s.sessions.PruneOldest(ctx, user.ID, s.maxDevices)
		if err != nil {
			// The new session is valid; an over-cap user only keeps extra rows until the next issue.
			middleware.Logger.WarnContext(ctx, "failed to prune old sessions",
				slog.Uint64("user_id", uint64(user.ID)),
				slog.String("error", err.Error()),
			)
		} else if pruned > 0 {
			observability.CredentialEvents.WithLabelValues("pruned").Add(float64(pruned))
		}
	}

	return &Credential{Session: session, User: user, Token: token}, nil
}

// Lookup resolves a (token, client id) pair. Both must match the same row.
// An expired row is deleted and reported as not found.
func (s *CredentialStore) Lookup(ctx context.Context, token, clientID string) (*Credential, error) {
	if token == "" || clientID == "" {
		return nil, ErrCredentialNotFound
	}

	session, err := s.sessions.FindByClientAndHash(ctx, clientID, hashToken(token))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrCredentialNotFound
	}

	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to purge expired session",
				slog.Uint64("session_id", uint64(session.ID)),
				slog.String("error", err.Error()),
			)
		} else {
			observability.CredentialEvents.WithLabelValues("expired").Inc()
		}
		return nil, ErrCredentialNotFound
	}

	user := session.User
	return &Credential{Session: session, User: &user, Token: token}, nil
}

// Rotate replaces the token of cred's session. It succeeds only if the session
// still carries the token cred was looked up with; otherwise the caller lost
// a race or replayed an old token and gets ErrCredentialNotFound.
func (s *CredentialStore) Rotate(ctx context.Context, cred *Credential) (*Credential, error) {
	token, err := s.newToken()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	now := s.now()
	next := *cred.Session
	if err := s.sessions.Rotate(ctx, &next, hashToken(token), now.Add(s.ttl), now); err != nil {
		if errors.Is(err, repository.ErrStaleSession) {
			observability.CredentialEvents.WithLabelValues("stale").Inc()
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}
	observability.CredentialEvents.WithLabelValues("rotated").Inc()

	return &Credential{Session: &next, User: cred.User, Token: token}, nil
}

// Revoke deletes the session. Revoking twice is harmless.
func (s *CredentialStore) Revoke(ctx context.Context, cred *Credential) error {
	if err := s.sessions.Delete(ctx, cred.Session.ID); err != nil {
		return err
	}
	observability.CredentialEvents.WithLabelValues("revoked").Inc()
	return nil
}

// PurgeExpired deletes every session past its expiry.
func (s *CredentialStore) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		observability.CredentialEvents.WithLabelValues("purged").Add(float64(n))
	}
	return n, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashToken is the at-rest form of a token.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
