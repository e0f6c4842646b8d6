package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/minasenanami/wonderful-editor/internal/middleware"
	"github.com/minasenanami/wonderful-editor/internal/models"
	"github.com/minasenanami/wonderful-editor/internal/repository"
)

// Header names of the credential triple, plus the expiry echoed beside it.
const (
	HeaderAccessToken = "access-token"
	HeaderClient      = "client"
	HeaderUID         = "uid"
	HeaderExpiry      = "expiry"
)

const (
	// LoginFailureMessage is the only text a failed sign-in ever returns.
	LoginFailureMessage = "Invalid login credentials. Please try again."
	// UnauthorizedMessage is returned for missing, expired or garbled session credentials.
	UnauthorizedMessage = "You need to sign in or sign up before continuing."
)

// TokenHeaders is the credential as carried on the wire.
type TokenHeaders struct {
	AccessToken string
	Client      string
	UID         string
	Expiry      string
}

func (h TokenHeaders) empty() bool {
	return h.AccessToken == "" && h.Client == "" && h.UID == ""
}

func (h TokenHeaders) complete() bool {
	return h.AccessToken != "" && h.Client != "" && h.UID != ""
}

// AuthResult is a successful authentication. Anonymous results carry no headers.
type AuthResult struct {
	Identity Identity
	Headers  TokenHeaders
}

// Anonymous reports whether the request carried no credentials at all.
func (r *AuthResult) Anonymous() bool {
	return r.Identity.IsAnonymous()
}

// Authenticator turns request headers and sign-in attempts into identities.
type Authenticator struct {
	users  repository.UserRepository
	store  *CredentialStore
	hasher PasswordHasher
}

// NewAuthenticator wires the authenticator to its collaborators.
func NewAuthenticator(users repository.UserRepository, store *CredentialStore, hasher PasswordHasher) *Authenticator {
	return &Authenticator{users: users, store: store, hasher: hasher}
}

// Unauthenticated is the error for a caller that must sign in first.
func Unauthenticated() error {
	return models.NewUnauthorizedError(UnauthorizedMessage)
}

// IsLoginFailure reports whether err is the generic sign-in rejection.
func IsLoginFailure(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == models.CodeUnauthorized && appErr.Message == LoginFailureMessage
}

// Authenticate resolves headers to an identity and rotates the session.
// No headers at all is anonymous; a partial set or any mismatch is
// Unauthorized. The returned headers must be sent back to the client.
func (a *Authenticator) Authenticate(ctx context.Context, in TokenHeaders) (*AuthResult, error) {
	if in.empty() {
		middleware.AuthOutcomes.WithLabelValues("anonymous").Inc()
		return &AuthResult{Identity: Anonymous}, nil
	}

	cred, err := a.resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	rotated, err := a.store.Rotate(ctx, cred)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			middleware.AuthOutcomes.WithLabelValues("stale").Inc()
			return nil, Unauthenticated()
		}
		return nil, err
	}

	middleware.AuthOutcomes.WithLabelValues("authenticated").Inc()
	return &AuthResult{
		Identity: identityOf(rotated.User),
		Headers:  rotated.Headers(),
	}, nil
}

// Login verifies email and password and issues a new session. Unknown email
// and wrong password fail identically.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Credential, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		a.hasher.Verify(password, "")
		middleware.AuthOutcomes.WithLabelValues("login_failed").Inc()
		return nil, models.NewUnauthorizedError(LoginFailureMessage)
	}
	if !a.hasher.Verify(password, user.PasswordDigest) {
		middleware.AuthOutcomes.WithLabelValues("login_failed").Inc()
		return nil, models.NewUnauthorizedError(LoginFailureMessage)
	}

	cred, err := a.store.Issue(ctx, user)
	if err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "user signed in",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("client", cred.Session.ClientID),
	)
	return cred, nil
}

// SignIn issues a session for a user who was just verified another way, such
// as at registration.
func (a *Authenticator) SignIn(ctx context.Context, user *models.User) (*Credential, error) {
	return a.store.Issue(ctx, user)
}

// Logout revokes the session the headers name. The session is not rotated first.
func (a *Authenticator) Logout(ctx context.Context, in TokenHeaders) error {
	cred, err := a.resolve(ctx, in)
	if err != nil {
		return err
	}
	return a.store.Revoke(ctx, cred)
}

// resolve finds the live session for a complete header set.
func (a *Authenticator) resolve(ctx context.Context, in TokenHeaders) (*Credential, error) {
	if !in.complete() {
		middleware.AuthOutcomes.WithLabelValues("invalid").Inc()
		return nil, Unauthenticated()
	}

	cred, err := a.store.Lookup(ctx, in.AccessToken, in.Client)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			middleware.AuthOutcomes.WithLabelValues("invalid").Inc()
			return nil, Unauthenticated()
		}
		return nil, err
	}
	if cred.User.Email != in.UID {
		middleware.AuthOutcomes.WithLabelValues("invalid").Inc()
		return nil, Unauthenticated()
	}
	return cred, nil
}

func identityOf(user *models.User) Identity {
	return Identity{UserID: user.ID, Email: user.Email, Name: user.Name}
}
