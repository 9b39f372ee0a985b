// Package auth provides email/password authentication with server-side
// sessions. Passwords are bcrypt-hashed; session tokens are opaque random
// values handed to the client as a cookie.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"masarif/internal/store"
)

const (
	DefaultSessionTTL = 30 * 24 * time.Hour
	minPasswordLen    = 6
	tokenBytes        = 32
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrNotSignedIn        = errors.New("not signed in")
)

type Service struct {
	users      store.UserStore
	sessions   store.SessionStore
	sessionTTL time.Duration
}

func NewService(users store.UserStore, sessions store.SessionStore, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Service{users: users, sessions: sessions, sessionTTL: sessionTTL}
}

// SignUp registers a new account and opens a session for it.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (store.User, store.Session, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return store.User{}, store.Session{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return store.User{}, store.Session{}, ErrWeakPassword
	}
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return store.User{}, store.Session{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.User{}, store.Session{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, store.Session{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, store.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
	})
	if err != nil {
		return store.User{}, store.Session{}, fmt.Errorf("create user: %w", err)
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return store.User{}, store.Session{}, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID)
	return user, session, nil
}

// SignIn verifies credentials and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (store.User, store.Session, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, store.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.User{}, store.Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return store.User{}, store.Session{}, ErrInvalidCredentials
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return store.User{}, store.Session{}, err
	}

	slog.InfoContext(ctx, "User signed in", "user_id", user.ID)
	return user, session, nil
}

// SignOut invalidates a session token. Unknown tokens are not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ChangePassword requires the current password, matching the original
// re-authentication flow.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return ErrWeakPassword
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotSignedIn
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	slog.InfoContext(ctx, "Password changed", "user_id", userID)
	return nil
}

// UserFromToken resolves a session token to its user. Expired and unknown
// tokens both yield ErrNotSignedIn.
func (s *Service) UserFromToken(ctx context.Context, token string) (store.User, error) {
	if token == "" {
		return store.User{}, ErrNotSignedIn
	}
	session, err := s.sessions.GetSession(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, ErrNotSignedIn
	}
	if err != nil {
		return store.User{}, fmt.Errorf("lookup session: %w", err)
	}
	if session.ExpiresAt.Before(time.Now()) {
		_ = s.sessions.DeleteSession(ctx, token)
		return store.User{}, ErrNotSignedIn
	}
	user, err := s.users.GetUserByID(ctx, session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return store.User{}, ErrNotSignedIn
	}
	if err != nil {
		return store.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// PurgeExpired removes sessions past their expiry.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpiredSessions(ctx, time.Now())
}

// ResetPassword issues a one-time reset token for the account, valid
// for one hour. Delivering the token to the user (mail, SMS) is left
// to the caller; unknown emails report ErrInvalidCredentials so the
// HTTP layer can decide what to reveal.
func (s *Service) ResetPassword(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}

	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	session := store.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("create reset session: %w", err)
	}
	return token, nil
}

func (s *Service) openSession(ctx context.Context, userID int64) (store.Session, error) {
	token, err := newToken()
	if err != nil {
		return store.Session{}, fmt.Errorf("generate token: %w", err)
	}
	session := store.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return store.Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
