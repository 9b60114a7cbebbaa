// Package session holds the console's single "who is logged in" record and
// persists it through a Storage backend.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/DeliveryConsole/internal/domain"
	apperrors "github.com/utafrali/DeliveryConsole/pkg/errors"
)

// State is the lifecycle position of a Store.
type State int

const (
	StateUninitialized State = iota
	StateHydrating
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHydrating:
		return "hydrating"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is a point-in-time copy of the store's contents.
type Session struct {
	User  *domain.UserRecord `json:"user"`
	Token string             `json:"-"`
}

// Authenticated is true iff both the user and the token are set.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// Store is the single source of truth for the current operator. Every Login,
// Logout and Expire writes through to storage before returning.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	logger  *slog.Logger
	state   State
	user    *domain.UserRecord
	token   string
}

// NewStore creates an uninitialized store. Call Hydrate before use.
func NewStore(storage Storage, logger *slog.Logger) *Store {
	return &Store{
		storage: storage,
		logger:  logger,
		state:   StateUninitialized,
	}
}

// Hydrate loads a previously persisted session. Any storage or decode failure
// clears storage and leaves the store anonymous; it never fails.
func (s *Store) Hydrate(ctx context.Context) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateHydrating
	user, token, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("discarding unreadable session",
			slog.String("error", err.Error()),
		)
		if clearErr := s.storage.Clear(ctx, KeyUser, KeyToken); clearErr != nil {
			s.logger.Error("failed to clear session storage",
				slog.String("error", clearErr.Error()),
			)
		}
		s.setAnonymous()
		return s.state
	}

	if user == nil || token == "" {
		// A half-written session is as good as none.
		if user != nil || token != "" {
			if err := s.storage.Clear(ctx, KeyUser, KeyToken); err != nil {
				s.logger.Error("failed to clear session storage",
					slog.String("error", err.Error()),
				)
			}
		}
		s.setAnonymous()
		return s.state
	}

	s.user = user
	s.token = token
	s.state = StateAuthenticated
	s.logger.Debug("session restored", slog.String("user_id", user.ID))
	return s.state
}

func (s *Store) load(ctx context.Context) (*domain.UserRecord, string, error) {
	rawUser, hasUser, err := s.storage.Get(ctx, KeyUser)
	if err != nil {
		return nil, "", err
	}
	token, _, err := s.storage.Get(ctx, KeyToken)
	if err != nil {
		return nil, "", err
	}
	if !hasUser {
		return nil, token, nil
	}
	var user domain.UserRecord
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, "", fmt.Errorf("decode stored user: %w", err)
	}
	return &user, token, nil
}

// Login stores user and token. The token is not inspected.
func (s *Store) Login(ctx context.Context, user domain.UserRecord, token string) error {
	if token == "" {
		return apperrors.InvalidInput("login requires a token")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(ctx, map[string]string{
		KeyUser:  string(data),
		KeyToken: token,
	}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	u := user
	s.user = &u
	s.token = token
	s.state = StateAuthenticated
	s.logger.Info("operator logged in", slog.String("user_id", user.ID))
	return nil
}

// Logout clears the session from memory and storage. Memory is cleared even
// when storage fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setAnonymous()
	if err := s.storage.Clear(ctx, KeyUser, KeyToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info("operator logged out")
	return nil
}

// Expire is Logout triggered by the server rejecting the token.
func (s *Store) Expire(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var userID string
	if s.user != nil {
		userID = s.user.ID
	}
	s.setAnonymous()
	if err := s.storage.Clear(ctx, KeyUser, KeyToken); err != nil {
		return fmt.Errorf("clear expired session: %w", err)
	}
	s.logger.Warn("session expired", slog.String("user_id", userID))
	return nil
}

func (s *Store) setAnonymous() {
	s.user = nil
	s.token = ""
	s.state = StateAnonymous
}

// IsAuthenticated reports whether both user and token are set.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

// Token returns the bearer token, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the logged-in user, or nil.
func (s *Store) User() *domain.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var u *domain.UserRecord
	if s.user != nil {
		cp := *s.user
		u = &cp
	}
	return Session{User: u, Token: s.token}
}

// State returns the lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// TokenExpiry decodes the token's exp claim without verifying it. For display
// only; requests are never gated on it.
func (s *Store) TokenExpiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
