// Package session holds the authenticated account's credentials: the bearer
// token and the profile fetched at login. State lives in memory and, when a
// durable cache is available, survives process restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/worklog-dictionaries/internal/cache"
	"github.com/spec-kit/worklog-dictionaries/internal/domain"
)

const (
	tokenStorageKey   = "worklog.accessToken"
	profileStorageKey = "worklog.profile"
)

// Store owns the credential lifecycle. All methods are safe for concurrent
// use.
type Store struct {
	mu       sync.RWMutex
	token    string
	profile  *domain.UserProfile
	hydrated bool

	cache  cache.Store
	logger *zap.Logger
}

// New constructs a session store. A nil cache disables durability.
func New(store cache.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{cache: store, logger: logger}
}

// HydrateFromStorage restores the token and profile from the durable cache.
// Best-effort: corrupt or missing values are discarded silently.
func (s *Store) HydrateFromStorage(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated || s.cache == nil {
		return
	}
	s.hydrated = true

	if raw, err := s.cache.Get(ctx, tokenStorageKey); err == nil {
		s.token = string(raw)
	} else if !errors.Is(err, cache.ErrNotFound) {
		s.logger.Debug("session token hydrate failed", zap.Error(err))
	}

	raw, err := s.cache.Get(ctx, profileStorageKey)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Debug("session profile hydrate failed", zap.Error(err))
		}
		return
	}
	var profile domain.UserProfile
	if err := domain.DecodeStrict(raw, &profile); err != nil {
		s.logger.Debug("discarding corrupt stored profile", zap.Error(err))
		return
	}
	s.profile = &profile
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Token returns the current bearer token, empty when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Profile returns a copy of the stored profile, or nil when signed out.
func (s *Store) Profile() *domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	copied := *s.profile
	return &copied
}

// SetCredentials stores the token and profile, writing through to the
// durable cache when one is configured.
func (s *Store) SetCredentials(ctx context.Context, token string, profile domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.profile = &profile
	s.hydrated = true

	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, tokenStorageKey, []byte(token)); err != nil {
		s.logger.Warn("persist token failed", zap.Error(err))
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		s.logger.Warn("encode profile failed", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, profileStorageKey, raw); err != nil {
		s.logger.Warn("persist profile failed", zap.Error(err))
	}
}

// Clear wipes credentials from memory and from the durable cache. Called on
// explicit logout and by the transport on a 401.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.profile = nil

	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, tokenStorageKey); err != nil {
		s.logger.Warn("clear token failed", zap.Error(err))
	}
	if err := s.cache.Delete(ctx, profileStorageKey); err != nil {
		s.logger.Warn("clear profile failed", zap.Error(err))
	}
}
