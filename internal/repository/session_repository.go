package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/rgb-survey-api/internal/models"
	appErrors "github.com/noah-isme/rgb-survey-api/pkg/errors"
)

// SessionRepository stores survey sessions in Redis as JSON payloads.
type SessionRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewSessionRepository constructs a Redis-backed session repository.
func NewSessionRepository(client *redis.Client, prefix string, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{client: client, prefix: prefix, logger: logger}
}

func (r *SessionRepository) key(id string) string {
	return r.prefix + id
}

// Get loads the session. Unknown or expired ids report ErrCacheMiss.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.SurveySession, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get %s: %w", r.key(id), err)
	}

	var session models.SurveySession
	if err := json.Unmarshal(raw, &session); err != nil {
		r.logger.Warn("discarding unreadable session", zap.String("session_id", id), zap.Error(err))
		_ = r.client.Del(ctx, r.key(id)).Err()
		return nil, appErrors.ErrCacheMiss
	}
	return &session, nil
}

// Put stores the session with the given TTL.
func (r *SessionRepository) Put(ctx context.Context, session *models.SurveySession, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client not configured")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.ID, err)
	}
	if err := r.client.Set(ctx, r.key(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key(session.ID), err)
	}
	return nil
}

// Delete removes the session if present.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", r.key(id), err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *SessionRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

type memoryEntry struct {
	session   *models.SurveySession
	expiresAt time.Time
}

// MemorySessionRepository keeps sessions in process memory with per-entry expiry.
type MemorySessionRepository struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySessionRepository constructs an empty in-memory store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get returns the session while it has not expired.
func (r *MemorySessionRepository) Get(_ context.Context, id string) (*models.SurveySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && !r.now().Before(entry.expiresAt) {
		delete(r.entries, id)
		return nil, appErrors.ErrCacheMiss
	}
	return entry.session, nil
}

// Put stores the session. A non-positive TTL never expires.
func (r *MemorySessionRepository) Put(_ context.Context, session *models.SurveySession, ttl time.Duration) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("session id required")
	}
	entry := memoryEntry{session: session}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	r.entries[session.ID] = entry
	return nil
}

// Delete removes the session if present.
func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

// Len reports the number of live sessions.
func (r *MemorySessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	return len(r.entries)
}

func (r *MemorySessionRepository) pruneLocked() {
	now := r.now()
	for id, entry := range r.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(r.entries, id)
		}
	}
}
