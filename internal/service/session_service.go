package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/rgb-survey-api/internal/models"
	appErrors "github.com/noah-isme/rgb-survey-api/pkg/errors"
)

// SessionStore abstracts persistence for uploaded survey sessions.
type SessionStore interface {
	Get(ctx context.Context, id string) (*models.SurveySession, error)
	Put(ctx context.Context, session *models.SurveySession, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// SessionService owns the lifetime of survey sessions and the related metrics.
type SessionService struct {
	store   SessionStore
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewSessionService constructs a session service.
func NewSessionService(store SessionStore, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{store: store, metrics: metrics, ttl: ttl, logger: logger}
}

// Get returns the live session. Unknown or expired sessions report ErrSessionExpired.
func (s *SessionService) Get(ctx context.Context, id string) (*models.SurveySession, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sessionId is required")
	}
	start := time.Now()
	session, err := s.store.Get(ctx, id)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordSessionLookup(false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.ErrSessionExpired
		}
		s.logger.Warn("session get failed", zap.String("session_id", id), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load survey session")
	}
	s.metrics.RecordSessionLookup(true, duration)
	return session, nil
}

// Put stores the session for the configured TTL.
func (s *SessionService) Put(ctx context.Context, session *models.SurveySession) error {
	start := time.Now()
	err := s.store.Put(ctx, session, s.ttl)
	s.metrics.ObserveSessionWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("session put failed", zap.String("session_id", session.ID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store survey session")
	}
	return nil
}

// Discard drops the session so the next attempt starts from a fresh upload.
func (s *SessionService) Discard(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn("session discard failed", zap.String("session_id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to discard survey session")
	}
	return nil
}

// TTL returns how long sessions live.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}
