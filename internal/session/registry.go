// Package session keeps the active wizard instances, one per onboarding
// session. An evicted session is not lost state: the next touch rebuilds
// the wizard and rehydrates its draft from the draft store.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/buildlink/onboarding-api/internal/draftstore"
	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/internal/wizard"
	"github.com/buildlink/onboarding-api/pkg/logger"
	"github.com/buildlink/onboarding-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const cacheCheckPeriod = time.Minute

// Registry is the TTL cache of live wizards. Each access extends the
// session's lifetime; idle sessions expire and fall back to the draft
// store.
type Registry struct {
	cache     *gocache.Cache
	ttl       time.Duration
	store     draftstore.Store
	submitter wizard.Submitter

	mu sync.Mutex
}

// NewRegistry creates a session registry with the given idle TTL.
func NewRegistry(ttl time.Duration, store draftstore.Store, submitter wizard.Submitter) *Registry {
	c := gocache.New(ttl, cacheCheckPeriod)
	c.OnEvicted(func(sessionID string, _ any) {
		metrics.ActiveSessions.Dec()
		logger.Debug("Onboarding session expired", zap.String("session_id", sessionID))
	})

	return &Registry{
		cache:     c,
		ttl:       ttl,
		store:     store,
		submitter: submitter,
	}
}

// GetOrCreate returns the live wizard for the session, building and
// rehydrating one when none is cached. The session's TTL is refreshed on
// every call.
func (r *Registry) GetOrCreate(ctx context.Context, sessionID string, userID int, role models.Role) *wizard.Wizard {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache.Get(sessionID); ok {
		w := cached.(*wizard.Wizard)
		r.cache.SetDefault(sessionID, w)
		return w
	}

	w := wizard.New(ctx, sessionID, userID, role, r.store, r.submitter)
	r.cache.SetDefault(sessionID, w)
	metrics.ActiveSessions.Inc()

	logger.Info("Onboarding session started",
		zap.String("session_id", sessionID),
		zap.Int("user_id", userID),
		zap.String("role", string(role)))
	return w
}

// Get returns the live wizard for the session without creating one.
func (r *Registry) Get(sessionID string) (*wizard.Wizard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cached, ok := r.cache.Get(sessionID)
	if !ok {
		return nil, false
	}
	w := cached.(*wizard.Wizard)
	r.cache.SetDefault(sessionID, w)
	return w, true
}

// Remove drops the session, typically after a completed submission.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cache.Get(sessionID); ok {
		r.cache.Delete(sessionID)
	}
}
