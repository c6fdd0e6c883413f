package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/buildlink/onboarding-api/internal/draftstore"
	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/internal/session"
	"github.com/buildlink/onboarding-api/internal/submit"
	"github.com/buildlink/onboarding-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

type noopSubmitter struct{}

func (noopSubmitter) Submit(ctx context.Context, sessionID string, userID int, draft *models.Draft) (*submit.Result, error) {
	return &submit.Result{State: submit.StateSucceeded}, nil
}

func TestRegistry_GetOrCreateReturnsSameInstance(t *testing.T) {
	store := draftstore.NewMemoryStore()
	registry := session.NewRegistry(time.Minute, store, noopSubmitter{})
	ctx := context.Background()

	first := registry.GetOrCreate(ctx, "sess-1", 42, models.RoleDeveloper)
	second := registry.GetOrCreate(ctx, "sess-1", 42, models.RoleDeveloper)
	assert.Same(t, first, second)

	other := registry.GetOrCreate(ctx, "sess-2", 7, models.RoleClient)
	assert.NotSame(t, first, other)
}

func TestRegistry_GetWithoutCreate(t *testing.T) {
	store := draftstore.NewMemoryStore()
	registry := session.NewRegistry(time.Minute, store, noopSubmitter{})

	_, ok := registry.Get("sess-1")
	assert.False(t, ok)

	created := registry.GetOrCreate(context.Background(), "sess-1", 42, models.RoleDeveloper)
	got, ok := registry.Get("sess-1")
	require.True(t, ok)
	assert.Same(t, created, got)
}

func TestRegistry_Remove(t *testing.T) {
	store := draftstore.NewMemoryStore()
	registry := session.NewRegistry(time.Minute, store, noopSubmitter{})

	registry.GetOrCreate(context.Background(), "sess-1", 42, models.RoleDeveloper)
	registry.Remove("sess-1")

	_, ok := registry.Get("sess-1")
	assert.False(t, ok)
}

func TestRegistry_ExpiredSessionRehydratesFromStore(t *testing.T) {
	store := draftstore.NewMemoryStore()
	registry := session.NewRegistry(time.Minute, store, noopSubmitter{})
	ctx := context.Background()

	first := registry.GetOrCreate(ctx, "sess-1", 42, models.RoleDeveloper)
	require.NoError(t, first.Personal().Update(ctx, models.PersonalInfo{FullName: "Kwame Mensah"}))

	// Simulate expiry, then touch the session again.
	registry.Remove("sess-1")
	rebuilt := registry.GetOrCreate(ctx, "sess-1", 42, models.RoleDeveloper)

	assert.NotSame(t, first, rebuilt)
	assert.Equal(t, "Kwame Mensah", rebuilt.State().Draft.Personal.FullName)
}
