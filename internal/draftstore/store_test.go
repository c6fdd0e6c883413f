package draftstore_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/buildlink/onboarding-api/internal/draftstore"
	"github.com/buildlink/onboarding-api/internal/models"
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

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := draftstore.NewMemoryStore()
	ctx := context.Background()

	info := models.PersonalInfo{FullName: "Dana Osei", Bio: "Architect in Accra"}
	require.NoError(t, draftstore.SaveSection(ctx, store, "sess-1", models.SectionPersonal, info))

	loaded, ok := draftstore.LoadSection[models.PersonalInfo](ctx, store, "sess-1", models.SectionPersonal)
	require.True(t, ok)
	assert.Equal(t, info, loaded)
}

func TestMemoryStore_MissingEntry(t *testing.T) {
	store := draftstore.NewMemoryStore()

	_, ok := draftstore.LoadSection[models.PersonalInfo](context.Background(), store, "sess-1", models.SectionPersonal)
	assert.False(t, ok)
}

func TestMemoryStore_SectionsAreIndependent(t *testing.T) {
	store := draftstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, draftstore.SaveSection(ctx, store, "sess-1", models.SectionPersonal,
		models.PersonalInfo{FullName: "Dana"}))
	require.NoError(t, draftstore.SaveSection(ctx, store, "sess-1", models.SectionPreferences,
		models.Preferences{Budget: models.BudgetUnder50K}))

	// Overwriting one section leaves the other untouched.
	require.NoError(t, draftstore.SaveSection(ctx, store, "sess-1", models.SectionPersonal,
		models.PersonalInfo{FullName: "Dana Osei"}))

	prefs, ok := draftstore.LoadSection[models.Preferences](ctx, store, "sess-1", models.SectionPreferences)
	require.True(t, ok)
	assert.Equal(t, models.BudgetUnder50K, prefs.Budget)
}

func TestMemoryStore_SessionsAreIsolated(t *testing.T) {
	store := draftstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, draftstore.SaveSection(ctx, store, "sess-1", models.SectionPersonal,
		models.PersonalInfo{FullName: "Dana"}))

	_, ok := draftstore.LoadSection[models.PersonalInfo](ctx, store, "sess-2", models.SectionPersonal)
	assert.False(t, ok)
}

func TestLoadSection_CorruptEntryTreatedAsAbsent(t *testing.T) {
	store := draftstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", models.SectionPersonal, json.RawMessage(`{"fullName": 12`)))

	loaded, ok := draftstore.LoadSection[models.PersonalInfo](ctx, store, "sess-1", models.SectionPersonal)
	assert.False(t, ok)
	assert.Zero(t, loaded)
}

func TestMemoryStore_Clear(t *testing.T) {
	store := draftstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, draftstore.SaveSection(ctx, store, "sess-1", models.SectionPersonal,
		models.PersonalInfo{FullName: "Dana"}))
	require.NoError(t, store.Clear(ctx, "sess-1", models.SectionPersonal))

	_, ok := store.Load(ctx, "sess-1", models.SectionPersonal)
	assert.False(t, ok)
}

func TestMemoryStore_ClearAll(t *testing.T) {
	store := draftstore.NewMemoryStore()
	ctx := context.Background()

	for _, key := range models.SectionKeys() {
		require.NoError(t, store.Save(ctx, "sess-1", key, json.RawMessage(`{}`)))
		require.NoError(t, store.Save(ctx, "sess-2", key, json.RawMessage(`{}`)))
	}

	require.NoError(t, store.ClearAll(ctx, "sess-1", models.SectionKeys()))

	for _, key := range models.SectionKeys() {
		_, ok := store.Load(ctx, "sess-1", key)
		assert.False(t, ok, "section %s should be cleared", key)

		_, ok = store.Load(ctx, "sess-2", key)
		assert.True(t, ok, "other sessions must be untouched")
	}
}

func TestAttachmentHandlesNeverPersist(t *testing.T) {
	store := draftstore.NewMemoryStore()
	ctx := context.Background()

	section := models.IdentitySection{
		GovernmentID: models.NewAttachment("id.png", "image/png", []byte("secret-bytes")),
	}
	require.NoError(t, draftstore.SaveSection(ctx, store, "sess-1", models.SectionIdentity, section))

	loaded, ok := draftstore.LoadSection[models.IdentitySection](ctx, store, "sess-1", models.SectionIdentity)
	require.True(t, ok)

	assert.True(t, loaded.GovernmentID.NeedsReselect(), "rehydrated attachment must need re-selection")
	assert.False(t, loaded.GovernmentID.HasPayload())
	require.NotNil(t, loaded.GovernmentID.Meta)
	assert.Equal(t, "id.png", loaded.GovernmentID.Meta.Name)
}
