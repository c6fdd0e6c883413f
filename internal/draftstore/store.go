// Package draftstore persists in-progress onboarding drafts, one entry per
// wizard section. Entries are JSON snapshots of a section's non-binary
// fields; file payloads never reach the store.
package draftstore

import (
	"context"
	"encoding/json"

	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/pkg/logger"
	"github.com/buildlink/onboarding-api/pkg/metrics"
	"go.uber.org/zap"
)

// Store is the draft persistence port. Section keys are independently
// overwritten: writing one section never touches another's value.
//
// Load reports absence rather than failure: backends swallow their own
// transport errors (logged) so a flaky store degrades to "no draft" instead
// of breaking the wizard.
type Store interface {
	Load(ctx context.Context, sessionID string, key models.SectionKey) (json.RawMessage, bool)
	Save(ctx context.Context, sessionID string, key models.SectionKey, raw json.RawMessage) error
	Clear(ctx context.Context, sessionID string, key models.SectionKey) error
	ClearAll(ctx context.Context, sessionID string, keys []models.SectionKey) error
}

// LoadSection loads and decodes one section. A corrupt or unparsable stored
// entry is treated as absent and logged, never surfaced as an error.
func LoadSection[T any](ctx context.Context, s Store, sessionID string, key models.SectionKey) (T, bool) {
	var out T

	raw, ok := s.Load(ctx, sessionID, key)
	if !ok {
		return out, false
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		metrics.DraftCorruptEntries.WithLabelValues(string(key)).Inc()
		logger.Warn("Discarding corrupt draft section",
			zap.String("section", string(key)),
			zap.String("session_id", sessionID),
			zap.Error(err))
		var zero T
		return zero, false
	}

	return out, true
}

// SaveSection encodes and stores one section.
func SaveSection(ctx context.Context, s Store, sessionID string, key models.SectionKey, section any) error {
	raw, err := json.Marshal(section)
	if err != nil {
		return err
	}
	return s.Save(ctx, sessionID, key, raw)
}
