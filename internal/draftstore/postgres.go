package draftstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/pkg/logger"
	"github.com/buildlink/onboarding-api/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresStore persists draft sections in the draft_sections table.
// Heavier than Redis but survives cache eviction; used where onboarding
// drafts must outlive infrastructure restarts.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed draft store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Load(ctx context.Context, sessionID string, key models.SectionKey) (json.RawMessage, bool) {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT payload FROM draft_sections WHERE session_id = $1 AND section_key = $2`,
		sessionID, string(key),
	).Scan(&raw)

	if errors.Is(err, pgx.ErrNoRows) {
		metrics.DraftStoreOps.WithLabelValues("load", "miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.DraftStoreOps.WithLabelValues("load", "error").Inc()
		logger.Error("Failed to load draft section from postgres",
			zap.String("section", string(key)),
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, false
	}

	metrics.DraftStoreOps.WithLabelValues("load", "hit").Inc()
	return raw, true
}

func (p *PostgresStore) Save(ctx context.Context, sessionID string, key models.SectionKey, raw json.RawMessage) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO draft_sections (session_id, section_key, payload, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (session_id, section_key)
		 DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		sessionID, string(key), []byte(raw),
	)
	if err != nil {
		metrics.DraftStoreOps.WithLabelValues("save", "error").Inc()
		return fmt.Errorf("failed to save draft section %s: %w", key, err)
	}
	metrics.DraftStoreOps.WithLabelValues("save", "success").Inc()
	return nil
}

func (p *PostgresStore) Clear(ctx context.Context, sessionID string, key models.SectionKey) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM draft_sections WHERE session_id = $1 AND section_key = $2`,
		sessionID, string(key),
	)
	if err != nil {
		metrics.DraftStoreOps.WithLabelValues("clear", "error").Inc()
		return fmt.Errorf("failed to clear draft section %s: %w", key, err)
	}
	metrics.DraftStoreOps.WithLabelValues("clear", "success").Inc()
	return nil
}

func (p *PostgresStore) ClearAll(ctx context.Context, sessionID string, keys []models.SectionKey) error {
	sectionKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		sectionKeys = append(sectionKeys, string(key))
	}
	_, err := p.pool.Exec(ctx,
		`DELETE FROM draft_sections WHERE session_id = $1 AND section_key = ANY($2)`,
		sessionID, sectionKeys,
	)
	if err != nil {
		metrics.DraftStoreOps.WithLabelValues("clear_all", "error").Inc()
		return fmt.Errorf("failed to clear draft sections: %w", err)
	}
	metrics.DraftStoreOps.WithLabelValues("clear_all", "success").Inc()
	return nil
}
