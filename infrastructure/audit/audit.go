package audit

import (
	"context"
	"encoding/json"

	"github.com/uptrace/bun"

	"fleetcheck/infrastructure/sqlite"
	"fleetcheck/models"
)

// Service writes audit records for ledger transitions, uploads and logins.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Write inserts an audit row inside the caller transaction.
func (s *Service) Write(ctx context.Context, tx bun.Tx, actor, action, entityType, entityID string, before, after any) error {
	beforeJSON, err := marshal(before)
	if err != nil {
		return err
	}
	afterJSON, err := marshal(after)
	if err != nil {
		return err
	}
	log := &models.AuditLog{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
	}
	_, err = tx.NewInsert().Model(log).Exec(ctx)
	return err
}

// Record writes one audit row in its own write transaction.
func (s *Service) Record(ctx context.Context, db *sqlite.DB, actor, action, entityType, entityID string, after any) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return s.Write(ctx, tx, actor, action, entityType, entityID, nil, after)
	})
}

// List returns the most recent audit rows for an entity, newest first.
func List(ctx context.Context, db *sqlite.DB, entityType, entityID string) ([]models.AuditLog, error) {
	rows := make([]models.AuditLog, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&rows).
			Where("entity_type = ?", entityType).
			Where("entity_id = ?", entityID).
			OrderExpr("id DESC").
			Limit(50).
			Scan(ctx)
	})
	return rows, err
}

func marshal(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
