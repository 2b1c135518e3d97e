package ledger

import (
	"context"

	"github.com/uptrace/bun"

	"fleetcheck/infrastructure/sqlite"
	"fleetcheck/models"
)

// SQLiteStore persists ledger sets in ledger_entries.
type SQLiteStore struct {
	db *sqlite.DB
}

func NewSQLiteStore(db *sqlite.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]string, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	ids := make([]string, 0)
	err := s.db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model((*models.LedgerEntry)(nil)).
			Column("entry_id").
			Where("ledger_key = ?", key).
			OrderExpr("id ASC").
			Scan(ctx, &ids)
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Set replaces the members of key.
func (s *SQLiteStore) Set(ctx context.Context, key string, ids []string) error {
	if err := validKey(key); err != nil {
		return err
	}
	for _, id := range ids {
		if err := validID(id); err != nil {
			return err
		}
	}
	actor := actorFrom(ctx)
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.LedgerEntry)(nil)).Where("ledger_key = ?", key).Exec(ctx); err != nil {
			return err
		}
		for _, id := range ids {
			if err := insertEntry(ctx, tx, key, id, actor); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Append(ctx context.Context, key, id string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := validID(id); err != nil {
		return err
	}
	actor := actorFrom(ctx)
	return s.db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return insertEntry(ctx, tx, key, id, actor)
	})
}

func insertEntry(ctx context.Context, tx bun.Tx, key, id, actor string) error {
	_, err := tx.NewInsert().
		Model(&models.LedgerEntry{Key: key, EntryID: id, CreatedBy: actor}).
		On("CONFLICT (ledger_key, entry_id) DO NOTHING").
		Exec(ctx)
	return err
}
