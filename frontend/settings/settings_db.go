package settings

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"fleetcheck/frontend/shared/nav"
	"fleetcheck/infrastructure/sqlite"
)

// LoadLanguage returns the saved language for actor, or fallback when none is stored.
func LoadLanguage(ctx context.Context, db *sqlite.DB, actor, fallback string) (string, error) {
	var lang string
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT language FROM user_settings WHERE actor = ?`, actor).Scan(ctx, &lang)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nav.NormalizeLanguage(fallback), nil
	}
	if err != nil {
		return nav.NormalizeLanguage(fallback), err
	}
	return nav.NormalizeLanguage(lang), nil
}

func SaveLanguage(ctx context.Context, db *sqlite.DB, actor, language string) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO user_settings (actor, language, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(actor) DO UPDATE SET
  language = excluded.language,
  updated_at = CURRENT_TIMESTAMP`, actor, language)
		return err
	})
}
