package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"nyumba/internal/domain"
)

type SettingsRepo struct{ db *sqlx.DB }

func NewSettingsRepo(db *sqlx.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// Load returns the settings document. Only the first read of an empty store
// writes, storing the defaults.
func (r *SettingsRepo) Load(ctx context.Context) (domain.Settings, error) {
	var s domain.Settings
	err := r.db.GetContext(ctx, &s, `SELECT doc FROM settings WHERE id = 1`)
	if !errors.Is(err, sql.ErrNoRows) {
		return s, err
	}
	def := domain.DefaultSettings()
	def.UpdatedAt = domain.Now()
	if _, err := r.db.ExecContext(ctx, `INSERT INTO settings(id, doc) VALUES(1, ?) ON CONFLICT(id) DO NOTHING`, def); err != nil {
		return domain.Settings{}, err
	}
	err = r.db.GetContext(ctx, &s, `SELECT doc FROM settings WHERE id = 1`)
	return s, err
}

func (r *SettingsRepo) Save(ctx context.Context, s domain.Settings) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO settings(id, doc) VALUES(1, ?)
	  ON CONFLICT(id) DO UPDATE SET doc = excluded.doc
	`, s)
	return err
}
