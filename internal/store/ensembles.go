package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clef-app/clef/internal/domain"
)

func (db *DB) UpsertEnsemble(ctx context.Context, e domain.Ensemble) error {
	now := time.Now().Unix()
	e.LastUsed = &now
	return db.withTx(ctx, "upsert ensemble", func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `INSERT INTO ensembles (id, name, last_used, last_played)
			VALUES (:id, :name, :last_used, :last_played)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				last_used = excluded.last_used`, e)
		return err
	})
}

func (db *DB) GetEnsemble(ctx context.Context, id string) (*domain.Ensemble, error) {
	var e domain.Ensemble
	ok, err := getOne(ctx, db, &e, `SELECT * FROM ensembles WHERE id = ?`, id)
	if err != nil {
		return nil, classify("get ensemble", err)
	}
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (db *DB) DeleteEnsemble(ctx context.Context, id string) error {
	return db.withTx(ctx, "delete ensemble", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM ensembles WHERE id = ?`, id)
		return err
	})
}

func (db *DB) ListEnsembles(ctx context.Context) ([]domain.Ensemble, error) {
	var ensembles []domain.Ensemble
	err := db.SelectContext(ctx, &ensembles, `SELECT * FROM ensembles ORDER BY name`)
	if err != nil {
		return nil, classify("list ensembles", err)
	}
	return ensembles, nil
}

func (db *DB) RecentEnsembles(ctx context.Context) ([]domain.Ensemble, error) {
	var ensembles []domain.Ensemble
	err := db.SelectContext(ctx, &ensembles, `SELECT * FROM ensembles ORDER BY last_used DESC`)
	if err != nil {
		return nil, classify("recent ensembles", err)
	}
	return ensembles, nil
}
