package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clef-app/clef/internal/domain"
)

func (db *DB) UpsertInstrument(ctx context.Context, ins domain.Instrument) error {
	now := time.Now().Unix()
	ins.LastUsed = &now
	return db.withTx(ctx, "upsert instrument", func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `INSERT INTO instruments (id, name, last_used, last_played)
			VALUES (:id, :name, :last_used, :last_played)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				last_used = excluded.last_used`, ins)
		return err
	})
}

func (db *DB) GetInstrument(ctx context.Context, id string) (*domain.Instrument, error) {
	var ins domain.Instrument
	ok, err := getOne(ctx, db, &ins, `SELECT * FROM instruments WHERE id = ?`, id)
	if err != nil {
		return nil, classify("get instrument", err)
	}
	if !ok {
		return nil, nil
	}
	return &ins, nil
}

func (db *DB) DeleteInstrument(ctx context.Context, id string) error {
	return db.withTx(ctx, "delete instrument", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM instruments WHERE id = ?`, id)
		return err
	})
}

func (db *DB) ListInstruments(ctx context.Context) ([]domain.Instrument, error) {
	var instruments []domain.Instrument
	err := db.SelectContext(ctx, &instruments, `SELECT * FROM instruments ORDER BY name`)
	if err != nil {
		return nil, classify("list instruments", err)
	}
	return instruments, nil
}

func (db *DB) RecentInstruments(ctx context.Context) ([]domain.Instrument, error) {
	var instruments []domain.Instrument
	err := db.SelectContext(ctx, &instruments, `SELECT * FROM instruments ORDER BY last_used DESC`)
	if err != nil {
		return nil, classify("recent instruments", err)
	}
	return instruments, nil
}
