package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clef-app/clef/internal/domain"
)

// UpsertPerson inserts or replaces a person by ID and touches its
// last_used timestamp. last_played is left untouched on update.
func (db *DB) UpsertPerson(ctx context.Context, p domain.Person) error {
	now := time.Now().Unix()
	p.LastUsed = &now
	return db.withTx(ctx, "upsert person", func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `INSERT INTO persons (id, first_name, last_name, last_used, last_played)
			VALUES (:id, :first_name, :last_name, :last_used, :last_played)
			ON CONFLICT(id) DO UPDATE SET
				first_name = excluded.first_name,
				last_name = excluded.last_name,
				last_used = excluded.last_used`, p)
		return err
	})
}

// GetPerson returns nil without error when no person has the ID.
func (db *DB) GetPerson(ctx context.Context, id string) (*domain.Person, error) {
	var p domain.Person
	ok, err := getOne(ctx, db, &p, `SELECT * FROM persons WHERE id = ?`, id)
	if err != nil {
		return nil, classify("get person", err)
	}
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// DeletePerson fails with ReferentialError while works, parts or
// performances still reference the person.
func (db *DB) DeletePerson(ctx context.Context, id string) error {
	return db.withTx(ctx, "delete person", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM persons WHERE id = ?`, id)
		return err
	})
}

func (db *DB) ListPersons(ctx context.Context) ([]domain.Person, error) {
	var persons []domain.Person
	err := db.SelectContext(ctx, &persons, `SELECT * FROM persons ORDER BY last_name, first_name`)
	if err != nil {
		return nil, classify("list persons", err)
	}
	return persons, nil
}

func (db *DB) RecentPersons(ctx context.Context) ([]domain.Person, error) {
	var persons []domain.Person
	err := db.SelectContext(ctx, &persons, `SELECT * FROM persons ORDER BY last_used DESC`)
	if err != nil {
		return nil, classify("recent persons", err)
	}
	return persons, nil
}
