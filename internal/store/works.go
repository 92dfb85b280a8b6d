package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clef-app/clef/internal/domain"
	"github.com/clef-app/clef/internal/id"
)

// WorkRows carries everything belonging to one work in normalized
// form, ready for rehydration. Parts are ordered by part_index,
// sections by before_index with ties in insertion order.
type WorkRows struct {
	Work              domain.Work
	Parts             []domain.WorkPart
	Sections          []domain.WorkSection
	InstrumentIDs     []string
	PartInstrumentIDs map[string][]string
}

// UpsertWork replaces the work row and all of its part, section and
// instrumentation rows in one transaction. Child rows are wiped and
// reinserted rather than diffed; part_index is assigned from slice
// order, so the caller's ordering is the stored ordering.
func (db *DB) UpsertWork(ctx context.Context, ins domain.WorkInsertion) error {
	for _, s := range ins.Sections {
		if s.BeforeIndex < 0 || s.BeforeIndex > len(ins.Parts) {
			return &ReferentialError{Op: "upsert work", Err: fmt.Errorf("section %q: before_index %d out of range 0..%d", s.Title, s.BeforeIndex, len(ins.Parts))}
		}
	}

	now := time.Now().Unix()
	return db.withTx(ctx, "upsert work", func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO works (id, composer, title)
			VALUES (:id, :composer, :title)
			ON CONFLICT(id) DO UPDATE SET composer = excluded.composer, title = excluded.title`, ins.Work); err != nil {
			return err
		}

		wipes := []string{
			`DELETE FROM part_instrumentations WHERE work_part IN (SELECT id FROM work_parts WHERE work = ?)`,
			`DELETE FROM work_parts WHERE work = ?`,
			`DELETE FROM work_sections WHERE work = ?`,
			`DELETE FROM instrumentations WHERE work = ?`,
		}
		for _, q := range wipes {
			if _, err := tx.ExecContext(ctx, q, ins.Work.ID); err != nil {
				return err
			}
		}

		for i, part := range ins.Parts {
			p := part.Part
			p.Work = ins.Work.ID
			p.PartIndex = i
			if _, err := tx.NamedExecContext(ctx, `INSERT INTO work_parts (id, work, part_index, composer, title)
				VALUES (:id, :work, :part_index, :composer, :title)`, p); err != nil {
				return err
			}
			for _, instrumentID := range part.InstrumentIDs {
				if _, err := tx.ExecContext(ctx, `INSERT INTO part_instrumentations (id, work_part, instrument)
					VALUES (?, ?, ?)`, id.New(), p.ID, instrumentID); err != nil {
					return err
				}
			}
		}

		for _, section := range ins.Sections {
			section.Work = ins.Work.ID
			if _, err := tx.NamedExecContext(ctx, `INSERT INTO work_sections (id, work, title, before_index)
				VALUES (:id, :work, :title, :before_index)`, section); err != nil {
				return err
			}
		}

		for _, instrumentID := range ins.InstrumentIDs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO instrumentations (id, work, instrument)
				VALUES (?, ?, ?)`, id.New(), ins.Work.ID, instrumentID); err != nil {
				return err
			}
		}

		// keep "recently used" ordering fresh for the entities this work names
		if _, err := tx.ExecContext(ctx, `UPDATE persons SET last_used = ? WHERE id = ?`, now, ins.Work.Composer); err != nil {
			return err
		}
		for _, instrumentID := range ins.InstrumentIDs {
			if _, err := tx.ExecContext(ctx, `UPDATE instruments SET last_used = ? WHERE id = ?`, now, instrumentID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (db *DB) GetWork(ctx context.Context, workID string) (*domain.Work, error) {
	var w domain.Work
	ok, err := getOne(ctx, db, &w, `SELECT * FROM works WHERE id = ?`, workID)
	if err != nil {
		return nil, classify("get work", err)
	}
	if !ok {
		return nil, nil
	}
	return &w, nil
}

// WorkRows loads the normalized rows of one work. Returns nil without
// error when the work does not exist.
func (db *DB) WorkRows(ctx context.Context, workID string) (*WorkRows, error) {
	w, err := db.GetWork(ctx, workID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, nil
	}

	rows := &WorkRows{Work: *w, PartInstrumentIDs: make(map[string][]string)}

	if err := db.SelectContext(ctx, &rows.Parts, `SELECT * FROM work_parts WHERE work = ? ORDER BY part_index`, workID); err != nil {
		return nil, classify("work parts", err)
	}
	if err := db.SelectContext(ctx, &rows.Sections, `SELECT * FROM work_sections WHERE work = ? ORDER BY before_index, rowid`, workID); err != nil {
		return nil, classify("work sections", err)
	}
	if err := db.SelectContext(ctx, &rows.InstrumentIDs, `SELECT instrument FROM instrumentations WHERE work = ? ORDER BY rowid`, workID); err != nil {
		return nil, classify("work instrumentations", err)
	}

	type partInstrumentation struct {
		WorkPart   string `db:"work_part"`
		Instrument string `db:"instrument"`
	}
	var partRows []partInstrumentation
	if err := db.SelectContext(ctx, &partRows, `SELECT pi.work_part, pi.instrument FROM part_instrumentations pi
		JOIN work_parts wp ON wp.id = pi.work_part
		WHERE wp.work = ? ORDER BY pi.rowid`, workID); err != nil {
		return nil, classify("part instrumentations", err)
	}
	for _, r := range partRows {
		rows.PartInstrumentIDs[r.WorkPart] = append(rows.PartInstrumentIDs[r.WorkPart], r.Instrument)
	}
	return rows, nil
}

func (db *DB) ListWorks(ctx context.Context) ([]domain.Work, error) {
	var works []domain.Work
	if err := db.SelectContext(ctx, &works, `SELECT * FROM works ORDER BY title`); err != nil {
		return nil, classify("list works", err)
	}
	return works, nil
}

func (db *DB) ListWorksByComposer(ctx context.Context, personID string) ([]domain.Work, error) {
	var works []domain.Work
	if err := db.SelectContext(ctx, &works, `SELECT * FROM works WHERE composer = ? ORDER BY title`, personID); err != nil {
		return nil, classify("list works by composer", err)
	}
	return works, nil
}

// DeleteWork removes a work and its part, section and instrumentation
// rows. It fails with ReferentialError while recordings still
// reference the work; deletes never cascade across aggregates.
func (db *DB) DeleteWork(ctx context.Context, workID string) error {
	return db.withTx(ctx, "delete work", func(tx *sqlx.Tx) error {
		var recordings int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM recordings WHERE work = ?`, workID).Scan(&recordings); err != nil {
			return err
		}
		if recordings > 0 {
			return &ReferentialError{Op: "delete work", Err: fmt.Errorf("work %s still has %d recordings", workID, recordings)}
		}

		wipes := []string{
			`DELETE FROM part_instrumentations WHERE work_part IN (SELECT id FROM work_parts WHERE work = ?)`,
			`DELETE FROM work_parts WHERE work = ?`,
			`DELETE FROM work_sections WHERE work = ?`,
			`DELETE FROM instrumentations WHERE work = ?`,
			`DELETE FROM works WHERE id = ?`,
		}
		for _, q := range wipes {
			if _, err := tx.ExecContext(ctx, q, workID); err != nil {
				return err
			}
		}
		return nil
	})
}
