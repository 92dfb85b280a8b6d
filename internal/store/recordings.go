package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clef-app/clef/internal/domain"
)

// RecordingRows carries one recording and its performance rows.
type RecordingRows struct {
	Recording    domain.Recording
	Performances []domain.Performance
}

// UpsertRecording replaces the recording row and all of its
// performance rows in one transaction. Every performer and role
// referenced gets its last_used timestamp touched.
func (db *DB) UpsertRecording(ctx context.Context, ins domain.RecordingInsertion) error {
	if err := ins.Validate(); err != nil {
		return &ReferentialError{Op: "upsert recording", Err: err}
	}

	now := time.Now().Unix()
	return db.withTx(ctx, "upsert recording", func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO recordings (id, work, comment)
			VALUES (:id, :work, :comment)
			ON CONFLICT(id) DO UPDATE SET work = excluded.work, comment = excluded.comment`, ins.Recording); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM performances WHERE recording = ?`, ins.Recording.ID); err != nil {
			return err
		}

		for _, perf := range ins.Performances {
			perf.Recording = ins.Recording.ID
			if _, err := tx.NamedExecContext(ctx, `INSERT INTO performances (id, recording, person, ensemble, role)
				VALUES (:id, :recording, :person, :ensemble, :role)`, perf); err != nil {
				return err
			}
			if perf.Person != nil {
				if _, err := tx.ExecContext(ctx, `UPDATE persons SET last_used = ? WHERE id = ?`, now, *perf.Person); err != nil {
					return err
				}
			}
			if perf.Ensemble != nil {
				if _, err := tx.ExecContext(ctx, `UPDATE ensembles SET last_used = ? WHERE id = ?`, now, *perf.Ensemble); err != nil {
					return err
				}
			}
			if perf.Role != nil {
				if _, err := tx.ExecContext(ctx, `UPDATE instruments SET last_used = ? WHERE id = ?`, now, *perf.Role); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (db *DB) GetRecording(ctx context.Context, recordingID string) (*domain.Recording, error) {
	var r domain.Recording
	ok, err := getOne(ctx, db, &r, `SELECT * FROM recordings WHERE id = ?`, recordingID)
	if err != nil {
		return nil, classify("get recording", err)
	}
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// RecordingRows loads one recording and its performances. Returns nil
// without error when the recording does not exist.
func (db *DB) RecordingRows(ctx context.Context, recordingID string) (*RecordingRows, error) {
	r, err := db.GetRecording(ctx, recordingID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}

	rows := &RecordingRows{Recording: *r}
	if err := db.SelectContext(ctx, &rows.Performances, `SELECT * FROM performances WHERE recording = ? ORDER BY rowid`, recordingID); err != nil {
		return nil, classify("recording performances", err)
	}
	return rows, nil
}

func (db *DB) ListRecordingsByWork(ctx context.Context, workID string) ([]domain.Recording, error) {
	var recordings []domain.Recording
	if err := db.SelectContext(ctx, &recordings, `SELECT * FROM recordings WHERE work = ? ORDER BY rowid`, workID); err != nil {
		return nil, classify("list recordings by work", err)
	}
	return recordings, nil
}

func (db *DB) ListRecordings(ctx context.Context) ([]domain.Recording, error) {
	var recordings []domain.Recording
	if err := db.SelectContext(ctx, &recordings, `SELECT * FROM recordings ORDER BY rowid`); err != nil {
		return nil, classify("list recordings", err)
	}
	return recordings, nil
}

// DeleteRecording removes a recording and its performances. It fails
// with ReferentialError while tracks still reference the recording.
func (db *DB) DeleteRecording(ctx context.Context, recordingID string) error {
	return db.withTx(ctx, "delete recording", func(tx *sqlx.Tx) error {
		var tracks int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM tracks WHERE recording = ?`, recordingID).Scan(&tracks); err != nil {
			return err
		}
		if tracks > 0 {
			return &ReferentialError{Op: "delete recording", Err: fmt.Errorf("recording %s still has %d tracks", recordingID, tracks)}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM performances WHERE recording = ?`, recordingID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, recordingID)
		return err
	})
}

// MarkPlayed stamps last_played on every performer and role credited
// on the recording.
func (db *DB) MarkPlayed(ctx context.Context, recordingID string) error {
	now := time.Now().Unix()
	return db.withTx(ctx, "mark played", func(tx *sqlx.Tx) error {
		stamps := []string{
			`UPDATE persons SET last_played = ? WHERE id IN (SELECT person FROM performances WHERE recording = ? AND person IS NOT NULL)`,
			`UPDATE ensembles SET last_played = ? WHERE id IN (SELECT ensemble FROM performances WHERE recording = ? AND ensemble IS NOT NULL)`,
			`UPDATE instruments SET last_played = ? WHERE id IN (SELECT role FROM performances WHERE recording = ? AND role IS NOT NULL)`,
		}
		for _, q := range stamps {
			if _, err := tx.ExecContext(ctx, q, now, recordingID); err != nil {
				return err
			}
		}
		return nil
	})
}
