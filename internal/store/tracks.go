package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clef-app/clef/internal/domain"
)

// partCount returns the number of parts of the work the recording
// belongs to, for validating track part indices.
func partCount(ctx context.Context, tx *sqlx.Tx, recordingID string) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM work_parts
		WHERE work = (SELECT work FROM recordings WHERE id = ?)`, recordingID).Scan(&count)
	return count, err
}

func validateTrackParts(t domain.Track, parts int) error {
	for _, idx := range t.WorkParts {
		if idx < 0 || idx >= parts {
			return &ReferentialError{Op: "upsert track", Err: fmt.Errorf("track %s: part index %d out of range, work has %d parts", t.ID, idx, parts)}
		}
	}
	return nil
}

// UpsertTrack inserts or replaces one track. Part indices are checked
// against the recording's work before the write.
func (db *DB) UpsertTrack(ctx context.Context, t domain.Track) error {
	return db.withTx(ctx, "upsert track", func(tx *sqlx.Tx) error {
		parts, err := partCount(ctx, tx, t.Recording)
		if err != nil {
			return err
		}
		if err := validateTrackParts(t, parts); err != nil {
			return err
		}
		_, err = tx.NamedExecContext(ctx, `INSERT INTO tracks (id, recording, track_index, work_parts, path)
			VALUES (:id, :recording, :track_index, :work_parts, :path)
			ON CONFLICT(id) DO UPDATE SET
				recording = excluded.recording,
				track_index = excluded.track_index,
				work_parts = excluded.work_parts,
				path = excluded.path`, t)
		return err
	})
}

// ReplaceTracks wipes and reinserts every track of a recording in one
// transaction, assigning track_index from slice order.
func (db *DB) ReplaceTracks(ctx context.Context, recordingID string, tracks []domain.Track) error {
	return db.withTx(ctx, "replace tracks", func(tx *sqlx.Tx) error {
		parts, err := partCount(ctx, tx, recordingID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE recording = ?`, recordingID); err != nil {
			return err
		}
		for i, t := range tracks {
			t.Recording = recordingID
			t.TrackIndex = i
			if err := validateTrackParts(t, parts); err != nil {
				return err
			}
			if _, err := tx.NamedExecContext(ctx, `INSERT INTO tracks (id, recording, track_index, work_parts, path)
				VALUES (:id, :recording, :track_index, :work_parts, :path)`, t); err != nil {
				return err
			}
		}
		return nil
	})
}

func (db *DB) GetTrack(ctx context.Context, trackID string) (*domain.Track, error) {
	var t domain.Track
	ok, err := getOne(ctx, db, &t, `SELECT * FROM tracks WHERE id = ?`, trackID)
	if err != nil {
		return nil, classify("get track", err)
	}
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (db *DB) DeleteTrack(ctx context.Context, trackID string) error {
	return db.withTx(ctx, "delete track", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, trackID)
		return err
	})
}

// ListTracks returns a recording's tracks in track_index order.
func (db *DB) ListTracks(ctx context.Context, recordingID string) ([]domain.Track, error) {
	var tracks []domain.Track
	if err := db.SelectContext(ctx, &tracks, `SELECT * FROM tracks WHERE recording = ? ORDER BY track_index`, recordingID); err != nil {
		return nil, classify("list tracks", err)
	}
	return tracks, nil
}
