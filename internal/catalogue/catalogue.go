// Package catalogue is the aggregate root over the catalogue store:
// entity-level upserts and lookups, composed description queries, and
// the single-worker dispatch that keeps the blocking database handle
// off the caller's goroutine.
package catalogue

import (
	"context"

	"github.com/clef-app/clef/internal/domain"
	"github.com/clef-app/clef/internal/logger"
	"github.com/clef-app/clef/internal/store"
)

type Catalogue struct {
	db    *store.DB
	log   *logger.Logger
	queue *queue
}

// New starts the catalogue's worker goroutine. The caller must Close
// the catalogue before closing the store.
func New(db *store.DB, log *logger.Logger) *Catalogue {
	return &Catalogue{
		db:    db,
		log:   log.WithComponent("catalogue"),
		queue: newQueue(),
	}
}

// Close drains the worker. Pending operations run to completion.
func (c *Catalogue) Close() {
	c.queue.close()
}

// exec dispatches a write to the worker.
func (c *Catalogue) exec(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := c.queue.do(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

// fetch dispatches a read to the worker.
func fetch[T any](ctx context.Context, c *Catalogue, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.queue.do(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Persons

func (c *Catalogue) UpsertPerson(ctx context.Context, p domain.Person) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.UpsertPerson(ctx, p) })
}

func (c *Catalogue) GetPerson(ctx context.Context, id string) (*domain.Person, error) {
	return fetch(ctx, c, func(ctx context.Context) (*domain.Person, error) { return c.db.GetPerson(ctx, id) })
}

func (c *Catalogue) DeletePerson(ctx context.Context, id string) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.DeletePerson(ctx, id) })
}

func (c *Catalogue) ListPersons(ctx context.Context) ([]domain.Person, error) {
	return fetch(ctx, c, func(ctx context.Context) ([]domain.Person, error) { return c.db.ListPersons(ctx) })
}

func (c *Catalogue) RecentPersons(ctx context.Context) ([]domain.Person, error) {
	return fetch(ctx, c, func(ctx context.Context) ([]domain.Person, error) { return c.db.RecentPersons(ctx) })
}

// Instruments

func (c *Catalogue) UpsertInstrument(ctx context.Context, ins domain.Instrument) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.UpsertInstrument(ctx, ins) })
}

func (c *Catalogue) GetInstrument(ctx context.Context, id string) (*domain.Instrument, error) {
	return fetch(ctx, c, func(ctx context.Context) (*domain.Instrument, error) { return c.db.GetInstrument(ctx, id) })
}

func (c *Catalogue) DeleteInstrument(ctx context.Context, id string) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.DeleteInstrument(ctx, id) })
}

func (c *Catalogue) ListInstruments(ctx context.Context) ([]domain.Instrument, error) {
	return fetch(ctx, c, func(ctx context.Context) ([]domain.Instrument, error) { return c.db.ListInstruments(ctx) })
}

func (c *Catalogue) RecentInstruments(ctx context.Context) ([]domain.Instrument, error) {
	return fetch(ctx, c, func(ctx context.Context) ([]domain.Instrument, error) { return c.db.RecentInstruments(ctx) })
}

// Ensembles

func (c *Catalogue) UpsertEnsemble(ctx context.Context, e domain.Ensemble) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.UpsertEnsemble(ctx, e) })
}

func (c *Catalogue) GetEnsemble(ctx context.Context, id string) (*domain.Ensemble, error) {
	return fetch(ctx, c, func(ctx context.Context) (*domain.Ensemble, error) { return c.db.GetEnsemble(ctx, id) })
}

func (c *Catalogue) DeleteEnsemble(ctx context.Context, id string) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.DeleteEnsemble(ctx, id) })
}

func (c *Catalogue) ListEnsembles(ctx context.Context) ([]domain.Ensemble, error) {
	return fetch(ctx, c, func(ctx context.Context) ([]domain.Ensemble, error) { return c.db.ListEnsembles(ctx) })
}

func (c *Catalogue) RecentEnsembles(ctx context.Context) ([]domain.Ensemble, error) {
	return fetch(ctx, c, func(ctx context.Context) ([]domain.Ensemble, error) { return c.db.RecentEnsembles(ctx) })
}

// Works

func (c *Catalogue) UpsertWork(ctx context.Context, ins domain.WorkInsertion) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.UpsertWork(ctx, ins) })
}

// SaveWork flattens a nested description and writes it in one
// transaction. Part and section IDs are regenerated; part identity
// across saves is the part's index.
func (c *Catalogue) SaveWork(ctx context.Context, w domain.WorkDescription) error {
	ins := FlattenWork(w)
	c.log.WithEntity("work", w.ID).Debug("saving work", "parts", len(ins.Parts), "sections", len(ins.Sections))
	return c.UpsertWork(ctx, ins)
}

func (c *Catalogue) GetWork(ctx context.Context, id string) (*domain.Work, error) {
	return fetch(ctx, c, func(ctx context.Context) (*domain.Work, error) { return c.db.GetWork(ctx, id) })
}

// DescribeWork rehydrates the full nested description of a work.
// Returns nil without error when the work does not exist.
func (c *Catalogue) DescribeWork(ctx context.Context, id string) (*domain.WorkDescription, error) {
	return fetch(ctx, c, func(ctx context.Context) (*domain.WorkDescription, error) {
		return rehydrateWork(ctx, c.db, id)
	})
}

func (c *Catalogue) ListWorks(ctx context.Context) ([]domain.Work, error) {
	return fetch(ctx, c, func(ctx context.Context) ([]domain.Work, error) { return c.db.ListWorks(ctx) })
}

func (c *Catalogue) ListWorksByComposer(ctx context.Context, personID string) ([]domain.Work, error) {
	return fetch(ctx, c, func(ctx context.Context) ([]domain.Work, error) { return c.db.ListWorksByComposer(ctx, personID) })
}

func (c *Catalogue) DeleteWork(ctx context.Context, id string) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.DeleteWork(ctx, id) })
}

// ExportWork returns the stored rows of a work in insertion form,
// preserving row IDs so the sync peer names the same entities.
// Returns nil without error when the work does not exist.
func (c *Catalogue) ExportWork(ctx context.Context, id string) (*domain.WorkInsertion, error) {
	return fetch(ctx, c, func(ctx context.Context) (*domain.WorkInsertion, error) {
		rows, err := c.db.WorkRows(ctx, id)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			return nil, nil
		}
		ins := &domain.WorkInsertion{
			Work:          rows.Work,
			InstrumentIDs: rows.InstrumentIDs,
			Sections:      rows.Sections,
		}
		for _, part := range rows.Parts {
			ins.Parts = append(ins.Parts, domain.WorkPartInsertion{
				Part:          part,
				InstrumentIDs: rows.PartInstrumentIDs[part.ID],
			})
		}
		return ins, nil
	})
}

// ExportRecording is ExportWork's counterpart for recordings.
func (c *Catalogue) ExportRecording(ctx context.Context, id string) (*domain.RecordingInsertion, error) {
	return fetch(ctx, c, func(ctx context.Context) (*domain.RecordingInsertion, error) {
		rows, err := c.db.RecordingRows(ctx, id)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			return nil, nil
		}
		return &domain.RecordingInsertion{
			Recording:    rows.Recording,
			Performances: rows.Performances,
		}, nil
	})
}

// Recordings

func (c *Catalogue) UpsertRecording(ctx context.Context, ins domain.RecordingInsertion) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.UpsertRecording(ctx, ins) })
}

// SaveRecording flattens a nested description and writes it in one
// transaction. Performance IDs are regenerated.
func (c *Catalogue) SaveRecording(ctx context.Context, r domain.RecordingDescription) error {
	ins := FlattenRecording(r)
	c.log.WithEntity("recording", r.ID).Debug("saving recording", "performances", len(ins.Performances))
	return c.UpsertRecording(ctx, ins)
}

func (c *Catalogue) GetRecording(ctx context.Context, id string) (*domain.Recording, error) {
	return fetch(ctx, c, func(ctx context.Context) (*domain.Recording, error) { return c.db.GetRecording(ctx, id) })
}

// DescribeRecording rehydrates the full nested description of a
// recording, including its work. Returns nil without error when the
// recording does not exist.
func (c *Catalogue) DescribeRecording(ctx context.Context, id string) (*domain.RecordingDescription, error) {
	return fetch(ctx, c, func(ctx context.Context) (*domain.RecordingDescription, error) {
		return rehydrateRecording(ctx, c.db, id)
	})
}

func (c *Catalogue) ListRecordings(ctx context.Context) ([]domain.Recording, error) {
	return fetch(ctx, c, func(ctx context.Context) ([]domain.Recording, error) { return c.db.ListRecordings(ctx) })
}

func (c *Catalogue) ListRecordingsByWork(ctx context.Context, workID string) ([]domain.Recording, error) {
	return fetch(ctx, c, func(ctx context.Context) ([]domain.Recording, error) { return c.db.ListRecordingsByWork(ctx, workID) })
}

func (c *Catalogue) DeleteRecording(ctx context.Context, id string) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.DeleteRecording(ctx, id) })
}

// MarkPlayed stamps last_played on everyone credited on the recording.
func (c *Catalogue) MarkPlayed(ctx context.Context, recordingID string) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.MarkPlayed(ctx, recordingID) })
}

// Tracks

func (c *Catalogue) UpsertTrack(ctx context.Context, t domain.Track) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.UpsertTrack(ctx, t) })
}

func (c *Catalogue) GetTrack(ctx context.Context, id string) (*domain.Track, error) {
	return fetch(ctx, c, func(ctx context.Context) (*domain.Track, error) { return c.db.GetTrack(ctx, id) })
}

func (c *Catalogue) DeleteTrack(ctx context.Context, id string) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.DeleteTrack(ctx, id) })
}

// SetTracks replaces all tracks of a recording in caller order.
func (c *Catalogue) SetTracks(ctx context.Context, recordingID string, tracks []domain.Track) error {
	return c.exec(ctx, func(ctx context.Context) error { return c.db.ReplaceTracks(ctx, recordingID, tracks) })
}

func (c *Catalogue) ListTracks(ctx context.Context, recordingID string) ([]domain.Track, error) {
	return fetch(ctx, c, func(ctx context.Context) ([]domain.Track, error) { return c.db.ListTracks(ctx, recordingID) })
}
