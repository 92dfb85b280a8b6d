package catalogue

import (
	"context"

	"github.com/clef-app/clef/internal/domain"
	"github.com/clef-app/clef/internal/id"
	"github.com/clef-app/clef/internal/store"
)

// FlattenWork converts a nested work description into normalized
// insertion rows. Part and section IDs are regenerated on every
// flatten; callers reference parts by index, never by ID, across
// saves. part_index follows enumeration order.
func FlattenWork(w domain.WorkDescription) domain.WorkInsertion {
	ins := domain.WorkInsertion{
		Work: domain.Work{ID: w.ID, Composer: w.Composer.ID, Title: w.Title},
	}
	for _, instrument := range w.Instruments {
		ins.InstrumentIDs = append(ins.InstrumentIDs, instrument.ID)
	}
	for i, part := range w.Parts {
		row := domain.WorkPart{ID: id.New(), Work: w.ID, PartIndex: i, Title: part.Title}
		if part.Composer != nil {
			composerID := part.Composer.ID
			row.Composer = &composerID
		}
		partIns := domain.WorkPartInsertion{Part: row}
		for _, instrument := range part.Instruments {
			partIns.InstrumentIDs = append(partIns.InstrumentIDs, instrument.ID)
		}
		ins.Parts = append(ins.Parts, partIns)
	}
	for _, section := range w.Sections {
		ins.Sections = append(ins.Sections, domain.WorkSection{
			ID:          id.New(),
			Work:        w.ID,
			Title:       section.Title,
			BeforeIndex: section.BeforeIndex,
		})
	}
	return ins
}

// FlattenRecording converts a nested recording description into
// normalized insertion rows. Performance IDs are regenerated.
func FlattenRecording(r domain.RecordingDescription) domain.RecordingInsertion {
	ins := domain.RecordingInsertion{
		Recording: domain.Recording{ID: r.ID, Work: r.Work.ID, Comment: r.Comment},
	}
	for _, perf := range r.Performances {
		row := domain.Performance{ID: id.New(), Recording: r.ID}
		if perf.Person != nil {
			personID := perf.Person.ID
			row.Person = &personID
		}
		if perf.Ensemble != nil {
			ensembleID := perf.Ensemble.ID
			row.Ensemble = &ensembleID
		}
		if perf.Role != nil {
			roleID := perf.Role.ID
			row.Role = &roleID
		}
		ins.Performances = append(ins.Performances, row)
	}
	return ins
}

// resolver caches person/instrument/ensemble lookups for one
// rehydration pass. Dangling references surface as MissingItemError;
// they should not occur while write invariants hold, but deletes do
// not cascade.
type resolver struct {
	db          *store.DB
	persons     map[string]*domain.Person
	instruments map[string]*domain.Instrument
	ensembles   map[string]*domain.Ensemble
}

func newResolver(db *store.DB) *resolver {
	return &resolver{
		db:          db,
		persons:     make(map[string]*domain.Person),
		instruments: make(map[string]*domain.Instrument),
		ensembles:   make(map[string]*domain.Ensemble),
	}
}

func (r *resolver) person(ctx context.Context, personID string) (*domain.Person, error) {
	if p, ok := r.persons[personID]; ok {
		return p, nil
	}
	p, err := r.db.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &store.MissingItemError{Kind: "person", ID: personID}
	}
	r.persons[personID] = p
	return p, nil
}

func (r *resolver) instrument(ctx context.Context, instrumentID string) (*domain.Instrument, error) {
	if ins, ok := r.instruments[instrumentID]; ok {
		return ins, nil
	}
	ins, err := r.db.GetInstrument(ctx, instrumentID)
	if err != nil {
		return nil, err
	}
	if ins == nil {
		return nil, &store.MissingItemError{Kind: "instrument", ID: instrumentID}
	}
	r.instruments[instrumentID] = ins
	return ins, nil
}

func (r *resolver) ensemble(ctx context.Context, ensembleID string) (*domain.Ensemble, error) {
	if e, ok := r.ensembles[ensembleID]; ok {
		return e, nil
	}
	e, err := r.db.GetEnsemble(ctx, ensembleID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, &store.MissingItemError{Kind: "ensemble", ID: ensembleID}
	}
	r.ensembles[ensembleID] = e
	return e, nil
}

func (r *resolver) instrumentList(ctx context.Context, ids []string) ([]domain.Instrument, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	instruments := make([]domain.Instrument, 0, len(ids))
	for _, instrumentID := range ids {
		ins, err := r.instrument(ctx, instrumentID)
		if err != nil {
			return nil, err
		}
		instruments = append(instruments, *ins)
	}
	return instruments, nil
}

// rehydrateWork joins the normalized rows of one work back into a
// nested description. Runs on the worker goroutine.
func rehydrateWork(ctx context.Context, db *store.DB, workID string) (*domain.WorkDescription, error) {
	rows, err := db.WorkRows(ctx, workID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, nil
	}

	res := newResolver(db)
	composer, err := res.person(ctx, rows.Work.Composer)
	if err != nil {
		return nil, err
	}

	desc := &domain.WorkDescription{
		ID:       rows.Work.ID,
		Title:    rows.Work.Title,
		Composer: *composer,
	}
	if desc.Instruments, err = res.instrumentList(ctx, rows.InstrumentIDs); err != nil {
		return nil, err
	}

	for _, part := range rows.Parts {
		partDesc := domain.WorkPartDescription{Title: part.Title}
		if part.Composer != nil {
			p, err := res.person(ctx, *part.Composer)
			if err != nil {
				return nil, err
			}
			partDesc.Composer = p
		}
		if partDesc.Instruments, err = res.instrumentList(ctx, rows.PartInstrumentIDs[part.ID]); err != nil {
			return nil, err
		}
		desc.Parts = append(desc.Parts, partDesc)
	}

	for _, section := range rows.Sections {
		desc.Sections = append(desc.Sections, domain.WorkSectionDescription{
			Title:       section.Title,
			BeforeIndex: section.BeforeIndex,
		})
	}
	return desc, nil
}

// rehydrateRecording joins one recording, its performances and its
// work back into a nested description. Runs on the worker goroutine.
func rehydrateRecording(ctx context.Context, db *store.DB, recordingID string) (*domain.RecordingDescription, error) {
	rows, err := db.RecordingRows(ctx, recordingID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, nil
	}

	work, err := rehydrateWork(ctx, db, rows.Recording.Work)
	if err != nil {
		return nil, err
	}
	if work == nil {
		return nil, &store.MissingItemError{Kind: "work", ID: rows.Recording.Work}
	}

	desc := &domain.RecordingDescription{
		ID:      rows.Recording.ID,
		Work:    *work,
		Comment: rows.Recording.Comment,
	}

	res := newResolver(db)
	for _, perf := range rows.Performances {
		perfDesc := domain.PerformanceDescription{}
		if perf.Person != nil {
			if perfDesc.Person, err = res.person(ctx, *perf.Person); err != nil {
				return nil, err
			}
		}
		if perf.Ensemble != nil {
			if perfDesc.Ensemble, err = res.ensemble(ctx, *perf.Ensemble); err != nil {
				return nil, err
			}
		}
		if perf.Role != nil {
			if perfDesc.Role, err = res.instrument(ctx, *perf.Role); err != nil {
				return nil, err
			}
		}
		desc.Performances = append(desc.Performances, perfDesc)
	}
	return desc, nil
}
