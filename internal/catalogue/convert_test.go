package catalogue

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/clef-app/clef/internal/domain"
	"github.com/clef-app/clef/internal/id"
	"github.com/clef-app/clef/internal/logger"
	"github.com/clef-app/clef/internal/store"
)

func openTestCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "catalogue.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	cat := New(db, logger.Default())
	t.Cleanup(func() {
		cat.Close()
		db.Close()
	})
	return cat
}

func TestFlattenWork_AssignsIndices(t *testing.T) {
	w := domain.WorkDescription{
		ID:       id.New(),
		Title:    "Quartet",
		Composer: domain.Person{ID: "c1"},
		Parts: []domain.WorkPartDescription{
			{Title: "I"},
			{Title: "II"},
			{Title: "III"},
		},
	}

	ins := FlattenWork(w)
	if len(ins.Parts) != 3 {
		t.Fatalf("Expected 3 parts, got %d", len(ins.Parts))
	}
	seen := make(map[string]bool)
	for i, p := range ins.Parts {
		if p.Part.PartIndex != i {
			t.Errorf("Part %d got part_index %d", i, p.Part.PartIndex)
		}
		if p.Part.Work != w.ID {
			t.Errorf("Part %d not linked to work", i)
		}
		if p.Part.ID == "" || seen[p.Part.ID] {
			t.Errorf("Part %d has missing or duplicate id %q", i, p.Part.ID)
		}
		seen[p.Part.ID] = true
	}
}

// Round trip: rehydrating a flattened description recovers everything
// except the regenerated part/section IDs.
func TestWorkDescription_RoundTrip(t *testing.T) {
	cat := openTestCatalogue(t)
	ctx := context.Background()

	bach := domain.Person{ID: id.New(), FirstName: "Johann Sebastian", LastName: "Bach"}
	cpe := domain.Person{ID: id.New(), FirstName: "Carl Philipp Emanuel", LastName: "Bach"}
	violin := domain.Instrument{ID: id.New(), Name: "Violin"}
	continuo := domain.Instrument{ID: id.New(), Name: "Continuo"}
	for _, p := range []domain.Person{bach, cpe} {
		if err := cat.UpsertPerson(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	for _, ins := range []domain.Instrument{violin, continuo} {
		if err := cat.UpsertInstrument(ctx, ins); err != nil {
			t.Fatal(err)
		}
	}

	original := domain.WorkDescription{
		ID:          id.New(),
		Title:       "Sonata",
		Composer:    bach,
		Instruments: []domain.Instrument{violin, continuo},
		Parts: []domain.WorkPartDescription{
			{Title: "Grave", Instruments: []domain.Instrument{violin}},
			{Title: "Fuga", Composer: &cpe},
			{Title: "Presto"},
		},
		Sections: []domain.WorkSectionDescription{
			{Title: "Opening", BeforeIndex: 0},
			{Title: "Finale", BeforeIndex: 2},
		},
	}

	if err := cat.SaveWork(ctx, original); err != nil {
		t.Fatalf("SaveWork failed: %v", err)
	}

	got, err := cat.DescribeWork(ctx, original.ID)
	if err != nil {
		t.Fatalf("DescribeWork failed: %v", err)
	}
	if got == nil {
		t.Fatal("DescribeWork returned nil for saved work")
	}

	// timestamps are store-managed; strip them before comparing
	clearStamps := func(w *domain.WorkDescription) {
		w.Composer.LastUsed, w.Composer.LastPlayed = nil, nil
		for i := range w.Instruments {
			w.Instruments[i].LastUsed, w.Instruments[i].LastPlayed = nil, nil
		}
		for i := range w.Parts {
			if w.Parts[i].Composer != nil {
				w.Parts[i].Composer.LastUsed, w.Parts[i].Composer.LastPlayed = nil, nil
			}
			for j := range w.Parts[i].Instruments {
				w.Parts[i].Instruments[j].LastUsed, w.Parts[i].Instruments[j].LastPlayed = nil, nil
			}
		}
	}
	clearStamps(got)
	clearStamps(&original)

	if !reflect.DeepEqual(*got, original) {
		t.Errorf("Round trip mismatch:\n got  %+v\n want %+v", *got, original)
	}
}

func TestRecordingDescription_RoundTrip(t *testing.T) {
	cat := openTestCatalogue(t)
	ctx := context.Background()

	composer := domain.Person{ID: id.New(), FirstName: "Gustav", LastName: "Mahler"}
	soloist := domain.Person{ID: id.New(), FirstName: "Anna", LastName: "Mahler"}
	orchestra := domain.Ensemble{ID: id.New(), Name: "Berlin Philharmonic"}
	conductor := domain.Instrument{ID: id.New(), Name: "Conductor"}
	if err := cat.UpsertPerson(ctx, composer); err != nil {
		t.Fatal(err)
	}
	if err := cat.UpsertPerson(ctx, soloist); err != nil {
		t.Fatal(err)
	}
	if err := cat.UpsertEnsemble(ctx, orchestra); err != nil {
		t.Fatal(err)
	}
	if err := cat.UpsertInstrument(ctx, conductor); err != nil {
		t.Fatal(err)
	}

	work := domain.WorkDescription{
		ID:       id.New(),
		Title:    "Symphony No. 2",
		Composer: composer,
		Parts: []domain.WorkPartDescription{
			{Title: "Allegro maestoso"},
		},
	}
	if err := cat.SaveWork(ctx, work); err != nil {
		t.Fatal(err)
	}

	rec := domain.RecordingDescription{
		ID:      id.New(),
		Work:    work,
		Comment: "Live, 1995",
		Performances: []domain.PerformanceDescription{
			{Person: &soloist, Role: &conductor},
			{Ensemble: &orchestra},
		},
	}
	if err := cat.SaveRecording(ctx, rec); err != nil {
		t.Fatalf("SaveRecording failed: %v", err)
	}

	got, err := cat.DescribeRecording(ctx, rec.ID)
	if err != nil {
		t.Fatalf("DescribeRecording failed: %v", err)
	}
	if got == nil {
		t.Fatal("DescribeRecording returned nil for saved recording")
	}
	if got.Comment != "Live, 1995" {
		t.Errorf("Comment = %q", got.Comment)
	}
	if got.Work.ID != work.ID || got.Work.Title != work.Title {
		t.Errorf("Work not rehydrated: %+v", got.Work)
	}
	if len(got.Performances) != 2 {
		t.Fatalf("Expected 2 performances, got %d", len(got.Performances))
	}
	if got.PerformersText() != "Anna Mahler (Conductor), Berlin Philharmonic" {
		t.Errorf("PerformersText() = %q", got.PerformersText())
	}
}

func TestDescribeWork_MissingWork(t *testing.T) {
	cat := openTestCatalogue(t)

	got, err := cat.DescribeWork(context.Background(), "absent")
	if err != nil {
		t.Fatalf("DescribeWork failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for absent work, got %+v", got)
	}
}
