package catalogue

import (
	"context"
	"errors"
	"testing"

	"github.com/clef-app/clef/internal/domain"
	"github.com/clef-app/clef/internal/id"
	"github.com/clef-app/clef/internal/store"
)

// Sequential calls against one catalogue handle complete in issue
// order: an upsert is visible to the query issued right after it.
func TestCatalogue_WriteThenReadVisibility(t *testing.T) {
	cat := openTestCatalogue(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		p := domain.Person{ID: id.New(), FirstName: "F", LastName: "L"}
		if err := cat.UpsertPerson(ctx, p); err != nil {
			t.Fatalf("UpsertPerson failed: %v", err)
		}
		got, err := cat.GetPerson(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPerson failed: %v", err)
		}
		if got == nil {
			t.Fatalf("Upsert %d not visible to the immediately following get", i)
		}
	}
}

func TestCatalogue_AbandonedContext(t *testing.T) {
	cat := openTestCatalogue(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := domain.Person{ID: id.New(), FirstName: "A", LastName: "B"}
	err := cat.UpsertPerson(ctx, p)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	// the handle stays usable after an abandoned call
	if err := cat.UpsertPerson(context.Background(), p); err != nil {
		t.Fatalf("UpsertPerson after abandoned call failed: %v", err)
	}
}

func TestCatalogue_DeleteWorkRefused(t *testing.T) {
	cat := openTestCatalogue(t)
	ctx := context.Background()

	composer := domain.Person{ID: id.New(), FirstName: "Antonín", LastName: "Dvořák"}
	if err := cat.UpsertPerson(ctx, composer); err != nil {
		t.Fatal(err)
	}
	work := domain.WorkInsertion{Work: domain.Work{ID: id.New(), Composer: composer.ID, Title: "Cello Concerto"}}
	if err := cat.UpsertWork(ctx, work); err != nil {
		t.Fatal(err)
	}
	rec := domain.RecordingInsertion{Recording: domain.Recording{ID: id.New(), Work: work.Work.ID}}
	if err := cat.UpsertRecording(ctx, rec); err != nil {
		t.Fatal(err)
	}

	err := cat.DeleteWork(ctx, work.Work.ID)
	var refErr *store.ReferentialError
	if !errors.As(err, &refErr) {
		t.Errorf("Expected ReferentialError through the catalogue, got %v", err)
	}
}

func TestCatalogue_SetTracksAndList(t *testing.T) {
	cat := openTestCatalogue(t)
	ctx := context.Background()

	composer := domain.Person{ID: id.New(), FirstName: "Maurice", LastName: "Ravel"}
	if err := cat.UpsertPerson(ctx, composer); err != nil {
		t.Fatal(err)
	}
	work := domain.WorkInsertion{
		Work: domain.Work{ID: id.New(), Composer: composer.ID, Title: "String Quartet"},
		Parts: []domain.WorkPartInsertion{
			{Part: domain.WorkPart{ID: id.New(), Title: "I"}},
			{Part: domain.WorkPart{ID: id.New(), Title: "II"}},
		},
	}
	if err := cat.UpsertWork(ctx, work); err != nil {
		t.Fatal(err)
	}
	rec := domain.RecordingInsertion{Recording: domain.Recording{ID: id.New(), Work: work.Work.ID}}
	if err := cat.UpsertRecording(ctx, rec); err != nil {
		t.Fatal(err)
	}

	tracks := []domain.Track{
		{ID: id.New(), Path: "01.flac", WorkParts: domain.IndexList{0}},
		{ID: id.New(), Path: "02.flac", WorkParts: domain.IndexList{1}},
	}
	if err := cat.SetTracks(ctx, rec.Recording.ID, tracks); err != nil {
		t.Fatalf("SetTracks failed: %v", err)
	}

	got, err := cat.ListTracks(ctx, rec.Recording.ID)
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if len(got) != 2 || got[0].Path != "01.flac" || got[1].Path != "02.flac" {
		t.Errorf("Unexpected track list: %+v", got)
	}
}
