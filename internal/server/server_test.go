package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clef-app/clef/internal/catalogue"
	"github.com/clef-app/clef/internal/client"
	"github.com/clef-app/clef/internal/domain"
	"github.com/clef-app/clef/internal/id"
	"github.com/clef-app/clef/internal/logger"
	"github.com/clef-app/clef/internal/store"
)

const testToken = "sync-secret"

func openTestServer(t *testing.T) (*httptest.Server, *catalogue.Catalogue) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "catalogue.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	cat := catalogue.New(db, logger.Default())
	h := NewHandler(cat, logger.Default(), testToken)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(func() {
		srv.Close()
		cat.Close()
		db.Close()
	})
	return srv, cat
}

func TestServer_PersonRoundTrip(t *testing.T) {
	srv, _ := openTestServer(t)
	c := client.New(srv.URL, testToken)
	ctx := context.Background()

	p := domain.Person{ID: id.New(), FirstName: "Clara", LastName: "Schumann"}
	if err := c.PutPerson(ctx, p); err != nil {
		t.Fatalf("PutPerson failed: %v", err)
	}

	got, err := c.Person(ctx, p.ID)
	if err != nil {
		t.Fatalf("Person failed: %v", err)
	}
	if got.ID != p.ID || got.FirstName != p.FirstName || got.LastName != p.LastName {
		t.Errorf("Round trip mismatch: got %+v, want %+v", got, p)
	}

	persons, err := c.Persons(ctx)
	if err != nil {
		t.Fatalf("Persons failed: %v", err)
	}
	if len(persons) != 1 {
		t.Errorf("Expected 1 person, got %d", len(persons))
	}
}

func TestServer_WriteRequiresToken(t *testing.T) {
	srv, _ := openTestServer(t)
	ctx := context.Background()

	p := domain.Person{ID: id.New(), FirstName: "Johannes", LastName: "Brahms"}

	bad := client.New(srv.URL, "wrong-token")
	err := bad.PutPerson(ctx, p)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("Expected 401 with wrong token, got %v", err)
	}

	none := client.New(srv.URL, "")
	err = none.PutPerson(ctx, p)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("Expected 401 without token, got %v", err)
	}
}

func TestServer_ReadsAreOpen(t *testing.T) {
	srv, cat := openTestServer(t)
	ctx := context.Background()

	p := domain.Person{ID: id.New(), FirstName: "Maurice", LastName: "Ravel"}
	if err := cat.UpsertPerson(ctx, p); err != nil {
		t.Fatalf("UpsertPerson failed: %v", err)
	}

	c := client.New(srv.URL, "")
	got, err := c.Person(ctx, p.ID)
	if err != nil {
		t.Fatalf("Tokenless read failed: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("Expected person %s, got %s", p.ID, got.ID)
	}
}

func TestServer_AbsentEntityIs404(t *testing.T) {
	srv, _ := openTestServer(t)
	c := client.New(srv.URL, testToken)

	_, err := c.Person(context.Background(), id.New())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	_, err = c.Work(context.Background(), id.New())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for work, got %v", err)
	}
}

func TestServer_ReferentialConflictIs409(t *testing.T) {
	srv, _ := openTestServer(t)
	c := client.New(srv.URL, testToken)

	ins := domain.WorkInsertion{
		Work: domain.Work{ID: id.New(), Composer: id.New(), Title: "Orphan"},
	}
	err := c.PutWork(context.Background(), ins)
	if err == nil || !strings.Contains(err.Error(), "409") {
		t.Errorf("Expected 409 for missing composer, got %v", err)
	}
}

func TestServer_WorkSyncRoundTrip(t *testing.T) {
	srv, _ := openTestServer(t)
	c := client.New(srv.URL, testToken)
	ctx := context.Background()

	composer := domain.Person{ID: id.New(), FirstName: "Antonin", LastName: "Dvorak"}
	if err := c.PutPerson(ctx, composer); err != nil {
		t.Fatalf("PutPerson failed: %v", err)
	}

	workID := id.New()
	ins := domain.WorkInsertion{
		Work: domain.Work{ID: workID, Composer: composer.ID, Title: "Symphony No. 9"},
		Parts: []domain.WorkPartInsertion{
			{Part: domain.WorkPart{ID: id.New(), Work: workID, Title: "Adagio - Allegro molto"}},
			{Part: domain.WorkPart{ID: id.New(), Work: workID, Title: "Largo"}},
		},
	}
	if err := c.PutWork(ctx, ins); err != nil {
		t.Fatalf("PutWork failed: %v", err)
	}

	got, err := c.Work(ctx, workID)
	if err != nil {
		t.Fatalf("Work failed: %v", err)
	}
	if got.Work.Title != ins.Work.Title {
		t.Errorf("Expected title %q, got %q", ins.Work.Title, got.Work.Title)
	}
	if len(got.Parts) != 2 {
		t.Fatalf("Expected 2 parts, got %d", len(got.Parts))
	}
	if got.Parts[0].Part.ID != ins.Parts[0].Part.ID {
		t.Errorf("Part ID not preserved through sync: got %s, want %s",
			got.Parts[0].Part.ID, ins.Parts[0].Part.ID)
	}

	byComposer, err := c.WorksByComposer(ctx, composer.ID)
	if err != nil {
		t.Fatalf("WorksByComposer failed: %v", err)
	}
	if len(byComposer) != 1 || byComposer[0].Work.ID != workID {
		t.Errorf("Expected work %s under composer, got %+v", workID, byComposer)
	}

	recID := id.New()
	rec := domain.RecordingInsertion{
		Recording: domain.Recording{ID: recID, Work: workID, Comment: "1951"},
		Performances: []domain.Performance{
			{ID: id.New(), Recording: recID, Person: &composer.ID},
		},
	}
	if err := c.PutRecording(ctx, rec); err != nil {
		t.Fatalf("PutRecording failed: %v", err)
	}

	recs, err := c.RecordingsByWork(ctx, workID)
	if err != nil {
		t.Fatalf("RecordingsByWork failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Recording.ID != recID {
		t.Errorf("Expected recording %s under work, got %+v", recID, recs)
	}
	if len(recs[0].Performances) != 1 {
		t.Errorf("Expected 1 performance, got %d", len(recs[0].Performances))
	}
}

func TestServer_InvalidPerformanceIs400(t *testing.T) {
	srv, _ := openTestServer(t)
	c := client.New(srv.URL, testToken)

	recID := id.New()
	ins := domain.RecordingInsertion{
		Recording: domain.Recording{ID: recID, Work: id.New()},
		Performances: []domain.Performance{
			{ID: id.New(), Recording: recID},
		},
	}
	err := c.PutRecording(context.Background(), ins)
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("Expected 400 for performance without performer, got %v", err)
	}
}

func TestServer_BadJSONIs400(t *testing.T) {
	srv, _ := openTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/persons", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}
