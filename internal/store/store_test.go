package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/atikulmunna/edlog/internal/model"
	"github.com/atikulmunna/edlog/internal/parser"
	"github.com/atikulmunna/edlog/internal/systems"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fold(t *testing.T, lines ...string) []systems.SystemRecord {
	t.Helper()
	var evs []model.Event
	for _, l := range lines {
		ev, err := parser.Parse(l)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		evs = append(evs, ev)
	}
	return systems.FoldAll(nil, evs).Records()
}

const (
	jumpSol   = `{"timestamp":"2025-11-27T10:00:00Z","event":"FSDJump","StarSystem":"Sol","SystemAddress":10477373803}`
	scanEarth = `{"timestamp":"2025-11-27T10:01:00Z","event":"Scan","BodyName":"Earth","BodyID":3,"SurfaceGravity":9.8,"PlanetClass":"Earthlike body"}`
	scanMars  = `{"timestamp":"2025-11-27T10:02:00Z","event":"Scan","BodyName":"Mars","BodyID":4,"PlanetClass":"Rocky body"}`
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestSaveAndLoadRecords(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	recs := fold(t, jumpSol, scanEarth)
	if err := s.SaveRecords(ctx, recs); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, recs) {
		t.Errorf("expected %+v, got %+v", recs, got)
	}
}

func TestSaveRecordsUpserts(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if err := s.SaveRecords(ctx, fold(t, jumpSol, scanEarth)); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRecords(ctx, fold(t, jumpSol, scanEarth, scanMars)); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadRecords(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one system after upsert, got %d", len(got))
	}
	if len(got[0].Bodies) != 2 {
		t.Errorf("expected 2 bodies after upsert, got %d", len(got[0].Bodies))
	}
}

func TestFindSystemAndClear(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if err := s.SaveRecords(ctx, fold(t, jumpSol, scanEarth)); err != nil {
		t.Fatal(err)
	}
	r, ok, err := s.FindSystem(ctx, "sol")
	if err != nil || !ok {
		t.Fatalf("expected to find Sol, got ok=%v err=%v", ok, err)
	}
	if r.SystemAddress != 10477373803 {
		t.Errorf("expected address 10477373803, got %d", r.SystemAddress)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.FindSystem(ctx, "Sol"); ok {
		t.Error("expected no system after clear")
	}
}

func TestRecordRun(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if _, ok, err := s.LastRun(ctx); err != nil || ok {
		t.Fatalf("expected no runs yet, got ok=%v err=%v", ok, err)
	}

	to := time.Date(2025, 11, 27, 10, 2, 0, 0, time.UTC)
	start := time.Date(2025, 11, 28, 9, 0, 0, 0, time.UTC)
	run, err := s.RecordRun(ctx, Run{
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		CursorTo:   &to,
		Events:     42,
		Systems:    3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if run.ID == "" {
		t.Error("expected generated run id")
	}

	last, ok, err := s.LastRun(ctx)
	if err != nil || !ok {
		t.Fatalf("expected a run, got ok=%v err=%v", ok, err)
	}
	if last.ID != run.ID || last.Mode != ModeIncremental || last.Events != 42 {
		t.Errorf("unexpected run %+v", last)
	}
	if last.CursorFrom != nil {
		t.Errorf("expected nil cursor_from, got %v", last.CursorFrom)
	}
	if last.CursorTo == nil || !last.CursorTo.Equal(to) {
		t.Errorf("expected cursor_to %v, got %v", to, last.CursorTo)
	}
}
