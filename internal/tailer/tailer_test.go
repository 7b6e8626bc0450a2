package tailer

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/atikulmunna/edlog/internal/cursor"
	"github.com/atikulmunna/edlog/internal/journal"
	"github.com/atikulmunna/edlog/internal/model"
)

type recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recorder) OnEvent(ev model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) take() []model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func quietLogger() *log.Logger { return log.New(&bytes.Buffer{}, "", 0) }

func appendLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	for _, l := range lines {
		if _, err := f.WriteString(l + "\n"); err != nil {
			t.Fatal(err)
		}
	}
}

func jumpLine(i int) string {
	return fmt.Sprintf(`{"timestamp":"2025-11-27T10:%02d:00Z","event":"FSDJump","StarSystem":"Sys %d","SystemAddress":%d}`, i, i, i+1)
}

func newManual(t *testing.T, dir string, opts ...Option) (*Tailer, *recorder) {
	t.Helper()
	opts = append([]Option{WithoutAutoStart(), WithLogger(quietLogger())}, opts...)
	tl, err := New(dir, opts...)
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	tl.AddListener(rec)
	return tl, rec
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return info.Size()
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, journal.ErrDirectoryNotFound) {
		t.Errorf("expected ErrDirectoryNotFound, got %v", err)
	}
}

func TestStartsAtEndOfExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Journal.2025-11-27T100000.01.log")
	appendLines(t, path, jumpLine(0), jumpLine(1))

	tl, rec := newManual(t, dir)
	if err := tl.Poll(); err != nil {
		t.Fatal(err)
	}

	if got := rec.take(); len(got) != 0 {
		t.Errorf("expected history not to be replayed, got %d events", len(got))
	}
	if tl.Offset() != fileSize(t, path) {
		t.Errorf("expected offset at end of file %d, got %d", fileSize(t, path), tl.Offset())
	}
}

func TestResumptionAcrossCycles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Journal.2025-11-27T100000.01.log")
	appendLines(t, path, jumpLine(0))

	tl, rec := newManual(t, dir)
	tl.Poll()

	n := 1
	for cycle := 0; cycle < 3; cycle++ {
		appendLines(t, path, jumpLine(n), jumpLine(n+1))

		if err := tl.Poll(); err != nil {
			t.Fatalf("cycle %d: %v", cycle, err)
		}

		got := rec.take()
		if len(got) != 2 {
			t.Fatalf("cycle %d: expected 2 events, got %d", cycle, len(got))
		}
		for i, ev := range got {
			want := fmt.Sprintf("Sys %d", n+i)
			if sys := ev.(*model.FSDJump).StarSystem; sys != want {
				t.Errorf("cycle %d: expected %s, got %s", cycle, want, sys)
			}
		}
		if tl.Offset() != fileSize(t, path) {
			t.Errorf("cycle %d: expected offset %d, got %d", cycle, fileSize(t, path), tl.Offset())
		}
		n += 2
	}

	// Nothing new: nothing dispatched.
	tl.Poll()
	if got := rec.take(); len(got) != 0 {
		t.Errorf("expected no duplicates, got %d events", len(got))
	}
}

func TestPartialLineWaitsForNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Journal.2025-11-27T100000.01.log")
	appendLines(t, path, jumpLine(0))

	tl, rec := newManual(t, dir)
	tl.Poll()

	line := jumpLine(1)
	f, _ := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	f.WriteString(line[:20])
	f.Close()

	tl.Poll()
	if got := rec.take(); len(got) != 0 {
		t.Fatalf("expected partial line to wait, got %d events", len(got))
	}

	f, _ = os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	f.WriteString(line[20:] + "\n")
	f.Close()

	tl.Poll()
	got := rec.take()
	if len(got) != 1 {
		t.Fatalf("expected completed line, got %d events", len(got))
	}
	if sys := got[0].(*model.FSDJump).StarSystem; sys != "Sys 1" {
		t.Errorf("expected Sys 1, got %s", sys)
	}
}

func TestMalformedLineDoesNotStall(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Journal.2025-11-27T100000.01.log")
	appendLines(t, path, jumpLine(0))

	tl, rec := newManual(t, dir)
	tl.Poll()

	appendLines(t, path, `{"timestamp":broken`, jumpLine(1))
	tl.Poll()

	if got := rec.take(); len(got) != 1 {
		t.Errorf("expected 1 good event, got %d", len(got))
	}
	if tl.Offset() != fileSize(t, path) {
		t.Errorf("expected offset past bad line")
	}
}

func TestRotation(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "Journal.2025-11-27T100000.01.log")
	appendLines(t, oldPath, jumpLine(0))

	tl, rec := newManual(t, dir)
	tl.Poll()
	appendLines(t, oldPath, jumpLine(1))
	tl.Poll()
	rec.take()

	newPath := filepath.Join(dir, "Journal.2025-11-27T120000.01.log")
	appendLines(t, newPath, jumpLine(10), jumpLine(11))

	if err := tl.Poll(); err != nil {
		t.Fatal(err)
	}
	if got := rec.take(); len(got) != 0 {
		t.Errorf("expected no events on rotation, got %d", len(got))
	}
	if tl.CurrentFile() != newPath {
		t.Errorf("expected current file %s, got %s", newPath, tl.CurrentFile())
	}
	if tl.Offset() != fileSize(t, newPath) {
		t.Errorf("expected offset at new file length %d, got %d", fileSize(t, newPath), tl.Offset())
	}

	appendLines(t, newPath, jumpLine(12))
	tl.Poll()
	got := rec.take()
	if len(got) != 1 || got[0].(*model.FSDJump).StarSystem != "Sys 12" {
		t.Errorf("expected only Sys 12 after rotation, got %d events", len(got))
	}
}

func TestListenerPanicIsolated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Journal.2025-11-27T100000.01.log")
	appendLines(t, path, jumpLine(0))

	tl, err := New(dir, WithoutAutoStart(), WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	tl.AddListener(ListenerFunc(func(model.Event) { panic("boom") }))
	rec := &recorder{}
	tl.AddListener(rec)

	tl.Poll()
	appendLines(t, path, jumpLine(1))
	if err := tl.Poll(); err != nil {
		t.Fatal(err)
	}

	if got := rec.take(); len(got) != 1 {
		t.Errorf("expected second listener to receive the event, got %d", len(got))
	}
}

func TestSnapshotDispatch(t *testing.T) {
	dir := t.TempDir()
	appendLines(t, filepath.Join(dir, "Journal.2025-11-27T100000.01.log"), jumpLine(0))
	statusPath := filepath.Join(dir, journal.StatusFileName)

	tl, rec := newManual(t, dir)

	os.WriteFile(statusPath, []byte(`{"timestamp":"2025-11-27T10:00:00Z","event":"Status","Flags":0,"Flags2":0}`), 0644)
	tl.Poll()
	if got := rec.take(); len(got) != 1 || got[0].Kind() != model.KindStatus {
		t.Fatalf("expected first snapshot frame, got %d events", len(got))
	}

	os.WriteFile(statusPath, []byte(`{"timestamp":"2025-11-27T10:00:01Z","event":"Status","Flags":131072,"Flags2":524288,"Destination":{"System":9,"Body":0,"Name":"X"}}`), 0644)
	tl.Poll()
	got := rec.take()
	if len(got) != 2 || got[1].Kind() != model.KindHyperjumpCharging {
		t.Fatalf("expected status plus hyperjump, got %d events", len(got))
	}

	tl.Poll()
	if got := rec.take(); len(got) != 0 {
		t.Errorf("expected no re-fire, got %d events", len(got))
	}
	if tl.LastStatus() == nil || tl.LastStatus().Flags != 131072 {
		t.Error("expected last status to be kept")
	}
}

func TestCursorAdvances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Journal.2025-11-27T100000.01.log")
	appendLines(t, path, jumpLine(0))

	store := cursor.InDir(dir)
	tl, _ := newManual(t, dir, WithCursor(store))
	tl.Poll()

	appendLines(t, path, jumpLine(5))
	tl.Poll()

	got, ok := store.Read()
	if !ok {
		t.Fatal("expected cursor to be written")
	}
	want := time.Date(2025, 11, 27, 10, 5, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected cursor %s, got %s", want, got)
	}
}

func TestStartStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Journal.2025-11-27T100000.01.log")
	appendLines(t, path, jumpLine(0))

	tl, err := New(dir, WithInterval(10*time.Millisecond), WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	tl.AddListener(rec) // starts polling

	// Wait for the first tick to settle on the file.
	deadline := time.Now().Add(2 * time.Second)
	for tl.CurrentFile() == "" && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	appendLines(t, path, jumpLine(1))
	tl.Nudge()

	deadline = time.Now().Add(2 * time.Second)
	var got []model.Event
	for len(got) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
		got = append(got, rec.take()...)
	}
	tl.Stop()
	tl.Stop() // second stop is a no-op

	if len(got) != 1 {
		t.Errorf("expected 1 live event, got %d", len(got))
	}
}

func TestRegistrySharesTailer(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(WithoutAutoStart(), WithLogger(quietLogger()))

	a, err := r.Get(dir)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := r.Get(dir + string(filepath.Separator))
	if a != b {
		t.Error("expected the same tailer for the same directory")
	}

	other := t.TempDir()
	c, _ := r.Get(other)
	if c == a {
		t.Error("expected a separate tailer for another directory")
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 tailers, got %d", r.Len())
	}

	if _, err := r.Get(filepath.Join(dir, "missing")); !errors.Is(err, journal.ErrDirectoryNotFound) {
		t.Errorf("expected ErrDirectoryNotFound, got %v", err)
	}
	r.StopAll()
	if r.Len() != 0 {
		t.Errorf("expected registry to be empty after StopAll, got %d", r.Len())
	}
}
