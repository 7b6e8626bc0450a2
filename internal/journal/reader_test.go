package journal

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atikulmunna/edlog/internal/model"
)

// useUTC pins the local zone so date filtering is deterministic.
func useUTC(t *testing.T) {
	t.Helper()
	prev := time.Local
	time.Local = time.UTC
	t.Cleanup(func() { time.Local = prev })
}

func writeFile(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func jump(ts, system string) string {
	return `{"timestamp":"` + ts + `","event":"FSDJump","StarSystem":"` + system + `","SystemAddress":1}`
}

func newReader(t *testing.T, dir string) *Reader {
	t.Helper()
	r, err := New(dir, WithLogger(log.New(&bytes.Buffer{}, "", 0)))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrDirectoryNotFound) {
		t.Errorf("expected ErrDirectoryNotFound, got %v", err)
	}
}

func TestReadAllIncludesStatusAndSorts(t *testing.T) {
	useUTC(t)
	dir := t.TempDir()
	writeFile(t, dir, "Journal.2025-11-27T100000.01.log",
		jump("2025-11-27T10:05:00Z", "B"),
		jump("2025-11-27T10:01:00Z", "A"),
	)
	writeFile(t, dir, "Journal.2025-11-28T100000.01.log",
		jump("2025-11-28T10:01:00Z", "C"),
	)
	writeFile(t, dir, StatusFileName,
		`{"timestamp":"2025-11-27T12:00:00Z","event":"Status","Flags":16}`,
	)

	events, err := newReader(t, dir).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Time().Before(events[i-1].Time()) {
			t.Errorf("events not sorted at %d", i)
		}
	}
	if events[2].Kind() != model.KindStatus {
		t.Errorf("expected snapshot at position 2, got %s", events[2].Kind())
	}
}

func TestReadSkipsMalformedLines(t *testing.T) {
	useUTC(t)
	dir := t.TempDir()
	writeFile(t, dir, "Journal.2025-11-27T100000.01.log",
		jump("2025-11-27T10:01:00Z", "A"),
		`{"timestamp":"2025-11-27T10:02:00Z","event":"FSDJ`,
		``,
		jump("2025-11-27T10:03:00Z", "B"),
	)

	var logs bytes.Buffer
	r, err := New(dir, WithLogger(log.New(&logs, "", 0)))
	if err != nil {
		t.Fatal(err)
	}
	events, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events around the bad line, got %d", len(events))
	}
	if !strings.Contains(logs.String(), "malformed record") {
		t.Errorf("expected malformed line to be logged, got %q", logs.String())
	}
}

func TestReadForDateRollover(t *testing.T) {
	useUTC(t)
	dir := t.TempDir()
	writeFile(t, dir, "Journal.2025-11-27T220000.01.log",
		jump("2025-11-27T23:59:00Z", "Before"),
		jump("2025-11-28T00:00:05Z", "After"),
	)

	events, err := newReader(t, dir).ReadForDate("2025-11-28")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event after midnight, got %d", len(events))
	}
	if got := events[0].(*model.FSDJump).StarSystem; got != "After" {
		t.Errorf("expected system After, got %s", got)
	}
}

func TestReadForDateFiltersFiles(t *testing.T) {
	useUTC(t)
	dir := t.TempDir()
	writeFile(t, dir, "Journal.2025-11-25T100000.01.log", jump("2025-11-25T10:00:00Z", "Old"))
	writeFile(t, dir, "Journal.2025-11-27T100000.01.log", jump("2025-11-27T10:00:00Z", "Prev"))
	writeFile(t, dir, "Journal.2025-11-28T100000.01.log", jump("2025-11-28T10:00:00Z", "Day"))
	writeFile(t, dir, "Journal.2025-11-29T100000.01.log", jump("2025-11-29T10:00:00Z", "Next"))
	writeFile(t, dir, StatusFileName, `{"timestamp":"2025-11-28T12:00:00Z","Flags":0}`)

	events, err := newReader(t, dir).ReadForDate("2025-11-28")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected journal event plus snapshot, got %d", len(events))
	}
	if events[1].Kind() != model.KindStatus {
		t.Errorf("expected snapshot last, got %s", events[1].Kind())
	}

	if _, err := newReader(t, dir).ReadForDate("28/11/2025"); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestReadLastN(t *testing.T) {
	useUTC(t)
	dir := t.TempDir()
	writeFile(t, dir, "Journal.2025-11-26T100000.01.log", jump("2025-11-26T10:00:00Z", "A"))
	writeFile(t, dir, "Journal.2025-11-27T100000.01.log", jump("2025-11-27T10:00:00Z", "B"))
	writeFile(t, dir, "Journal.2025-11-28T100000.01.log", jump("2025-11-28T10:00:00Z", "C"))

	r := newReader(t, dir)

	events, _ := r.ReadLastN(2)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].(*model.FSDJump).StarSystem != "B" {
		t.Errorf("expected B first, got %s", events[0].(*model.FSDJump).StarSystem)
	}

	events, _ = r.ReadLastN(0)
	if len(events) != 0 {
		t.Errorf("expected no events for n=0, got %d", len(events))
	}

	events, _ = r.ReadLastN(10)
	if len(events) != 3 {
		t.Errorf("expected all 3 events, got %d", len(events))
	}

	events, _ = r.ReadLatest()
	if len(events) != 1 || events[0].(*model.FSDJump).StarSystem != "C" {
		t.Errorf("expected latest file only, got %d events", len(events))
	}
}

func TestReadSince(t *testing.T) {
	useUTC(t)
	dir := t.TempDir()
	writeFile(t, dir, "Journal.2025-11-26T100000.01.log", jump("2025-11-26T10:00:00Z", "A"))
	writeFile(t, dir, "Journal.2025-11-27T100000.01.log",
		jump("2025-11-27T10:00:00Z", "B"),
		jump("2025-11-27T11:00:00Z", "C"),
	)
	writeFile(t, dir, "Journal.2025-11-28T100000.01.log", jump("2025-11-28T10:00:00Z", "D"))

	r := newReader(t, dir)
	cursor := time.Date(2025, 11, 27, 10, 0, 0, 0, time.UTC)

	events, err := r.ReadSince(cursor)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events after cursor, got %d", len(events))
	}
	if events[0].(*model.FSDJump).StarSystem != "C" || events[1].(*model.FSDJump).StarSystem != "D" {
		t.Errorf("expected C then D, got %s then %s",
			events[0].(*model.FSDJump).StarSystem, events[1].(*model.FSDJump).StarSystem)
	}

	all, _ := r.ReadSince(time.Time{})
	if len(all) != 4 {
		t.Errorf("expected zero cursor to read all 4 events, got %d", len(all))
	}
}

func TestListAvailableDates(t *testing.T) {
	useUTC(t)
	dir := t.TempDir()
	writeFile(t, dir, "Journal.2025-11-28T100000.01.log", jump("2025-11-28T10:00:00Z", "A"))
	writeFile(t, dir, "Journal.2025-11-27T100000.01.log", jump("2025-11-27T10:00:00Z", "B"))
	writeFile(t, dir, "Journal.2025-11-27T100000.02.log", jump("2025-11-27T12:00:00Z", "C"))
	writeFile(t, dir, "Journal.251126100000.01.log", jump("2025-11-26T10:00:00Z", "D"))

	dates, err := newReader(t, dir).ListAvailableDates()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2025-11-26", "2025-11-27", "2025-11-28"}
	if len(dates) != len(want) {
		t.Fatalf("expected %v, got %v", want, dates)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], dates[i])
		}
	}
}
