// Package journal reads historical journal files into time-ordered events.
package journal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/atikulmunna/edlog/internal/catalog"
	"github.com/atikulmunna/edlog/internal/metrics"
	"github.com/atikulmunna/edlog/internal/model"
	"github.com/atikulmunna/edlog/internal/parser"
)

// ErrDirectoryNotFound is returned when the journal directory is missing.
var ErrDirectoryNotFound = errors.New("journal directory not found")

// StatusFileName is the snapshot file written next to the journals.
const StatusFileName = "Status.json"

const dateLayout = "2006-01-02"

// Reader answers historical queries over a journal directory. It keeps no
// state between calls.
type Reader struct {
	catalog    *catalog.Catalog
	statusPath string
	parser     parser.Parser
	logger     *log.Logger
	metrics    *metrics.Metrics
}

type Option func(*Reader)

// WithStatusFile overrides the snapshot file path.
func WithStatusFile(path string) Option {
	return func(r *Reader) { r.statusPath = path }
}

// WithStrictOrder orders files by the start time in their name.
func WithStrictOrder(strict bool) Option {
	return func(r *Reader) { r.catalog.StrictOrder = strict }
}

func WithLogger(l *log.Logger) Option {
	return func(r *Reader) { r.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reader) { r.metrics = m }
}

func WithParser(p parser.Parser) Option {
	return func(r *Reader) { r.parser = p }
}

// New creates a Reader for dir. It fails with ErrDirectoryNotFound when dir
// does not exist or is not a directory.
func New(dir string, opts ...Option) (*Reader, error) {
	if err := CheckDir(dir); err != nil {
		return nil, err
	}

	r := &Reader{
		catalog:    catalog.New(dir),
		statusPath: filepath.Join(dir, StatusFileName),
		parser:     parser.New(),
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// CheckDir reports ErrDirectoryNotFound unless dir is an existing directory.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}
	return nil
}

// Catalog returns the file catalog the reader lists from.
func (r *Reader) Catalog() *catalog.Catalog { return r.catalog }

// ReadAll parses every journal file plus the current snapshot, sorted by
// timestamp.
func (r *Reader) ReadAll() ([]model.Event, error) {
	refs, err := r.catalog.List()
	if err != nil {
		return nil, err
	}

	events := r.readFiles(refs, nil)
	if st := r.readStatus(); st != nil {
		events = append(events, st)
	}
	sortByTime(events)
	return events, nil
}

// ReadToday returns the events stamped on the current local date.
func (r *Reader) ReadToday() ([]model.Event, error) {
	return r.ReadForDate(time.Now().Format(dateLayout))
}

// ReadForDate returns the events whose local date is date (yyyy-MM-dd).
//
// Files are pre-selected by the date in their name. The last file started
// before date is read too, since a session running past midnight keeps
// writing to the file it started in.
func (r *Reader) ReadForDate(date string) ([]model.Event, error) {
	if _, err := time.ParseInLocation(dateLayout, date, time.Local); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	refs, err := r.catalog.List()
	if err != nil {
		return nil, err
	}

	var candidates []catalog.FileRef
	carry := -1
	for i, ref := range refs {
		switch {
		case ref.Date == "" || ref.Date == date || strings.Contains(ref.Name, date):
			candidates = append(candidates, ref)
		case ref.Date < date && (carry < 0 || refs[carry].Date <= ref.Date):
			carry = i
		}
	}
	if carry >= 0 {
		candidates = append([]catalog.FileRef{refs[carry]}, candidates...)
	}

	onDate := func(ev model.Event) bool { return localDate(ev.Time()) == date }
	events := r.readFiles(candidates, onDate)
	if st := r.readStatus(); st != nil && onDate(st) {
		events = append(events, st)
	}
	sortByTime(events)
	return events, nil
}

// ReadLastN parses the last n files in catalog order. n <= 0 yields nothing.
func (r *Reader) ReadLastN(n int) ([]model.Event, error) {
	if n <= 0 {
		return []model.Event{}, nil
	}

	refs, err := r.catalog.List()
	if err != nil {
		return nil, err
	}
	if n < len(refs) {
		refs = refs[len(refs)-n:]
	}

	events := r.readFiles(refs, nil)
	sortByTime(events)
	return events, nil
}

// ReadLatest parses only the newest journal file.
func (r *Reader) ReadLatest() ([]model.Event, error) {
	return r.ReadLastN(1)
}

// ReadSince returns the events strictly after cursor. A zero cursor reads
// everything. Files named for a day before the cursor's local date are
// skipped without being opened.
func (r *Reader) ReadSince(cursor time.Time) ([]model.Event, error) {
	if cursor.IsZero() {
		return r.ReadAll()
	}

	refs, err := r.catalog.List()
	if err != nil {
		return nil, err
	}

	cursorDate := localDate(cursor)
	var candidates []catalog.FileRef
	for _, ref := range refs {
		if ref.Date != "" && ref.Date < cursorDate {
			continue
		}
		candidates = append(candidates, ref)
	}

	events := r.readFiles(candidates, func(ev model.Event) bool {
		return ev.Time().After(cursor)
	})
	sortByTime(events)
	return events, nil
}

// ListAvailableDates returns the distinct local dates named by journal files,
// ascending.
func (r *Reader) ListAvailableDates() ([]string, error) {
	refs, err := r.catalog.List()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	dates := []string{}
	for _, ref := range refs {
		if ref.Date == "" || seen[ref.Date] {
			continue
		}
		seen[ref.Date] = true
		dates = append(dates, ref.Date)
	}
	sort.Strings(dates)
	return dates, nil
}

// ReadFile parses one journal file. Lines that fail to parse are logged and
// skipped.
func (r *Reader) ReadFile(path string) ([]model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []model.Event
	br := bufio.NewReader(f)
	lineNo := 0
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lineNo++
			if strings.TrimSpace(line) != "" {
				if ev := r.parseLine(path, lineNo, line); ev != nil {
					events = append(events, ev)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return events, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return events, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Reader) readFiles(refs []catalog.FileRef, keep func(model.Event) bool) []model.Event {
	var out []model.Event
	for _, ref := range refs {
		events, err := r.ReadFile(ref.Path)
		if err != nil {
			r.logger.Printf("cannot read %s: %v", ref.Path, err)
		}
		for _, ev := range events {
			if keep == nil || keep(ev) {
				out = append(out, ev)
			}
		}
	}
	return out
}

func (r *Reader) parseLine(path string, lineNo int, line string) model.Event {
	ev, err := r.parser.Parse(line)
	if err != nil {
		r.logger.Printf("skipping %s:%d: %v", filepath.Base(path), lineNo, err)
		r.metrics.Malformed(metrics.SourceHistory)
		return nil
	}
	r.metrics.Event(metrics.SourceHistory, ev.Kind().String())
	return ev
}

// readStatus parses the snapshot file, or returns nil when it is absent or
// unreadable.
func (r *Reader) readStatus() model.Event {
	if r.statusPath == "" {
		return nil
	}
	raw, err := os.ReadFile(r.statusPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Printf("cannot read %s: %v", r.statusPath, err)
		}
		return nil
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil
	}
	ev, err := r.parser.Parse(string(raw))
	if err != nil {
		r.logger.Printf("skipping %s: %v", filepath.Base(r.statusPath), err)
		r.metrics.Malformed(metrics.SourceSnapshot)
		return nil
	}
	return ev
}

func localDate(t time.Time) string {
	return t.In(time.Local).Format(dateLayout)
}

func sortByTime(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time().Before(events[j].Time())
	})
}
