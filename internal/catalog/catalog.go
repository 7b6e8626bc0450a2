// Package catalog lists the journal files in a directory and orders them.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern matches journal files relative to the journal directory.
const Pattern = "Journal.*.log"

const (
	modernLayout = "2006-01-02T150405" // Journal.2025-11-27T154101.01.log
	legacyLayout = "060102150405"      // Journal.251127154101.01.log
	dateLayout   = "2006-01-02"
)

// FileRef is one journal file. Date and Start are inferred from the file name
// and are empty or zero when the name does not follow a known scheme.
type FileRef struct {
	Path  string
	Name  string
	Date  string    // local yyyy-MM-dd the file was started on
	Start time.Time // local start time, when the name carries one
}

// Catalog enumerates the journal files of one directory.
type Catalog struct {
	Dir string

	// StrictOrder sorts by the start time embedded in the name instead of by
	// the name itself. Files whose name cannot be parsed sort first, by name.
	StrictOrder bool
}

func New(dir string) *Catalog {
	return &Catalog{Dir: dir}
}

// List returns the journal files in order. A missing directory yields an
// empty list.
func (c *Catalog) List() ([]FileRef, error) {
	info, err := os.Stat(c.Dir)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	names, err := doublestar.Glob(os.DirFS(c.Dir), Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.Dir, err)
	}

	refs := make([]FileRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, Ref(filepath.Join(c.Dir, name)))
	}

	if c.StrictOrder {
		sort.SliceStable(refs, func(i, j int) bool {
			if !refs[i].Start.Equal(refs[j].Start) {
				return refs[i].Start.Before(refs[j].Start)
			}
			return refs[i].Name < refs[j].Name
		})
	} else {
		sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	}
	return refs, nil
}

// Latest returns the last file of List, or false when there is none.
func (c *Catalog) Latest() (FileRef, bool, error) {
	refs, err := c.List()
	if err != nil || len(refs) == 0 {
		return FileRef{}, false, err
	}
	return refs[len(refs)-1], true, nil
}

// Ref builds a FileRef for path, inferring its date from the file name.
func Ref(path string) FileRef {
	name := filepath.Base(path)
	ref := FileRef{Path: path, Name: name}

	first := strings.Index(name, ".")
	if first < 0 {
		return ref
	}
	rest := name[first+1:]
	token := rest
	if dot := strings.Index(rest, "."); dot >= 0 {
		token = rest[:dot]
	}

	if t, err := time.ParseInLocation(modernLayout, token, time.Local); err == nil {
		ref.Start = t
		ref.Date = t.Format(dateLayout)
		return ref
	}
	if t, err := time.ParseInLocation(legacyLayout, token, time.Local); err == nil {
		ref.Start = t
		ref.Date = t.Format(dateLayout)
		return ref
	}

	// Date-only prefix, e.g. Journal.2025-11-27T1541.01.log.
	if tIdx := strings.Index(rest, "T"); tIdx > 0 {
		if d, err := time.ParseInLocation(dateLayout, rest[:tIdx], time.Local); err == nil {
			ref.Date = d.Format(dateLayout)
		}
	}
	return ref
}
