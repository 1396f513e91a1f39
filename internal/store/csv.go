// internal/store/csv.go
//
// Append-only CSV submission store.
//
/*
Context
--------
Every accepted submission becomes one row in a single CSV file with a
fixed 7-column header, written exactly once when the file is created.
The file only ever grows; there is no update, delete, or rotation path.

Concurrency
-----------
The write path holds one mutex spanning open-for-append, header-if-new,
row writes, and close, so concurrent requests never interleave partial
rows or lose a row to a lost write.  The lock is scoped to the local
append only; callers must perform network side effects after Append
returns, never while the lock is held.

Notes
-----
  • The file is opened per append.  At this service's traffic a held
    handle saves nothing and the open is what detects a vanished data
    directory.
  • OS advisory locks are deliberately not used; their semantics vary by
    platform and the process is the only writer.
*/
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Header is the fixed column set, in order.  Consumers parse rows by
// position.
var Header = []string{"timestamp", "page_source", "form_id", "session_id", "ip", "user_agent", "data_json"}

// ErrUnavailable reports that the store could not be opened or written.
// Handlers map it to a 500 with a fixed body.
var ErrUnavailable = errors.New("storage unavailable")

// CSVStore appends rows to one file under a mutex.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSV returns a store writing to path.  The file and its directory
// are created lazily on first append.
func NewCSV(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file location.
func (s *CSVStore) Path() string { return s.path }

// Append writes the given rows in one lock acquisition and returns the
// number written.  A nil error with n == len(rows) is the success case;
// any failure wraps ErrUnavailable.
func (s *CSVStore) Append(rows [][]string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o775); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	_, statErr := os.Stat(s.path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o664)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(Header); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	written := 0
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return written, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		written++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return written, nil
}
