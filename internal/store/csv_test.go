// internal/store/csv_test.go
//
// Unit-tests for the append-only CSV store.
//
// Context
// -------
// The store's contract is: header exactly once, one row per record,
// fputcsv-compatible quoting, and no interleaved or lost rows under
// concurrent appends.

package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func testStore(t *testing.T) *CSVStore {
	t.Helper()
	return NewCSV(filepath.Join(t.TempDir(), "data", "submissions.csv"))
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse store: %v", err)
	}
	return rows
}

func TestAppend_HeaderWrittenOnce(t *testing.T) {
	s := testStore(t)

	row := []string{"t1", "p", "f", "s", "ip", "ua", `{"a":1}`}
	if n, err := s.Append([][]string{row}); err != nil || n != 1 {
		t.Fatalf("first append: n=%d err=%v", n, err)
	}
	if n, err := s.Append([][]string{row}); err != nil || n != 1 {
		t.Fatalf("second append: n=%d err=%v", n, err)
	}

	rows := readAll(t, s.Path())
	if len(rows) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(rows))
	}
	for i, col := range Header {
		if rows[0][i] != col {
			t.Fatalf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][0] != "t1" || rows[2][0] != "t1" {
		t.Fatalf("unexpected rows: %#v", rows[1:])
	}
}

func TestAppend_RoundTripAwkwardValues(t *testing.T) {
	s := testStore(t)

	row := []string{
		"2026-01-01T00:00:00Z",
		"/pricing?a=1,2",
		`form "quoted"`,
		"sess\nwith newline",
		"10.0.0.1",
		`Mozilla/5.0 (X11; Linux) "quoted"`,
		`{"note":"line1\nline2","emoji":"✓"}`,
	}
	if _, err := s.Append([][]string{row}); err != nil {
		t.Fatalf("append: %v", err)
	}

	rows := readAll(t, s.Path())
	if len(rows) != 2 {
		t.Fatalf("got %d lines, want 2", len(rows))
	}
	for i := range row {
		if rows[1][i] != row[i] {
			t.Fatalf("column %d: got %q, want %q", i, rows[1][i], row[i])
		}
	}
}

func TestAppend_NoDedup(t *testing.T) {
	s := testStore(t)

	row := []string{"t", "p", "f", "s", "ip", "ua", "{}"}
	s.Append([][]string{row})
	s.Append([][]string{row})

	if rows := readAll(t, s.Path()); len(rows) != 3 {
		t.Fatalf("identical submissions must produce two rows; got %d lines", len(rows))
	}
}

func TestAppend_ConcurrentWriters(t *testing.T) {
	s := testStore(t)
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			row := []string{fmt.Sprintf("t%d", i), "p", "f", "s", "ip", "ua", `{"i":` + fmt.Sprint(i) + `}`}
			if _, err := s.Append([][]string{row}); err != nil {
				t.Errorf("append %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	rows := readAll(t, s.Path())
	if len(rows) != n+1 {
		t.Fatalf("got %d lines, want %d (header + %d rows)", len(rows), n+1, n)
	}
	seen := make(map[string]bool, n)
	for _, row := range rows[1:] {
		if len(row) != len(Header) {
			t.Fatalf("corrupted row: %#v", row)
		}
		seen[row[0]] = true
	}
	if len(seen) != n {
		t.Fatalf("lost rows: %d distinct of %d", len(seen), n)
	}
}

func TestAppend_UnopenableStore(t *testing.T) {
	// A file where the directory should be makes the path unopenable.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	s := NewCSV(filepath.Join(blocker, "submissions.csv"))
	n, err := s.Append([][]string{{"t", "p", "f", "s", "ip", "ua", "{}"}})
	if n != 0 || !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got n=%d err=%v", n, err)
	}
}
