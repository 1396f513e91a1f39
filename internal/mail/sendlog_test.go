// internal/mail/sendlog_test.go
//
// Unit-tests for the bounded send log.

package mail

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestSendLog_EvictsOldestBeyondCap(t *testing.T) {
	l := NewSendLog(filepath.Join(t.TempDir(), "email-log.json"))
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	for i := 1; i <= 105; i++ {
		subj := fmt.Sprintf("subject %d", i)
		if err := l.Record("a@b.com", subj, TemplateDefault, now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	entries := l.Entries()
	if len(entries) != 100 {
		t.Fatalf("got %d entries, want 100", len(entries))
	}
	if entries[0].Subject != "subject 6" {
		t.Fatalf("oldest surviving entry = %q, want subject 6", entries[0].Subject)
	}
	if entries[99].Subject != "subject 105" {
		t.Fatalf("newest entry = %q, want subject 105", entries[99].Subject)
	}
}

func TestSendLog_EntryShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "email-log.json")
	l := NewSendLog(path)

	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	if err := l.Record("a@b.com", "Hi", TemplateWelcome, now); err != nil {
		t.Fatalf("record: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var entries []map[string]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("log file not a JSON array: %v", err)
	}
	e := entries[0]
	if e["timestamp"] != "2026-03-14 09:26:53" || e["to"] != "a@b.com" ||
		e["subject"] != "Hi" || e["template"] != "welcome" {
		t.Fatalf("unexpected entry: %#v", e)
	}
}

func TestSendLog_ToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "email-log.json")
	if err := os.WriteFile(path, []byte("{{{ not json"), 0o664); err != nil {
		t.Fatalf("setup: %v", err)
	}

	l := NewSendLog(path)
	if err := l.Record("a@b.com", "Hi", TemplateDefault, time.Now()); err != nil {
		t.Fatalf("record over corrupt file: %v", err)
	}
	if got := len(l.Entries()); got != 1 {
		t.Fatalf("got %d entries, want fresh log with 1", got)
	}
}

func TestSendLog_ConcurrentRecords(t *testing.T) {
	l := NewSendLog(filepath.Join(t.TempDir(), "email-log.json"))

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := l.Record("a@b.com", fmt.Sprintf("s%d", i), TemplateDefault, time.Now()); err != nil {
				t.Errorf("record %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(l.Entries()); got != n {
		t.Fatalf("got %d entries, want %d (no lost updates)", got, n)
	}
}
