// internal/mail/sendlog.go
//
// Bounded JSON log of successful sends.
//
/*
Context
--------
Every delivered email appends one entry to a JSON-array file capped at
the 100 most recent entries (oldest evicted first).  The file is
rewritten in full on each append; at 100 pretty-printed entries that is
a few kilobytes, so read-modify-write stays cheap.

Concurrency
-----------
The whole read-append-trim-write cycle runs under one mutex, so
concurrent dispatches cannot lose entries to a last-writer-wins race.

Notes
-----
  • A missing or corrupt file starts a fresh log rather than failing the
    send; the log is an operator convenience, not a ledger.
*/
package mail

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// maxLogEntries caps the file at the most recent sends.
const maxLogEntries = 100

// LogEntry summarizes one delivered email.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Template  string `json:"template"`
}

// SendLog serializes appends to the bounded log file.
type SendLog struct {
	path string
	mu   sync.Mutex
}

// NewSendLog returns a log writing to path; the file is created on
// first append.
func NewSendLog(path string) *SendLog {
	return &SendLog{path: path}
}

// Record appends an entry for a delivered message.
func (l *SendLog) Record(to, subject string, tmpl Template, now time.Time) error {
	entry := LogEntry{
		Timestamp: now.Format("2006-01-02 15:04:05"),
		To:        to,
		Subject:   subject,
		Template:  string(tmpl),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.read()
	entries = append(entries, entry)
	if len(entries) > maxLogEntries {
		entries = entries[len(entries)-maxLogEntries:]
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o775); err != nil {
		return err
	}
	out, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, out, 0o664)
}

// Entries returns the current log contents, oldest first.
func (l *SendLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

// read loads the file, tolerating absence and corruption.
func (l *SendLog) read() []LogEntry {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil
	}
	var entries []LogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	return entries
}
