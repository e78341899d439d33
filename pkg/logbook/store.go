package logbook

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// FileStore is the append-only persistence component for LogEntry records.
//
// It owns the record file: one header line followed by one delimiter-joined
// line per entry. Entries are immutable once written and are never updated
// or deleted.
//
// Concurrent-append safety: the file is opened once in O_APPEND mode and
// every entry is written with a single Write call, serialized by an
// in-process mutex. A ReadAll racing with an Append observes the file
// before or after that append, never a torn line.
type FileStore struct {
	path    string
	metrics *Metrics

	mu   sync.Mutex
	file *os.File
}

// OpenFileStore opens (or creates) the record file at the given path in
// append mode. A new or empty file gets the header line written
// immediately; Append does not re-validate it per call.
func OpenFileStore(path string, metrics *Metrics) (*FileStore, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat record file: %w", err)
	}
	if info.Size() == 0 {
		if _, err := file.WriteString(Header + "\n"); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	return &FileStore{path: path, metrics: metrics, file: file}, nil
}

// Path returns the path of the record file.
func (s *FileStore) Path() string {
	return s.path
}

// Append serializes the entry into one newline-terminated line and appends
// it to the record file. Existing content is never truncated or reordered.
func (s *FileStore) Append(entry LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.WriteString(entry.Line() + "\n"); err != nil {
		s.metrics.Store.AppendFailures.Inc()
		return fmt.Errorf("append record: %w", err)
	}

	s.metrics.Store.EntriesAppended.Inc()
	return nil
}

// ReadAll reads the entire record file and parses every line after the
// header into a LogEntry, in the file's physical line order (append order).
// A missing or unreadable file surfaces as an error; the store does not
// synthesize an empty result.
func (s *FileStore) ReadAll() ([]LogEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.metrics.Store.ReadFailures.Inc()
		return nil, fmt.Errorf("read record file: %w", err)
	}

	lines := strings.Split(string(data), "\n")

	entries := make([]LogEntry, 0, len(lines))
	for i, line := range lines {
		if i == 0 || line == "" {
			// Header line and the empty fragment after the final newline.
			continue
		}
		entries = append(entries, ParseLine(line))
	}

	s.metrics.Store.Reads.Inc()
	return entries, nil
}

// Close closes the underlying record file.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
