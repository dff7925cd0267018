package app

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// Journal steps
const (
	StepDraft   = "draft"
	StepReview  = "review"
	StepOutcome = "outcome"
)

// JournalEntry is one line of journal.ndjson
type JournalEntry struct {
	TS        string   `json:"ts"`
	SessionID string   `json:"session_id"`
	Turn      int      `json:"turn"`     // draft attempt the entry belongs to
	Step      string   `json:"step"`     // draft, review or outcome
	Decision  string   `json:"decision"` // verdict kind or terminal state, empty for drafts
	ElapsedMs int64    `json:"elapsed_ms"`
	Error     string   `json:"error"`
	Artifacts []string `json:"artifacts"`
}

// NormalizeJournalEntry fills missing fields so every line has the same schema
func NormalizeJournalEntry(e *JournalEntry) JournalEntry {
	n := *e
	if n.TS == "" {
		n.TS = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if n.Step == "" {
		n.Step = "unknown"
	}
	if n.Artifacts == nil {
		n.Artifacts = []string{}
	}
	return n
}

// JournalWriter appends entries to an NDJSON file
type JournalWriter struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

// NewJournalWriter creates a writer for path on fsys, the OS filesystem when nil
func NewJournalWriter(fsys afero.Fs, path string) *JournalWriter {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &JournalWriter{fs: fsys, path: path}
}

// Path returns the journal file path
func (w *JournalWriter) Path() string { return w.path }

// Append writes one normalized entry as a JSON line
func (w *JournalWriter) Append(entry *JournalEntry) error {
	e := NormalizeJournalEntry(entry)
	if err := validateJournal(e); err != nil {
		return err
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.fs.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}
	f, err := w.fs.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := bw.Write(append(b, '\n')); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	// an entry that reached the file counts as appended
	if err := f.Sync(); err != nil {
		GetLogger().Warn("failed to fsync journal: %v", err)
	}
	return nil
}

// ReadJournal returns the entries of the journal at path, oldest first.
// A missing file is an empty journal; malformed lines are skipped.
func ReadJournal(fsys afero.Fs, path string) ([]JournalEntry, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []JournalEntry
	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var e JournalEntry
		if err := json.Unmarshal(line, &e); err != nil {
			GetLogger().Warn("journal %s line %d: %v", path, i+1, err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func validateJournal(e JournalEntry) error {
	if e.SessionID == "" {
		return errors.New("journal entry without session_id")
	}
	switch e.Step {
	case StepDraft, StepReview, StepOutcome:
	default:
		return fmt.Errorf("invalid journal step %q: must be draft, review or outcome", e.Step)
	}
	return nil
}
