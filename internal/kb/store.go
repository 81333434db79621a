// Package kb persists clarification answers keyed by task name and
// description fingerprint.
//
// The store is a single JSON file. It is read lazily on first access and
// every mutation is written through immediately: the file is re-read under
// an advisory lock, the change applied, and the result replaced atomically.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors,
//     internal/flock, internal/clock, std lib
//   - MUST NOT import: internal/clarifier, internal/orchestrator, internal/cli
package kb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/clarifyflow/internal/clock"
	"github.com/mrz1836/clarifyflow/internal/constants"
	"github.com/mrz1836/clarifyflow/internal/domain"
	cferrors "github.com/mrz1836/clarifyflow/internal/errors"
	"github.com/mrz1836/clarifyflow/internal/flock"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Entry is one knowledge base record with its decoded key.
type Entry struct {
	Key         string
	Task        string
	Fingerprint string
	Record      domain.ClarificationRecord
}

// Store is the file-backed knowledge base. It is not safe for concurrent
// use by multiple goroutines; cross-process writers are serialized by the
// lock file.
type Store struct {
	path        string
	clock       clock.Clock
	logger      zerolog.Logger
	lockTimeout time.Duration

	loaded  bool
	records map[string]domain.ClarificationRecord
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for updated_at.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithLockTimeout bounds how long a write waits for the lock file.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// NewStore creates a store backed by path. Nothing is read until first use.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:        path,
		clock:       clock.RealClock{},
		logger:      zerolog.Nop(),
		lockTimeout: constants.KBLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "kb").Logger()
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the record stored for the task description, if any.
func (s *Store) Get(_ context.Context, task, description string) (domain.ClarificationRecord, bool, error) {
	if err := s.ensureLoaded(); err != nil {
		return domain.ClarificationRecord{}, false, err
	}
	rec, ok := s.records[Key(task, description)]
	if !ok {
		return domain.ClarificationRecord{}, false, nil
	}
	rec.QA = rec.QA.Clone()
	return rec, true, nil
}

// Put merges qa into the record for the task description and flushes the
// file. Existing answers for the same question are overwritten; new
// questions are appended. An empty qa is a no-op.
func (s *Store) Put(ctx context.Context, task, description string, qa domain.Clarifications, provenance domain.Provenance) (domain.ClarificationRecord, error) {
	if qa.Len() == 0 {
		return domain.ClarificationRecord{}, nil
	}

	key := Key(task, description)
	var stored domain.ClarificationRecord
	err := s.mutate(ctx, func(records map[string]domain.ClarificationRecord) bool {
		rec := records[key]
		rec.QA = rec.QA.Clone()
		rec.QA.Merge(qa)
		rec.Provenance = provenance
		rec.UpdatedAt = s.clock.Now()
		rec.DescriptionPreview = Preview(description)
		records[key] = rec
		stored = rec
		return true
	})
	if err != nil {
		return domain.ClarificationRecord{}, err
	}

	s.logger.Debug().
		Str("key", key).
		Str("provenance", string(provenance)).
		Int("answers", stored.QA.Len()).
		Msg("stored clarifications")
	return stored, nil
}

// List returns entries sorted by key. A non-empty task limits the result
// to that task's entries.
func (s *Store) List(_ context.Context, task string) ([]Entry, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(s.records))
	for key, rec := range s.records {
		name, fp := SplitKey(key)
		if task != "" && name != task {
			continue
		}
		rec.QA = rec.QA.Clone()
		entries = append(entries, Entry{Key: key, Task: name, Fingerprint: fp, Record: rec})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Clear removes every entry, or only a task's entries when task is set.
// It returns the number of removed entries and skips the write when
// nothing matched.
//
// Clearing everything also recovers a malformed file: it is renamed with
// CorruptSuffix and an empty knowledge base is written in its place.
func (s *Store) Clear(ctx context.Context, task string) (int, error) {
	removed := 0
	err := s.mutate(ctx, func(records map[string]domain.ClarificationRecord) bool {
		for key := range records {
			if name, _ := SplitKey(key); task == "" || name == task {
				delete(records, key)
				removed++
			}
		}
		return removed > 0
	})
	if err != nil && task == "" && isMalformed(err) {
		return 0, s.reset(ctx)
	}
	if err != nil {
		return 0, err
	}

	s.logger.Info().Str("task", task).Int("removed", removed).Msg("cleared knowledge base entries")
	return removed, nil
}

func (s *Store) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	records, err := s.readFile()
	if err != nil {
		return err
	}
	s.records = records
	s.loaded = true
	return nil
}

// mutate applies fn to the on-disk state under the lock and writes the
// result when fn reports a change.
func (s *Store) mutate(ctx context.Context, fn func(map[string]domain.ClarificationRecord) bool) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	records, err := s.readFile()
	if err != nil {
		return err
	}

	if fn(records) {
		if err := s.writeFile(records); err != nil {
			return err
		}
	}

	s.records = records
	s.loaded = true
	return nil
}

// reset moves a malformed file aside and starts an empty knowledge base.
func (s *Store) reset(ctx context.Context) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	backup := s.path + constants.CorruptSuffix
	if err := os.Rename(s.path, backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to move aside %s: %w: %w", s.path, cferrors.ErrKnowledgeBase, err)
	}

	records := map[string]domain.ClarificationRecord{}
	if err := s.writeFile(records); err != nil {
		return err
	}
	s.records = records
	s.loaded = true

	s.logger.Warn().Str("backup", backup).Msg("reset malformed knowledge base")
	return nil
}

// lock acquires the knowledge base lock file and returns its release func.
func (s *Store) lock(ctx context.Context) (func(), error) {
	lock, err := flock.Acquire(ctx, s.path+constants.LockSuffix, s.lockTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to lock knowledge base: %w: %w", cferrors.ErrKnowledgeBase, err)
	}
	return func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			s.logger.Warn().Err(releaseErr).Msg("failed to release knowledge base lock")
		}
	}, nil
}

// isMalformed reports whether err came from decoding the file contents.
func isMalformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func (s *Store) readFile() (map[string]domain.ClarificationRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]domain.ClarificationRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w: %w", s.path, cferrors.ErrKnowledgeBase, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]domain.ClarificationRecord{}, nil
	}

	var records map[string]domain.ClarificationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w: %w", s.path, cferrors.ErrKnowledgeBase, err)
	}
	if records == nil {
		records = map[string]domain.ClarificationRecord{}
	}
	return records, nil
}

func (s *Store) writeFile(records map[string]domain.ClarificationRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return fmt.Errorf("failed to create knowledge base directory: %w: %w", cferrors.ErrKnowledgeBase, err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode knowledge base: %w: %w", cferrors.ErrKnowledgeBase, err)
	}
	data = append(data, '\n')

	if err := atomicWrite(s.path, data); err != nil {
		return fmt.Errorf("%w: %w", cferrors.ErrKnowledgeBase, err)
	}
	return nil
}

// atomicWrite writes to a sibling temp file, syncs it and renames it over path.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path comes from configuration
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
