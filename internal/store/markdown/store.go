// Package markdown implements the entry store on top of a single
// markdown file per project. The file is the source of truth: every
// operation is a read-modify-write of the whole file under one mutex,
// flushed with an atomic temp-file-and-rename so readers never observe
// a partially written state.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jotlog/jotlog/internal/codec"
	"github.com/jotlog/jotlog/internal/model"
	"github.com/jotlog/jotlog/internal/store/atomicfile"
)

// Store owns exclusive access to one markdown file.
type Store struct {
	path string
	log  zerolog.Logger
	now  func() time.Time

	mu        sync.RWMutex
	cache     []model.Entry
	cacheMod  time.Time
	cacheSize int64
	cacheOK   bool
}

// NewStore creates a store for the markdown file at path. The file does
// not have to exist yet.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{path: path, log: log, now: time.Now}
}

// Path returns the underlying file path.
func (s *Store) Path() string { return s.path }

// Invalidate drops the parsed-entry cache. Called by the filesystem
// watcher when the file changes underneath us.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cacheOK = false
	s.mu.Unlock()
}

// rawBlock is one entry block exactly as stored, trailing separator
// stripped. Malformed blocks keep a zero key and are carried through
// rewrites untouched.
type rawBlock struct {
	key string
	raw []byte
}

// LoadAll returns every decodable entry, newest first. Malformed blocks
// are skipped and logged; one bad block never takes down the query path.
func (s *Store) LoadAll(ctx context.Context) ([]model.Entry, error) {
	s.mu.RLock()
	if es, ok := s.cachedLocked(); ok {
		s.mu.RUnlock()
		return es, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if es, ok := s.cachedLocked(); ok {
		return es, nil
	}
	return s.loadLocked()
}

// Append inserts e at the top of the file. A zero timestamp is assigned
// from the clock; colliding timestamps are bumped by one second until
// unique, so bulk saves in the same second stay addressable.
func (s *Store) Append(ctx context.Context, e model.Entry) (model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, blocks, err := s.readBlocks()
	if err != nil {
		return model.Entry{}, err
	}

	if e.Type == "" {
		return model.Entry{}, fmt.Errorf("%w: entry type is required", model.ErrValidation)
	}
	if err := codec.Validate(e); err != nil {
		return model.Entry{}, err
	}
	if e.Timestamp == "" {
		e.Timestamp = model.FormatTimestamp(s.now())
	}
	t, err := model.ParseTimestamp(e.Timestamp)
	if err != nil {
		return model.Entry{}, fmt.Errorf("%w: malformed timestamp %q", model.ErrValidation, e.Timestamp)
	}
	e.Timestamp = model.FormatTimestamp(t)

	taken := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		if b.key != "" {
			taken[b.key] = true
		}
	}
	for taken[e.Timestamp] {
		t = t.Add(time.Second)
		e.Timestamp = model.FormatTimestamp(t)
	}

	if e.Entity == "" {
		e.Entity = model.EntityUnclassified
	}

	out := make([]rawBlock, 0, len(blocks)+1)
	out = append(out, rawBlock{key: e.Timestamp, raw: codec.Encode(e)})
	out = append(out, blocks...)

	if err := s.writeLocked(header, out); err != nil {
		return model.Entry{}, err
	}
	return e, nil
}

// UpdateByKey applies mutate to the entry with the given key and
// rewrites the file with only that block re-encoded. The new block list
// is built fully in memory before any byte is written.
func (s *Store) UpdateByKey(ctx context.Context, timestamp string, mutate func(*model.Entry) error) (model.Entry, error) {
	ts := model.FromFileSafe(timestamp)

	s.mu.Lock()
	defer s.mu.Unlock()

	header, blocks, err := s.readBlocks()
	if err != nil {
		return model.Entry{}, err
	}

	idx := findBlock(blocks, ts)
	if idx < 0 {
		return model.Entry{}, fmt.Errorf("entry %q: %w", ts, model.ErrNotFound)
	}

	entry, err := codec.Decode(blocks[idx].raw)
	if err != nil {
		return model.Entry{}, err
	}
	if err := mutate(&entry); err != nil {
		return model.Entry{}, err
	}
	// The timestamp is the identity; mutators cannot move an entry.
	entry.Timestamp = ts
	if err := codec.Validate(entry); err != nil {
		return model.Entry{}, err
	}

	raw := codec.Encode(entry)
	if bytes.Equal(raw, blocks[idx].raw) {
		return entry, nil
	}

	out := make([]rawBlock, len(blocks))
	copy(out, blocks)
	out[idx] = rawBlock{key: ts, raw: raw}

	if err := s.writeLocked(header, out); err != nil {
		return model.Entry{}, err
	}
	return entry, nil
}

// DeleteByKey removes the matching block and returns the removed entry
// so the caller can clean up any referenced asset file.
func (s *Store) DeleteByKey(ctx context.Context, timestamp string) (model.Entry, error) {
	ts := model.FromFileSafe(timestamp)

	s.mu.Lock()
	defer s.mu.Unlock()

	header, blocks, err := s.readBlocks()
	if err != nil {
		return model.Entry{}, err
	}

	idx := findBlock(blocks, ts)
	if idx < 0 {
		return model.Entry{}, fmt.Errorf("entry %q: %w", ts, model.ErrNotFound)
	}

	entry, err := codec.Decode(blocks[idx].raw)
	if err != nil {
		return model.Entry{}, err
	}

	out := make([]rawBlock, 0, len(blocks)-1)
	out = append(out, blocks[:idx]...)
	out = append(out, blocks[idx+1:]...)

	if err := s.writeLocked(header, out); err != nil {
		return model.Entry{}, err
	}
	return entry, nil
}

// --- internals ---

func (s *Store) cachedLocked() ([]model.Entry, bool) {
	if !s.cacheOK {
		return nil, false
	}
	fi, err := os.Stat(s.path)
	if err != nil {
		return nil, false
	}
	if !fi.ModTime().Equal(s.cacheMod) || fi.Size() != s.cacheSize {
		return nil, false
	}
	out := make([]model.Entry, len(s.cache))
	copy(out, s.cache)
	return out, true
}

func (s *Store) loadLocked() ([]model.Entry, error) {
	fi, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return []model.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.path, err)
	}

	_, blocks, err := s.readBlocks()
	if err != nil {
		return nil, err
	}

	entries := make([]model.Entry, 0, len(blocks))
	for _, b := range blocks {
		e, err := codec.Decode(b.raw)
		if err != nil {
			s.log.Warn().Err(err).Str("file", s.path).Msg("skipping malformed entry block")
			continue
		}
		entries = append(entries, e)
	}

	s.cache = make([]model.Entry, len(entries))
	copy(s.cache, entries)
	s.cacheMod = fi.ModTime()
	s.cacheSize = fi.Size()
	s.cacheOK = true

	return entries, nil
}

func (s *Store) readBlocks() (header []byte, blocks []rawBlock, err error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	header, blocks = splitBlocks(data)
	return header, blocks, nil
}

// splitBlocks cuts the file at column-0 marker lines. Everything before
// the first marker (a hand-written heading, say) is preserved verbatim
// as the header.
func splitBlocks(data []byte) (header []byte, blocks []rawBlock) {
	lines := strings.SplitAfter(string(data), "\n")
	var cur *strings.Builder
	var hdr strings.Builder
	var bufs []*strings.Builder

	for _, ln := range lines {
		if ln == "" {
			continue
		}
		if codec.IsMarker(strings.TrimRight(ln, "\n")) {
			b := &strings.Builder{}
			bufs = append(bufs, b)
			cur = b
		}
		if cur == nil {
			hdr.WriteString(ln)
		} else {
			cur.WriteString(ln)
		}
	}

	for _, b := range bufs {
		raw := strings.TrimRight(b.String(), "\n") + "\n"
		blocks = append(blocks, rawBlock{key: codec.BlockKey([]byte(raw)), raw: []byte(raw)})
	}
	if hdr.Len() > 0 {
		header = []byte(hdr.String())
	}
	return header, blocks
}

// writeLocked assembles the full new file in memory and flushes it in
// one atomic write. The caller holds the write lock.
func (s *Store) writeLocked(header []byte, blocks []rawBlock) error {
	var buf bytes.Buffer
	if len(header) > 0 {
		buf.Write(header)
		if !bytes.HasSuffix(header, []byte("\n")) {
			buf.WriteByte('\n')
		}
	}
	for i, b := range blocks {
		if i > 0 || len(header) > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(b.raw)
	}

	if err := atomicfile.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	s.cacheOK = false
	return nil
}

func findBlock(blocks []rawBlock, ts string) int {
	for i, b := range blocks {
		if b.key == ts {
			return i
		}
	}
	return -1
}
