package markdown

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jotlog/jotlog/internal/store"
	"github.com/jotlog/jotlog/internal/validate"
)

const (
	// EntryFileName is the markdown file holding a project's entries.
	EntryFileName = "knowledge.md"
	// AssetsDirName holds screenshots and captured files, referenced by
	// relative path from entries.
	AssetsDirName = "assets"
)

// Manager resolves project folder names to entry stores, one mutex
// domain per underlying file. Operations on different projects proceed
// concurrently.
type Manager struct {
	root string
	log  zerolog.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager creates a manager rooted at the data directory.
func NewManager(root string, log zerolog.Logger) *Manager {
	return &Manager{root: root, log: log, stores: make(map[string]*Store)}
}

// Root returns the data directory.
func (m *Manager) Root() string { return m.root }

// Project returns the entry store for name, validating the folder name
// against path traversal first.
func (m *Manager) Project(name string) (store.Entries, error) {
	s, err := m.project(name)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) project(name string) (*Store, error) {
	if err := validate.ProjectFolder(name); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[name]; ok {
		return s, nil
	}
	s := NewStore(filepath.Join(m.root, name, EntryFileName), m.log)
	m.stores[name] = s
	return s, nil
}

// List enumerates project folders that carry an entry file.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	dirents, err := os.ReadDir(m.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(m.root, d.Name(), EntryFileName)); err == nil {
			out = append(out, d.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// AssetsDir returns the asset directory for a project, creating it on
// demand.
func (m *Manager) AssetsDir(project string) (string, error) {
	if err := validate.ProjectFolder(project); err != nil {
		return "", err
	}
	dir := filepath.Join(m.root, project, AssetsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Invalidate drops the cache of the store backing path, if any. The
// watcher calls this when a file changes on disk.
func (m *Manager) Invalidate(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.stores {
		if s.Path() == path {
			s.Invalidate()
		}
	}
}
