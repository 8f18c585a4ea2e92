// Package store defines the persistence contracts the services depend
// on. Implementations live under internal/store/<driver>/ (markdown,
// jsonfile, sqlitelog).
package store

import (
	"context"

	"github.com/jotlog/jotlog/internal/model"
)

// Entries is the markdown-backed entry store for one project file. All
// mutators are mutually exclusive per underlying file; loads may run
// concurrently and always observe a fully consistent file.
type Entries interface {
	// LoadAll returns every entry, newest first. An absent file is an
	// empty sequence, not an error.
	LoadAll(ctx context.Context) ([]model.Entry, error)

	// Append inserts a new logical record at the top of the file. The
	// stored timestamp is perturbed when it would collide; the returned
	// entry carries the final key.
	Append(ctx context.Context, e model.Entry) (model.Entry, error)

	// UpdateByKey applies mutate to the entry with the given display
	// timestamp and rewrites only that block, leaving every other
	// block's bytes untouched.
	UpdateByKey(ctx context.Context, timestamp string, mutate func(*model.Entry) error) (model.Entry, error)

	// DeleteByKey removes the matching block and returns the removed
	// entry so callers can clean up referenced assets. A missing key is
	// model.ErrNotFound, not a silent no-op.
	DeleteByKey(ctx context.Context, timestamp string) (model.Entry, error)
}

// Names is a unique-name suggestion list (topics, people).
type Names interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, name string) error
	// Rename updates the suggestion list only; entries keep the literal
	// string they reference.
	Rename(ctx context.Context, oldName, newName string) error
	// Remove never fails when entries still reference the name.
	Remove(ctx context.Context, name string) error
}

// Columns persists kanban column definitions. Reference checks against
// entries happen at the service layer, which can see every project.
type Columns interface {
	List(ctx context.Context) ([]model.KanbanColumn, error)
	Add(ctx context.Context, c model.KanbanColumn) error
	Update(ctx context.Context, c model.KanbanColumn) error
	Remove(ctx context.Context, id string) error
}

// Settings is the flat key-value settings store. Masking of secret
// values is the service layer's concern; the store holds real values.
type Settings interface {
	Get(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, values map[string]string) error
}

// Logs is the rolling activity log.
type Logs interface {
	Append(ctx context.Context, rec model.LogRecord) error
	// ListSince returns records with Timestamp strictly after since,
	// oldest first. Empty since returns everything retained.
	ListSince(ctx context.Context, since string) ([]model.LogRecord, error)
	Clear(ctx context.Context) error
	Close() error
}

// Projects resolves per-project entry stores.
type Projects interface {
	// Project returns the entry store for a validated project folder.
	Project(name string) (Entries, error)
	// List enumerates project folders that exist on disk.
	List(ctx context.Context) ([]string, error)
	// AssetsDir returns the asset directory for a project, creating it
	// on demand.
	AssetsDir(project string) (string, error)
}
