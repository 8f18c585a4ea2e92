package jsonfile

import (
	"context"
	"fmt"

	"github.com/jotlog/jotlog/internal/model"
)

// ColumnsStore persists kanban column definitions. The three default
// columns always exist: a missing or empty file is seeded with them on
// first read.
type ColumnsStore struct {
	f file[[]model.KanbanColumn]
}

// NewColumnsStore creates a columns store backed by the JSON file at
// path.
func NewColumnsStore(path string) *ColumnsStore {
	return &ColumnsStore{f: file[[]model.KanbanColumn]{path: path}}
}

// List returns all columns, defaults first in their canonical order.
func (s *ColumnsStore) List(ctx context.Context) ([]model.KanbanColumn, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	cols, err := s.f.read()
	if err != nil {
		return nil, err
	}
	return withDefaults(cols), nil
}

// Add appends a new column. Duplicate ids are rejected.
func (s *ColumnsStore) Add(ctx context.Context, c model.KanbanColumn) error {
	if c.ID == "" || c.Name == "" {
		return fmt.Errorf("%w: column id and name are required", model.ErrValidation)
	}
	return s.f.update(func(cols []model.KanbanColumn) ([]model.KanbanColumn, error) {
		cols = withDefaults(cols)
		for _, existing := range cols {
			if existing.ID == c.ID {
				return nil, fmt.Errorf("%w: column %q already exists", model.ErrConflict, c.ID)
			}
		}
		return append(cols, c), nil
	})
}

// Update changes the display name and color of an existing column. The
// id is the stable foreign key and cannot change.
func (s *ColumnsStore) Update(ctx context.Context, c model.KanbanColumn) error {
	return s.f.update(func(cols []model.KanbanColumn) ([]model.KanbanColumn, error) {
		cols = withDefaults(cols)
		for i, existing := range cols {
			if existing.ID == c.ID {
				cols[i] = c
				return cols, nil
			}
		}
		return nil, fmt.Errorf("column %q: %w", c.ID, model.ErrNotFound)
	})
}

// Remove deletes a non-default column. The in-use check against entries
// happens at the service layer before this is called.
func (s *ColumnsStore) Remove(ctx context.Context, id string) error {
	if model.IsDefaultColumn(id) {
		return fmt.Errorf("%w: default column %q cannot be removed", model.ErrValidation, id)
	}
	return s.f.update(func(cols []model.KanbanColumn) ([]model.KanbanColumn, error) {
		cols = withDefaults(cols)
		for i, existing := range cols {
			if existing.ID == id {
				return append(cols[:i], cols[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("column %q: %w", id, model.ErrNotFound)
	})
}

// withDefaults guarantees the three default columns are present without
// disturbing stored customizations of their name or color.
func withDefaults(cols []model.KanbanColumn) []model.KanbanColumn {
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[c.ID] = true
	}
	var out []model.KanbanColumn
	for _, d := range model.DefaultColumns() {
		if !have[d.ID] {
			out = append(out, d)
		}
	}
	return append(out, cols...)
}
