package services

import (
	"context"
	"fmt"

	"github.com/jotlog/jotlog/internal/model"
	"github.com/jotlog/jotlog/internal/store"
)

// ColumnService manages kanban columns, layering the cross-project
// reference check on top of the columns store.
type ColumnService struct {
	columns store.Columns
	entries *EntryService
}

// NewColumnService wires the column service.
func NewColumnService(columns store.Columns, entries *EntryService) *ColumnService {
	return &ColumnService{columns: columns, entries: entries}
}

func (s *ColumnService) List(ctx context.Context) ([]model.KanbanColumn, error) {
	return s.columns.List(ctx)
}

func (s *ColumnService) Add(ctx context.Context, c model.KanbanColumn) error {
	return s.columns.Add(ctx, c)
}

func (s *ColumnService) Update(ctx context.Context, c model.KanbanColumn) error {
	return s.columns.Update(ctx, c)
}

// Remove deletes a column. Default columns are refused outright; other
// columns only go when no entry in any project still references them.
func (s *ColumnService) Remove(ctx context.Context, id string) error {
	if model.IsDefaultColumn(id) {
		return fmt.Errorf("%w: default column %q cannot be removed", model.ErrValidation, id)
	}
	inUse, err := s.entries.TaskStatusInUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("column %q: %w", id, model.ErrInUse)
	}
	return s.columns.Remove(ctx, id)
}
