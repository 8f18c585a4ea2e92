package services

import (
	"context"

	"github.com/jotlog/jotlog/internal/store"
)

// TaxonomyService fronts one unique-name suggestion list (topics or
// people). Renames touch the list only; entries keep the literal
// strings they were tagged with.
type TaxonomyService struct {
	names store.Names
}

// NewTaxonomyService wires a taxonomy service over a names store.
func NewTaxonomyService(names store.Names) *TaxonomyService {
	return &TaxonomyService{names: names}
}

func (s *TaxonomyService) List(ctx context.Context) ([]string, error) { return s.names.List(ctx) }

func (s *TaxonomyService) Add(ctx context.Context, name string) error { return s.names.Add(ctx, name) }

func (s *TaxonomyService) Rename(ctx context.Context, oldName, newName string) error {
	return s.names.Rename(ctx, oldName, newName)
}

func (s *TaxonomyService) Remove(ctx context.Context, name string) error {
	return s.names.Remove(ctx, name)
}
