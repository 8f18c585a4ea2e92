package jsonfile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jotlog/jotlog/internal/model"
)

// NamesStore persists a unique-name suggestion list (topics or people)
// as a sorted JSON array.
type NamesStore struct {
	f file[[]string]
}

// NewNamesStore creates a names store backed by the JSON file at path.
func NewNamesStore(path string) *NamesStore {
	return &NamesStore{f: file[[]string]{path: path}}
}

// List returns the names sorted case-insensitively.
func (s *NamesStore) List(ctx context.Context) ([]string, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	names, err := s.f.read()
	if err != nil {
		return nil, err
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names, nil
}

// Add inserts a name. Adding an existing name is a no-op.
func (s *NamesStore) Add(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	return s.f.update(func(names []string) ([]string, error) {
		for _, n := range names {
			if n == name {
				return names, nil
			}
		}
		names = append(names, name)
		sort.Slice(names, func(i, j int) bool {
			return strings.ToLower(names[i]) < strings.ToLower(names[j])
		})
		return names, nil
	})
}

// Rename replaces oldName in the suggestion list. Entries referencing
// the old string keep it; the rename is deliberately non-cascading.
func (s *NamesStore) Rename(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("%w: new name is required", model.ErrValidation)
	}
	return s.f.update(func(names []string) ([]string, error) {
		idx := -1
		for i, n := range names {
			if n == newName && oldName != newName {
				return nil, fmt.Errorf("%w: %q already exists", model.ErrConflict, newName)
			}
			if n == oldName {
				idx = i
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("name %q: %w", oldName, model.ErrNotFound)
		}
		names[idx] = newName
		return names, nil
	})
}

// Remove deletes a name from the suggestion list. It never fails because
// entries still reference the name; they keep the literal string.
func (s *NamesStore) Remove(ctx context.Context, name string) error {
	return s.f.update(func(names []string) ([]string, error) {
		out := names[:0]
		found := false
		for _, n := range names {
			if n == name {
				found = true
				continue
			}
			out = append(out, n)
		}
		if !found {
			return nil, fmt.Errorf("name %q: %w", name, model.ErrNotFound)
		}
		return out, nil
	})
}
