// Package jsonfile implements the small auxiliary stores (topics,
// people, kanban columns, settings) on flat JSON files with the same
// atomic-rewrite discipline as the markdown entry store.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/jotlog/jotlog/internal/store/atomicfile"
)

// file is a mutex-guarded JSON document on disk. The zero value of T is
// returned when the file does not exist yet.
type file[T any] struct {
	path string
	mu   sync.Mutex
}

func (f *file[T]) read() (T, error) {
	var v T
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return v, nil
	}
	if err != nil {
		return v, fmt.Errorf("read %s: %w", f.path, err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return v, nil
}

func (f *file[T]) write(v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(f.path, append(data, '\n'), 0o644)
}

// update runs fn on the current document and persists the result in one
// critical section.
func (f *file[T]) update(fn func(T) (T, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, err := f.read()
	if err != nil {
		return err
	}
	v, err = fn(v)
	if err != nil {
		return err
	}
	return f.write(v)
}
