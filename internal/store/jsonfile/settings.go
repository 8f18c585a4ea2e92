package jsonfile

import (
	"context"
)

// SettingsStore persists the flat key-value settings map. It always
// holds real values; masking for client reads is the service layer's
// job.
type SettingsStore struct {
	f file[map[string]string]
}

// NewSettingsStore creates a settings store backed by the JSON file at
// path.
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{f: file[map[string]string]{path: path}}
}

// Get returns a copy of the stored map.
func (s *SettingsStore) Get(ctx context.Context) (map[string]string, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	m, err := s.f.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

// Set merges values into the stored map. An empty value deletes the key.
func (s *SettingsStore) Set(ctx context.Context, values map[string]string) error {
	return s.f.update(func(m map[string]string) (map[string]string, error) {
		if m == nil {
			m = make(map[string]string)
		}
		for k, v := range values {
			if v == "" {
				delete(m, k)
				continue
			}
			m[k] = v
		}
		return m, nil
	})
}
