package services

import (
	"context"
	"strings"

	"github.com/jotlog/jotlog/internal/store"
)

// MaskedValue is what clients see in place of a secret. A client
// sending it back on write never overwrites the stored value.
const MaskedValue = "********"

// SettingsService exposes the settings store with secret masking.
// Sensitive values live only in the backing store and are never
// reconstructed from client input on read.
type SettingsService struct {
	settings store.Settings
}

// NewSettingsService wires the settings service.
func NewSettingsService(settings store.Settings) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the settings map with secret values masked.
func (s *SettingsService) Get(ctx context.Context) (map[string]string, error) {
	m, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	for k := range m {
		if IsSecretKey(k) {
			m[k] = MaskedValue
		}
	}
	return m, nil
}

// Raw returns the unmasked map for in-process consumers (the AI client
// reading its API key and prompt templates). Never exposed over HTTP.
func (s *SettingsService) Raw(ctx context.Context) (map[string]string, error) {
	return s.settings.Get(ctx)
}

// Set merges client-supplied values, dropping masked echoes so a
// round-tripped form cannot clobber a stored secret.
func (s *SettingsService) Set(ctx context.Context, values map[string]string) error {
	clean := make(map[string]string, len(values))
	for k, v := range values {
		if v == MaskedValue {
			continue
		}
		clean[k] = v
	}
	if len(clean) == 0 {
		return nil
	}
	return s.settings.Set(ctx, clean)
}

// IsSecretKey reports whether a settings key holds a sensitive value.
func IsSecretKey(k string) bool {
	k = strings.ToLower(k)
	return strings.HasSuffix(k, "_api_key") ||
		strings.HasSuffix(k, "_token") ||
		strings.Contains(k, "secret") ||
		k == "api_key" || k == "token"
}
