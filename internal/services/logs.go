package services

import (
	"context"

	"github.com/jotlog/jotlog/internal/model"
	"github.com/jotlog/jotlog/internal/store"
)

// LogService exposes the activity log to the viewer's polling loop.
type LogService struct {
	logs store.Logs
}

// NewLogService wires the log service.
func NewLogService(logs store.Logs) *LogService {
	return &LogService{logs: logs}
}

// ListSince returns records newer than since; empty since returns the
// whole retained window.
func (s *LogService) ListSince(ctx context.Context, since string) ([]model.LogRecord, error) {
	return s.logs.ListSince(ctx, since)
}

// Clear drops every record.
func (s *LogService) Clear(ctx context.Context) error {
	return s.logs.Clear(ctx)
}
