package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jotlog/jotlog/internal/model"
	"github.com/jotlog/jotlog/internal/store"
	"github.com/jotlog/jotlog/internal/validate"
)

// AssetPayload is a decoded screenshot or file upload attached to a
// capture request.
type AssetPayload struct {
	Kind     string // "screenshot" or "file"
	Filename string // optional original filename, extension reused
	MimeType string
	Data     []byte
}

// EntryService is the read/write orchestration over the per-project
// markdown stores: filtering, asset lifecycle, field patches.
type EntryService struct {
	projects store.Projects
	columns  store.Columns
	logs     store.Logs
	log      zerolog.Logger
}

// NewEntryService wires the entry service. logs may be nil in tests.
func NewEntryService(projects store.Projects, columns store.Columns, logs store.Logs, log zerolog.Logger) *EntryService {
	return &EntryService{projects: projects, columns: columns, logs: logs, log: log}
}

// Append stores a new entry, writing the asset payload (if any) under
// the project's assets directory first. A failed append removes the
// asset again so no orphan files accumulate.
func (s *EntryService) Append(ctx context.Context, project string, e model.Entry, asset *AssetPayload) (model.Entry, error) {
	start := time.Now()
	entries, err := s.projects.Project(project)
	if err != nil {
		return model.Entry{}, err
	}

	var assetAbs string
	if asset != nil {
		rel, abs, err := s.writeAsset(project, e, asset)
		if err != nil {
			return model.Entry{}, err
		}
		assetAbs = abs
		if asset.Kind == "screenshot" {
			e.Screenshot = rel
		} else {
			e.File = rel
		}
	}

	if e.Entity == model.EntityTask && e.TaskStatus == "" {
		e.TaskStatus = s.defaultTaskStatus(ctx)
	}

	out, err := entries.Append(ctx, e)
	if err != nil {
		if assetAbs != "" {
			_ = os.Remove(assetAbs)
		}
		s.record(ctx, "append", "error", err.Error(), start)
		return model.Entry{}, err
	}
	s.record(ctx, "append", "ok", fmt.Sprintf("%s %s", project, out.Timestamp), start)
	return out, nil
}

// Query loads the project's entries and applies the filter, preserving
// the store's newest-first order.
func (s *EntryService) Query(ctx context.Context, project string, f model.QueryFilter) ([]model.Entry, error) {
	entries, err := s.loadAll(ctx, project)
	if err != nil {
		return nil, err
	}
	if f.IsZero() {
		return entries, nil
	}
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if matches(e, f) {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetByKey returns the entry with the given timestamp key (display or
// file-safe form).
func (s *EntryService) GetByKey(ctx context.Context, project, key string) (model.Entry, error) {
	ts := model.FromFileSafe(key)
	entries, err := s.loadAll(ctx, project)
	if err != nil {
		return model.Entry{}, err
	}
	for _, e := range entries {
		if e.Timestamp == ts {
			return e, nil
		}
	}
	return model.Entry{}, fmt.Errorf("entry %q: %w", ts, model.ErrNotFound)
}

// PatchRequest names the entry fields the UI may change in place. Nil
// fields are left untouched.
type PatchRequest struct {
	Content    *string `json:"content,omitempty"`
	TaskStatus *string `json:"taskStatus,omitempty"`
	Entity     *string `json:"entity,omitempty"`
	Title      *string `json:"title,omitempty"`
}

// Patch applies a field-level update to one entry.
func (s *EntryService) Patch(ctx context.Context, project, key string, p PatchRequest) (model.Entry, error) {
	start := time.Now()
	if p.TaskStatus != nil {
		if err := s.checkColumn(ctx, *p.TaskStatus); err != nil {
			return model.Entry{}, err
		}
	}
	if p.Entity != nil {
		switch *p.Entity {
		case model.EntityProject, model.EntityTask, model.EntityKnowledge, model.EntityUnclassified:
		default:
			return model.Entry{}, fmt.Errorf("%w: unknown entity %q", model.ErrValidation, *p.Entity)
		}
	}

	entries, err := s.projects.Project(project)
	if err != nil {
		return model.Entry{}, err
	}
	out, err := entries.UpdateByKey(ctx, key, func(e *model.Entry) error {
		if p.Content != nil {
			e.Content = *p.Content
		}
		if p.TaskStatus != nil {
			e.TaskStatus = *p.TaskStatus
		}
		if p.Entity != nil {
			e.Entity = *p.Entity
			if e.Entity == model.EntityTask && e.TaskStatus == "" {
				e.TaskStatus = s.defaultTaskStatus(ctx)
			}
		}
		if p.Title != nil {
			e.Title = *p.Title
		}
		return nil
	})
	if err != nil {
		s.record(ctx, "patch", "error", err.Error(), start)
		return model.Entry{}, err
	}
	s.record(ctx, "patch", "ok", fmt.Sprintf("%s %s", project, out.Timestamp), start)
	return out, nil
}

// Delete removes the entry and any asset file it referenced.
func (s *EntryService) Delete(ctx context.Context, project, key string) (model.Entry, error) {
	start := time.Now()
	entries, err := s.projects.Project(project)
	if err != nil {
		return model.Entry{}, err
	}
	removed, err := entries.DeleteByKey(ctx, key)
	if err != nil {
		s.record(ctx, "delete", "error", err.Error(), start)
		return model.Entry{}, err
	}
	if rel := removed.AssetPath(); rel != "" {
		if err := s.removeAsset(project, rel); err != nil {
			s.log.Warn().Err(err).Str("asset", rel).Msg("asset cleanup failed")
		}
	}
	s.record(ctx, "delete", "ok", fmt.Sprintf("%s %s", project, removed.Timestamp), start)
	return removed, nil
}

// Distinct returns the live distinct value sets the viewer uses to
// populate its filter dropdowns.
func (s *EntryService) Distinct(ctx context.Context, project string) (types, sources, entities []string, err error) {
	entries, err := s.loadAll(ctx, project)
	if err != nil {
		return nil, nil, nil, err
	}
	types = distinct(entries, func(e model.Entry) string { return e.Type })
	sources = distinct(entries, func(e model.Entry) string { return e.Source })
	entities = distinct(entries, func(e model.Entry) string { return e.Entity })
	return types, sources, entities, nil
}

// Projects lists the project folders present on disk.
func (s *EntryService) Projects(ctx context.Context) ([]string, error) {
	return s.projects.List(ctx)
}

// TaskStatusInUse reports whether any entry in any project references
// the given kanban column id.
func (s *EntryService) TaskStatusInUse(ctx context.Context, columnID string) (bool, error) {
	names, err := s.projects.List(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		entries, err := s.loadAll(ctx, name)
		if err != nil {
			return false, err
		}
		for _, e := range entries {
			if e.TaskStatus == columnID {
				return true, nil
			}
		}
	}
	return false, nil
}

// --- internals ---

func (s *EntryService) loadAll(ctx context.Context, project string) ([]model.Entry, error) {
	entries, err := s.projects.Project(project)
	if err != nil {
		return nil, err
	}
	return entries.LoadAll(ctx)
}

func (s *EntryService) defaultTaskStatus(ctx context.Context) string {
	cols, err := s.columns.List(ctx)
	if err != nil || len(cols) == 0 {
		return model.DefaultColumns()[0].ID
	}
	return cols[0].ID
}

func (s *EntryService) checkColumn(ctx context.Context, id string) error {
	cols, err := s.columns.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range cols {
		if c.ID == id {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown task status %q", model.ErrValidation, id)
}

func (s *EntryService) writeAsset(project string, e model.Entry, asset *AssetPayload) (rel, abs string, err error) {
	dir, err := s.projects.AssetsDir(project)
	if err != nil {
		return "", "", err
	}
	name := assetName(e, asset)
	if err := validate.AssetFilename(name); err != nil {
		return "", "", err
	}
	abs = filepath.Join(dir, name)
	if err := os.WriteFile(abs, asset.Data, 0o644); err != nil {
		return "", "", err
	}
	return filepath.ToSlash(filepath.Join("assets", name)), abs, nil
}

func (s *EntryService) removeAsset(project, rel string) error {
	dir, err := s.projects.AssetsDir(project)
	if err != nil {
		return err
	}
	root := filepath.Dir(dir) // the project folder
	abs, err := validate.WithinRoot(root, rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// assetName builds a collision-free filename from the capture timestamp
// and a short random suffix, keeping the original extension.
func assetName(e model.Entry, asset *AssetPayload) string {
	ext := filepath.Ext(asset.Filename)
	if ext == "" {
		switch asset.MimeType {
		case "image/png":
			ext = ".png"
		case "image/jpeg":
			ext = ".jpg"
		case "application/pdf":
			ext = ".pdf"
		default:
			ext = ".bin"
		}
	}
	ts := e.Timestamp
	if ts == "" {
		ts = model.FormatTimestamp(time.Now())
	}
	suffix := strings.Split(uuid.New().String(), "-")[0]
	return model.ToFileSafe(ts) + "-" + suffix + ext
}

func (s *EntryService) record(ctx context.Context, op, status, details string, start time.Time) {
	if s.logs == nil {
		return
	}
	rec := model.LogRecord{
		Service:    "entries." + op,
		Status:     status,
		DurationMs: time.Since(start).Milliseconds(),
		Details:    details,
	}
	if err := s.logs.Append(ctx, rec); err != nil {
		s.log.Warn().Err(err).Msg("activity log append failed")
	}
}

func matches(e model.Entry, f model.QueryFilter) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if f.Entity != "" && e.Entity != f.Entity {
		return false
	}
	if f.Topic != "" && !containsString(e.Topics, f.Topic) {
		return false
	}
	if f.Person != "" && !containsString(e.People, f.Person) {
		return false
	}
	if f.DateFrom != "" && e.Timestamp < f.DateFrom {
		return false
	}
	if f.DateTo != "" && e.Timestamp > endOfDay(f.DateTo) {
		return false
	}
	if f.FreeText != "" && !matchesFreeText(e, f.FreeText) {
		return false
	}
	return true
}

// endOfDay widens a date-only bound to the last second of that day so
// DateTo stays inclusive.
func endOfDay(date string) string {
	if len(date) == len("2006-01-02") {
		return date + " 23:59:59"
	}
	return date
}

func matchesFreeText(e model.Entry, q string) bool {
	q = strings.ToLower(q)
	fields := []string{e.Title, e.Content, e.Type, e.Source, e.URL, e.Entity}
	fields = append(fields, e.Topics...)
	fields = append(fields, e.People...)
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func distinct(entries []model.Entry, get func(model.Entry) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		v := get(e)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
