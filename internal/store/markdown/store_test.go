package markdown

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jotlog/jotlog/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "knowledge.md"), zerolog.Nop())
}

func TestAppendNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, ts := range []string{"2026-08-24 10:00:00", "2026-08-24 11:00:00", "2026-08-24 12:00:00"} {
		_, err := s.Append(ctx, model.Entry{Timestamp: ts, Type: "idea", Content: "entry"})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Timestamp != "2026-08-24 12:00:00" {
		t.Errorf("newest entry not first: %s", entries[0].Timestamp)
	}
	if entries[2].Timestamp != "2026-08-24 10:00:00" {
		t.Errorf("oldest entry not last: %s", entries[2].Timestamp)
	}
}

func TestAppendAssignsTimestampAndEntity(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time {
		return time.Date(2026, 8, 24, 10, 15, 0, 0, time.Local)
	}

	out, err := s.Append(context.Background(), model.Entry{Type: "snippet", Content: "x"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if out.Timestamp != "2026-08-24 10:15:00" {
		t.Errorf("timestamp: got %q", out.Timestamp)
	}
	if out.Entity != model.EntityUnclassified {
		t.Errorf("entity: got %q want %q", out.Entity, model.EntityUnclassified)
	}
}

func TestAppendBumpsCollidingTimestamps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var keys []string
	for i := 0; i < 3; i++ {
		out, err := s.Append(ctx, model.Entry{Timestamp: "2026-08-24 10:15:00", Type: "idea"})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		keys = append(keys, out.Timestamp)
	}

	want := []string{"2026-08-24 10:15:00", "2026-08-24 10:15:01", "2026-08-24 10:15:02"}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: got %q want %q", i, keys[i], want[i])
		}
	}
}

func TestAppendRequiresType(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Append(context.Background(), model.Entry{Content: "typeless"})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestAppendRejectsMultilineSingleLineFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, model.Entry{Timestamp: "2026-08-24 10:00:00", Type: "para", Content: "kept"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	bad := []model.Entry{
		{Timestamp: "2026-08-24 11:00:00", Type: "link", Source: "example.com\ninjected line"},
		{Timestamp: "2026-08-24 11:00:00", Type: "link", Title: "evil\n## [fake] 2020-01-01 00:00:00"},
	}
	for i, e := range bad {
		if _, err := s.Append(ctx, e); !errors.Is(err, model.ErrValidation) {
			t.Fatalf("append %d: want ErrValidation, got %v", i, err)
		}
	}

	entries, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(entries) != 1 || entries[0].Content != "kept" {
		t.Fatalf("file damaged by rejected append: %+v", entries)
	}
}

func TestUpdateByKeyRejectsMultilineField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, model.Entry{Timestamp: "2026-08-24 10:00:00", Type: "para", Content: "v1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	before, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.UpdateByKey(ctx, "2026-08-24 10:00:00", func(e *model.Entry) error {
		e.Title = "two\nlines"
		return nil
	})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}

	after, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("rejected update modified the file")
	}
}

func TestUpdateByKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, model.Entry{Timestamp: "2026-08-24 10:00:00", Type: "para", Content: "old"}); err != nil {
		t.Fatal(err)
	}

	out, err := s.UpdateByKey(ctx, "2026-08-24 10:00:00", func(e *model.Entry) error {
		e.Content = "new"
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateByKey: %v", err)
	}
	if out.Content != "new" {
		t.Errorf("content: got %q", out.Content)
	}

	entries, _ := s.LoadAll(ctx)
	if entries[0].Content != "new" {
		t.Errorf("persisted content: got %q", entries[0].Content)
	}
}

func TestUpdateByKeyAcceptsFileSafeForm(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, model.Entry{Timestamp: "2026-08-24 10:00:00", Type: "para", Content: "old"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpdateByKey(ctx, "2026-08-24_10-00-00", func(e *model.Entry) error {
		e.Content = "patched"
		return nil
	}); err != nil {
		t.Fatalf("file-safe key rejected: %v", err)
	}
}

func TestUpdateByKeyCannotMoveEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, model.Entry{Timestamp: "2026-08-24 10:00:00", Type: "para"}); err != nil {
		t.Fatal(err)
	}
	out, err := s.UpdateByKey(ctx, "2026-08-24 10:00:00", func(e *model.Entry) error {
		e.Timestamp = "1999-01-01 00:00:00"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Timestamp != "2026-08-24 10:00:00" {
		t.Fatalf("identity changed by mutator: %q", out.Timestamp)
	}
}

func TestUpdateByKeyNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpdateByKey(context.Background(), "2000-01-01 00:00:00", func(e *model.Entry) error { return nil })
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUpdateIsolation(t *testing.T) {
	// A malformed neighbor block and a hand-written header must survive an
	// update of a different entry byte for byte.
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.md")
	malformed := "## [link] not-a-timestamp\n  source:: broken\n"
	content := "# My Notes\n\n" +
		"## [para] 2026-08-24 11:00:00\n  content line\n\n" +
		malformed + "\n" +
		"## [para] 2026-08-24 09:00:00\n  old text\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, zerolog.Nop())
	_, err := s.UpdateByKey(context.Background(), "2026-08-24 09:00:00", func(e *model.Entry) error {
		e.Content = "new text"
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateByKey: %v", err)
	}

	data, _ := os.ReadFile(path)
	got := string(data)
	if !strings.HasPrefix(got, "# My Notes\n") {
		t.Error("header not preserved")
	}
	if !strings.Contains(got, malformed) {
		t.Error("malformed block was rewritten")
	}
	if !strings.Contains(got, "  content line\n") {
		t.Error("untouched block changed")
	}
	if !strings.Contains(got, "  new text\n") {
		t.Error("update not applied")
	}
}

func TestUpdateIdempotentSkipsWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, model.Entry{Timestamp: "2026-08-24 10:00:00", Type: "para", Content: "same"}); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	fiBefore, _ := os.Stat(s.Path())

	if _, err := s.UpdateByKey(ctx, "2026-08-24 10:00:00", func(e *model.Entry) error {
		e.Content = "same"
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	after, _ := os.ReadFile(s.Path())
	fiAfter, _ := os.Stat(s.Path())
	if string(before) != string(after) {
		t.Error("file bytes changed on no-op update")
	}
	if !fiBefore.ModTime().Equal(fiAfter.ModTime()) {
		t.Error("file rewritten on no-op update")
	}
}

func TestDeleteByKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, ts := range []string{"2026-08-24 10:00:00", "2026-08-24 11:00:00"} {
		if _, err := s.Append(ctx, model.Entry{Timestamp: ts, Type: "idea", Screenshot: "assets/shot.png"}); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.DeleteByKey(ctx, "2026-08-24 10:00:00")
	if err != nil {
		t.Fatalf("DeleteByKey: %v", err)
	}
	if removed.Screenshot != "assets/shot.png" {
		t.Errorf("removed entry incomplete: %+v", removed)
	}

	entries, _ := s.LoadAll(ctx)
	if len(entries) != 1 || entries[0].Timestamp != "2026-08-24 11:00:00" {
		t.Fatalf("wrong survivor set: %+v", entries)
	}

	if _, err := s.DeleteByKey(ctx, "2026-08-24 10:00:00"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestLoadAllSkipsMalformedBlocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge.md")
	content := "## [para] 2026-08-24 11:00:00\n  good\n\n" +
		"## [link] broken marker\n\n" +
		"## [para] 2026-08-24 09:00:00\n  also good\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, zerolog.Nop())
	entries, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
}

func TestLoadAllMissingFile(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d entries from missing file", len(entries))
	}
}

func TestExternalEditSeenAfterInvalidate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, model.Entry{Timestamp: "2026-08-24 10:00:00", Type: "para", Content: "v1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadAll(ctx); err != nil {
		t.Fatal(err)
	}

	// Simulate an editor rewriting the file out of band.
	edited := "## [para] 2026-08-24 10:00:00\n  v2\n"
	if err := os.WriteFile(s.Path(), []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}
	s.Invalidate()

	entries, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Content != "v2" {
		t.Fatalf("external edit not observed: %+v", entries)
	}
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	done := make(chan error, 20)
	for i := 0; i < 10; i++ {
		ts := model.FormatTimestamp(time.Date(2026, 8, 24, 10, 0, i, 0, time.Local))
		go func(ts string) {
			_, err := s.Append(ctx, model.Entry{Timestamp: ts, Type: "idea"})
			done <- err
		}(ts)
		go func() {
			_, err := s.LoadAll(ctx)
			done <- err
		}()
	}
	for i := 0; i < 20; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent op: %v", err)
		}
	}

	entries, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 10 {
		t.Fatalf("got %d entries, want 10", len(entries))
	}
}
