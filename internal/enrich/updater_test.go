package enrich

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jotlog/jotlog/internal/model"
	"github.com/jotlog/jotlog/internal/store/markdown"
)

func newTestUpdater(t *testing.T) (*Updater, *markdown.Manager) {
	t.Helper()
	manager := markdown.NewManager(t.TempDir(), zerolog.Nop())
	return NewUpdater(manager, zerolog.Nop()), manager
}

func seedEntry(t *testing.T, manager *markdown.Manager, e model.Entry) model.Entry {
	t.Helper()
	entries, err := manager.Project("knowledge")
	if err != nil {
		t.Fatal(err)
	}
	out, err := entries.Append(context.Background(), e)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func loadEntry(t *testing.T, manager *markdown.Manager, ts string) model.Entry {
	t.Helper()
	entries, err := manager.Project("knowledge")
	if err != nil {
		t.Fatal(err)
	}
	all, err := entries.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range all {
		if e.Timestamp == ts {
			return e
		}
	}
	t.Fatalf("entry %q not found", ts)
	return model.Entry{}
}

func TestApplySummary(t *testing.T) {
	u, manager := newTestUpdater(t)
	e := seedEntry(t, manager, model.Entry{Timestamp: "2026-08-24 10:00:00", Type: "link", Content: "long article"})

	applied, err := u.ApplySummary(context.Background(), "knowledge", e.Timestamp, "Short summary.")
	if err != nil {
		t.Fatalf("ApplySummary: %v", err)
	}
	if !applied {
		t.Fatal("summary not applied")
	}
	if got := loadEntry(t, manager, e.Timestamp); got.AISummary != "Short summary." {
		t.Fatalf("summary not persisted: %+v", got)
	}
}

func TestApplySummarySkipsVideo(t *testing.T) {
	u, manager := newTestUpdater(t)
	e := seedEntry(t, manager, model.Entry{Timestamp: "2026-08-24 10:00:00", Type: model.TypeVideo, Content: "clip"})

	entries, _ := manager.Project("knowledge")
	s := entries.(*markdown.Store)
	before, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}

	applied, err := u.ApplySummary(context.Background(), "knowledge", e.Timestamp, "should not land")
	if err != nil {
		t.Fatalf("ApplySummary on video must not error: %v", err)
	}
	if applied {
		t.Fatal("video entry reported as summarized")
	}

	after, _ := os.ReadFile(s.Path())
	if string(before) != string(after) {
		t.Fatal("video skip still rewrote the file")
	}
	if got := loadEntry(t, manager, e.Timestamp); got.AISummary != "" {
		t.Fatalf("summary leaked onto video entry: %+v", got)
	}
}

func TestApplySummaryIdempotent(t *testing.T) {
	u, manager := newTestUpdater(t)
	e := seedEntry(t, manager, model.Entry{Timestamp: "2026-08-24 10:00:00", Type: "link", Content: "x"})
	ctx := context.Background()

	if _, err := u.ApplySummary(ctx, "knowledge", e.Timestamp, "Same."); err != nil {
		t.Fatal(err)
	}
	entries, _ := manager.Project("knowledge")
	s := entries.(*markdown.Store)
	fiBefore, _ := os.Stat(s.Path())

	if _, err := u.ApplySummary(ctx, "knowledge", e.Timestamp, "Same."); err != nil {
		t.Fatal(err)
	}
	fiAfter, _ := os.Stat(s.Path())
	if !fiBefore.ModTime().Equal(fiAfter.ModTime()) {
		t.Fatal("re-applying identical summary rewrote the file")
	}
}

func TestApplyGrammarFix(t *testing.T) {
	u, manager := newTestUpdater(t)
	e := seedEntry(t, manager, model.Entry{
		Timestamp: "2026-08-24 10:00:00", Type: "para",
		Content: "teh fix", Title: "Keep me", Topics: []string{"go"},
	})

	if err := u.ApplyGrammarFix(context.Background(), "knowledge", e.Timestamp, "the fix"); err != nil {
		t.Fatalf("ApplyGrammarFix: %v", err)
	}
	got := loadEntry(t, manager, e.Timestamp)
	if got.Content != "the fix" {
		t.Errorf("content: %q", got.Content)
	}
	if got.Title != "Keep me" || len(got.Topics) != 1 {
		t.Errorf("unrelated fields disturbed: %+v", got)
	}
}

func TestApplyClassification(t *testing.T) {
	u, manager := newTestUpdater(t)
	e := seedEntry(t, manager, model.Entry{Timestamp: "2026-08-24 10:00:00", Type: "para", Content: "ship the release"})

	err := u.ApplyClassification(context.Background(), "knowledge", e.Timestamp,
		model.EntityTask, []string{"release"}, []string{"Grace"})
	if err != nil {
		t.Fatalf("ApplyClassification: %v", err)
	}
	got := loadEntry(t, manager, e.Timestamp)
	if got.Entity != model.EntityTask {
		t.Errorf("entity: %q", got.Entity)
	}
	if got.TaskStatus != model.DefaultColumns()[0].ID {
		t.Errorf("task promotion missing status: %q", got.TaskStatus)
	}
	if len(got.Topics) != 1 || got.Topics[0] != "release" {
		t.Errorf("topics: %v", got.Topics)
	}
	if len(got.People) != 1 || got.People[0] != "Grace" {
		t.Errorf("people: %v", got.People)
	}
}

func TestApplyClassificationKeepsFieldsOnEmptyResult(t *testing.T) {
	u, manager := newTestUpdater(t)
	e := seedEntry(t, manager, model.Entry{
		Timestamp: "2026-08-24 10:00:00", Type: "para",
		Entity: model.EntityKnowledge, Topics: []string{"keep"},
	})

	if err := u.ApplyClassification(context.Background(), "knowledge", e.Timestamp, "", nil, nil); err != nil {
		t.Fatal(err)
	}
	got := loadEntry(t, manager, e.Timestamp)
	if got.Entity != model.EntityKnowledge || len(got.Topics) != 1 {
		t.Fatalf("empty classification clobbered fields: %+v", got)
	}
}
