// Package enrich applies asynchronous best-effort enrichments (grammar
// correction, AI summary, entity/topic/person classification) to
// existing entries. The network round trip to the AI provider happens
// entirely outside the file lock; only the final read-modify-write goes
// through the entry store.
package enrich

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jotlog/jotlog/internal/model"
	"github.com/jotlog/jotlog/internal/store"
)

// Updater applies enrichment results to entries by timestamp key
// without disturbing unrelated entries or reordering the file.
type Updater struct {
	projects store.Projects
	log      zerolog.Logger
}

// NewUpdater wires an updater over the project stores.
func NewUpdater(projects store.Projects, log zerolog.Logger) *Updater {
	return &Updater{projects: projects, log: log}
}

// ApplyGrammarFix replaces only the content field. A byte-identical
// correction is a no-op, not an error: the store skips the rewrite when
// the re-encoded block matches the stored bytes.
func (u *Updater) ApplyGrammarFix(ctx context.Context, project, timestamp, corrected string) error {
	entries, err := u.projects.Project(project)
	if err != nil {
		return err
	}
	_, err = entries.UpdateByKey(ctx, timestamp, func(e *model.Entry) error {
		e.Content = corrected
		return nil
	})
	return err
}

// ApplyClassification overwrites entity, topics and people with the
// canonical values the classifier produced. Matching against existing
// tags is the classifier's job, not the store's. Promoting an entry to
// a task gives it the default kanban status.
func (u *Updater) ApplyClassification(ctx context.Context, project, timestamp, entity string, topics, people []string) error {
	entries, err := u.projects.Project(project)
	if err != nil {
		return err
	}
	_, err = entries.UpdateByKey(ctx, timestamp, func(e *model.Entry) error {
		if entity != "" {
			e.Entity = entity
		}
		if topics != nil {
			e.Topics = topics
		}
		if people != nil {
			e.People = people
		}
		if e.Entity == model.EntityTask && e.TaskStatus == "" {
			e.TaskStatus = model.DefaultColumns()[0].ID
		}
		return nil
	})
	return err
}

// ApplySummary sets the AI summary. Entries whose type is in the
// no-summary set are skipped with a log line, never an error.
// Re-applying the same payload leaves the file byte-identical.
func (u *Updater) ApplySummary(ctx context.Context, project, timestamp, summary string) (applied bool, err error) {
	entries, err := u.projects.Project(project)
	if err != nil {
		return false, err
	}
	skipped := false
	_, err = entries.UpdateByKey(ctx, timestamp, func(e *model.Entry) error {
		if model.NoSummaryTypes[e.Type] {
			skipped = true
			return nil
		}
		e.AISummary = summary
		return nil
	})
	if err != nil {
		return false, err
	}
	if skipped {
		u.log.Info().Str("project", project).Str("timestamp", timestamp).
			Msg("summary skipped for no-summary entry type")
		return false, nil
	}
	return true, nil
}

// getEntry fetches one entry for the enrichment runner.
func (u *Updater) getEntry(ctx context.Context, project, timestamp string) (model.Entry, error) {
	entries, err := u.projects.Project(project)
	if err != nil {
		return model.Entry{}, err
	}
	all, err := entries.LoadAll(ctx)
	if err != nil {
		return model.Entry{}, err
	}
	ts := model.FromFileSafe(timestamp)
	for _, e := range all {
		if e.Timestamp == ts {
			return e, nil
		}
	}
	return model.Entry{}, model.ErrNotFound
}
