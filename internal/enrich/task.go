package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jotlog/jotlog/internal/model"
	"github.com/jotlog/jotlog/internal/store"
)

// Task states. A task is Pending while the AI call is in flight and
// settles exactly once.
const (
	StatusPending  = "pending"
	StatusApplied  = "applied"
	StatusFailed   = "failed"
	StatusTimedOut = "timed_out"
	StatusSkipped  = "skipped"
)

// Enrichment kinds accepted by the runner.
const (
	KindGrammar  = "grammar"
	KindSummary  = "summary"
	KindClassify = "classify"
)

// taskRetention is how long a settled task stays pollable before it is
// pruned from the in-memory map.
const taskRetention = time.Hour

// Task tracks one in-flight or settled enrichment.
type Task struct {
	ID        string `json:"id"`
	Project   string `json:"project"`
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`

	settled time.Time
}

// Runner launches enrichments in the background with a bounded
// deadline. The entry is read and the result written under the file
// lock; the network call in between holds no lock, so reads and writes
// proceed while the provider thinks.
type Runner struct {
	updater   *Updater
	client    Client
	names     NameSource
	logs      store.Logs
	timeout   time.Duration
	retention time.Duration
	log       zerolog.Logger

	mu    sync.Mutex
	tasks map[string]*Task
}

// NameSource supplies the known topic and people lists handed to the
// classifier so it prefers existing tags.
type NameSource interface {
	Topics(ctx context.Context) ([]string, error)
	People(ctx context.Context) ([]string, error)
}

// NewRunner wires the enrichment runner. logs may be nil in tests.
func NewRunner(updater *Updater, client Client, names NameSource, logs store.Logs, timeout time.Duration, log zerolog.Logger) *Runner {
	return &Runner{
		updater:   updater,
		client:    client,
		names:     names,
		logs:      logs,
		timeout:   timeout,
		retention: taskRetention,
		log:       log,
		tasks:     make(map[string]*Task),
	}
}

// Launch starts one enrichment and returns its task immediately. The
// entry is validated up front so a bad key fails synchronously.
func (r *Runner) Launch(ctx context.Context, project, timestamp, kind string) (Task, error) {
	switch kind {
	case KindGrammar, KindSummary, KindClassify:
	default:
		return Task{}, model.ErrValidation
	}

	entry, err := r.updater.getEntry(ctx, project, timestamp)
	if err != nil {
		return Task{}, err
	}

	t := r.register(project, timestamp, kind)
	go r.run(t, entry)
	return *t, nil
}

// Get returns a task by ID.
func (r *Runner) Get(id string) (Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

func (r *Runner) register(project, timestamp, kind string) *Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, old := range r.tasks {
		if old.Status != StatusPending && time.Since(old.settled) > r.retention {
			delete(r.tasks, id)
		}
	}
	t := &Task{
		ID:        uuid.New().String(),
		Project:   project,
		Timestamp: timestamp,
		Kind:      kind,
		Status:    StatusPending,
	}
	r.tasks[t.ID] = t
	return t
}

func (r *Runner) run(t *Task, entry model.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	started := time.Now()
	status, err := r.enrich(ctx, t, entry)

	r.mu.Lock()
	t.Status = status
	t.settled = time.Now()
	if err != nil {
		t.Error = err.Error()
	}
	done := *t
	r.mu.Unlock()

	if err != nil {
		r.log.Warn().Err(err).
			Str("project", t.Project).Str("timestamp", t.Timestamp).
			Str("kind", t.Kind).Str("status", status).
			Msg("enrichment did not apply")
	}
	r.record(done, entry, time.Since(started), err)
}

func (r *Runner) enrich(ctx context.Context, t *Task, entry model.Entry) (string, error) {
	var err error
	switch t.Kind {
	case KindGrammar:
		var fixed string
		fixed, err = r.client.FixGrammar(ctx, entry.Content)
		if err == nil {
			err = r.updater.ApplyGrammarFix(ctx, t.Project, t.Timestamp, fixed)
		}
	case KindSummary:
		if model.NoSummaryTypes[entry.Type] {
			return StatusSkipped, nil
		}
		var summary string
		summary, err = r.client.Summarize(ctx, entry.Content)
		if err == nil {
			var applied bool
			applied, err = r.updater.ApplySummary(ctx, t.Project, t.Timestamp, summary)
			if err == nil && !applied {
				return StatusSkipped, nil
			}
		}
	case KindClassify:
		var topics, people []string
		if r.names != nil {
			if topics, err = r.names.Topics(ctx); err != nil {
				break
			}
			if people, err = r.names.People(ctx); err != nil {
				break
			}
		}
		var c Classification
		c, err = r.client.Classify(ctx, enrichText(entry), topics, people)
		if err == nil {
			err = r.updater.ApplyClassification(ctx, t.Project, t.Timestamp, c.Entity, c.Topics, c.People)
		}
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return StatusTimedOut, err
		}
		return StatusFailed, err
	}
	return StatusApplied, nil
}

// enrichText gives the classifier title and content together; a bare
// link entry often has no content at all.
func enrichText(e model.Entry) string {
	switch {
	case e.Title != "" && e.Content != "":
		return e.Title + "\n\n" + e.Content
	case e.Title != "":
		return e.Title
	default:
		return e.Content
	}
}

func (r *Runner) record(t Task, entry model.Entry, took time.Duration, err error) {
	if r.logs == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	req, _ := json.Marshal(map[string]string{
		"project":   t.Project,
		"timestamp": t.Timestamp,
		"kind":      t.Kind,
		"type":      entry.Type,
	})
	resp, _ := json.Marshal(map[string]string{
		"status": t.Status,
		"error":  t.Error,
	})
	rec := model.LogRecord{
		Service:    "enrich." + t.Kind,
		Status:     status,
		DurationMs: took.Milliseconds(),
		Details:    t.Status,
		Request:    string(req),
		Response:   string(resp),
	}
	if aerr := r.logs.Append(context.Background(), rec); aerr != nil {
		r.log.Warn().Err(aerr).Msg("activity log append failed")
	}
}
