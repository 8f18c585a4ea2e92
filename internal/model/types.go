package model

// Entity classification values. Entries start unclassified and are
// promoted by the asynchronous classifier.
const (
	EntityProject      = "project"
	EntityTask         = "task"
	EntityKnowledge    = "knowledge"
	EntityUnclassified = "unclassified"
)

// Well-known entry types. The set is open: unknown types round-trip
// through the codec unchanged.
const (
	TypeLink       = "link"
	TypeSnippet    = "snippet"
	TypePara       = "para"
	TypeIdea       = "idea"
	TypeScreenshot = "screenshot"
	TypeFile       = "file"
	TypeVideo      = "video"
)

// NoSummaryTypes lists entry types that never receive an AI summary.
var NoSummaryTypes = map[string]bool{
	TypeVideo: true,
}

// TabGroup carries browser tab-group metadata through unmodified.
type TabGroup struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Entry is one logged knowledge item, keyed by its display timestamp.
type Entry struct {
	Timestamp    string    `json:"timestamp"`
	Type         string    `json:"type"`
	Entity       string    `json:"entity"`
	Source       string    `json:"source,omitempty"`
	Title        string    `json:"title,omitempty"`
	URL          string    `json:"url,omitempty"`
	Content      string    `json:"content,omitempty"`
	SelectedText string    `json:"selectedText,omitempty"`
	Screenshot   string    `json:"screenshot,omitempty"`
	File         string    `json:"file,omitempty"`
	TabGroup     *TabGroup `json:"tabGroup,omitempty"`
	Topics       []string  `json:"topics,omitempty"`
	People       []string  `json:"people,omitempty"`
	TaskStatus   string    `json:"taskStatus,omitempty"`
	AISummary    string    `json:"aiSummary,omitempty"`

	// Optional page metadata, passed through without validation.
	Description   string `json:"description,omitempty"`
	OGImage       string `json:"ogImage,omitempty"`
	Author        string `json:"author,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
	ReadingTime   string `json:"readingTime,omitempty"`
}

// Key returns the filename-safe form of the entry timestamp, used in
// URLs and asset names.
func (e *Entry) Key() string { return ToFileSafe(e.Timestamp) }

// AssetPath returns the relative asset path referenced by the entry,
// empty when the entry carries no asset.
func (e *Entry) AssetPath() string {
	if e.Screenshot != "" {
		return e.Screenshot
	}
	return e.File
}

// KanbanColumn is a named status bucket for task entries. ID is the
// stable key stored in Entry.TaskStatus.
type KanbanColumn struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultColumns returns the three columns that always exist and cannot
// be deleted. The first column id is the default task status.
func DefaultColumns() []KanbanColumn {
	return []KanbanColumn{
		{ID: "not-started", Name: "Not Started", Color: "#9e9e9e"},
		{ID: "in-progress", Name: "In Progress", Color: "#2196f3"},
		{ID: "done", Name: "Done", Color: "#4caf50"},
	}
}

// IsDefaultColumn reports whether id names one of the undeletable columns.
func IsDefaultColumn(id string) bool {
	switch id {
	case "not-started", "in-progress", "done":
		return true
	}
	return false
}

// LogRecord is one activity-log row. Append-only, bounded retention.
type LogRecord struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	Service    string `json:"service"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Details    string `json:"details,omitempty"`
	Request    string `json:"request,omitempty"`
	Response   string `json:"response,omitempty"`
}

// QueryFilter holds the recognized filter options for listing entries.
// Every field is optional; present conditions are ANDed.
type QueryFilter struct {
	Type     string
	Source   string
	Entity   string
	Topic    string
	Person   string
	DateFrom string
	DateTo   string
	FreeText string
}

// IsZero reports whether no filter condition is set.
func (f QueryFilter) IsZero() bool {
	return f == QueryFilter{}
}
