package codec

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jotlog/jotlog/internal/model"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := model.Entry{
		Timestamp:     "2026-08-24 10:15:00",
		Type:          "link",
		Entity:        "knowledge",
		Source:        "chrome-extension",
		Title:         "Go Concurrency Patterns",
		URL:           "https://go.dev/talks/2012/concurrency.slide",
		Content:       "Pipelines and cancellation.\n\nSecond paragraph.",
		SelectedText:  "Do not communicate by sharing memory;\nshare memory by communicating.",
		TabGroup:      &model.TabGroup{Name: "research", Color: "blue"},
		Topics:        []string{"go", "concurrency"},
		People:        []string{"Rob Pike"},
		AISummary:     "A talk about concurrency primitives.",
		Description:   "Slide deck",
		OGImage:       "https://go.dev/og.png",
		Author:        "Rob Pike",
		PublishedDate: "2012-07-02",
		ReadingTime:   "15 min",
	}

	out, err := Decode(Encode(e))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(e, out) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", out, e)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	e := model.Entry{
		Timestamp: "2026-08-24 10:15:00",
		Type:      "snippet",
		Entity:    "task",
		Content:   "do the thing",
	}
	if string(Encode(e)) != string(Encode(e)) {
		t.Fatal("two encodings of the same entry differ")
	}
}

func TestRoundTripMinimalEntry(t *testing.T) {
	e := model.Entry{Timestamp: "2026-01-02 03:04:05", Type: "idea"}
	out, err := Decode(Encode(e))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(e, out) {
		t.Fatalf("round trip mismatch: got %+v", out)
	}
}

func TestValidateRejectsEmbeddedNewlines(t *testing.T) {
	base := model.Entry{Timestamp: "2026-08-24 10:15:00", Type: "para"}
	cases := []struct {
		name   string
		mutate func(*model.Entry)
	}{
		{"title", func(e *model.Entry) { e.Title = "evil\n## [fake] 2020-01-01 00:00:00" }},
		{"source", func(e *model.Entry) { e.Source = "example.com\ninjected line" }},
		{"url", func(e *model.Entry) { e.URL = "https://a.example\nhttps://b.example" }},
		{"entity", func(e *model.Entry) { e.Entity = "task\nknowledge" }},
		{"status", func(e *model.Entry) { e.TaskStatus = "done\nnot-started" }},
		{"topic", func(e *model.Entry) { e.Topics = []string{"go", "two\nlines"} }},
		{"person", func(e *model.Entry) { e.People = []string{"A\nB"} }},
		{"tabgroup", func(e *model.Entry) { e.TabGroup = &model.TabGroup{Name: "a\nb"} }},
		{"author", func(e *model.Entry) { e.Author = "a\nb" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := base
			tc.mutate(&e)
			if err := Validate(e); !errors.Is(err, model.ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
		})
	}
}

func TestValidateAllowsMultilineBodyFields(t *testing.T) {
	e := model.Entry{
		Timestamp:    "2026-08-24 10:15:00",
		Type:         "snippet",
		Content:      "first\n\nsecond",
		SelectedText: "quoted\nacross lines",
		AISummary:    "summary\nacross lines",
	}
	if err := Validate(e); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	out, err := Decode(Encode(e))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(e, out) {
		t.Fatalf("round trip mismatch: got %+v", out)
	}
}

func TestContentResemblingMetadataIsEscaped(t *testing.T) {
	cases := []string{
		"source:: fake",
		"status:: done",
		`\source:: already escaped once`,
		"quote::",
		"topic:: go",
	}
	for _, content := range cases {
		e := model.Entry{Timestamp: "2026-08-24 10:15:00", Type: "para", Content: content}
		out, err := Decode(Encode(e))
		if err != nil {
			t.Fatalf("Decode(%q): %v", content, err)
		}
		if out.Content != content {
			t.Errorf("content %q round-tripped as %q", content, out.Content)
		}
		if out.Source != "" || out.TaskStatus != "" || out.Topics != nil || out.SelectedText != "" {
			t.Errorf("content %q leaked into metadata: %+v", content, out)
		}
	}
}

func TestUnknownMetadataKeyStaysContent(t *testing.T) {
	e := model.Entry{Timestamp: "2026-08-24 10:15:00", Type: "para", Content: "rating:: 5"}
	out, err := Decode(Encode(e))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Content != "rating:: 5" {
		t.Fatalf("unknown key mangled: %q", out.Content)
	}
}

func TestTitleAndURLEscaping(t *testing.T) {
	e := model.Entry{
		Timestamp: "2026-08-24 10:15:00",
		Type:      "link",
		Title:     `weird ] title [with\ brackets`,
		URL:       `https://example.com/a(b)c`,
	}
	out, err := Decode(Encode(e))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Title != e.Title {
		t.Errorf("title: got %q want %q", out.Title, e.Title)
	}
	if out.URL != e.URL {
		t.Errorf("url: got %q want %q", out.URL, e.URL)
	}
}

func TestMultilineContentWithEmptyLines(t *testing.T) {
	e := model.Entry{
		Timestamp: "2026-08-24 10:15:00",
		Type:      "para",
		Content:   "first\n\nthird",
	}
	out, err := Decode(Encode(e))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Content != e.Content {
		t.Fatalf("content: got %q want %q", out.Content, e.Content)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"no marker":          "just text\n",
		"missing type":       "## [] 2026-08-24 10:15:00\n",
		"bad timestamp":      "## [link] yesterday\n",
		"missing bracket":    "## [link 2026-08-24 10:15:00\n",
		"unindented body":    "## [para] 2026-08-24 10:15:00\nnot indented\n",
		"malformed tabgroup": "## [link] 2026-08-24 10:15:00\n  tabgroup:: {not json\n",
		"malformed link":     "## [link] 2026-08-24 10:15:00\n[title](no close\n",
	}
	for name, block := range cases {
		_, err := Decode([]byte(block))
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		var pe *model.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%s: want *model.ParseError, got %T", name, err)
		}
		if !errors.Is(err, model.ErrValidation) {
			t.Errorf("%s: parse error should match ErrValidation", name)
		}
	}
}

func TestIsMarkerOnlyAtColumnZero(t *testing.T) {
	if !IsMarker("## [link] 2026-08-24 10:15:00") {
		t.Fatal("marker line not recognised")
	}
	if IsMarker("  ## [link] 2026-08-24 10:15:00") {
		t.Fatal("indented line must not be a marker")
	}
}

func TestBlockKey(t *testing.T) {
	e := model.Entry{Timestamp: "2026-08-24 10:15:00", Type: "link", Content: "x"}
	if got := BlockKey(Encode(e)); got != e.Timestamp {
		t.Fatalf("BlockKey: got %q want %q", got, e.Timestamp)
	}
	if got := BlockKey([]byte("garbage")); got != "" {
		t.Fatalf("BlockKey on garbage: got %q", got)
	}
}

func TestContentNeverStartsAtColumnZero(t *testing.T) {
	e := model.Entry{
		Timestamp: "2026-08-24 10:15:00",
		Type:      "para",
		Content:   "## [fake] 2020-01-01 00:00:00\nstill the same entry",
	}
	enc := Encode(e)
	for i, line := range strings.Split(strings.TrimRight(string(enc), "\n"), "\n") {
		if i == 0 {
			continue
		}
		if IsMarker(line) {
			t.Fatalf("content line encoded as marker: %q", line)
		}
	}
	out, err := Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Content != e.Content {
		t.Fatalf("content: got %q want %q", out.Content, e.Content)
	}
}
