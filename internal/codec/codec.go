// Package codec converts between the markdown textual representation of
// one entry and its structured record. It is pure: no I/O, no locking.
//
// Block grammar:
//
//	## [<type>] <YYYY-MM-DD HH:MM:SS>      marker line, column 0
//	[<title>](<url>)                       optional link line, column 0
//	  key:: value                          metadata, two-space indent
//	  anything else                        content, two-space indent
//
// Indentation keeps body text unambiguous against the marker: only
// column-0 lines can start a new entry. Content lines that would parse
// as known metadata are escaped with a leading backslash.
package codec

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jotlog/jotlog/internal/model"
)

const (
	markerPrefix = "## ["
	bodyIndent   = "  "
)

// Known metadata keys. Indented lines with any other key stay in the
// content verbatim, which is what keeps old binaries forward compatible
// with files written by newer ones.
const (
	keySource      = "source"
	keyEntity      = "entity"
	keyStatus      = "status"
	keyTabGroup    = "tabgroup"
	keyScreenshot  = "screenshot"
	keyFile        = "file"
	keyDescription = "description"
	keyOGImage     = "ogimage"
	keyAuthor      = "author"
	keyPublished   = "published"
	keyReadingTime = "readingtime"
	keyTopic       = "topic"
	keyPerson      = "person"
	keyQuote       = "quote"
	keySummary     = "summary"
)

var knownKeys = map[string]bool{
	keySource: true, keyEntity: true, keyStatus: true, keyTabGroup: true,
	keyScreenshot: true, keyFile: true, keyDescription: true,
	keyOGImage: true, keyAuthor: true, keyPublished: true,
	keyReadingTime: true, keyTopic: true, keyPerson: true,
	keyQuote: true, keySummary: true,
}

var (
	timestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
	metaRe      = regexp.MustCompile(`^([a-z]+)::(?: (.*))?$`)
	escapedRe   = regexp.MustCompile(`^(\\+)([a-z]+)::(?: |$)`)
)

// IsMarker reports whether a raw file line starts a new entry block.
func IsMarker(line string) bool {
	return strings.HasPrefix(line, markerPrefix)
}

// Validate rejects entries whose single-line fields embed a newline.
// Encoded, such a value would spill onto its own raw line and either
// corrupt the block or fabricate a marker, so writers refuse it before
// any byte hits the file. Content, SelectedText and AISummary are
// exempt: Encode splits them across repeated lines.
func Validate(e model.Entry) error {
	type field struct{ name, value string }
	fields := []field{
		{"type", e.Type},
		{"title", e.Title},
		{"url", e.URL},
		{keySource, e.Source},
		{keyEntity, e.Entity},
		{keyStatus, e.TaskStatus},
		{keyScreenshot, e.Screenshot},
		{keyFile, e.File},
		{keyDescription, e.Description},
		{keyOGImage, e.OGImage},
		{keyAuthor, e.Author},
		{keyPublished, e.PublishedDate},
		{keyReadingTime, e.ReadingTime},
	}
	if e.TabGroup != nil {
		fields = append(fields,
			field{keyTabGroup, e.TabGroup.Name},
			field{keyTabGroup, e.TabGroup.Color})
	}
	for _, t := range e.Topics {
		fields = append(fields, field{keyTopic, t})
	}
	for _, p := range e.People {
		fields = append(fields, field{keyPerson, p})
	}
	for _, f := range fields {
		if strings.ContainsRune(f.value, '\n') {
			return fmt.Errorf("%w: field %s must be a single line", model.ErrValidation, f.name)
		}
	}
	return nil
}

// Encode renders the entry as one markdown block, without a trailing
// blank separator. Deterministic: identical entries produce identical
// bytes. Callers on the write path run Validate first; Encode itself
// assumes single-line field values.
func Encode(e model.Entry) []byte {
	var b strings.Builder

	b.WriteString(markerPrefix)
	b.WriteString(escapeBracket(e.Type))
	b.WriteString("] ")
	b.WriteString(e.Timestamp)
	b.WriteByte('\n')

	if e.Title != "" || e.URL != "" {
		b.WriteByte('[')
		b.WriteString(escapeBracket(e.Title))
		b.WriteString("](")
		b.WriteString(escapeParen(e.URL))
		b.WriteString(")\n")
	}

	writeMeta := func(key, value string) {
		b.WriteString(bodyIndent)
		b.WriteString(key)
		b.WriteString("::")
		if value != "" {
			b.WriteByte(' ')
			b.WriteString(value)
		}
		b.WriteByte('\n')
	}

	if e.Source != "" {
		writeMeta(keySource, e.Source)
	}
	if e.Entity != "" {
		writeMeta(keyEntity, e.Entity)
	}
	if e.TaskStatus != "" {
		writeMeta(keyStatus, e.TaskStatus)
	}
	if e.TabGroup != nil {
		raw, _ := json.Marshal(e.TabGroup)
		writeMeta(keyTabGroup, string(raw))
	}
	if e.Screenshot != "" {
		writeMeta(keyScreenshot, e.Screenshot)
	}
	if e.File != "" {
		writeMeta(keyFile, e.File)
	}
	if e.Description != "" {
		writeMeta(keyDescription, e.Description)
	}
	if e.OGImage != "" {
		writeMeta(keyOGImage, e.OGImage)
	}
	if e.Author != "" {
		writeMeta(keyAuthor, e.Author)
	}
	if e.PublishedDate != "" {
		writeMeta(keyPublished, e.PublishedDate)
	}
	if e.ReadingTime != "" {
		writeMeta(keyReadingTime, e.ReadingTime)
	}
	for _, t := range e.Topics {
		writeMeta(keyTopic, t)
	}
	for _, p := range e.People {
		writeMeta(keyPerson, p)
	}
	if e.SelectedText != "" {
		for _, line := range strings.Split(e.SelectedText, "\n") {
			writeMeta(keyQuote, line)
		}
	}
	if e.AISummary != "" {
		for _, line := range strings.Split(e.AISummary, "\n") {
			writeMeta(keySummary, line)
		}
	}

	if e.Content != "" {
		for _, line := range strings.Split(e.Content, "\n") {
			b.WriteString(bodyIndent)
			b.WriteString(escapeContentLine(line))
			b.WriteByte('\n')
		}
	}

	return []byte(b.String())
}

// Decode parses one block back into an entry. It recovers every field
// Encode writes and keeps unknown indented lines as content. Malformed
// blocks yield a *model.ParseError naming the violated invariant.
func Decode(block []byte) (model.Entry, error) {
	var e model.Entry

	lines := strings.Split(strings.TrimRight(string(block), "\n"), "\n")
	if len(lines) == 0 || !IsMarker(lines[0]) {
		return e, &model.ParseError{Invariant: "missing marker line"}
	}

	typ, ts, err := parseMarker(lines[0])
	if err != nil {
		return e, err
	}
	e.Type = typ
	e.Timestamp = ts

	body := lines[1:]
	if len(body) > 0 && strings.HasPrefix(body[0], "[") {
		title, url, err := parseLinkLine(body[0])
		if err != nil {
			return e, err
		}
		e.Title = title
		e.URL = url
		body = body[1:]
	}

	var content, quote, summary []string
	haveQuote, haveSummary := false, false

	for _, raw := range body {
		if raw == "" {
			// blank separator between blocks
			continue
		}
		if !strings.HasPrefix(raw, bodyIndent) {
			return e, &model.ParseError{Invariant: "unindented body line", Line: raw}
		}
		line := raw[len(bodyIndent):]

		if m := escapedRe.FindStringSubmatch(line); m != nil && knownKeys[m[2]] {
			content = append(content, line[1:])
			continue
		}
		if m := metaRe.FindStringSubmatch(line); m != nil && knownKeys[m[1]] {
			key, value := m[1], m[2]
			switch key {
			case keySource:
				e.Source = value
			case keyEntity:
				e.Entity = value
			case keyStatus:
				e.TaskStatus = value
			case keyTabGroup:
				var tg model.TabGroup
				if err := json.Unmarshal([]byte(value), &tg); err != nil {
					return e, &model.ParseError{Invariant: "malformed tabgroup", Line: raw}
				}
				e.TabGroup = &tg
			case keyScreenshot:
				e.Screenshot = value
			case keyFile:
				e.File = value
			case keyDescription:
				e.Description = value
			case keyOGImage:
				e.OGImage = value
			case keyAuthor:
				e.Author = value
			case keyPublished:
				e.PublishedDate = value
			case keyReadingTime:
				e.ReadingTime = value
			case keyTopic:
				e.Topics = append(e.Topics, value)
			case keyPerson:
				e.People = append(e.People, value)
			case keyQuote:
				quote = append(quote, value)
				haveQuote = true
			case keySummary:
				summary = append(summary, value)
				haveSummary = true
			}
			continue
		}
		content = append(content, line)
	}

	if haveQuote {
		e.SelectedText = strings.Join(quote, "\n")
	}
	if haveSummary {
		e.AISummary = strings.Join(summary, "\n")
	}
	if len(content) > 0 {
		e.Content = strings.Join(content, "\n")
	}
	return e, nil
}

func parseMarker(line string) (typ, ts string, err error) {
	rest := line[len(markerPrefix):]
	idx := indexUnescaped(rest, ']')
	if idx < 0 {
		return "", "", &model.ParseError{Invariant: "marker missing closing bracket", Line: line}
	}
	typ = unescapeBracket(rest[:idx])
	if typ == "" {
		return "", "", &model.ParseError{Invariant: "marker missing type", Line: line}
	}
	tail := rest[idx+1:]
	if !strings.HasPrefix(tail, " ") {
		return "", "", &model.ParseError{Invariant: "marker missing timestamp", Line: line}
	}
	ts = tail[1:]
	if !timestampRe.MatchString(ts) {
		return "", "", &model.ParseError{Invariant: "malformed timestamp", Line: line}
	}
	return typ, ts, nil
}

func parseLinkLine(line string) (title, url string, err error) {
	rest := line[1:]
	idx := indexUnescaped(rest, ']')
	if idx < 0 || !strings.HasPrefix(rest[idx+1:], "(") || !strings.HasSuffix(rest, ")") {
		return "", "", &model.ParseError{Invariant: "malformed link line", Line: line}
	}
	title = unescapeBracket(rest[:idx])
	url = unescapeParen(rest[idx+2 : len(rest)-1])
	return title, url, nil
}

// indexUnescaped returns the index of the first c not preceded by a
// backslash escape.
func indexUnescaped(s string, c byte) int {
	escaped := false
	for i := 0; i < len(s); i++ {
		if escaped {
			escaped = false
			continue
		}
		if s[i] == '\\' {
			escaped = true
			continue
		}
		if s[i] == c {
			return i
		}
	}
	return -1
}

func escapeBracket(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `]`, `\]`)
}

func unescapeBracket(s string) string {
	s = strings.ReplaceAll(s, `\]`, `]`)
	return strings.ReplaceAll(s, `\\`, `\`)
}

func escapeParen(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `)`, `\)`)
}

func unescapeParen(s string) string {
	s = strings.ReplaceAll(s, `\)`, `)`)
	return strings.ReplaceAll(s, `\\`, `\`)
}

// escapeContentLine shields content that would otherwise be read back
// as metadata on decode.
func escapeContentLine(line string) string {
	if m := metaRe.FindStringSubmatch(line); m != nil && knownKeys[m[1]] {
		return `\` + line
	}
	if m := escapedRe.FindStringSubmatch(line); m != nil && knownKeys[m[2]] {
		return `\` + line
	}
	return line
}

// BlockKey extracts the timestamp key from a block's marker line
// without decoding the whole block. Returns "" for malformed markers.
func BlockKey(block []byte) string {
	line := string(block)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if !IsMarker(line) {
		return ""
	}
	_, ts, err := parseMarker(line)
	if err != nil {
		return ""
	}
	return ts
}

// String renders a compact description of the entry, used in logs.
func String(e model.Entry) string {
	return fmt.Sprintf("[%s] %s %q", e.Type, e.Timestamp, e.Title)
}
