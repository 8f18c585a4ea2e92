package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jotlog/jotlog/internal/api/respond"
	"github.com/jotlog/jotlog/internal/model"
	"github.com/jotlog/jotlog/internal/services"
)

// CaptureHandler serves the envelope endpoint the capture extension
// posts to. Every outcome goes back as {success, message|error}.
type CaptureHandler struct {
	entries        *services.EntryService
	defaultProject string
}

func NewCaptureHandler(entries *services.EntryService, defaultProject string) *CaptureHandler {
	return &CaptureHandler{entries: entries, defaultProject: defaultProject}
}

type captureEntry struct {
	Type          string          `json:"type"`
	Captured      string          `json:"captured"`
	Source        string          `json:"source"`
	Entity        string          `json:"entity"`
	Title         string          `json:"title"`
	URL           string          `json:"url"`
	Content       string          `json:"content"`
	SelectedText  string          `json:"selectedText"`
	TabGroup      *model.TabGroup `json:"tabGroup,omitempty"`
	Topics        []string        `json:"topics,omitempty"`
	People        []string        `json:"people,omitempty"`
	Description   string          `json:"description,omitempty"`
	OGImage       string          `json:"ogImage,omitempty"`
	Author        string          `json:"author,omitempty"`
	PublishedDate string          `json:"publishedDate,omitempty"`
	ReadingTime   string          `json:"readingTime,omitempty"`
	Screenshot    string          `json:"screenshot,omitempty"` // base64
	FileData      string          `json:"fileData,omitempty"`   // base64
	Filename      string          `json:"filename,omitempty"`
	MimeType      string          `json:"mimeType,omitempty"`
}

type captureRequest struct {
	Action        string        `json:"action"`
	ProjectFolder string        `json:"projectFolder"`
	Timestamp     string        `json:"timestamp,omitempty"`
	NewContent    string        `json:"newContent,omitempty"`
	Entry         *captureEntry `json:"entry,omitempty"`
}

// Capture POST /api/capture
func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteEnvelopeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	project := req.ProjectFolder
	if project == "" {
		project = h.defaultProject
	}

	switch req.Action {
	case "append":
		h.appendEntry(w, r, project, req.Entry)
	case "update_last_entry":
		h.updateContent(w, r, project, req.Timestamp, req.NewContent)
	default:
		respond.WriteEnvelopeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
	}
}

func (h *CaptureHandler) appendEntry(w http.ResponseWriter, r *http.Request, project string, ce *captureEntry) {
	if ce == nil {
		respond.WriteEnvelopeError(w, http.StatusBadRequest, "append requires an entry")
		return
	}
	e := model.Entry{
		Timestamp:     ce.Captured,
		Type:          ce.Type,
		Entity:        ce.Entity,
		Source:        ce.Source,
		Title:         ce.Title,
		URL:           ce.URL,
		Content:       ce.Content,
		SelectedText:  ce.SelectedText,
		TabGroup:      ce.TabGroup,
		Topics:        ce.Topics,
		People:        ce.People,
		Description:   ce.Description,
		OGImage:       ce.OGImage,
		Author:        ce.Author,
		PublishedDate: ce.PublishedDate,
		ReadingTime:   ce.ReadingTime,
	}

	asset, err := decodeAsset(ce)
	if err != nil {
		respond.WriteEnvelopeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.entries.Append(r.Context(), project, e, asset)
	if err != nil {
		respond.WriteEnvelopeError(w, statusFor(err), err.Error())
		return
	}
	respond.WriteEnvelopeOK(w, fmt.Sprintf("entry %s appended to %s", out.Timestamp, project))
}

func (h *CaptureHandler) updateContent(w http.ResponseWriter, r *http.Request, project, timestamp, newContent string) {
	if timestamp == "" {
		respond.WriteEnvelopeError(w, http.StatusBadRequest, "update_last_entry requires a timestamp")
		return
	}
	_, err := h.entries.Patch(r.Context(), project, timestamp, services.PatchRequest{Content: &newContent})
	if err != nil {
		respond.WriteEnvelopeError(w, statusFor(err), err.Error())
		return
	}
	respond.WriteEnvelopeOK(w, fmt.Sprintf("entry %s updated", timestamp))
}

// decodeAsset turns the base64 screenshot or file payload into bytes.
// Data-URL prefixes from the extension are tolerated.
func decodeAsset(ce *captureEntry) (*services.AssetPayload, error) {
	var kind, data string
	switch {
	case ce.Screenshot != "":
		kind, data = "screenshot", ce.Screenshot
	case ce.FileData != "":
		kind, data = "file", ce.FileData
	default:
		return nil, nil
	}
	if i := strings.Index(data, ";base64,"); i >= 0 {
		data = data[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64 %s payload", model.ErrValidation, kind)
	}
	return &services.AssetPayload{
		Kind:     kind,
		Filename: ce.Filename,
		MimeType: ce.MimeType,
		Data:     raw,
	}, nil
}
