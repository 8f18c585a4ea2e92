package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/jotlog/jotlog/internal/api/recovery"
	"github.com/jotlog/jotlog/internal/enrich"
	"github.com/jotlog/jotlog/internal/services"
)

// Deps carries the wired services the router mounts.
type Deps struct {
	Entries        *services.EntryService
	Topics         *services.TaxonomyService
	People         *services.TaxonomyService
	Columns        *services.ColumnService
	Settings       *services.SettingsService
	Logs           *services.LogService
	Enrich         *enrich.Runner
	DataDir        string
	DefaultProject string
	Log            zerolog.Logger
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware(d.Log))

	captureHandler := NewCaptureHandler(d.Entries, d.DefaultProject)
	entryHandler := NewEntryHandler(d.Entries)
	topicHandler := NewTaxonomyHandler(d.Topics, "topics")
	peopleHandler := NewTaxonomyHandler(d.People, "people")
	columnHandler := NewColumnHandler(d.Columns)
	settingsHandler := NewSettingsHandler(d.Settings)
	logHandler := NewLogHandler(d.Logs)
	enrichHandler := NewEnrichHandler(d.Enrich)
	healthHandler := NewHealthHandler(d.DataDir)

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Capture envelope endpoint
	router.HandleFunc("/api/capture", captureHandler.Capture).Methods("POST")

	// Project and entry endpoints
	router.HandleFunc("/api/projects", entryHandler.ListProjects).Methods("GET")
	router.HandleFunc("/api/projects/{project}/entries", entryHandler.ListEntries).Methods("GET")
	router.HandleFunc("/api/projects/{project}/entries/{key}", entryHandler.GetEntry).Methods("GET")
	router.HandleFunc("/api/projects/{project}/entries/{key}", entryHandler.PatchEntry).Methods("PATCH")
	router.HandleFunc("/api/projects/{project}/entries/{key}", entryHandler.DeleteEntry).Methods("DELETE")
	router.HandleFunc("/api/projects/{project}/filters", entryHandler.ListFilters).Methods("GET")

	// Enrichment endpoints
	router.HandleFunc("/api/projects/{project}/entries/{key}/enrich", enrichHandler.Enrich).Methods("POST")
	router.HandleFunc("/api/enrich/{id}", enrichHandler.GetTask).Methods("GET")

	// Taxonomy endpoints
	router.HandleFunc("/api/topics", topicHandler.List).Methods("GET")
	router.HandleFunc("/api/topics", topicHandler.Add).Methods("POST")
	router.HandleFunc("/api/topics/{name}", topicHandler.Rename).Methods("PATCH")
	router.HandleFunc("/api/topics/{name}", topicHandler.Remove).Methods("DELETE")
	router.HandleFunc("/api/people", peopleHandler.List).Methods("GET")
	router.HandleFunc("/api/people", peopleHandler.Add).Methods("POST")
	router.HandleFunc("/api/people/{name}", peopleHandler.Rename).Methods("PATCH")
	router.HandleFunc("/api/people/{name}", peopleHandler.Remove).Methods("DELETE")

	// Kanban column endpoints
	router.HandleFunc("/api/columns", columnHandler.List).Methods("GET")
	router.HandleFunc("/api/columns", columnHandler.Add).Methods("POST")
	router.HandleFunc("/api/columns/{id}", columnHandler.Update).Methods("PATCH")
	router.HandleFunc("/api/columns/{id}", columnHandler.Remove).Methods("DELETE")

	// Settings endpoints
	router.HandleFunc("/api/settings", settingsHandler.Get).Methods("GET")
	router.HandleFunc("/api/settings", settingsHandler.Put).Methods("PUT")

	// Activity log endpoints
	router.HandleFunc("/api/logs", logHandler.List).Methods("GET")
	router.HandleFunc("/api/logs", logHandler.Clear).Methods("DELETE")

	return router
}
