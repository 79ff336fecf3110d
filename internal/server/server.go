// Package server provides the HTTP server and handlers.
package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/open-atom-club/deadlines/internal/database"
	"github.com/open-atom-club/deadlines/internal/dataset"
	"github.com/open-atom-club/deadlines/internal/deadline"
	"github.com/open-atom-club/deadlines/internal/ics"
	"github.com/open-atom-club/deadlines/internal/model"
	"github.com/open-atom-club/deadlines/internal/search"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server is the main HTTP server.
type Server struct {
	loader    *dataset.Loader
	db        database.Store
	searcher  *search.Index
	clock     deadline.Clock
	router    chi.Router
	templates *template.Template
	log       zerolog.Logger

	// defaultZone seeds the display timezone when none is persisted.
	defaultZone string
}

// New creates a new server.
func New(loader *dataset.Loader, db database.Store, defaultZone string, log zerolog.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"remaining": formatRemaining,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		loader:      loader,
		db:          db,
		searcher:    search.New(),
		clock:       deadline.SystemClock{},
		templates:   tmpl,
		log:         log,
		defaultZone: defaultZone,
	}
	s.setupRoutes()
	return s, nil
}

// WithClock replaces the time source. Used in tests.
func (s *Server) WithClock(c deadline.Clock) *Server {
	s.clock = c
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Pages.
	r.Get("/", s.handleHome)
	r.Get("/health", s.handleHealth)

	// API.
	r.Route("/api", func(r chi.Router) {
		r.Get("/data", s.handleData)
		r.Get("/events", s.handleEvents)
		r.Get("/filters", s.handleFilters)
		r.Get("/settings", s.handleGetSettings)
		r.Post("/settings", s.handleSaveSettings)
		r.Post("/settings/detect", s.handleDetectTimezone)
		r.Get("/favorites", s.handleFavorites)
		r.Post("/favorites/toggle", s.handleToggleFavorite)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/events/{eventID}/calendar.ics", s.handleExportICS)
		r.Get("/events/{eventID}/calendar-links", s.handleCalendarLinks)
	})

	s.router = r
}

// Start starts the server.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("listen", addr).Msg("server starting")
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router. Used in tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// --- Page Handlers ---

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	zone, err := s.displayZone(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ranked, err := s.rank(r, zone)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data := map[string]interface{}{
		"Zone":   zone,
		"Events": ranked,
	}
	s.render(w, "layout.html", data)
}

// --- API Handlers ---

// handleData returns the merged raw collection, as loaded from disk.
func (s *Server) handleData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.loader.Items())
}

// rankedEvent is the wire form of one ranked (item, event) pair with all
// civil times projected into the observer zone.
type rankedEvent struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    model.Category   `json:"category"`
	Tags        []string         `json:"tags"`
	Year        int              `json:"year"`
	ID          string           `json:"id"`
	Link        string           `json:"link"`
	Date        string           `json:"date"`
	Place       string           `json:"place"`
	Timezone    string           `json:"timezone"`
	Timeline    []timelineEntry  `json:"timeline"`
	NextIndex   int              `json:"nextIndex"`
	NextAt      time.Time        `json:"nextAt"`
	RemainingMS int64            `json:"remainingMs"`
	Ended       bool             `json:"ended"`
	Favorite    bool             `json:"favorite"`
}

type timelineEntry struct {
	Deadline    string       `json:"deadline"`
	Comment     string       `json:"comment"`
	DisplayTime string       `json:"displayTime,omitempty"`
	Status      model.Status `json:"status,omitempty"`
}

// handleEvents returns the ranked, filtered event list. Query parameters:
// category, tags, locations (comma-separated), q, favorites=true, and tz
// (one-off observer zone override).
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	zone, err := s.displayZone(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ranked, err := s.rank(r, zone)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"timezone": zone,
		"events":   ranked,
	})
}

// displayZone resolves the observer zone for this request: the tz query
// parameter when present, otherwise the persisted setting, otherwise the
// configured default. An unknown override is rejected rather than silently
// replaced.
func (s *Server) displayZone(r *http.Request) (string, error) {
	if tz := r.URL.Query().Get("tz"); tz != "" {
		if !deadline.ValidZone(tz) {
			return "", fmt.Errorf("unknown timezone %q", tz)
		}
		return tz, nil
	}
	zone, err := s.db.GetDisplayTimezone(s.defaultZone)
	if err != nil {
		s.log.Error().Err(err).Msg("reading display timezone")
		return s.defaultZone, nil
	}
	return zone, nil
}

// rank samples now once, runs the engine, and projects the result into the
// observer zone.
func (s *Server) rank(r *http.Request, zone string) ([]rankedEvent, error) {
	q := r.URL.Query()

	crit := deadline.Criteria{
		Category:  q.Get("category"),
		Tags:      splitParam(q.Get("tags")),
		Locations: splitParam(q.Get("locations")),
		Query:     q.Get("q"),
	}

	favorites, err := s.db.GetFavorites()
	if err != nil {
		s.log.Error().Err(err).Msg("reading favorites")
	}
	favSet := make(map[string]bool, len(favorites))
	for _, id := range favorites {
		favSet[id] = true
	}
	crit.Favorites = favSet
	crit.FavoritesOnly = q.Get("favorites") == "true"

	now := s.clock.Now()
	ranked := deadline.Rank(s.loader.Items(), crit, s.searcher, now)

	out := make([]rankedEvent, 0, len(ranked))
	for _, rk := range ranked {
		out = append(out, s.toWire(rk, zone, favSet))
	}
	return out, nil
}

func (s *Server) toWire(rk model.Ranked, zone string, favorites map[string]bool) rankedEvent {
	ev := rankedEvent{
		Title:       rk.Item.Title,
		Description: rk.Item.Description,
		Category:    rk.Item.Category,
		Tags:        rk.Item.Tags,
		Year:        rk.Event.Year,
		ID:          rk.Event.ID,
		Link:        rk.Event.Link,
		Date:        rk.Event.Date,
		Place:       rk.Event.Place,
		Timezone:    rk.Event.Timezone,
		NextIndex:   rk.NextIndex,
		NextAt:      rk.NextAt,
		RemainingMS: rk.Remaining.Milliseconds(),
		Ended:       rk.Ended,
		Favorite:    favorites[rk.Event.ID],
	}
	for i, entry := range rk.Event.Timeline {
		te := timelineEntry{Deadline: entry.Deadline, Comment: entry.Comment}
		if i < len(rk.Statuses) && rk.Statuses[i] != "" {
			te.Status = rk.Statuses[i]
			if instant, err := deadline.Resolve(entry.Deadline, rk.Event.Timezone); err == nil {
				if disp, err := deadline.Project(instant, zone); err == nil {
					te.DisplayTime = disp
				}
			}
		}
		ev.Timeline = append(ev.Timeline, te)
	}
	return ev
}

// handleFilters returns the facet values present in the current snapshot so
// the client can build its filter bar.
func (s *Server) handleFilters(w http.ResponseWriter, _ *http.Request) {
	items := s.loader.Items()
	categories := uniqueStrings(func(add func(string)) {
		for _, it := range items {
			add(string(it.Category))
		}
	})
	tags := uniqueStrings(func(add func(string)) {
		for _, it := range items {
			for _, t := range it.Tags {
				add(t)
			}
		}
	})
	locations := uniqueStrings(func(add func(string)) {
		for _, it := range items {
			for _, ev := range it.Events {
				add(ev.Place)
			}
		}
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"tags":       tags,
		"locations":  locations,
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	zone, _ := s.db.GetDisplayTimezone(s.defaultZone)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"display_timezone": zone,
	})
}

// handleSaveSettings updates the display timezone. An unknown identifier is
// rejected and the previous zone kept.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayTimezone string `json:"display_timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if !deadline.ValidZone(req.DisplayTimezone) {
		current, _ := s.db.GetDisplayTimezone(s.defaultZone)
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":            fmt.Sprintf("unknown timezone %q", req.DisplayTimezone),
			"display_timezone": current,
		})
		return
	}
	if err := s.db.SetDisplayTimezone(req.DisplayTimezone); err != nil {
		http.Error(w, "Failed to save", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "ok",
		"display_timezone": req.DisplayTimezone,
	})
}

// handleDetectTimezone resolves the host environment's zone and persists it.
// Detection never runs implicitly; only this explicit request triggers it.
func (s *Server) handleDetectTimezone(w http.ResponseWriter, _ *http.Request) {
	zone, err := DetectZone()
	if err != nil {
		current, _ := s.db.GetDisplayTimezone(s.defaultZone)
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":            "could not detect environment timezone",
			"display_timezone": current,
		})
		return
	}
	if err := s.db.SetDisplayTimezone(zone); err != nil {
		http.Error(w, "Failed to save", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "ok",
		"display_timezone": zone,
	})
}

func (s *Server) handleFavorites(w http.ResponseWriter, _ *http.Request) {
	ids, err := s.db.GetFavorites()
	if err != nil {
		http.Error(w, "Failed to read favorites", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"favorites": ids})
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	fav, err := s.db.ToggleFavorite(req.ID)
	if err != nil {
		http.Error(w, "Failed to toggle favorite", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"id":       req.ID,
		"favorite": fav,
	})
}

// handleRefresh forces a reload of the data directory.
func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	if err := s.loader.Load(); err != nil {
		http.Error(w, fmt.Sprintf("Reload error: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"items":  len(s.loader.Items()),
	})
}

// --- Calendar Export Handlers ---

func (s *Server) findEvent(id string) (*model.Item, *model.Event) {
	items := s.loader.Items()
	for i := range items {
		for j := range items[i].Events {
			if items[i].Events[j].ID == id {
				return &items[i], &items[i].Events[j]
			}
		}
	}
	return nil, nil
}

func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventID")
	item, ev := s.findEvent(id)
	if ev == nil {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}
	payload, err := ics.Export(item, ev, s.clock.Now())
	if err != nil {
		http.Error(w, "Failed to export", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.ics", id))
	w.Write([]byte(payload))
}

func (s *Server) handleCalendarLinks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "eventID")
	item, ev := s.findEvent(id)
	if ev == nil {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}
	links, err := ics.BuildLinks(item, ev)
	if err != nil {
		http.Error(w, "Failed to build links", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

// --- Helpers ---

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("template error")
		http.Error(w, "Render error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// uniqueStrings collects distinct non-empty values in first-seen order.
func uniqueStrings(fill func(add func(string))) []string {
	seen := make(map[string]bool)
	var out []string
	fill(func(v string) {
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
	})
	return out
}

func formatRemaining(re rankedEvent) string {
	d := time.Duration(re.RemainingMS) * time.Millisecond
	if d < 0 {
		return "ended"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
