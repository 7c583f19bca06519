package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/mailscope/pkg/domain"
	"github.com/umputun/mailscope/pkg/repository"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// documentView is the public shape of a stored row
type documentView struct {
	ID              string    `json:"id"`
	ParentID        string    `json:"parent_id,omitempty"`
	Title           string    `json:"title"`
	SenderTag       string    `json:"sender_tag"`
	Summary         string    `json:"summary"`
	SummaryHTML     string    `json:"summary_html"`
	Handler         string    `json:"handler"`
	Actors          []string  `json:"actors"`
	Themes          []string  `json:"themes"`
	Category        string    `json:"category"`
	RelevanceScore  float64   `json:"relevance_score"`
	Link            *string   `json:"link"`
	MatchConfidence float64   `json:"match_confidence,omitempty"`
	Ordinal         int       `json:"ordinal,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	Split           bool      `json:"split,omitempty"`
}

// statusHandler returns server status with store counters and the last scheduled run
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.Stats(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] failed to get stats: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	status := map[string]any{
		"status":    "ok",
		"version":   s.version,
		"time":      time.Now().UTC(),
		"documents": stats,
		"scheduler": s.scheduler.Status(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// listDocumentsHandler returns documents newest first, filtered by query parameters
func (s *Server) listDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	docs, err := s.db.Scan(r.Context(), filter)
	if err != nil {
		lgr.Printf("[ERROR] failed to scan documents: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, s.views(docs))
}

// getDocumentHandler returns a single document
func (s *Server) getDocumentHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := s.db.Lookup(r.Context(), r.PathValue("id"))
	if err != nil {
		s.renderLookupError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, s.view(*doc))
}

// storiesHandler returns stories split out of a parent document in digest order
func (s *Server) storiesHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.db.Lookup(r.Context(), id); err != nil {
		s.renderLookupError(w, r, err)
		return
	}
	docs, err := s.db.Scan(r.Context(), domain.DocumentFilter{ParentID: id})
	if err != nil {
		lgr.Printf("[ERROR] failed to get stories of %s: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, s.views(docs))
}

// enrichHandler forces enrichment of a parent document and returns the stored result
func (s *Server) enrichHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := s.db.Lookup(r.Context(), id)
	if err != nil {
		s.renderLookupError(w, r, err)
		return
	}
	if doc.IsStory() {
		renderError(w, r, fmt.Errorf("document %s is a story of %s", id, doc.ParentID), http.StatusBadRequest)
		return
	}

	stats, err := s.scheduler.EnrichNow(r.Context(), id)
	if err != nil {
		lgr.Printf("[ERROR] failed to enrich %s: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	if doc, err = s.db.Lookup(r.Context(), id); err != nil {
		s.renderLookupError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]any{"stats": stats, "document": s.view(*doc)})
}

func (s *Server) renderLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		renderError(w, r, errors.New("document not found"), http.StatusNotFound)
		return
	}
	lgr.Printf("[ERROR] failed to get document: %v", err)
	renderError(w, r, err, http.StatusInternalServerError)
}

// parseFilter makes scan filter from limit, tag, min_score, unenriched and parents query parameters
func parseFilter(r *http.Request) (domain.DocumentFilter, error) {
	q := r.URL.Query()
	filter := domain.DocumentFilter{Limit: defaultLimit, SenderTag: q.Get("tag")}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return filter, fmt.Errorf("invalid limit %q", v)
		}
		filter.Limit = min(limit, maxLimit)
	}
	if v := q.Get("min_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil || score < 0 || score > 10 {
			return filter, fmt.Errorf("invalid min_score %q", v)
		}
		filter.MinScore = score
	}
	for name, dst := range map[string]*bool{"unenriched": &filter.Unenriched, "parents": &filter.ParentsOnly} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("invalid %s %q", name, v)
		}
		*dst = b
	}
	return filter, nil
}

func (s *Server) views(docs []domain.Document) []documentView {
	res := make([]documentView, 0, len(docs))
	for _, d := range docs {
		res = append(res, s.view(d))
	}
	return res
}

func (s *Server) view(d domain.Document) documentView {
	res := documentView{
		ID:              d.ID,
		ParentID:        d.ParentID,
		Title:           d.Title,
		SenderTag:       d.SenderTag,
		Summary:         d.Summary,
		SummaryHTML:     s.policy.Sanitize(d.Summary),
		Handler:         d.Handler,
		Actors:          d.Actors,
		Themes:          d.Themes,
		Category:        d.Category,
		RelevanceScore:  d.RelevanceScore,
		MatchConfidence: d.MatchConfidence,
		Ordinal:         d.Ordinal,
		CreatedAt:       d.CreatedAt,
		Split:           domain.IsSplit(d.Summary),
	}
	if res.Actors == nil {
		res.Actors = []string{}
	}
	if res.Themes == nil {
		res.Themes = []string{}
	}
	if d.Link != "" {
		link := d.Link
		res.Link = &link
	}
	return res
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
