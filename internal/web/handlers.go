package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"scribe/internal/config"
	"scribe/internal/errors"
	"scribe/internal/event"
	"scribe/internal/ops"
)

// Handlers contains HTTP route handlers for the dashboard.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	bus      *event.Bus
	renderer *Renderer
}

// HandleList handles GET /transcripts — list transcripts in a library.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	library := queryLibrary(r)

	input := ops.ListInput{
		Library:        library,
		Status:         ptrString(r.URL.Query().Get("status")),
		Tag:            ptrString(r.URL.Query().Get("tag")),
		Limit:          parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	}

	result, err := ops.List(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Transcripts",
			Version: h.renderer.version,
			Nav:     "transcripts",
			Library: library,
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Status:     r.URL.Query().Get("status"),
		Tag:        r.URL.Query().Get("tag"),
		Deleted:    input.IncludeDeleted,
	})
}

// HandleDetail handles GET /transcripts/{id} — view a single transcript.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("transcript ID is required"))
		return
	}

	includeText := true
	input := ops.FetchInput{
		ID:             id,
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
		IncludeText:    &includeText,
	}

	rec, err := ops.Fetch(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   rec.Title,
			Version: h.renderer.version,
			Nav:     "transcripts",
			Library: rec.Library,
		},
		Transcript:   rec,
		RenderedHTML: renderTranscriptHTML(rec.Text),
	})
}

// HandleDuplicates handles GET /transcripts/duplicates — the duplicate-group
// view, largest waste first.
func (h *Handlers) HandleDuplicates(w http.ResponseWriter, r *http.Request) {
	library := queryLibrary(r)

	result, err := ops.Duplicates(r.Context(), h.db, ops.DuplicatesInput{Library: library})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "duplicates", DuplicatesPageData{
		PageData: PageData{
			Title:   "Duplicates",
			Version: h.renderer.version,
			Nav:     "duplicates",
			Library: library,
		},
		Scanned: result.Scanned,
		Groups:  result.Groups,
	})
}

// HandleReport handles GET /transcripts/report — the aggregate duplicate
// report. Add Accept: application/json for the raw report.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	library := queryLibrary(r)

	report, err := ops.Report(r.Context(), h.db, ops.ReportInput{Library: library})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, report)
		return
	}

	h.renderer.renderPage(w, r, "report", ReportPageData{
		PageData: PageData{
			Title:   "Duplicate report",
			Version: h.renderer.version,
			Nav:     "report",
			Library: library,
		},
		Report: report,
	})
}

// HandleActivity handles GET /transcripts/activity — the activity log.
func (h *Handlers) HandleActivity(w http.ResponseWriter, r *http.Request) {
	library := queryLibrary(r)
	limit := parseIntParam(r, "limit", ops.DefaultActivityLimit)

	entries, err := ops.Activity(r.Context(), h.db, ops.ActivityInput{Library: library, Limit: limit})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "activity", ActivityPageData{
		PageData: PageData{
			Title:   "Activity",
			Version: h.renderer.version,
			Nav:     "activity",
			Library: library,
		},
		Entries: entries.Entries,
	})
}

// HandleDelete handles DELETE /transcripts/{id} — soft-delete one transcript.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("transcript ID is required"))
		return
	}

	result, err := ops.Delete(r.Context(), h.db, h.bus, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/transcripts")
		w.WriteHeader(http.StatusOK)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": result.Deleted,
			"id":      result.ID,
		})
		return
	}

	http.Redirect(w, r, "/transcripts", http.StatusFound)
}

// HandleProtect handles POST /transcripts/protect — set or clear the
// protection flag on the posted IDs.
func (h *Handlers) HandleProtect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.ProtectInput{
		Library:   r.FormValue("library"),
		IDs:       r.Form["id"],
		Protected: r.FormValue("protected") != "false",
	}

	result, err := ops.Protect(r.Context(), h.db, h.bus, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		writeFragment(w, result.Message)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/transcripts/duplicates", http.StatusFound)
}

// HandleBulkDelete handles POST /transcripts/bulk-delete.
func (h *Handlers) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.BulkDeleteInput{
		Library: r.FormValue("library"),
		IDs:     r.Form["id"],
	}

	result, err := ops.BulkDelete(r.Context(), h.db, h.bus, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		writeFragment(w, result.Message)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/transcripts/duplicates", http.StatusFound)
}

// HandlePolicyForm handles GET /policy — show the retention policy form.
func (h *Handlers) HandlePolicyForm(w http.ResponseWriter, r *http.Request) {
	library := queryLibrary(r)

	result, err := ops.PolicyGet(r.Context(), h.db, ops.PolicyGetInput{Library: library})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "policy", PolicyPageData{
		PageData: PageData{
			Title:   "Retention policy",
			Version: h.renderer.version,
			Nav:     "policy",
			Library: library,
		},
		Policy: *result,
	})
}

// HandlePolicySave handles POST /policy — validate and save the policy.
func (h *Handlers) HandlePolicySave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	days, err := strconv.Atoi(r.FormValue("age_threshold_days"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidPolicy("age_threshold_days", "age_threshold_days must be an integer"))
		return
	}

	library := r.FormValue("library")
	input := ops.PolicySaveInput{
		Library:          library,
		Enabled:          r.FormValue("enabled") == "true",
		KeepLatest:       r.FormValue("keep_latest") == "true",
		AgeThresholdDays: days,
		Schedule:         r.FormValue("schedule"),
	}

	result, err := ops.PolicySave(r.Context(), h.db, h.bus, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	saved, err := ops.PolicyGet(r.Context(), h.db, ops.PolicyGetInput{Library: library})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderer.renderPage(w, r, "policy", PolicyPageData{
		PageData: PageData{
			Title:   "Retention policy",
			Version: h.renderer.version,
			Nav:     "policy",
			Library: queryOrFormLibrary(library),
		},
		Policy:  *saved,
		Message: "Policy saved",
	})
}

// HandleCleanupPreview handles POST /cleanup/preview — dry-run classification.
func (h *Handlers) HandleCleanupPreview(w http.ResponseWriter, r *http.Request) {
	h.handleCleanup(w, r, true)
}

// HandleCleanupApply handles POST /cleanup/apply — apply the retention policy
// now. Requires confirm=true.
func (h *Handlers) HandleCleanupApply(w http.ResponseWriter, r *http.Request) {
	h.handleCleanup(w, r, false)
}

func (h *Handlers) handleCleanup(w http.ResponseWriter, r *http.Request, preview bool) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.CleanupInput{Library: r.FormValue("library")}

	var (
		result *ops.CleanupOutput
		err    error
	)
	if preview {
		result, err = ops.CleanupPreview(r.Context(), h.db, input)
	} else {
		if r.FormValue("confirm") != "true" {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
			return
		}
		result, err = ops.CleanupApply(r.Context(), h.db, h.bus, input)
	}
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		writeFragment(w, result.Message)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/transcripts/report", http.StatusFound)
}

// HandleStats handles GET /api/stats — dashboard numbers as JSON.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	library := queryLibrary(r)

	result, err := ops.Stats(r.Context(), h.db, ops.StatsInput{Library: library})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, result)
}

// HandleEvents handles GET /events — server-sent change notifications. The
// dashboard listens here to refresh views after mutations.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if h.bus == nil {
		http.Error(w, "events unavailable", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.bus.Subscribe()
	defer h.bus.Unsubscribe(ch)

	library := queryLibrary(r)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			if change.Library != "" && change.Library != library {
				continue
			}
			fmt.Fprintf(w, "event: %s\n", change.Op)
			fmt.Fprintf(w, "data: {\"library\":%q,\"count\":%d}\n\n", change.Library, change.Count)
			flusher.Flush()
		}
	}
}

func writeFragment(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="action-result">` + template.HTMLEscapeString(message) + `</div>`))
}

// queryLibrary reads the library query parameter, defaulting to "default".
func queryLibrary(r *http.Request) string {
	library := r.URL.Query().Get("library")
	if library == "" {
		library = "default"
	}
	return library
}

func queryOrFormLibrary(library string) string {
	if library == "" {
		return "default"
	}
	return library
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

// ptrString returns a pointer to s if non-empty, nil otherwise.
func ptrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
