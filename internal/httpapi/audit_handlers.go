package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"atelierhq.io/internal/audit"
)

// handleAuditQuery serves the compliance search over recorded decisions.
func (a *API) handleAuditQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.authorize(w, r, PermAuditRead, nil) {
		return
	}

	filter, err := parseAuditFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	records, err := a.auditStore.Search(r.Context(), filter)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "audit search failed")
		return
	}
	if records == nil {
		records = []audit.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

func parseAuditFilter(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	filter := audit.Filter{
		UserID:         strings.TrimSpace(q.Get("user_id")),
		OrganizationID: strings.TrimSpace(q.Get("organization_id")),
	}

	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.Filter{}, errInvalidQueryParam("from")
		}
		filter.From = ts
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.Filter{}, errInvalidQueryParam("to")
		}
		filter.To = ts
	}
	if raw := strings.TrimSpace(q.Get("granted")); raw != "" {
		granted, err := strconv.ParseBool(raw)
		if err != nil {
			return audit.Filter{}, errInvalidQueryParam("granted")
		}
		filter.Granted = &granted
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			return audit.Filter{}, errInvalidQueryParam("limit")
		}
		filter.Limit = limit
	}
	return filter, nil
}

type queryParamError string

func (e queryParamError) Error() string { return "invalid query parameter: " + string(e) }

func errInvalidQueryParam(name string) error { return queryParamError(name) }

// handleAuditStream feeds live decisions over Server-Sent Events.
func (a *API) handleAuditStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if !a.authorize(w, r, PermAuditRead, nil) {
		return
	}
	if a.stream == nil {
		writeError(w, r, http.StatusServiceUnavailable, "streaming disabled")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := a.stream.Subscribe(ctx)

	// Initial comment establishes the stream before any event arrives.
	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	for rec := range ch {
		payload, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
	}
}
