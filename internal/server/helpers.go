package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"zeku/internal/domain/logger"
	"zeku/internal/models"
	"zeku/internal/queue"

	"github.com/go-chi/chi/v5"
)

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Pl.E("Failed to encode response: %v", err)
	}
}

// idParam reads the {id} path parameter, answering 400 when it is not a positive integer.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, fmt.Sprintf("invalid id %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// parseStatuses parses a comma separated status list. Names match case-insensitively.
func parseStatuses(raw string) ([]models.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var out []models.Status
	for part := range strings.SplitSeq(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		st, ok := models.LookupStatus(name)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", name)
		}
		out = append(out, st)
	}
	return out, nil
}

// pageParams reads ?offset= and ?limit=. Missing values are zero.
func pageParams(r *http.Request) (offset, limit int, err error) {
	q := r.URL.Query()
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset %q", v)
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, fmt.Errorf("invalid limit %q", v)
		}
	}
	return offset, limit, nil
}

type deleteResult struct {
	IDs         []int64          `json:"ids"`
	CacheFailed map[int64]string `json:"cache_failed,omitempty"`
}

// deleteResponse flattens cache errors for encoding.
func deleteResponse(res queue.DeleteResult) deleteResult {
	out := deleteResult{IDs: res.IDs}
	if out.IDs == nil {
		out.IDs = []int64{}
	}
	if len(res.CacheFailed) > 0 {
		out.CacheFailed = make(map[int64]string, len(res.CacheFailed))
		for id, err := range res.CacheFailed {
			out.CacheFailed[id] = err.Error()
		}
	}
	return out
}
