package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"zeku/internal/app"
	"zeku/internal/domain/errs"
	"zeku/internal/enums"
	"zeku/internal/models"
	"zeku/internal/parsing"
	"zeku/internal/queue"
)

// addBody is the POST /downloads payload. URLs enqueues several links with
// the shared options of the embedded request.
type addBody struct {
	app.AddRequest
	URLs []string `json:"urls"`
	At   string   `json:"at"`
}

// handleListDownloads lists downloads in queue order. Query: status=a,b, offset, limit.
func (s *server) handleListDownloads(w http.ResponseWriter, r *http.Request) {
	statuses, err := parseStatuses(r.URL.Query().Get("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	offset, limit, err := pageParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	items, err := s.app.Store.DownloadStore().Page(r.Context(), offset, limit, statuses...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleAddDownloads enqueues one or more URLs.
func (s *server) handleAddDownloads(w http.ResponseWriter, r *http.Request) {
	var body addBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.At != "" {
		start, err := parsing.ParseStartTime(body.At, s.app.Clock().Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		body.StartTime = start
	}

	if len(body.URLs) > 0 {
		adms, err := s.app.AddAll(r.Context(), body.URLs, body.AddRequest)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, adms)
		return
	}

	adm, err := s.app.Add(r.Context(), body.AddRequest)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if adm.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, adm)
}

// handleDeleteDownloads deletes every download in ?status=..., or all of them with ?status=all.
func (s *server) handleDeleteDownloads(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		http.Error(w, "status query parameter required (use 'all' to delete everything)", http.StatusBadRequest)
		return
	}

	var (
		res queue.DeleteResult
		err error
	)
	if strings.EqualFold(raw, "all") {
		res, err = s.app.Queue.DeleteAll(r.Context())
	} else {
		statuses, perr := parseStatuses(raw)
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		res, err = s.app.Queue.DeleteByStatus(r.Context(), statuses...)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse(res))
}

// handleCounts returns the live queue counts.
func (s *server) handleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.app.Queue.Counts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// handleGetDownload returns one download.
func (s *server) handleGetDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	item, err := s.app.Store.DownloadStore().Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleDeleteDownload deletes one download and its cache.
func (s *server) handleDeleteDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	res, err := s.app.Queue.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse(res))
}

// handleLifecycle applies a status change to the download in the path.
func (s *server) handleLifecycle(apply func(context.Context, ...int64) (int64, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if _, err := s.app.Store.DownloadStore().Get(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		n, err := apply(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"changed": n})
	}
}

// handleReschedule moves a download's start time. Body: {"at": "in 2h"}.
func (s *server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var body struct {
		At string `json:"at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	start, err := parsing.ParseStartTime(body.At, s.app.Clock().Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.app.Queue.Reschedule(r.Context(), id, start); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListHistory lists history. Query: q, type, website, sort, desc.
func (s *server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.HistoryFilter{
		Query:   q.Get("q"),
		Website: q.Get("website"),
		Sort:    models.HistorySort(q.Get("sort")),
		Desc:    q.Get("desc") == "true",
	}
	if t := q.Get("type"); t != "" {
		filter.Type = enums.ParseMediaType(t)
	}

	items, err := s.app.Store.HistoryStore().List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleDeleteHistory deletes a history entry, and its files with ?delete_files=true.
func (s *server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	deleteFiles := r.URL.Query().Get("delete_files") == "true"
	if err := s.app.Store.HistoryStore().Delete(r.Context(), id, deleteFiles); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetLog returns a downloader log.
func (s *server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	l, err := s.app.Store.LogStore().Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleDispatcher reports the pending and running requests.
func (s *server) handleDispatcher(w http.ResponseWriter, _ *http.Request) {
	resp := struct {
		Pending    any `json:"pending"`
		Running    any `json:"running"`
		Superseded int `json:"superseded"`
	}{Superseded: s.app.Dispatcher.Superseded()}

	if req, ok := s.app.Dispatcher.Pending(); ok {
		resp.Pending = req
	}
	if req, ok := s.app.Dispatcher.Running(); ok {
		resp.Running = req
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, errs.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, errs.ErrInvalidTemplate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, fmt.Sprintf("internal server error: %v", err), http.StatusInternalServerError)
	}
}
