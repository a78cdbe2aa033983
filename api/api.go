// Package api serves a read-only HTTP view of a running engine.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rondo-audio/rondo/engine"
	"github.com/rondo-audio/rondo/report"
)

// Source is what the handler inspects. *engine.Engine implements it.
type Source interface {
	Status() engine.Status
	Track(i int) (engine.TrackStatus, bool)
	TrackByName(name string) (engine.TrackStatus, bool)
}

type handler struct {
	source   Source
	reporter *report.Reporter
}

func Err(w http.ResponseWriter, code int, err error) {
	w.WriteHeader(code)
	w.Write([]byte(err.Error()))
	fmt.Fprintln(os.Stderr, err)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func (h *handler) track(w http.ResponseWriter, r *http.Request) (engine.TrackStatus, bool) {
	id := mux.Vars(r)["id"]
	t, ok := h.source.TrackByName(id)
	if !ok {
		if i, err := strconv.Atoi(id); err == nil {
			t, ok = h.source.Track(i)
		}
	}
	if !ok {
		Err(w, http.StatusNotFound, fmt.Errorf("no track %q", id))
	}
	return t, ok
}

func (h *handler) handleStatusGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.source.Status())
}

func (h *handler) handleTracksGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.source.Status().Tracks)
}

func (h *handler) handleTrackGet(w http.ResponseWriter, r *http.Request) {
	if t, ok := h.track(w, r); ok {
		writeJSON(w, t)
	}
}

func (h *handler) handleTrackReportGet(w http.ResponseWriter, r *http.Request) {
	t, ok := h.track(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.reporter.Track(w, t); err != nil {
		Err(w, http.StatusInternalServerError, err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewHandler returns the routes:
//
//	GET /status              engine.Status as JSON
//	GET /tracks              every engine.TrackStatus as JSON
//	GET /tracks/{id}         one track, by name or index
//	GET /tracks/{id}/report  one track as a plain text report
func NewHandler(source Source) (http.Handler, error) {
	rep, err := report.New()
	if err != nil {
		return nil, err
	}
	h := &handler{source: source, reporter: rep}

	sr := mux.NewRouter()
	sr.HandleFunc("/status", h.handleStatusGet).Methods(http.MethodGet)
	sr.HandleFunc("/tracks", h.handleTracksGet).Methods(http.MethodGet)
	sr.HandleFunc("/tracks/{id}", h.handleTrackGet).Methods(http.MethodGet)
	sr.HandleFunc("/tracks/{id}/report", h.handleTrackReportGet).Methods(http.MethodGet)

	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.PathPrefix("/").Handler(sr)
	return r, nil
}
