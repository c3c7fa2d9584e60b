// Command icalsrv exposes the parser and a DTSTART-ordered event index
// over HTTP: POST iCalendar text in, query indexed events back out.
package main

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/Durelius/icalgo"
	"github.com/Durelius/icalgo/internal/calindex"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type server struct {
	logger *zap.Logger
	mu     sync.RWMutex
	byID   map[string]*calindex.EventIndex
}

func newServer(logger *zap.Logger) *server {
	return &server{logger: logger, byID: make(map[string]*calindex.EventIndex)}
}

type parseRequest struct {
	ID  string `json:"id"`
	ICS string `json:"ics"`
}

type parseResponse struct {
	ID         string   `json:"id"`
	Components int      `json:"components"`
	Warnings   []string `json:"warnings,omitempty"`
}

// handleParse implements POST /v1/parse: parses the posted iCalendar
// text leniently and indexes its events under req.ID for later range
// queries via handleEvents.
func (s *server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 16<<20))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	var req parseRequest
	if err := json.Unmarshal(body, &req); err != nil || req.ID == "" {
		http.Error(w, "expected JSON body {id, ics}", http.StatusBadRequest)
		return
	}

	p := ical.NewParser()
	cal, err := p.Parse(req.ICS)
	if err != nil {
		s.logger.Warn("parse failed", zap.String("id", req.ID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	idx := calindex.New(time.UTC)
	idx.Add(cal)

	s.mu.Lock()
	s.byID[req.ID] = idx
	s.mu.Unlock()

	resp := parseResponse{ID: req.ID, Components: idx.Len()}
	for _, wa := range p.GetWarnings() {
		resp.Warnings = append(resp.Warnings, wa.Error())
	}
	s.logger.Info("indexed calendar", zap.String("id", req.ID), zap.Int("components", idx.Len()))
	writeJSON(w, http.StatusOK, resp)
}

// handleEvents implements GET /v1/calendars/{id}/events?from=RFC3339&to=RFC3339.
func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.RLock()
	idx, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "unknown calendar id", http.StatusNotFound)
		return
	}

	from, to, err := parseRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events := idx.Occurrences(from, to)
	tuples := make([]interface{}, len(events))
	for i, e := range events {
		tuples[i] = e.ToTuple()
	}
	writeJSON(w, http.StatusOK, tuples)
}

func parseRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if fromRaw != "" {
		from, err = time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toRaw != "" {
		to, err = time.Parse(time.RFC3339, toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	s := newServer(logger)
	r := mux.NewRouter()
	r.HandleFunc("/v1/parse", s.handleParse).Methods(http.MethodPost)
	r.HandleFunc("/v1/calendars/{id}/events", s.handleEvents).Methods(http.MethodGet)

	addr := os.Getenv("ICALSRV_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	port, _ := strconv.Atoi(os.Getenv("ICALSRV_PORT"))
	if port > 0 {
		addr = ":" + strconv.Itoa(port)
	}

	logger.Info("icalsrv listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
