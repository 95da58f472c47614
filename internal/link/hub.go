// Package link synchronizes viewer control state across processes. A Hub
// serves a small HTTP API holding named trait values with a revision
// counter; Clients mirror a local AppLinker's shared traits against it.
package link

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const watchTimeout = 25 * time.Second

// Hub is the shared state server. Values are keyed "component/trait" and
// every effective change bumps the revision, waking long-poll watchers.
type Hub struct {
	mu       sync.Mutex
	values   map[string]string
	revision int64
	watchers map[chan struct{}]bool
	log      *logrus.Entry
}

func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		values:   make(map[string]string),
		watchers: make(map[chan struct{}]bool),
		log:      log.WithField("component", "link-hub"),
	}
}

// State is the hub's versioned value map as served to clients.
type State struct {
	Revision int64             `json:"revision"`
	Values   map[string]string `json:"values"`
}

type successResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Hub) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", h.corsMiddleware(h.health))
	mux.HandleFunc("/api/state/get", h.corsMiddleware(h.getState))
	mux.HandleFunc("/api/state/set", h.corsMiddleware(h.setState))
	mux.HandleFunc("/api/state/watch", h.corsMiddleware(h.watchState))
	return mux
}

func (h *Hub) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func (h *Hub) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Warn("encode response")
	}
}

func (h *Hub) writeError(w http.ResponseWriter, status int, err, message string) {
	h.writeJSON(w, status, errorResponse{Error: err, Message: message})
}

func (h *Hub) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}
	h.mu.Lock()
	info := map[string]interface{}{
		"status":   "healthy",
		"service":  "topoviz-link-hub",
		"revision": h.revision,
		"traits":   len(h.values),
	}
	h.mu.Unlock()
	h.writeJSON(w, http.StatusOK, successResponse{Success: true, Data: info})
}

func (h *Hub) getState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}
	h.writeJSON(w, http.StatusOK, successResponse{Success: true, Data: h.snapshot()})
}

func (h *Hub) setState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only POST method is allowed")
		return
	}
	var req struct {
		Values map[string]string `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Failed to parse JSON: "+err.Error())
		return
	}
	if len(req.Values) == 0 {
		h.writeError(w, http.StatusBadRequest, "empty_update", "No trait values in request")
		return
	}

	changed := h.apply(req.Values)
	if changed {
		h.log.WithField("traits", len(req.Values)).Debug("state updated")
	}
	h.writeJSON(w, http.StatusOK, successResponse{Success: true, Data: h.snapshot()})
}

// watchState long-polls: it answers as soon as the revision exceeds the
// client's ?since value, or with the unchanged state after a timeout.
func (h *Hub) watchState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed")
		return
	}
	var since int64
	if s := r.URL.Query().Get("since"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_since", "since must be an integer")
			return
		}
		since = n
	}

	h.mu.Lock()
	if h.revision > since {
		h.mu.Unlock()
		h.writeJSON(w, http.StatusOK, successResponse{Success: true, Data: h.snapshot()})
		return
	}
	wake := make(chan struct{})
	h.watchers[wake] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.watchers, wake)
		h.mu.Unlock()
	}()

	timer := time.NewTimer(watchTimeout)
	defer timer.Stop()
	select {
	case <-wake:
	case <-timer.C:
	case <-r.Context().Done():
		return
	}
	h.writeJSON(w, http.StatusOK, successResponse{Success: true, Data: h.snapshot()})
}

func (h *Hub) apply(values map[string]string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	changed := false
	for k, v := range values {
		if cur, ok := h.values[k]; !ok || cur != v {
			h.values[k] = v
			changed = true
		}
	}
	if changed {
		h.revision++
		for wake := range h.watchers {
			close(wake)
		}
		h.watchers = make(map[chan struct{}]bool)
	}
	return changed
}

func (h *Hub) snapshot() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	values := make(map[string]string, len(h.values))
	for k, v := range h.values {
		values[k] = v
	}
	return State{Revision: h.revision, Values: values}
}
