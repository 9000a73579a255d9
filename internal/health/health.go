// Package health answers the liveness and readiness probes served on the
// diagnostics listener alongside /metrics.
//
// Liveness (/healthz) only proves the process can still answer HTTP.
// Readiness (/readyz) re-probes murmur's runtime dependencies on every
// request: the whisper model file and the audio input devices. All checkers
// run concurrently under one shared deadline, and the endpoint answers 503
// as soon as any dependency is unusable. Bodies are JSON so a probe failure
// can be diagnosed with curl.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// readyDeadline bounds one whole /readyz evaluation across all checkers.
const readyDeadline = 5 * time.Second

// Checker probes one runtime dependency. Check returns nil when the
// dependency is usable and must respect ctx.
type Checker struct {
	// Name keys the checker's outcome in the JSON response.
	Name string

	Check func(ctx context.Context) error
}

// Handler answers the probe endpoints. Safe for concurrent use.
type Handler struct {
	checkers []Checker
}

// New builds a Handler over the given checkers.
func New(checkers ...Checker) *Handler {
	return &Handler{checkers: append([]Checker(nil), checkers...)}
}

// Register mounts the probes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz reports liveness. A process that reached this handler is alive,
// so it never fails.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, http.StatusOK, "ok", nil)
}

// Readyz runs every checker concurrently and reports 503 when any
// dependency is unavailable. Each outcome appears under its checker's name.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyDeadline)
	defer cancel()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]string, len(h.checkers))
		failed bool
	)
	for _, c := range h.checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome := "ok"
			err := c.Check(ctx)
			if err != nil {
				outcome = "fail: " + err.Error()
			}
			mu.Lock()
			checks[c.Name] = outcome
			failed = failed || err != nil
			mu.Unlock()
		}()
	}
	wg.Wait()

	if failed {
		h.respond(w, http.StatusServiceUnavailable, "fail", checks)
		return
	}
	h.respond(w, http.StatusOK, "ok", checks)
}

func (h *Handler) respond(w http.ResponseWriter, code int, status string, checks map[string]string) {
	body := struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}{Status: status, Checks: checks}

	buf, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "health: encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf)
}
