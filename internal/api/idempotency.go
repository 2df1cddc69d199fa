package api

import (
	"bytes"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	idempotencyHeader         = "Idempotency-Key"
	defaultIdempotencyEntries = 1024
)

type cachedResponse struct {
	status int
	body   []byte
}

// idempotencyEntry is a keyed request that is either in flight or done.
// resp and stored are only read after done is closed.
type idempotencyEntry struct {
	done   chan struct{}
	resp   cachedResponse
	stored bool
}

// idempotencyCache remembers the responses of recent keyed mutations so a
// replayed request is answered without running twice. Oldest keys are
// evicted first; keys still in flight are never evicted.
type idempotencyCache struct {
	mu      sync.Mutex
	max     int
	order   []string
	entries map[string]*idempotencyEntry
}

func newIdempotencyCache(max int) *idempotencyCache {
	return &idempotencyCache{max: max, entries: map[string]*idempotencyEntry{}}
}

// reserve returns the entry for key. owner is true when the key was free and
// the caller now holds it in flight; the caller must then call finish.
func (c *idempotencyCache) reserve(key string) (entry *idempotencyEntry, owner bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e, false
	}
	e := &idempotencyEntry{done: make(chan struct{})}
	c.entries[key] = e
	return e, true
}

// finish completes a reservation. With store false the key is released so a
// retry runs the request again.
func (c *idempotencyCache) finish(key string, e *idempotencyEntry, resp cachedResponse, store bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(e.done)
	if !store {
		delete(c.entries, key)
		return
	}
	e.resp, e.stored = resp, true
	c.order = append(c.order, key)
	for len(c.order) > c.max {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
}

// idempotent replays the stored response for a repeated Idempotency-Key on
// mutating requests. A repeat that arrives while the first is still running
// waits for it. Server errors are not stored.
func (s *Server) idempotent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
		if key == "" || r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		key = r.Method + " " + r.URL.Path + " " + key

		for {
			entry, owner := s.idem.reserve(key)
			if owner {
				s.serveReserved(w, r, next, key, entry)
				return
			}
			select {
			case <-entry.done:
			case <-r.Context().Done():
				return
			}
			if entry.stored {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(entry.resp.status)
				_, _ = w.Write(entry.resp.body)
				return
			}
		}
	})
}

func (s *Server) serveReserved(w http.ResponseWriter, r *http.Request, next http.Handler, key string, entry *idempotencyEntry) {
	var buf bytes.Buffer
	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	ww.Tee(&buf)

	// A panicking handler leaves status at 500, which releases the key.
	status := http.StatusInternalServerError
	defer func() {
		s.idem.finish(key, entry, cachedResponse{status: status, body: buf.Bytes()}, status < http.StatusInternalServerError)
	}()

	next.ServeHTTP(ww, r)
	status = ww.Status()
	if status == 0 {
		status = http.StatusOK
	}
}
