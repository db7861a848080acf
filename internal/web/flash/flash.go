// Package flash implements one-shot messages that survive a redirect and are
// cleared once a page shows them.
package flash

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/mcoot/feedbackboard/internal/observability"
)

// Message categories understood by the layout
const (
	Success = "success"
	Danger  = "danger"
	Info    = "info"
)

// Message is a single flash message
type Message struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Store persists pending messages between requests
type Store interface {
	// Name identifies the backend in logs and metrics
	Name() string
	// Load returns the messages pending for the client making r
	Load(r *http.Request) ([]Message, error)
	// Save replaces the pending messages for the client. An empty slice clears them.
	// It is called before the response headers are written.
	Save(w http.ResponseWriter, r *http.Request, msgs []Message) error
}

// Queue is the per-request view of a client's pending messages
type Queue struct {
	pending []Message
	dirty   bool
}

// Add appends a message to be shown on the next rendered page
func (q *Queue) Add(category, text string) {
	q.pending = append(q.pending, Message{Category: category, Text: text})
	q.dirty = true
}

// Drain returns all pending messages and clears the queue
func (q *Queue) Drain() []Message {
	msgs := q.pending
	q.pending = nil
	if len(msgs) > 0 {
		q.dirty = true
	}
	return msgs
}

// Pending returns the messages without clearing them
func (q *Queue) Pending() []Message {
	return q.pending
}

type contextKey string

const queueContextKey contextKey = "flash"

// FromContext returns the request's queue. Outside the middleware it returns
// a detached queue so callers never need a nil check.
func FromContext(ctx context.Context) *Queue {
	if q, ok := ctx.Value(queueContextKey).(*Queue); ok {
		return q
	}
	return &Queue{}
}

// Middleware loads pending messages when a request starts and saves the
// queue just before the response headers go out
func Middleware(store Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := &Queue{}
			msgs, err := store.Load(r)
			if err != nil {
				observability.FlashStoreErrors.WithLabelValues(store.Name(), "load").Inc()
				logger.Warn("failed to load flash messages",
					slog.String("store", store.Name()),
					slog.String("error", err.Error()),
				)
			}
			q.pending = msgs

			r = r.WithContext(context.WithValue(r.Context(), queueContextKey, q))

			fw := &commitWriter{ResponseWriter: w}
			fw.commit = func() {
				if !q.dirty {
					return
				}
				if err := store.Save(w, r, q.pending); err != nil {
					observability.FlashStoreErrors.WithLabelValues(store.Name(), "save").Inc()
					logger.Warn("failed to save flash messages",
						slog.String("store", store.Name()),
						slog.String("error", err.Error()),
					)
				}
			}

			next.ServeHTTP(fw, r)
			fw.commitOnce()
		})
	}
}

// commitWriter runs commit exactly once, before the first header or body write
type commitWriter struct {
	http.ResponseWriter
	commit func()
	once   sync.Once
}

func (cw *commitWriter) commitOnce() {
	cw.once.Do(cw.commit)
}

// WriteHeader persists the queue and then writes the status code
func (cw *commitWriter) WriteHeader(status int) {
	cw.commitOnce()
	cw.ResponseWriter.WriteHeader(status)
}

// Write persists the queue before the implicit 200 header
func (cw *commitWriter) Write(b []byte) (int, error) {
	cw.commitOnce()
	return cw.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController
func (cw *commitWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
