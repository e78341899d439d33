package logbook

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// statusRecorder wraps http.ResponseWriter to capture the final status code
// and byte count of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

// AccessLogger returns middleware that records one LogEntry per completed
// request.
//
// The recorder is registered per request/response pair before control is
// delegated onward, and the entry is assembled only after the response has
// been written, so Status reflects the final response state. The Time field
// is the completion time, not arrival time.
//
// The assembled line is emitted on the diagnostic logger, then handed to
// the store from a goroutine: the middleware never blocks the response
// pipeline on log I/O, and a store failure is logged without affecting the
// already-completed response. mirror may be nil.
func AccessLogger(store *FileStore, mirror *Mirror, metrics *Metrics,
	logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				// Handler wrote neither header nor body.
				status = http.StatusOK
			}

			// r.UserAgent() returns "" when the header is absent, which
			// round-trips as an empty Agent field.
			entry := LogEntry{
				Agent:    SanitizeAgent(r.UserAgent()),
				Time:     time.Now().UTC().Format(TimeFormat),
				Method:   r.Method,
				Resource: r.URL.RequestURI(),
				Version:  r.Proto,
				Status:   status,
			}

			logger.Info("access", "line", entry.Line())

			metrics.Requests.Handled.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
			metrics.Requests.Duration.Observe(time.Since(start).Seconds())

			go func() {
				if err := store.Append(entry); err != nil {
					logger.Error("failed to append access log entry",
						"method", entry.Method,
						"resource", entry.Resource,
						"error", err)
				}
			}()

			if mirror != nil {
				mirror.Enqueue(entry)
			}
		})
	}
}
