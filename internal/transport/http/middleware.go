package http

import (
	"log"
	"net/http"
	"time"

	"github.com/cimillas/neighbourhood-map/services/api/internal/auth"
)

// RequestLogger logs method, path, status, response size and latency, plus
// the user id once an inner auth.Middleware has verified it.
func RequestLogger(next http.Handler, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := auth.TrackUser(r.Context())
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		user := auth.UserID(ctx)
		if user == "" {
			user = "-"
		}
		logger.Printf(
			"request method=%s path=%s status=%d bytes=%d user=%s duration=%s",
			r.Method,
			r.URL.Path,
			rec.status,
			rec.bytes,
			user,
			time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}
