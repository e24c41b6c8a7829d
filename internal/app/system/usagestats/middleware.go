// Package usagestats provides middleware for recording API usage statistics.
// Every tracked endpoint feeds the dashboard's usage charts through these
// counters.
package usagestats

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Sherifrax/speakup-sub001/internal/app/store/usage"
	"go.uber.org/zap"
)

// Recorder records API statistics into the usage store. It can be shared
// across handlers and supports dynamic bucket duration changes.
type Recorder struct {
	store          *usage.Store
	logger         *zap.Logger
	bucketDuration time.Duration
	mu             sync.RWMutex
}

// NewRecorder creates a usage stats recorder.
func NewRecorder(store *usage.Store, logger *zap.Logger, defaultBucketDuration time.Duration) *Recorder {
	if defaultBucketDuration <= 0 {
		defaultBucketDuration = time.Hour
	}
	return &Recorder{
		store:          store,
		logger:         logger,
		bucketDuration: defaultBucketDuration,
	}
}

// SetBucketDuration updates the bucket duration for new recordings.
// Safe to call concurrently.
func (r *Recorder) SetBucketDuration(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bucketDuration = d
}

// BucketDuration returns the current bucket duration.
func (r *Recorder) BucketDuration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bucketDuration
}

// Record records a single request's statistics asynchronously so the
// response is never blocked on the stats write.
func (r *Recorder) Record(statType usage.StatType, durationMs int64, isError bool) {
	r.mu.RLock()
	bucketDuration := r.bucketDuration
	r.mu.RUnlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := r.store.Record(ctx, statType, bucketDuration, durationMs, isError); err != nil {
			r.logger.Error("failed to record usage stats",
				zap.String("stat_type", string(statType)),
				zap.Error(err),
			)
		}
	}()
}

// Middleware returns HTTP middleware that records one stat per request for
// the given stat type. Wrap individual routes, not whole routers, so each
// endpoint gets its own series.
func Middleware(recorder *Recorder, statType usage.StatType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			durationMs := time.Since(start).Milliseconds()
			recorder.Record(statType, durationMs, wrapped.statusCode >= 400)
		})
	}
}

// responseWrapper captures the response status code for error counting.
type responseWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *responseWrapper) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWrapper) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
