package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/bdc/weather-api/metrics"
	"github.com/bdc/weather-api/models"
	"github.com/bdc/weather-api/repositories"
)

// Readiness reports whether the record store connection is established
type Readiness interface {
	Ready() bool
}

// RecorderOptions sizes the capture queue
type RecorderOptions struct {
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

// RequestLogRecorder persists captured requests off the request path.
// Records go through a bounded queue drained by a fixed set of workers;
// a full queue drops the record instead of blocking the caller.
type RequestLogRecorder struct {
	repo    repositories.RequestLogRepository
	ready   Readiness
	opts    RecorderOptions
	clock   clockwork.Clock
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	closed  bool
	queue   chan models.RequestLog
	wg      sync.WaitGroup
	started sync.Once
}

// NewRequestLogRecorder creates a recorder. Call Start before enqueueing.
func NewRequestLogRecorder(
	repo repositories.RequestLogRepository,
	ready Readiness,
	opts RecorderOptions,
	clock clockwork.Clock,
	logger *zap.Logger,
	m *metrics.Metrics,
) *RequestLogRecorder {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &RequestLogRecorder{
		repo:    repo,
		ready:   ready,
		opts:    opts,
		clock:   clock,
		logger:  logger,
		metrics: m,
		queue:   make(chan models.RequestLog, opts.QueueSize),
	}
}

// Start launches the workers
func (r *RequestLogRecorder) Start() {
	r.started.Do(func() {
		for i := 0; i < r.opts.Workers; i++ {
			r.wg.Add(1)
			go r.work()
		}
	})
}

// Enqueue stamps entry with an id and creation time and queues it for writing.
// It never blocks. It returns false when the record was not queued: the store
// is not ready, the recorder is closed, or the queue is full.
func (r *RequestLogRecorder) Enqueue(entry models.RequestLog) bool {
	if !r.ready.Ready() {
		r.metrics.CaptureOutcomes.WithLabelValues(metrics.CaptureSkipped).Inc()
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.metrics.CaptureOutcomes.WithLabelValues(metrics.CaptureSkipped).Inc()
		return false
	}

	entry.ID = uuid.NewString()
	entry.Timestamp = r.clock.Now().UTC()

	select {
	case r.queue <- entry:
		return true
	default:
		r.metrics.CaptureOutcomes.WithLabelValues(metrics.CaptureDropped).Inc()
		r.logger.Warn("request log queue full, dropping record",
			zap.String("endpoint", entry.Endpoint),
			zap.Int("status", entry.Status),
			zap.Int("queue_size", r.opts.QueueSize),
		)
		return false
	}
}

// Len returns the number of queued records
func (r *RequestLogRecorder) Len() int {
	return len(r.queue)
}

// Close stops intake and waits for queued records to be written or ctx to end
func (r *RequestLogRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *RequestLogRecorder) work() {
	defer r.wg.Done()

	for entry := range r.queue {
		r.write(entry)
	}
}

// write persists one record. Failures are logged and counted, never returned.
func (r *RequestLogRecorder) write(entry models.RequestLog) {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.WriteTimeout)
	defer cancel()

	if err := r.repo.Create(ctx, &entry); err != nil {
		r.metrics.CaptureOutcomes.WithLabelValues(metrics.CaptureFailed).Inc()
		r.logger.Error("failed to persist request log",
			zap.Error(err),
			zap.String("endpoint", entry.Endpoint),
			zap.String("method", entry.Method),
			zap.Int("status", entry.Status),
		)
		return
	}

	r.metrics.CaptureOutcomes.WithLabelValues(metrics.CaptureWritten).Inc()
}
