package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bdc/weather-api/metrics"
	"github.com/bdc/weather-api/models"
	"github.com/bdc/weather-api/repositories/mocks"
)

type readyFlag struct{ atomic.Bool }

func (r *readyFlag) Ready() bool { return r.Load() }

func newReady(v bool) *readyFlag {
	r := &readyFlag{}
	r.Store(v)
	return r
}

func sampleEntry() models.RequestLog {
	return models.RequestLog{Endpoint: "/api/weather", Method: "GET", IP: "10.0.0.1", Status: 200, UserAgent: "test"}
}

func TestRecorder_WritesStampedEntry(t *testing.T) {
	repo := mocks.NewMockRequestLogRepository(t)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	m := metrics.NewNop()

	written := make(chan *models.RequestLog, 1)
	repo.EXPECT().Create(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, entry *models.RequestLog) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			written <- entry
		}).
		Return(nil).Once()

	rec := NewRequestLogRecorder(repo, newReady(true), RecorderOptions{QueueSize: 4, Workers: 1, WriteTimeout: time.Second}, clock, zap.NewNop(), m)
	rec.Start()

	require.True(t, rec.Enqueue(sampleEntry()))
	require.NoError(t, rec.Close(context.Background()))

	entry := <-written
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), entry.Timestamp)
	assert.Equal(t, "/api/weather", entry.Endpoint)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CaptureOutcomes.WithLabelValues(metrics.CaptureWritten)))
}

func TestRecorder_NotReadyIsNoop(t *testing.T) {
	repo := mocks.NewMockRequestLogRepository(t)
	m := metrics.NewNop()

	rec := NewRequestLogRecorder(repo, newReady(false), RecorderOptions{}, nil, zap.NewNop(), m)
	rec.Start()

	assert.False(t, rec.Enqueue(sampleEntry()))
	require.NoError(t, rec.Close(context.Background()))

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CaptureOutcomes.WithLabelValues(metrics.CaptureSkipped)))
}

func TestRecorder_FailureIsLoggedNotReturned(t *testing.T) {
	repo := mocks.NewMockRequestLogRepository(t)
	m := metrics.NewNop()
	core, logs := observer.New(zapcore.ErrorLevel)

	repo.EXPECT().Create(mock.Anything, mock.Anything).Return(errors.New("store unreachable")).Once()

	rec := NewRequestLogRecorder(repo, newReady(true), RecorderOptions{Workers: 1}, nil, zap.New(core), m)
	rec.Start()

	assert.True(t, rec.Enqueue(sampleEntry()))
	require.NoError(t, rec.Close(context.Background()))

	require.Equal(t, 1, logs.FilterMessage("failed to persist request log").Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CaptureOutcomes.WithLabelValues(metrics.CaptureFailed)))
}

func TestRecorder_FullQueueDrops(t *testing.T) {
	repo := mocks.NewMockRequestLogRepository(t)
	m := metrics.NewNop()

	// Workers are not started, so the queue only fills
	rec := NewRequestLogRecorder(repo, newReady(true), RecorderOptions{QueueSize: 2}, nil, zap.NewNop(), m)

	assert.True(t, rec.Enqueue(sampleEntry()))
	assert.True(t, rec.Enqueue(sampleEntry()))
	assert.False(t, rec.Enqueue(sampleEntry()))
	assert.Equal(t, 2, rec.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CaptureOutcomes.WithLabelValues(metrics.CaptureDropped)))

	repo.EXPECT().Create(mock.Anything, mock.Anything).Return(nil).Times(2)
	rec.Start()
	require.NoError(t, rec.Close(context.Background()))
	assert.Equal(t, 0, rec.Len())
}

func TestRecorder_EnqueueAfterClose(t *testing.T) {
	repo := mocks.NewMockRequestLogRepository(t)

	rec := NewRequestLogRecorder(repo, newReady(true), RecorderOptions{}, nil, zap.NewNop(), metrics.NewNop())
	rec.Start()
	require.NoError(t, rec.Close(context.Background()))
	require.NoError(t, rec.Close(context.Background()))

	assert.False(t, rec.Enqueue(sampleEntry()))
}

func TestRecorder_CloseHonoursContext(t *testing.T) {
	repo := mocks.NewMockRequestLogRepository(t)
	release := make(chan struct{})

	repo.EXPECT().Create(mock.Anything, mock.Anything).
		Run(func(ctx context.Context, entry *models.RequestLog) { <-release }).
		Return(nil).Once()

	rec := NewRequestLogRecorder(repo, newReady(true), RecorderOptions{Workers: 1}, nil, zap.NewNop(), metrics.NewNop())
	rec.Start()
	rec.Enqueue(sampleEntry())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rec.Close(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, rec.Close(context.Background()))
}
