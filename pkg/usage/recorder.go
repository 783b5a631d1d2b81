// Package usage implements best-effort accounting of authenticated API
// calls. Recording never blocks a response and never surfaces a failure to
// the client.
package usage

import (
	"context"
	"time"

	"github.com/edgechat/edgechat/pkg/async"
	"github.com/edgechat/edgechat/pkg/observability"
	"github.com/edgechat/edgechat/pkg/storage"
)

const (
	defaultWorkers   = 2
	defaultQueueSize = 256
	writeTimeout     = 5 * time.Second
)

// Recorder appends usage records through a bounded worker pool. When the
// queue is full or the write fails, the record is dropped and counted; the
// request that produced it is never affected.
type Recorder struct {
	store   storage.UsageStore
	pool    *async.WorkerPool
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewRecorder creates a recorder and starts its workers
func NewRecorder(store storage.UsageStore, logger *observability.Logger, metrics *observability.Metrics) *Recorder {
	return &Recorder{
		store:   store,
		pool:    async.NewWorkerPool(defaultWorkers, defaultQueueSize, "usage recording", writeTimeout, logger),
		logger:  logger,
		metrics: metrics,
	}
}

// Record enqueues one usage record. Returns immediately.
func (r *Recorder) Record(subjectID int64, path, method string) {
	record := storage.UsageRecord{
		SubjectID: subjectID,
		Path:      path,
		Method:    method,
		Timestamp: time.Now().UTC(),
	}

	err := r.pool.Submit(func(ctx context.Context) error {
		if err := r.store.Append(ctx, record); err != nil {
			r.metrics.UsageDroppedTotal.Inc()
			r.logger.WithError(err).Debug("usage record write failed")
			return nil // swallowed: accounting is telemetry
		}
		r.metrics.UsageRecordsTotal.Inc()
		return nil
	})
	if err != nil {
		r.metrics.UsageDroppedTotal.Inc()
		r.logger.WithError(err).Debug("usage record dropped")
	}
}

// Stats returns the aggregated usage for one subject
func (r *Recorder) Stats(ctx context.Context, subjectID int64) (storage.UsageStats, error) {
	return r.store.Stats(ctx, subjectID, time.Now().UTC())
}

// Close drains pending records
func (r *Recorder) Close(timeout time.Duration) error {
	return r.pool.Shutdown(timeout)
}
