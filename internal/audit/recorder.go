// Package audit buffers completed assessments and publishes them to the
// audit trail in batches. Recording never blocks a prediction request: when
// the queue is full the record is dropped and counted.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/domain"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/observability"
)

// BatchWriter publishes multiple audit records to the destination.
type BatchWriter interface {
	WriteBatch(ctx context.Context, records []domain.AuditRecord) error
}

// Recorder accumulates audit records and flushes them in batches, either when
// a full batch has collected or when the flush interval elapses.
type Recorder struct {
	writer        BatchWriter
	logger        *slog.Logger
	metrics       *observability.Metrics
	queue         chan domain.AuditRecord
	batchSize     int
	flushInterval time.Duration
	running       atomic.Bool
}

// NewRecorder creates a Recorder. The queue holds four batches worth of
// records before Record starts dropping.
func NewRecorder(w BatchWriter, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration) *Recorder {
	return &Recorder{
		writer:        w,
		logger:        logger,
		metrics:       metrics,
		queue:         make(chan domain.AuditRecord, batchSize*4),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Record enqueues an audit record without blocking. Records are dropped when
// the queue is full so a slow broker never stalls request handling.
func (r *Recorder) Record(rec domain.AuditRecord) {
	select {
	case r.queue <- rec:
		r.metrics.AuditQueued.Inc()
	default:
		r.metrics.AuditDropped.Inc()
		r.logger.Warn("audit queue full, dropping record", "id", rec.ID)
	}
}

// CheckReadiness returns nil while the recorder loop is running.
func (r *Recorder) CheckReadiness(_ context.Context) error {
	if !r.running.Load() {
		return errors.New("audit recorder is not running")
	}
	return nil
}

// Run executes the batch publish loop until the context is cancelled. Any
// records still buffered at shutdown get one final best-effort flush.
func (r *Recorder) Run(ctx context.Context) error {
	r.logger.Info("audit recorder started", "batch_size", r.batchSize, "flush_interval", r.flushInterval)
	r.running.Store(true)
	r.metrics.RecorderRunning.Set(1)
	defer func() {
		r.running.Store(false)
		r.metrics.RecorderRunning.Set(0)
	}()

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.AuditRecord, 0, r.batchSize)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("audit recorder stopping", "reason", ctx.Err())
			r.finalFlush(batch)
			return nil

		case rec := <-r.queue:
			batch = append(batch, rec)
			if len(batch) >= r.batchSize {
				if !r.publish(ctx, batch) {
					r.finalFlush(batch)
					return nil
				}
				batch = batch[:0]
				ticker.Reset(r.flushInterval)
			}

		case <-ticker.C:
			if len(batch) == 0 {
				continue
			}
			if !r.publish(ctx, batch) {
				r.finalFlush(batch)
				return nil
			}
			batch = batch[:0]
		}
	}
}

// publish writes the batch, retrying with exponential backoff until it
// succeeds or the context is cancelled. Returns false if the recorder
// should stop.
func (r *Recorder) publish(ctx context.Context, batch []domain.AuditRecord) bool {
	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		err := r.writer.WriteBatch(ctx, batch)
		if err == nil {
			r.metrics.AuditPublished.Add(float64(len(batch)))
			r.metrics.AuditBatchSize.Observe(float64(len(batch)))
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		r.metrics.AuditErrors.Inc()
		r.logger.Error("audit batch write failed", "error", err, "batch_size", len(batch))

		if !sleepWithContext(ctx, backoff) {
			return false
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

// finalFlush drains the queue and makes one last write attempt on a short
// deadline, detached from the cancelled run context.
func (r *Recorder) finalFlush(batch []domain.AuditRecord) {
	for {
		select {
		case rec := <-r.queue:
			batch = append(batch, rec)
			continue
		default:
		}
		break
	}
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.writer.WriteBatch(ctx, batch); err != nil {
		r.metrics.AuditErrors.Inc()
		r.logger.Error("final audit flush failed", "error", err, "batch_size", len(batch))
		return
	}
	r.metrics.AuditPublished.Add(float64(len(batch)))
	r.metrics.AuditBatchSize.Observe(float64(len(batch)))
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
