package audit

import (
	"context"
	"sync"
	"time"

	"atelierhq.io/internal/ids"
	"atelierhq.io/internal/obs"
)

const defaultWriteTimeout = 5 * time.Second

// Recorder writes decision records to a Store on a best-effort basis.
// A failed write is logged and counted, never surfaced back into the
// request path: availability wins over strict write-before-respond.
//
// In the default synchronous mode the write is attempted inline before the
// response leaves. WithAsync moves it to a single background worker with a
// bounded queue; that lowers request latency but an unflushed entry can be
// lost on crash, so compliance-bound deployments should stay synchronous.
type Recorder struct {
	store   Store
	stream  *Stream
	timeout time.Duration

	queue chan Record
	wg    sync.WaitGroup
	once  sync.Once
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithAsync switches the recorder to a buffered background writer.
func WithAsync(buffer int) RecorderOption {
	return func(r *Recorder) {
		if buffer <= 0 {
			buffer = 256
		}
		r.queue = make(chan Record, buffer)
	}
}

// WithStream publishes every recorded decision to the given live stream.
func WithStream(s *Stream) RecorderOption {
	return func(r *Recorder) {
		r.stream = s
	}
}

// WithWriteTimeout bounds each storage write attempt.
func WithWriteTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRecorder constructs a Recorder over the given store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store, timeout: defaultWriteTimeout}
	for _, opt := range opts {
		opt(r)
	}
	if r.queue != nil {
		r.wg.Add(1)
		go r.drain()
	}
	return r
}

// Record persists one audit record. It never returns an error and never
// panics into the caller; the decision that produced the record stands
// regardless of the outcome here.
func (r *Recorder) Record(ctx context.Context, rec Record) {
	if rec.ID == "" {
		rec.ID = ids.New()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	if r.queue != nil {
		select {
		case r.queue <- rec:
		default:
			obs.CountAuditWriteFailure()
			obs.Warn("audit queue full, record dropped", map[string]any{
				"record_id": rec.ID,
				"user_id":   rec.UserID,
				"resource":  rec.Resource,
			})
		}
		r.publish(rec)
		return
	}

	// The decision is already made; a client disconnect must not abort
	// the write, so detach from request cancellation.
	r.write(context.WithoutCancel(ctx), rec)
	r.publish(rec)
}

// Close stops the background writer, flushing queued records first.
// It is a no-op in synchronous mode.
func (r *Recorder) Close() {
	if r.queue == nil {
		return
	}
	r.once.Do(func() {
		close(r.queue)
	})
	r.wg.Wait()
}

func (r *Recorder) drain() {
	defer r.wg.Done()
	for rec := range r.queue {
		r.write(context.Background(), rec)
	}
}

func (r *Recorder) write(ctx context.Context, rec Record) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.store.Append(ctx, &rec); err != nil {
		obs.CountAuditWriteFailure()
		obs.Warn("audit write failed", map[string]any{
			"error":     err.Error(),
			"record_id": rec.ID,
			"user_id":   rec.UserID,
			"resource":  rec.Resource,
			"granted":   rec.AccessGranted,
		})
	}
}

func (r *Recorder) publish(rec Record) {
	if r.stream != nil {
		r.stream.Publish(rec)
	}
}
