package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/videotube/videotube-api/internal/api/metrics"
	"github.com/videotube/videotube-api/internal/core/domain"
	"github.com/videotube/videotube-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	deleteTimeout  = 30 * time.Second
)

type cleanupJob struct {
	url      string
	publicID string
}

// Dispatcher deletes media that is no longer referenced on a fixed set of
// background workers. Jobs are sharded by public id so repeated deletes of the
// same file run in order on one worker.
type Dispatcher struct {
	workers []chan cleanupJob
	storage ports.MediaStorage
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, storage ports.MediaStorage, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan cleanupJob, numWorkers),
		storage: storage,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan cleanupJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// after Shutdown has drained their queue.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Discard schedules url for deletion. It never blocks: when the worker queue
// is full or the dispatcher is shut down the job is dropped and logged.
func (d *Dispatcher) Discard(url string) {
	publicID := domain.MediaPublicID(url)
	if publicID == "" {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(url, "dispatcher closed")
		return
	}

	idx := d.shardIndex(publicID)
	select {
	case d.workers[idx] <- cleanupJob{url: url, publicID: publicID}:
		metrics.MediaCleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(url, "queue full")
	}
}

// Shutdown stops accepting jobs and waits for the queued ones to finish or
// for ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) drop(url, reason string) {
	metrics.MediaCleanupTotal.WithLabelValues("dropped").Inc()
	d.log.Warn().Str("url", url).Str("reason", reason).Msg("media cleanup dropped")
}

// shardIndex maps a public id deterministically to a worker index.
func (d *Dispatcher) shardIndex(publicID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(publicID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan cleanupJob) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.MediaCleanupQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.process(ctx, id, job)
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, workerID int, job cleanupJob) {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	start := time.Now()
	deleted, err := d.storage.Delete(ctx, job.publicID)
	metrics.MediaCleanupDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.MediaCleanupTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("public_id", job.publicID).
			Int("worker_id", workerID).
			Msg("media cleanup failed")
	case !deleted:
		metrics.MediaCleanupTotal.WithLabelValues("not_found").Inc()
		d.log.Debug().Str("public_id", job.publicID).Msg("media already gone")
	default:
		metrics.MediaCleanupTotal.WithLabelValues("deleted").Inc()
		d.log.Debug().Str("public_id", job.publicID).Msg("media deleted")
	}
}
