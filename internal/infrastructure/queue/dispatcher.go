package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcity/complaints-api/internal/api/metrics"
	"github.com/smartcity/complaints-api/internal/core/domain"
	"github.com/smartcity/complaints-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	maxAttempts    = 3
	writeTimeout   = 5 * time.Second
)

// Dispatcher persists case audit events asynchronously. Events are routed to
// a fixed set of workers by hashing the case id, so the events of one case
// are written in the order they were recorded.
type Dispatcher struct {
	workers []chan domain.CaseEvent
	repo    ports.CaseEventRepository
	log     zerolog.Logger
	backoff time.Duration

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.CaseEventRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.CaseEvent, numWorkers),
		repo:    repo,
		log:     log,
		backoff: 100 * time.Millisecond,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.CaseEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers run until Stop drains them.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Record queues an event for persistence. It blocks only while the target
// worker's buffer is full. Events recorded after Stop are dropped and logged.
func (d *Dispatcher) Record(event domain.CaseEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		metrics.EventsErrorsTotal.WithLabelValues("dispatcher_stopped").Inc()
		d.log.Warn().Str("case_id", event.CaseID).Str("kind", string(event.Kind)).Msg("dispatcher stopped, dropping case event")
		return
	}

	idx := d.shardIndex(event.CaseID)
	d.workers[idx] <- event
	metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// Stop refuses new events, lets the workers drain what is already queued and
// waits for them to finish or for ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
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

// shardIndex maps a case id deterministically to a worker index.
func (d *Dispatcher) shardIndex(caseID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(caseID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan domain.CaseEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for event := range ch {
		metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

		start := time.Now()
		err := d.persist(event)
		metrics.EventPersistDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.EventsErrorsTotal.WithLabelValues("insert_failed").Inc()
			d.log.Error().Err(err).
				Str("case_id", event.CaseID).
				Str("event_id", event.ID).
				Int("worker_id", id).
				Msg("case event persistence failed")
			continue
		}
		metrics.EventsPersistedTotal.WithLabelValues(string(event.Kind)).Inc()
	}
}

// persist writes one event, retrying transient failures. Inserts are keyed by
// event id so a retry after an ambiguous failure cannot duplicate it.
func (d *Dispatcher) persist(event domain.CaseEvent) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err = d.repo.Insert(ctx, &event)
		cancel()
		if err == nil {
			return nil
		}
		if attempt < maxAttempts {
			time.Sleep(d.backoff * time.Duration(attempt))
		}
	}
	return err
}
