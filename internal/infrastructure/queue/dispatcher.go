package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/staffhub/hr-portal/internal/api/metrics"
	"github.com/staffhub/hr-portal/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher routes leave decision events to a fixed set of workers using
// consistent hashing on the employee ID, so one employee's notifications are
// delivered in decision order. Enqueue is fire-and-forget: delivery failures
// are logged, never surfaced to the approver.
type Dispatcher struct {
	workers  []chan ports.LeaveDecisionEvent
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.LeaveDecisionEvent, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.LeaveDecisionEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its employee. The
// call never blocks: when the shard buffer is full (workers gone or stalled)
// the event is dropped and counted, so an approving request cannot hang on
// notification delivery.
func (d *Dispatcher) Enqueue(event ports.LeaveDecisionEvent) {
	idx := d.shardIndex(event.EmployeeID)
	select {
	case d.workers[idx] <- event:
	default:
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Warn().
			Str("request_id", event.RequestID).
			Str("employee_id", event.EmployeeID).
			Int("worker_id", idx).
			Msg("notification dropped, queue full")
	}
	metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps an employee ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(employeeID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(employeeID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.LeaveDecisionEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if err := d.notifier.Notify(ctx, event); err != nil {
				metrics.NotificationsTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("request_id", event.RequestID).
					Str("employee_id", event.EmployeeID).
					Int("worker_id", id).
					Msg("decision notification failed")
				continue
			}
			metrics.NotificationsTotal.WithLabelValues("delivered").Inc()
		}
	}
}
