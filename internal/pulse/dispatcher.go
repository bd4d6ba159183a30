package pulse

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/HerbHall/pollnow/pkg/models"
	"github.com/HerbHall/pollnow/pkg/plugin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrQueueFull is returned by Submit when the queue cannot hold the whole batch.
var ErrQueueFull = errors.New("execute queue is full")

const (
	// reasonShutdown is recorded on tasks abandoned by Stop.
	reasonShutdown = "cancelled by shutdown"
	// reasonRestart is recorded on tasks left unfinished by an earlier process.
	reasonRestart = "interrupted by restart"

	finalizeTimeout = 5 * time.Second
)

type job struct {
	task Task
	obj  models.MonitoredObject
}

// Dispatcher runs execute-now polls outside the regular schedule. Tasks are
// persisted before they are queued, and a fixed pool of workers drains the
// queue at a rate bounded by a token bucket.
type Dispatcher struct {
	store   *PulseStore
	poller  *Poller
	bus     plugin.EventBus
	limiter *rate.Limiter
	workers int
	logger  *zap.Logger

	submitMu sync.Mutex
	queue    chan job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. bus may be nil.
func NewDispatcher(store *PulseStore, poller *Poller, bus plugin.EventBus, cfg PulseConfig, logger *zap.Logger) *Dispatcher {
	cfg = cfg.withDefaults()
	return &Dispatcher{
		store:   store,
		poller:  poller,
		bus:     bus,
		limiter: rate.NewLimiter(rate.Limit(cfg.ExecuteRate), cfg.ExecuteBurst),
		workers: cfg.MaxWorkers,
		logger:  logger,
		queue:   make(chan job, cfg.QueueSize),
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start(ctx context.Context) {
	d.ctx, d.cancel = context.WithCancel(ctx)
	for range d.workers {
		d.wg.Add(1)
		go d.worker()
	}
}

// Recover fails tasks that an earlier process left queued or running. Call
// it before Start, while nothing has been submitted yet.
func (d *Dispatcher) Recover(ctx context.Context) error {
	n, err := d.store.FailUnfinishedTasks(ctx, reasonRestart)
	if err != nil {
		return err
	}
	if n > 0 {
		d.logger.Info("failed unfinished tasks from a previous run", zap.Int64("count", n))
	}
	return nil
}

// Stop cancels in-flight polls and waits for workers to exit. Interrupted
// and still queued tasks are marked failed.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()

	d.submitMu.Lock()
	defer d.submitMu.Unlock()
	for {
		select {
		case j := <-d.queue:
			d.abandon(j)
		default:
			return
		}
	}
}

// Pending returns the number of queued jobs and the queue capacity.
func (d *Dispatcher) Pending() (queued, capacity int) {
	return len(d.queue), cap(d.queue)
}

// Submit persists one queued task per object and enqueues them all, or none
// when the queue lacks room for the whole batch.
func (d *Dispatcher) Submit(ctx context.Context, objects []models.MonitoredObject) ([]Task, error) {
	d.submitMu.Lock()
	defer d.submitMu.Unlock()

	if len(objects) > cap(d.queue)-len(d.queue) {
		return nil, ErrQueueFull
	}

	now := time.Now().UTC()
	jobs := make([]job, len(objects))
	tasks := make([]Task, len(objects))
	for i, obj := range objects {
		tasks[i] = Task{
			ID:        uuid.NewString(),
			ObjectID:  obj.ID,
			Status:    TaskQueued,
			CreatedAt: now,
			UpdatedAt: now,
		}
		jobs[i] = job{task: tasks[i], obj: obj}
	}
	if err := d.store.InsertTasks(ctx, tasks); err != nil {
		return nil, err
	}

	// Only workers and Stop take from the queue, so the room checked above is still there.
	for _, j := range jobs {
		d.queue <- j
	}
	return tasks, nil
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case j := <-d.queue:
			d.run(j)
		}
	}
}

func (d *Dispatcher) run(j job) {
	if err := d.limiter.Wait(d.ctx); err != nil {
		d.abandon(j)
		return
	}
	log := d.logger.With(zap.String("task_id", j.task.ID), zap.String("object_id", j.obj.ID))

	if err := d.store.UpdateTaskStatus(d.ctx, j.task.ID, TaskRunning, ""); err != nil {
		log.Warn("failed to mark task running", zap.Error(err))
	}

	status, errMsg := TaskDone, ""
	res, err := d.poller.Poll(d.ctx, j.obj)
	switch {
	case err != nil:
		status, errMsg = TaskFailed, err.Error()
	case !res.Success:
		status, errMsg = TaskFailed, res.ErrorMessage
	}
	if d.ctx.Err() != nil {
		d.abandon(j)
		return
	}
	d.finish(d.ctx, j, status, errMsg)
}

// abandon fails a task the dispatcher will not complete. The write outlives
// the cancelled dispatcher context.
func (d *Dispatcher) abandon(j job) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(d.baseContext()), finalizeTimeout)
	defer cancel()
	d.finish(ctx, j, TaskFailed, reasonShutdown)
}

func (d *Dispatcher) baseContext() context.Context {
	if d.ctx == nil {
		return context.Background()
	}
	return d.ctx
}

// finish records the final status of a task and announces it.
func (d *Dispatcher) finish(ctx context.Context, j job, status TaskStatus, errMsg string) {
	log := d.logger.With(zap.String("task_id", j.task.ID), zap.String("object_id", j.obj.ID))
	if err := d.store.UpdateTaskStatus(ctx, j.task.ID, status, errMsg); err != nil {
		log.Warn("failed to update task status", zap.Error(err))
	}
	log.Debug("execute task finished", zap.String("status", string(status)))

	if d.bus != nil {
		d.bus.PublishAsync(context.WithoutCancel(ctx), plugin.Event{
			Topic:     TopicExecuteCompleted,
			Source:    "pulse",
			Timestamp: time.Now().UTC(),
			Payload: ExecuteCompletedEvent{
				TaskID:   j.task.ID,
				ObjectID: j.obj.ID,
				Status:   status,
				Success:  status == TaskDone,
				Error:    errMsg,
			},
		})
	}
}
