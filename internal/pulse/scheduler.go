package pulse

import (
	"context"
	"sync"
	"time"

	"github.com/HerbHall/pollnow/pkg/models"
	"go.uber.org/zap"
)

// PollFunc is called by the scheduler for each object due on the regular schedule.
type PollFunc func(ctx context.Context, obj models.MonitoredObject)

// Scheduler polls every pollable object on a fixed interval using a bounded
// worker pool. Execute-now requests bypass it through the Dispatcher.
type Scheduler struct {
	store    *PulseStore
	poll     PollFunc
	interval time.Duration
	workers  int
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that hands objects to poll.
func NewScheduler(store *PulseStore, poll PollFunc, interval time.Duration, workers int, logger *zap.Logger) *Scheduler {
	if workers <= 0 {
		workers = 1
	}
	return &Scheduler{
		store:    store,
		poll:     poll,
		interval: interval,
		workers:  workers,
		logger:   logger,
	}
}

// Start launches the scheduling loop in the background.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.tick()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop signals the scheduler to stop and waits for completion.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Running reports whether the scheduler loop is active.
func (s *Scheduler) Running() bool {
	return s.ctx != nil && s.ctx.Err() == nil
}

func (s *Scheduler) tick() {
	if s.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.interval)
	defer cancel()

	objects, err := s.store.ListPollableObjects(ctx)
	if err != nil {
		s.logger.Warn("scheduler: failed to load objects", zap.Error(err))
		return
	}

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

dispatch:
	for i := range objects {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(obj models.MonitoredObject) {
			defer wg.Done()
			defer func() { <-sem }()
			s.poll(ctx, obj)
		}(objects[i])
	}
	wg.Wait()
}
