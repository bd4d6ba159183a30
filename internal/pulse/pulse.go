// Package pulse is the monitoring plugin: it owns the object catalog, polls
// objects on their schedule and serves Execute now requests.
package pulse

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/HerbHall/pollnow/pkg/models"
	"github.com/HerbHall/pollnow/pkg/plugin"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin        = (*Module)(nil)
	_ plugin.HTTPProvider  = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
)

// Module implements the Pulse plugin.
type Module struct {
	logger *zap.Logger
	cfg    PulseConfig
	bus    plugin.EventBus

	store      *PulseStore
	catalog    *Catalog
	poller     *Poller
	dispatcher *Dispatcher
	scheduler  *Scheduler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Pulse plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "pulse",
		Version:     "0.1.0",
		Description: "Object catalog, scheduled polling and Execute now",
		Roles:       []string{"monitoring", "execution"},
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(ctx context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.bus = deps.Bus

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("pulse config: %w", err)
		}
	}
	m.cfg = m.cfg.withDefaults()

	if deps.Store != nil {
		if err := deps.Store.Migrate(ctx, "pulse", Migrations()); err != nil {
			return fmt.Errorf("pulse migrations: %w", err)
		}
		m.store = NewPulseStore(deps.Store.DB())
		m.catalog = NewCatalog(m.store)
		m.poller = NewPoller(m.store, m.cfg, m.logger)
		m.dispatcher = NewDispatcher(m.store, m.poller, m.bus, m.cfg, m.logger)
		m.scheduler = NewScheduler(m.store, m.scheduledPoll, m.cfg.CheckInterval, m.cfg.MaxWorkers, m.logger)
	}

	m.logger.Info("pulse module initialized",
		zap.Duration("check_interval", m.cfg.CheckInterval),
		zap.Int("max_workers", m.cfg.MaxWorkers),
		zap.Int("queue_size", m.cfg.QueueSize),
		zap.Bool("persistent", m.store != nil),
	)
	return nil
}

func (m *Module) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(context.WithoutCancel(ctx))
	if m.store != nil {
		if err := m.dispatcher.Recover(m.ctx); err != nil {
			m.logger.Warn("could not fail leftover execute tasks", zap.Error(err))
		}
		m.dispatcher.Start(m.ctx)
		m.scheduler.Start(m.ctx)
		m.startMaintenance()
	}
	m.logger.Info("pulse module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
	if m.dispatcher != nil {
		m.dispatcher.Stop()
	}
	m.wg.Wait()
	if m.logger != nil {
		m.logger.Info("pulse module stopped")
	}
	return nil
}

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	if m.store == nil || m.dispatcher == nil {
		return plugin.HealthStatus{Status: "degraded", Message: "running without persistence"}
	}
	queued, capacity := m.dispatcher.Pending()
	status := plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"queued":    strconv.Itoa(queued),
			"capacity":  strconv.Itoa(capacity),
			"scheduler": strconv.FormatBool(m.scheduler.Running()),
		},
	}
	if queued >= capacity {
		status.Status = "degraded"
		status.Message = "execute queue is full"
	}
	return status
}

// Store returns the catalog store, or nil when running without persistence.
func (m *Module) Store() *PulseStore {
	return m.store
}

// Catalog returns the object catalog, or nil when running without persistence.
func (m *Module) Catalog() *Catalog {
	return m.catalog
}

func (m *Module) scheduledPoll(ctx context.Context, obj models.MonitoredObject) {
	if _, err := m.poller.Poll(ctx, obj); err != nil {
		m.logger.Warn("scheduled poll failed", zap.String("object_id", obj.ID), zap.Error(err))
	}
}
