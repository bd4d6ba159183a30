package pulse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HerbHall/pollnow/pkg/models"
	"go.uber.org/zap"
)

// ErrNoChecker is returned when no checker serves the object's poll type.
var ErrNoChecker = errors.New("type cannot be polled")

// Poller performs one poll of one object and stores the result.
type Poller struct {
	store    *PulseStore
	checkers map[models.ObjectType]Checker
	timeout  time.Duration
	logger   *zap.Logger
}

// NewPoller creates a poller with the default checker for every pollable type.
func NewPoller(store *PulseStore, cfg PulseConfig, logger *zap.Logger) *Poller {
	cfg = cfg.withDefaults()
	return &Poller{
		store:    store,
		checkers: defaultCheckers(cfg),
		timeout:  cfg.PollTimeout,
		logger:   logger,
	}
}

// SetChecker overrides the checker used for a type.
func (p *Poller) SetChecker(typ models.ObjectType, c Checker) {
	p.checkers[typ] = c
}

// Poll polls obj and records the result under obj's id. A dependent object
// is refreshed by polling its master's target with the master's type.
// A failed check is not an error: it is stored as an unsuccessful Result.
func (p *Poller) Poll(ctx context.Context, obj models.MonitoredObject) (*Result, error) {
	source := obj
	if obj.IsDependent() {
		master, err := p.store.GetObject(ctx, obj.MasterID)
		if err != nil {
			return nil, err
		}
		if master == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingMaster, obj.MasterID)
		}
		source = *master
	}

	checker, ok := p.checkers[source.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoChecker, source.Type)
	}

	checkCtx, cancel := context.WithTimeout(ctx, p.timeout+time.Second)
	defer cancel()

	start := time.Now()
	res, err := checker.Check(checkCtx, source.Target)
	elapsed := time.Since(start)
	if res == nil {
		if err == nil {
			err = errors.New("checker returned no result")
		}
		res = failedResult(elapsed, err)
	}
	if err != nil {
		p.logger.Debug("poll failed",
			zap.String("object_id", obj.ID),
			zap.String("type", string(source.Type)),
			zap.String("target", source.Target),
			zap.Error(err),
		)
	}
	observePoll(string(source.Type), res.Success, elapsed)

	res.ObjectID = obj.ID
	res.HostID = obj.HostID
	if err := p.store.InsertResult(ctx, res); err != nil {
		return res, err
	}
	return res, nil
}
