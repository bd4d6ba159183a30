package pulse

import (
	"context"
	"time"

	"github.com/HerbHall/pollnow/pkg/models"
)

// Checker polls a single target. A returned error always comes with a
// non-nil Result describing the failure.
type Checker interface {
	Check(ctx context.Context, target string) (*Result, error)
}

// Compile-time interface guard.
var _ Checker = (*NoopChecker)(nil)

// NoopChecker serves types whose value is computed by the server itself
// (internal, calculated, external, script). It records a synthetic success.
type NoopChecker struct{}

func (NoopChecker) Check(ctx context.Context, _ string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return &Result{ErrorMessage: err.Error(), CheckedAt: time.Now().UTC()}, err
	}
	return &Result{Success: true, Value: "ok", CheckedAt: time.Now().UTC()}, nil
}

// defaultCheckers maps every pollable type to the checker that serves it.
func defaultCheckers(cfg PulseConfig) map[models.ObjectType]Checker {
	tcp := NewTCPChecker(cfg.PollTimeout)
	noop := NoopChecker{}
	return map[models.ObjectType]Checker{
		models.TypeAgent:      tcp,
		models.TypeSSH:        tcp,
		models.TypeTelnet:     tcp,
		models.TypeJMX:        tcp,
		models.TypeIPMI:       tcp,
		models.TypeDBMonitor:  tcp,
		models.TypeSNMP:       tcp,
		models.TypeHTTPAgent:  NewHTTPChecker(cfg.PollTimeout),
		models.TypeSimple:     NewICMPChecker(cfg.PingCount, cfg.PollTimeout),
		models.TypeInternal:   noop,
		models.TypeCalculated: noop,
		models.TypeExternal:   noop,
		models.TypeScript:     noop,
	}
}
