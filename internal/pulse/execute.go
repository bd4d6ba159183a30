package pulse

import (
	"context"
	"errors"
	"time"

	"github.com/HerbHall/pollnow/internal/execnow"
	"github.com/HerbHall/pollnow/pkg/plugin"
)

// ErrUnavailable is returned when the module runs without a store.
var ErrUnavailable = errors.New("pulse store not available")

// Execution is the result of an Execute now request: the eligibility
// decision plus the tasks dispatched for the eligible subset.
type Execution struct {
	Outcome execnow.Outcome
	Tasks   []Task
	// Selected counts the distinct objects in the request.
	Selected int
}

// TaskIDs returns the ids of the dispatched tasks.
func (e *Execution) TaskIDs() []string {
	ids := make([]string, len(e.Tasks))
	for i := range e.Tasks {
		ids[i] = e.Tasks[i].ID
	}
	return ids
}

// ExecuteNow resolves ids, decides eligibility and dispatches a poll for each
// eligible object. A rejected selection is returned as an Execution with a
// rejected Outcome and no error; errors are reserved for unknown objects,
// storage failures and a full queue.
func (m *Module) ExecuteNow(ctx context.Context, ids []string) (*Execution, error) {
	if m.catalog == nil {
		return nil, ErrUnavailable
	}
	objects, err := m.catalog.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	outcome := execnow.Evaluate(objects)

	exec := &Execution{Outcome: outcome, Selected: len(objects)}
	if outcome.Accepted() {
		exec.Tasks, err = m.dispatcher.Submit(ctx, outcome.Eligible)
		if errors.Is(err, ErrQueueFull) {
			observeQueueFull()
		}
		if err != nil {
			return nil, err
		}
	}
	observeOutcome(outcome)

	if m.bus != nil {
		m.bus.PublishAsync(context.WithoutCancel(ctx), plugin.Event{
			Topic:     TopicExecuteRequested,
			Source:    "pulse",
			Timestamp: time.Now().UTC(),
			Payload: ExecuteRequestedEvent{
				Outcome:  string(outcome.Kind),
				Message:  outcome.Message(),
				TaskIDs:  exec.TaskIDs(),
				Accepted: outcome.ActedUpon(),
				Filtered: len(outcome.Filtered),
			},
		})
	}
	return exec, nil
}
