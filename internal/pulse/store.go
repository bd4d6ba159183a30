package pulse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HerbHall/pollnow/pkg/models"
)

// Result is the outcome of a single poll of a monitored object.
type Result struct {
	ID           int64     `json:"id"`
	ObjectID     string    `json:"object_id"`
	HostID       string    `json:"host_id"`
	Success      bool      `json:"success"`
	Value        string    `json:"value,omitempty"`
	LatencyMs    float64   `json:"latency_ms"`
	PacketLoss   float64   `json:"packet_loss"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
}

// TaskStatus is the lifecycle state of an execute-now task.
type TaskStatus string

const (
	TaskQueued  TaskStatus = "queued"
	TaskRunning TaskStatus = "running"
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
)

// Task is one dispatched poll of one object.
type Task struct {
	ID        string     `json:"id"`
	ObjectID  string     `json:"object_id"`
	Status    TaskStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ObjectFilter narrows ListObjects. Empty fields match everything; Name
// matches as a substring.
type ObjectFilter struct {
	HostID string
	Kind   models.ObjectKind
	Name   string
}

// PulseStore provides database access for the Pulse plugin.
type PulseStore struct {
	db *sql.DB
}

// NewPulseStore creates a new PulseStore backed by the given database.
func NewPulseStore(db *sql.DB) *PulseStore {
	return &PulseStore{db: db}
}

// -- Hosts --

// InsertHost inserts a new host.
func (s *PulseStore) InsertHost(ctx context.Context, h *models.Host) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pulse_hosts (id, name, address, host_group, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		h.ID, h.Name, h.Address, h.Group, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert host: %w", err)
	}
	return nil
}

// GetHost returns a host by ID. Returns nil, nil if not found.
func (s *PulseStore) GetHost(ctx context.Context, id string) (*models.Host, error) {
	return s.getHost(ctx, `SELECT id, name, address, host_group, created_at FROM pulse_hosts WHERE id = ?`, id)
}

// GetHostByName returns a host by its unique name. Returns nil, nil if not found.
func (s *PulseStore) GetHostByName(ctx context.Context, name string) (*models.Host, error) {
	return s.getHost(ctx, `SELECT id, name, address, host_group, created_at FROM pulse_hosts WHERE name = ?`, name)
}

func (s *PulseStore) getHost(ctx context.Context, query, arg string) (*models.Host, error) {
	var h models.Host
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&h.ID, &h.Name, &h.Address, &h.Group, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get host: %w", err)
	}
	return &h, nil
}

// ListHosts returns all hosts ordered by name.
func (s *PulseStore) ListHosts(ctx context.Context) ([]models.Host, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, host_group, created_at FROM pulse_hosts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list hosts: %w", err)
	}
	defer rows.Close()

	var hosts []models.Host
	for rows.Next() {
		var h models.Host
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.Group, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan host row: %w", err)
		}
		hosts = append(hosts, h)
	}
	return hosts, rows.Err()
}

// -- Objects --

// objectColumns selects an object joined with its master so master_type is
// filled in one query. master_type stays empty when the master row is gone.
const objectColumns = `
	SELECT o.id, o.host_id, o.name, o.kind, o.type, o.item_key, o.target, o.master_id,
		COALESCE(m.type, ''), o.enabled, o.created_at, o.updated_at
	FROM pulse_objects o
	LEFT JOIN pulse_objects m ON m.id = o.master_id AND o.master_id != ''`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObject(row rowScanner) (models.MonitoredObject, error) {
	var o models.MonitoredObject
	var enabledInt int
	err := row.Scan(
		&o.ID, &o.HostID, &o.Name, &o.Kind, &o.Type, &o.Key, &o.Target, &o.MasterID,
		&o.MasterType, &enabledInt, &o.CreatedAt, &o.UpdatedAt,
	)
	o.Enabled = enabledInt != 0
	return o, err
}

// InsertObject inserts a new item or discovery rule.
func (s *PulseStore) InsertObject(ctx context.Context, o *models.MonitoredObject) error {
	enabled := 0
	if o.Enabled {
		enabled = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pulse_objects (
			id, host_id, name, kind, type, item_key, target, master_id, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.HostID, o.Name, string(o.Kind), string(o.Type), o.Key, o.Target, o.MasterID,
		enabled, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert object: %w", err)
	}
	return nil
}

// GetObject returns an object by ID with its master type resolved.
// Returns nil, nil if not found.
func (s *PulseStore) GetObject(ctx context.Context, id string) (*models.MonitoredObject, error) {
	o, err := scanObject(s.db.QueryRowContext(ctx, objectColumns+` WHERE o.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get object: %w", err)
	}
	return &o, nil
}

// ListObjects returns objects matching the filter, ordered by name.
func (s *PulseStore) ListObjects(ctx context.Context, f ObjectFilter) ([]models.MonitoredObject, error) {
	var where []string
	var args []any
	if f.HostID != "" {
		where = append(where, "o.host_id = ?")
		args = append(args, f.HostID)
	}
	if f.Kind != "" {
		where = append(where, "o.kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.Name != "" {
		where = append(where, "o.name LIKE ?")
		args = append(args, "%"+f.Name+"%")
	}
	query := objectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.name"
	return s.queryObjects(ctx, query, args...)
}

// ListPollableObjects returns enabled top-level objects whose type the server
// can poll. Dependent objects are refreshed through their master.
func (s *PulseStore) ListPollableObjects(ctx context.Context) ([]models.MonitoredObject, error) {
	all, err := s.queryObjects(ctx, objectColumns+` WHERE o.enabled = 1 AND o.master_id = '' ORDER BY o.created_at`)
	if err != nil {
		return nil, err
	}
	pollable := all[:0]
	for _, o := range all {
		if o.Type.Pollable() {
			pollable = append(pollable, o)
		}
	}
	return pollable, nil
}

func (s *PulseStore) queryObjects(ctx context.Context, query string, args ...any) ([]models.MonitoredObject, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	defer rows.Close()

	var objects []models.MonitoredObject
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan object row: %w", err)
		}
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// UpdateObjectEnabled sets the enabled state of an object.
func (s *PulseStore) UpdateObjectEnabled(ctx context.Context, id string, enabled bool) error {
	enabledInt := 0
	if enabled {
		enabledInt = 1
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE pulse_objects SET enabled = ?, updated_at = ? WHERE id = ?`,
		enabledInt, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update object enabled: %w", err)
	}
	return nil
}

// -- Results --

// InsertResult inserts a poll result.
func (s *PulseStore) InsertResult(ctx context.Context, r *Result) error {
	success := 0
	if r.Success {
		success = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pulse_results (
			object_id, host_id, success, value, latency_ms, packet_loss, error_message, checked_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ObjectID, r.HostID, success, r.Value, r.LatencyMs, r.PacketLoss,
		r.ErrorMessage, r.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ListResults returns poll results for an object, newest first.
// If limit <= 0, defaults to 100.
func (s *PulseStore) ListResults(ctx context.Context, objectID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, object_id, host_id, success, value, latency_ms, packet_loss, error_message, checked_at
		FROM pulse_results WHERE object_id = ? ORDER BY checked_at DESC, id DESC LIMIT ?`,
		objectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var successInt int
		var errMsg sql.NullString
		if err := rows.Scan(
			&r.ID, &r.ObjectID, &r.HostID, &successInt, &r.Value, &r.LatencyMs,
			&r.PacketLoss, &errMsg, &r.CheckedAt,
		); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		r.Success = successInt != 0
		r.ErrorMessage = errMsg.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// DeleteOldResults deletes results older than the given time.
// Returns the number of rows deleted.
func (s *PulseStore) DeleteOldResults(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pulse_results WHERE checked_at < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("delete old results: %w", err)
	}
	return result.RowsAffected()
}

// -- Tasks --

// InsertTask inserts a new execute-now task.
func (s *PulseStore) InsertTask(ctx context.Context, t *Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pulse_tasks (id, object_id, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.ObjectID, string(t.Status), t.Error, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// InsertTasks inserts a batch of tasks atomically.
func (s *PulseStore) InsertTasks(ctx context.Context, tasks []Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert tasks: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pulse_tasks (id, object_id, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert tasks: %w", err)
	}
	defer stmt.Close()

	for i := range tasks {
		t := &tasks[i]
		if _, err := stmt.ExecContext(ctx, t.ID, t.ObjectID, string(t.Status), t.Error, t.CreatedAt, t.UpdatedAt); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert tasks: %w", err)
	}
	return nil
}

// UpdateTaskStatus moves a task to a new status, recording an error message
// for failed tasks.
func (s *PulseStore) UpdateTaskStatus(ctx context.Context, id string, status TaskStatus, errMsg string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE pulse_tasks SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), errMsg, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return nil
}

// FailUnfinishedTasks marks every queued or running task as failed with
// reason. Used at startup for tasks a previous process never finished.
func (s *PulseStore) FailUnfinishedTasks(ctx context.Context, reason string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE pulse_tasks SET status = ?, error = ?, updated_at = ? WHERE status IN (?, ?)`,
		string(TaskFailed), reason, time.Now().UTC(), string(TaskQueued), string(TaskRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("fail unfinished tasks: %w", err)
	}
	return result.RowsAffected()
}

// GetTask returns a task by ID. Returns nil, nil if not found.
func (s *PulseStore) GetTask(ctx context.Context, id string) (*Task, error) {
	var t Task
	err := s.db.QueryRowContext(ctx, `
		SELECT id, object_id, status, error, created_at, updated_at FROM pulse_tasks WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.ObjectID, &t.Status, &t.Error, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

// DeleteOldTasks deletes finished tasks last updated before the given time.
// Queued and running tasks are kept. Returns the number of rows deleted.
func (s *PulseStore) DeleteOldTasks(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM pulse_tasks WHERE status IN (?, ?) AND updated_at < ?`,
		string(TaskDone), string(TaskFailed), before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old tasks: %w", err)
	}
	return result.RowsAffected()
}
