package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/HerbHall/pollnow/pkg/models"
)

// NewHost returns a Host with sensible defaults, suitable for test fixtures.
func NewHost(opts ...func(*models.Host)) models.Host {
	h := models.Host{
		ID:        uuid.New().String(),
		Name:      "test-host",
		Address:   "127.0.0.1",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// WithHostName sets the host name.
func WithHostName(name string) func(*models.Host) {
	return func(h *models.Host) { h.Name = name }
}

// NewObject returns an enabled agent item with sensible defaults.
// Override individual fields with the With* options.
func NewObject(hostID string, opts ...func(*models.MonitoredObject)) models.MonitoredObject {
	now := time.Now().UTC().Truncate(time.Second)
	o := models.MonitoredObject{
		ID:        uuid.New().String(),
		HostID:    hostID,
		Name:      "test-object",
		Kind:      models.KindItem,
		Type:      models.TypeAgent,
		Key:       "agent.ping",
		Target:    "127.0.0.1:10050",
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithName sets the object name.
func WithName(name string) func(*models.MonitoredObject) {
	return func(o *models.MonitoredObject) { o.Name = name }
}

// WithKind sets the object kind.
func WithKind(k models.ObjectKind) func(*models.MonitoredObject) {
	return func(o *models.MonitoredObject) { o.Kind = k }
}

// WithType sets the object type.
func WithType(t models.ObjectType) func(*models.MonitoredObject) {
	return func(o *models.MonitoredObject) { o.Type = t }
}

// WithMaster makes the object a dependent of master. The master's type is
// copied into MasterType the way the catalog resolves it.
func WithMaster(master models.MonitoredObject) func(*models.MonitoredObject) {
	return func(o *models.MonitoredObject) {
		o.Type = models.TypeDependent
		o.MasterID = master.ID
		o.MasterType = master.Type
		o.Target = ""
	}
}

// WithTarget sets the poll target.
func WithTarget(target string) func(*models.MonitoredObject) {
	return func(o *models.MonitoredObject) { o.Target = target }
}
