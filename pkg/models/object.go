package models

import "time"

// ObjectKind distinguishes monitored items from discovery rules.
type ObjectKind string

const (
	KindItem          ObjectKind = "item"
	KindDiscoveryRule ObjectKind = "discovery_rule"
)

// Valid reports whether k is a known object kind.
func (k ObjectKind) Valid() bool {
	return k == KindItem || k == KindDiscoveryRule
}

// ObjectType is the collection method of a monitored object.
type ObjectType string

const (
	TypeAgent       ObjectType = "agent"
	TypeSimple      ObjectType = "simple"
	TypeSNMP        ObjectType = "snmp"
	TypeInternal    ObjectType = "internal"
	TypeExternal    ObjectType = "external"
	TypeDBMonitor   ObjectType = "db_monitor"
	TypeIPMI        ObjectType = "ipmi"
	TypeSSH         ObjectType = "ssh"
	TypeTelnet      ObjectType = "telnet"
	TypeJMX         ObjectType = "jmx"
	TypeCalculated  ObjectType = "calculated"
	TypeHTTPAgent   ObjectType = "http_agent"
	TypeScript      ObjectType = "script"
	TypeAgentActive ObjectType = "agent_active"
	TypeTrapper     ObjectType = "trapper"
	TypeSNMPTrap    ObjectType = "snmp_trap"
	TypeLog         ObjectType = "log"
	TypeWeb         ObjectType = "web"
	TypeDependent   ObjectType = "dependent"
)

// typeCapabilities maps every known type to whether the server can poll it on demand.
// Push-only and synthetic types are false. TypeWeb is false so that web-scenario
// items are rejected both as direct targets and as masters.
var typeCapabilities = map[ObjectType]bool{
	TypeAgent:       true,
	TypeSimple:      true,
	TypeSNMP:        true,
	TypeInternal:    true,
	TypeExternal:    true,
	TypeDBMonitor:   true,
	TypeIPMI:        true,
	TypeSSH:         true,
	TypeTelnet:      true,
	TypeJMX:         true,
	TypeCalculated:  true,
	TypeHTTPAgent:   true,
	TypeScript:      true,
	TypeAgentActive: false,
	TypeTrapper:     false,
	TypeSNMPTrap:    false,
	TypeLog:         false,
	TypeWeb:         false,
	TypeDependent:   false,
}

// Valid reports whether t is a known object type.
func (t ObjectType) Valid() bool {
	_, ok := typeCapabilities[t]
	return ok
}

// Pollable reports whether objects of this type can be polled immediately.
// Unknown types are never pollable.
func (t ObjectType) Pollable() bool {
	return typeCapabilities[t]
}

// ObjectTypes returns every known type in a stable order.
func ObjectTypes() []ObjectType {
	return []ObjectType{
		TypeAgent, TypeSimple, TypeSNMP, TypeInternal, TypeExternal, TypeDBMonitor,
		TypeIPMI, TypeSSH, TypeTelnet, TypeJMX, TypeCalculated, TypeHTTPAgent, TypeScript,
		TypeAgentActive, TypeTrapper, TypeSNMPTrap, TypeLog, TypeWeb, TypeDependent,
	}
}

// MonitoredObject is an item or discovery rule defined on a host.
type MonitoredObject struct {
	ID     string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	HostID string     `json:"host_id"`
	Name   string     `json:"name" example:"I5-agent-txt"`
	Kind   ObjectKind `json:"kind" example:"item"`
	Type   ObjectType `json:"type" example:"agent"`
	Key    string     `json:"key,omitempty" example:"agent.ping"`
	// Target is the poll address: host:port for TCP-based types, a URL for
	// http_agent, an IP for simple checks.
	Target string `json:"target,omitempty" example:"10.0.0.5:10050"`

	// MasterID is set for dependent objects. MasterType is resolved by the
	// catalog and is empty for top-level objects.
	MasterID   string     `json:"master_id,omitempty"`
	MasterType ObjectType `json:"master_type,omitempty"`

	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDependent reports whether the object derives its value from a master item.
func (o *MonitoredObject) IsDependent() bool {
	return o.MasterID != ""
}

// Host groups monitored objects under one address.
type Host struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" example:"Host for execute now permissions"`
	Address   string    `json:"address" example:"10.0.0.5"`
	Group     string    `json:"group,omitempty" example:"HG-for-executenow"`
	CreatedAt time.Time `json:"created_at"`
}
