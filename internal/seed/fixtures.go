// Package seed loads the Execute now fixture set: one host carrying items and
// discovery rules of every eligibility class, including dependent chains.
package seed

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/HerbHall/pollnow/internal/pulse"
	"github.com/HerbHall/pollnow/pkg/models"
	"github.com/google/uuid"
)

// Fixture names used by tests and the console walkthrough.
const (
	HostName    = "Host for execute now permissions"
	HostGroup   = "HG-for-executenow"
	WebScenario = "Web scenario for execute now"

	WebDownload = `Download speed for scenario "` + WebScenario + `".`
	WebError    = `Last error message of scenario "` + WebScenario + `".`
)

// fixture describes one object. A non-empty master names another fixture of
// kind item on the same host.
type fixture struct {
	name   string
	kind   models.ObjectKind
	typ    models.ObjectType
	key    string
	master string
}

// fixtures are ordered so every master precedes its dependents.
var fixtures = []fixture{
	{name: "I1-lvl1-agent-num", kind: models.KindItem, typ: models.TypeAgent, key: "I1-lvl1-agent-num"},
	{name: "I1-lvl2-dep-log", kind: models.KindItem, key: "I1-lvl2-dep-log", master: "I1-lvl1-agent-num"},
	{name: "I1-lvl3-dep-txt", kind: models.KindItem, key: "I1-lvl3-dep-txt", master: "I1-lvl1-agent-num"},
	{name: "I2-lvl1-trap-num", kind: models.KindItem, typ: models.TypeTrapper, key: "I2-lvl1-trap-num"},
	{name: "I2-lvl2-dep-log", kind: models.KindItem, key: "I2-lvl2-dep-log", master: "I2-lvl1-trap-num"},
	{name: "I2-lvl3-dep-txt", kind: models.KindItem, key: "I2-lvl3-dep-txt", master: "I2-lvl1-trap-num"},
	{name: WebDownload, kind: models.KindItem, typ: models.TypeWeb, key: "web.test.in[" + WebScenario + ",,bps]"},
	{name: WebError, kind: models.KindItem, typ: models.TypeWeb, key: "web.test.error[" + WebScenario + "]"},
	{name: "I3-web-dep", kind: models.KindItem, key: "I3-web-dep", master: WebDownload},
	{name: "I4-trap-log", kind: models.KindItem, typ: models.TypeTrapper, key: "I4-trap-log"},
	{name: "I5-agent-txt", kind: models.KindItem, typ: models.TypeAgent, key: "I5-agent-txt"},
	{name: "DR1-agent", kind: models.KindDiscoveryRule, typ: models.TypeAgent, key: "DR1-agent"},
	{name: "DR2-trap", kind: models.KindDiscoveryRule, typ: models.TypeTrapper, key: "DR2-trap"},
	{name: "DR3-I1-dep-agent", kind: models.KindDiscoveryRule, key: "DR3-I1-dep-agent", master: "I1-lvl1-agent-num"},
	{name: "DR4-I2-dep-trap", kind: models.KindDiscoveryRule, key: "DR4-I2-dep-trap", master: "I2-lvl1-trap-num"},
	{name: "DR5-web-dep", kind: models.KindDiscoveryRule, key: "DR5-web-dep", master: WebDownload},
}

// Result reports what a seed run did.
type Result struct {
	Host    *models.Host
	Objects map[string]models.MonitoredObject // keyed by name
	Created int
}

// SeedFixtures creates the fixture host and its objects. It is idempotent:
// the host is matched by name and objects by kind and name, so re-running
// only fills in what is missing. Agent objects poll address on the agent port.
func SeedFixtures(ctx context.Context, s *pulse.PulseStore, address string) (*Result, error) {
	if address == "" {
		address = "127.0.0.1"
	}
	now := time.Now().UTC().Truncate(time.Second)

	host, err := s.GetHostByName(ctx, HostName)
	if err != nil {
		return nil, fmt.Errorf("lookup host: %w", err)
	}
	if host == nil {
		host = &models.Host{
			ID:        uuid.New().String(),
			Name:      HostName,
			Address:   address,
			Group:     HostGroup,
			CreatedAt: now,
		}
		if err := s.InsertHost(ctx, host); err != nil {
			return nil, fmt.Errorf("seed host: %w", err)
		}
	}

	existing, err := s.ListObjects(ctx, pulse.ObjectFilter{HostID: host.ID})
	if err != nil {
		return nil, fmt.Errorf("list existing objects: %w", err)
	}
	res := &Result{Host: host, Objects: make(map[string]models.MonitoredObject, len(fixtures))}
	byKey := make(map[string]models.MonitoredObject, len(existing))
	for _, o := range existing {
		byKey[string(o.Kind)+"/"+o.Name] = o
	}

	for _, f := range fixtures {
		if o, ok := byKey[string(f.kind)+"/"+f.name]; ok {
			res.Objects[f.name] = o
			continue
		}

		o := models.MonitoredObject{
			ID:        uuid.New().String(),
			HostID:    host.ID,
			Name:      f.name,
			Kind:      f.kind,
			Type:      f.typ,
			Key:       f.key,
			Enabled:   true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if f.master != "" {
			master, ok := res.Objects[f.master]
			if !ok {
				return nil, fmt.Errorf("seed %s: master %q not seeded", f.name, f.master)
			}
			o.Type = models.TypeDependent
			o.MasterID = master.ID
			o.MasterType = master.Type
		} else if f.typ == models.TypeAgent {
			o.Target = net.JoinHostPort(host.Address, "10050")
		}

		if err := s.InsertObject(ctx, &o); err != nil {
			return nil, fmt.Errorf("seed %s: %w", f.name, err)
		}
		res.Objects[f.name] = o
		res.Created++
	}
	return res, nil
}
