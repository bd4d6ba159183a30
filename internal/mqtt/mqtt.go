// Package mqtt forwards Execute now activity from the event bus to an MQTT
// broker so that external dashboards can follow requests and results.
package mqtt

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/HerbHall/pollnow/internal/pulse"
	"github.com/HerbHall/pollnow/pkg/plugin"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin        = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
)

// publisher is the subset of pahomqtt.Client the module uses.
type publisher interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

// Module implements the MQTT publisher plugin.
type Module struct {
	logger *zap.Logger
	cfg    Config
	bus    plugin.Subscriber
	unsubs []func()

	mu     sync.RWMutex
	client publisher
}

// New creates a new MQTT publisher plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:         "mqtt",
		Version:      "0.1.0",
		Description:  "Publishes Execute now requests and results to an MQTT broker",
		Dependencies: []string{"pulse"},
		Roles:        []string{"integration"},
		APIVersion:   plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.cfg = DefaultConfig()
	if deps.Bus != nil {
		m.bus = deps.Bus
	}

	if deps.Config != nil {
		if u := deps.Config.GetString("broker_url"); u != "" {
			m.cfg.BrokerURL = u
		}
		if u := deps.Config.GetString("username"); u != "" {
			m.cfg.Username = u
		}
		if p := deps.Config.GetString("password"); p != "" {
			m.cfg.Password = p
		}
		if c := deps.Config.GetString("client_id"); c != "" {
			m.cfg.ClientID = c
		}
		if t := deps.Config.GetString("topic_prefix"); t != "" {
			m.cfg.TopicPrefix = t
		}
		if deps.Config.IsSet("qos") {
			m.cfg.QoS = byte(deps.Config.GetInt("qos"))
		}
		if deps.Config.IsSet("retain") {
			m.cfg.Retain = deps.Config.GetBool("retain")
		}
		if deps.Config.IsSet("per_object") {
			m.cfg.PerObject = deps.Config.GetBool("per_object")
		}
		if d := deps.Config.GetDuration("timeout"); d > 0 {
			m.cfg.Timeout = d
		}
	}

	if m.cfg.BrokerURL == "" {
		m.logger.Warn("MQTT broker URL not configured; events will be dropped",
			zap.String("component", "mqtt"),
		)
	}

	m.logger.Info("mqtt module initialized",
		zap.String("broker_url", m.cfg.BrokerURL),
		zap.String("client_id", m.cfg.ClientID),
		zap.String("topic_prefix", m.cfg.TopicPrefix),
		zap.Uint8("qos", m.cfg.QoS),
	)
	return nil
}

func (m *Module) Start(_ context.Context) error {
	if m.bus != nil {
		m.unsubs = append(m.unsubs,
			m.bus.Subscribe(pulse.TopicExecuteRequested, m.publishEvent),
			m.bus.Subscribe(pulse.TopicExecuteCompleted, m.publishEvent),
		)
	}

	if m.cfg.BrokerURL == "" {
		m.logger.Info("mqtt module started (no-op: no broker configured)")
		return nil
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(m.cfg.BrokerURL).
		SetClientID(m.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(m.cfg.Timeout)

	if m.cfg.Username != "" {
		opts.SetUsername(m.cfg.Username)
		opts.SetPassword(m.cfg.Password) //nolint:gosec // G101: config field
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()

	switch {
	case !token.WaitTimeout(m.cfg.Timeout):
		m.logger.Warn("mqtt connection timed out; will reconnect in background")
	case token.Error() != nil:
		m.logger.Warn("mqtt connection failed; will reconnect in background",
			zap.Error(token.Error()),
		)
	default:
		m.logger.Info("mqtt connected to broker",
			zap.String("broker_url", m.cfg.BrokerURL),
		)
	}

	m.mu.Lock()
	m.client = client
	m.mu.Unlock()
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		// Also cancels a pending connect retry loop.
		m.client.Disconnect(250)
		m.client = nil
		m.logger.Info("mqtt disconnected")
	}
	return nil
}

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	if m.cfg.BrokerURL == "" {
		return plugin.HealthStatus{
			Status:  "healthy",
			Message: "no broker configured (no-op mode)",
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.client == nil || !m.client.IsConnected() {
		return plugin.HealthStatus{
			Status:  "degraded",
			Message: "not connected to MQTT broker",
		}
	}
	return plugin.HealthStatus{
		Status:  "healthy",
		Message: "connected to " + m.cfg.BrokerURL,
	}
}

// mqttTopicFromEvent maps an event bus topic to an MQTT topic path.
func (m *Module) mqttTopicFromEvent(eventTopic string) string {
	switch eventTopic {
	case pulse.TopicExecuteRequested:
		return m.cfg.TopicPrefix + "/execute/requested"
	case pulse.TopicExecuteCompleted:
		return m.cfg.TopicPrefix + "/execute/completed"
	default:
		return m.cfg.TopicPrefix + "/unknown"
	}
}

func (m *Module) publishEvent(_ context.Context, event plugin.Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.client == nil || !m.client.IsConnected() {
		return
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		m.logger.Warn("failed to marshal MQTT payload",
			zap.String("topic", event.Topic),
			zap.Error(err),
		)
		return
	}

	mqttTopic := m.mqttTopicFromEvent(event.Topic)
	if !m.publish(mqttTopic, m.cfg.Retain, payload) {
		return
	}
	m.logger.Debug("mqtt event published",
		zap.String("mqtt_topic", mqttTopic),
		zap.String("event_topic", event.Topic),
	)

	if m.cfg.PerObject && event.Topic == pulse.TopicExecuteCompleted {
		if ev, ok := completedEvent(event.Payload); ok && ev.ObjectID != "" {
			m.publish(m.cfg.TopicPrefix+"/object/"+ev.ObjectID+"/execute", true, payload)
		}
	}
}

// publish sends one message and reports whether the broker acknowledged it
// within the configured timeout. Callers hold m.mu.
func (m *Module) publish(topic string, retained bool, payload []byte) bool {
	token := m.client.Publish(topic, m.cfg.QoS, retained, payload)
	if !token.WaitTimeout(m.cfg.Timeout) {
		m.logger.Warn("mqtt publish timed out", zap.String("mqtt_topic", topic))
		return false
	}
	if token.Error() != nil {
		m.logger.Warn("mqtt publish failed",
			zap.String("mqtt_topic", topic),
			zap.Error(token.Error()),
		)
		return false
	}
	return true
}

func completedEvent(payload any) (pulse.ExecuteCompletedEvent, bool) {
	switch v := payload.(type) {
	case pulse.ExecuteCompletedEvent:
		return v, true
	case *pulse.ExecuteCompletedEvent:
		if v == nil {
			return pulse.ExecuteCompletedEvent{}, false
		}
		return *v, true
	default:
		return pulse.ExecuteCompletedEvent{}, false
	}
}
