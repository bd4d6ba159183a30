package server

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the server section of the configuration.
type Config struct {
	Host      string          `mapstructure:"host"`
	Port      int             `mapstructure:"port"`
	DevMode   bool            `mapstructure:"dev_mode"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// Addr returns the listen address as host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LoadConfig reads configuration from file and environment variables.
// An explicit configPath must exist; otherwise pollnow.yaml is searched for
// and defaults apply when none is found.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("pollnow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/pollnow")
	}

	// PN_SERVER_PORT=9090 overrides server.port.
	v.SetEnvPrefix("PN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.dev_mode", false)
	v.SetDefault("server.rate_limit.rps", 100)
	v.SetDefault("server.rate_limit.burst", 200)
	v.SetDefault("server.rate_limit.execute_rps", 5)
	v.SetDefault("server.rate_limit.execute_burst", 10)
	v.SetDefault("database.path", "./data/pollnow.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_password_hash", "")

	v.SetDefault("plugins.pulse.check_interval", "60s")
	v.SetDefault("plugins.pulse.poll_timeout", "5s")
	v.SetDefault("plugins.pulse.ping_count", 3)
	v.SetDefault("plugins.pulse.max_workers", 10)
	v.SetDefault("plugins.pulse.queue_size", 1000)
	v.SetDefault("plugins.pulse.execute_rate", 50)
	v.SetDefault("plugins.pulse.execute_burst", 100)
	v.SetDefault("plugins.pulse.retention_period", "168h")
	v.SetDefault("plugins.pulse.maintenance_interval", "1h")

	v.SetDefault("plugins.mqtt.broker_url", "")
	v.SetDefault("plugins.mqtt.client_id", "pollnow")
	v.SetDefault("plugins.mqtt.topic_prefix", "pollnow")
	v.SetDefault("plugins.mqtt.qos", 1)
	v.SetDefault("plugins.mqtt.retain", false)
	v.SetDefault("plugins.mqtt.per_object", true)
	v.SetDefault("plugins.mqtt.timeout", "10s")
}
