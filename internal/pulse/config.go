package pulse

import "time"

// PulseConfig holds the settings under plugins.pulse.
type PulseConfig struct {
	CheckInterval       time.Duration `mapstructure:"check_interval"`
	PollTimeout         time.Duration `mapstructure:"poll_timeout"`
	PingCount           int           `mapstructure:"ping_count"`
	MaxWorkers          int           `mapstructure:"max_workers"`
	QueueSize           int           `mapstructure:"queue_size"`
	ExecuteRate         float64       `mapstructure:"execute_rate"`  // polls per second across all workers
	ExecuteBurst        int           `mapstructure:"execute_burst"` // tokens available at once
	RetentionPeriod     time.Duration `mapstructure:"retention_period"`
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval"`
}

func DefaultConfig() PulseConfig {
	return PulseConfig{
		CheckInterval:       60 * time.Second,
		PollTimeout:         5 * time.Second,
		PingCount:           3,
		MaxWorkers:          10,
		QueueSize:           1000,
		ExecuteRate:         50,
		ExecuteBurst:        100,
		RetentionPeriod:     7 * 24 * time.Hour,
		MaintenanceInterval: 1 * time.Hour,
	}
}

// withDefaults replaces zero or negative values with defaults so a partial
// config section still yields a runnable module.
func (c PulseConfig) withDefaults() PulseConfig {
	d := DefaultConfig()
	if c.CheckInterval <= 0 {
		c.CheckInterval = d.CheckInterval
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = d.PollTimeout
	}
	if c.PingCount <= 0 {
		c.PingCount = d.PingCount
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = d.MaxWorkers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.ExecuteRate <= 0 {
		c.ExecuteRate = d.ExecuteRate
	}
	if c.ExecuteBurst <= 0 {
		c.ExecuteBurst = d.ExecuteBurst
	}
	if c.RetentionPeriod <= 0 {
		c.RetentionPeriod = d.RetentionPeriod
	}
	if c.MaintenanceInterval <= 0 {
		c.MaintenanceInterval = d.MaintenanceInterval
	}
	return c
}
