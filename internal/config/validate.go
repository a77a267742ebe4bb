package config

import "fmt"

// Scan interval bounds in seconds.
const (
	MinIntervalS = 1
	MaxIntervalS = 3600
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.Modbus.Host == "" {
		return fmt.Errorf("modbus.host is required")
	}
	if cfg.Modbus.Port < 0 || cfg.Modbus.Port > 65535 {
		return fmt.Errorf("modbus.port %d out of range", cfg.Modbus.Port)
	}
	if cfg.Modbus.TimeoutMs < 0 {
		return fmt.Errorf("modbus.timeout_ms must be >= 0")
	}

	if cfg.Poll.IntervalS != 0 &&
		(cfg.Poll.IntervalS < MinIntervalS || cfg.Poll.IntervalS > MaxIntervalS) {
		return fmt.Errorf(
			"poll.interval_s %d outside %d..%d",
			cfg.Poll.IntervalS, MinIntervalS, MaxIntervalS,
		)
	}

	if cfg.MQTT != nil && cfg.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when the mqtt section is present")
	}

	if cfg.Metrics != nil && cfg.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen is required when the metrics section is present")
	}

	return nil
}
