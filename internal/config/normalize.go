package config

// Controller defaults.
const (
	DefaultPort      = 502
	DefaultSlaveID   = 3
	DefaultIntervalS = 30
	DefaultTimeoutMs = 5000
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Modbus.Port == 0 {
		cfg.Modbus.Port = DefaultPort
	}
	if cfg.Modbus.SlaveID == 0 {
		cfg.Modbus.SlaveID = DefaultSlaveID
	}
	if cfg.Modbus.TimeoutMs == 0 {
		cfg.Modbus.TimeoutMs = DefaultTimeoutMs
	}
	if cfg.Poll.IntervalS == 0 {
		cfg.Poll.IntervalS = DefaultIntervalS
	}

	if cfg.MQTT != nil {
		if cfg.MQTT.ClientID == "" {
			cfg.MQTT.ClientID = "fhs280-bridge"
		}
		if cfg.MQTT.TopicPrefix == "" {
			cfg.MQTT.TopicPrefix = "fhs280"
		}
	}
}
