package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Modbus  ModbusConfig   `yaml:"modbus"`
	Poll    PollConfig     `yaml:"poll"`
	MQTT    *MQTTConfig    `yaml:"mqtt"`
	Metrics *MetricsConfig `yaml:"metrics"`
}

// ---- DEVICE ----

type ModbusConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	SlaveID   uint8  `yaml:"slave_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalS int `yaml:"interval_s"`
}

// ---- MQTT (optional) ----

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
}

// ---- METRICS (optional) ----

type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// Load reads and parses the configuration file. Validate and Normalize
// are separate steps.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
