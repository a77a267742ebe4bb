package config

import (
	"os"
	"path/filepath"
	"testing"
)

func valid() *Config {
	return &Config{
		Modbus: ModbusConfig{Host: "192.168.1.20"},
	}
}

func TestValidate_HostRequired(t *testing.T) {
	cfg := valid()
	cfg.Modbus.Host = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for missing host")
	}
}

func TestValidate_IntervalBounds(t *testing.T) {
	cfg := valid()
	cfg.Poll.IntervalS = 3601
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for interval above bound")
	}

	cfg.Poll.IntervalS = 0 // unset, defaulted later
	if err := Validate(cfg); err != nil {
		t.Fatalf("unset interval rejected: %v", err)
	}

	cfg.Poll.IntervalS = 1
	if err := Validate(cfg); err != nil {
		t.Fatalf("minimum interval rejected: %v", err)
	}
}

func TestValidate_OptionalSections(t *testing.T) {
	cfg := valid()
	cfg.MQTT = &MQTTConfig{}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for mqtt section without broker")
	}

	cfg.MQTT = &MQTTConfig{Broker: "tcp://127.0.0.1:1883"}
	cfg.Metrics = &MetricsConfig{}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for metrics section without listen")
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := valid()
	cfg.MQTT = &MQTTConfig{Broker: "tcp://127.0.0.1:1883"}
	Normalize(cfg)

	if cfg.Modbus.Port != DefaultPort {
		t.Errorf("port = %d, want %d", cfg.Modbus.Port, DefaultPort)
	}
	if cfg.Modbus.SlaveID != DefaultSlaveID {
		t.Errorf("slave_id = %d, want %d", cfg.Modbus.SlaveID, DefaultSlaveID)
	}
	if cfg.Poll.IntervalS != DefaultIntervalS {
		t.Errorf("interval_s = %d, want %d", cfg.Poll.IntervalS, DefaultIntervalS)
	}
	if cfg.Modbus.TimeoutMs != DefaultTimeoutMs {
		t.Errorf("timeout_ms = %d, want %d", cfg.Modbus.TimeoutMs, DefaultTimeoutMs)
	}
	if cfg.MQTT.TopicPrefix != "fhs280" {
		t.Errorf("topic_prefix = %q", cfg.MQTT.TopicPrefix)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	raw := `
modbus:
  host: 10.0.0.5
  slave_id: 4
  timeout_ms: 2000
poll:
  interval_s: 15
mqtt:
  broker: tcp://10.0.0.2:1883
  topic_prefix: keller/fhs280
metrics:
  listen: ":9105"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if cfg.Modbus.Host != "10.0.0.5" || cfg.Modbus.SlaveID != 4 {
		t.Fatalf("modbus = %+v", cfg.Modbus)
	}
	if cfg.Poll.IntervalS != 15 {
		t.Fatalf("interval = %d", cfg.Poll.IntervalS)
	}
	if cfg.MQTT == nil || cfg.MQTT.TopicPrefix != "keller/fhs280" {
		t.Fatalf("mqtt = %+v", cfg.MQTT)
	}
	if cfg.Metrics == nil || cfg.Metrics.Listen != ":9105" {
		t.Fatalf("metrics = %+v", cfg.Metrics)
	}
}
