package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mklemme/fhs280-bridge/internal/bridge"
	"github.com/mklemme/fhs280-bridge/internal/config"
	"github.com/mklemme/fhs280-bridge/internal/coordinator"
	"github.com/mklemme/fhs280-bridge/internal/hub"
	"github.com/mklemme/fhs280-bridge/internal/metrics"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: fhs280-bridge <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	config.Normalize(cfg)

	// --------------------
	// Device access
	// --------------------

	h := hub.NewDedicated(hub.Config{
		Host:    cfg.Modbus.Host,
		Port:    cfg.Modbus.Port,
		SlaveID: cfg.Modbus.SlaveID,
		Timeout: time.Duration(cfg.Modbus.TimeoutMs) * time.Millisecond,
	})
	defer h.Close()

	coord := coordinator.New(h, time.Duration(cfg.Poll.IntervalS)*time.Second)

	// --------------------
	// Consumers
	// --------------------

	var mb *bridge.Bridge
	if cfg.MQTT != nil {
		mb = bridge.New(bridge.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
		}, coord)
		coord.AddListener(mb.OnPoll)
	}

	if cfg.Metrics != nil {
		exporter := metrics.NewExporter()
		coord.AddListener(exporter.OnPoll)
		go exporter.Serve(cfg.Metrics.Listen)
	}

	// Fail fast at startup: with no prior snapshot, a failed first poll
	// means the device identity or connection is wrong.
	if err := coord.FirstRefresh(); err != nil {
		log.Fatalf("initial poll failed (host=%s slave=%d): %v",
			cfg.Modbus.Host, cfg.Modbus.SlaveID, err)
	}

	if mb != nil {
		if err := mb.Connect(); err != nil {
			log.Fatalf("mqtt setup failed: %v", err)
		}
		defer mb.Close()
		// First states go out as soon as the loop starts.
		coord.Refresh()
	}

	// --------------------
	// Poll until shutdown
	// --------------------

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"host":     cfg.Modbus.Host,
		"slave_id": cfg.Modbus.SlaveID,
		"interval": cfg.Poll.IntervalS,
	}).Info("polling started")

	if err := coord.Run(ctx); err != nil && err != context.Canceled {
		log.WithError(err).Error("coordinator stopped")
	}
}
