// Package metrics exports decoded register values and poll health as
// Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/mklemme/fhs280-bridge/internal/poll"
	"github.com/mklemme/fhs280-bridge/internal/registers"
)

type Exporter struct {
	values       *prometheus.GaugeVec
	pollSuccess  prometheus.Counter
	pollFailure  prometheus.Counter
	lastPollTime prometheus.Gauge
}

func NewExporter() *Exporter {
	e := &Exporter{
		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fhs280_register_value",
			Help: "Decoded register value, keyed by catalog key.",
		}, []string{"key"}),
		pollSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fhs280_poll_success_total",
			Help: "Completed poll cycles.",
		}),
		pollFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fhs280_poll_failure_total",
			Help: "Poll cycles that yielded no usable register.",
		}),
		lastPollTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fhs280_last_poll_timestamp_seconds",
			Help: "Unix time of the last successful poll.",
		}),
	}

	prometheus.MustRegister(e.values, e.pollSuccess, e.pollFailure, e.lastPollTime)
	return e
}

// OnPoll is the coordinator listener. Numeric values update their gauge;
// keys absent from this round are removed so failed reads do not linger
// as stale samples.
func (e *Exporter) OnPoll(snap *poll.Snapshot, err error) {
	if err != nil {
		e.pollFailure.Inc()
		return
	}

	e.pollSuccess.Inc()
	e.lastPollTime.Set(float64(snap.At.Unix()))

	for key, v := range snap.Values {
		switch value := v.(type) {
		case int:
			e.values.WithLabelValues(key).Set(float64(value))
		case float64:
			e.values.WithLabelValues(key).Set(value)
		}
	}

	for _, def := range registers.Catalog() {
		if _, ok := snap.Values[def.Key]; !ok {
			e.values.DeleteLabelValues(def.Key)
		}
	}
}

// Serve runs the metrics endpoint until the listener fails. Meant to run
// on its own goroutine.
func (e *Exporter) Serve(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.WithField("listen", listen).Info("serving metrics")
	if err := server.ListenAndServe(); err != nil {
		log.WithError(err).Error("metrics server stopped")
	}
}
