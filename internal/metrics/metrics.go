// SPDX-License-Identifier: MIT

// Package metrics counts settings operations for the node_exporter textfile
// collector. A CLI run is short-lived, so metrics are written to a file after
// each command instead of being scraped.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ManuGH/e33config/internal/cfgerr"
)

// Recorder owns a private registry so tests and multiple managers do not
// collide on the global one.
type Recorder struct {
	reg *prometheus.Registry

	operations     *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	backupsCreated *prometheus.CounterVec
	readOnly       *prometheus.GaugeVec
}

// NewRecorder registers the e33config collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "e33config_operations_total",
			Help: "Settings operations by outcome",
		}, []string{"op", "result"}), // result=ok|<error code>
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "e33config_operation_duration_seconds",
			Help:    "Duration of settings operations",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"op"}),
		backupsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "e33config_backups_created_total",
			Help: "Backups written per distribution",
		}, []string{"distribution"}),
		readOnly: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "e33config_read_only",
			Help: "Whether the settings file was left read-only (1) or writable (0)",
		}, []string{"distribution"}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// ObserveOperation records the outcome and duration of op. A nil Recorder
// is a no-op.
func (r *Recorder) ObserveOperation(op string, started time.Time, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(op, cfgerr.Code(err)).Inc()
	r.duration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// BackupCreated counts a written backup.
func (r *Recorder) BackupCreated(distribution string) {
	if r == nil {
		return
	}
	r.backupsCreated.WithLabelValues(distribution).Inc()
}

// SetReadOnly records the read-only flag last observed for distribution.
func (r *Recorder) SetReadOnly(distribution string, readOnly bool) {
	if r == nil {
		return
	}
	v := 0.0
	if readOnly {
		v = 1
	}
	r.readOnly.WithLabelValues(distribution).Set(v)
}

// WriteTextfile writes the registry in text exposition format. The write is
// atomic, as the textfile collector requires.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
