// Package metrics counts decode and encode outcomes with Prometheus
// collectors on a private registry.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	qrcode "github.com/coco-projects/qrcode"
)

const namespace = "qrcode"

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeFormat   = "format"
	OutcomeChecksum = "checksum"
	OutcomeWriter   = "writer"
)

// Recorder holds the collectors. A nil *Recorder records nothing.
type Recorder struct {
	Decodes         *prometheus.CounterVec
	DecodeDuration  prometheus.Histogram
	ErrorsCorrected prometheus.Histogram
	Encodes         *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRecorder registers the collectors on reg, or on a fresh registry when
// reg is nil.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	decodes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decodes_total",
		Help:      "Decode attempts by outcome.",
	}, []string{"outcome"})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "decode_duration_seconds",
		Help:      "Time spent per decode, including retries.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	corrected := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "errors_corrected",
		Help:      "Codewords repaired per successful decode.",
		Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
	})

	encodes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "encodes_total",
		Help:      "Encode attempts by outcome.",
	}, []string{"outcome"})

	reg.MustRegister(decodes, duration, corrected, encodes)
	return &Recorder{
		Decodes:         decodes,
		DecodeDuration:  duration,
		ErrorsCorrected: corrected,
		Encodes:         encodes,
		registry:        reg,
	}
}

// Outcome maps an error to its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, qrcode.ErrWriter):
		return OutcomeWriter
	}
	switch qrcode.KindOf(err) {
	case qrcode.ErrChecksum:
		return OutcomeChecksum
	case qrcode.ErrFormat:
		return OutcomeFormat
	}
	return OutcomeNotFound
}

// ObserveDecode records one decode. corrected is ignored on failure.
func (r *Recorder) ObserveDecode(elapsed time.Duration, corrected int, err error) {
	if r == nil {
		return
	}
	r.Decodes.WithLabelValues(Outcome(err)).Inc()
	r.DecodeDuration.Observe(elapsed.Seconds())
	if err == nil {
		r.ErrorsCorrected.Observe(float64(corrected))
	}
}

func (r *Recorder) ObserveEncode(err error) {
	if r == nil {
		return
	}
	r.Encodes.WithLabelValues(Outcome(err)).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteToTextfile writes every collected metric in the text exposition
// format, for node_exporter's textfile collector.
func (r *Recorder) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
