/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	performCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sliceeval_analyses_performed_total",
			Help: "Total number of analyses performed",
		},
		[]string{"kind", "level"},
	)

	failureCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sliceeval_analysis_failures_total",
			Help: "Total number of analyses that returned an error",
		},
		[]string{"kind", "level"},
	)

	calibrationGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sliceeval_calibration_error",
			Help: "Most recent calibration error (0.0-1.0)",
		},
		[]string{"level", "name", "type"},
	)
)

func recordPerform(a Analysis, res Result, err error) {
	labels := prometheus.Labels{"kind": a.Kind(), "level": a.Level()}
	performCounter.With(labels).Inc()
	if err != nil {
		failureCounter.With(labels).Inc()
		return
	}
	if cal, ok := res.(*CalibrationAnalysisResult); ok {
		calibrationGauge.With(prometheus.Labels{"level": cal.Level(), "name": cal.Name(), "type": "expected"}).Set(cal.ExpectedCalibrationError())
		calibrationGauge.With(prometheus.Labels{"level": cal.Level(), "name": cal.Name(), "type": "maximum"}).Set(cal.MaximumCalibrationError())
	}
}
