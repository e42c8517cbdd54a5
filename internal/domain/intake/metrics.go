package intake

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagedrop_intake_files_total",
			Help: "Files dispatched by the intake, by classification and outcome",
		},
		[]string{"kind", "outcome"},
	)

	archiveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imagedrop_archive_extraction_seconds",
			Help:    "Time spent extracting one archive",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
)
