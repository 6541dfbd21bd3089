package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vibecheck_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ParseFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibecheck_parse_failures_total",
		Help: "Files that could not be parsed and were scored from text only.",
	}, []string{"status"})

	DetectorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vibecheck_detector_seconds",
		Help:    "Time spent in a single detector for one file.",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"detector"})

	DetectorFaultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibecheck_detector_faults_total",
		Help: "Detector panics recovered at the aggregator boundary.",
	}, []string{"detector"})

	FilesScoredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibecheck_files_scored_total",
		Help: "Files scored, by severity label.",
	}, []string{"label"})

	FileScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vibecheck_file_score",
		Help:    "Distribution of final per-file scores.",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	FilesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibecheck_files_skipped_total",
		Help: "Files skipped before scoring, by reason.",
	}, []string{"reason"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vibecheck_scan_seconds",
		Help:    "Wall time of a full repository scan.",
		Buckets: prometheus.DefBuckets,
	})

	RepositoryScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vibecheck_repository_score",
		Help: "Most recent repository score.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vibecheck_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
