package utils

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MatcherRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rematcher_matcher_runs_total",
			Help: "Number of full matcher runs executed",
		},
	)
	MatchesEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rematcher_matches_emitted_total",
			Help: "Number of buyer/listing matches emitted across all runs",
		},
	)
	RecordsMerged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rematcher_records_merged_total",
			Help: "Number of uploaded records merged into a base collection",
		},
	)
	UploadsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rematcher_uploads_ingested_total",
			Help: "Number of uploaded CSV batches ingested",
		},
	)
)

// StartMetrics registers the engine counters and serves /metrics on the
// given port.
func StartMetrics(port string) {
	prometheus.MustRegister(MatcherRuns, MatchesEmitted, RecordsMerged, UploadsIngested)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}
