package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	datasetUploads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brightboard_dataset_uploads_total",
		Help: "The total number of dataset uploads",
	})
	datasetAnalyses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brightboard_dataset_analyses_total",
		Help: "The total number of dataset analysis requests",
	})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brightboard_content_cache_hits_total",
		Help: "The total number of dataset content cache hits",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brightboard_content_cache_misses_total",
		Help: "The total number of dataset content cache misses",
	})
)
