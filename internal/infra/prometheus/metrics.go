package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Paste lifecycle counters, exposed on the /metrics endpoint.
var (
	PastesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pastebin_pastes_created_total",
		Help: "Number of pastes successfully created.",
	})

	PasteViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pastebin_paste_views_total",
		Help: "Number of successful consuming reads.",
	})

	PastesNotFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pastebin_paste_not_found_total",
		Help: "Number of reads that resolved to not found (absent, expired or exhausted).",
	})

	StoreErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pastebin_store_errors_total",
		Help: "Number of key-value store operations that failed.",
	})
)
