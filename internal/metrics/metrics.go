package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReportsAccepted - счетчик успешно принятых заявок.
	ReportsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "incident_reports_accepted_total",
		Help: "Total number of incident reports persisted.",
	})

	// ReportsRejected - счетчик отклоненных заявок по причинам.
	ReportsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incident_reports_rejected_total",
		Help: "Total number of rejected incident reports, labelled by reason.",
	}, []string{"reason"})

	// GeocodeResolutions - счетчик исходов геокодирования по источнику координат.
	GeocodeResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incident_geocode_resolutions_total",
		Help: "Geocoding resolution outcomes, labelled by source: client, combined, fallback, unresolved.",
	}, []string{"source"})

	// GeocodeCacheLookups - попадания и промахи кэша геокодера.
	GeocodeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incident_geocode_cache_total",
		Help: "Geocode cache lookups, labelled by result: hit, miss.",
	}, []string{"result"})

	// WebhooksDelivered - счетчик доставленных и потерянных вебхуков.
	WebhooksDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "incident_webhooks_delivered_total",
		Help: "Webhook delivery attempts, labelled by status: ok, failed.",
	}, []string{"status"})
)
