package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Route labels are chi patterns such as /lodgings/{id}, never raw paths.
var (
	SiteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kotobuki", Subsystem: "site", Name: "requests_total",
			Help: "Page, dashboard and JSON API requests by route pattern and status class.",
		},
		[]string{"route", "method", "class"}, // class: 2xx|3xx|4xx|5xx
	)
	SiteLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kotobuki", Subsystem: "site", Name: "render_seconds",
			Help:    "Time to render a page or API response, store reads included.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"route"},
	)
	StoreCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kotobuki", Subsystem: "store", Name: "calls_total",
			Help: "Calls to the hosted lodgings/services/profiles tables. class=neterr when no response arrived.",
		},
		[]string{"table", "method", "class"},
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kotobuki", Subsystem: "store", Name: "call_seconds",
			Help:    "Round trip to the hosted data API, per attempt.",
			Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"table", "method"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kotobuki", Subsystem: "cache", Name: "events_total",
			Help: "Listing cache traffic by keyspace (lodgings, lodging).",
		},
		[]string{"keyspace", "event"}, // event: hit|miss|set|del
	)
	VacancyUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kotobuki", Subsystem: "dashboard", Name: "vacancy_updates_total",
			Help: "Owner and admin vacancy buttons pressed on the dashboard.",
		},
		[]string{"op", "result"}, // result: ok|noop|busy|denied|error
	)
)

// Serve exposes /metrics on a dedicated listener. Empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(SiteRequests, SiteLatency, StoreCalls, StoreLatency, CacheEvents, VacancyUpdates)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// statusClass folds a status code into 2xx..5xx; 0 means no response.
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "neterr"
	}
	return strconv.Itoa(code/100) + "xx"
}

func ObserveRequest(route, method string, status int, dur time.Duration) {
	SiteRequests.WithLabelValues(route, method, statusClass(status)).Inc()
	SiteLatency.WithLabelValues(route).Observe(dur.Seconds())
}

func ObserveStore(table, method string, status int, dur time.Duration) {
	StoreCalls.WithLabelValues(table, method, statusClass(status)).Inc()
	StoreLatency.WithLabelValues(table, method).Observe(dur.Seconds())
}

// ObserveCache labels by the key's leading segment, so lodging:<id> keys
// share one series.
func ObserveCache(key, event string) {
	keyspace, _, _ := strings.Cut(key, ":")
	CacheEvents.WithLabelValues(keyspace, event).Inc()
}

func ObserveVacancy(op, result string) {
	VacancyUpdates.WithLabelValues(op, result).Inc()
}
