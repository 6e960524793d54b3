package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	entries         *prometheus.CounterVec
	entriesImported prometheus.Counter
	viewDuration    *prometheus.HistogramVec
	calendarCache   *prometheus.CounterVec
	themes          *prometheus.CounterVec
	accounts        prometheus.Counter
	logins          *prometheus.CounterVec
}

// NewPrometheus creates a recorder with its own registry, including Go and
// process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()

	p := &PrometheusRecorder{
		registry: reg,
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daybook",
			Name:      "entries_total",
			Help:      "Journal entry mutations by operation.",
		}, []string{"op"}),
		entriesImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "daybook",
			Name:      "entries_imported_total",
			Help:      "Entries brought in by the legacy importer.",
		}),
		viewDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "daybook",
			Name:      "view_duration_seconds",
			Help:      "Time spent building journal views.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view"}),
		calendarCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daybook",
			Name:      "calendar_cache_lookups_total",
			Help:      "Calendar index cache lookups by result.",
		}, []string{"result"}),
		themes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daybook",
			Name:      "theme_changes_total",
			Help:      "Theme change requests by outcome.",
		}, []string{"outcome"}),
		accounts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "daybook",
			Name:      "accounts_registered_total",
			Help:      "Accounts created through registration.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daybook",
			Name:      "logins_total",
			Help:      "Login attempts by status.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.entries,
		p.entriesImported,
		p.viewDuration,
		p.calendarCache,
		p.themes,
		p.accounts,
		p.logins,
	)

	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PrometheusRecorder) IncEntryCreated() { p.entries.WithLabelValues("created").Inc() }
func (p *PrometheusRecorder) IncEntryUpdated() { p.entries.WithLabelValues("updated").Inc() }
func (p *PrometheusRecorder) IncEntryDeleted() { p.entries.WithLabelValues("deleted").Inc() }

func (p *PrometheusRecorder) AddEntriesImported(n int) {
	if n > 0 {
		p.entriesImported.Add(float64(n))
	}
}

func (p *PrometheusRecorder) ObserveViewDuration(view string, duration time.Duration) {
	p.viewDuration.WithLabelValues(view).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) IncCalendarCacheHit()  { p.calendarCache.WithLabelValues("hit").Inc() }
func (p *PrometheusRecorder) IncCalendarCacheMiss() { p.calendarCache.WithLabelValues("miss").Inc() }

func (p *PrometheusRecorder) IncThemeUpdated() { p.themes.WithLabelValues("updated").Inc() }
func (p *PrometheusRecorder) IncThemeIgnored() { p.themes.WithLabelValues("ignored").Inc() }

func (p *PrometheusRecorder) IncAccountRegistered() { p.accounts.Inc() }

func (p *PrometheusRecorder) IncLogin(status string) {
	p.logins.WithLabelValues(status).Inc()
}
