package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "updateserver"

type metrics struct {
	checksTotal    *prometheus.CounterVec
	downloadsTotal prometheus.Counter
	installsTotal  *prometheus.CounterVec
}

var (
	global     *metrics
	globalOnce sync.Once
)

func get() *metrics {
	globalOnce.Do(func() {
		factory := promauto.With(prometheus.DefaultRegisterer)
		global = &metrics{
			checksTotal: factory.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checks_total",
				Help:      "Update checks by outcome",
			}, []string{"outcome"}),
			downloadsTotal: factory.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "downloads_total",
				Help:      "Download-started events reported by clients",
			}),
			installsTotal: factory.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "installs_total",
				Help:      "Install results reported by clients",
			}, []string{"status"}),
		}
	})
	return global
}

// RecordCheck records one update check. Outcome is one of
// "update_available", "forced", "up_to_date".
func RecordCheck(outcome string) {
	get().checksTotal.WithLabelValues(outcome).Inc()
}

func RecordDownload() {
	get().downloadsTotal.Inc()
}

func RecordInstall(status string) {
	get().installsTotal.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus text exposition handler for /metrics.
func Handler() http.Handler {
	get()
	return promhttp.Handler()
}
