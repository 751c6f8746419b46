package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the lead forwarding flow.
type LeadMetrics struct {
	forwardedTotal *prometheus.CounterVec
	webhookTotal   *prometheus.CounterVec
	capiLatency    prometheus.Histogram
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		forwardedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadfunnel",
			Subsystem: "leads",
			Name:      "forwarded_total",
			Help:      "Lead submissions by forwarding outcome",
		}, []string{"outcome"}),
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadfunnel",
			Subsystem: "webhook",
			Name:      "relay_total",
			Help:      "Lead webhook relays by outcome",
		}, []string{"outcome"}),
		capiLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadfunnel",
			Subsystem: "capi",
			Name:      "latency_seconds",
			Help:      "Latency of Conversions API calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.forwardedTotal, m.webhookTotal, m.capiLatency)
	return m
}

// ObserveForward records one handler outcome, e.g. "sent", "upstream_error".
func (m *LeadMetrics) ObserveForward(outcome string) {
	if m == nil {
		return
	}
	m.forwardedTotal.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveWebhook(outcome string) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveCAPILatency(seconds float64) {
	if m == nil {
		return
	}
	m.capiLatency.Observe(seconds)
}
