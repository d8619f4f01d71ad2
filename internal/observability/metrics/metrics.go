package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for chat turns and bookings.
type BookingMetrics struct {
	turnsTotal       *prometheus.CounterVec
	extractedTotal   *prometheus.CounterVec
	bookingsTotal    *prometheus.CounterVec
	webhookLatency   *prometheus.HistogramVec
	llmFailuresTotal *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barbersalon",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total chat turns by the step they ended in",
		}, []string{"step", "outcome"}),
		extractedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barbersalon",
			Subsystem: "chat",
			Name:      "fields_extracted_total",
			Help:      "Booking fields extracted from customer messages",
		}, []string{"field"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barbersalon",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Booking attempts by channel and outcome",
		}, []string{"channel", "outcome"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "barbersalon",
			Subsystem: "booking",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of the booking automation webhook",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		llmFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barbersalon",
			Subsystem: "chat",
			Name:      "llm_failures_total",
			Help:      "Reply generation failures",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.extractedTotal, m.bookingsTotal, m.webhookLatency, m.llmFailuresTotal)
	return m
}

func (m *BookingMetrics) ObserveTurn(step, outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(step, outcome).Inc()
}

func (m *BookingMetrics) ObserveExtracted(fields ...string) {
	if m == nil {
		return
	}
	for _, f := range fields {
		m.extractedTotal.WithLabelValues(f).Inc()
	}
}

func (m *BookingMetrics) ObserveBooking(channel, outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(channel, outcome).Inc()
}

func (m *BookingMetrics) ObserveWebhookLatency(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *BookingMetrics) ObserveLLMFailure(reason string) {
	if m == nil {
		return
	}
	m.llmFailuresTotal.WithLabelValues(reason).Inc()
}
