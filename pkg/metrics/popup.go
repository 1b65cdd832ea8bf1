package metrics

import "github.com/prometheus/client_golang/prometheus"

// PopupMetrics counts popup engine activity. A nil receiver is a no-op so
// engines built without a registry stay silent.
type PopupMetrics struct {
	fetches    *prometheus.CounterVec
	shown      *prometheus.CounterVec
	recoveries prometheus.Counter
	streams    prometheus.Gauge
}

func NewPopupMetrics(reg prometheus.Registerer) *PopupMetrics {
	if reg == nil {
		return &PopupMetrics{}
	}
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "popup_fetch_total",
		Help:      "Public data fetches performed by popup engines, by result.",
	}, []string{"result"})
	shown := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "popup_cards_shown_total",
		Help:      "Popup cards rendered, by kind (rotation or priority).",
	}, []string{"kind"})
	recoveries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "popup_loop_recoveries_total",
		Help:      "Display cycles that failed and were rescheduled.",
	})
	streams := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "popup_streams_active",
		Help:      "Open popup event streams.",
	})
	reg.MustRegister(fetches, shown, recoveries, streams)
	return &PopupMetrics{
		fetches:    fetches,
		shown:      shown,
		recoveries: recoveries,
		streams:    streams,
	}
}

func (m *PopupMetrics) ObserveFetch(result string) {
	if m == nil || m.fetches == nil {
		return
	}
	m.fetches.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *PopupMetrics) ObserveCardShown(kind string) {
	if m == nil || m.shown == nil {
		return
	}
	m.shown.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *PopupMetrics) ObserveRecovery() {
	if m == nil || m.recoveries == nil {
		return
	}
	m.recoveries.Inc()
}

func (m *PopupMetrics) StreamOpened() {
	if m == nil || m.streams == nil {
		return
	}
	m.streams.Inc()
}

func (m *PopupMetrics) StreamClosed() {
	if m == nil || m.streams == nil {
		return
	}
	m.streams.Dec()
}
