package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPopupMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPopupMetrics(reg)

	m.ObserveFetch("ok")
	m.ObserveFetch("ok")
	m.ObserveFetch("error")
	m.ObserveCardShown("priority")
	m.ObserveRecovery()
	m.StreamOpened()
	m.StreamOpened()
	m.StreamClosed()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "trustflow_popup_fetch_total", "result", "ok"); err != nil || got != 2 {
		t.Fatalf("expected 2 ok fetches, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "trustflow_popup_fetch_total", "result", "error"); err != nil || got != 1 {
		t.Fatalf("expected 1 failed fetch, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "trustflow_popup_cards_shown_total", "kind", "priority"); err != nil || got != 1 {
		t.Fatalf("expected 1 priority card, got %f (%v)", got, err)
	}

	gauge := findMetricFamily(mfs, "trustflow_popup_streams_active")
	if gauge == nil || gauge.GetMetric()[0].GetGauge().GetValue() != 1 {
		t.Fatalf("expected one active stream")
	}
	recov := findMetricFamily(mfs, "trustflow_popup_loop_recoveries_total")
	if recov == nil || recov.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected one recovery")
	}
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/api/spaces/{spaceId}/public-data", 200, 15*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "trustflow_http_requests_total", "route", "/api/spaces/{spaceId}/public-data"); err != nil || got != 1 {
		t.Fatalf("expected one request, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "trustflow_http_request_duration_seconds", "method", "GET"); err != nil || got <= 0 {
		t.Fatalf("expected latency recorded, got %f (%v)", got, err)
	}

	var nilMetrics *HTTPMetrics
	nilMetrics.Observe("GET", "/", 200, time.Millisecond)
}
