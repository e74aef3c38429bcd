package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestMetricsRegistered verifies that all collectors are registered in the
// default registry once they have observed a value.
func TestMetricsRegistered(t *testing.T) {
	GenerationsTotal.WithLabelValues("lmstudio", ModeStream, StatusOK).Inc()
	GenerationDuration.WithLabelValues("lmstudio", ModeStream).Observe(0.2)
	TimeToFirstToken.WithLabelValues("lmstudio").Observe(0.05)
	TokensTotal.WithLabelValues("lmstudio").Add(3)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	expected := map[string]bool{
		"talk_lmstudio_generations_total":           false,
		"talk_lmstudio_generation_duration_seconds": false,
		"talk_lmstudio_time_to_first_token_seconds": false,
		"talk_lmstudio_tokens_total":                false,
		"talk_lmstudio_generations_active":          false,
	}
	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("metric %s not found in gathered families", name)
		}
	}
}

// TestActiveGenerationsGauge tests gauge increments and decrements
func TestActiveGenerationsGauge(t *testing.T) {
	before := gaugeValue(t)
	ActiveGenerations.Inc()
	if got := gaugeValue(t); got != before+1 {
		t.Errorf("expected gauge %v, got %v", before+1, got)
	}
	ActiveGenerations.Dec()
	if got := gaugeValue(t); got != before {
		t.Errorf("expected gauge %v, got %v", before, got)
	}
}

// TestLabelHelpers tests the mode and status label mapping
func TestLabelHelpers(t *testing.T) {
	if Mode(true) != ModeStream || Mode(false) != ModeComplete {
		t.Errorf("unexpected mode labels: %s %s", Mode(true), Mode(false))
	}
	if Status(nil) != StatusOK || Status(errors.New("x")) != StatusError {
		t.Errorf("unexpected status labels: %s %s", Status(nil), Status(errors.New("x")))
	}
}

func gaugeValue(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	if err := ActiveGenerations.Write(&m); err != nil {
		t.Fatalf("failed to read gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}
