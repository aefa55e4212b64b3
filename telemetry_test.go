package main

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectInt64(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	values := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					values[m.Name] += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					values[m.Name] = dp.Value
				}
			}
		}
	}
	return values
}

func TestTelemetry_ObservesRuntimeCounters(t *testing.T) {
	bridge, voices := newTestBridge(t)
	pitch := NewPitchTable()
	engine := NewSynthEngine(pitch, voices, testFormat(FormatFloat32LE, 1))
	counter := &streamErrorCounter{}
	status := newRuntimeStatus(pitch, voices, bridge, engine, counter)

	reader := sdkmetric.NewManualReader()
	tel, err := setupTelemetry(TelemetryConfig{}, status, newTestLogger(), reader)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer tel.Shutdown(context.Background())

	bridge.Submit(KeyEvent{Code: 1, State: KeyPressed})
	bridge.Submit(KeyEvent{Code: 2, State: KeyPressed})
	bridge.Submit(KeyEvent{Code: -4, State: KeyPressed})
	bridge.Flush()
	for i := 0; i < 10; i++ {
		engine.NextSample()
	}
	counter.n.Add(1)

	got := collectInt64(t, reader)
	want := map[string]int64{
		"keysynth.frames.rendered":  10,
		"keysynth.events.applied":   2,
		"keysynth.events.discarded": 1,
		"keysynth.stream.errors":    1,
		"keysynth.voices.active":    2,
	}
	for name, v := range want {
		if got[name] != v {
			t.Fatalf("%s = %d, want %d (all: %v)", name, got[name], v, got)
		}
	}
}

func TestTelemetry_PrometheusEndpoint(t *testing.T) {
	voices := NewVoiceRegistry()
	voices.Activate(7)
	status := newRuntimeStatus(NewPitchTable(), voices, nil, nil, nil)

	tel, err := setupTelemetry(TelemetryConfig{PrometheusBind: "127.0.0.1:0"}, status, newTestLogger())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer tel.Shutdown(context.Background())

	if tel.server == nil || tel.addr == "" {
		t.Fatal("expected metrics server to be listening")
	}
	resp, err := http.Get("http://" + tel.addr + "/metrics")
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "keysynth") || !strings.Contains(string(body), "voices") {
		t.Fatalf("scrape missing voice gauge:\n%s", body)
	}
}
