// telemetry.go - OpenTelemetry metrics for the synthesizer

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/intuitionamiga/keysynth"

// telemetry owns the meter provider and, when configured, the metrics HTTP
// listener. Instruments are observable and read atomics on collection, so the
// audio callback never calls into the SDK.
type telemetry struct {
	provider *sdkmetric.MeterProvider
	server   *http.Server
	addr     string
	reg      metric.Registration
	log      *slog.Logger
}

// setupTelemetry registers the synthesizer instruments on a provider built
// from readers. With a non-empty bind a Prometheus exporter is added and
// served on it.
func setupTelemetry(cfg TelemetryConfig, status *runtimeStatus, log *slog.Logger, readers ...sdkmetric.Reader) (*telemetry, error) {
	opts := make([]sdkmetric.Option, 0, len(readers)+1)
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}

	bind := strings.TrimSpace(cfg.PrometheusBind)
	var handler http.Handler
	if bind != "" {
		exporter, err := prometheus.New()
		if err != nil {
			log.Warn("failed to initialize prometheus exporter", slog.String("error", err.Error()))
		} else {
			opts = append(opts, sdkmetric.WithReader(exporter))
			handler = promhttp.Handler()
		}
	}

	provider := sdkmetric.NewMeterProvider(opts...)
	t := &telemetry{provider: provider, log: log}

	if err := t.register(provider.Meter(meterName), status); err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}

	if handler != nil {
		if err := t.serve(bind, handler); err != nil {
			_ = t.Shutdown(context.Background())
			return nil, err
		}
	}
	return t, nil
}

func (t *telemetry) register(meter metric.Meter, status *runtimeStatus) error {
	frames, err := meter.Int64ObservableCounter("keysynth.frames.rendered",
		metric.WithDescription("Sample frames produced by the synthesis engine"))
	if err != nil {
		return err
	}
	applied, err := meter.Int64ObservableCounter("keysynth.events.applied",
		metric.WithDescription("Key events applied to the voice registry"))
	if err != nil {
		return err
	}
	discarded, err := meter.Int64ObservableCounter("keysynth.events.discarded",
		metric.WithDescription("Key events rejected before queueing"))
	if err != nil {
		return err
	}
	streamErrors, err := meter.Int64ObservableCounter("keysynth.stream.errors",
		metric.WithDescription("Audio driver errors reported after stream start"))
	if err != nil {
		return err
	}
	voices, err := meter.Int64ObservableGauge("keysynth.voices.active",
		metric.WithDescription("Keys currently sounding"))
	if err != nil {
		return err
	}

	t.reg, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := status.snapshot()
		o.ObserveInt64(frames, int64(s.frames))
		o.ObserveInt64(applied, int64(s.applied))
		o.ObserveInt64(discarded, int64(s.discarded))
		o.ObserveInt64(streamErrors, int64(s.streamErrors))
		o.ObserveInt64(voices, int64(s.voices.Len()))
		return nil
	}, frames, applied, discarded, streamErrors, voices)
	return err
}

func (t *telemetry) serve(bind string, handler http.Handler) error {
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	t.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	t.addr = ln.Addr().String()
	go func() {
		if err := t.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.log.Error("metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	t.log.Info("telemetry initialized", slog.String("exporter", "prometheus"), slog.String("bind", t.addr))
	return nil
}

func (t *telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.reg != nil {
		errs = append(errs, t.reg.Unregister())
	}
	if t.server != nil {
		errs = append(errs, t.server.Shutdown(ctx))
	}
	errs = append(errs, t.provider.Shutdown(ctx))
	return errors.Join(errs...)
}
