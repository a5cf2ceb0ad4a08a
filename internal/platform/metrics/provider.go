package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Supported exporter names.
const (
	ExporterPrometheus = "prometheus"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// ServiceName scopes every meter created through a Provider.
const ServiceName = "github.com/phrazzld/bookshelf-api"

// Provider owns the meter provider and, for Prometheus, the scrape handler.
type Provider struct {
	mp      *sdkmetric.MeterProvider
	handler http.Handler
}

// Options customize Setup.
type Options struct {
	// Writer receives stdout exporter output. Defaults to os.Stdout.
	Writer io.Writer
	// Global installs the provider with otel.SetMeterProvider.
	Global bool
}

// Setup creates a Provider for the named exporter.
func Setup(ctx context.Context, exporter string, opts Options) (*Provider, error) {
	reader, handler, err := newReader(exporter, opts)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	if opts.Global {
		otel.SetMeterProvider(mp)
	}

	return &Provider{mp: mp, handler: handler}, nil
}

func newReader(exporter string, opts Options) (sdkmetric.Reader, http.Handler, error) {
	switch exporter {
	case ExporterPrometheus:
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		exp, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		return exp, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil

	case ExporterStdout:
		w := opts.Writer
		if w == nil {
			w = os.Stdout
		}
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp), http.NotFoundHandler(), nil

	case ExporterNone, "":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(io.Discard))
		if err != nil {
			return nil, nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), http.NotFoundHandler(), nil

	default:
		return nil, nil, fmt.Errorf("unknown metrics exporter: %q", exporter)
	}
}

// Meter returns a meter scoped to this service.
func (p *Provider) Meter() metric.Meter {
	return p.mp.Meter(ServiceName)
}

// Handler serves the scrape endpoint. It responds 404 unless the
// exporter is Prometheus.
func (p *Provider) Handler() http.Handler {
	return p.handler
}

// Shutdown flushes pending metrics and releases the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if err := p.mp.Shutdown(ctx); err != nil && !errors.Is(err, sdkmetric.ErrReaderShutdown) {
		return fmt.Errorf("failed to shut down meter provider: %w", err)
	}
	return nil
}
