// Package otel exports application logs to an OpenTelemetry collector.
package otel

import (
	"context"
	"fmt"
	"time"

	otelattribute "go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/bravo68web/shipyard/internal/config"
)

// shutdownTimeout bounds the final flush on Close
const shutdownTimeout = 5 * time.Second

// Provider owns the OTLP log pipeline
type Provider struct {
	logProvider *sdklog.LoggerProvider
	logger      log.Logger
}

// NewProvider builds a batching OTLP log provider.
// The exporter may be nil, in which case one is created from cfg.
func NewProvider(ctx context.Context, cfg *config.OTELConfig, environment, version string, exporter sdklog.Exporter) (*Provider, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "shipyard"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
			otelattribute.String("environment", environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if exporter == nil {
		if exporter, err = newExporter(ctx, cfg); err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
	}

	logProvider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)

	return &Provider{
		logProvider: logProvider,
		logger:      logProvider.Logger(serviceName),
	}, nil
}

func newExporter(ctx context.Context, cfg *config.OTELConfig) (sdklog.Exporter, error) {
	if cfg.UseHTTP {
		opts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlploghttp.WithHeaders(cfg.Headers))
		}
		return otlploghttp.New(ctx, opts...)
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.Endpoint)}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlploggrpc.WithHeaders(cfg.Headers))
	}
	if cfg.Insecure {
		conn, err := grpc.NewClient(cfg.Endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
		}
		opts = append(opts, otlploggrpc.WithGRPCConn(conn))
	}
	return otlploggrpc.New(ctx, opts...)
}

// Logger returns the OTEL logger records are emitted to
func (p *Provider) Logger() log.Logger {
	return p.logger
}

// ForceFlush exports all buffered records
func (p *Provider) ForceFlush(ctx context.Context) error {
	return p.logProvider.ForceFlush(ctx)
}

// Close flushes and shuts down the pipeline
func (p *Provider) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return p.logProvider.Shutdown(ctx)
}
