package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	draftsOpened      metric.Int64Counter
	draftEvents       metric.Int64Counter
	invoicesSubmitted metric.Int64Counter
	templateRenders   metric.Int64Counter
	gatewayRequests   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "nfse-backoffice"
	}
	meter := provider.Meter(name)

	draftsOpened, err := meter.Int64Counter("nfse_drafts_opened_total")
	if err != nil {
		return nil, err
	}
	draftEvents, err := meter.Int64Counter("nfse_draft_events_total")
	if err != nil {
		return nil, err
	}
	invoicesSubmitted, err := meter.Int64Counter("nfse_invoices_submitted_total")
	if err != nil {
		return nil, err
	}
	templateRenders, err := meter.Int64Counter("nfse_template_renders_total")
	if err != nil {
		return nil, err
	}
	gatewayRequests, err := meter.Int64Counter("nfse_gateway_requests_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		draftsOpened:      draftsOpened,
		draftEvents:       draftEvents,
		invoicesSubmitted: invoicesSubmitted,
		templateRenders:   templateRenders,
		gatewayRequests:   gatewayRequests,
	}, nil
}

// RecordDraftOpened increments the wizard open count.
func (m *Metrics) RecordDraftOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.draftsOpened.Add(ctx, 1)
}

// RecordDraftEvent increments per-event counts.
func (m *Metrics) RecordDraftEvent(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("event_type", strings.TrimSpace(eventType)))
	m.draftEvents.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSubmission increments submission counts by provider status.
func (m *Metrics) RecordSubmission(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.invoicesSubmitted.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTemplateRender increments discrimination render counts.
func (m *Metrics) RecordTemplateRender(ctx context.Context) {
	if m == nil {
		return
	}
	m.templateRenders.Add(ctx, 1)
}

// RecordGatewayRequest increments provider call counts.
func (m *Metrics) RecordGatewayRequest(ctx context.Context, operation string, statusCode int) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("operation", strings.TrimSpace(operation)),
		attribute.Int("status_code", statusCode),
	)
	m.gatewayRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"event_type":  {},
	"status":      {},
	"status_code": {},
	"operation":   {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
