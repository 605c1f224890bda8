package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/structout-go/api"
)

const (
	instrumentationName = "github.com/felixgeelhaar/structout-go"
)

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*otelConfig)

type otelConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	serviceName    string
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(c *otelConfig) {
		c.meterProvider = mp
	}
}

// WithOTelServiceName sets the service name for telemetry.
func WithOTelServiceName(name string) OTelOption {
	return func(c *otelConfig) {
		c.serviceName = name
	}
}

// OTel returns middleware that adds OpenTelemetry tracing and metrics.
// It creates a client span per request and records request counts,
// latency, and token usage.
func OTel(opts ...OTelOption) Middleware {
	cfg := &otelConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		serviceName:    "structout-client",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tracer := cfg.tracerProvider.Tracer(
		instrumentationName,
		trace.WithInstrumentationVersion("1.0.0"),
	)

	meter := cfg.meterProvider.Meter(
		instrumentationName,
		metric.WithInstrumentationVersion("1.0.0"),
	)

	// Create metrics instruments
	requestCounter, _ := meter.Int64Counter(
		"llm.client.requests",
		metric.WithDescription("Total number of chat-completions requests"),
		metric.WithUnit("{request}"),
	)

	requestDuration, _ := meter.Float64Histogram(
		"llm.client.duration",
		metric.WithDescription("Duration of chat-completions requests"),
		metric.WithUnit("ms"),
	)

	errorCounter, _ := meter.Int64Counter(
		"llm.client.errors",
		metric.WithDescription("Total number of chat-completions errors"),
		metric.WithUnit("{error}"),
	)

	tokenCounter, _ := meter.Int64Counter(
		"llm.client.tokens",
		metric.WithDescription("Token usage reported by the API"),
		metric.WithUnit("{token}"),
	)

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *api.ChatCompletionRequest) (*api.ChatCompletionResponse, error) {
			// Start span
			ctx, span := tracer.Start(ctx, "chat.completions",
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("llm.model", req.Model),
					attribute.String("service.name", cfg.serviceName),
				),
			)
			defer span.End()

			// Add request ID if present
			if reqID := RequestIDFromContext(ctx); reqID != "" {
				span.SetAttributes(attribute.String("llm.request_id", reqID))
			}

			// Record start time for duration metric
			startTime := time.Now()

			// Common metric attributes
			attrs := []attribute.KeyValue{
				attribute.String("llm.model", req.Model),
				attribute.String("service.name", cfg.serviceName),
			}

			// Increment request counter
			requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

			// Execute handler
			resp, err := next(ctx, req)

			// Record duration
			duration := float64(time.Since(startTime).Milliseconds())
			requestDuration.Record(ctx, duration, metric.WithAttributes(attrs...))

			// Record result
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())

				var apiErr *api.Error
				if errors.As(err, &apiErr) {
					span.SetAttributes(
						attribute.String("llm.error.type", apiErr.Type),
						attribute.Int("http.status_code", apiErr.Status),
					)
					errorCounter.Add(ctx, 1, metric.WithAttributes(
						append(attrs, attribute.String("llm.error.type", apiErr.Type))...,
					))
				} else {
					errorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
				}
			} else {
				span.SetStatus(codes.Ok, "")
				if resp != nil {
					if len(resp.Choices) > 0 {
						span.SetAttributes(attribute.String("llm.finish_reason", resp.Choices[0].FinishReason))
					}
					if resp.Usage != nil {
						span.SetAttributes(
							attribute.Int("llm.usage.prompt_tokens", resp.Usage.PromptTokens),
							attribute.Int("llm.usage.completion_tokens", resp.Usage.CompletionTokens),
						)
						tokenCounter.Add(ctx, int64(resp.Usage.PromptTokens), metric.WithAttributes(
							append(attrs, attribute.String("llm.token.type", "prompt"))...,
						))
						tokenCounter.Add(ctx, int64(resp.Usage.CompletionTokens), metric.WithAttributes(
							append(attrs, attribute.String("llm.token.type", "completion"))...,
						))
					}
				}
			}

			return resp, err
		}
	}
}

// SpanFromContext returns the current span from context.
// Returns a no-op span if no span is present.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanEvent adds an event to the current span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// SetSpanAttribute sets an attribute on the current span.
func SetSpanAttribute(ctx context.Context, key string, value any) {
	span := trace.SpanFromContext(ctx)
	switch v := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, v))
	case int:
		span.SetAttributes(attribute.Int(key, v))
	case int64:
		span.SetAttributes(attribute.Int64(key, v))
	case float64:
		span.SetAttributes(attribute.Float64(key, v))
	case bool:
		span.SetAttributes(attribute.Bool(key, v))
	case []string:
		span.SetAttributes(attribute.StringSlice(key, v))
	}
}
