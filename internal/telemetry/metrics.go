package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all custom metrics for the service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal metric.Int64Counter
	HTTPDurationMs    metric.Float64Histogram

	// Business metrics
	AppointmentTotal  metric.Int64Counter
	NotificationTotal metric.Int64Counter
	UserTotal         metric.Int64Counter

	// Auth metrics
	AuthFailuresTotal metric.Int64Counter

	// Push delivery metrics
	PushDeliveryTotal metric.Int64Counter
}

// InitMetrics initializes all custom metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/salud-red/appointment-service")

	httpRequestsTotal, err := meter.Int64Counter(
		"http_server_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	httpDurationMs, err := meter.Float64Histogram(
		"http_server_duration_milliseconds",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	appointmentTotal, err := meter.Int64Counter(
		"appointment_total",
		metric.WithDescription("Total number of appointment operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	notificationTotal, err := meter.Int64Counter(
		"notification_total",
		metric.WithDescription("Total number of notification operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	userTotal, err := meter.Int64Counter(
		"user_total",
		metric.WithDescription("Total number of user operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	authFailuresTotal, err := meter.Int64Counter(
		"auth_failures_total",
		metric.WithDescription("Total number of authentication failures"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	pushDeliveryTotal, err := meter.Int64Counter(
		"push_delivery_total",
		metric.WithDescription("Total number of push notification delivery attempts"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	log.Println("✓ Custom metrics initialized")

	return &Metrics{
		HTTPRequestsTotal: httpRequestsTotal,
		HTTPDurationMs:    httpDurationMs,
		AppointmentTotal:  appointmentTotal,
		NotificationTotal: notificationTotal,
		UserTotal:         userTotal,
		AuthFailuresTotal: authFailuresTotal,
		PushDeliveryTotal: pushDeliveryTotal,
	}, nil
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPDurationMs.Record(ctx, durationMs, metric.WithAttributes(attrs...))
}

// RecordAppointmentOperation records an appointment operation metric
func (m *Metrics) RecordAppointmentOperation(ctx context.Context, operation string) {
	m.AppointmentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordNotificationOperation records a notification operation metric
func (m *Metrics) RecordNotificationOperation(ctx context.Context, operation string) {
	m.NotificationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordUserOperation records a user operation metric
func (m *Metrics) RecordUserOperation(ctx context.Context, operation string) {
	m.UserTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordAuthFailure records an authentication failure metric
func (m *Metrics) RecordAuthFailure(ctx context.Context, reason string) {
	m.AuthFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordPushDelivery records push delivery outcomes
func (m *Metrics) RecordPushDelivery(ctx context.Context, delivered, failed int) {
	if delivered > 0 {
		m.PushDeliveryTotal.Add(ctx, int64(delivered), metric.WithAttributes(
			attribute.String("outcome", "delivered"),
		))
	}
	if failed > 0 {
		m.PushDeliveryTotal.Add(ctx, int64(failed), metric.WithAttributes(
			attribute.String("outcome", "failed"),
		))
	}
}
