package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ldaehi0205/go-board-backend"

var (
	instrumentsOnce sync.Once
	authEvents      metric.Int64Counter
	tokenRotations  metric.Int64Counter
	repoOps         metric.Int64Counter
)

func instruments() {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(meterName)
		authEvents, _ = meter.Int64Counter("auth_events_total",
			metric.WithDescription("Auth endpoint outcomes by operation"))
		tokenRotations, _ = meter.Int64Counter("refresh_token_rotations_total",
			metric.WithDescription("Refresh token rotation outcomes"))
		repoOps, _ = meter.Int64Counter("repository_operations_total",
			metric.WithDescription("Repository operation outcomes by entity"))
	})
}

// RecordAuthEvent counts one register/login/refresh/me outcome.
func RecordAuthEvent(ctx context.Context, operation, outcome string) {
	instruments()
	if authEvents == nil {
		return
	}
	authEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordTokenRotation counts one rotation attempt: rotated, lost_race,
// reuse_detected.
func RecordTokenRotation(ctx context.Context, outcome string) {
	instruments()
	if tokenRotations == nil {
		return
	}
	tokenRotations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	instruments()
	if repoOps == nil {
		return
	}
	repoOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}
