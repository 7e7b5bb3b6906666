package logger

import "context"

type ctxKey int

const (
	traceIDKey ctxKey = iota
	tenantIDKey
	orderIDKey
	workerIDKey
)

// WithTraceID tags ctx with a trace id (one per poll cycle, request or job).
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// WithTenantID tags ctx with the supermarket the work belongs to.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// WithOrderID tags ctx with the order being acted on.
func WithOrderID(ctx context.Context, orderID string) context.Context {
	return context.WithValue(ctx, orderIDKey, orderID)
}

// WithWorkerID tags ctx with a worker goroutine index.
func WithWorkerID(ctx context.Context, workerID int) context.Context {
	return context.WithValue(ctx, workerIDKey, workerID)
}

// TraceID returns the trace id stored in ctx, if any.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// OrderID returns the order id stored in ctx, if any.
func OrderID(ctx context.Context) string {
	id, _ := ctx.Value(orderIDKey).(string)
	return id
}
