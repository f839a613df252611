package server

import (
	"context"
	"strconv"
	"time"

	"ambassador-tracker/internal/metrics"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
)

// observe records request counts and latency per operation.
func observe(m *metrics.Metrics) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req any) (any, error) {
			operation := "unknown"
			if tr, ok := transport.FromServerContext(ctx); ok {
				operation = tr.Operation()
			}

			start := time.Now()
			reply, err := handler(ctx, req)

			code := 200
			if err != nil {
				code = int(errors.FromError(err).Code)
			}
			m.HTTPRequestsTotal.WithLabelValues(operation, strconv.Itoa(code)).Inc()
			m.HTTPRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
			return reply, err
		}
	}
}
