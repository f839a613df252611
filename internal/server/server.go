package server

import (
	"context"

	"github.com/google/wire"
)

// ProviderSet is server providers.
var ProviderSet = wire.NewSet(NewHTTPServer, NewGRPCServer)

// HealthChecker reports whether the backing stores are reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
