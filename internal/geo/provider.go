package geo

import (
	"context"

	"ambassador-tracker/internal/conf"
	"ambassador-tracker/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet is geo providers.
var ProviderSet = wire.NewSet(NewProvider, NewObservedResolver)

// NewProvider picks the lookup backend: the MaxMind database when one is
// configured and readable, otherwise the ip-api HTTP service.
func NewProvider(c *conf.Geo, logger log.Logger) (Provider, func(), error) {
	helper := log.NewHelper(logger)
	if c == nil {
		c = &conf.Geo{}
	}

	if c.MaxmindDb != "" {
		mm, err := NewMaxMindProvider(c.MaxmindDb)
		if err == nil {
			helper.Infof("geo: using maxmind database %s", c.MaxmindDb)
			return mm, func() { _ = mm.Close() }, nil
		}
		helper.Warnf("geo: cannot open maxmind database %s, falling back to ip-api: %v", c.MaxmindDb, err)
	}

	p, err := NewIPAPIProvider(context.Background(), c.ProviderUrl, c.Timeout.AsDuration())
	if err != nil {
		return nil, nil, err
	}
	return p, func() { _ = p.Close() }, nil
}

// NewObservedResolver is NewResolver reporting lookups to the geo counter.
func NewObservedResolver(p Provider, m *metrics.Metrics, logger log.Logger) *Resolver {
	return NewResolver(p, logger, WithObserver(m.ObserveGeoLookup))
}
