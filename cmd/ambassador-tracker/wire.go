//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"ambassador-tracker/internal/biz"
	"ambassador-tracker/internal/conf"
	"ambassador-tracker/internal/data"
	"ambassador-tracker/internal/geo"
	"ambassador-tracker/internal/infra/eventbus"
	"ambassador-tracker/internal/infra/rabbitmq"
	"ambassador-tracker/internal/mail"
	"ambassador-tracker/internal/metrics"
	"ambassador-tracker/internal/server"
	"ambassador-tracker/internal/service"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Geo, *conf.Tracking, *conf.Auth, *conf.Mail, *conf.Rabbitmq, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		server.ProviderSet,
		data.ProviderSet,
		biz.ProviderSet,
		service.ProviderSet,
		eventbus.ProviderSet,
		metrics.ProviderSet,
		geo.ProviderSet,
		mail.ProviderSet,
		rabbitmq.ProviderSet,
		wire.Bind(new(biz.LocationResolver), new(*geo.Resolver)),
		wire.Bind(new(server.HealthChecker), new(*data.Data)),
		newApp,
	))
}
