package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ambassador-tracker/internal/biz"
	"ambassador-tracker/internal/conf"
	"ambassador-tracker/internal/infra/eventbus"
	"ambassador-tracker/internal/infra/logger"
	"ambassador-tracker/internal/infra/rabbitmq"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/env"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/tracing"
	"github.com/go-kratos/kratos/v2/transport/grpc"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/joho/godotenv"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "ambassador-tracker"
	// Version is the version of the compiled software.
	Version string
	// flagconf is the config flag.
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs", "config path, eg: -conf config.yaml")
}

func newApp(
	logger log.Logger,
	gs *grpc.Server,
	hs *http.Server,
	eventBus *eventbus.EventBus,
	router *eventbus.Router,
	handlers []eventbus.EventHandler,
	consumer *rabbitmq.Consumer,
) *kratos.App {
	helper := log.NewHelper(logger)
	biz.RegisterEventHandlers(router, handlers)

	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			gs,
			hs,
		),
		kratos.BeforeStart(func(ctx context.Context) error {
			errc := make(chan error, 1)
			go func() {
				err := router.Run(ctx)
				if err != nil {
					helper.Errorf("event router error: %v", err)
				}
				errc <- err
			}()
			select {
			case <-router.Running():
			case err := <-errc:
				return fmt.Errorf("event router stopped before start: %w", err)
			}
			return consumer.Start(ctx)
		}),
		kratos.BeforeStop(func(ctx context.Context) error {
			if err := consumer.Stop(ctx); err != nil {
				helper.Errorf("failed to stop signup consumer: %v", err)
			}
			if err := router.Close(); err != nil {
				helper.Errorf("failed to close router: %v", err)
			}
			if err := eventBus.Close(); err != nil {
				helper.Errorf("failed to close event bus: %v", err)
			}
			return nil
		}),
	)
}

func main() {
	flag.Parse()
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	c := config.New(
		config.WithSource(
			env.NewSource(""),
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}

	zl, flush, err := logger.New(bc.Log)
	if err != nil {
		panic(err)
	}
	defer flush()

	log.SetLogger(zl)
	kl := log.With(zl,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
		"trace.id", tracing.TraceID(),
		"span.id", tracing.SpanID(),
	)

	app, cleanup, err := wireApp(bc.Server, bc.Data, bc.Geo, bc.Tracking, bc.Auth, bc.Mail, bc.Rabbitmq, kl)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		panic(err)
	}
}
