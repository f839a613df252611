package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"ambassador-tracker/internal/biz"
	"ambassador-tracker/internal/conf"
	"ambassador-tracker/internal/data"
	"ambassador-tracker/internal/infra/eventbus"
	"ambassador-tracker/internal/mail"
	"ambassador-tracker/internal/metrics"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/env"
	"github.com/go-kratos/kratos/v2/config/file"
	_ "github.com/go-kratos/kratos/v2/encoding/yaml"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"
)

// app is the slice of the server graph the CLI needs. Events published
// here have no subscribers and are dropped.
type app struct {
	bc          conf.Bootstrap
	data        *data.Data
	widgets     *biz.WidgetUsecase
	clicks      *biz.ClickUsecase
	integration *biz.IntegrationUsecase
	invitations *biz.InvitationUsecase
	out         io.Writer
	json        bool
}

func loadBootstrap(path string) (conf.Bootstrap, error) {
	var bc conf.Bootstrap
	c := config.New(config.WithSource(env.NewSource(""), file.NewSource(path)))
	defer c.Close()
	if err := c.Load(); err != nil {
		return bc, fmt.Errorf("load config: %w", err)
	}
	if err := c.Scan(&bc); err != nil {
		return bc, fmt.Errorf("scan config: %w", err)
	}
	return bc, nil
}

func newApp(opts *rootOptions, out io.Writer) (*app, func(), error) {
	bc, err := loadBootstrap(opts.conf)
	if err != nil {
		return nil, nil, err
	}

	logger := log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelWarn))
	d, cleanup, err := data.NewData(bc.Data, logger)
	if err != nil {
		return nil, nil, err
	}

	m := metrics.New(metrics.NewRegistry())
	bus := eventbus.NewEventBus(eventbus.NewKratosLoggerAdapter(logger))
	widgets := biz.NewWidgetUsecase(data.NewWidgetRepository(d, logger), bc.Tracking, logger)

	a := &app{
		bc:          bc,
		data:        d,
		widgets:     widgets,
		clicks:      biz.NewClickUsecase(data.NewClickRepo(d, logger), widgets, bus, m, logger),
		integration: biz.NewIntegrationUsecase(widgets, data.NewLoadHistory(bc.Tracking, d, logger), m, logger),
		invitations: biz.NewInvitationUsecase(
			data.NewInvitationRepo(d, logger),
			data.NewUnitOfWork(d, logger),
			widgets,
			mail.NewLogMailer(logger),
			mail.NewLinkBuilder(bc.Mail, bc.Tracking),
			bus, m, logger,
		),
		out:  out,
		json: opts.output == "json",
	}
	return a, func() {
		_ = bus.Close()
		cleanup()
	}, nil
}

// run builds the app for one command invocation.
func run(opts *rootOptions, fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := newApp(opts, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer cleanup()
		return fn(cmd.Context(), a, args)
	}
}

// print writes v as indented JSON in json mode, otherwise the text lines.
func (a *app) print(v any, lines ...string) error {
	if a.json {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(a.out, l); err != nil {
			return err
		}
	}
	return nil
}
