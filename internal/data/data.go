package data

import (
	"context"
	"fmt"

	"ambassador-tracker/internal/conf"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewUnitOfWork,
	NewClickRepo,
	NewInvitationRepo,
	NewWidgetRepository,
	NewLoadHistory,
)

// Data bundles the shared storage clients.
type Data struct {
	db  *entsql.Driver
	rdb *redis.Client
}

// NewData opens the database, runs migrations and connects Redis when configured.
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)

	driver, source := dialect.SQLite, "file:ambassador?mode=memory&cache=shared&_fk=1"
	if c != nil && c.Database != nil {
		if c.Database.Driver != "" {
			driver = c.Database.Driver
		}
		if c.Database.Source != "" {
			source = c.Database.Source
		}
	}

	drv, err := openDriver(driver, source)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := Migrate(context.Background(), drv); err != nil {
		_ = drv.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	d := &Data{db: drv}

	if c != nil && c.Redis != nil && c.Redis.Addr != "" {
		d.rdb = redis.NewClient(&redis.Options{
			Addr:         c.Redis.Addr,
			Password:     c.Redis.Password,
			DB:           c.Redis.Db,
			ReadTimeout:  c.Redis.ReadTimeout.AsDuration(),
			WriteTimeout: c.Redis.WriteTimeout.AsDuration(),
		})
		if err := d.rdb.Ping(context.Background()).Err(); err != nil {
			helper.Warnf("redis unavailable, continuing without cache: %v", err)
			_ = d.rdb.Close()
			d.rdb = nil
		}
	}

	cleanup := func() {
		helper.Info("message", "closing the data resources")
		if err := d.db.Close(); err != nil {
			helper.Error(err)
		}
		if d.rdb != nil {
			if err := d.rdb.Close(); err != nil {
				helper.Error(err)
			}
		}
	}

	return d, cleanup, nil
}

// NewDataFromDriver wraps existing clients. rdb may be nil.
func NewDataFromDriver(drv *entsql.Driver, rdb *redis.Client) *Data {
	return &Data{db: drv, rdb: rdb}
}

func openDriver(driver, source string) (*entsql.Driver, error) {
	drv, err := entsql.Open(driver, source)
	if err != nil {
		return nil, err
	}
	if drv.Dialect() == dialect.SQLite {
		// A single connection keeps in-memory databases alive and avoids
		// "database is locked" between concurrent writers.
		drv.DB().SetMaxOpenConns(1)
	}
	return drv, nil
}

// Driver exposes the SQL driver for tooling such as the admin CLI.
func (d *Data) Driver() *entsql.Driver {
	return d.db
}

// Redis returns the Redis client, or nil when Redis is disabled.
func (d *Data) Redis() *redis.Client {
	return d.rdb
}

// Ping checks the database and, when enabled, Redis.
func (d *Data) Ping(ctx context.Context) error {
	if err := d.db.DB().PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if d.rdb != nil {
		if err := d.rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}
