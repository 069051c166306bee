package data

import (
	"context"
	"time"

	"catalog/internal/biz"
	"catalog/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewTransaction,
	NewMovieRepo,
	NewRatingRepo,
	NewEventPublisher,
)

// Data encapsulates database and stream connections
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
	log *log.Helper
}

type contextTxKey struct{}

// NewData creates Data instance with database and Redis connections
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	l := log.NewHelper(logger)

	// Initialize PostgreSQL connection
	db, err := gorm.Open(postgres.Open(c.Database.Source), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		l.Errorf("failed to connect to database: %v", err)
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.Errorf("failed to get database instance: %v", err)
		return nil, nil, err
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(orDefault(c.Database.MaxIdleConns, 10))
	sqlDB.SetMaxOpenConns(orDefault(c.Database.MaxOpenConns, 100))
	lifetime := c.Database.ConnMaxLifetime.AsDuration()
	if lifetime == 0 {
		lifetime = time.Hour
	}
	sqlDB.SetConnMaxLifetime(lifetime)

	l.Info("database connected successfully")

	if c.Database.AutoMigrate {
		if err := db.AutoMigrate(&Movie{}, &Genre{}, &Rating{}); err != nil {
			l.Errorf("failed to migrate schema: %v", err)
			_ = sqlDB.Close()
			return nil, nil, err
		}
		l.Info("schema migrated")
	}

	// Redis carries the change feed only; without it events are dropped
	var rdb *redis.Client
	if c.Redis != nil && c.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:         c.Redis.Addr,
			Password:     c.Redis.Password,
			DB:           c.Redis.Db,
			ReadTimeout:  c.Redis.ReadTimeout.AsDuration(),
			WriteTimeout: c.Redis.WriteTimeout.AsDuration(),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := rdb.Ping(ctx).Err(); err != nil {
			l.Warnf("failed to connect to redis, catalog events disabled: %v", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			l.Info("redis connected successfully")
		}
	}

	data := &Data{
		db:  db,
		rdb: rdb,
		log: l,
	}

	cleanup := func() {
		l.Info("closing data resources")
		if data.rdb != nil {
			if err := data.rdb.Close(); err != nil {
				l.Errorf("failed to close redis: %v", err)
			}
		}
		if err := sqlDB.Close(); err != nil {
			l.Errorf("failed to close database: %v", err)
		}
	}

	return data, cleanup, nil
}

// NewTransaction exposes Data as the biz unit of work.
func NewTransaction(d *Data) biz.Transaction {
	return d
}

// InTx runs fn inside a database transaction. Repositories reached through
// the ctx passed to fn use that transaction.
func (d *Data) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, contextTxKey{}, tx))
	})
}

// DB returns the transaction bound to ctx, or the pool.
func (d *Data) DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(contextTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return d.db.WithContext(ctx)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
