package data

import (
	"context"
	"time"

	"github.com/giovannadias1704-collab/medplanner-sub001/internal/biz"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/conf"
	"github.com/giovannadias1704-collab/medplanner-sub001/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewDB,
	NewRedis,
	NewRedsync,
	NewSubscriptionRepo,
	NewCouponRequestRepo,
	NewWhatsAppDispatcher,
	wire.Bind(new(biz.Transaction), new(*Data)),
)

// Data holds the shared storage handles.
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
}

type contextTxKey struct{}

// InTx runs fn inside a database transaction. Nested calls reuse the outer
// transaction through the context.
func (d *Data) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ctx = context.WithValue(ctx, contextTxKey{}, tx)
		return fn(ctx)
	})
}

// conn returns the transaction bound to the context, or the base handle.
func (d *Data) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(contextTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return d.db.WithContext(ctx)
}

// NewData .
func NewData(c *conf.Bootstrap, logger log.Logger, db *gorm.DB, rdb *redis.Client) (*Data, func(), error) {
	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = rdb.Close()
	}
	return &Data{db: db, rdb: rdb}, cleanup, nil
}

// NewDB .
func NewDB(c *conf.Bootstrap) *gorm.DB {
	source := ""
	if c != nil && c.Data != nil {
		source = c.Data.Database.Source
	}
	if source == "" {
		panic("database source is required")
	}

	db, err := gorm.Open(mysql.Open(source), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	if err := db.AutoMigrate(&model.Subscription{}, &model.CouponRequest{}); err != nil {
		panic(err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	dbConf := c.Data.Database
	if dbConf.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConf.MaxIdleConns)
	}
	if dbConf.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConf.MaxOpenConns)
	}
	if d := parseDuration(dbConf.ConnMaxLifetime); d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	}
	return db
}

// NewRedis .
func NewRedis(c *conf.Bootstrap) *redis.Client {
	var addr, password string
	var db int32
	var readTimeout, writeTimeout, dialTimeout time.Duration

	if c != nil && c.Data != nil {
		redisConf := c.Data.Redis
		addr = redisConf.Addr
		password = redisConf.Password
		db = redisConf.Db
		readTimeout = parseDuration(redisConf.ReadTimeout)
		writeTimeout = parseDuration(redisConf.WriteTimeout)
		dialTimeout = parseDuration(redisConf.DialTimeout)
	}

	if addr == "" {
		addr = "localhost:6379"
	}

	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           int(db),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		DialTimeout:  dialTimeout,
	})
}

// NewRedsync creates the distributed lock factory backing per-user mutexes.
func NewRedsync(rdb *redis.Client) *redsync.Redsync {
	pool := goredis.NewPool(rdb)
	return redsync.New(pool)
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
