package main

import (
	"context"

	"github.com/ManishSRawat/e-sell/internal/auth"
	"github.com/ManishSRawat/e-sell/internal/config"
	"github.com/ManishSRawat/e-sell/internal/infra"
	"github.com/ManishSRawat/e-sell/internal/infra/cache"
	"github.com/ManishSRawat/e-sell/internal/infra/database"
	"github.com/ManishSRawat/e-sell/internal/infra/mail"
	"github.com/ManishSRawat/e-sell/internal/infra/rabbitmq"
	"github.com/ManishSRawat/e-sell/internal/logging"
	"github.com/ManishSRawat/e-sell/internal/notify"
	"github.com/ManishSRawat/e-sell/internal/repository"
	"github.com/ManishSRawat/e-sell/internal/repository/gormrepo"
	"github.com/ManishSRawat/e-sell/internal/services"
	"github.com/bwmarrin/snowflake"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app is the fully wired object graph shared by the commands.
type app struct {
	cfg   *config.AppConfig
	log   *zap.Logger
	db    *gorm.DB
	store repository.Store
	redis *redis.Client

	tokens    *auth.TokenManager
	publisher rabbitmq.PublisherInterface
	closePub  func()
	runner    *notify.Dispatcher

	users   *services.UserService
	catalog *services.CatalogService
	carts   *services.CartService
	orders  *services.OrderService
}

func loadBase(opts *RootOptions) (*config.AppConfig, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := logging.New(cfg.Logger)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := database.Open(cfg.Database, cfg.System.Workdir)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func newApp(opts *RootOptions) (*app, error) {
	cfg, log, db, err := loadBase(opts)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, db: db, closePub: func() {}}

	if err := database.Migrate(db); err != nil {
		a.Close()
		return nil, err
	}

	node, err := snowflake.NewNode(cfg.System.NodeID)
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "create id generator")
	}
	a.store = gormrepo.NewStore(db, node)

	var productCache infra.ProductCache = infra.NopCache{}
	if cfg.Redis.Addr != "" {
		a.redis = cache.NewRedisClient(cfg.Redis)
		productCache = cache.NewProductCache(a.redis, cfg.Redis.ProductTTL)
	} else {
		log.Info("redis not configured, product cache disabled")
	}

	if cfg.RabbitMQ.URL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.publisher = pub
		a.closePub = pub.Close
	} else {
		log.Info("rabbitmq not configured, order events are logged only")
		a.publisher = rabbitmq.NopPublisher{Log: log}
	}

	a.runner, err = notify.NewDispatcher(cfg.Jobs.NotifyWorkers, notifyTimeout, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	notifier := mail.New(cfg.Mail, log)
	a.tokens = auth.NewTokenManager(cfg.Auth, cfg.System.Appid)
	a.catalog = services.NewCatalogService(a.store, productCache, log)
	a.carts = services.NewCartService(a.store, log)
	a.users = services.NewUserService(a.store, a.tokens, notifier, a.runner, cfg.Auth, cfg.Web.PublicURL, log)
	a.orders = services.NewOrderService(a.store, a.catalog, notifier, a.publisher, a.runner, log)
	return a, nil
}

// warmup fills the product cache; failures are logged and otherwise ignored.
func (a *app) warmup(ctx context.Context) int {
	n, err := a.catalog.WarmupCache(ctx, a.cfg.Jobs.WarmupProducts)
	if err != nil {
		a.log.Warn("failed to warm up product cache", zap.Error(err))
		return n
	}
	a.log.Info("product cache warmed up", zap.Int("products", n))
	return n
}

// Close drains background work and releases every connection.
func (a *app) Close() {
	if a.runner != nil {
		a.runner.Close()
	}
	a.closePub()
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
