package bootstrap

import (
	"context"
	"log"
	"time"

	"notebook-markdown-be/internal/config"
	"notebook-markdown-be/internal/controller"
	"notebook-markdown-be/internal/events"
	"notebook-markdown-be/internal/handler"
	"notebook-markdown-be/internal/pkg/logger"
	"notebook-markdown-be/internal/repository/contract"
	"notebook-markdown-be/internal/repository/implementation"
	"notebook-markdown-be/internal/repository/memory"
	"notebook-markdown-be/internal/repository/unitofwork"
	"notebook-markdown-be/internal/service"
	internalWS "notebook-markdown-be/internal/websocket"
	pkgEvents "notebook-markdown-be/pkg/events"
	pktNats "notebook-markdown-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	MarkdownController controller.IMarkdownController
	NotebookController controller.INotebookController
	AdminController    controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuditService    service.IAuditService

	// WebSockets
	RenderEventsHandler *handler.RenderEventsHandler
	WebSocketHub        *internalWS.Hub

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	cacheTTL := time.Duration(cfg.Render.CacheTTLMinutes) * time.Minute

	// 2. Render queue
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure, each optional
	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// NATS
	var bus pkgEvents.Bus
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		bus = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}

	// Redis backs the render cache and the websocket fan-out
	rdb := newRedisClient(cfg)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}
	renderCache := newRenderCache(cfg, rdb, cacheTTL)

	c.WebSocketHub = internalWS.NewHub(rdb, sysLogger)
	c.RenderEventsHandler = handler.NewRenderEventsHandler(c.WebSocketHub, cfg.Auth.JwtSecret, sysLogger)

	// 4. Services
	eventPublisher := events.NewBusPublisher(bus, sysLogger)
	publisherService := service.NewPublisherService(cfg.Render.TopicName, pubSub)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.Render.TopicName,
		uowFactory,
		renderCache,
		cacheTTL,
		c.WebSocketHub,
		sysLogger,
	)
	c.AuditService = service.NewAuditService(natsSub, sysLogger)

	markdownService := service.NewMarkdownService(sysLogger)
	notebookService := service.NewNotebookService(
		uowFactory,
		publisherService,
		renderCache,
		cacheTTL,
		eventPublisher,
		sysLogger,
	)
	adminService := service.NewAdminService(sysLogger)

	// 5. Controllers
	c.MarkdownController = controller.NewMarkdownController(markdownService)
	c.NotebookController = controller.NewNotebookController(notebookService, cfg.Auth.JwtSecret)
	c.AdminController = controller.NewAdminController(adminService, cfg.Auth.JwtSecret)

	return c
}

// newRedisClient returns nil when Redis is not reachable.
func newRedisClient(cfg *config.Config) *redis.Client {
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// newRenderCache prefers Redis and falls back to process memory.
func newRenderCache(cfg *config.Config, rdb *redis.Client, ttl time.Duration) contract.RenderCache {
	if cfg.Render.CacheBackend != "redis" || rdb == nil {
		log.Printf("[INFO] Using render cache: MEMORY")
		return memory.NewRenderCache(ttl)
	}
	log.Printf("[INFO] Using render cache: REDIS")
	return implementation.NewRedisRenderCache(rdb, ttl)
}

// Close releases the broker connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
