package bootstrap

import (
	"context"
	"log"

	"author-be/internal/config"
	"author-be/internal/controller"
	"author-be/internal/handler"
	"author-be/internal/pkg/logger"
	"author-be/internal/repository/memory"
	"author-be/internal/repository/unitofwork"
	"author-be/internal/schema"
	"author-be/internal/service"
	"author-be/internal/websocket"
	"author-be/pkg/events"
	pktNats "author-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	ActivityController       controller.IActivityController
	ContentElementController controller.IContentElementController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuditService    *service.AuditService

	// WebSockets
	RealtimeHandler *handler.RealtimeHandler
	WebSocketHub    *websocket.Hub

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	registry, err := schema.LoadFile(cfg.Schema.Path)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load schema config %s: %v", cfg.Schema.Path, err)
	}

	// 2. Event bus for post-commit realtime events
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	// 3. Infrastructure
	// NATS carries the durable content stream.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}
	// A nil *Publisher must not end up inside the interface.
	var contentEvents events.Publisher
	if natsPub != nil {
		contentEvents = natsPub
	}

	// Redis relays realtime events between instances.
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (realtime stays local)", err)
		_ = rdb.Close()
		rdb = nil
	}

	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// 4. Services
	metrics := service.NewSyncMetrics(prometheus.DefaultRegisterer)
	publisherService := service.NewPublisherService(cfg.App.RealtimeTopic, pubSub)
	tree := service.NewContentTree(registry, publisherService, sysLogger, metrics)

	activityService := service.NewActivityService(uowFactory, tree, contentEvents, sysLogger)
	elementService := service.NewContentElementService(uowFactory, tree)
	libraryService := service.NewLibraryService(uowFactory, tree, memory.NewRepositoryCache())

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.RealtimeTopic,
		wsHub,
		contentEvents,
		sysLogger,
	)

	var auditService *service.AuditService
	if natsSub != nil {
		auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
		auditService = service.NewAuditService(natsSub, auditLogger)
	}

	c := &Container{
		Logger:                   sysLogger,
		ActivityController:       controller.NewActivityController(activityService, libraryService),
		ContentElementController: controller.NewContentElementController(elementService),
		ConsumerService:          consumerService,
		AuditService:             auditService,
		RealtimeHandler:          handler.NewRealtimeHandler(wsHub, sysLogger),
		WebSocketHub:             wsHub,
	}

	c.closers = append(c.closers, wsHub.Close, func() { _ = pubSub.Close() })
	if natsPub != nil {
		c.closers = append(c.closers, natsPub.Close)
	}
	if natsSub != nil {
		c.closers = append(c.closers, natsSub.Close)
	}
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}
	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })
	return c
}

// Close releases the infrastructure in creation order.
func (c *Container) Close() {
	for _, fn := range c.closers {
		fn()
	}
}
