package bootstrap

import (
	"context"
	"log"

	"eirybot-assistant-be/internal/config"
	"eirybot-assistant-be/internal/controller"
	"eirybot-assistant-be/internal/handler"
	"eirybot-assistant-be/internal/pkg/logger"
	"eirybot-assistant-be/internal/pkg/mailer"
	"eirybot-assistant-be/internal/repository/contract"
	"eirybot-assistant-be/internal/repository/implementation"
	"eirybot-assistant-be/internal/repository/memory"
	"eirybot-assistant-be/internal/service"
	"eirybot-assistant-be/internal/websocket"
	"eirybot-assistant-be/pkg/knowledge"
	"eirybot-assistant-be/pkg/llm/factory"
	"eirybot-assistant-be/pkg/ratelimit"

	pktNats "eirybot-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	AdminController controller.IAdminController

	// Background services (exposed for main.go to run)
	PersisterService        service.IPersisterService
	LeadNotificationService *service.LeadNotificationService

	// WebSockets
	LeadFeedHandler *handler.LeadFeedHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
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
		rdb = nil
	}

	// WebSocket hub for the live lead feed
	wsLogger := logger.NewIsolatedLogger("logs/leads.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Repositories
	conversationRepo := implementation.NewConversationRepository(db)

	var rateLimitRepo contract.RateLimitRepository
	switch cfg.RateLimit.Store {
	case "redis":
		if rdb != nil {
			rateLimitRepo = implementation.NewRedisRateLimitRepository(rdb)
			log.Printf("[INFO] Using rate limit store: REDIS")
		} else {
			rateLimitRepo = memory.NewRateLimitRepository()
			log.Printf("[WARN] Redis unavailable, falling back to in-memory rate limit store")
		}
	case "memory":
		rateLimitRepo = memory.NewRateLimitRepository()
		log.Printf("[INFO] Using rate limit store: MEMORY")
	default:
		rateLimitRepo = implementation.NewRateLimitRepository(db)
		log.Printf("[INFO] Using rate limit store: POSTGRES")
	}

	// 4. Domain components
	limiter := ratelimit.NewLimiter(rateLimitRepo, sysLogger)

	kb, err := knowledge.Load(cfg.Knowledge.SiteIndexPath, cfg.Knowledge.MessagesPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load site knowledge: %v", err)
	}
	retriever := knowledge.NewRetriever(kb)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OpenAIBaseURL,
		cfg.Ai.OpenAIKey,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 5. Services
	persistencePublisher := service.NewPersistencePublisher(pubSub, sysLogger)
	persisterService := service.NewPersisterService(pubSub, conversationRepo, natsPub, sysLogger)

	chatService := service.NewChatService(
		limiter,
		retriever,
		llmProvider,
		persistencePublisher,
		sysLogger,
	)
	adminService := service.NewAdminService(cfg.Admin, conversationRepo, rateLimitRepo)

	var leadNotifService *service.LeadNotificationService
	if natsSub != nil {
		leadNotifService = service.NewLeadNotificationService(
			natsSub,
			emailService,
			cfg.SMTP.LeadInbox,
			wsHub,
			sysLogger,
		)
		go leadNotifService.Start()
	}

	// 6. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService),
		AdminController: controller.NewAdminController(adminService),

		PersisterService:        persisterService,
		LeadNotificationService: leadNotifService,

		LeadFeedHandler: handler.NewLeadFeedHandler(wsHub, wsLogger),
		WebSocketHub:    wsHub,
	}
}
