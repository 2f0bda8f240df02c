package bootstrap

import (
	"context"
	"fmt"

	"legal-aid-be/internal/config"
	"legal-aid-be/internal/constant"
	"legal-aid-be/internal/controller"
	"legal-aid-be/internal/pkg/logger"
	"legal-aid-be/internal/pkg/mailer"
	"legal-aid-be/internal/pkg/serverutils"
	"legal-aid-be/internal/repository/adapter"
	"legal-aid-be/internal/repository/unitofwork"
	"legal-aid-be/internal/service"
	"legal-aid-be/pkg/llm"
	"legal-aid-be/pkg/llm/factory"
	"legal-aid-be/pkg/llm/vertex"
	"legal-aid-be/pkg/lock"
	pkgNats "legal-aid-be/pkg/nats"
	"legal-aid-be/pkg/notice"
	noticeEvents "legal-aid-be/pkg/notice/events"
	"legal-aid-be/pkg/pdf"
	"legal-aid-be/pkg/storage"
	"legal-aid-be/pkg/storage/gcs"
	"legal-aid-be/pkg/storage/local"
	s3store "legal-aid-be/pkg/storage/s3"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	UserController     controller.IUserController
	NoticeController   controller.INoticeController
	ChatbotController  controller.IChatbotController
	DocumentController controller.IDocumentController // nil unless the local store is active

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	consumerLogger := logger.NewIsolatedLogger(cfg.Events.ConsumerLogPath)
	c.Logger = sysLogger
	c.onClose(func() {
		_ = consumerLogger.Sync()
		_ = sysLogger.Sync()
	})

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
		sysLogger,
	)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.onClose(func() { _ = pubSub.Close() })

	var bus noticeEvents.Bus
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "NATS publisher degraded", map[string]interface{}{"error": err.Error()})
	}
	if natsPub != nil {
		bus = natsPub
		c.onClose(natsPub.Close)
	}

	var audit service.EventSubscriber
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL, consumerLogger)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "NATS subscriber unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		audit = natsSub
		c.onClose(natsSub.Close)
	}

	// 3. Infrastructure
	llmProvider, err := factory.NewLLMProvider(ctx, llmConfig(cfg))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	if closer, ok := llmProvider.(interface{ Close() error }); ok {
		c.onClose(func() { _ = closer.Close() })
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	extractor := c.newExtractor(ctx, cfg, llmProvider, sysLogger)

	documents, err := c.newDocumentStore(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	locker := c.newLocker(ctx, cfg, sysLogger)

	// 4. Services
	noticeStore := adapter.NewNoticeStore(uowFactory)
	pipeline := notice.NewPipeline(notice.Config{
		Store:           noticeStore,
		LLM:             llmProvider,
		Documents:       documents,
		Inspector:       pdf.NewInspector(),
		Extractor:       extractor,
		Locker:          locker,
		Events:          noticeEvents.NewNatsPublisher(bus, pubSub, cfg.Events.ReplyFinalizedTopic, sysLogger),
		Prompts:         constant.NoticePrompts{},
		Logger:          sysLogger,
		MaxOutputTokens: cfg.Ai.MaxOutputTokens,
	})

	authService := service.NewAuthService(uowFactory, emailService, cfg.Auth.JwtSecret, cfg.Auth.TokenLifetime, sysLogger)
	userService := service.NewUserService(uowFactory)
	noticeService := service.NewNoticeService(pipeline, uowFactory, noticeStore, documents, sysLogger)
	chatbotService := service.NewChatbotService(uowFactory, llmProvider, cfg.Ai.LLMProvider, sysLogger)

	c.ConsumerService = service.NewConsumerService(
		pubSub,
		cfg.Events.ReplyFinalizedTopic,
		uowFactory,
		emailService,
		audit,
		consumerLogger,
	)

	// 5. Controllers
	auth := serverutils.JwtMiddleware(cfg.Auth.JwtSecret)
	c.AuthController = controller.NewAuthController(authService)
	c.UserController = controller.NewUserController(userService, auth)
	c.NoticeController = controller.NewNoticeController(noticeService, auth)
	c.ChatbotController = controller.NewChatbotController(chatbotService, auth)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *Container) onClose(fn func()) {
	c.closers = append(c.closers, fn)
}

func llmConfig(cfg *config.Config) factory.Config {
	fc := factory.Config{
		Provider:  cfg.Ai.LLMProvider,
		Model:     cfg.Ai.LLMModel,
		ProjectID: cfg.Ai.GCPProjectID,
		Region:    cfg.Ai.GCPRegion,
		Timeout:   cfg.Ai.Timeout,
	}
	switch cfg.Ai.LLMProvider {
	case "ollama":
		fc.BaseURL = cfg.Ai.OllamaBaseURL
	case "huggingface":
		fc.BaseURL = cfg.Ai.HuggingFaceURL
		fc.APIKey = cfg.Ai.HuggingFaceKey
	}
	return fc
}

// newExtractor reuses the Vertex backend when it already serves chat.
// Without a GCP project uploads must carry their notice text.
func (c *Container) newExtractor(ctx context.Context, cfg *config.Config, provider llm.LLMProvider, log logger.ILogger) notice.Extractor {
	if !cfg.Ai.ExtractorEnabled {
		return nil
	}
	if vp, ok := provider.(*vertex.VertexProvider); ok {
		return vp
	}
	if cfg.Ai.GCPProjectID == "" {
		log.Warn("BOOTSTRAP", "PDF extraction disabled: GCP project not set", nil)
		return nil
	}

	vp, err := vertex.NewVertexProvider(ctx, cfg.Ai.GCPProjectID, cfg.Ai.GCPRegion, cfg.Ai.ExtractorModel, cfg.Ai.Timeout)
	if err != nil {
		log.Warn("BOOTSTRAP", "PDF extraction disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}
	c.onClose(func() { _ = vp.Close() })
	return vp
}

func (c *Container) newDocumentStore(ctx context.Context, cfg *config.Config) (storage.DocumentStore, error) {
	var inner storage.DocumentStore

	switch cfg.Storage.Provider {
	case "gcs":
		store, err := gcs.New(ctx, cfg.Storage.Bucket)
		if err != nil {
			return nil, fmt.Errorf("init gcs store: %w", err)
		}
		c.onClose(func() { _ = store.Close() })
		inner = store
	case "s3":
		store, err := s3store.New(ctx, cfg.Storage.Bucket, cfg.Storage.Region, cfg.Storage.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("init s3 store: %w", err)
		}
		inner = store
	case "local", "":
		store, err := local.New(cfg.Storage.LocalDir, cfg.App.BaseURL, []byte(cfg.Auth.JwtSecret))
		if err != nil {
			return nil, fmt.Errorf("init local store: %w", err)
		}
		c.DocumentController = controller.NewDocumentController(store)
		inner = store
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Storage.Provider)
	}

	return storage.NewCachingStore(inner, cfg.Storage.RefreshAfter), nil
}

// newLocker falls back to the in-process lock when Redis is not configured
// or not reachable.
func (c *Container) newLocker(ctx context.Context, cfg *config.Config, log logger.ILogger) notice.Locker {
	if cfg.App.RedisURL == "" {
		return notice.NewKeyedMutex()
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Redis unreachable, using in-process lock", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return notice.NewKeyedMutex()
	}
	c.onClose(func() { _ = rdb.Close() })

	return lock.NewRedisLocker(rdb, "legal-aid:notice:", cfg.Ai.Timeout*3)
}
