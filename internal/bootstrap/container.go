package bootstrap

import (
	"context"
	"time"

	"ai-quiz-runner/internal/config"
	"ai-quiz-runner/internal/controller"
	"ai-quiz-runner/internal/pkg/logger"
	"ai-quiz-runner/internal/repository/contract"
	"ai-quiz-runner/internal/repository/memory"
	"ai-quiz-runner/internal/repository/redisstore"
	"ai-quiz-runner/internal/repository/unitofwork"
	"ai-quiz-runner/internal/service"

	pktNats "ai-quiz-runner/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	bootModule          = "BOOTSTRAP"
	sessionAuditSubject = "quiz.session.>"
	sessionAuditDurable = "quiz-session-audit"
)

type Container struct {
	// Controllers
	QuizController          controller.IQuizController
	KnowledgeController     controller.IKnowledgeController
	HistoryController       controller.IHistoryController
	WrongQuestionController controller.IWrongQuestionController
	AiConfigController      controller.IAiConfigController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

// Close releases the broker and cache connections opened by NewContainer.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	return NewContainerWithLogger(db, cfg, sysLogger)
}

// NewContainerWithLogger wires every service around an existing logger.
func NewContainerWithLogger(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) *Container {
	c := &Container{Logger: sysLogger}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	sessions := c.sessionStore(cfg, sysLogger)

	var eventPublisher service.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn(bootModule, "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn(bootModule, "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
		} else {
			err = natsSub.Subscribe(context.Background(), sessionAuditSubject, sessionAuditDurable, service.NewSessionAuditHandler(sysLogger))
			if err != nil {
				sysLogger.Warn(bootModule, "Failed to subscribe to session events", map[string]interface{}{"error": err.Error()})
			}
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.AnswerTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.AnswerTopic, uowFactory, sysLogger)

	knowledgeService := service.NewKnowledgeService(cfg.App.UploadDir, cfg.App.MaxUploadBytes, sysLogger)
	aiConfigService := service.NewAiConfigService(uowFactory, cfg.Ai, nil, sysLogger)
	historyService := service.NewHistoryService(uowFactory)
	wrongQuestionService := service.NewWrongQuestionService(uowFactory, sysLogger)

	quizService := service.NewQuizService(
		sessions,
		uowFactory,
		knowledgeService,
		aiConfigService,
		publisherService,
		eventPublisher,
		sysLogger,
	)
	resetService := service.NewResetService(
		sessions,
		historyService,
		wrongQuestionService,
		knowledgeService,
		eventPublisher,
		sysLogger,
	)

	// 5. Controllers
	c.QuizController = controller.NewQuizController(quizService, resetService)
	c.KnowledgeController = controller.NewKnowledgeController(knowledgeService)
	c.HistoryController = controller.NewHistoryController(historyService)
	c.WrongQuestionController = controller.NewWrongQuestionController(wrongQuestionService, quizService)
	c.AiConfigController = controller.NewAiConfigController(aiConfigService)

	return c
}

// sessionStore picks Redis when configured and reachable, else the in-process cache.
func (c *Container) sessionStore(cfg *config.Config, sysLogger logger.ILogger) contract.SessionRepository {
	if cfg.App.SessionStore != "redis" {
		return memory.NewSessionRepository(cfg.App.SessionTTL)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn(bootModule, "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		sysLogger.Warn(bootModule, "Failed to connect to Redis, sessions stay in memory", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return memory.NewSessionRepository(cfg.App.SessionTTL)
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	sysLogger.Info(bootModule, "Sessions stored in Redis", map[string]interface{}{"addr": opt.Addr})
	return redisstore.NewSessionRepository(rdb, cfg.App.SessionTTL)
}
