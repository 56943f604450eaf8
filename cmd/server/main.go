package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/pixelmuse/imagen_go_server/config"
	"github.com/pixelmuse/imagen_go_server/internal/api"
	"github.com/pixelmuse/imagen_go_server/internal/api/handler"
	"github.com/pixelmuse/imagen_go_server/internal/database"
	"github.com/pixelmuse/imagen_go_server/internal/inference"
	"github.com/pixelmuse/imagen_go_server/internal/pkg/cron"
	"github.com/pixelmuse/imagen_go_server/internal/pkg/oauth"
	"github.com/pixelmuse/imagen_go_server/internal/pkg/oss"
	"github.com/pixelmuse/imagen_go_server/internal/pkg/pubsub"
	"github.com/pixelmuse/imagen_go_server/internal/pkg/ws"
	"github.com/pixelmuse/imagen_go_server/internal/repository"
	"github.com/pixelmuse/imagen_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	var logger *zap.Logger
	if cfg.Server.Mode == "release" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	logger.Info("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	logger.Info("redis connected")

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub(logger)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	genRepo := repository.NewGenerationRepository(db)
	reconRepo := repository.NewReconciliationRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// 初始化外部依赖
	inferenceClient := inference.NewClient(cfg.Inference, logger)
	stateStore := oauth.NewStateStore(rdb)
	publisher := pubsub.NewPublisher(rdb)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, cfg)
	userService := service.NewUserService(userRepo, cfg)
	creditService := service.NewCreditService(userRepo, cfg)
	genService := service.NewGenerationService(db, genRepo, userRepo, reconRepo, inferenceClient, cfg, logger)
	genService.SetPublisher(publisher)
	paymentService := service.NewPaymentService(db, paymentRepo, userRepo, creditService, cfg)

	// OSS 未配置时跳过图片镜像与头像上传
	if cfg.OSS.Endpoint != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			logger.Fatal("failed to init oss client", zap.Error(err))
		}
		genService.SetOSSClient(ossClient)
		userService.SetOSSClient(ossClient)
		logger.Info("oss client initialized")
	}

	// 订阅生成事件并推送到 WebSocket
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(evt *pubsub.GenerationEvent) {
			_ = wsHub.SendToUser(evt.UserID, &ws.Message{
				Type: evt.Type,
				Data: evt,
			})
		})
		if err != nil {
			logger.Error("generation event subscriber stopped", zap.Error(err))
		}
	}()

	// 启动对账定时任务
	cronService := cron.NewService(genService, reconRepo, logger)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService, stateStore)
	userHandler := handler.NewUserHandler(userService)
	creditHandler := handler.NewCreditHandler(creditService)
	generationHandler := handler.NewGenerationHandler(genService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	modelsHandler := handler.NewModelsHandler(cfg, creditService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, logger)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		creditHandler,
		generationHandler,
		paymentHandler,
		modelsHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting", zap.String("addr", addr))
	if err := engine.Run(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
