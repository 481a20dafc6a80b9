// Package main 是应用程序的入口点。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"studylife-go/internal/config"
	"studylife-go/internal/handler"
	"studylife-go/internal/middleware"
	"studylife-go/internal/pipeline"
	"studylife-go/internal/repository"
	"studylife-go/internal/scheduler"
	"studylife-go/internal/service"
	"studylife-go/pkg/database"
	"studylife-go/pkg/es"
	"studylife-go/pkg/kafka"
	"studylife-go/pkg/llm"
	"studylife-go/pkg/log"
	"studylife-go/pkg/metrics"
	"studylife-go/pkg/storage"
	"studylife-go/pkg/token"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 1. 初始化配置
	config.Init(*configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 初始化数据库和 Redis
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("数据库初始化失败", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("数据库迁移失败", err)
	}
	rdb, err := database.OpenRedis(ctx, cfg.Database.Redis)
	if err != nil {
		log.Fatal("Redis 初始化失败", err)
	}

	// 4. 可选组件：Elasticsearch、MinIO、Kafka
	var (
		indexer  service.JournalIndexer
		searcher service.JournalSearcher
		archiver service.SummaryArchiver
		producer scheduler.TaskProducer
	)
	if cfg.Elasticsearch.Enabled {
		idx, err := es.NewJournalIndex(cfg.Elasticsearch)
		if err != nil {
			log.Errorf("es 初始化失败，日记检索不可用: %v", err)
		} else {
			indexer, searcher = idx, idx
		}
	}
	if cfg.MinIO.Enabled {
		archive, err := storage.NewArchive(ctx, cfg.MinIO)
		if err != nil {
			log.Errorf("MinIO 初始化失败，总结不会归档: %v", err)
		} else {
			archiver = archive
		}
	}
	var kafkaProducer *kafka.Producer
	if cfg.Kafka.Enabled {
		kafkaProducer = kafka.NewProducer(cfg.Kafka)
		producer = kafkaProducer
	}

	// 5. 初始化 Repository 与 Service (依赖注入)
	txTimeout := time.Duration(cfg.Dispatch.TxTimeoutSeconds) * time.Second
	userRepository := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(rdb)
	locker := repository.NewUserLocker(rdb,
		time.Duration(cfg.Dispatch.LockTTLSeconds)*time.Second,
		time.Duration(cfg.Dispatch.LockWaitSeconds)*time.Second)

	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	gateway := llm.NewClient(cfg.AIService)

	userService := service.NewUserService(userRepository, jwtManager)
	conversationService := service.NewConversationService(conversationRepo)
	contextService := service.NewContextService(db, cfg.Context.MaxChars, time.Now)
	actionService := service.NewActionService(db, service.DispatchOptions{
		TxTimeout:      txTimeout,
		SkillTxTimeout: time.Duration(cfg.Dispatch.SkillTxTimeoutSeconds) * time.Second,
		Indexer:        indexer,
	})
	chatService := service.NewChatService(userRepository, contextService, gateway, actionService, conversationService, locker)
	habitService := service.NewHabitService(db, txTimeout, time.Now)
	summaryService := service.NewSummaryService(db, gateway, archiver, time.Now)
	notificationService := service.NewNotificationService(db)
	journalSearchService := service.NewJournalSearchService(searcher)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Metrics(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", metrics.Handler())

	// 7. 注册路由
	userHandler := handler.NewUserHandler(userService)
	chatHandler := handler.NewChatHandler(chatService, conversationService)
	summaryHandler := handler.NewSummaryHandler(summaryService)
	habitHandler := handler.NewHabitHandler(habitService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	journalHandler := handler.NewJournalHandler(journalSearchService)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/auth/refreshToken", userHandler.RefreshToken)

		// 无需认证的路由 (公开访问)
		apiV1.POST("/users/register", userHandler.Register)
		apiV1.POST("/users/login", userHandler.Login)

		authed := apiV1.Group("")
		authed.Use(middleware.AuthMiddleware(jwtManager))
		{
			authed.GET("/users/me", userHandler.GetProfile)

			authed.POST("/chat", chatHandler.Chat)
			authed.GET("/chat/history", chatHandler.History)

			authed.POST("/summary/daily", summaryHandler.Daily)
			authed.POST("/summary/monthly", summaryHandler.Monthly)

			authed.GET("/habits", habitHandler.List)
			authed.PATCH("/habits/:id/toggle", habitHandler.Toggle)

			authed.GET("/notifications", notificationHandler.List)
			authed.PATCH("/notifications/:id/read", notificationHandler.MarkRead)

			authed.GET("/journals/search", journalHandler.Search)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服务监听失败: %w", err)
		}
		return nil
	})

	// 8. 启动后台 Kafka 消费者
	if cfg.Kafka.Enabled {
		processor := pipeline.NewProcessor(summaryService)
		g.Go(func() error {
			kafka.StartConsumer(gctx, cfg.Kafka, processor)
			return nil
		})
	}

	// 9. 启动总结调度器
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(cfg.Scheduler, userRepository, producer, summaryService)
		if err := sched.Start(); err != nil {
			log.Fatal("总结调度器启动失败", err)
		}
	}

	// 等待中断信号以实现优雅停机
	g.Go(func() error {
		<-gctx.Done()
		log.Info("接收到停机信号，正在关闭服务...")
		if sched != nil {
			sched.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP 服务器关闭失败: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Errorf("服务异常退出: %v", err)
	}

	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Errorf("关闭 Kafka 生产者失败: %v", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("服务已优雅关闭")
}
