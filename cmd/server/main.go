package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/AC-trading/ac-trading/internal/cache"
	"github.com/AC-trading/ac-trading/internal/config"
	"github.com/AC-trading/ac-trading/internal/domain"
	"github.com/AC-trading/ac-trading/internal/events"
	"github.com/AC-trading/ac-trading/internal/handler"
	"github.com/AC-trading/ac-trading/internal/hub"
	"github.com/AC-trading/ac-trading/internal/identity"
	"github.com/AC-trading/ac-trading/internal/repository"
	"github.com/AC-trading/ac-trading/internal/service"
	"github.com/AC-trading/ac-trading/pkg/database"
	"github.com/AC-trading/ac-trading/pkg/jwt"
	"github.com/AC-trading/ac-trading/pkg/log"
	"github.com/AC-trading/ac-trading/pkg/middleware"
	"github.com/AC-trading/ac-trading/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log.Init(cfg.Log)
	logger := log.L()

	// Database
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	err = database.AutoMigrate(db,
		&domain.Member{},
		&domain.Category{},
		&domain.Post{},
		&domain.PostLike{},
		&domain.ChatRoom{},
		&domain.ChatMessage{},
		&domain.Block{},
		&domain.Report{},
		&domain.Review{},
		&domain.PriceOffer{},
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database ready")

	// Repositories
	memberRepo := repository.NewGormMemberRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	likeRepo := repository.NewGormPostLikeRepository(db)
	roomRepo := repository.NewGormChatRoomRepository(db)
	messageRepo := repository.NewGormChatMessageRepository(db)
	blockRepo := repository.NewGormBlockRepository(db)
	reportRepo := repository.NewGormReportRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)
	offerRepo := repository.NewGormPriceOfferRepository(db)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := categoryRepo.Seed(seedCtx, domain.DefaultCategories()); err != nil {
		logger.Warn().Err(err).Msg("failed to seed categories")
	}
	cancelSeed()

	// Member cache
	var memberCache cache.MemberCache
	if redisCache, err := cache.NewRedisMemberCache(cfg.Redis, "member"); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, member cache disabled")
		memberCache = cache.NewNoopMemberCache()
	} else {
		memberCache = redisCache
	}
	defer memberCache.Close()

	// Event stream
	var producer events.EventProducer
	if cfg.Kafka.Enabled {
		kafkaProducer, err := events.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create kafka producer")
		}
		producer = kafkaProducer
	} else {
		producer = events.NewNoopProducer()
	}
	defer producer.Close()

	// Object storage
	var store storage.Storage
	switch cfg.Storage.Driver {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), cfg.Storage.S3)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init s3 storage")
		}
	default:
		store, err = storage.NewLocalStorage(cfg.Storage.LocalDir, cfg.Storage.LocalURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init local storage")
		}
	}

	// Services
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL, cfg.JWT.Issuer)
	provider := identity.NewHTTPProvider(cfg.Identity)
	filter := service.NewProfanityFilter(nil)

	memberService := service.NewMemberService(memberRepo, memberCache, cfg.Redis.CacheTTL)
	authService := service.NewAuthService(memberRepo, provider, tokens)
	postService := service.NewPostService(postRepo, likeRepo, categoryRepo, memberService)
	chatService := service.NewChatService(roomRepo, messageRepo, postRepo, blockRepo, memberService, filter, producer)
	blockService := service.NewBlockService(blockRepo, memberService)
	reportService := service.NewReportService(reportRepo, postRepo, memberService)
	reviewService := service.NewReviewService(reviewRepo, roomRepo, memberRepo, memberService)
	offerService := service.NewPriceOfferService(offerRepo, postRepo, roomRepo, memberService, producer)
	imageService := service.NewImageService(store)

	// Websocket hub
	chatHub := hub.NewHub(cfg.WebSocket)
	go chatHub.Run()

	// HTTP
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), log.GinMiddleware(logger))

	authMiddleware := middleware.NewAuthMiddleware(tokens)
	router := &handler.Router{
		Auth:     handler.NewAuthHandler(authService),
		Member:   handler.NewMemberHandler(memberService, reviewService),
		Category: handler.NewCategoryHandler(categoryRepo),
		Post:     handler.NewPostHandler(postService),
		Chat:     handler.NewChatHandler(chatService),
		Offer:    handler.NewPriceOfferHandler(offerService),
		Block:    handler.NewBlockHandler(blockService),
		Report:   handler.NewReportHandler(reportService),
		Review:   handler.NewReviewHandler(reviewService),
		Image:    handler.NewImageHandler(imageService),
		WS:       handler.NewWSHandler(chatHub, chatService, memberService, tokens, cfg.WebSocket),
	}
	router.RegisterRoutes(engine, authMiddleware)

	if cfg.Storage.Driver != "s3" {
		engine.Static("/uploads", cfg.Storage.LocalDir)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		// Periodically drop expired logout revocations.
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				tokens.CleanupRevoked()
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("server stopped")
}
