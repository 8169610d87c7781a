package server

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/mroshb/game_journal/internal/config"
	"github.com/mroshb/game_journal/internal/events"
	"github.com/mroshb/game_journal/internal/handlers"
	"github.com/mroshb/game_journal/internal/middleware"
	"github.com/mroshb/game_journal/internal/repositories"
	"github.com/mroshb/game_journal/internal/services"
	"github.com/mroshb/game_journal/pkg/logger"
	"github.com/nats-io/nats.go"
	"gorm.io/gorm"
)

// Server owns the HTTP app and the optional activity consumer.
type Server struct {
	config   *config.Config
	app      *fiber.App
	limiter  interface{ Close() error }
	nc       *nats.Conn
	consumer *events.Consumer
}

// Init wires repositories, services and transports. Redis and NATS are
// used only when configured.
func Init(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Server, error) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	friendRepo := repositories.NewFriendRepository(db)
	gameRepo := repositories.NewGameRepository(db)
	activityRepo := repositories.NewActivityRepository(db)

	// Initialize services
	friendSvc := services.NewFriendService(friendRepo, userRepo)
	relationshipSvc := services.NewRelationshipService(friendRepo, userRepo)
	feedSvc := services.NewFeedService(activityRepo, cfg.FeedDefaultLimit, cfg.FeedMaxLimit)
	activitySvc := services.NewActivityService(activityRepo, userRepo, gameRepo)

	s := &Server{config: cfg}

	var limiter middleware.Limiter
	if cfg.RedisAddr != "" {
		client, err := middleware.NewRedisClient(ctx, middleware.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		redisLimiter := middleware.NewRedisLimiter(client, cfg.RateLimitPerUser, cfg.RateLimitPerIP, cfg.GetRateLimitWindow())
		limiter, s.limiter = redisLimiter, redisLimiter
		logger.Info("Using redis rate limiter", "addr", cfg.RedisAddr)
	} else {
		memLimiter := middleware.NewRateLimiter(cfg.RateLimitPerUser, cfg.RateLimitPerIP, cfg.GetRateLimitWindow())
		limiter, s.limiter = memLimiter, memLimiter
	}

	handlerMgr := handlers.NewHandlerManager(cfg, userRepo, friendSvc, relationshipSvc, feedSvc, limiter)
	s.app = handlers.NewApp(handlerMgr)

	if cfg.NATSURL != "" {
		nc, err := events.Connect(cfg.NATSURL, "gamejournal-server")
		if err != nil {
			_ = s.limiter.Close()
			return nil, err
		}
		s.nc = nc
		s.consumer = events.NewConsumer(nc, activitySvc, cfg.NATSSubject, cfg.NATSQueue, cfg.GetRequestTimeout())
		if err := s.consumer.Start(); err != nil {
			nc.Close()
			_ = s.limiter.Close()
			return nil, err
		}
	}

	return s, nil
}

// Start serves HTTP until Stop is called.
func (s *Server) Start() error {
	addr := ":" + s.config.AppPort
	logger.Info("HTTP server listening", "addr", addr)
	if err := s.app.Listen(addr); err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return nil
}

// Stop drains the consumer and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.consumer != nil {
		if err := s.consumer.Close(); err != nil {
			logger.Warn("Failed to drain activity consumer", "error", err)
		}
	}
	if s.nc != nil {
		if err := s.nc.Drain(); err != nil {
			logger.Warn("Failed to drain NATS connection", "error", err)
		}
	}

	err := s.app.ShutdownWithContext(ctx)
	if closeErr := s.limiter.Close(); closeErr != nil {
		logger.Warn("Failed to close rate limiter", "error", closeErr)
	}
	return err
}
