package handlers

import (
	"github.com/mroshb/game_journal/internal/config"
	"github.com/mroshb/game_journal/internal/middleware"
	"github.com/mroshb/game_journal/internal/repositories"
	"github.com/mroshb/game_journal/internal/services"
)

type HandlerManager struct {
	Config          *config.Config
	UserRepo        *repositories.UserRepository
	FriendSvc       *services.FriendService
	RelationshipSvc *services.RelationshipService
	FeedSvc         *services.FeedService
	Limiter         middleware.Limiter
}

func NewHandlerManager(
	cfg *config.Config,
	userRepo *repositories.UserRepository,
	friendSvc *services.FriendService,
	relationshipSvc *services.RelationshipService,
	feedSvc *services.FeedService,
	limiter middleware.Limiter,
) *HandlerManager {
	return &HandlerManager{
		Config:          cfg,
		UserRepo:        userRepo,
		FriendSvc:       friendSvc,
		RelationshipSvc: relationshipSvc,
		FeedSvc:         feedSvc,
		Limiter:         limiter,
	}
}
