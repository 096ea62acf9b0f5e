package handler

import (
	"context"
	"time"

	"github.com/itchan-dev/boardapi/internal/api"
	"github.com/itchan-dev/boardapi/internal/config"
	"github.com/itchan-dev/boardapi/internal/service"
)

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	board     service.BoardService
	thread    service.ThreadService
	health    HealthChecker
	cfg       *config.Config
	urls      api.MediaURLs
	startedAt time.Time
}

func New(board service.BoardService, thread service.ThreadService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{
		board:     board,
		thread:    thread,
		health:    health,
		cfg:       cfg,
		urls:      api.NewMediaURLs(cfg.MediaPublicURL()),
		startedAt: time.Now(),
	}
}
