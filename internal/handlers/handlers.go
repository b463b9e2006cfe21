package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/abrezinsky/outletplay/internal/auth"
	"github.com/abrezinsky/outletplay/internal/broadcast"
	"github.com/abrezinsky/outletplay/internal/logger"
	"github.com/abrezinsky/outletplay/internal/repository"
	"github.com/abrezinsky/outletplay/internal/services"
)

const defaultKeepaliveInterval = 25 * time.Second

// LiveFeed is where live viewers register for win events
type LiveFeed interface {
	Subscribe(ch broadcast.Channel) (unsubscribe func())
}

// Options holds the transport settings of the HTTP layer
type Options struct {
	AllowedOrigins    []string
	KeepaliveInterval time.Duration
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Game   services.GameServicer
	Prizes services.PrizeServicer
	Health repository.HealthChecker
	Auth   *auth.Auth
	Feed   LiveFeed
	// WebSocket serves the alternative live transport; nil disables /ws
	WebSocket http.Handler
	// Now is the clock used for the game day; tests replace it
	Now  func() time.Time
	log  logger.Logger
	opts Options

	// closed by CloseLive; ends every open SSE stream
	liveDone  chan struct{}
	closeLive sync.Once
}

// New creates a new Handlers instance with all dependencies
func New(
	game services.GameServicer,
	prizes services.PrizeServicer,
	health repository.HealthChecker,
	authn *auth.Auth,
	feed LiveFeed,
	ws http.Handler,
	log logger.Logger,
	opts Options,
) *Handlers {
	if opts.KeepaliveInterval <= 0 {
		opts.KeepaliveInterval = defaultKeepaliveInterval
	}
	return &Handlers{
		Game:      game,
		Prizes:    prizes,
		Health:    health,
		Auth:      authn,
		Feed:      feed,
		WebSocket: ws,
		Now:       time.Now,
		log:       log,
		opts:      opts,
		liveDone:  make(chan struct{}),
	}
}

// CloseLive ends the open SSE streams and refuses new ones. Other requests
// are unaffected, so it can run while the server drains in-flight plays.
func (h *Handlers) CloseLive() {
	h.closeLive.Do(func() { close(h.liveDone) })
}
