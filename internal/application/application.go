package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/slidecast/presentation-service/internal/config"
	"github.com/slidecast/presentation-service/internal/database"
	"github.com/slidecast/presentation-service/internal/deck"
	"github.com/slidecast/presentation-service/internal/handler"
	"github.com/slidecast/presentation-service/internal/journal"
	"github.com/slidecast/presentation-service/internal/router"
	"github.com/slidecast/presentation-service/internal/service"
	"github.com/slidecast/presentation-service/internal/watcher"
	"github.com/slidecast/presentation-service/pkg/constants"
	"github.com/slidecast/presentation-service/pkg/model"
)

// API is the HTTP + WebSocket presentation server application.
type API struct {
	cfg    *config.Config
	srv    *http.Server
	svc    *service.PresentationService
	gen    *model.SlideIDGenerator
	logger *zap.Logger
	watch  bool
}

// NewAPI creates the application: validates config, loads the deck,
// optionally opens the journal database, and builds the router.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, _ := zap.NewProduction()
	if cfg.AppEnv == "development" {
		logger, _ = zap.NewDevelopment()
	}

	gen := model.NewSlideIDGenerator()
	talk, err := deck.Load(cfg.TalkPath, gen)
	if err != nil {
		return nil, fmt.Errorf("deck: %w", err)
	}

	talkSvc, err := service.NewTalkService(talk, logger)
	if err != nil {
		return nil, fmt.Errorf("talk service: %w", err)
	}
	clientSvc := service.NewClientService(cfg.MaxClients, logger)
	svc := service.NewPresentationService(talkSvc, clientSvc, logger)

	if cfg.JournalEnabled {
		if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		db, err := database.Open(cfg.DSN())
		if err != nil {
			log.Printf("warning: journal database unavailable (journal disabled): %v", err)
		} else {
			svc.SetRecorder(journal.New(db, logger))
		}
	}

	talkHandler := handler.NewTalkHandler(svc, logger)
	ws := handler.NewWSHandler(svc, cfg.WSReadBufferSize, cfg.WSWriteBufferSize,
		cfg.WSMaxMessageSize, cfg.HeartbeatInterval, logger)
	health := handler.NewHealthHandler(svc)

	r := router.New(talkHandler, ws, health)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:    cfg,
		srv:    srv,
		svc:    svc,
		gen:    gen,
		logger: logger,
		watch:  cfg.TalkWatch,
	}, nil
}

// Service exposes the presentation service (used by tests and subcommands).
func (a *API) Service() *service.PresentationService { return a.svc }

// Run starts the HTTP server and blocks until ctx is cancelled; then
// shuts down gracefully.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", a.srv.Addr)
	log.Printf("  Health:    %s%s", base, constants.PathHealth)
	log.Printf("  Talk:      %s%s", base, constants.PathTalk)
	log.Printf("  Slides:    %s%s", base, constants.PathSlides)
	log.Printf("  WebSocket: ws://%s:%s%s", host, a.cfg.HTTPPort, constants.PathWS)

	a.svc.SetContext(ctx)

	go a.svc.Clients().CleanupTask(ctx, a.cfg.CleanupInterval)

	if a.watch {
		go func() {
			if err := watcher.Start(ctx, a.cfg.TalkPath, a.svc, a.gen, a.logger); err != nil {
				a.logger.Error("deck watcher stopped", zap.Error(err))
			}
		}()
	}

	go func() {
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	_ = a.logger.Sync()
	return nil
}
