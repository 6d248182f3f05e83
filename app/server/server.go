package server

import (
	"context"
	"log"

	"docqa/app/api"
	"docqa/config"
	"docqa/export"
	"docqa/model"
	"docqa/service"
	"docqa/session"
	"docqa/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	app         *fiber.App
	store       *store.PostgresStore
	stopSweeper context.CancelFunc
}

func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Server) Run() {
	ctx := context.Background()

	pg, err := store.NewPostgresStore(ctx, s.cfg.DSN(), s.logger)
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
		return
	}
	s.store = pg

	if err := pg.Init(ctx); err != nil {
		log.Fatal("error to create tables: ", err)
		return
	}

	registry := session.NewRegistry()
	embedder := model.NewOllamaEmbedder(s.cfg.EmbedURL, s.cfg.EmbedModel, s.cfg.ProviderTimeout)
	generator := model.NewOllamaGenerator(s.cfg.GenerateURL, s.cfg.GenerateModel, s.cfg.ProviderTimeout)

	svc := service.New(s.cfg, pg, embedder, generator, registry, s.logger)
	exporter := export.New(generator, s.logger)

	sweeper := session.NewSweeper(registry, pg, s.cfg.SweepInterval, s.cfg.SessionTTL, s.logger)
	sweepCtx, cancel := context.WithCancel(ctx)
	s.stopSweeper = cancel
	go sweeper.Run(sweepCtx)

	var (
		app = fiber.New(fiber.Config{
			ErrorHandler: api.ErrorHandler,
			BodyLimit:    50 * 1024 * 1024,
		})
		checkHandler    = api.NewCheckHandler()
		documentHandler = api.NewDocumentHandler(svc, exporter, s.logger)
		check           = app.Group("/check")
		apiv1           = app.Group("/api/v1")
	)
	s.app = app

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/process", documentHandler.HandleProcess)
	apiv1.Post("/query", documentHandler.HandleQuery)
	apiv1.Post("/export", documentHandler.HandleExport)

	if err := app.Listen(s.cfg.ServerAddr); err != nil {
		s.logger.Error("error to start server", zap.Error(err))
	}
}

func (s *Server) Stop() {
	if s.stopSweeper != nil {
		s.stopSweeper()
	}
	if s.app != nil {
		if err := s.app.Shutdown(); err != nil {
			s.logger.Error("error during server shutdown", zap.Error(err))
		}
	}
	if s.store != nil {
		s.store.Close()
	}
	s.logger.Info("server stopped")
}
