// Package server exposes the pipelines over an authenticated HTTP API.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"go-ausbildung-automation/internal/ai"
	"go-ausbildung-automation/internal/config"
	"go-ausbildung-automation/internal/database"
	"go-ausbildung-automation/internal/dispatch"
	"go-ausbildung-automation/internal/documents"
	"go-ausbildung-automation/internal/letters"
	"go-ausbildung-automation/internal/mailer"
	"go-ausbildung-automation/internal/pdf"
)

type Server struct {
	cfg      *config.Config
	repo     *database.Repository
	docs     *documents.Store
	engine   *dispatch.Engine
	textgen  ai.Client
	renderer letters.Renderer
	cv       letters.CVReader
	log      *zap.SugaredLogger

	app *fiber.App
}

func New(cfg *config.Config, repo *database.Repository, textgen ai.Client, log *zap.SugaredLogger) (*Server, error) {
	renderer, err := pdf.NewGenerator()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		repo:     repo,
		docs:     documents.NewStore(repo, cfg.Paths.UploadsDir),
		engine:   dispatch.NewEngine(repo, mailer.NewSMTPMailer(&cfg.Email), log),
		textgen:  textgen,
		renderer: renderer,
		cv:       letters.NewCVReader(),
		log:      log,
	}

	app := fiber.New(fiber.Config{
		AppName:      "Ausbildung Automation API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    25 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "time": time.Now()})
	})

	api := app.Group("/api", jwtAuth(cfg.Server.JWTSecret))

	api.Post("/ausbildung/scrape", s.handleScrape)
	api.Post("/ausbildung/generate-letters", s.handleGenerateLetters)
	api.Post("/ausbildung/email/send", s.handleSendEmails)
	api.Get("/ausbildung", s.handleListJobs)
	api.Get("/ausbildung/ready-to-send", s.handleReadyToSend)
	api.Delete("/ausbildung/:id", s.handleDeleteJob)

	api.Post("/documents/upload", s.handleUploadDocument)
	api.Get("/documents", s.handleListDocuments)
	api.Get("/documents/:id/download", s.handleDownloadDocument)
	api.Delete("/documents/:id", s.handleDeleteDocument)

	api.Post("/campaigns", s.handleCreateCampaign)
	api.Get("/campaigns", s.handleListCampaigns)
	api.Get("/campaigns/:id", s.handleGetCampaign)
	api.Post("/campaigns/:id/send", s.handleSendCampaign)
	api.Patch("/campaigns/:id/status", s.handleUpdateCampaignStatus)

	api.Get("/stats", s.handleStats)

	s.app = app
	return s, nil
}

func (s *Server) Listen() error {
	s.log.Infof("🚀 Server starting on %s", s.cfg.Server.Addr)
	return s.app.Listen(s.cfg.Server.Addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
