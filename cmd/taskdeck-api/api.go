// Package main provides the Taskdeck rule management API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/taskdeck/taskdeck/pkg/actions"
	"github.com/taskdeck/taskdeck/pkg/hierarchy"
	"github.com/taskdeck/taskdeck/pkg/host"
	"github.com/taskdeck/taskdeck/pkg/persistence"
	"github.com/taskdeck/taskdeck/pkg/rules"
	"github.com/taskdeck/taskdeck/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	hostAPIURL  string
	validate    *validator.Validate
}

func NewAPI(logger *slog.Logger, p persistence.Persistence, hostAPIURL string) *API {
	return &API{
		logger:      logger,
		persistence: p,
		hostAPIURL:  hostAPIURL,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	hostClient := host.NewClient(a.hostAPIURL, nil, a.logger)
	resolver := hierarchy.NewResolver(hostClient, a.logger)

	repository := rules.NewRepository(a.logger, a.persistence)
	filter := rules.NewFilter(a.logger, resolver)
	registry := actions.NewRegistry()

	handlers := web.NewAPIHandlers(repository, filter, registry, a.persistence, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Taskdeck API")
	})

	w := app.Group("/workspaces/:workspaceId/rules")
	w.Get("/", handlers.GetRules)
	w.Post("/", handlers.CreateRule)

	r := app.Group("/rules")
	r.Get("/:id", handlers.GetRule)
	r.Patch("/:id", handlers.UpdateRule)
	r.Delete("/:id", handlers.DeleteRule)
	r.Post("/:id/toggle", handlers.ToggleRule)
	r.Post("/:id/duplicate", handlers.DuplicateRule)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
