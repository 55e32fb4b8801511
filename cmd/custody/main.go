package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/vaultrack/custody/cmd/custody/container"
	custodymiddleware "github.com/vaultrack/custody/cmd/custody/middleware"
	"github.com/vaultrack/custody/cmd/custody/repository"
	"github.com/vaultrack/custody/cmd/custody/routes"
	"github.com/vaultrack/custody/common/bootstrap"
	commonmiddleware "github.com/vaultrack/custody/common/middleware"
	"github.com/vaultrack/custody/common/db"
)

func main() {
	ctx := context.Background()

	// Load environment variables from .env when present
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found or error loading it")
	}

	// Bootstrap common components (config, logger, DB, telemetry)
	components, err := bootstrap.Setup(ctx, "custody",
		bootstrap.WithDBInitHook(func(database *db.DB) error {
			return repository.EnsureSchema(database)
		}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap custody service: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e, serviceContainer)

	// Setup health check
	setupHealthCheck(e, components)

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Start server
	startServer(e, components)
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo, c *container.Container) {
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.RequestID())
	e.Use(custodymiddleware.ExtractOperator())

	if c.RateLimiter != nil {
		e.Use(commonmiddleware.GlobalRateLimitMiddleware(
			c.RateLimiter,
			c.Components.Config.RateLimit.GlobalPerMinute,
		))
	}
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, components *bootstrap.Components) {
	e.GET("/health", func(c echo.Context) error {
		if err := components.Health(c.Request().Context()); err != nil {
			return c.JSON(503, map[string]string{
				"status":  "unhealthy",
				"service": "custody",
			})
		}
		return c.JSON(200, map[string]string{
			"status":  "ok",
			"service": "custody",
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterHolderRoutes(e, serviceContainer)
	routes.RegisterAssetRoutes(e, serviceContainer)
	routes.RegisterScanRoutes(e, serviceContainer)
	routes.RegisterAlertRoutes(e, serviceContainer)
	routes.RegisterExportRoutes(e, serviceContainer)
}

// startServer starts the Echo server on the configured port
func startServer(e *echo.Echo, components *bootstrap.Components) {
	port := components.Config.Service.Port
	components.Logger.Info("Starting custody service", "port", port)

	if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
		components.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
