package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	coreconfig "github.com/AzielCF/az-devocional/core/config"
	"github.com/AzielCF/az-devocional/pkg/msgworker"
	"github.com/AzielCF/az-devocional/ui/rest"
	"github.com/AzielCF/az-devocional/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the WhatsApp webhook over http",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	cfg := coreconfig.Global

	fiberConfig := fiber.Config{
		AppName:      "Devocional WhatsApp Webhook",
		ServerHeader: "Hidden",
		BodyLimit:    1 * 1024 * 1024,
		Network:      "tcp",
	}
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.EnableTrustedProxyCheck = true
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedFor
	}

	app := fiber.New(fiberConfig)
	app.Use(requestid.New())
	app.Use(middleware.Recovery())
	app.Use(apiLimiter(600, strings.TrimRight(cfg.App.BasePath, "/")+rest.WebhookPath))
	if cfg.App.Debug {
		app.Use(logger.New())
	}

	poolCtx, cancelPool := context.WithCancel(context.Background())
	pool := msgworker.NewMessageWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	pool.Start(poolCtx)

	base := app.Group(cfg.App.BasePath)
	rest.InitRestWebhook(base, pipeline, pool, rest.WebhookOptions{
		Token:          cfg.App.WebhookToken,
		HasCredentials: cfg.Whatsapp.HasCredentials(),
		RateLimit:      cfg.App.WebhookRateLimit,
	})
	rest.InitRestHealth(base, healthChecks()...)
	rest.InitRestMetrics(base)
	base.Get("/api/worker-pool/stats", rest.WorkerPoolStats(pool))

	if !cfg.Whatsapp.HasCredentials() {
		logrus.Warn("[REST] WHATSAPP_INSTANCE_ID / WHATSAPP_TOKEN not set, webhook will answer 500")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
		cancelPool()
		pool.Stop()
		StopApp()
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}

// apiLimiter limita por IP todo menos los callbacks del proveedor, que tienen
// su propio límite con respuesta 200.
func apiLimiter(perMinute int, webhookPrefix string) fiber.Handler {
	return limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), webhookPrefix)
		},
		Max:        perMinute,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	})
}

func healthChecks() []rest.HealthCheck {
	checks := []rest.HealthCheck{{
		Name: "database",
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if vkClient != nil {
		checks = append(checks, rest.HealthCheck{Name: "valkey", Ping: vkClient.Ping})
	}
	return checks
}
