package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	botApp "github.com/AzielCF/az-devocional/botengine/application"
	botDomain "github.com/AzielCF/az-devocional/botengine/domain"
	"github.com/AzielCF/az-devocional/botengine/providers"
	convRepo "github.com/AzielCF/az-devocional/conversations/repository"
	coreconfig "github.com/AzielCF/az-devocional/core/config"
	coreDB "github.com/AzielCF/az-devocional/core/database"
	"github.com/AzielCF/az-devocional/core/logging"
	settingsApp "github.com/AzielCF/az-devocional/core/settings/application"
	settingsInfra "github.com/AzielCF/az-devocional/core/settings/infrastructure"
	inboundApp "github.com/AzielCF/az-devocional/inbound/application"
	inboundRepo "github.com/AzielCF/az-devocional/inbound/repository"
	"github.com/AzielCF/az-devocional/infrastructure/valkey"
	"github.com/AzielCF/az-devocional/integrations/whatsapp"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	db        *gorm.DB
	vkClient  *valkey.Client
	logCloser io.Closer

	conversationRepo *convRepo.ConversationGormRepository
	userRepo         *convRepo.UserGormRepository
	settingsSvc      *settingsApp.SettingsService
	pipeline         *inboundApp.Pipeline
)

var rootCmd = &cobra.Command{
	Use:   "devocional",
	Short: "Devocional Diário WhatsApp assistant",
	Long:  `Receives WhatsApp provider callbacks and answers them with the configured AI assistants.`,
}

func init() {
	// .env es opcional; las variables del entorno tienen prioridad
	_ = godotenv.Load()

	time.Local = time.UTC
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()
	cobra.OnInitialize(initEnvConfig, initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringP("port", "p", "", "change port number with --port <number> | example: --port=8080")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "enable debug logging | example: --debug=true")
	rootCmd.PersistentFlags().String("db-driver", "", `database driver --db-driver <sqlite|postgres>`)
	rootCmd.PersistentFlags().String("db-name", "", `sqlite file or postgres database name | example: --db-name="storages/devocional.db"`)

	_ = viper.BindPFlag("app_port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("app_debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("db_driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	_ = viper.BindPFlag("db_name", rootCmd.PersistentFlags().Lookup("db-name"))
	viper.AutomaticEnv()
}

// initEnvConfig carga la configuración del entorno y aplica los flags
func initEnvConfig() {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	if v := viper.GetString("app_port"); v != "" {
		cfg.App.Port = v
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}
	if v := viper.GetString("db_driver"); v != "" {
		cfg.Database.Driver = v
	}
	if v := viper.GetString("db_name"); v != "" {
		cfg.Database.Name = v
	}

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
}

func initApp() {
	cfg := coreconfig.Global
	logCloser = logging.Setup(cfg.App, cfg.Log)

	ctx := context.Background()

	if cfg.Database.Driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Name), 0o755); err != nil {
			logrus.Errorln(err)
		}
	}

	var err error
	db, err = coreDB.NewDatabase(cfg.Database, cfg.App.Debug)
	if err != nil {
		logrus.Fatalf("failed to open database: %v", err)
	}

	conversationRepo = convRepo.NewConversationGormRepository(db)
	userRepo = convRepo.NewUserGormRepository(db)
	settingsSvc = settingsApp.NewSettingsService(settingsInfra.NewGlobalSettingsGormRepository(db))

	if err := migrateAll(ctx); err != nil {
		logrus.Fatalf("failed to migrate schema: %v", err)
	}

	var claimer inboundApp.FingerprintClaimer
	if cfg.Database.ValkeyEnabled {
		vkClient, err = valkey.NewClient(cfg.Database)
		if err != nil {
			// Sin Valkey la deduplicación sigue con la ventana y el índice único
			logrus.WithError(err).Warn("[VALKEY] Unavailable, fingerprint claims disabled")
		} else {
			claimer = inboundRepo.NewValkeyFingerprintClaimer(vkClient)
			logrus.Infof("[VALKEY] Connected to %s", cfg.Database.ValkeyAddress)
		}
	}

	deps := inboundApp.PipelineDeps{
		Settings:      settingsSvc,
		Conversations: conversationRepo,
		Users:         userRepo,
		Dedup:         inboundApp.NewDeduplicator(conversationRepo, claimer, cfg.Pipeline.DedupWindow),
		Router:        botApp.NewRouter(),
		Sender:        whatsapp.NewClient(cfg.Whatsapp),
	}
	wireAI(cfg.AI, &deps)

	pipeline = inboundApp.NewPipeline(deps, inboundApp.PipelineConfig{
		ReminderEvery:     cfg.Pipeline.ReminderEvery,
		WelcomeRetryDelay: cfg.Pipeline.WelcomeRetryDelay,
		HistoryTurns:      cfg.Pipeline.HistoryTurns,
	})
}

// wireAI conecta el assistant de threads (solo OpenAI) y la completion
// de respaldo según AI_PROVIDER.
func wireAI(cfg coreconfig.AIConfig, deps *inboundApp.PipelineDeps) {
	var completer botDomain.ChatCompleter
	model := cfg.OpenAIModel

	if cfg.OpenAIKey != "" {
		openai, err := providers.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel)
		if err != nil {
			logrus.WithError(err).Error("[AI] OpenAI provider disabled")
		} else {
			deps.Assistants = botApp.NewSessionManager(openai, conversationRepo, botApp.SessionConfig{
				PollInterval: cfg.RunPollInterval,
				Timeout:      cfg.RunTimeout,
				Temperature:  cfg.RunTemperature,
			})
			completer = openai
		}
	}

	if cfg.Provider == "gemini" {
		gemini, err := providers.NewGeminiProvider(cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			logrus.WithError(err).Error("[AI] Gemini provider disabled")
		} else {
			completer = gemini
			model = cfg.GeminiModel
		}
	}

	if completer == nil {
		logrus.Warn("[AI] No completion provider configured, replies will use canned text")
		return
	}
	deps.Completion = botApp.NewCompletionFallback(completer, model)
}

func migrateAll(ctx context.Context) error {
	if err := settingsSvc.InitSchema(ctx); err != nil {
		return err
	}
	if err := userRepo.InitSchema(ctx); err != nil {
		return err
	}
	return conversationRepo.InitSchema(ctx)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp cierra las conexiones abiertas por initApp
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if vkClient != nil {
		vkClient.Close()
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	logrus.Info("[APP] Application stopped cleanly.")
	if logCloser != nil {
		_ = logCloser.Close()
	}
}
