package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	openaigen "trendpress/internal/adapters/generator/openai"
	statusadapter "trendpress/internal/adapters/render/status"
	sqliterepo "trendpress/internal/adapters/repo/sqlite"
	tomlrepo "trendpress/internal/adapters/repo/toml"
	"trendpress/internal/adapters/scraper"
	filestore "trendpress/internal/adapters/secrets/file"
	"trendpress/internal/adapters/surface/chrome"
	"trendpress/internal/application"
	"trendpress/internal/domain"
	"trendpress/internal/platform"
	"trendpress/internal/ports"
)

type app struct {
	sessionSvc     *application.SessionService
	contentSvc     *application.ContentService
	statusRenderer func([]domain.Session, statusadapter.RenderOptions) (string, error)
	logger         *slog.Logger
	apiListen      string
	now            func() time.Time
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	dataDir := filepath.Join(homeDir, ".trendpress")

	cfg := viper.New()
	cfg.SetConfigName("config")
	cfg.SetConfigType("toml")
	cfg.AddConfigPath(dataDir)
	cfg.SetEnvPrefix("TRENDPRESS")
	cfg.AutomaticEnv()

	cfg.SetDefault("database.path", filepath.Join(dataDir, "trendpress.db"))
	cfg.SetDefault("credentials.dir", filepath.Join(dataDir, "credentials"))
	cfg.SetDefault("artifacts.dir", filepath.Join(dataDir, "artifacts"))
	cfg.SetDefault("login.timeout", "120s")
	cfg.SetDefault("publish.headless", false)
	cfg.SetDefault("generator.base_url", "https://open.bigmodel.cn/api/paas/v4")
	cfg.SetDefault("generator.model", "glm-4-flash")
	cfg.SetDefault("api.listen", ":8080")

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	sessionRepo, err := tomlrepo.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	store, err := sqliterepo.Open(cfg.GetString("database.path"))
	if err != nil {
		return nil, fmt.Errorf("wire sqlite store: %w", err)
	}

	credStore := filestore.NewStore(cfg.GetString("credentials.dir"))
	surfaces := chrome.NewFactory(cfg.GetString("artifacts.dir"))
	adapters := platform.Default()
	clock := ports.SystemClock{}

	generator, err := openaigen.NewClient(openaigen.Config{
		BaseURL: cfg.GetString("generator.base_url"),
		APIKey:  envOrDefault("TRENDPRESS_GENERATOR_API_KEY", cfg.GetString("generator.api_key")),
		Model:   cfg.GetString("generator.model"),
	}, http.DefaultClient)
	if err != nil {
		return nil, fmt.Errorf("wire draft generator: %w", err)
	}

	sessionSvc := application.NewSessionService(
		sessionRepo, credStore, surfaces, adapters, clock, logger,
		application.SessionServiceConfig{
			LoginTimeout:       cfg.GetDuration("login.timeout"),
			HeadlessValidation: cfg.GetBool("publish.headless"),
		},
	)

	publisher := application.NewPublishService(
		sessionRepo, credStore, surfaces, adapters, clock, logger,
		application.PublishServiceConfig{
			Headless: cfg.GetBool("publish.headless"),
		},
	)

	sources := []ports.TrendSource{
		scraper.NewWeiboSource(nil),
		scraper.NewJuejinSource(nil),
	}

	contentSvc := application.NewContentService(
		store.Trends(), store.Drafts(), sessionRepo, store.PublishLog(),
		sources, generator, publisher, clock, logger,
	)

	return &app{
		sessionSvc:     sessionSvc,
		contentSvc:     contentSvc,
		statusRenderer: statusadapter.Render,
		logger:         logger,
		apiListen:      cfg.GetString("api.listen"),
		now:            time.Now,
	}, nil
}

func logLevel() slog.Level {
	if os.Getenv("TRENDPRESS_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
