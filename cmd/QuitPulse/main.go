package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/quitpulse/QuitPulse/internal/api"
	"github.com/quitpulse/QuitPulse/internal/insights"
	"github.com/quitpulse/QuitPulse/internal/intervention"
	"github.com/quitpulse/QuitPulse/internal/notify"
	"github.com/quitpulse/QuitPulse/internal/scheduler"
	"github.com/quitpulse/QuitPulse/internal/store"
	"github.com/quitpulse/QuitPulse/internal/tracker"
	"github.com/quitpulse/QuitPulse/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for QuitPulse state data
	DefaultStateDir = "/var/lib/quitpulse"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "quitpulse.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	kv, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	tr := tracker.NewService(kv)
	runner := intervention.NewRunner(tr)

	sched := scheduler.NewScheduler()
	defer sched.Stop()
	notifier := notify.NewService(sched, buildSenders(tr)...)

	generator := buildInsightGenerator(flags)
	server := api.NewServer(tr, runner, notifier, generator, buildAPIOptions(flags)...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Bootstrapping QuitPulse with configured modules")
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr)
	if err := server.Run(ctx); err != nil {
		slog.Error("QuitPulse failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("QuitPulse exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL string
	StateDir    string
	OpenAIKey   string
	APIAddr     string
	Verbose     bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir  *string
	dbDSN     *string
	openaiKey *string
	apiAddr   *string
}

// initializeLogger sets up structured logging. QUITPULSE_DEBUG=true raises the
// level to debug.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("QUITPULSE_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("QUITPULSE_STATE_DIR"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		APIAddr:     os.Getenv("API_ADDR"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No QUITPULSE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"QUITPULSE_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:  flag.String("state-dir", config.StateDir, "state directory for QuitPulse data (overrides $QUITPULSE_STATE_DIR)"),
		dbDSN:     flag.String("db-dsn", config.DatabaseURL, "database DSN (overrides $DATABASE_URL)"),
		openaiKey: flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key for insight generation (overrides $OPENAI_API_KEY)"),
		apiAddr:   flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
	}

	flag.Parse()

	// Follow an overridden state directory when the DSN was left at its
	// derived SQLite default.
	if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// buildStore opens the KV backend matching the DSN: PostgreSQL for postgres
// DSNs, SQLite for file paths, in-memory when no DSN is configured.
func buildStore(flags Flags) (store.KV, error) {
	dsn := *flags.dbDSN
	if dsn == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryKV(), nil
	}
	if store.DetectDSNType(dsn) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresKV(store.WithPostgresDSN(dsn))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", dsn)
	return store.NewSQLiteKV(store.WithSQLiteDSN(dsn))
}

// buildSenders assembles the delivery channels that are actually configured.
// Missing credentials disable a channel; they never abort startup.
func buildSenders(tr *tracker.Service) []notify.Sender {
	var senders []notify.Sender

	if push, err := notify.NewWebPushSender(tr); err != nil {
		slog.Info("web push delivery disabled", "reason", err)
	} else {
		senders = append(senders, push)
	}

	if sms, err := notify.NewSMSSender(); err != nil {
		slog.Info("SMS delivery disabled", "reason", err)
	} else {
		senders = append(senders, sms)
	}

	return senders
}

// buildInsightGenerator prefers the OpenAI backend when a key is configured
// and falls back to the curated generator otherwise.
func buildInsightGenerator(flags Flags) insights.Generator {
	if *flags.openaiKey != "" {
		gen, err := insights.NewOpenAIGenerator(insights.WithAPIKey(*flags.openaiKey))
		if err == nil {
			slog.Info("insight generation backed by OpenAI")
			return gen
		}
		slog.Warn("failed to initialize OpenAI insight generator, using curated set", "error", err)
	}
	return insights.NewStaticGenerator()
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return apiOpts
}
