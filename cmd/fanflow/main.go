package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fanflow-app/fanflow/internal/api"
	"github.com/fanflow-app/fanflow/internal/cooldown"
	"github.com/fanflow-app/fanflow/internal/service"
	"github.com/fanflow-app/fanflow/internal/store"
	"github.com/fanflow-app/fanflow/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for FanFlow state data
	DefaultStateDir = "/var/lib/fanflow"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "fanflow.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Open the storage backend
	st, err := openStore(flags)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	gate := cooldown.NewStoreGateway(st)
	windows := loadWindows()
	accounts := service.NewAccounts(st, gate, windows)
	clips := service.NewClips(st, gate, windows)

	srv := api.NewServer(accounts, clips, api.Opts{
		Addr:           *flags.apiAddr,
		TypingDelay:    *flags.typingDelay,
		AllowedOrigins: splitOrigins(*flags.allowedOrigins),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	slog.Info("FanFlow running", "addr", *flags.apiAddr)
	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("FanFlow failed to run", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received, draining")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), api.DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown did not complete cleanly", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("FanFlow exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL    string
	StateDir       string
	APIAddr        string
	TypingDelay    time.Duration
	AllowedOrigins string
}

// Flags holds command line flag values
type Flags struct {
	stateDir       *string
	dbDSN          *string
	apiAddr        *string
	typingDelay    *time.Duration
	allowedOrigins *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
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
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StateDir:       os.Getenv("FANFLOW_STATE_DIR"),
		APIAddr:        os.Getenv("API_ADDR"),
		TypingDelay:    util.ParseDurationEnv("TYPING_DELAY", api.DefaultTypingDelay),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No FANFLOW_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", os.Getenv("DATABASE_URL") != "",
		"FANFLOW_STATE_DIR", config.StateDir,
		"API_ADDR", config.APIAddr,
		"TYPING_DELAY", config.TypingDelay,
		"ALLOWED_ORIGINS", config.AllowedOrigins)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:       flag.String("state-dir", config.StateDir, "state directory for FanFlow data (overrides $FANFLOW_STATE_DIR)"),
		dbDSN:          flag.String("db-dsn", config.DatabaseURL, "database DSN, a Postgres URL or SQLite path (overrides $DATABASE_URL)"),
		apiAddr:        flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		typingDelay:    flag.Duration("typing-delay", config.TypingDelay, "simulated typing delay before assistant messages (overrides $TYPING_DELAY)"),
		allowedOrigins: flag.String("allowed-origins", config.AllowedOrigins, "comma-separated CORS origins (overrides $ALLOWED_ORIGINS)"),
	}

	flag.Parse()

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"typingDelay", *flags.typingDelay,
		"allowedOrigins", *flags.allowedOrigins)

	return flags
}

// openStore opens the Postgres or SQLite backend depending on the DSN shape.
func openStore(flags Flags) (store.Store, error) {
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithDSN(*flags.dbDSN))
}

// loadWindows reads the cooldown windows, falling back to the defaults.
func loadWindows() service.Windows {
	def := service.DefaultWindows()
	return service.Windows{
		ProfileSave:  util.ParseDurationEnv("PROFILE_COOLDOWN", def.ProfileSave),
		ContactSave:  util.ParseDurationEnv("CONTACT_COOLDOWN", def.ContactSave),
		ClipSubmit:   util.ParseDurationEnv("CLIP_COOLDOWN", def.ClipSubmit),
		LoginAttempt: util.ParseDurationEnv("LOGIN_COOLDOWN", def.LoginAttempt),
	}
}

// splitOrigins parses the comma-separated origin list.
func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
