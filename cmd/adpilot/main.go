package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adpilot/adpilot/internal/api"
	"github.com/adpilot/adpilot/internal/genai"
	"github.com/adpilot/adpilot/internal/lockfile"
	"github.com/adpilot/adpilot/internal/store"
	"github.com/adpilot/adpilot/internal/tools"
	"github.com/adpilot/adpilot/internal/util"
	"github.com/joho/godotenv"
	"github.com/openai/openai-go"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for AdPilot state data
	DefaultStateDir = "/var/lib/adpilot"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "adpilot.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// One daemon per state directory; the flow-state database is not safe
	// to share between processes.
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to lock state directory", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	genaiClient, err := genai.NewClient(buildGenAIOptions(flags)...)
	if err != nil {
		slog.Error("Failed to initialize GenAI client", "error", err)
		os.Exit(1)
	}

	registry, err := tools.NewRegistry(tools.ParseCatalogFlavor(*flags.toolCatalog), buildDataSource(flags))
	if err != nil {
		slog.Error("Failed to build tool catalog", "error", err)
		os.Exit(1)
	}

	server := api.NewServer(st, genaiClient, registry, buildAPIOptions(flags)...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Bootstrapping AdPilot with configured modules")
	slog.Debug("Final configuration",
		"state_dir", *flags.stateDir,
		"dsn_set", *flags.dbDSN != "",
		"api_addr", *flags.apiAddr,
		"tool_catalog", *flags.toolCatalog,
		"backend_url_set", *flags.backendURL != "")
	if err := server.Run(ctx); err != nil {
		slog.Error("AdPilot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("AdPilot exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL      string
	StateDir         string
	OpenAIKey        string
	OpenAIModel      string
	APIAddr          string
	ToolCatalog      string
	BackendURL       string
	BackendFallback  bool
	SystemPromptFile string
	MaxToolRounds    int
}

// Flags holds command line flag values
type Flags struct {
	stateDir         *string
	dbDSN            *string
	openaiKey        *string
	openaiModel      *string
	apiAddr          *string
	toolCatalog      *string
	backendURL       *string
	backendFallback  *bool
	systemPromptFile *string
	maxToolRounds    *int
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
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StateDir:         os.Getenv("ADPILOT_STATE_DIR"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      os.Getenv("OPENAI_MODEL"),
		APIAddr:          os.Getenv("API_ADDR"),
		ToolCatalog:      os.Getenv("TOOL_CATALOG"),
		BackendURL:       os.Getenv("TOOL_BACKEND_URL"),
		BackendFallback:  util.ParseBoolEnv("TOOL_BACKEND_FALLBACK", true),
		SystemPromptFile: os.Getenv("SYSTEM_PROMPT_FILE"),
		MaxToolRounds:    util.ParseIntEnv("ADPILOT_MAX_TOOL_ROUNDS", 0),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No ADPILOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	} else {
		slog.Debug("ADPILOT_STATE_DIR found in environment", "state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"ADPILOT_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"OPENAI_MODEL", config.OpenAIModel,
		"API_ADDR", config.APIAddr,
		"TOOL_CATALOG", config.ToolCatalog,
		"TOOL_BACKEND_URL_SET", config.BackendURL != "",
		"TOOL_BACKEND_FALLBACK", config.BackendFallback,
		"SYSTEM_PROMPT_FILE", config.SystemPromptFile)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:         flag.String("state-dir", config.StateDir, "state directory for AdPilot data (overrides $ADPILOT_STATE_DIR)"),
		dbDSN:            flag.String("db-dsn", config.DatabaseURL, "database DSN for the flow state store (overrides $DATABASE_URL)"),
		openaiKey:        flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel:      flag.String("openai-model", config.OpenAIModel, "OpenAI model name (overrides $OPENAI_MODEL)"),
		apiAddr:          flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		toolCatalog:      flag.String("tool-catalog", config.ToolCatalog, "tool catalog flavor, data or signal (overrides $TOOL_CATALOG)"),
		backendURL:       flag.String("tool-backend-url", config.BackendURL, "widget data webhook URL, demo data when empty (overrides $TOOL_BACKEND_URL)"),
		backendFallback:  flag.Bool("tool-backend-fallback", config.BackendFallback, "fall back to demo data when the widget backend fails (overrides $TOOL_BACKEND_FALLBACK)"),
		systemPromptFile: flag.String("system-prompt-file", config.SystemPromptFile, "file containing the assistant system prompt (overrides $SYSTEM_PROMPT_FILE)"),
		maxToolRounds:    flag.Int("max-tool-rounds", config.MaxToolRounds, "maximum LLM tool rounds per request, 0 for default (overrides $ADPILOT_MAX_TOOL_ROUNDS)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"openaiModel", *flags.openaiModel,
		"apiAddr", *flags.apiAddr,
		"toolCatalog", *flags.toolCatalog,
		"backendURL_set", *flags.backendURL != "",
		"backendFallback", *flags.backendFallback,
		"systemPromptFile", *flags.systemPromptFile,
		"maxToolRounds", *flags.maxToolRounds)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "dsn_updated", true, "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStore selects and opens the flow state store backend from the DSN
func buildStore(flags Flags) (store.Store, error) {
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql", "dsn_set", true)
		return store.NewPostgresStore(store.WithDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithDSN(*flags.dbDSN))
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.openaiModel != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(openai.ChatModel(*flags.openaiModel)))
	}
	return genaiOpts
}

// buildDataSource selects the widget data source for tool handlers
func buildDataSource(flags Flags) tools.DataSource {
	if *flags.backendURL != "" {
		slog.Debug("Using backend widget data source", "url", *flags.backendURL, "demo_fallback", *flags.backendFallback)
		return tools.NewBackendClient(*flags.backendURL, tools.WithBackendFallback(*flags.backendFallback))
	}
	slog.Debug("No tool backend URL provided, using demo widget data")
	return tools.NewDemoSource()
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.maxToolRounds > 0 {
		apiOpts = append(apiOpts, api.WithMaxToolRounds(*flags.maxToolRounds))
	}
	if *flags.systemPromptFile != "" {
		prompt, err := os.ReadFile(*flags.systemPromptFile)
		if err != nil {
			slog.Warn("Failed to read system prompt file, using built-in prompt", "error", err, "file", *flags.systemPromptFile)
		} else {
			apiOpts = append(apiOpts, api.WithSystemPrompt(string(prompt)))
		}
	}
	return apiOpts
}
