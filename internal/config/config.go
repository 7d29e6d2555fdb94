// Package config loads CodeSearch's global configuration from an optional
// .env file and the process environment, and constructs the process-wide
// logger.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// EnvConfig holds the environment-based configuration. Field names map to
// environment variables with a CODESEARCH_ prefix; nested structs are not
// needed at CodeSearch's current scope.
type EnvConfig struct {
	// DataDir is the root directory for the database file and any
	// per-namespace state. Env: CODESEARCH_DATA_DIR.
	DataDir string `envconfig:"DATA_DIR"`

	// Namespace selects the logical partition of the store used by this
	// invocation. Env: CODESEARCH_NAMESPACE (default: main).
	Namespace string `envconfig:"NAMESPACE" default:"main"`

	// ChromaURL optionally points at a remote vector store. Unused by the
	// SQLite-backed Store but threaded through so a future adapter has a
	// place to read it from.
	ChromaURL string `envconfig:"CHROMA_URL"`

	// MemoryStorage runs the store against an in-memory SQLite database
	// (":memory:") instead of a file, for tests and ephemeral sessions.
	MemoryStorage bool `envconfig:"MEMORY_STORAGE" default:"false"`

	// MockEmbeddings forces the embedder factory to the deterministic
	// local provider regardless of API keys present in the environment.
	MockEmbeddings bool `envconfig:"MOCK_EMBEDDINGS" default:"false"`

	// LogLevel is the zerolog level name (debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// EmbeddingProvider selects the embedder adapter (local, jina, openai).
	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER"`

	// JinaAPIKey authenticates against the Jina embeddings endpoint.
	JinaAPIKey string `envconfig:"JINA_API_KEY"`

	// OpenAIAPIKey authenticates against the OpenAI embeddings endpoint.
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
}

// Config is the resolved, ready-to-use configuration: defaults applied,
// paths expanded, values normalized.
type Config struct {
	DataDir           string
	Namespace         string
	ChromaURL         string
	MemoryStorage     bool
	MockEmbeddings    bool
	EmbeddingProvider string
	JinaAPIKey        string
	OpenAIAPIKey      string
	Logger            zerolog.Logger
}

const envPrefix = "CODESEARCH"

// DefaultDataDir is the default location for the database, matching the
// CLI surface's documented default.
const DefaultDataDir = "~/.codesearch"

// Load reads an optional .env file (silently skipped if absent) and then
// the process environment, applying defaults and constructing the
// process-wide logger. CLI flags, if any, are applied by the caller after
// Load returns by overwriting the relevant Config fields.
func Load(envPath string) (Config, error) {
	if envPath == "" {
		envPath = ".env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return Config{}, err
		}
	}

	var env EnvConfig
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return Config{}, err
	}

	dataDir := env.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	expanded, err := expandHome(dataDir)
	if err != nil {
		return Config{}, err
	}

	return Config{
		DataDir:           expanded,
		Namespace:         env.Namespace,
		ChromaURL:         env.ChromaURL,
		MemoryStorage:     env.MemoryStorage,
		MockEmbeddings:    env.MockEmbeddings,
		EmbeddingProvider: env.EmbeddingProvider,
		JinaAPIKey:        env.JinaAPIKey,
		OpenAIAPIKey:      env.OpenAIAPIKey,
		Logger:            NewLogger(env.LogLevel),
	}, nil
}

// NewLogger builds the process-wide zerolog.Logger writing to stderr, so
// that stdout stays free for MCP stdio framing.
func NewLogger(levelName string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
