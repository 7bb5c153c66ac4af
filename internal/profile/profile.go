package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/flashwise/flashwise/internal/version"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where flashwise stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your flashwise instance
	InstanceURL string

	// AI configuration. The generator works against any OpenAI-compatible
	// endpoint, so a base URL override covers DeepSeek, SiliconFlow etc.
	AIEnabled        bool    // FLASHWISE_AI_ENABLED
	AIAPIKey         string  // FLASHWISE_AI_API_KEY
	AIBaseURL        string  // FLASHWISE_AI_BASE_URL (default: https://api.openai.com/v1)
	AIChatModel      string  // FLASHWISE_AI_CHAT_MODEL (default: gpt-4o-mini)
	AIEmbeddingModel string  // FLASHWISE_AI_EMBEDDING_MODEL (default: text-embedding-3-small)
	AIDailyBudgetUSD float64 // FLASHWISE_AI_DAILY_BUDGET_USD (default: 1.0, 0 disables the cutoff)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads AI configuration from FLASHWISE_* environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("FLASHWISE_AI_ENABLED") == "true"
	p.AIAPIKey = os.Getenv("FLASHWISE_AI_API_KEY")
	p.AIBaseURL = getEnvOrDefault("FLASHWISE_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIChatModel = getEnvOrDefault("FLASHWISE_AI_CHAT_MODEL", "gpt-4o-mini")
	p.AIEmbeddingModel = getEnvOrDefault("FLASHWISE_AI_EMBEDDING_MODEL", "text-embedding-3-small")

	p.AIDailyBudgetUSD = 1.0
	if v := os.Getenv("FLASHWISE_AI_DAILY_BUDGET_USD"); v != "" {
		if budget, err := strconv.ParseFloat(v, 64); err == nil && budget >= 0 {
			p.AIDailyBudgetUSD = budget
		}
	}
}

// Validate normalizes the profile and fails on unusable settings.
func (p *Profile) Validate() error {
	if p.Mode != "prod" && p.Mode != "dev" && p.Mode != "demo" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		p.Data = "/var/opt/flashwise"
		if _, err := os.Stat(p.Data); err != nil {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				return errors.Wrapf(err, "failed to create data directory %q", p.Data)
			}
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return errors.Wrapf(err, "failed to check data directory %q", dataDir)
	}
	p.Data = dataDir

	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("flashwise_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	if p.Version == "" {
		p.Version = version.GetCurrentVersion(p.Mode)
	}

	return nil
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if a relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}
	// Trim trailing \ or / in case user supplies one.
	dataDir = strings.TrimRight(dataDir, "\\/")

	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}

	return dataDir, nil
}
