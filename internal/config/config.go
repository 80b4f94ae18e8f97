package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	// Storage
	StorageBackend string // "memory", "sqlite" or "firestore"
	DataDir        string // root for the jsonl question bank and journal archive
	SQLitePath     string
	QuestionsPath  string

	// GCP / LLM
	GCPProjectID string
	GCPLocation  string
	ModelName    string
	UseMockLLM   bool // true = use mock even on GCP

	DefaultLanguage domain.Language
	AnalysisTimeout time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

// Load reads all env vars and builds the config
func Load() *Config {
	modeStr := getEnv("REFLEXION_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	dataDir := getEnv("REFLEXION_DATA_DIR", "data")

	lang, ok := domain.ParseLanguage(getEnv("REFLEXION_LANGUAGE", "en"))
	if !ok {
		log.Fatalf("unsupported REFLEXION_LANGUAGE %q", os.Getenv("REFLEXION_LANGUAGE"))
	}

	cfg := &Config{
		Mode: mode,

		StorageBackend: getEnv("REFLEXION_STORAGE_BACKEND", "memory"),
		DataDir:        dataDir,
		SQLitePath:     getEnv("REFLEXION_SQLITE_PATH", filepath.Join(dataDir, "reflexion.db")),
		QuestionsPath:  getEnv("REFLEXION_QUESTIONS_PATH", filepath.Join(dataDir, "questions.jsonl")),

		GCPProjectID: getEnv("REFLEXION_GCP_PROJECT", ""),
		GCPLocation:  getEnv("REFLEXION_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("REFLEXION_MODEL_NAME", "gemini-2.5-flash"),
		UseMockLLM:   getBoolEnv("REFLEXION_USE_MOCK_LLM", mode == ModeLocal),

		DefaultLanguage: lang,
		AnalysisTimeout: getDurationEnv("REFLEXION_ANALYSIS_TIMEOUT", 45*time.Second),
	}

	// Minimal validation in GCP mode
	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		log.Fatal("REFLEXION_GCP_PROJECT must be set in gcp mode")
	}

	return cfg
}
