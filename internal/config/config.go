package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sadopc/steward/internal/dialog"
	"github.com/sadopc/steward/internal/store"
)

// Config holds the process-level knobs. Per-user preferences (digest times,
// timezone) live in the database instead; see store.Settings.
type Config struct {
	DBPath        string
	DialogTimeout time.Duration
	Limits        dialog.Limits
	Debug         bool
	DebugLogPath  string
}

// Load reads configuration from the environment, after merging a .env file if
// one is present in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbPath, err := defaultString("STEWARD_DB", store.DefaultDBPath)
	if err != nil {
		return nil, err
	}

	return &Config{
		DBPath:        dbPath,
		DialogTimeout: getEnvAsDuration("STEWARD_DIALOG_TIMEOUT", 30*time.Minute),
		Limits: dialog.Limits{
			MaxProjectName: getEnvAsInt("STEWARD_MAX_PROJECT_NAME", 100),
			MaxTaskTitle:   getEnvAsInt("STEWARD_MAX_TASK_TITLE", 200),
			MaxDescription: getEnvAsInt("STEWARD_MAX_DESCRIPTION", 1000),
			MaxNoteTitle:   getEnvAsInt("STEWARD_MAX_NOTE_TITLE", 100),
			MaxNoteContent: getEnvAsInt("STEWARD_MAX_NOTE_CONTENT", 4000),
		},
		Debug:        getEnvAsBool("STEWARD_DEBUG", false),
		DebugLogPath: getEnv("STEWARD_DEBUG_LOG", "steward.log"),
	}, nil
}

func defaultString(key string, fallback func() (string, error)) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return fallback()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}
