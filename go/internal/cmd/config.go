package main

import (
	"fmt"
	"os"

	"github.com/mcdev12/matchday/go/internal/games"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          string
	NatsURL       string
	SubjectPrefix string
	DefaultsPath  string
}

func loadConfig() Config {
	return Config{
		Port:          getEnv("PORT", "8080"),
		NatsURL:       getEnv("NATS_URL", ""),
		SubjectPrefix: getEnv("SUBJECT_PREFIX", "matchday"),
		DefaultsPath:  getEnv("COMMUNITY_DEFAULTS_PATH", "config/defaults.yaml"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadDefaults reads the community defaults file applied to new games. A
// missing file falls back to the built-in defaults.
func loadDefaults(path string) (games.Defaults, error) {
	defaults := games.Defaults{
		ConfirmationWindowHours: 48,
		JoinCutoffOffsetMin:     60,
		ConfirmationEnabled:     true,
		ReminderTimes:           []string{"18:00"},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaults, nil
	}
	if err != nil {
		return defaults, fmt.Errorf("failed to read defaults file: %w", err)
	}
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return defaults, fmt.Errorf("failed to parse defaults file: %w", err)
	}
	return defaults, nil
}
