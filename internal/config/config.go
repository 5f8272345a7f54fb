package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all bot configuration.
type Config struct {
	Token         string
	QuestionsFile string
	BatchSize     int
	RandomTarget  int
	LogLevel      string
	LogFormat     string
	// WebhookURL switches the transport to webhook mode when set.
	// Empty means long polling.
	WebhookURL string
	ListenAddr string
	// RedisURL selects the Redis leaderboard backend when set.
	RedisURL    string
	GistID      string
	GithubToken string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		Token:         os.Getenv("TELEGRAM_BOT_TOKEN"),
		QuestionsFile: getEnv("QUESTIONS_FILE", "questions.txt"),
		BatchSize:     getEnvInt("BATCH_SIZE", 10),
		RandomTarget:  getEnvInt("RANDOM_TARGET", 40),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "pretty"),
		WebhookURL:    os.Getenv("WEBHOOK_URL"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8443"),
		RedisURL:      os.Getenv("REDIS_URL"),
		GistID:        os.Getenv("GITHUB_GIST_ID"),
		GithubToken:   os.Getenv("GITHUB_TOKEN"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
