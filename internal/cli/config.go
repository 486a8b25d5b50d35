package cli

import (
	"os"

	"github.com/quizhub/quizctl/internal/storage/file"
)

// Config holds CLI configuration
type Config struct {
	ServerURL      string
	CredentialsDir string
	RedisURL       string
	RedisNamespace string
	Output         string
	Verbose        bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:      getEnvOrDefault("QUIZCTL_SERVER", "http://localhost:5000"),
		CredentialsDir: getEnvOrDefault("QUIZCTL_CREDENTIALS_DIR", file.DefaultDir()),
		RedisURL:       os.Getenv("QUIZCTL_REDIS_URL"),
		RedisNamespace: getEnvOrDefault("QUIZCTL_REDIS_NAMESPACE", "default"),
		Output:         "text",
		Verbose:        false,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
