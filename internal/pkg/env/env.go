package env

import (
	"os"

	"github.com/joho/godotenv"
)

var Env map[string]string

func GetEnv(key, def string) string {
	// First check our loaded Env map
	if val, ok := Env[key]; ok {
		return val
	}
	// Fallback to OS environment variables (for Docker/tests)
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// SetupEnvFile loads the first .env file found. Missing files are tolerated
// so tests and containerized deployments can rely on OS variables alone.
func SetupEnvFile() {
	envFiles := []string{
		".env",
		"../../.env",
		"../../../.env",
	}

	for _, envFile := range envFiles {
		if loaded, err := godotenv.Read(envFile); err == nil {
			Env = loaded
			return
		}
	}
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
