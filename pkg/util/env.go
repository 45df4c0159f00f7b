package util

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
)

// LoadEnv loads a .env file for the given environment into the process
// environment. Looks for ".env.<env>" first, then ".env". Existing variables
// are not overwritten.
func LoadEnv(env string) error {
	candidates := []string{".env." + env, ".env"}
	for _, name := range candidates {
		if _, err := os.Stat(name); err == nil {
			return loadEnvFile(name)
		}
	}
	return fmt.Errorf("no env file found for %q", env)
}

func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

// GetEnv returns the environment variable value, or "" when unset.
func GetEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// GetEnvDefault returns the environment variable value, or def when unset.
func GetEnvDefault(key, def string) string {
	if v := GetEnv(key); v != "" {
		return v
	}
	return def
}

// GetIntEnv parses the environment variable as int64, 0 when unset or invalid.
func GetIntEnv(key string) int64 {
	return cast.ToInt64(GetEnv(key))
}

// GetBoolEnv parses the environment variable as bool, false when unset.
func GetBoolEnv(key string) bool {
	return cast.ToBool(GetEnv(key))
}

// GetFloatEnv parses the environment variable as float64, 0 when unset.
func GetFloatEnv(key string) float64 {
	return cast.ToFloat64(GetEnv(key))
}
