package util

import (
	"os"
	"strconv"
)

// GetEnv returns the environment variable val or a default.
func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// GetEnvAsInt returns the environment variable parsed as int or a default.
func GetEnvAsInt(key string, defaultVal int) int {
	strVal := GetEnv(key, "")
	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}
	return defaultVal
}

// GetEnvAsBool returns the environment variable parsed as bool or a default.
func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal := GetEnv(key, "")
	if val, err := strconv.ParseBool(strVal); err == nil {
		return val
	}
	return defaultVal
}
