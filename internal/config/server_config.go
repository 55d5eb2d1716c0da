package config

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/JhinQaQ/secret-store/internal/util"
)

// Node identifies this key server on the chain.
type Node struct {
	// Address is the hex-encoded on-chain address of this key server.
	Address string
}

// Redis configures the optional shared resolution cache.
type Redis struct {
	Enabled       bool
	Addr          string
	Password      string `json:"-"` // sensitive
	DB            int
	ResolutionTTL time.Duration
}

// Logger configures the process-wide zerolog setup.
type Logger struct {
	Level              string
	PrettyPrintConsole bool
}

// Server is the root configuration of the publisher process.
type Server struct {
	Node   Node
	Redis  Redis
	Logger Logger
}

// DefaultServiceConfigFromEnv returns the server config populated from the
// environment, falling back to development defaults.
func DefaultServiceConfigFromEnv() Server {
	return Server{
		Node: Node{
			Address: util.GetEnv("SECRETSTORE_NODE_ADDRESS", ""),
		},
		Redis: Redis{
			Enabled:       util.GetEnvAsBool("SECRETSTORE_REDIS_ENABLED", false),
			Addr:          util.GetEnv("SECRETSTORE_REDIS_ADDR", "127.0.0.1:6379"),
			Password:      util.GetEnv("SECRETSTORE_REDIS_PASSWORD", ""),
			DB:            util.GetEnvAsInt("SECRETSTORE_REDIS_DB", 0),
			ResolutionTTL: time.Duration(util.GetEnvAsInt("SECRETSTORE_REDIS_RESOLUTION_TTL_SEC", 3600)) * time.Second,
		},
		Logger: Logger{
			Level:              util.GetEnv("SECRETSTORE_LOGGER_LEVEL", zerolog.LevelInfoValue),
			PrettyPrintConsole: util.GetEnvAsBool("SECRETSTORE_LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
	}
}
