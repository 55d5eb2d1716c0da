package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	envcmd "github.com/JhinQaQ/secret-store/cmd/env"
	requestercmd "github.com/JhinQaQ/secret-store/cmd/requester"
	"github.com/JhinQaQ/secret-store/internal/config"
)

func main() {
	cfg := config.DefaultServiceConfigFromEnv()
	configureLogger(cfg.Logger)

	root := &cobra.Command{
		Use:   "secretstore",
		Short: "Secret store key server tools",
	}

	root.AddCommand(envcmd.New())
	root.AddCommand(requestercmd.New())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func configureLogger(cfg config.Logger) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
