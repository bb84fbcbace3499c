package cmd

import (
	"context"
	"log/slog"

	"github.com/gaze-network/launchpad/internal/config"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var cmd = &cobra.Command{
	Use:          "launchpad",
	Long:         `Tiered, staking-gated token sale engine`,
	SilenceUsage: true,
}

func init() {
	var configFile string

	// Add global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")
	flags.String("database", "", "storage driver of the launchpad module, E.g. `postgres` or `memory`")

	// Bind flags to configuration
	config.BindPFlag("modules.launchpad.database", flags.Lookup("database"))

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		// Initialize configuration
		config := config.Parse(configFile)

		// Initialize logger
		if err := logger.Init(config.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", config.Logger))
		}
	})
}

func Execute(ctx context.Context) {
	// Register sub-commands
	cmd.AddCommand(
		NewRunCommand(),
		NewMigrateCommand(),
		NewExportCommand(),
		NewVersionCommand(),
		NewGenerateKeypairCommand(),
	)

	// Execute command
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.PanicContext(ctx, "Failed to execute root command", slogx.Error(err))
	}
}
