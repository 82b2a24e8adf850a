package cli

import (
	"context"
	"fmt"

	"github.com/compozy/tplsettings/pkg/config"
	"github.com/compozy/tplsettings/pkg/logger"
	"github.com/spf13/cobra"
)

// RootCmd builds the tplsettings command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tplsettings",
		Short:        "Template annotation parsing and settings reconciliation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return SetupGlobalConfig(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("env-file", "", "Path to a .env file loaded before configuration")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Bool("log-json", false, "Emit logs as JSON")
	flags.Bool("log-source", false, "Include source locations in logs")
	flags.String("format", OutputFormatJSON, "Output format (json, yaml)")

	root.AddCommand(
		AnnotationsCmd(),
		EligibilityCmd(),
		ProjectCmd(),
		SplitCmd(),
		TemplateCmd(),
		SchemaCmd(),
	)
	return root
}

// SetupGlobalConfig loads the env file, the configuration and the logger,
// and attaches both to the command context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	if _, err := loadEnvFile(cmd); err != nil {
		return err
	}
	configFile, err := stringFlag(cmd, "config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(ctx, cmd, configFile)
	if err != nil {
		return err
	}
	_, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	logger.SetupLogger(cfg.Runtime.LogLevel, logJSON, logSource)
	ctx = logger.ContextWithLogger(ctx, logger.GetDefault())
	ctx = config.ContextWithConfig(ctx, cfg)
	cmd.SetContext(ctx)
	return nil
}

func loadConfig(ctx context.Context, cmd *cobra.Command, configFile string) (*config.Config, error) {
	var sources []config.Source
	if configFile != "" {
		sources = append(sources, config.NewYAMLProvider(configFile))
	}
	flags := make(map[string]any)
	extractCLIFlags(cmd, flags)
	if len(flags) > 0 {
		sources = append(sources, config.NewCLIProvider(flags))
	}
	cfg, err := config.NewService().Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
