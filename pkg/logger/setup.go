package logger

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// SetupLogger initializes the default logger from CLI settings.
func SetupLogger(logLevel string, logJSON, logSource bool) {
	Init(&Config{
		Level:      LogLevel(logLevel),
		JSON:       logJSON,
		AddSource:  logSource,
		TimeFormat: "15:04:05",
	})
}

// GetLoggerConfig reads the persistent logging flags of cmd.
func GetLoggerConfig(cmd *cobra.Command) (string, bool, bool, error) {
	logLevel, err := flagValue(cmd, "log-level")
	if err != nil {
		return "", false, false, err
	}
	logJSON, err := boolFlagValue(cmd, "log-json")
	if err != nil {
		return "", false, false, err
	}
	logSource, err := boolFlagValue(cmd, "log-source")
	if err != nil {
		return "", false, false, err
	}
	return logLevel, logJSON, logSource, nil
}

func flagValue(cmd *cobra.Command, name string) (string, error) {
	f := cmd.Flag(name)
	if f == nil {
		return "", fmt.Errorf("failed to get %s flag: flag is not defined", name)
	}
	return f.Value.String(), nil
}

func boolFlagValue(cmd *cobra.Command, name string) (bool, error) {
	raw, err := flagValue(cmd, name)
	if err != nil {
		return false, err
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	return value, nil
}
