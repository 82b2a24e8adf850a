package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/compozy/tplsettings/engine/settings"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// extractCLIFlags maps explicitly changed flags to config paths.
func extractCLIFlags(cmd *cobra.Command, flags map[string]any) {
	getString := func(name string) (any, error) { return stringFlag(cmd, name) }
	getBool := func(name string) (any, error) { return boolFlag(cmd, name) }
	flagDefs := []struct {
		flagName string
		key      string
		getter   func(string) (any, error)
	}{
		{"log-level", "runtime.log_level", getString},
		{"store-url", "store.base_url", getString},
		{"publish", "store.publish", getBool},
	}
	for _, def := range flagDefs {
		if f := cmd.Flag(def.flagName); f == nil || !f.Changed {
			continue
		}
		if value, err := def.getter(def.flagName); err == nil {
			flags[def.key] = value
		}
	}
}

// stringFlag reads a local or persistent flag, also on a command that has
// not been executed yet.
func stringFlag(cmd *cobra.Command, name string) (string, error) {
	f := cmd.Flag(name)
	if f == nil {
		return "", fmt.Errorf("flag %s is not defined", name)
	}
	return f.Value.String(), nil
}

func boolFlag(cmd *cobra.Command, name string) (bool, error) {
	raw, err := stringFlag(cmd, name)
	if err != nil {
		return false, err
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid value for flag %s: %w", name, err)
	}
	return value, nil
}

// loadEnvFile loads environment variables from the --env-file path. The
// file must live inside the working directory; a missing file is ignored.
func loadEnvFile(cmd *cobra.Command) (string, error) {
	envFile, err := stringFlag(cmd, "env-file")
	if err != nil {
		return "", fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if envFile == "" {
		return "", nil
	}
	pwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	if !filepath.IsAbs(envFile) {
		envFile = filepath.Join(pwd, envFile)
	}
	absPath, err := filepath.Abs(filepath.Clean(envFile))
	if err != nil {
		return "", fmt.Errorf("failed to resolve env file path: %w", err)
	}
	if !isPathWithinDirectory(absPath, pwd) {
		return "", fmt.Errorf("env file path '%s' is outside the project directory", envFile)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return absPath, nil
		}
		return "", fmt.Errorf("failed to stat env file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("env file path '%s' is not a regular file", envFile)
	}
	if err := godotenv.Load(absPath); err != nil {
		return "", fmt.Errorf("failed to load env file %s: %w", absPath, err)
	}
	return absPath, nil
}

// isPathWithinDirectory checks if a given path is within the specified directory
func isPathWithinDirectory(path, dir string) bool {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return false
	}
	if !strings.HasSuffix(absDir, string(filepath.Separator)) {
		absDir += string(filepath.Separator)
	}
	return strings.HasPrefix(absPath, absDir) || absPath == strings.TrimSuffix(absDir, string(filepath.Separator))
}

// readYAML decodes a YAML (or JSON) file into out.
func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func readComponent(path string) (*settings.Component, error) {
	if path == "" {
		return nil, fmt.Errorf("--component is required")
	}
	var comp settings.Component
	if err := readYAML(path, &comp); err != nil {
		return nil, err
	}
	if comp.Data == nil {
		comp.Data = make(map[string]any)
	}
	return &comp, nil
}

func writeComponent(path string, comp *settings.Component) error {
	data, err := yaml.Marshal(comp)
	if err != nil {
		return fmt.Errorf("failed to encode component: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// readInput returns the first argument or the content of --file.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return "", fmt.Errorf("failed to get file flag: %w", err)
	}
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	case len(args) > 0:
		return args[0], nil
	default:
		return "", fmt.Errorf("provide a value argument or --file")
	}
}
