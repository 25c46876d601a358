package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pytutor/internal/project"
)

// appConfig is the pytutor.toml in effect for this invocation; defaults when
// none was found.
var appConfig = project.Defaults()

func loadConfig(cmd *cobra.Command) (project.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return project.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return project.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return project.Config{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	return project.Discover(wd)
}

// colorMode returns the --color value, falling back to [format].color.
func colorMode(cmd *cobra.Command) (string, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return "", fmt.Errorf("failed to get color flag: %w", err)
	}
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = appConfig.Format.Color
	}
	switch mode {
	case "", "auto", "on", "off":
		return mode, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}

// useColor is the resolved colour decision; set by applyColorMode.
var useColor bool

func applyColorMode(cmd *cobra.Command) error {
	mode, err := colorMode(cmd)
	if err != nil {
		return err
	}
	useColor = mode == "on" || (mode != "off" && isTerminal(os.Stdout))
	color.NoColor = !useColor
	return nil
}

// intSetting returns the flag value when it was set explicitly, else fallback.
func intSetting(cmd *cobra.Command, name string, fallback int) (int, error) {
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if !cmd.Flags().Changed(name) {
		return fallback, nil
	}
	return value, nil
}

func stringSetting(cmd *cobra.Command, name, fallback string) (string, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	if !cmd.Flags().Changed(name) {
		return fallback, nil
	}
	return value, nil
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}
