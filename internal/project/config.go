// Package project loads the optional pytutor.toml settings file.
package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultMaxDiagnostics = 200
	DefaultFormat         = "pretty"
	DefaultColor          = "auto"
	DefaultDebounce       = 300 * time.Millisecond
	DefaultMinDelay       = time.Second
	DefaultMaxDelay       = 2 * time.Second
)

// Config is the decoded pytutor.toml. Zero values are replaced by defaults
// in Load.
type Config struct {
	Detect DetectConfig `toml:"detect"`
	Run    RunConfig    `toml:"run"`
	Format FormatConfig `toml:"format"`
	LSP    LSPConfig    `toml:"lsp"`

	// Path is the file the config came from, empty for defaults.
	Path string `toml:"-"`
}

type DetectConfig struct {
	MaxDiagnostics int `toml:"max_diagnostics"`
}

type RunConfig struct {
	MinDelay Duration `toml:"min_delay"`
	MaxDelay Duration `toml:"max_delay"`
}

type FormatConfig struct {
	Default string `toml:"default"`
	Color   string `toml:"color"`
}

type LSPConfig struct {
	Debounce Duration `toml:"debounce"`
}

// Duration decodes TOML strings such as "1500ms" or "2s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Defaults returns the settings used when no pytutor.toml exists.
func Defaults() Config {
	return Config{
		Detect: DetectConfig{MaxDiagnostics: DefaultMaxDiagnostics},
		Run: RunConfig{
			MinDelay: Duration{DefaultMinDelay},
			MaxDelay: Duration{DefaultMaxDelay},
		},
		Format: FormatConfig{Default: DefaultFormat, Color: DefaultColor},
		LSP:    LSPConfig{Debounce: Duration{DefaultDebounce}},
	}
}

var (
	validFormats = []string{"pretty", "json", "sarif", "short"}
	validColors  = []string{"auto", "on", "off"}
)

// Load decodes the file at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.Path = path

	if meta.IsDefined("detect", "max_diagnostics") && cfg.Detect.MaxDiagnostics < 0 {
		return Config{}, fmt.Errorf("%s: [detect].max_diagnostics must not be negative", path)
	}
	if cfg.Run.MinDelay.Duration < 0 || cfg.Run.MaxDelay.Duration < 0 {
		return Config{}, fmt.Errorf("%s: [run] delays must not be negative", path)
	}
	if cfg.Run.MaxDelay.Duration < cfg.Run.MinDelay.Duration {
		return Config{}, fmt.Errorf("%s: [run].max_delay is shorter than min_delay", path)
	}
	if meta.IsDefined("format", "default") && !oneOf(cfg.Format.Default, validFormats) {
		return Config{}, fmt.Errorf("%s: [format].default must be one of %s", path, strings.Join(validFormats, ", "))
	}
	if meta.IsDefined("format", "color") && !oneOf(cfg.Format.Color, validColors) {
		return Config{}, fmt.Errorf("%s: [format].color must be one of %s", path, strings.Join(validColors, ", "))
	}
	if cfg.LSP.Debounce.Duration < 0 {
		return Config{}, fmt.Errorf("%s: [lsp].debounce must not be negative", path)
	}
	return cfg, nil
}

// Discover loads pytutor.toml found upward from startDir, or the defaults
// when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Defaults(), nil
	}
	return Load(path)
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
