package config

import (
	"fmt"
	"go/token"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

// DefaultFile is read when no --config flag is given and it exists.
const DefaultFile = "apigen.yaml"

var allTargets = []string{"types", "server", "static"}

type Config struct {
	// Specs is a directory of versioned documents (v1.yaml, v2.yaml, ...)
	// or a single document.
	Specs       string         `koanf:"specs"`
	Strict      bool           `koanf:"strict"`
	Parallelism int            `koanf:"parallelism"`
	ModelFile   string         `koanf:"model-file"`
	Templates   TemplateConfig `koanf:"templates"`
	Go          GoConfig       `koanf:"go"`
}

type GoConfig struct {
	OutputDir       string   `koanf:"output-dir"`
	Package         string   `koanf:"package"`
	ServerFramework string   `koanf:"server-framework"`
	StaticDir       string   `koanf:"static-dir"`
	Targets         []string `koanf:"targets"`
}

type TemplateConfig struct {
	Dir string `koanf:"dir"`
}

// BindCommonFlags binds the flags shared by every command that reads specs.
func BindCommonFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: "+DefaultFile+")")
	flags.StringP("specs", "s", "", "Directory of versioned OpenAPI documents, or a single document")
	flags.Bool("strict", false, "Validate every document against the OpenAPI schema")
	flags.Int("parallelism", 0, "Documents processed concurrently (0: no limit)")
	flags.String("static-dir", "", "Directory of the served documents, relative to the output (default: static)")
}

// BindGenerateFlags binds the flags of the generate command.
func BindGenerateFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("output-dir", "o", "", "Output directory")
	flags.StringP("package", "p", "", "Go package name")
	flags.String("server-framework", "", "Router framework: stdlib or chi")
	flags.StringSlice("targets", nil, "Targets to generate: types, server, static or all")
	flags.String("templates", "", "Custom templates directory")
	flags.String("model-file", "", "Also write the API model as YAML to this file")
}

// Load layers the config file and the flags of cmd, flags taking
// precedence, applies defaults and validates the result.
func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Go.ServerFramework == "" {
		c.Go.ServerFramework = "stdlib"
	}
	if c.Go.StaticDir == "" {
		c.Go.StaticDir = "static"
	}
	c.Go.Targets = expandTargets(c.Go.Targets)
}

func expandTargets(targets []string) []string {
	if len(targets) == 0 {
		return slices.Clone(allTargets)
	}
	var result []string
	for _, t := range targets {
		if t == "all" {
			result = append(result, allTargets...)
		} else {
			result = append(result, t)
		}
	}
	slices.Sort(result)
	return slices.Compact(result)
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)
	flags := cmd.Flags()

	getString := func(name string) string {
		if v, err := flags.GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	if v := getString("specs"); v != "" {
		m["specs"] = v
	}
	if v := getString("templates"); v != "" {
		m["templates.dir"] = v
	}
	if v := getString("model-file"); v != "" {
		m["model-file"] = v
	}
	if flags.Changed("strict") {
		v, _ := flags.GetBool("strict")
		m["strict"] = v
	}
	if flags.Changed("parallelism") {
		v, _ := flags.GetInt("parallelism")
		m["parallelism"] = v
	}

	// Go-specific flags (under go. namespace)
	if v := getString("output-dir"); v != "" {
		m["go.output-dir"] = v
	}
	if v := getString("package"); v != "" {
		m["go.package"] = v
	}
	if v := getString("server-framework"); v != "" {
		m["go.server-framework"] = v
	}
	if v := getString("static-dir"); v != "" {
		m["go.static-dir"] = v
	}
	if v, err := flags.GetStringSlice("targets"); err == nil && len(v) > 0 {
		m["go.targets"] = v
	}

	return m
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Specs == "" {
		return fmt.Errorf("specs path is required")
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative: %d", c.Parallelism)
	}

	validFrameworks := map[string]bool{"": true, "chi": true, "stdlib": true}
	if !validFrameworks[c.Go.ServerFramework] {
		return fmt.Errorf("invalid server framework: %s (valid: chi, stdlib)", c.Go.ServerFramework)
	}

	for _, t := range c.Go.Targets {
		if !slices.Contains(allTargets, t) {
			return fmt.Errorf("invalid target: %s (valid: %s)", t, strings.Join(allTargets, ", "))
		}
	}

	if dir := c.Go.StaticDir; dir != "" {
		// The directory ends up in //go:embed patterns.
		if path.IsAbs(dir) || path.Clean(dir) != dir || dir == "." || strings.HasPrefix(dir, "..") {
			return fmt.Errorf("invalid static dir: %s (must be a clean relative path inside the output directory)", dir)
		}
	}

	return nil
}

// ValidateOutput checks the settings needed to write generated code.
func (c *Config) ValidateOutput() error {
	if c.Go.Package == "" {
		return fmt.Errorf("package name is required")
	}
	if !token.IsIdentifier(c.Go.Package) {
		return fmt.Errorf("invalid package name: %s", c.Go.Package)
	}
	if c.Go.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	return nil
}

// HasTarget checks if a specific target should be generated
func (c *Config) HasTarget(target string) bool {
	return slices.Contains(c.Go.Targets, target)
}
