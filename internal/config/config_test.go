package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Specs: "specs",
			Go: GoConfig{
				ServerFramework: "stdlib",
				StaticDir:       "static",
				Targets:         []string{"types", "server"},
			},
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "chi", mutate: func(c *Config) { c.Go.ServerFramework = "chi" }},
		{name: "nested static dir", mutate: func(c *Config) { c.Go.StaticDir = "assets/docs" }},
		{name: "missing specs", mutate: func(c *Config) { c.Specs = "" }, errContains: "specs path is required"},
		{name: "negative parallelism", mutate: func(c *Config) { c.Parallelism = -1 }, errContains: "parallelism"},
		{name: "echo framework", mutate: func(c *Config) { c.Go.ServerFramework = "echo" }, errContains: "invalid server framework"},
		{name: "unknown target", mutate: func(c *Config) { c.Go.Targets = []string{"client"} }, errContains: "invalid target: client"},
		{name: "absolute static dir", mutate: func(c *Config) { c.Go.StaticDir = "/srv/static" }, errContains: "invalid static dir"},
		{name: "escaping static dir", mutate: func(c *Config) { c.Go.StaticDir = "../static" }, errContains: "invalid static dir"},
		{name: "unclean static dir", mutate: func(c *Config) { c.Go.StaticDir = "static/" }, errContains: "invalid static dir"},
		{name: "dot static dir", mutate: func(c *Config) { c.Go.StaticDir = "." }, errContains: "invalid static dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errContains != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateOutput(t *testing.T) {
	tests := []struct {
		name        string
		config      GoConfig
		errContains string
	}{
		{name: "valid", config: GoConfig{Package: "api", OutputDir: "gen"}},
		{name: "missing package", config: GoConfig{OutputDir: "gen"}, errContains: "package name is required"},
		{name: "invalid package", config: GoConfig{Package: "my-api", OutputDir: "gen"}, errContains: "invalid package name"},
		{name: "missing output", config: GoConfig{Package: "api"}, errContains: "output directory is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Go: tt.config}
			err := cfg.ValidateOutput()
			if tt.errContains != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.errContains)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func newCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	BindCommonFlags(cmd)
	BindGenerateFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `
specs: api
strict: true
parallelism: 2
go:
  output-dir: ./output
  package: gen
  server-framework: chi
  targets: [types]
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, DefaultFile), []byte(configContent), 0o644))
	t.Chdir(tmpDir)

	cfg, err := Load(newCommand(t))
	require.NoError(t, err)

	require.Equal(t, "api", cfg.Specs)
	require.True(t, cfg.Strict)
	require.Equal(t, 2, cfg.Parallelism)
	require.Equal(t, "gen", cfg.Go.Package)
	require.Equal(t, "./output", cfg.Go.OutputDir)
	require.Equal(t, "chi", cfg.Go.ServerFramework)
	require.Equal(t, "static", cfg.Go.StaticDir)
	require.True(t, cfg.HasTarget("types"))
	require.False(t, cfg.HasTarget("server"))
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `
specs: api
strict: true
go:
  package: gen
  server-framework: chi
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, DefaultFile), []byte(configContent), 0o644))
	t.Chdir(tmpDir)

	cmd := newCommand(t, "--server-framework", "stdlib", "--strict=false", "--targets", "server,types", "--static-dir", "docs")
	cfg, err := Load(cmd)
	require.NoError(t, err)

	require.Equal(t, "stdlib", cfg.Go.ServerFramework)
	require.False(t, cfg.Strict)
	require.Equal(t, "docs", cfg.Go.StaticDir)
	require.Equal(t, []string{"server", "types"}, cfg.Go.Targets)
}

func TestLoadWithExplicitConfigPath(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `
specs: custom.yaml
templates:
  dir: ./tmpl
go:
  output-dir: ./custom
  package: custom
`
	configPath := filepath.Join(tmpDir, "custom-config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	cfg, err := Load(newCommand(t, "--config", configPath))
	require.NoError(t, err)

	require.Equal(t, "custom.yaml", cfg.Specs)
	require.Equal(t, "./tmpl", cfg.Templates.Dir)
	require.Equal(t, "custom", cfg.Go.Package)
	require.Equal(t, "./custom", cfg.Go.OutputDir)
	require.Equal(t, "stdlib", cfg.Go.ServerFramework)
	require.Equal(t, []string{"types", "server", "static"}, cfg.Go.Targets)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		_, err := Load(newCommand(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
		require.Error(t, err)
		require.Contains(t, err.Error(), "reading config file")
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := Load(newCommand(t, "--specs", "api", "--server-framework", "gin"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid server framework")
	})
}

func TestBuildFlagsMap(t *testing.T) {
	cmd := newCommand(t,
		"--specs", "api",
		"--package", "testpkg",
		"--output-dir", "./out",
		"--server-framework", "chi",
		"--templates", "./tmpl",
		"--parallelism", "4",
		"--targets", "all",
	)

	m := buildFlagsMap(cmd)

	require.Equal(t, "api", m["specs"])
	require.Equal(t, "testpkg", m["go.package"])
	require.Equal(t, "./out", m["go.output-dir"])
	require.Equal(t, "chi", m["go.server-framework"])
	require.Equal(t, "./tmpl", m["templates.dir"])
	require.Equal(t, 4, m["parallelism"])
	require.Equal(t, []string{"all"}, m["go.targets"])
	require.NotContains(t, m, "strict")
	require.NotContains(t, m, "go.static-dir")
}

func TestExpandTargets(t *testing.T) {
	tests := []struct {
		name     string
		targets  []string
		expected []string
	}{
		{"default", nil, []string{"types", "server", "static"}},
		{"all", []string{"all"}, []string{"server", "static", "types"}},
		{"dedupe", []string{"types", "all", "types"}, []string{"server", "static", "types"}},
		{"subset", []string{"types"}, []string{"types"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, expandTargets(tt.targets))
		})
	}
}

func TestHasTarget(t *testing.T) {
	cfg := &Config{Go: GoConfig{Targets: []string{"types", "server"}}}

	require.True(t, cfg.HasTarget("types"))
	require.True(t, cfg.HasTarget("server"))
	require.False(t, cfg.HasTarget("static"))
}
