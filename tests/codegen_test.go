package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kolah/apigen/internal/codegen"
	"github.com/kolah/apigen/internal/config"
	"github.com/kolah/apigen/internal/loader"
)

const greeterSpecs = "testdata/specs/greeter"

// generate writes the generated package for cfg into outputDir, below the
// test directory so that it builds inside this module.
func generate(t *testing.T, cfg *config.Config) string {
	t.Helper()

	testDir, err := os.Getwd()
	require.NoError(t, err)
	outputPath := filepath.Join(testDir, cfg.Go.OutputDir)

	require.NoError(t, os.RemoveAll(outputPath))
	require.NoError(t, os.MkdirAll(outputPath, 0755))

	ctx := context.Background()
	results, err := loader.LoadDir(ctx, filepath.Join(testDir, cfg.Specs), loader.Options{Strict: cfg.Strict})
	require.NoError(t, err, "failed to load specs")

	m, err := codegen.BuildModel(ctx, results, cfg.Go.StaticDir, nil)
	require.NoError(t, err, "failed to build model")

	gen, err := codegen.New(cfg)
	require.NoError(t, err, "failed to create generator")

	outputs, err := gen.Generate(m, codegen.Documents(results, cfg.Go.StaticDir))
	require.NoError(t, err, "failed to generate")

	for _, o := range outputs {
		filePath := filepath.Join(outputPath, filepath.FromSlash(o.Filename))
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, o.Content, 0644), "failed to write %s", o.Filename)
	}
	return outputPath
}

func goCommand(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("go", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "go %v failed:\n%s", args, string(output))
}

func TestGeneratedCodeCompiles(t *testing.T) {
	tests := []struct {
		name            string
		targets         []string
		serverFramework string
		staticDir       string
	}{
		{name: "types", targets: []string{"types"}},
		{name: "server_stdlib", targets: []string{"types", "server"}, serverFramework: "stdlib"},
		{name: "server_chi", targets: []string{"types", "server"}, serverFramework: "chi"},
		{name: "full_stdlib", targets: []string{"types", "server", "static"}, serverFramework: "stdlib"},
		{name: "full_chi", targets: []string{"types", "server", "static"}, serverFramework: "chi", staticDir: "assets/docs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staticDir := tt.staticDir
			if staticDir == "" {
				staticDir = "static"
			}
			cfg := &config.Config{
				Specs:  greeterSpecs,
				Strict: true,
				Go: config.GoConfig{
					OutputDir:       filepath.Join("generated", tt.name),
					Package:         "gen",
					ServerFramework: tt.serverFramework,
					StaticDir:       staticDir,
					Targets:         tt.targets,
				},
			}
			outputPath := generate(t, cfg)

			goCommand(t, outputPath, "vet", ".")
		})
	}
}

// TestGeneratedServer runs the request level test in testdata/e2e against
// the package generated for each router.
func TestGeneratedServer(t *testing.T) {
	e2e, err := os.ReadFile("testdata/e2e/greeter_test.go")
	require.NoError(t, err)

	for _, framework := range []string{"stdlib", "chi"} {
		t.Run(framework, func(t *testing.T) {
			cfg := &config.Config{
				Specs: greeterSpecs,
				Go: config.GoConfig{
					OutputDir:       filepath.Join("generated", "e2e_"+framework),
					Package:         "gen",
					ServerFramework: framework,
					StaticDir:       "static",
					Targets:         []string{"types", "server", "static"},
				},
			}
			outputPath := generate(t, cfg)
			require.NoError(t, os.WriteFile(filepath.Join(outputPath, "greeter_test.go"), e2e, 0644))

			goCommand(t, outputPath, "test", ".")
		})
	}
}

func TestCustomTemplateOverride(t *testing.T) {
	cfg := &config.Config{
		Specs: greeterSpecs,
		Templates: config.TemplateConfig{
			Dir: "testdata/custom-templates",
		},
		Go: config.GoConfig{
			OutputDir: filepath.Join("generated", "custom_template"),
			Package:   "gen",
			StaticDir: "static",
			Targets:   []string{"static"},
		},
	}
	outputPath := generate(t, cfg)

	docs, err := os.ReadFile(filepath.Join(outputPath, "static", "v2", "docs.html"))
	require.NoError(t, err)
	require.Contains(t, string(docs), "CUSTOM TEMPLATE")
	require.Contains(t, string(docs), "Greeter v2")
}
