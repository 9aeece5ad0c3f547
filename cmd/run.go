package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vuebench/vuebench/internal/config"
	"github.com/vuebench/vuebench/internal/fixture"
	"github.com/vuebench/vuebench/internal/gpu"
	"github.com/vuebench/vuebench/internal/llm"
	"github.com/vuebench/vuebench/internal/report"
	"github.com/vuebench/vuebench/internal/result"
	"github.com/vuebench/vuebench/internal/runner"
	"github.com/vuebench/vuebench/internal/validation"
)

var (
	flagModel    string
	flagFixture  string
	flagCategory string
	flagRuns     int
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a benchmark run",
		RunE:  runBenchmark,
	}
	cmd.Flags().StringVar(&flagModel, "model", "", "filter to a single model")
	cmd.Flags().StringVar(&flagFixture, "fixture", "", "filter to a single fixture")
	cmd.Flags().StringVar(&flagCategory, "category", "", "filter by category")
	cmd.Flags().IntVar(&flagRuns, "runs", 0, "override run count")
	return cmd
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if flagRuns > 0 {
		cfg.Runs = flagRuns
	}

	if cfg.Secrets.EnvFile != "" {
		secrets, err := config.ParseEnvFile(cfg.Secrets.EnvFile)
		if err != nil {
			log.Printf("warning: could not load secrets: %v", err)
		} else {
			for k, v := range secrets {
				if os.Getenv(k) == "" {
					os.Setenv(k, v)
				}
			}
		}
	}
	baseURL := cfg.Ollama.BaseURL
	if env := os.Getenv("OLLAMA_BASE_URL"); env != "" {
		baseURL = env
	}

	models := filterModels(cfg.Models, flagModel)
	fixtures, err := fixture.Discover(cfg.Fixtures.Dir)
	if err != nil {
		return err
	}
	fixtures = filterFixtures(fixtures, flagFixture, flagCategory)
	if len(fixtures) == 0 {
		return fmt.Errorf("no fixtures matched")
	}

	runDir, err := result.CreateRunDir(cfg.Results.Dir)
	if err != nil {
		return err
	}
	fmt.Printf("Run directory: %s\n", runDir)

	ctx := context.Background()
	client := llm.NewOllamaClient(baseURL, cfg.Ollama.Timeout())
	pipeline := validation.NewPipeline(cfg.Validation)

	monitorGPU := gpu.Available()
	if monitorGPU {
		fmt.Println("GPU monitoring enabled (nvidia-smi)")
	}

	for _, model := range models {
		for _, f := range fixtures {
			var results []*result.BenchmarkResult
			for run := 1; run <= cfg.Runs; run++ {
				fmt.Printf("Running %s × %s/%s (run %d/%d)...\n", model, f.Category, f.Name, run, cfg.Runs)
				res, err := runner.Run(ctx, &runner.Opts{
					Model:      model,
					Fixture:    f,
					RunNumber:  run,
					Client:     client,
					Validator:  pipeline,
					Compile:    pipeline.Compile,
					MonitorGPU: monitorGPU,
				})
				if err != nil {
					fmt.Printf("  ERROR: %v\n", err)
					continue
				}
				results = append(results, res)
				printRunSummary(res)
			}
			if len(results) > 0 {
				if err := result.WriteResults(runDir, model, f.Name, results); err != nil {
					return fmt.Errorf("writing results: %w", err)
				}
			}
		}
	}

	fmt.Println("\n--- Results ---")
	return report.Generate(runDir, "table", os.Stdout)
}

func printRunSummary(res *result.BenchmarkResult) {
	compile := "✗"
	if res.Compiles {
		compile = "✓"
	}
	line := fmt.Sprintf("  %s compile | %.2f/10 | %.1fs", compile, res.FinalScore, res.DurationSec)
	if res.TokensPerSec > 0 {
		line += fmt.Sprintf(" | %.1f tok/s", res.TokensPerSec)
	}
	if res.GPU != nil {
		line += fmt.Sprintf(" | GPU %.0f%% peak, %.0f MB peak", res.GPU.PeakUtilization, res.GPU.PeakMemoryMB)
	}
	if res.Agent != nil {
		line += fmt.Sprintf(" | %s, %d/%d steps, %d compile checks",
			res.Agent.Outcome, res.Agent.Steps, res.Agent.MaxSteps, res.Agent.CompileAttempts)
	}
	fmt.Println(line)
	if len(res.PatternMissing) > 0 {
		fmt.Printf("    missing: %s\n", strings.Join(res.PatternMissing, ", "))
	}
	for i, e := range res.CompilationErrors {
		if i == 3 {
			break
		}
		fmt.Printf("    TS error: %s\n", e)
	}
	for i, e := range res.Errors {
		if i == 3 {
			break
		}
		fmt.Printf("    warning: %s\n", e)
	}
}

func filterModels(models []string, name string) []string {
	if name == "" {
		return models
	}
	var filtered []string
	for _, m := range models {
		if m == name {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func filterFixtures(fixtures []*fixture.Fixture, name, category string) []*fixture.Fixture {
	if name == "" && category == "" {
		return fixtures
	}
	var filtered []*fixture.Fixture
	for _, f := range fixtures {
		if name != "" && f.Name != name {
			continue
		}
		if category != "" && f.Category != category {
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered
}
