// Package runner executes one benchmark run end to end: reset the
// fixture's target file, let the model act (single-shot or agent), score
// whatever it produced, and restore the original file content on every
// exit path.
package runner

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vuebench/vuebench/internal/agent"
	"github.com/vuebench/vuebench/internal/fixture"
	"github.com/vuebench/vuebench/internal/gpu"
	"github.com/vuebench/vuebench/internal/llm"
	"github.com/vuebench/vuebench/internal/result"
	"github.com/vuebench/vuebench/internal/tools"
	"github.com/vuebench/vuebench/internal/validation"
)

type Opts struct {
	Model     string
	Fixture   *fixture.Fixture
	RunNumber int
	Client    llm.Client
	Validator validation.Validator
	Compile   *validation.CompileCheck

	// MonitorGPU samples nvidia-smi while the model is working and
	// attaches the aggregated metrics to the result.
	MonitorGPU bool
}

// Run executes one benchmark run. A nil result with an error means the
// run could not be carried out at all (transport or toolchain failure);
// otherwise exactly one BenchmarkResult comes back, however the model
// behaved.
func Run(ctx context.Context, opts *Opts) (*result.BenchmarkResult, error) {
	f := opts.Fixture

	// The original content was captured at fixture load; put the file
	// back no matter how this run ends.
	defer func() {
		if err := os.WriteFile(f.TargetFile, []byte(f.OriginalCode), 0o644); err != nil {
			log.Printf("warning: restoring %s: %v", f.TargetFile, err)
		}
	}()
	if err := os.WriteFile(f.TargetFile, []byte(f.OriginalCode), 0o644); err != nil {
		return nil, fmt.Errorf("resetting target file: %w", err)
	}

	if f.IsAgent() {
		return runAgent(ctx, opts)
	}
	return runSingleShot(ctx, opts)
}

func runSingleShot(ctx context.Context, opts *Opts) (*result.BenchmarkResult, error) {
	f := opts.Fixture
	timestamp := time.Now().Format(time.RFC3339)
	errs := []string{}

	collector := startCollector(opts)
	chat, err := opts.Client.Chat(ctx, opts.Model, []llm.Message{
		{Role: llm.RoleUser, Content: f.RenderPrompt()},
	})
	gpuMetrics := stopCollector(collector)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	output := ExtractCode(chat.Text)
	if err := os.WriteFile(f.TargetFile, []byte(output), 0o644); err != nil {
		return nil, fmt.Errorf("writing model output: %w", err)
	}

	summary, err := opts.Validator.Validate(ctx, f.ProjectDir, output, &f.Spec)
	if err != nil {
		return nil, err
	}
	errs = append(errs, summary.Errors...)

	res := buildResult(opts, timestamp, output, summary, errs)
	res.TokensPerSec = chat.TokensPerSec()
	res.DurationSec = chat.Duration.Seconds()
	res.GPU = gpuMetrics
	return res, nil
}

func runAgent(ctx context.Context, opts *Opts) (*result.BenchmarkResult, error) {
	f := opts.Fixture
	timestamp := time.Now().Format(time.RFC3339)
	errs := []string{}

	registry, err := tools.NewRegistry(f.ProjectDir, f.Spec.TargetFile, opts.Compile)
	if err != nil {
		return nil, fmt.Errorf("building tool registry: %w", err)
	}

	loop := &agent.Loop{
		Client:   opts.Client,
		Model:    opts.Model,
		Registry: registry,
		MaxSteps: f.Spec.MaxSteps,
	}
	collector := startCollector(opts)
	loopRes, err := loop.Run(ctx, f.Prompt)
	gpuMetrics := stopCollector(collector)
	if err != nil {
		return nil, fmt.Errorf("agent run: %w", err)
	}

	output := ""
	if data, err := os.ReadFile(f.TargetFile); err != nil {
		errs = append(errs, fmt.Sprintf("reading target file after agent run: %v", err))
	} else {
		output = string(data)
	}

	summary, err := opts.Validator.Validate(ctx, f.ProjectDir, output, &f.Spec)
	if err != nil {
		return nil, err
	}
	errs = append(errs, summary.Errors...)

	res := buildResult(opts, timestamp, output, summary, errs)
	if loopRes.Duration > 0 {
		res.TokensPerSec = float64(loopRes.Tokens) / loopRes.Duration.Seconds()
	}
	res.DurationSec = loopRes.Duration.Seconds()
	res.GPU = gpuMetrics
	res.Agent = &result.AgentMeta{
		Outcome:         string(loopRes.Outcome),
		Succeeded:       loopRes.Outcome == agent.OutcomeSucceeded,
		Steps:           loopRes.StepCount,
		MaxSteps:        f.Spec.MaxSteps,
		CompileAttempts: loopRes.CompileAttempts,
		ToolCallLog:     toolCallLog(loopRes.Steps),
	}
	return res, nil
}

func buildResult(opts *Opts, timestamp, output string, summary *validation.Summary, errs []string) *result.BenchmarkResult {
	return &result.BenchmarkResult{
		RunID:     uuid.NewString(),
		Model:     opts.Model,
		Fixture:   opts.Fixture.Name,
		Category:  opts.Fixture.Category,
		RunNumber: opts.RunNumber,
		Timestamp: timestamp,

		Compiles:            summary.Compilation.Success,
		CompilationErrors:   summary.Compilation.Errors,
		CompilationWarnings: summary.Compilation.Warnings,
		PatternScore:        summary.Pattern.Score,
		PatternChecks:       summary.Pattern.Checks,
		PatternMissing:      summary.Pattern.Missing,
		NamingScore:         summary.Naming.Score * 10,
		NamingViolations:    summary.Naming.Violations,
		FinalScore:          summary.FinalScore,
		ScoringWeights:      opts.Fixture.Spec.Scoring,

		OutputCode: output,
		Errors:     errs,
	}
}

func startCollector(opts *Opts) *gpu.Collector {
	if !opts.MonitorGPU {
		return nil
	}
	return gpu.Start(0)
}

func stopCollector(c *gpu.Collector) *gpu.Metrics {
	if c == nil {
		return nil
	}
	m := c.Stop()
	if m.Samples == 0 {
		return nil
	}
	return &m
}

const summaryLimit = 200

func toolCallLog(steps []agent.Step) []result.ToolCallRecord {
	records := make([]result.ToolCallRecord, 0, len(steps))
	for _, s := range steps {
		rec := result.ToolCallRecord{Step: s.Index, ParseError: s.ParseErr}
		if s.Call != nil {
			rec.Tool = s.Call.Name
			rec.Args = s.Call.Args
		}
		if s.Result != nil {
			out := s.Result.Output()
			if len(out) > summaryLimit {
				out = out[:summaryLimit] + "..."
			}
			rec.ResultSummary = out
		}
		records = append(records, rec)
	}
	return records
}

var (
	vueFence     = regexp.MustCompile("(?s)```vue\\s*\\n(.*?)\\n```")
	genericFence = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\s*\\n(.*?)\\n```")
)

// ExtractCode pulls component source out of a single-shot model response,
// preferring a vue-tagged fence, then any fence, then the raw text.
func ExtractCode(response string) string {
	if m := vueFence.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := genericFence.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(response)
}
