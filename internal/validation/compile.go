package validation

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/vuebench/vuebench/internal/docker"
)

// CompilationResult is the outcome of one type-check run.
type CompilationResult struct {
	Success  bool          `json:"success"`
	Errors   []string      `json:"errors"`
	Warnings []string      `json:"warnings"`
	Duration time.Duration `json:"duration_ns"`
}

// CompileCheck runs the project's TypeScript type-check command (vue-tsc
// behind `npm run type-check` by default). When Image is set the command
// runs inside that container image with the project bind-mounted instead
// of on the host.
type CompileCheck struct {
	Cmd     []string
	Timeout time.Duration
	Image   string
}

// Run executes the type-check in projectDir. A non-zero exit is a failed
// result, not an error; an error means the toolchain itself could not be
// invoked, which is a configuration problem the caller must surface.
func (c *CompileCheck) Run(ctx context.Context, projectDir string) (*CompilationResult, error) {
	if _, err := os.Stat(filepath.Join(projectDir, "package.json")); err != nil {
		return nil, fmt.Errorf("package.json not found in %s", projectDir)
	}

	if c.Image != "" {
		return c.runInContainer(ctx, projectDir)
	}
	return c.runLocal(ctx, projectDir)
}

func (c *CompileCheck) runLocal(ctx context.Context, projectDir string) (*CompilationResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.Cmd[0], c.Cmd[1:]...)
	cmd.Dir = projectDir

	start := time.Now()
	out, err := cmd.CombinedOutput()
	duration := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		return timeoutResult(c.Timeout, duration), nil
	}
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, fmt.Errorf("running %s: %w", strings.Join(c.Cmd, " "), err)
		}
	}

	errs, warnings := ParseCompileOutput(string(out))
	return &CompilationResult{
		Success:  err == nil,
		Errors:   errs,
		Warnings: warnings,
		Duration: duration,
	}, nil
}

func (c *CompileCheck) runInContainer(ctx context.Context, projectDir string) (*CompilationResult, error) {
	run, err := docker.RunCompile(ctx, &docker.CompileOpts{
		Image:      c.Image,
		Cmd:        c.Cmd,
		ProjectDir: projectDir,
		Timeout:    c.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("containerized type-check: %w", err)
	}
	if run.TimedOut {
		return timeoutResult(c.Timeout, run.Duration), nil
	}

	errs, warnings := ParseCompileOutput(run.Output)
	return &CompilationResult{
		Success:  run.ExitCode == 0,
		Errors:   errs,
		Warnings: warnings,
		Duration: run.Duration,
	}, nil
}

func timeoutResult(timeout, duration time.Duration) *CompilationResult {
	return &CompilationResult{
		Success:  false,
		Errors:   []string{fmt.Sprintf("Compilation timeout after %d seconds", int(timeout.Seconds()))},
		Warnings: []string{},
		Duration: duration,
	}
}

// ParseCompileOutput splits vue-tsc output into error and warning lines.
// Error lines contain "error TS" or " - error"; warning lines contain
// "warning" and are deduplicated.
func ParseCompileOutput(output string) (errs, warnings []string) {
	errs = []string{}
	warnings = []string{}
	seen := map[string]bool{}
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.Contains(line, "error TS") || strings.Contains(line, " - error"):
			errs = append(errs, line)
		case strings.Contains(strings.ToLower(line), "warning"):
			if !seen[line] {
				seen[line] = true
				warnings = append(warnings, line)
			}
		}
	}
	return errs, warnings
}
