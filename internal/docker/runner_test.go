package docker_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vuebench/vuebench/internal/docker"
)

func TestRunCompile(t *testing.T) {
	if os.Getenv("VUEBENCH_DOCKER_TESTS") == "" {
		t.Skip("set VUEBENCH_DOCKER_TESTS=1 to run Docker tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	projectDir := t.TempDir()
	os.WriteFile(filepath.Join(projectDir, "package.json"), []byte(`{"name":"t"}`), 0o644)

	res, err := docker.RunCompile(ctx, &docker.CompileOpts{
		Image:      "alpine:latest",
		Cmd:        []string{"sh", "-c", "cat /workspace/package.json"},
		ProjectDir: projectDir,
		Timeout:    30 * time.Second,
	})
	if err != nil {
		t.Fatalf("RunCompile: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code: got %d, want 0", res.ExitCode)
	}
	if res.TimedOut {
		t.Error("unexpected timeout")
	}
	if !strings.Contains(res.Output, `"name":"t"`) {
		t.Errorf("expected mounted project visible in output, got %q", res.Output)
	}
}

func TestRunCompileTimeout(t *testing.T) {
	if os.Getenv("VUEBENCH_DOCKER_TESTS") == "" {
		t.Skip("set VUEBENCH_DOCKER_TESTS=1 to run Docker tests")
	}
	res, err := docker.RunCompile(context.Background(), &docker.CompileOpts{
		Image:      "alpine:latest",
		Cmd:        []string{"sleep", "300"},
		ProjectDir: t.TempDir(),
		Timeout:    2 * time.Second,
	})
	if err != nil {
		t.Fatalf("RunCompile: %v", err)
	}
	if !res.TimedOut {
		t.Error("expected timeout")
	}
	if res.ExitCode != 124 {
		t.Errorf("exit code: got %d, want 124", res.ExitCode)
	}
}
