package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CreateRunDir creates a timestamped directory under baseDir/runs and
// repoints the baseDir/latest symlink at it.
func CreateRunDir(baseDir string) (string, error) {
	runsDir := filepath.Join(baseDir, "runs")
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	runDir := filepath.Join(runsDir, stamp)
	runDir, err := filepath.Abs(runDir)
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

// ResultFile is where one model×fixture's ordered run results live.
func ResultFile(runDir, model, fixtureName string) string {
	return filepath.Join(runDir, sanitize(model), fixtureName+".json")
}

// sanitize makes a model name filesystem-safe (ollama names contain ':'
// and '/').
func sanitize(model string) string {
	r := strings.NewReplacer(":", "_", "/", "_")
	return r.Replace(model)
}

// WriteResults persists the ordered results of one model×fixture.
func WriteResults(runDir, model, fixtureName string, results []*BenchmarkResult) error {
	path := ResultFile(runDir, model, fixtureName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating result dir: %w", err)
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResults loads one stored result file.
func ReadResults(path string) ([]*BenchmarkResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	var results []*BenchmarkResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parsing results %s: %w", path, err)
	}
	return results, nil
}

// Collect walks a run directory and loads every stored result.
func Collect(runDir string) ([]*BenchmarkResult, error) {
	var all []*BenchmarkResult
	err := filepath.Walk(runDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			return nil
		}
		results, err := ReadResults(path)
		if err != nil {
			return nil
		}
		all = append(all, results...)
		return nil
	})
	return all, err
}
