package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strings"
	"time"
)

// PatternResult is the outcome of the structural (AST-derived) check.
type PatternResult struct {
	Checks     map[string]bool `json:"checks"`
	Interfaces []string        `json:"interfaces"`
	Missing    []string        `json:"missing"`
	Score      float64         `json:"score"`
}

// ASTCheck invokes the external Node.js SFC parser and compares the
// structural facts it reports against a fixture's required categories.
type ASTCheck struct {
	Script  string
	Timeout time.Duration
}

// astFacts is the parser subprocess's stdout contract.
type astFacts struct {
	HasScriptLangTS    bool     `json:"has_script_lang_ts"`
	HasInterfaces      bool     `json:"has_interfaces"`
	HasTypeAnnotations bool     `json:"has_type_annotations"`
	HasImports         bool     `json:"has_imports"`
	Interfaces         []string `json:"interfaces"`
}

func (f astFacts) satisfies(category string) bool {
	switch category {
	case "interfaces":
		return f.HasInterfaces
	case "type_annotations":
		return f.HasTypeAnnotations
	case "script_lang":
		return f.HasScriptLangTS
	case "imports":
		return f.HasImports
	}
	return false
}

// Run parses code and scores it against the required categories. The score
// is the satisfied fraction scaled to [0,10], rounded to two decimals; an
// empty requirement set scores 10.
func (a *ASTCheck) Run(ctx context.Context, code string, required []string) (*PatternResult, error) {
	facts, err := a.parse(ctx, code)
	if err != nil {
		return nil, err
	}

	checks := make(map[string]bool, len(required))
	missing := []string{}
	satisfied := 0
	for _, cat := range required {
		ok := facts.satisfies(cat)
		checks[cat] = ok
		if ok {
			satisfied++
		} else {
			missing = append(missing, cat)
		}
	}

	return &PatternResult{
		Checks:     checks,
		Interfaces: facts.Interfaces,
		Missing:    missing,
		Score:      PatternScore(satisfied, len(required)),
	}, nil
}

func (a *ASTCheck) parse(ctx context.Context, code string) (*astFacts, error) {
	tmp, err := os.CreateTemp("", "vuebench-*.vue")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(code); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	tmp.Close()

	runCtx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "node", a.Script, tmp.Name())
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("AST parser timed out after %s", a.Timeout)
		}
		return nil, fmt.Errorf("AST parsing failed: %s", parserError(stderr.String(), err))
	}

	var facts astFacts
	if err := json.Unmarshal([]byte(stdout.String()), &facts); err != nil {
		return nil, fmt.Errorf("parsing AST output: %w", err)
	}
	return &facts, nil
}

// parserError extracts the parser's error message; the script reports
// {"error": "..."} on stderr when it can, raw text otherwise.
func parserError(stderr string, runErr error) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return runErr.Error()
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(stderr), &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return stderr
}

// PatternScore scales the satisfied fraction to [0,10], rounded to two
// decimal places. Zero required categories is vacuously perfect.
func PatternScore(satisfied, required int) float64 {
	if required == 0 {
		return 10.0
	}
	return Round2(10 * float64(satisfied) / float64(required))
}

// Round2 rounds to two decimal places; every reported score uses it so
// results are comparable across runs.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
