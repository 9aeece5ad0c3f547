package result

import (
	"github.com/vuebench/vuebench/internal/fixture"
	"github.com/vuebench/vuebench/internal/gpu"
)

// BenchmarkResult is the one record every run produces, whatever way the
// run terminated. Immutable once constructed.
type BenchmarkResult struct {
	RunID     string `json:"run_id"`
	Model     string `json:"model"`
	Fixture   string `json:"fixture"`
	Category  string `json:"category"`
	RunNumber int    `json:"run_number"`
	Timestamp string `json:"timestamp"`

	Compiles            bool            `json:"compiles"`
	CompilationErrors   []string        `json:"compilation_errors"`
	CompilationWarnings []string        `json:"compilation_warnings"`
	PatternScore        float64         `json:"pattern_score"`
	PatternChecks       map[string]bool `json:"pattern_checks"`
	PatternMissing      []string        `json:"pattern_missing"`
	NamingScore         float64         `json:"naming_score"`
	NamingViolations    []string        `json:"naming_violations"`
	FinalScore          float64         `json:"final_score"`
	ScoringWeights      fixture.Weights `json:"scoring_weights"`

	TokensPerSec float64      `json:"tokens_per_sec"`
	DurationSec  float64      `json:"duration_sec"`
	GPU          *gpu.Metrics `json:"gpu,omitempty"`

	OutputCode string   `json:"output_code"`
	Errors     []string `json:"errors"`

	Agent *AgentMeta `json:"agent,omitempty"`
}

// AgentMeta carries the agent-run fields absent from single-shot runs.
type AgentMeta struct {
	Outcome         string           `json:"outcome"`
	Succeeded       bool             `json:"succeeded"`
	Steps           int              `json:"steps"`
	MaxSteps        int              `json:"max_steps"`
	CompileAttempts int              `json:"compile_attempts"`
	ToolCallLog     []ToolCallRecord `json:"tool_call_log"`
}

// ToolCallRecord is one audit-trail entry, summarized for storage.
type ToolCallRecord struct {
	Step          int            `json:"step"`
	Tool          string         `json:"tool,omitempty"`
	Args          map[string]any `json:"args,omitempty"`
	ResultSummary string         `json:"result_summary,omitempty"`
	ParseError    string         `json:"parse_error,omitempty"`
}
