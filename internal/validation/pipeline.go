// Package validation scores one candidate Vue component: a compilation
// check, a structural pattern check, and a naming-convention check,
// combined into a weighted 0-10 score. The pattern and naming checks are
// isolated: whatever goes wrong inside them becomes a zero sub-score plus
// a recorded error, never an aborted run. Only a broken toolchain
// (compiler missing) is allowed to surface as an error.
package validation

import (
	"context"
	"fmt"

	"github.com/vuebench/vuebench/internal/config"
	"github.com/vuebench/vuebench/internal/fixture"
)

type Pipeline struct {
	Compile *CompileCheck
	AST     *ASTCheck
}

func NewPipeline(cfg config.Validation) *Pipeline {
	return &Pipeline{
		Compile: &CompileCheck{
			Cmd:     cfg.CompileCmd,
			Timeout: cfg.CompileTimeout(),
			Image:   cfg.Image,
		},
		AST: &ASTCheck{
			Script:  cfg.ASTParser,
			Timeout: cfg.ASTTimeout(),
		},
	}
}

// Summary holds the three sub-results and the weighted final score.
// Errors records non-fatal validation failures that degraded a sub-score.
type Summary struct {
	Compilation CompilationResult
	Pattern     PatternResult
	Naming      NamingResult
	FinalScore  float64
	Errors      []string
}

// Validator is what runners depend on; satisfied by *Pipeline and by
// stubs in tests.
type Validator interface {
	Validate(ctx context.Context, projectDir, code string, spec *fixture.Spec) (*Summary, error)
}

// Validate scores code against the fixture spec. The returned error is
// reserved for configuration failures (compiler toolchain missing); all
// other check failures degrade into the summary's error list.
func (p *Pipeline) Validate(ctx context.Context, projectDir, code string, spec *fixture.Spec) (*Summary, error) {
	summary := &Summary{Errors: []string{}}

	comp, err := p.Compile.Run(ctx, projectDir)
	if err != nil {
		return nil, fmt.Errorf("compilation check: %w", err)
	}
	summary.Compilation = *comp

	pattern, perr := p.patternCheck(ctx, code, spec.RequiredCategories())
	if perr != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("pattern check error: %v", perr))
		pattern = &PatternResult{
			Checks:  map[string]bool{},
			Missing: []string{"pattern check failed"},
			Score:   0,
		}
	}
	summary.Pattern = *pattern

	// The naming check works over the interface names the pattern check
	// found; when that check degraded, fall back to scanning the source.
	names := pattern.Interfaces
	if perr != nil {
		names = ExtractInterfaces(code)
	}
	naming, nerr := p.namingCheck(names, spec.NamingConventions)
	if nerr != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("naming check error: %v", nerr))
		naming = NamingResult{
			FollowsConventions: false,
			Violations:         []string{"naming check failed"},
			Score:              0,
		}
	}
	summary.Naming = naming

	summary.FinalScore = FinalScore(comp.Success, pattern.Score, naming.Score, spec.Scoring)
	return summary, nil
}

func (p *Pipeline) patternCheck(ctx context.Context, code string, required []string) (res *PatternResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pattern check panicked: %v", r)
		}
	}()
	return p.AST.Run(ctx, code, required)
}

func (p *Pipeline) namingCheck(names []string, conv fixture.NamingConventions) (res NamingResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("naming check panicked: %v", r)
		}
	}()
	return CheckNaming(names, conv), nil
}

// FinalScore is the weighted composite on a 0-10 scale, rounded to two
// decimals: 10 * (w_c*compiles + w_p*pattern/10 + w_n*naming).
func FinalScore(compiles bool, patternScore, namingScore float64, w fixture.Weights) float64 {
	c := 0.0
	if compiles {
		c = 1.0
	}
	return Round2(10 * (w.Compilation*c + w.PatternMatch*patternScore/10 + w.Naming*namingScore))
}
