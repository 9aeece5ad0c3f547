package fixture

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Fixture is one self-contained benchmark task: a prompt, a validation
// spec, and a target Vue project containing the file under test.
type Fixture struct {
	Name     string
	Category string
	Path     string
	Prompt   string
	Spec     Spec

	ProjectDir   string
	TargetFile   string // absolute path of the file under test
	OriginalCode string // content captured at load time
}

// Spec is the parsed validation_spec.json.
type Spec struct {
	TargetFile        string              `json:"target_file"`
	RequiredPatterns  map[string][]string `json:"required_patterns"`
	NamingConventions NamingConventions   `json:"naming_conventions"`
	Scoring           Weights             `json:"scoring"`
	MaxSteps          int                 `json:"max_steps"`
}

type NamingConventions struct {
	Interfaces           string   `json:"interfaces"`
	PropsInterfaceSuffix string   `json:"props_interface_suffix"`
	InterfaceSuffixes    []string `json:"interface_suffixes"`
}

// Suffixes returns the accepted interface suffix list, folding the legacy
// single-suffix field into it.
func (n NamingConventions) Suffixes() []string {
	suffixes := append([]string(nil), n.InterfaceSuffixes...)
	if n.PropsInterfaceSuffix != "" {
		for _, s := range suffixes {
			if s == n.PropsInterfaceSuffix {
				return suffixes
			}
		}
		suffixes = append(suffixes, n.PropsInterfaceSuffix)
	}
	return suffixes
}

// Weights are the per-dimension scoring weights; they must sum to 1.
type Weights struct {
	Compilation  float64 `json:"compilation"`
	PatternMatch float64 `json:"pattern_match"`
	Naming       float64 `json:"naming"`
}

func (w Weights) Sum() float64 {
	return w.Compilation + w.PatternMatch + w.Naming
}

// RequiredCategories returns the pattern categories this fixture demands,
// sorted for stable reporting. A category is required when its key is
// present with a non-empty value.
func (s *Spec) RequiredCategories() []string {
	var cats []string
	for k, v := range s.RequiredPatterns {
		if len(v) > 0 {
			cats = append(cats, k)
		}
	}
	sort.Strings(cats)
	return cats
}

// Load reads one fixture directory: prompt.md, validation_spec.json and
// target_project/ with the spec's target file. The target file's content
// is captured so runs can restore it afterwards.
func Load(path string) (*Fixture, error) {
	promptData, err := os.ReadFile(filepath.Join(path, "prompt.md"))
	if err != nil {
		return nil, fmt.Errorf("reading prompt.md in %s: %w", path, err)
	}

	specData, err := os.ReadFile(filepath.Join(path, "validation_spec.json"))
	if err != nil {
		return nil, fmt.Errorf("reading validation_spec.json in %s: %w", path, err)
	}
	var spec Spec
	if err := json.Unmarshal(specData, &spec); err != nil {
		return nil, fmt.Errorf("parsing validation_spec.json in %s: %w", path, err)
	}
	if err := validateSpec(&spec); err != nil {
		return nil, fmt.Errorf("invalid validation_spec.json in %s: %w", path, err)
	}

	projectDir := filepath.Join(path, "target_project")
	if info, err := os.Stat(projectDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("target_project not found in %s", path)
	}

	targetFile := filepath.Join(projectDir, filepath.FromSlash(spec.TargetFile))
	original, err := os.ReadFile(targetFile)
	if err != nil {
		return nil, fmt.Errorf("reading target file %s: %w", spec.TargetFile, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving fixture path: %w", err)
	}

	return &Fixture{
		Name:         filepath.Base(abs),
		Category:     filepath.Base(filepath.Dir(abs)),
		Path:         abs,
		Prompt:       string(promptData),
		Spec:         spec,
		ProjectDir:   filepath.Join(abs, "target_project"),
		TargetFile:   filepath.Join(abs, "target_project", filepath.FromSlash(spec.TargetFile)),
		OriginalCode: string(original),
	}, nil
}

func validateSpec(spec *Spec) error {
	if spec.TargetFile == "" {
		return fmt.Errorf("target_file is required")
	}
	if math.Abs(spec.Scoring.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1, got %.4f", spec.Scoring.Sum())
	}
	if spec.MaxSteps == 0 {
		spec.MaxSteps = 5
	}
	if spec.MaxSteps < 1 {
		return fmt.Errorf("max_steps must be at least 1")
	}
	return nil
}

// Discover walks fixturesDir/<category>/<name> and loads every fixture it
// finds. Directories without a validation_spec.json are skipped.
func Discover(fixturesDir string) ([]*Fixture, error) {
	categories, err := os.ReadDir(fixturesDir)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures dir %s: %w", fixturesDir, err)
	}
	var fixtures []*Fixture
	for _, cat := range categories {
		if !cat.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(fixturesDir, cat.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading category %s: %w", cat.Name(), err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			dir := filepath.Join(fixturesDir, cat.Name(), e.Name())
			if _, err := os.Stat(filepath.Join(dir, "validation_spec.json")); err != nil {
				continue
			}
			f, err := Load(dir)
			if err != nil {
				return nil, fmt.Errorf("loading fixture %s/%s: %w", cat.Name(), e.Name(), err)
			}
			fixtures = append(fixtures, f)
		}
	}
	return fixtures, nil
}

// IsAgent reports whether this fixture runs the tool-calling agent loop
// rather than a single-shot prompt.
func (f *Fixture) IsAgent() bool {
	return f.Category == "agent"
}

// RenderPrompt substitutes the {{original_code}} placeholder used by
// single-shot fixture prompts.
func (f *Fixture) RenderPrompt() string {
	return strings.ReplaceAll(f.Prompt, "{{original_code}}", f.OriginalCode)
}
