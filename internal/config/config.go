package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Models     []string   `yaml:"models"`
	Fixtures   Fixtures   `yaml:"fixtures"`
	Runs       int        `yaml:"runs"`
	Ollama     Ollama     `yaml:"ollama"`
	Validation Validation `yaml:"validation"`
	Secrets    Secrets    `yaml:"secrets"`
	Results    Results    `yaml:"results"`
}

type Fixtures struct {
	Dir string `yaml:"dir"`
}

type Ollama struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type Validation struct {
	ASTParser             string   `yaml:"ast_parser"`
	ASTTimeoutSeconds     int      `yaml:"ast_timeout_seconds"`
	CompileCmd            []string `yaml:"compile_cmd"`
	CompileTimeoutSeconds int      `yaml:"compile_timeout_seconds"`
	Image                 string   `yaml:"image"`
}

type Secrets struct {
	EnvFile string `yaml:"env_file"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

func (o Ollama) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

func (v Validation) CompileTimeout() time.Duration {
	return time.Duration(v.CompileTimeoutSeconds) * time.Second
}

func (v Validation) ASTTimeout() time.Duration {
	return time.Duration(v.ASTTimeoutSeconds) * time.Second
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.Models) == 0 {
		return fmt.Errorf("no models defined")
	}
	for i, m := range cfg.Models {
		if m == "" {
			return fmt.Errorf("model %d: name is empty", i)
		}
	}
	if cfg.Fixtures.Dir == "" {
		cfg.Fixtures.Dir = "fixtures"
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
	if cfg.Runs == 0 {
		cfg.Runs = 1
	}
	if cfg.Runs < 1 {
		return fmt.Errorf("runs must be at least 1")
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Ollama.TimeoutSeconds <= 0 {
		cfg.Ollama.TimeoutSeconds = 120
	}
	if cfg.Validation.ASTParser == "" {
		cfg.Validation.ASTParser = "scripts/parse_vue_ast.js"
	}
	if cfg.Validation.ASTTimeoutSeconds <= 0 {
		cfg.Validation.ASTTimeoutSeconds = 10
	}
	if len(cfg.Validation.CompileCmd) == 0 {
		cfg.Validation.CompileCmd = []string{"npm", "run", "type-check"}
	}
	if cfg.Validation.CompileTimeoutSeconds <= 0 {
		cfg.Validation.CompileTimeoutSeconds = 30
	}
	return nil
}

// ParseEnvFile reads KEY=VALUE lines (optionally prefixed with "export ",
// values optionally quoted) into a map. Blank lines and # comments are
// skipped.
func ParseEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	vars := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		s = strings.TrimPrefix(s, "export ")
		eqIdx := strings.IndexByte(s, '=')
		if eqIdx < 0 {
			continue
		}
		vars[s[:eqIdx]] = stripQuotes(s[eqIdx+1:])
	}
	return vars, nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
