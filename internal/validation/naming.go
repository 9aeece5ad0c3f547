package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/vuebench/vuebench/internal/fixture"
)

// NamingResult is the outcome of the interface naming-convention check.
type NamingResult struct {
	FollowsConventions bool     `json:"follows_conventions"`
	Violations         []string `json:"violations"`
	Score              float64  `json:"score"`
}

var interfacePattern = regexp.MustCompile(`interface\s+([a-zA-Z][a-zA-Z0-9]*)`)

// ExtractInterfaces scans source text for interface declarations. Used as
// a fallback when the pattern check could not report declared names.
func ExtractInterfaces(code string) []string {
	var names []string
	for _, m := range interfacePattern.FindAllStringSubmatch(code, -1) {
		names = append(names, m[1])
	}
	return names
}

// CheckNaming applies the fixture's conventions to each declared interface
// name. No interfaces means nothing to check and a perfect score; any
// violation zeroes the score.
func CheckNaming(interfaces []string, conv fixture.NamingConventions) NamingResult {
	violations := []string{}
	suffixes := conv.Suffixes()

	for _, name := range interfaces {
		if name == "" {
			continue
		}
		if conv.Interfaces == "PascalCase" && !unicode.IsUpper(rune(name[0])) {
			violations = append(violations,
				fmt.Sprintf("Interface '%s' is not PascalCase (must start with uppercase)", name))
		}
		if len(suffixes) > 0 && !hasAnySuffix(name, suffixes) {
			violations = append(violations,
				fmt.Sprintf("Interface '%s' missing required suffix (one of %s)", name, strings.Join(suffixes, ", ")))
		}
	}

	follows := len(violations) == 0
	score := 0.0
	if follows {
		score = 1.0
	}
	return NamingResult{
		FollowsConventions: follows,
		Violations:         violations,
		Score:              score,
	}
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
