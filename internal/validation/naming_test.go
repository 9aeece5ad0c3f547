package validation_test

import (
	"strings"
	"testing"

	"github.com/vuebench/vuebench/internal/fixture"
	"github.com/vuebench/vuebench/internal/validation"
)

func TestExtractInterfaces(t *testing.T) {
	code := `<script setup lang="ts">
interface UserProps { name: string }
interface itemState { count: number }
export interface ButtonProps { label: string }
</script>`
	got := validation.ExtractInterfaces(code)
	want := []string{"UserProps", "itemState", "ButtonProps"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("interface %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCheckNamingAllGood(t *testing.T) {
	conv := fixture.NamingConventions{
		Interfaces:           "PascalCase",
		PropsInterfaceSuffix: "Props",
	}
	res := validation.CheckNaming([]string{"UserProps", "ButtonProps"}, conv)
	if !res.FollowsConventions {
		t.Errorf("expected conventions followed, violations: %v", res.Violations)
	}
	if res.Score != 1.0 {
		t.Errorf("expected score 1.0, got %v", res.Score)
	}
}

func TestCheckNamingLowercase(t *testing.T) {
	conv := fixture.NamingConventions{
		Interfaces:           "PascalCase",
		PropsInterfaceSuffix: "Props",
	}
	res := validation.CheckNaming([]string{"fooProps"}, conv)
	if res.FollowsConventions {
		t.Error("expected a PascalCase violation")
	}
	if res.Score != 0.0 {
		t.Errorf("any violation zeroes the score, got %v", res.Score)
	}
	if len(res.Violations) != 1 || !strings.Contains(res.Violations[0], "not PascalCase") {
		t.Errorf("unexpected violations: %v", res.Violations)
	}
}

func TestCheckNamingMissingSuffix(t *testing.T) {
	conv := fixture.NamingConventions{
		Interfaces:        "PascalCase",
		InterfaceSuffixes: []string{"Props", "State"},
	}
	res := validation.CheckNaming([]string{"UserData"}, conv)
	if res.FollowsConventions {
		t.Error("expected a suffix violation")
	}
	if len(res.Violations) != 1 || !strings.Contains(res.Violations[0], "missing required suffix") {
		t.Errorf("unexpected violations: %v", res.Violations)
	}
}

func TestCheckNamingBothViolations(t *testing.T) {
	conv := fixture.NamingConventions{
		Interfaces:           "PascalCase",
		PropsInterfaceSuffix: "Props",
	}
	res := validation.CheckNaming([]string{"fooData"}, conv)
	if len(res.Violations) != 2 {
		t.Errorf("expected 2 violations, got %v", res.Violations)
	}
}

func TestCheckNamingNoInterfaces(t *testing.T) {
	conv := fixture.NamingConventions{Interfaces: "PascalCase"}
	res := validation.CheckNaming(nil, conv)
	if !res.FollowsConventions || res.Score != 1.0 {
		t.Errorf("nothing to check should be a pass, got %+v", res)
	}
}

func TestCheckNamingNoConventions(t *testing.T) {
	res := validation.CheckNaming([]string{"anything"}, fixture.NamingConventions{})
	if !res.FollowsConventions {
		t.Errorf("no conventions means no violations, got %v", res.Violations)
	}
}
