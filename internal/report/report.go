package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/vuebench/vuebench/internal/result"
)

type ModelSummary struct {
	Model        string  `json:"model"`
	Runs         int     `json:"runs"`
	CompileRate  float64 `json:"compile_rate"`
	MeanScore    float64 `json:"mean_score"`
	MeanPattern  float64 `json:"mean_pattern_score"`
	MeanNaming   float64 `json:"mean_naming_score"`
	MeanTokSec   float64 `json:"mean_tokens_per_sec"`
	MeanDuration float64 `json:"mean_duration_sec"`
}

// Generate reads stored run results and writes a per-model summary.
func Generate(runDir, format string, w io.Writer) error {
	results, err := result.Collect(runDir)
	if err != nil {
		return fmt.Errorf("collecting results: %w", err)
	}

	summaries := aggregate(results)

	switch format {
	case "markdown":
		return writeMarkdown(summaries, w)
	case "json":
		return writeJSON(summaries, w)
	default:
		return writeTable(summaries, w)
	}
}

func aggregate(results []*result.BenchmarkResult) []ModelSummary {
	type accum struct {
		count    int
		compiled int
		score    float64
		pattern  float64
		naming   float64
		tokSec   float64
		duration float64
	}
	byModel := map[string]*accum{}

	for _, r := range results {
		a, ok := byModel[r.Model]
		if !ok {
			a = &accum{}
			byModel[r.Model] = a
		}
		a.count++
		a.score += r.FinalScore
		a.pattern += r.PatternScore
		a.naming += r.NamingScore
		a.tokSec += r.TokensPerSec
		a.duration += r.DurationSec
		if r.Compiles {
			a.compiled++
		}
	}

	var summaries []ModelSummary
	for model, a := range byModel {
		n := float64(a.count)
		summaries = append(summaries, ModelSummary{
			Model:        model,
			Runs:         a.count,
			CompileRate:  float64(a.compiled) / n,
			MeanScore:    a.score / n,
			MeanPattern:  a.pattern / n,
			MeanNaming:   a.naming / n,
			MeanTokSec:   a.tokSec / n,
			MeanDuration: a.duration / n,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Model < summaries[j].Model
	})
	return summaries
}

func writeTable(summaries []ModelSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tRUNS\tCOMPILE\tMEAN SCORE\tPATTERN\tNAMING\tTOK/S\tDURATION")
	fmt.Fprintln(tw, strings.Repeat("-", 88))
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%.0f%%\t%.2f\t%.2f\t%.2f\t%.1f\t%.1fs\n",
			s.Model, s.Runs, s.CompileRate*100, s.MeanScore, s.MeanPattern, s.MeanNaming, s.MeanTokSec, s.MeanDuration)
	}
	return tw.Flush()
}

func writeMarkdown(summaries []ModelSummary, w io.Writer) error {
	fmt.Fprintln(w, "| Model | Runs | Compile Rate | Mean Score | Pattern | Naming | Tok/s | Duration |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|---|")
	for _, s := range summaries {
		fmt.Fprintf(w, "| %s | %d | %.0f%% | %.2f | %.2f | %.2f | %.1f | %.1fs |\n",
			s.Model, s.Runs, s.CompileRate*100, s.MeanScore, s.MeanPattern, s.MeanNaming, s.MeanTokSec, s.MeanDuration)
	}
	return nil
}

func writeJSON(summaries []ModelSummary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
