package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vuebench/vuebench/internal/config"
	"github.com/vuebench/vuebench/internal/report"
)

var flagFormat string

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-dir]",
		Short: "Summarize results from a benchmark run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var runDir string
			if len(args) == 1 {
				runDir = args[0]
			} else {
				cfg, err := config.Load(cfgFile)
				if err != nil {
					return err
				}
				runDir = filepath.Join(cfg.Results.Dir, "latest")
			}
			resolved, err := filepath.EvalSymlinks(runDir)
			if err == nil {
				runDir = resolved
			}
			return report.Generate(runDir, flagFormat, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format: table, markdown, json")
	return cmd
}
