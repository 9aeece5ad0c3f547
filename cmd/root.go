package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vuebench",
		Short: "Benchmark harness for LLM coding tasks on Vue + TypeScript projects",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "vuebench.yaml", "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReportCmd())
	return root
}
