package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vuebench/vuebench/internal/config"
	"github.com/vuebench/vuebench/internal/fixture"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available models and fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Println("Models:")
			for _, m := range cfg.Models {
				fmt.Printf("  - %s\n", m)
			}
			fixtures, err := fixture.Discover(cfg.Fixtures.Dir)
			if err != nil {
				return err
			}
			fmt.Println("\nFixtures:")
			for _, f := range fixtures {
				extra := ""
				if f.IsAgent() {
					extra = fmt.Sprintf(" (agent, max %d steps)", f.Spec.MaxSteps)
				}
				fmt.Printf("  - %s/%s → %s%s\n", f.Category, f.Name, f.Spec.TargetFile, extra)
			}
			return nil
		},
	}
}
