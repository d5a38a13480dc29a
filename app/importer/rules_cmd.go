package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chemtalent/jobchain/internal/taxonomy"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect classification rules",
	}

	var path string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Parse and validate a rules file (empty path checks the embedded rules)",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := taxonomy.Load(path)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, ind := range rules.Industries {
				nodes := 0
				for _, l := range ind.Layers {
					nodes += len(l.Nodes)
				}
				fmt.Fprintf(w, "%-12s %d keywords, %d layers, %d nodes\n", ind.ID, len(ind.Keywords), len(ind.Layers), nodes)
			}
			fmt.Fprintf(w, "urgency thresholds: high>=%d medium>=%d\n", rules.Urgency.High, rules.Urgency.Medium)
			return nil
		},
	}
	validate.Flags().StringVar(&path, "path", "", "Rules YAML file")

	cmd.AddCommand(validate)
	return cmd
}
