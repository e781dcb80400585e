package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/query"
)

var (
	queriesName string
	queriesFirm string
	queriesCity string
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Print the search queries built for a lead",
	RunE: func(cmd *cobra.Command, args []string) error {
		lead := model.Lead{Name: queriesName, Firm: queriesFirm, City: queriesCity}.Normalized()
		if lead.Name == "" {
			return eris.New("--name is required")
		}
		for _, q := range query.Build(lead.Name, lead.Firm, lead.City) {
			fmt.Fprintln(cmd.OutOrStdout(), q)
		}
		return nil
	},
}

func init() {
	queriesCmd.Flags().StringVar(&queriesName, "name", "", "lead name")
	queriesCmd.Flags().StringVar(&queriesFirm, "firm", "", "lead firm")
	queriesCmd.Flags().StringVar(&queriesCity, "city", "", "lead city")
	rootCmd.AddCommand(queriesCmd)
}
