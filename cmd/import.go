package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/evidence-cli/internal/config"
	"github.com/sells-group/evidence-cli/internal/leadcsv"
	"github.com/sells-group/evidence-cli/internal/store"
)

var importCSVPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load leads from a CSV file into the leads table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importCSVPath == "" {
			return eris.New("--csv is required")
		}
		if err := cfg.Validate(config.ModeImport); err != nil {
			return err
		}

		leads, err := leadcsv.ReadFile(importCSVPath)
		if err != nil {
			return eris.Wrap(err, "import csv")
		}

		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		importer, ok := st.(store.LeadImporter)
		if !ok {
			return eris.Errorf("store driver %s does not support lead import", cfg.Store.Driver)
		}

		n, err := importer.ImportLeads(ctx, leads)
		if err != nil {
			return eris.Wrap(err, "import leads")
		}

		zap.L().Info("leads imported", zap.String("path", importCSVPath), zap.Int64("rows", n))
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d leads\n", n)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to a leads CSV (lead_id, evidence_id, lead_name, lead_firm, lead_city)")
	rootCmd.AddCommand(importCmd)
}
