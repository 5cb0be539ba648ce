package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/applypilot/internal/config"
	"github.com/xkilldash9x/applypilot/internal/ledger"
	"github.com/xkilldash9x/applypilot/internal/observability"
)

var (
	summaryJSON bool
	summaryCSV  string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the weekly application summary from the ledger.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		if summaryCSV != "" {
			cfg.Ledger.Backend = "csv"
			cfg.Ledger.CSVPath = summaryCSV
		}

		rec, err := newRecorder(cmd.Context(), cfg, observability.GetLogger())
		if err != nil {
			return err
		}
		defer rec.Close()

		now := time.Now()
		apps, err := rec.Since(cmd.Context(), now.Add(-ledger.SummaryWindow))
		if err != nil {
			return fmt.Errorf("failed to read the ledger: %w", err)
		}

		s := ledger.Summarize(apps, now)
		if summaryJSON {
			out, err := s.JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}
		s.Render(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "emit the summary as JSON")
	summaryCmd.Flags().StringVar(&summaryCSV, "csv", "", "read this CSV ledger instead of the configured backend")
	rootCmd.AddCommand(summaryCmd)
}
