package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/applypilot/internal/answer"
	"github.com/xkilldash9x/applypilot/internal/config"
	"github.com/xkilldash9x/applypilot/internal/form"
	"github.com/xkilldash9x/applypilot/internal/observability"
	"github.com/xkilldash9x/applypilot/internal/surface/statichtml"
)

var previewCmd = &cobra.Command{
	Use:   "preview <form.html>",
	Short: "Fill a saved application form offline and print the answers.",
	Long: `Preview runs the answer engine against a saved HTML snapshot of an
application form, without a browser or a login. Use it to check what the
configured profile would answer before letting a live session loose.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		log := observability.GetLogger()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open form snapshot: %w", err)
		}
		defer f.Close()

		surf, err := statichtml.New(f)
		if err != nil {
			return fmt.Errorf("failed to parse form snapshot: %w", err)
		}

		// The snapshot may be a bare form fragment rather than a full modal;
		// fall back to the document root.
		root, err := surf.FindOne(cmd.Context(), form.ModalXPath)
		if err != nil {
			root, err = surf.FindOne(cmd.Context(), `//body`)
			if err != nil {
				return fmt.Errorf("snapshot has no usable form container: %w", err)
			}
		}

		engine := answer.New(&cfg.Profile, nil, log)
		filler := form.NewFiller(engine, cfg.Documents.CVPath, cfg.Documents.CoverLetterPath, log)
		fills := filler.FillPage(cmd.Context(), root)

		if len(fills) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No fillable fields found.")
			return nil
		}
		for _, fill := range fills {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-45q %s\n", fill.Kind, fill.Label, fill.Value)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
