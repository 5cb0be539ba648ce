package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/applypilot/internal/answer"
	"github.com/xkilldash9x/applypilot/internal/bot"
	"github.com/xkilldash9x/applypilot/internal/config"
	"github.com/xkilldash9x/applypilot/internal/form"
	"github.com/xkilldash9x/applypilot/internal/ledger"
	"github.com/xkilldash9x/applypilot/internal/observability"
	"github.com/xkilldash9x/applypilot/internal/surface/chrome"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Log in and apply to matching Easy Apply listings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		if cfg.PlaceholderCredentials() {
			return fmt.Errorf("linkedin credentials are not configured; set linkedin.email and linkedin.password (or APPLYPILOT_LINKEDIN_EMAIL / APPLYPILOT_LINKEDIN_PASSWORD)")
		}
		if len(cfg.Search.JobTitles) == 0 {
			return fmt.Errorf("search.job_titles is empty; nothing to search for")
		}
		if dryRun {
			// A dry run logs in and searches but never enters an application.
			cfg.Search.MaxApplications = 0
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runSession(ctx, cfg)
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log in and search without applying")
	rootCmd.AddCommand(runCmd)
}

func runSession(ctx context.Context, cfg *config.Config) error {
	log := observability.GetLogger()

	rec, err := newRecorder(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rec.Close()

	var composer answer.Composer
	if cfg.Assistant.Enabled {
		composer, err = answer.NewGeminiComposer(ctx, cfg.Assistant.APIKey, cfg.Assistant.Model)
		if err != nil {
			return fmt.Errorf("failed to start assistant: %w", err)
		}
	}

	engine := answer.New(&cfg.Profile, composer, log)
	filler := form.NewFiller(engine, cfg.Documents.CVPath, cfg.Documents.CoverLetterPath, log)

	surf, err := chrome.New(ctx, cfg.Browser, log)
	if err != nil {
		return err
	}
	defer surf.Close()

	b := bot.New(surf, filler, rec, cfg, log)
	if err := b.Login(ctx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := b.Run(ctx); err != nil {
		return err
	}
	log.Info("Session complete.", zap.Int("applied", b.Applied()))

	now := time.Now()
	apps, err := rec.Since(ctx, now.Add(-ledger.SummaryWindow))
	if err != nil {
		log.Warn("Could not read back the ledger for the summary.", zap.Error(err))
		return nil
	}
	ledger.Summarize(apps, now).Render(os.Stdout)
	return nil
}

// newRecorder builds the configured ledger backend.
func newRecorder(ctx context.Context, cfg *config.Config, log *zap.Logger) (ledger.Recorder, error) {
	switch cfg.Ledger.Backend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Ledger.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to the ledger database: %w", err)
		}
		return ledger.NewPostgresRecorder(ctx, pool, log)
	default:
		return ledger.NewCSVRecorder(cfg.Ledger.CSVPath, log), nil
	}
}
