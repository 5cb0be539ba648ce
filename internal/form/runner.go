package form

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/applypilot/internal/surface"
)

// MaxSteps hard-bounds one application attempt. The limit is a safety valve
// against a surface that advances forever, not a tuned constant.
const MaxSteps = 15

// Outcome is the terminal state of one application attempt. There is no
// partial-success state.
type Outcome int

const (
	OutcomeAbandoned Outcome = iota
	OutcomeSubmitted
)

func (o Outcome) String() string {
	if o == OutcomeSubmitted {
		return "submitted"
	}
	return "abandoned"
}

// Button text probed per step, in strict priority order: submit beats
// advance beats review. The advance probe deliberately excludes "Review";
// review-only buttons are matched solely by the dedicated review probe.
var (
	submitTexts  = []string{"Submit application", "Submit"}
	advanceTexts = []string{"Next", "Continue"}
	reviewTexts  = []string{"Review"}
)

// RunnerConfig tunes one runner. Zero values fall back to defaults.
type RunnerConfig struct {
	// ModalXPath locates the primary form container.
	ModalXPath string
	// WaitTimeout bounds the per-step wait for the container.
	WaitTimeout time.Duration
	// StepDelay is the settle pause at the top of each step.
	StepDelay time.Duration
}

func (c *RunnerConfig) applyDefaults() {
	if c.ModalXPath == "" {
		c.ModalXPath = ModalXPath
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = 10 * time.Second
	}
	if c.StepDelay < 0 {
		c.StepDelay = 0
	}
}

// Runner drives the multi-step wizard: per step it fills the visible fields,
// then attempts submit, advance, and review in that order. A runner serves
// exactly one application attempt; its state is never shared.
type Runner struct {
	surf   surface.Surface
	filler *Filler
	cfg    RunnerConfig
	log    *zap.Logger
}

// NewRunner builds a runner for a single attempt.
func NewRunner(surf surface.Surface, filler *Filler, cfg RunnerConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()
	return &Runner{surf: surf, filler: filler, cfg: cfg, log: logger.Named("runner")}
}

// Run drives the wizard until it is submitted, stuck, or out of steps. The
// returned error carries diagnostic detail for abandoned runs; the outcome
// is authoritative either way.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	for step := 0; step < MaxSteps; step++ {
		if err := sleepCtx(ctx, r.cfg.StepDelay); err != nil {
			return OutcomeAbandoned, err
		}
		r.log.Debug("Application step.", zap.Int("step", step+1))

		r.fillStep(ctx)

		clicked, err := r.clickFirst(ctx, submitTexts)
		if err != nil {
			return OutcomeAbandoned, fmt.Errorf("submit probe failed: %w", err)
		}
		if clicked {
			r.log.Info("Application submitted.", zap.Int("steps", step+1))
			return OutcomeSubmitted, nil
		}

		clicked, err = r.clickFirst(ctx, advanceTexts)
		if err != nil {
			return OutcomeAbandoned, fmt.Errorf("advance probe failed: %w", err)
		}
		if clicked {
			continue
		}

		clicked, err = r.clickFirst(ctx, reviewTexts)
		if err != nil {
			return OutcomeAbandoned, fmt.Errorf("review probe failed: %w", err)
		}
		if clicked {
			continue
		}

		// Nothing actionable: the run is stuck, no retries at this step.
		r.log.Warn("Could not advance the form; abandoning.", zap.Int("step", step+1))
		return OutcomeAbandoned, nil
	}

	r.log.Warn("Step budget exhausted; abandoning.", zap.Int("max_steps", MaxSteps))
	return OutcomeAbandoned, nil
}

// fillStep locates the form container and runs the dispatcher over it. A
// missing container aborts only this step's fill pass; the navigation probes
// still run so the step can recover on a transition page.
func (r *Runner) fillStep(ctx context.Context) {
	modal, err := r.surf.WaitFor(ctx, r.cfg.ModalXPath, r.cfg.WaitTimeout)
	if err != nil {
		r.log.Warn("Form surface missing; skipping fill pass.",
			zap.Error(errors.Join(surface.ErrSurfaceMissing, err)))
		return
	}
	fills := r.filler.FillPage(ctx, modal)
	r.log.Debug("Fill pass complete.", zap.Int("fills", len(fills)))
}

// clickFirst probes buttons by visible text and clicks the first one that is
// found, visible, and enabled. Benign faults on one probe fall through to
// the next; structural faults escalate to the step boundary.
func (r *Runner) clickFirst(ctx context.Context, texts []string) (bool, error) {
	for _, text := range texts {
		btn, err := r.surf.FindOne(ctx, fmt.Sprintf(`//button[contains(., '%s')]`, text))
		if err != nil {
			if surface.Benign(err) {
				continue
			}
			return false, err
		}
		if !btn.Visible(ctx) || !btn.Enabled(ctx) {
			continue
		}
		if err := btn.Click(ctx); err != nil {
			if surface.Benign(err) {
				continue
			}
			return false, err
		}
		r.log.Debug("Clicked navigation control.", zap.String("text", text))
		return true, nil
	}
	return false, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
