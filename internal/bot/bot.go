// Package bot orchestrates a LinkedIn session: login, job search, card
// iteration, and one form run per Easy Apply listing. Outcomes go to the
// ledger; the form mechanics live in internal/form.
package bot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/applypilot/internal/config"
	"github.com/xkilldash9x/applypilot/internal/form"
	"github.com/xkilldash9x/applypilot/internal/ledger"
	"github.com/xkilldash9x/applypilot/internal/surface"
)

// Page-level XPath probes. Kept loose on purpose: the site ships several
// markup generations at once and cards can carry either class set.
const (
	xpathLoginEmail    = `//input[@id='username']`
	xpathLoginPassword = `//input[@id='password']`
	xpathLoginSubmit   = `//button[@type='submit']`

	xpathJobCards = `//ul[contains(@class, 'jobs-search__results-list')]/li | //li[contains(@class, 'scaffold-layout__list-item')]`

	xpathCardLink   = `.//a | .//*[contains(@class, 'job-card-list__title')]`
	xpathDetailPane = `//*[contains(@class, 'jobs-details') or contains(@class, 'job-view-layout') or contains(@class, 'jobs-unified-top-card')]`

	xpathNextPage = `//button[@aria-label='Next'] | //button[contains(@aria-label, 'next page')]`
)

// cardTitleProbes and cardCompanyProbes are tried in order; the first probe
// yielding non-empty text wins.
var (
	cardTitleProbes = []string{
		`.//h3`,
		`.//*[contains(@class, 'job-card-list__title')]`,
		`.//*[contains(@class, 'base-search-card__title')]`,
	}
	cardCompanyProbes = []string{
		`.//h4`,
		`.//*[contains(@class, 'job-card-container__company-name')]`,
		`.//*[contains(@class, 'base-search-card__subtitle')]`,
	}
)

// easyApplyProbes locate the apply button in the detail pane, most specific
// first.
var easyApplyProbes = []string{
	`//button[contains(@class, 'jobs-apply-button') and contains(., 'Easy Apply')]`,
	`//button[contains(@class, 'jobs-apply-button')]`,
	`//button[contains(., 'Easy Apply')]`,
}

// dismissProbes close an abandoned modal, including the discard confirmation
// dialog that pops when the form has content.
var dismissProbes = []string{
	`//button[@aria-label='Dismiss']`,
	`//button[@data-control-name='discard_application_confirm_btn']`,
	`//button[contains(., 'Discard')]`,
}

// Bot runs one application session against a live surface.
type Bot struct {
	surf    surface.Navigator
	filler  *form.Filler
	rec     ledger.Recorder
	cfg     *config.Config
	limiter *rate.Limiter
	log     *zap.Logger

	applied int
}

// New wires a session bot. The limiter paces application attempts at the
// configured interval so the session does not look like a scripted burst.
func New(surf surface.Navigator, filler *form.Filler, rec ledger.Recorder, cfg *config.Config, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.Search.ApplyInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Bot{
		surf:    surf,
		filler:  filler,
		rec:     rec,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		log:     logger.Named("bot"),
	}
}

// Applied returns the number of applications submitted this session.
func (b *Bot) Applied() int { return b.applied }

// Login signs in with the configured credentials. MFA and checkpoint pages
// are left for the operator; the wait below gives them time in headful mode.
func (b *Bot) Login(ctx context.Context) error {
	if err := b.surf.Navigate(ctx, loginURL); err != nil {
		return err
	}

	email, err := b.surf.WaitFor(ctx, xpathLoginEmail, b.waitTimeout())
	if err != nil {
		return fmt.Errorf("login page did not load: %w", err)
	}
	if err := email.Type(ctx, b.cfg.LinkedIn.Email); err != nil {
		return fmt.Errorf("failed to enter email: %w", err)
	}

	password, err := b.surf.FindOne(ctx, xpathLoginPassword)
	if err != nil {
		return fmt.Errorf("password field missing: %w", err)
	}
	if err := password.Type(ctx, b.cfg.LinkedIn.Password); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}

	submit, err := b.surf.FindOne(ctx, xpathLoginSubmit)
	if err != nil {
		return fmt.Errorf("login submit missing: %w", err)
	}
	if err := submit.Click(ctx); err != nil {
		return fmt.Errorf("failed to submit login: %w", err)
	}

	if err := sleep(ctx, 3*time.Second); err != nil {
		return err
	}
	b.log.Info("Logged in.")
	return nil
}

// Run iterates the configured titles and locations until the session cap is
// reached or the search space is exhausted.
func (b *Bot) Run(ctx context.Context) error {
	for _, title := range b.cfg.Search.JobTitles {
		for _, location := range b.cfg.Search.Locations {
			if b.capReached() {
				b.log.Info("Session application cap reached.",
					zap.Int("max", b.cfg.Search.MaxApplications))
				return nil
			}
			b.log.Info("Searching.",
				zap.String("title", title), zap.String("location", location))
			if err := b.searchAndApply(ctx, title, location); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Bot) capReached() bool {
	return b.applied >= b.cfg.Search.MaxApplications
}

func (b *Bot) waitTimeout() time.Duration {
	if t := b.cfg.Browser.WaitTimeout; t > 0 {
		return t
	}
	return 10 * time.Second
}

// searchAndApply pages through one search's results. Errors from individual
// applications are contained; only context cancellation escapes.
func (b *Bot) searchAndApply(ctx context.Context, title, location string) error {
	if err := b.surf.Navigate(ctx, BuildSearchURL(title, location, b.cfg.Search)); err != nil {
		b.log.Warn("Search navigation failed; skipping query.",
			zap.String("title", title), zap.Error(err))
		return ctx.Err()
	}
	if err := sleep(ctx, 3*time.Second); err != nil {
		return err
	}

	for page := 1; !b.capReached(); page++ {
		b.log.Info("Processing results page.", zap.Int("page", page))

		if _, err := b.surf.WaitFor(ctx, xpathJobCards, b.waitTimeout()); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Warn("No job cards found on the page.")
			break
		}

		cards, err := b.surf.FindAll(ctx, xpathJobCards)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Warn("Failed to enumerate job cards.", zap.Error(err))
			break
		}

		for _, card := range cards {
			if b.capReached() {
				break
			}
			jobTitle, company := b.extractCardInfo(ctx, card)
			if jobTitle == "" {
				continue
			}
			if err := b.limiter.Wait(ctx); err != nil {
				return err
			}
			b.log.Info("Attempting application.",
				zap.String("job", jobTitle), zap.String("company", company))
			b.applyToJob(ctx, card, jobTitle, company, location)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		if !b.nextPage(ctx) {
			b.log.Info("No more pages.",
				zap.String("title", title), zap.String("location", location))
			break
		}
		if err := sleep(ctx, 2*time.Second); err != nil {
			return err
		}
	}
	return nil
}

// extractCardInfo pulls (title, company) off a result card. Missing pieces
// come back empty; the caller skips cards without a title.
func (b *Bot) extractCardInfo(ctx context.Context, card surface.Element) (string, string) {
	return firstText(ctx, card, cardTitleProbes), firstText(ctx, card, cardCompanyProbes)
}

func firstText(ctx context.Context, scope surface.Element, probes []string) string {
	for _, xpath := range probes {
		el, err := scope.FindOne(ctx, xpath)
		if err != nil {
			continue
		}
		if text, err := el.Text(ctx); err == nil && text != "" {
			return text
		}
	}
	return ""
}

// applyToJob opens one listing, runs the form, and records the outcome. All
// failures are per-job: the modal is dismissed and the loop moves on.
func (b *Bot) applyToJob(ctx context.Context, card surface.Element, jobTitle, company, location string) {
	if !b.openListing(ctx, card, jobTitle, company) {
		return
	}

	runner := form.NewRunner(b.surf, b.filler, form.RunnerConfig{
		WaitTimeout: b.waitTimeout(),
		StepDelay:   b.cfg.Browser.StepDelay,
	}, b.log)

	outcome, err := runner.Run(ctx)
	if outcome == form.OutcomeSubmitted {
		b.applied++
		b.record(ctx, jobTitle, company, location, ledger.StatusApplied, "")
		b.log.Info("Applied.",
			zap.Int("count", b.applied),
			zap.String("job", jobTitle), zap.String("company", company))
		return
	}

	notes := "Could not complete form"
	if err != nil {
		notes = err.Error()
	}
	b.closeModal(ctx)
	b.record(ctx, jobTitle, company, location, ledger.StatusFailed, notes)
}

// openListing clicks the card, waits for the detail pane, and opens the Easy
// Apply modal. Returns false when the listing cannot be applied to.
func (b *Bot) openListing(ctx context.Context, card surface.Element, jobTitle, company string) bool {
	link, err := card.FindOne(ctx, xpathCardLink)
	if err != nil {
		err = card.Click(ctx)
	} else {
		err = link.Click(ctx)
	}
	if err != nil {
		b.log.Debug("Could not open job card.", zap.String("job", jobTitle), zap.Error(err))
		return false
	}

	if _, err := b.surf.WaitFor(ctx, xpathDetailPane, b.waitTimeout()); err != nil {
		b.log.Info("Job detail pane did not load.",
			zap.String("job", jobTitle), zap.String("company", company))
		return false
	}

	btn := b.findEasyApplyButton(ctx)
	if btn == nil {
		b.log.Info("No Easy Apply button.",
			zap.String("job", jobTitle), zap.String("company", company))
		return false
	}
	if err := btn.Click(ctx); err != nil {
		b.log.Debug("Easy Apply click failed.", zap.String("job", jobTitle), zap.Error(err))
		return false
	}

	if _, err := b.surf.WaitFor(ctx, form.ModalXPath, b.waitTimeout()); err != nil {
		b.log.Info("Easy Apply modal did not open.",
			zap.String("job", jobTitle), zap.String("company", company))
		return false
	}
	return true
}

// findEasyApplyButton probes the detail pane for a usable apply button.
func (b *Bot) findEasyApplyButton(ctx context.Context) surface.Element {
	for _, xpath := range easyApplyProbes {
		btn, err := b.surf.WaitFor(ctx, xpath, 5*time.Second)
		if err != nil {
			continue
		}
		if btn.Visible(ctx) && btn.Enabled(ctx) {
			return btn
		}
	}
	return nil
}

// closeModal dismisses an abandoned modal, confirming the discard dialog if
// it appears. Best effort only.
func (b *Bot) closeModal(ctx context.Context) {
	for _, xpath := range dismissProbes {
		btn, err := b.surf.FindOne(ctx, xpath)
		if err != nil {
			continue
		}
		if err := btn.Click(ctx); err != nil {
			continue
		}
		_ = sleep(ctx, time.Second)
	}
}

// nextPage clicks the pagination control. Returns false when the last page
// has been reached.
func (b *Bot) nextPage(ctx context.Context) bool {
	btn, err := b.surf.FindOne(ctx, xpathNextPage)
	if err != nil {
		return false
	}
	if !btn.Enabled(ctx) {
		return false
	}
	return btn.Click(ctx) == nil
}

// record writes one ledger row. Ledger faults never abort the session.
func (b *Bot) record(ctx context.Context, jobTitle, company, location, status, notes string) {
	err := b.rec.Record(ctx, ledger.Application{
		JobTitle: jobTitle,
		Company:  company,
		Status:   status,
		Notes:    notes,
		Details:  map[string]string{"location": location},
	})
	if err != nil {
		b.log.Error("Failed to record application.",
			zap.String("job", jobTitle), zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
