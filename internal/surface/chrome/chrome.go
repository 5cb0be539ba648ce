// Package chrome implements the surface contract over a live Chrome session
// driven by chromedp. Elements are located by evaluating XPath in the page
// and tagging each match with a data-apl-uid attribute; subsequent actions
// target the tag, so handles survive unrelated DOM churn but go stale when
// their node is replaced.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/applypilot/internal/config"
	"github.com/xkilldash9x/applypilot/internal/surface"
)

// opTimeout bounds any single CDP round trip.
const opTimeout = 15 * time.Second

// pollInterval is the WaitFor re-probe cadence.
const pollInterval = 250 * time.Millisecond

// Surface is a live Chrome session implementing surface.Navigator.
type Surface struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	cfg         config.BrowserConfig
	log         *zap.Logger
	closed      atomic.Bool
}

// New launches a Chrome instance with the configured flags and returns the
// session surface. Close must be called to tear the browser down.
func New(parent context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Surface, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("start-maximized", true),
	)
	for _, arg := range cfg.Args {
		name, value, found := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if found {
			opts = append(opts, chromedp.Flag(name, value))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so launch failures surface here, not on the
	// first operation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	s := &Surface{
		ctx:         browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		cfg:         cfg,
		log:         logger.Named("chrome"),
	}
	s.log.Info("Browser started.", zap.Bool("headless", cfg.Headless))
	return s, nil
}

// Close tears down the browser. Safe to call more than once.
func (s *Surface) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.cancelCtx()
	s.cancelAlloc()
	s.log.Info("Browser closed.")
}

// Navigate loads the URL and waits for the document to become ready.
func (s *Surface) Navigate(ctx context.Context, url string) error {
	timeout := s.cfg.NavigationTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	s.log.Debug("Navigating.", zap.String("url", url))
	err := s.run(ctx, timeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// FindOne resolves an XPath against the document.
func (s *Surface) FindOne(ctx context.Context, xpath string) (surface.Element, error) {
	return s.findOne(ctx, "", xpath)
}

// FindAll resolves an XPath against the document.
func (s *Surface) FindAll(ctx context.Context, xpath string) ([]surface.Element, error) {
	return s.findAll(ctx, "", xpath)
}

// WaitFor polls for the XPath until it matches or the timeout elapses.
func (s *Surface) WaitFor(ctx context.Context, xpath string, timeout time.Duration) (surface.Element, error) {
	deadline := time.Now().Add(timeout)
	for {
		el, err := s.findOne(ctx, "", xpath)
		if err == nil {
			return el, nil
		}
		if !errors.Is(err, surface.ErrNotFound) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, surface.ErrTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// findScript evaluates an XPath under a scope element (or the document when
// the scope uid is empty), tags every match with data-apl-uid, and returns
// the uids. A missing scope yields null so the caller can report staleness.
const findScript = `(() => {
	const scopeUID = %s;
	let scope = document;
	if (scopeUID !== "") {
		scope = document.querySelector('[data-apl-uid="' + scopeUID + '"]');
		if (!scope) return null;
	}
	window.__aplSeq = window.__aplSeq || 0;
	const out = [];
	const res = document.evaluate(%s, scope, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	for (let i = 0; i < res.snapshotLength; i++) {
		const node = res.snapshotItem(i);
		if (!(node instanceof Element)) continue;
		if (!node.getAttribute('data-apl-uid')) {
			node.setAttribute('data-apl-uid', String(++window.__aplSeq));
		}
		out.push(node.getAttribute('data-apl-uid'));
	}
	return out;
})()`

func (s *Surface) findAll(ctx context.Context, scopeUID, xpath string) ([]surface.Element, error) {
	js := fmt.Sprintf(findScript, strconv.Quote(scopeUID), strconv.Quote(xpath))
	var uids []string
	if err := s.eval(ctx, js, &uids); err != nil {
		return nil, err
	}
	if uids == nil && scopeUID != "" {
		return nil, surface.ErrStale
	}
	out := make([]surface.Element, 0, len(uids))
	for _, uid := range uids {
		out = append(out, &element{s: s, uid: uid})
	}
	return out, nil
}

func (s *Surface) findOne(ctx context.Context, scopeUID, xpath string) (surface.Element, error) {
	els, err := s.findAll(ctx, scopeUID, xpath)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, surface.ErrNotFound
	}
	return els[0], nil
}

// eval runs a JS expression and decodes its value. Null results decode into
// nil slices/maps rather than erroring, so scripts signal absence with null.
func (s *Surface) eval(ctx context.Context, js string, out any) error {
	return s.run(ctx, opTimeout, chromedp.Evaluate(js, out,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true)
		}))
}

// run executes chromedp actions against the session, honoring both the
// caller's context and the per-op timeout, and maps failures onto the
// surface fault taxonomy.
func (s *Surface) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if s.closed.Load() {
		return surface.ErrStale
	}
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return mapError(err)
}

// mapError translates chromedp/CDP failures into the fault taxonomy the
// form core understands.
func mapError(err error) error {
	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", surface.ErrTimeout, err)
	case strings.Contains(msg, "could not find node"),
		strings.Contains(msg, "No node with given id"),
		strings.Contains(msg, "node with given id does not belong"):
		return fmt.Errorf("%w: %v", surface.ErrStale, err)
	case strings.Contains(msg, "element is not visible"),
		strings.Contains(msg, "not focusable"),
		strings.Contains(msg, "Element is not clickable"):
		return fmt.Errorf("%w: %v", surface.ErrNotInteractable, err)
	}
	return err
}
