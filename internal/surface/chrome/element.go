package chrome

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/applypilot/internal/surface"
)

// element is a handle to one tagged node. All reads go through small JS
// probes keyed on the uid; mutating actions use the uid as a CSS selector so
// chromedp can scroll, focus, and dispatch trusted input events.
type element struct {
	s   *Surface
	uid string
}

func (e *element) css() string {
	return fmt.Sprintf(`[data-apl-uid=%q]`, e.uid)
}

// probeScript locates the element and evaluates one expression over it.
// A vanished node yields null, which the decoders below turn into ErrStale.
const probeScript = `(() => {
	const el = document.querySelector('[data-apl-uid="' + %s + '"]');
	if (!el) return null;
	return { value: %s };
})()`

type probeResult struct {
	Value any `json:"value"`
}

func (e *element) probe(ctx context.Context, expr string, out *probeResult) error {
	js := fmt.Sprintf(probeScript, strconv.Quote(e.uid), expr)
	var res *probeResult
	if err := e.s.eval(ctx, js, &res); err != nil {
		return err
	}
	if res == nil {
		return surface.ErrStale
	}
	*out = *res
	return nil
}

func (e *element) probeString(ctx context.Context, expr string) (string, error) {
	var res probeResult
	if err := e.probe(ctx, expr, &res); err != nil {
		return "", err
	}
	s, _ := res.Value.(string)
	return s, nil
}

// probeBool collapses probe faults to false: a node that cannot be observed
// is treated as not visible, not enabled, not selected.
func (e *element) probeBool(ctx context.Context, expr string) bool {
	var res probeResult
	if err := e.probe(ctx, expr, &res); err != nil {
		return false
	}
	b, _ := res.Value.(bool)
	return b
}

// Visible reports whether the node takes up layout space.
func (e *element) Visible(ctx context.Context) bool {
	return e.probeBool(ctx,
		`!!(el.offsetWidth || el.offsetHeight || el.getClientRects().length)`)
}

// Enabled reports whether the control accepts input.
func (e *element) Enabled(ctx context.Context) bool {
	return e.probeBool(ctx, `!el.disabled`)
}

// Selected reports the checked/selected state of the control.
func (e *element) Selected(ctx context.Context) bool {
	return e.probeBool(ctx, `!!(el.checked || el.selected)`)
}

// Attr returns the attribute value, or the live property for value, which
// tracks user and script edits the attribute does not.
func (e *element) Attr(ctx context.Context, name string) (string, error) {
	if name == "value" {
		return e.probeString(ctx, `String(el.value ?? "")`)
	}
	return e.probeString(ctx,
		fmt.Sprintf(`String(el.getAttribute(%s) ?? "")`, strconv.Quote(name)))
}

// Text returns the rendered text content of the node, trimmed.
func (e *element) Text(ctx context.Context) (string, error) {
	return e.probeString(ctx, `(el.innerText ?? el.textContent ?? "").trim()`)
}

// FindOne resolves an XPath relative to this element.
func (e *element) FindOne(ctx context.Context, xpath string) (surface.Element, error) {
	return e.s.findOne(ctx, e.uid, xpath)
}

// FindAll resolves an XPath relative to this element.
func (e *element) FindAll(ctx context.Context, xpath string) ([]surface.Element, error) {
	return e.s.findAll(ctx, e.uid, xpath)
}

// Clear empties the control's value and notifies framework listeners.
// LinkedIn's forms are React controlled inputs, so a bare value assignment
// without an input event gets reverted on the next render.
func (e *element) Clear(ctx context.Context) error {
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector('[data-apl-uid="' + %s + '"]');
		if (!el) return null;
		el.value = "";
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return { value: true };
	})()`, strconv.Quote(e.uid))
	var res *probeResult
	if err := e.s.eval(ctx, js, &res); err != nil {
		return err
	}
	if res == nil {
		return surface.ErrStale
	}
	return nil
}

// Type sends the text as trusted key events after focusing the control.
func (e *element) Type(ctx context.Context, text string) error {
	return e.s.run(ctx, opTimeout,
		chromedp.ScrollIntoView(e.css(), chromedp.ByQuery),
		chromedp.Focus(e.css(), chromedp.ByQuery),
		chromedp.SendKeys(e.css(), text, chromedp.ByQuery),
	)
}

// Click scrolls the element into view and clicks it.
func (e *element) Click(ctx context.Context) error {
	return e.s.run(ctx, opTimeout,
		chromedp.ScrollIntoView(e.css(), chromedp.ByQuery),
		chromedp.Click(e.css(), chromedp.ByQuery),
	)
}

// SelectOption picks the option whose visible text matches, then fires the
// events a framework-bound select listens for.
func (e *element) SelectOption(ctx context.Context, text string) error {
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector('[data-apl-uid="' + %s + '"]');
		if (!el) return null;
		const want = %s;
		for (const opt of el.options) {
			if (opt.textContent.trim() === want) {
				el.value = opt.value;
				el.dispatchEvent(new Event('input', { bubbles: true }));
				el.dispatchEvent(new Event('change', { bubbles: true }));
				return { value: true };
			}
		}
		return { value: false };
	})()`, strconv.Quote(e.uid), strconv.Quote(text))
	var res *probeResult
	if err := e.s.eval(ctx, js, &res); err != nil {
		return err
	}
	if res == nil {
		return surface.ErrStale
	}
	if matched, _ := res.Value.(bool); !matched {
		return fmt.Errorf("%w: no option with text %q", surface.ErrNotFound, text)
	}
	return nil
}

// SetFile attaches a local file to an input[type=file].
func (e *element) SetFile(ctx context.Context, path string) error {
	return e.s.run(ctx, opTimeout,
		chromedp.SetUploadFiles(e.css(), []string{path}, chromedp.ByQuery))
}
