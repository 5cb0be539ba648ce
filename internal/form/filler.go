package form

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/xkilldash9x/applypilot/internal/answer"
	"github.com/xkilldash9x/applypilot/internal/surface"
)

// consentKeywords mark the only checkboxes the dispatcher will ever check.
var consentKeywords = []string{"agree", "consent", "acknowledge", "confirm"}

// placeholderOptionValues are select values that mean "nothing chosen yet".
var placeholderOptionValues = map[string]bool{"": true, "Select an option": true}

// Filler applies the per-kind fill policy to every field visible on the
// current page. It performs no navigation; its fills are its only externally
// observable effect. Faults from individual fields are swallowed and logged
// so one broken field never aborts the page pass.
type Filler struct {
	engine     *answer.Engine
	resumePath string
	coverPath  string
	log        *zap.Logger
}

// NewFiller builds a dispatcher over the answer engine and the configured
// document paths.
func NewFiller(engine *answer.Engine, resumePath, coverPath string, logger *zap.Logger) *Filler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filler{
		engine:     engine,
		resumePath: resumePath,
		coverPath:  coverPath,
		log:        logger.Named("filler"),
	}
}

// FillPage fills every supported field under root and reports the fills it
// performed.
func (f *Filler) FillPage(ctx context.Context, root surface.Element) []Fill {
	var fills []Fill
	fills = append(fills, f.fillTextFields(ctx, root, xpathTextInputs, KindShortText)...)
	fills = append(fills, f.fillSelects(ctx, root)...)
	fills = append(fills, f.fillRadioGroups(ctx, root)...)
	fills = append(fills, f.fillCheckboxes(ctx, root)...)
	fills = append(fills, f.fillTextFields(ctx, root, xpathTextareas, KindLongText)...)
	fills = append(fills, f.uploadFiles(ctx, root)...)
	return fills
}

// fillTextFields handles short and long text controls with an idempotent
// policy: a field that already holds a non-empty value is never touched.
func (f *Filler) fillTextFields(ctx context.Context, root surface.Element, xpath string, kind FieldKind) []Fill {
	elements, err := root.FindAll(ctx, xpath)
	if err != nil {
		f.log.Warn("Failed to enumerate text fields.", zap.Stringer("kind", kind), zap.Error(err))
		return nil
	}

	var fills []Fill
	for _, el := range elements {
		if !el.Visible(ctx) || !el.Enabled(ctx) {
			continue
		}
		current, err := el.Attr(ctx, "value")
		if err != nil {
			f.skipField(kind, err)
			continue
		}
		if strings.TrimSpace(current) != "" {
			continue // already filled
		}

		label, err := ResolveLabel(ctx, el, root)
		if err != nil {
			f.skipField(kind, err)
			continue
		}
		value := f.engine.Answer(ctx, label, answer.KindText)
		if value == "" {
			continue
		}
		if err := el.Clear(ctx); err != nil {
			f.skipField(kind, err)
			continue
		}
		if err := el.Type(ctx, value); err != nil {
			f.skipField(kind, err)
			continue
		}
		f.log.Debug("Filled text field.", zap.String("label", label), zap.String("value", value))
		fills = append(fills, Fill{Kind: kind, Label: label, Value: value})
	}
	return fills
}

func (f *Filler) fillSelects(ctx context.Context, root surface.Element) []Fill {
	selects, err := root.FindAll(ctx, xpathSelects)
	if err != nil {
		f.log.Warn("Failed to enumerate selects.", zap.Error(err))
		return nil
	}

	var fills []Fill
	for _, sel := range selects {
		if !sel.Visible(ctx) || !sel.Enabled(ctx) {
			continue
		}
		label, err := ResolveLabel(ctx, sel, root)
		if err != nil {
			f.skipField(KindChoiceList, err)
			continue
		}

		options, err := f.eligibleOptions(ctx, sel)
		if err != nil {
			f.skipField(KindChoiceList, err)
			continue
		}
		if len(options) == 0 {
			continue
		}

		best := f.engine.BestOption(label, options)
		if err := sel.SelectOption(ctx, best); err != nil {
			f.skipField(KindChoiceList, err)
			continue
		}
		f.log.Debug("Selected option.", zap.String("label", label), zap.String("value", best))
		fills = append(fills, Fill{Kind: KindChoiceList, Label: label, Value: best})
	}
	return fills
}

// eligibleOptions returns the visible texts of a select's options, excluding
// blank entries and placeholder values.
func (f *Filler) eligibleOptions(ctx context.Context, sel surface.Element) ([]string, error) {
	elements, err := sel.FindAll(ctx, xpathOptions)
	if err != nil {
		return nil, err
	}
	var options []string
	for _, opt := range elements {
		text, err := opt.Text(ctx)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		value, err := opt.Attr(ctx, "value")
		if err != nil {
			return nil, err
		}
		if placeholderOptionValues[value] {
			continue
		}
		options = append(options, text)
	}
	return options, nil
}

// fillRadioGroups clusters radios by name and answers each group as one
// boolean question. A group with any member already selected is skipped; a
// group where no member's adjacent text overlaps the desired answer is left
// untouched rather than forced.
func (f *Filler) fillRadioGroups(ctx context.Context, root surface.Element) []Fill {
	radios, err := root.FindAll(ctx, xpathRadios)
	if err != nil {
		f.log.Warn("Failed to enumerate radios.", zap.Error(err))
		return nil
	}

	// Group by name, preserving first-seen order.
	var order []string
	groups := make(map[string][]surface.Element)
	for _, radio := range radios {
		name, err := radio.Attr(ctx, "name")
		if err != nil {
			f.skipField(KindRadioGroup, err)
			continue
		}
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], radio)
	}

	var fills []Fill
	for _, name := range order {
		members := groups[name]
		if anySelected(ctx, members) {
			continue
		}

		label, err := ResolveLabel(ctx, members[0], root)
		if err != nil {
			f.skipField(KindRadioGroup, err)
			continue
		}
		want := f.engine.Answer(ctx, label, answer.KindBoolean)

		for _, member := range members {
			text, err := siblingLabelText(ctx, member)
			if err != nil {
				f.skipField(KindRadioGroup, err)
				continue
			}
			if !textsOverlap(text, want) {
				continue
			}
			if err := member.Click(ctx); err != nil {
				if surface.Benign(err) {
					continue
				}
				f.skipField(KindRadioGroup, err)
				break
			}
			f.log.Debug("Selected radio.", zap.String("label", label), zap.String("value", text))
			fills = append(fills, Fill{Kind: KindRadioGroup, Label: label, Value: text})
			break
		}
	}
	return fills
}

func anySelected(ctx context.Context, members []surface.Element) bool {
	for _, m := range members {
		if m.Selected(ctx) {
			return true
		}
	}
	return false
}

// siblingLabelText returns the adjacent label text of one radio member, or
// "" when it has none.
func siblingLabelText(ctx context.Context, el surface.Element) (string, error) {
	sib, err := el.FindOne(ctx, xpathFollowingLabel)
	if err != nil {
		if errors.Is(err, surface.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return sib.Text(ctx)
}

// textsOverlap reports an either-direction, case-insensitive substring
// overlap between a radio's own text and the desired answer. Empty text
// never overlaps.
func textsOverlap(text, want string) bool {
	a := strings.ToLower(strings.TrimSpace(text))
	b := strings.ToLower(strings.TrimSpace(want))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// fillCheckboxes only ever affirmatively checks consent-style checkboxes.
// Everything else, including already-checked boxes, is left exactly as-is.
func (f *Filler) fillCheckboxes(ctx context.Context, root surface.Element) []Fill {
	boxes, err := root.FindAll(ctx, xpathCheckboxes)
	if err != nil {
		f.log.Warn("Failed to enumerate checkboxes.", zap.Error(err))
		return nil
	}

	var fills []Fill
	for _, box := range boxes {
		if !box.Visible(ctx) {
			continue
		}
		label, err := ResolveLabel(ctx, box, root)
		if err != nil {
			f.skipField(KindCheckbox, err)
			continue
		}
		if !containsAny(strings.ToLower(label), consentKeywords) {
			continue
		}
		if box.Selected(ctx) {
			continue
		}
		if err := box.Click(ctx); err != nil {
			f.skipField(KindCheckbox, err)
			continue
		}
		f.log.Debug("Checked consent checkbox.", zap.String("label", label))
		fills = append(fills, Fill{Kind: KindCheckbox, Label: label, Value: "checked"})
	}
	return fills
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// uploadFiles submits the configured cover letter or résumé path to each
// file input. A missing file is a diagnostic, never a fatal error.
func (f *Filler) uploadFiles(ctx context.Context, root surface.Element) []Fill {
	inputs, err := root.FindAll(ctx, xpathFileInputs)
	if err != nil {
		f.log.Warn("Failed to enumerate file inputs.", zap.Error(err))
		return nil
	}

	var fills []Fill
	for _, input := range inputs {
		label, err := ResolveLabel(ctx, input, root)
		if err != nil {
			f.skipField(KindFile, err)
			continue
		}

		path := f.resumePath
		if strings.Contains(strings.ToLower(label), "cover") {
			path = f.coverPath
		}
		abs, ok := resolveDocumentPath(path)
		if !ok {
			f.log.Warn("Upload skipped; file not found.",
				zap.String("label", label), zap.String("path", path))
			continue
		}
		if err := input.SetFile(ctx, abs); err != nil {
			f.skipField(KindFile, err)
			continue
		}
		f.log.Info("Uploaded file.", zap.String("label", label), zap.String("path", abs))
		fills = append(fills, Fill{Kind: KindFile, Label: label, Value: abs})
	}
	return fills
}

// resolveDocumentPath expands and absolutizes a configured document path and
// verifies the file exists on disk.
func resolveDocumentPath(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", false
	}
	if _, err := os.Stat(abs); err != nil {
		return "", false
	}
	return abs, true
}

// skipField records a per-field fault and moves on. Benign faults are
// routine; anything else is still contained to the field but logged louder.
func (f *Filler) skipField(kind FieldKind, err error) {
	if surface.Benign(err) {
		f.log.Debug("Skipping field.", zap.Stringer("kind", kind), zap.Error(err))
		return
	}
	f.log.Warn("Skipping field after structural fault.", zap.Stringer("kind", kind), zap.Error(err))
}
