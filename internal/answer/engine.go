// Package answer maps free-form screening-question text to concrete values
// using tiered heuristics over a structured profile. The engine is a pure
// function of (label, kind, options, profile); it never returns an error and
// never produces an empty answer for a required field.
package answer

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/applypilot/internal/profile"
)

// Kind is the semantic type of the field being answered.
type Kind int

const (
	// KindText covers short and long free-text inputs.
	KindText Kind = iota
	// KindBoolean covers yes/no questions.
	KindBoolean
	// KindNumeric covers number inputs.
	KindNumeric
)

// Composer optionally drafts an answer for a free-text question nothing in
// the profile could cover. Implementations must be safe to fail: the engine
// falls back to its canned paragraph on any error.
type Composer interface {
	Compose(ctx context.Context, label string) (string, error)
}

// Engine answers screening questions from the profile rule tables.
type Engine struct {
	profile  *profile.Profile
	composer Composer
	log      *zap.Logger
}

// New builds an engine over the given profile. composer may be nil.
func New(p *profile.Profile, composer Composer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{profile: p, composer: composer, log: logger.Named("answer")}
}

const coverLetterAnswer = "I am deeply passionate about cybersecurity and incident response. " +
	"My hands-on experience with SIEM tools and threat detection aligns " +
	"well with this role and I am eager to contribute to your SOC team."

const genericAnswer = "I am a cybersecurity professional with experience in SOC operations, " +
	"threat detection, and incident response. I am excited about this " +
	"opportunity and look forward to contributing to your team."

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// yesNoStarters flag a question as boolean when it opens with one of
	// these words.
	yesNoStarters = []string{"are ", "is ", "do ", "will ", "have ", "can ", "were ", "did "}
)

// CleanLabel strips asterisks and collapses runs of whitespace in a raw form
// label.
func CleanLabel(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.ReplaceAll(text, "*", ""), " "))
}

// Answer returns the best string answer for a question. It always returns
// something: unanswerable free-text questions get a generic professional
// summary, unanswerable booleans default to "Yes".
func (e *Engine) Answer(ctx context.Context, label string, kind Kind) string {
	q := strings.ToLower(CleanLabel(label))

	switch kind {
	case KindBoolean:
		if e.lookupYesNo(q) {
			return "Yes"
		}
		return "No"
	case KindNumeric:
		return formatNumber(e.lookupNumeric(q))
	default:
		return e.freeText(ctx, q)
	}
}

// BestOption picks from a concrete offered list rather than synthesizing a
// value. Given a non-empty list it always returns one of its members; the
// first option is the fail-open default so a required choice is never left
// empty.
func (e *Engine) BestOption(label string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	q := strings.ToLower(CleanLabel(label))

	if isYesNoQuestion(q) {
		want := "no"
		if e.lookupYesNo(q) {
			want = "yes"
		}
		for _, opt := range options {
			if strings.Contains(strings.ToLower(opt), want) {
				return opt
			}
		}
		return options[0]
	}

	if strings.Contains(q, "education") || strings.Contains(q, "degree") {
		if opt, ok := firstContaining(options, e.profile.Background.HighestEducation); ok {
			return opt
		}
	}
	if strings.Contains(q, "experience") {
		if opt, ok := firstContaining(options, formatNumber(e.profile.Background.YearsOfExperience)); ok {
			return opt
		}
	}
	if strings.Contains(q, "country") {
		if opt, ok := firstContaining(options, e.profile.Personal.Country); ok {
			return opt
		}
	}
	if strings.Contains(q, "currency") {
		if opt, ok := firstContaining(options, e.profile.Background.Currency); ok {
			return opt
		}
	}

	return options[0]
}

// firstContaining returns the first option whose text contains target,
// case-insensitive. An empty target never matches.
func firstContaining(options []string, target string) (string, bool) {
	t := strings.ToLower(target)
	if t == "" {
		return "", false
	}
	for _, opt := range options {
		if strings.Contains(strings.ToLower(opt), t) {
			return opt, true
		}
	}
	return "", false
}

func isYesNoQuestion(q string) bool {
	for _, s := range yesNoStarters {
		if strings.HasPrefix(q, s) {
			return true
		}
	}
	return false
}

// lookupYesNo resolves a boolean question: configured rules first, then the
// eligibility facts for sponsorship and authorization wording, then true.
// The permissive default is deliberate and matches the original behavior.
func (e *Engine) lookupYesNo(q string) bool {
	if v, ok := e.profile.LookupYesNo(q); ok {
		return v
	}
	if strings.Contains(q, "sponsorship") || strings.Contains(q, "visa") {
		return e.profile.Eligibility.RequireSponsorship
	}
	if strings.Contains(q, "authorized") || strings.Contains(q, "eligible") {
		return e.profile.Eligibility.LegallyAuthorized
	}
	return true
}

func (e *Engine) lookupNumeric(q string) float64 {
	if v, ok := e.profile.LookupNumeric(q); ok {
		return v
	}
	switch {
	case strings.Contains(q, "experience"):
		return e.profile.Background.YearsOfExperience
	case strings.Contains(q, "notice"):
		return e.profile.Background.NoticePeriodDays
	case strings.Contains(q, "salary"), strings.Contains(q, "ctc"), strings.Contains(q, "compensation"):
		return e.profile.Background.ExpectedSalary
	}
	return 0
}

// freeText walks the narrative rules, then a fixed priority list of
// well-known field categories, then the composer, and finally the generic
// summary. The chain is exhaustive by construction.
func (e *Engine) freeText(ctx context.Context, q string) string {
	for _, r := range e.profile.Answers.Narrative {
		if narrativeMatches(r.Match, q) {
			return strings.TrimSpace(r.Answer)
		}
	}

	p := e.profile.Personal
	b := e.profile.Background
	switch {
	case strings.Contains(q, "first name"):
		return p.FirstName
	case strings.Contains(q, "last name"), strings.Contains(q, "surname"):
		return p.LastName
	case strings.Contains(q, "email"):
		return p.Email
	case strings.Contains(q, "phone"), strings.Contains(q, "mobile"):
		return p.Phone
	case strings.Contains(q, "city"):
		return p.City
	case strings.Contains(q, "linkedin"):
		return p.LinkedIn
	case strings.Contains(q, "github"):
		return p.GitHub
	case strings.Contains(q, "portfolio"), strings.Contains(q, "website"):
		return p.Portfolio
	case strings.Contains(q, "salary"), strings.Contains(q, "ctc"), strings.Contains(q, "compensation"):
		return formatNumber(b.ExpectedSalary)
	case strings.Contains(q, "notice"):
		return formatNumber(b.NoticePeriodDays)
	case strings.Contains(q, "experience"):
		return formatNumber(b.YearsOfExperience)
	case strings.Contains(q, "cover letter"), strings.Contains(q, "motivation"):
		return coverLetterAnswer
	}

	if e.composer != nil {
		if drafted, err := e.composer.Compose(ctx, q); err == nil && strings.TrimSpace(drafted) != "" {
			return strings.TrimSpace(drafted)
		} else if err != nil {
			e.log.Debug("Composer failed; using generic answer.", zap.Error(err))
		}
	}
	return genericAnswer
}

// narrativeMatches reports whether every whitespace-delimited word of the
// rule key appears as a whole word in the question. Whole-word matching
// keeps a key like "art" from firing on "start".
func narrativeMatches(key, q string) bool {
	words := strings.Fields(key)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
		if !re.MatchString(q) {
			return false
		}
	}
	return true
}

// formatNumber renders a numeric answer without a trailing ".0" for whole
// values.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
