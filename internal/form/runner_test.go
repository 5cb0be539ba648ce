package form

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/applypilot/internal/answer"
	"github.com/xkilldash9x/applypilot/internal/surface"
)

// mockElement is a scripted button (or an inert container when text is "").
type mockElement struct {
	m       *mockSurface
	text    string
	visible bool
	enabled bool
}

func (e *mockElement) Visible(ctx context.Context) bool  { return e.visible }
func (e *mockElement) Enabled(ctx context.Context) bool  { return e.enabled }
func (e *mockElement) Selected(ctx context.Context) bool { return false }

func (e *mockElement) Attr(ctx context.Context, name string) (string, error) { return "", nil }
func (e *mockElement) Text(ctx context.Context) (string, error)             { return e.text, nil }

func (e *mockElement) FindOne(ctx context.Context, xpath string) (surface.Element, error) {
	return nil, surface.ErrNotFound
}
func (e *mockElement) FindAll(ctx context.Context, xpath string) ([]surface.Element, error) {
	return nil, nil
}

func (e *mockElement) Clear(ctx context.Context) error                      { return nil }
func (e *mockElement) Type(ctx context.Context, value string) error         { return nil }
func (e *mockElement) SelectOption(ctx context.Context, text string) error  { return nil }
func (e *mockElement) SetFile(ctx context.Context, path string) error       { return nil }

func (e *mockElement) Click(ctx context.Context) error {
	e.m.clicked = append(e.m.clicked, e.text)
	e.m.advancePage()
	return nil
}

// mockSurface serves a scripted sequence of pages, each holding a set of
// buttons. Any button click moves to the next page; the queries and clicks
// are recorded for assertion.
type mockSurface struct {
	pages       [][]*mockElement
	page        int
	queries     []string
	clicked     []string
	modalAbsent bool
}

func newMockSurface(pages ...[]*mockElement) *mockSurface {
	m := &mockSurface{pages: pages}
	for _, page := range pages {
		for _, el := range page {
			el.m = m
		}
	}
	return m
}

func btn(text string) *mockElement         { return &mockElement{text: text, visible: true, enabled: true} }
func disabledBtn(text string) *mockElement { return &mockElement{text: text, visible: true} }

func (m *mockSurface) advancePage() {
	if m.page+1 < len(m.pages) {
		m.page++
	}
}

func (m *mockSurface) FindOne(ctx context.Context, xpath string) (surface.Element, error) {
	m.queries = append(m.queries, xpath)
	probe := quotedText(xpath)
	for _, el := range m.pages[m.page] {
		if probe != "" && strings.Contains(el.text, probe) {
			return el, nil
		}
	}
	return nil, surface.ErrNotFound
}

func (m *mockSurface) FindAll(ctx context.Context, xpath string) ([]surface.Element, error) {
	return nil, nil
}

func (m *mockSurface) WaitFor(ctx context.Context, xpath string, timeout time.Duration) (surface.Element, error) {
	if m.modalAbsent {
		return nil, surface.ErrTimeout
	}
	return &mockElement{m: m, visible: true, enabled: true}, nil
}

// quotedText extracts the single-quoted literal out of a button probe XPath.
func quotedText(xpath string) string {
	open := strings.Index(xpath, "'")
	if open < 0 {
		return ""
	}
	rest := xpath[open+1:]
	end := strings.Index(rest, "'")
	if end < 0 {
		return ""
	}
	return rest[:end]
}

func newTestRunner(m *mockSurface) *Runner {
	filler := NewFiller(answer.New(fillerProfile(), nil, nil), "", "", nil)
	return NewRunner(m, filler, RunnerConfig{WaitTimeout: time.Millisecond}, nil)
}

func TestRunSubmitBeatsAdvance(t *testing.T) {
	m := newMockSurface([]*mockElement{btn("Submit application"), btn("Next")})

	outcome, err := newTestRunner(m).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSubmitted, outcome)
	assert.Equal(t, []string{"Submit application"}, m.clicked)
}

func TestRunAdvancesThenSubmits(t *testing.T) {
	m := newMockSurface(
		[]*mockElement{btn("Next")},
		[]*mockElement{btn("Continue")},
		[]*mockElement{btn("Submit application")},
	)

	outcome, err := newTestRunner(m).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSubmitted, outcome)
	assert.Equal(t, []string{"Next", "Continue", "Submit application"}, m.clicked)
}

func TestRunReviewOnlyMatchedByReviewProbe(t *testing.T) {
	m := newMockSurface(
		[]*mockElement{btn("Review")},
		[]*mockElement{btn("Submit application")},
	)

	outcome, err := newTestRunner(m).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSubmitted, outcome)
	assert.Equal(t, []string{"Review", "Submit application"}, m.clicked)

	// The advance probes ran and found nothing before review was tried.
	assert.Contains(t, m.queries, fmt.Sprintf(`//button[contains(., '%s')]`, "Next"))
	assert.Contains(t, m.queries, fmt.Sprintf(`//button[contains(., '%s')]`, "Continue"))
}

func TestRunStuckAbandonsImmediately(t *testing.T) {
	m := newMockSurface([]*mockElement{})

	outcome, err := newTestRunner(m).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAbandoned, outcome)
	assert.Empty(t, m.clicked)
	// One step's worth of probes: two submit, two advance, one review.
	assert.Len(t, m.queries, 5)
}

func TestRunStepBudgetBoundsTheAttempt(t *testing.T) {
	// The only page always offers "Next", so the wizard never terminates on
	// its own.
	m := newMockSurface([]*mockElement{btn("Next")})

	outcome, err := newTestRunner(m).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAbandoned, outcome)
	assert.Len(t, m.clicked, MaxSteps)
}

func TestRunSkipsDisabledButtons(t *testing.T) {
	m := newMockSurface(
		[]*mockElement{disabledBtn("Submit application"), btn("Next")},
		[]*mockElement{btn("Submit application")},
	)

	outcome, err := newTestRunner(m).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSubmitted, outcome)
	assert.Equal(t, []string{"Next", "Submit application"}, m.clicked)
}

func TestRunSurvivesMissingModal(t *testing.T) {
	m := newMockSurface([]*mockElement{btn("Submit application")})
	m.modalAbsent = true

	outcome, err := newTestRunner(m).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSubmitted, outcome)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newMockSurface([]*mockElement{btn("Next")})
	filler := NewFiller(answer.New(fillerProfile(), nil, nil), "", "", nil)
	r := NewRunner(m, filler, RunnerConfig{WaitTimeout: time.Millisecond, StepDelay: time.Millisecond}, nil)

	outcome, err := r.Run(ctx)
	assert.Equal(t, OutcomeAbandoned, outcome)
	assert.ErrorIs(t, err, context.Canceled)
}
