package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/applypilot/internal/profile"
)

func testProfile() *profile.Profile {
	p := &profile.Profile{
		Personal: profile.Personal{
			FirstName: "Priya",
			LastName:  "Sharma",
			Email:     "priya@example.com",
			Phone:     "+91 9999999999",
			City:      "Bangalore",
			Country:   "India",
			LinkedIn:  "https://linkedin.com/in/priya",
			GitHub:    "https://github.com/priya",
			Portfolio: "https://priya.dev",
		},
		Background: profile.Background{
			YearsOfExperience: 3,
			NoticePeriodDays:  30,
			ExpectedSalary:    900000,
			HighestEducation:  "Bachelor",
			Currency:          "INR",
		},
		Eligibility: profile.Eligibility{
			LegallyAuthorized:  true,
			RequireSponsorship: false,
		},
	}
	p.Normalize()
	return p
}

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"First name*", "First name"},
		{"  Years   of\texperience ", "Years of experience"},
		{"**Email**", "Email"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanLabel(tt.in), "input %q", tt.in)
	}
}

func TestAnswerBoolean(t *testing.T) {
	e := New(testProfile(), nil, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"sponsorship follows eligibility", "Do you require visa sponsorship?", "No"},
		{"authorization follows eligibility", "Are you legally authorized to work in India?", "Yes"},
		{"eligible wording follows eligibility", "Are you eligible to work here?", "Yes"},
		{"unmatched defaults to yes", "Are you comfortable with night shifts?", "Yes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Answer(ctx, tt.label, KindBoolean))
		})
	}
}

func TestAnswerBooleanRulesWinOverHeuristics(t *testing.T) {
	p := testProfile()
	p.Answers.YesNo = []profile.YesNoRule{
		{Match: "relocate", Value: false},
		{Match: "sponsorship", Value: true},
	}
	p.Normalize()
	e := New(p, nil, nil)
	ctx := context.Background()

	assert.Equal(t, "No", e.Answer(ctx, "Are you willing to relocate?", KindBoolean))
	// The rule beats the eligibility heuristic, which would say "No".
	assert.Equal(t, "Yes", e.Answer(ctx, "Will you require sponsorship?", KindBoolean))
}

func TestAnswerNumeric(t *testing.T) {
	e := New(testProfile(), nil, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		label string
		want  string
	}{
		{"whole years render without decimal", "Years of experience", "3"},
		{"notice period", "What is your notice period in days?", "30"},
		{"salary", "Expected CTC", "900000"},
		{"unmatched numeric is zero", "How many patents do you hold?", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Answer(ctx, tt.label, KindNumeric))
		})
	}
}

func TestAnswerNumericRuleOverride(t *testing.T) {
	p := testProfile()
	p.Answers.Numeric = []profile.NumericRule{
		{Match: "python", Value: 5},
		{Match: "experience", Value: 1},
	}
	p.Normalize()
	e := New(p, nil, nil)

	// First matching rule wins over both later rules and fact heuristics.
	assert.Equal(t, "5", e.Answer(context.Background(), "Years of experience with Python", KindNumeric))
}

func TestAnswerFreeTextFacts(t *testing.T) {
	e := New(testProfile(), nil, nil)
	ctx := context.Background()

	tests := []struct {
		label string
		want  string
	}{
		{"First name", "Priya"},
		{"Last name", "Sharma"},
		{"Surname", "Sharma"},
		{"Email address", "priya@example.com"},
		{"Mobile phone number", "+91 9999999999"},
		{"Current city", "Bangalore"},
		{"LinkedIn profile", "https://linkedin.com/in/priya"},
		{"GitHub URL", "https://github.com/priya"},
		{"Portfolio website", "https://priya.dev"},
		{"Expected salary", "900000"},
		{"Notice period", "30"},
		{"Total experience", "3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Answer(ctx, tt.label, KindText), "label %q", tt.label)
	}
}

func TestAnswerFreeTextCoverLetterAndGeneric(t *testing.T) {
	e := New(testProfile(), nil, nil)
	ctx := context.Background()

	cover := e.Answer(ctx, "Cover letter", KindText)
	assert.Contains(t, cover, "passionate")

	generic := e.Answer(ctx, "Describe a challenge you overcame", KindText)
	require.NotEmpty(t, generic)
	assert.Contains(t, generic, "cybersecurity professional")
}

func TestNarrativeRuleMatching(t *testing.T) {
	p := testProfile()
	p.Answers.Narrative = []profile.NarrativeRule{
		{Match: "art", Answer: "I paint."},
		{Match: "why company", Answer: "Because of the mission."},
	}
	p.Normalize()
	e := New(p, nil, nil)
	ctx := context.Background()

	// "art" must match as a whole word; "start date" must not trigger it.
	assert.NotEqual(t, "I paint.", e.Answer(ctx, "What is your earliest start date?", KindText))
	assert.Equal(t, "I paint.", e.Answer(ctx, "Tell us about your art practice", KindText))

	// Every word of the key must appear, in any order and position.
	assert.Equal(t, "Because of the mission.", e.Answer(ctx, "Why do you want to join this company?", KindText))
	assert.NotEqual(t, "Because of the mission.", e.Answer(ctx, "Why this role?", KindText))
}

func TestNarrativeRulesBeatFactHeuristics(t *testing.T) {
	p := testProfile()
	p.Answers.Narrative = []profile.NarrativeRule{
		{Match: "salary", Answer: "Negotiable."},
	}
	p.Normalize()
	e := New(p, nil, nil)

	assert.Equal(t, "Negotiable.", e.Answer(context.Background(), "Expected salary", KindText))
}

type stubComposer struct {
	answer string
	err    error
	asked  []string
}

func (c *stubComposer) Compose(ctx context.Context, label string) (string, error) {
	c.asked = append(c.asked, label)
	return c.answer, c.err
}

func TestComposerIsLastResortBeforeGeneric(t *testing.T) {
	ctx := context.Background()

	c := &stubComposer{answer: "Drafted answer."}
	e := New(testProfile(), c, nil)

	got := e.Answer(ctx, "Describe your leadership style", KindText)
	assert.Equal(t, "Drafted answer.", got)
	require.Len(t, c.asked, 1)

	// Known facts never reach the composer.
	assert.Equal(t, "Priya", e.Answer(ctx, "First name", KindText))
	assert.Len(t, c.asked, 1)
}

func TestComposerFailureFallsBackToGeneric(t *testing.T) {
	c := &stubComposer{err: errors.New("quota exceeded")}
	e := New(testProfile(), c, nil)

	got := e.Answer(context.Background(), "Describe your leadership style", KindText)
	assert.Contains(t, got, "cybersecurity professional")
}

func TestBestOptionYesNo(t *testing.T) {
	p := testProfile()
	p.Answers.YesNo = []profile.YesNoRule{{Match: "relocate", Value: false}}
	p.Normalize()
	e := New(p, nil, nil)

	assert.Equal(t, "No", e.BestOption("Are you willing to relocate?", []string{"Yes", "No"}))
	assert.Equal(t, "Yes", e.BestOption("Do you have a laptop?", []string{"No", "Yes"}))
}

func TestBestOptionCategories(t *testing.T) {
	e := New(testProfile(), nil, nil)

	tests := []struct {
		name    string
		label   string
		options []string
		want    string
	}{
		{"education", "Highest education level", []string{"High School", "Bachelor's Degree", "Master's Degree"}, "Bachelor's Degree"},
		{"experience", "Years of experience", []string{"0-1 years", "3-5 years", "10+ years"}, "3-5 years"},
		{"country", "Country of residence", []string{"United States", "India", "Germany"}, "India"},
		{"currency", "Salary currency", []string{"USD", "INR", "EUR"}, "INR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.BestOption(tt.label, tt.options))
		})
	}
}

func TestBestOptionFailsOpenToFirst(t *testing.T) {
	e := New(testProfile(), nil, nil)

	assert.Equal(t, "Option A", e.BestOption("Favorite color?", []string{"Option A", "Option B"}))
	assert.Equal(t, "", e.BestOption("Anything", nil))
}
