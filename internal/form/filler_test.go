package form

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/applypilot/internal/answer"
	"github.com/xkilldash9x/applypilot/internal/profile"
	"github.com/xkilldash9x/applypilot/internal/surface/statichtml"
)

func fillerProfile() *profile.Profile {
	p := &profile.Profile{
		Personal: profile.Personal{
			FirstName: "Priya",
			LastName:  "Sharma",
			Email:     "priya@example.com",
			Phone:     "+91 9999999999",
		},
		Background: profile.Background{
			YearsOfExperience: 3,
			NoticePeriodDays:  30,
			ExpectedSalary:    900000,
			HighestEducation:  "Bachelor",
			Currency:          "INR",
		},
		Eligibility: profile.Eligibility{LegallyAuthorized: true},
	}
	p.Normalize()
	return p
}

func newTestFiller(resumePath, coverPath string) *Filler {
	engine := answer.New(fillerProfile(), nil, nil)
	return NewFiller(engine, resumePath, coverPath, nil)
}

func fillDoc(t *testing.T, filler *Filler, doc string) (*statichtml.Surface, []Fill) {
	t.Helper()
	s, err := statichtml.New(strings.NewReader(doc))
	require.NoError(t, err)
	root, err := s.FindOne(context.Background(), `//body`)
	require.NoError(t, err)
	return s, filler.FillPage(context.Background(), root)
}

func attrOf(t *testing.T, s *statichtml.Surface, xpath, name string) string {
	t.Helper()
	el, err := s.FindOne(context.Background(), xpath)
	require.NoError(t, err)
	v, err := el.Attr(context.Background(), name)
	require.NoError(t, err)
	return v
}

func TestFillTextFields(t *testing.T) {
	s, fills := fillDoc(t, newTestFiller("", ""), `<form>
		<input type="text" aria-label="First name"/>
		<input type="email" aria-label="Email address"/>
		<input type="tel" placeholder="Phone number"/>
	</form>`)

	assert.Equal(t, "Priya", attrOf(t, s, `//input[@type='text']`, "value"))
	assert.Equal(t, "priya@example.com", attrOf(t, s, `//input[@type='email']`, "value"))
	assert.Equal(t, "+91 9999999999", attrOf(t, s, `//input[@type='tel']`, "value"))
	assert.Len(t, fills, 3)
}

func TestFillTextFieldsIsIdempotent(t *testing.T) {
	s, fills := fillDoc(t, newTestFiller("", ""), `<form>
		<input type="text" aria-label="First name" value="Already here"/>
	</form>`)

	assert.Equal(t, "Already here", attrOf(t, s, `//input`, "value"))
	assert.Empty(t, fills)
}

func TestFillTextFieldsSkipsHiddenAndDisabled(t *testing.T) {
	s, fills := fillDoc(t, newTestFiller("", ""), `<form>
		<input type="text" aria-label="First name" disabled/>
		<input type="text" aria-label="Last name" style="display:none"/>
	</form>`)

	assert.Empty(t, fills)
	assert.Equal(t, "", attrOf(t, s, `//input[@aria-label='First name']`, "value"))
}

func TestFillTextarea(t *testing.T) {
	_, fills := fillDoc(t, newTestFiller("", ""), `<form>
		<label for="cl">Cover letter</label>
		<textarea id="cl"></textarea>
	</form>`)

	require.Len(t, fills, 1)
	assert.Equal(t, KindLongText, fills[0].Kind)
	assert.Contains(t, fills[0].Value, "passionate")
}

func TestFillSelect(t *testing.T) {
	s, fills := fillDoc(t, newTestFiller("", ""), `<form>
		<label for="deg">Do you have a Bachelor's degree?</label>
		<select id="deg">
			<option value="">Select an option</option>
			<option value="y">Yes</option>
			<option value="n">No</option>
		</select>
	</form>`)

	require.Len(t, fills, 1)
	assert.Equal(t, KindChoiceList, fills[0].Kind)
	assert.Equal(t, "Yes", fills[0].Value)
	assert.Equal(t, "y", attrOf(t, s, `//select`, "value"))
}

func TestFillSelectIgnoresPlaceholderOnlySelects(t *testing.T) {
	_, fills := fillDoc(t, newTestFiller("", ""), `<form>
		<label for="s">Pick one</label>
		<select id="s"><option value="">Select an option</option></select>
	</form>`)

	assert.Empty(t, fills)
}

func TestFillRadioGroup(t *testing.T) {
	s, fills := fillDoc(t, newTestFiller("", ""), `<form>
		<label for="auth-yes">Are you legally authorized to work in India?</label>
		<div>
			<input type="radio" name="auth" id="auth-yes" value="yes"/><label>Yes</label>
			<input type="radio" name="auth" id="auth-no" value="no"/><label>No</label>
		</div>
	</form>`)

	require.Len(t, fills, 1)
	assert.Equal(t, KindRadioGroup, fills[0].Kind)
	assert.Equal(t, "Yes", fills[0].Value)

	yes, err := s.FindOne(context.Background(), `//input[@id='auth-yes']`)
	require.NoError(t, err)
	assert.True(t, yes.Selected(context.Background()))
}

func TestFillRadioGroupSkipsAlreadyAnswered(t *testing.T) {
	s, fills := fillDoc(t, newTestFiller("", ""), `<form>
		<label for="r1">Are you legally authorized to work?</label>
		<input type="radio" name="g" id="r1" checked/><label>No</label>
		<input type="radio" name="g" id="r2"/><label>Yes</label>
	</form>`)

	assert.Empty(t, fills)
	// The pre-existing choice is preserved even though the engine disagrees.
	r1, err := s.FindOne(context.Background(), `//input[@id='r1']`)
	require.NoError(t, err)
	assert.True(t, r1.Selected(context.Background()))
}

func TestFillRadioGroupNeverForcesWithoutOverlap(t *testing.T) {
	_, fills := fillDoc(t, newTestFiller("", ""), `<form>
		<label for="r1">Are you legally authorized to work?</label>
		<input type="radio" name="g" id="r1"/><label>Strongly agree</label>
		<input type="radio" name="g" id="r2"/><label>Strongly disagree</label>
	</form>`)

	assert.Empty(t, fills)
}

func TestConsentCheckboxes(t *testing.T) {
	s, fills := fillDoc(t, newTestFiller("", ""), `<form>
		<label>I agree to the terms <input type="checkbox" id="terms"/></label>
		<label>Subscribe to the newsletter <input type="checkbox" id="news"/></label>
	</form>`)

	require.Len(t, fills, 1)
	assert.Equal(t, KindCheckbox, fills[0].Kind)

	terms, err := s.FindOne(context.Background(), `//input[@id='terms']`)
	require.NoError(t, err)
	news, err := s.FindOne(context.Background(), `//input[@id='news']`)
	require.NoError(t, err)
	assert.True(t, terms.Selected(context.Background()))
	assert.False(t, news.Selected(context.Background()))
}

func TestConsentCheckboxNeverUnchecks(t *testing.T) {
	s, fills := fillDoc(t, newTestFiller("", ""), `<form>
		<label>I consent to processing <input type="checkbox" checked/></label>
	</form>`)

	assert.Empty(t, fills)
	box, err := s.FindOne(context.Background(), `//input`)
	require.NoError(t, err)
	assert.True(t, box.Selected(context.Background()))
}

func TestUploadFiles(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "cv.pdf")
	cover := filepath.Join(dir, "cover.pdf")
	require.NoError(t, os.WriteFile(resume, []byte("cv"), 0o644))
	require.NoError(t, os.WriteFile(cover, []byte("cl"), 0o644))

	s, fills := fillDoc(t, newTestFiller(resume, cover), `<form>
		<label for="cv">Upload resume</label><input type="file" id="cv"/>
		<label for="cl">Upload cover letter</label><input type="file" id="cl"/>
	</form>`)

	require.Len(t, fills, 2)
	assert.Equal(t, resume, attrOf(t, s, `//input[@id='cv']`, "data-apl-upload"))
	assert.Equal(t, cover, attrOf(t, s, `//input[@id='cl']`, "data-apl-upload"))
}

func TestUploadSkipsMissingFile(t *testing.T) {
	s, fills := fillDoc(t, newTestFiller(filepath.Join(t.TempDir(), "absent.pdf"), ""), `<form>
		<label for="cv">Upload resume</label><input type="file" id="cv"/>
	</form>`)

	assert.Empty(t, fills)
	assert.Equal(t, "", attrOf(t, s, `//input`, "data-apl-upload"))
}

func TestFillPageIsolatesFieldFaults(t *testing.T) {
	// The select has no usable options; the input after it must still fill.
	s, fills := fillDoc(t, newTestFiller("", ""), `<form>
		<label for="s">Broken select</label>
		<select id="s"></select>
		<input type="text" aria-label="First name"/>
	</form>`)

	require.Len(t, fills, 1)
	assert.Equal(t, "Priya", attrOf(t, s, `//input`, "value"))
}
