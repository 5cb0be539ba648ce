// Package form contains the core of the application wizard automation: the
// label resolver, the per-kind field fill dispatcher, and the navigation
// state machine that drives one application attempt from first step to
// submission or abandonment.
package form

// FieldKind classifies one form control.
type FieldKind int

const (
	KindShortText FieldKind = iota
	KindLongText
	KindChoiceList
	KindRadioGroup
	KindCheckbox
	KindFile
)

func (k FieldKind) String() string {
	switch k {
	case KindShortText:
		return "short-text"
	case KindLongText:
		return "long-text"
	case KindChoiceList:
		return "choice-list"
	case KindRadioGroup:
		return "radio-group"
	case KindCheckbox:
		return "checkbox"
	case KindFile:
		return "file"
	}
	return "unknown"
}

// Fill is one externally observable effect of a fill pass: a value written,
// an option selected, a box checked or a file uploaded.
type Fill struct {
	Kind  FieldKind
	Label string
	Value string
}

// ModalXPath locates the Easy Apply modal. Exported for the session
// orchestration, which waits for the modal before handing off to a runner.
const ModalXPath = `//div[contains(@class, 'jobs-easy-apply-modal')]`

// XPath expressions for enumerating fields and probing labels. These are the
// only selectors the core uses; both surface implementations evaluate them.
const (
	xpathTextInputs = `.//input[@type='text' or @type='email' or @type='tel' or @type='number']`
	xpathTextareas  = `.//textarea`
	xpathSelects    = `.//select`
	xpathOptions    = `.//option`
	xpathRadios     = `.//input[@type='radio']`
	xpathCheckboxes = `.//input[@type='checkbox']`
	xpathFileInputs = `.//input[@type='file']`

	xpathAncestorLabel  = `ancestor::label`
	xpathPrecedingLabel = `preceding-sibling::label[1]`
	xpathFollowingLabel = `following-sibling::label`
)
