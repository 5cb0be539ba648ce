package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xkilldash9x/applypilot/internal/surface"
)

// ResolveLabel extracts the best available human-readable label for el,
// trying a prioritized chain of read-only probes: accessible-name attribute,
// placeholder, a label bound by id reference, a wrapping ancestor label, and
// finally the nearest preceding sibling label. It returns "" when nothing is
// found.
//
// Each probe tolerates absence and falls through; any other structural fault
// is returned to the caller, since a persistently broken page should abort
// the field rather than silently mis-route it.
func ResolveLabel(ctx context.Context, el surface.Element, root surface.Element) (string, error) {
	// 1. Accessible name.
	if aria, err := el.Attr(ctx, "aria-label"); err != nil {
		return "", err
	} else if aria != "" {
		return aria, nil
	}

	// 2. Placeholder hint.
	if placeholder, err := el.Attr(ctx, "placeholder"); err != nil {
		return "", err
	} else if placeholder != "" {
		return placeholder, nil
	}

	// 3. <label for=...> bound by identifier.
	id, err := el.Attr(ctx, "id")
	if err != nil {
		return "", err
	}
	if id != "" {
		text, err := labelText(ctx, root, fmt.Sprintf(`.//label[@for='%s']`, id))
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
	}

	// 4. Wrapping ancestor label.
	if text, err := labelText(ctx, el, xpathAncestorLabel); err != nil {
		return "", err
	} else if text != "" {
		return text, nil
	}

	// 5. Nearest preceding sibling label.
	if text, err := labelText(ctx, el, xpathPrecedingLabel); err != nil {
		return "", err
	} else if text != "" {
		return text, nil
	}

	return "", nil
}

// labelText runs one probe and returns the trimmed text of the matched label
// element. Absence is not an error.
func labelText(ctx context.Context, scope surface.Element, xpath string) (string, error) {
	label, err := scope.FindOne(ctx, xpath)
	if err != nil {
		if errors.Is(err, surface.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	text, err := label.Text(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
