package chrome

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/applypilot/internal/surface"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"deadline becomes timeout", context.DeadlineExceeded, surface.ErrTimeout},
		{"vanished node becomes stale", errors.New("could not find node"), surface.ErrStale},
		{"detached node becomes stale", errors.New("cdp error: No node with given id found (-32000)"), surface.ErrStale},
		{"hidden element becomes not interactable", errors.New("element is not visible"), surface.ErrNotInteractable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.in), tt.want)
		})
	}
}

func TestMapErrorPassesThroughUnknownFaults(t *testing.T) {
	in := errors.New("websocket closed")
	got := mapError(in)
	assert.Equal(t, in, got)
	assert.False(t, surface.Benign(got))
}

func TestElementCSSQuotesUID(t *testing.T) {
	e := &element{uid: "42"}
	assert.Equal(t, `[data-apl-uid="42"]`, e.css())
}
