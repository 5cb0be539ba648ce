package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	apps := []Application{
		{Status: "Applied"},
		{Status: "Applied", FollowUp: "Yes"},
		{Status: "Interview Scheduled"},
		{Status: "Phone Screen", FollowUp: "yes"},
		{Status: "Failed"},
	}

	got := Summarize(apps, now)
	want := Summary{
		Period:         "2026-08-18 to 2026-08-25",
		TotalApplied:   5,
		TotalResponses: 2,
		ResponseRate:   "40.0 %",
		FollowUpsDue:   2,
		ByStatus: map[string]int{
			"applied":             2,
			"interview scheduled": 1,
			"phone screen":        1,
			"failed":              1,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeEmptyWindow(t *testing.T) {
	got := Summarize(nil, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 0, got.TotalApplied)
	assert.Equal(t, "0.0 %", got.ResponseRate)
	assert.Empty(t, got.ByStatus)
}

func TestSummaryJSON(t *testing.T) {
	s := Summarize([]Application{{Status: "Applied"}}, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))

	out, err := s.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"total_applied": 1`)
	assert.Contains(t, string(out), `"response_rate": "0.0 %"`)
}

func TestSummaryRender(t *testing.T) {
	s := Summarize([]Application{
		{Status: "Applied"},
		{Status: "Offer"},
	}, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))

	var b strings.Builder
	s.Render(&b)
	out := b.String()

	assert.Contains(t, out, "WEEKLY APPLICATION SUMMARY")
	assert.Contains(t, out, "Total Applied : 2")
	assert.Contains(t, out, "Responses     : 1")
	assert.Contains(t, out, "Response Rate : 50.0 %")
	assert.Contains(t, out, "Breakdown by Status:")
	// Statuses are listed alphabetically.
	assert.Less(t, strings.Index(out, "applied"), strings.Index(out, "offer"))
}
