package ledger

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// SummaryWindow is the reporting period.
const SummaryWindow = 7 * 24 * time.Hour

// responseKeywords classify a status as a response from the employer.
var responseKeywords = []string{"response", "interview", "offer", "screen"}

// Summary aggregates the applications of one reporting window.
type Summary struct {
	Period         string         `json:"period"`
	TotalApplied   int            `json:"total_applied"`
	TotalResponses int            `json:"total_responses"`
	ResponseRate   string         `json:"response_rate"`
	FollowUpsDue   int            `json:"follow_ups_due"`
	ByStatus       map[string]int `json:"by_status"`
}

// Summarize aggregates apps into the window ending at now. Callers pass the
// result of Recorder.Since(now - SummaryWindow).
func Summarize(apps []Application, now time.Time) Summary {
	s := Summary{
		Period: fmt.Sprintf("%s to %s",
			now.Add(-SummaryWindow).Format("2006-01-02"),
			now.Format("2006-01-02")),
		ByStatus: make(map[string]int),
	}

	for _, app := range apps {
		s.TotalApplied++
		status := strings.ToLower(app.Status)
		s.ByStatus[status]++

		for _, kw := range responseKeywords {
			if strings.Contains(status, kw) {
				s.TotalResponses++
				break
			}
		}
		if strings.EqualFold(strings.TrimSpace(app.FollowUp), "yes") {
			s.FollowUpsDue++
		}
	}

	if s.TotalApplied > 0 {
		s.ResponseRate = fmt.Sprintf("%.1f %%", float64(s.TotalResponses)/float64(s.TotalApplied)*100)
	} else {
		s.ResponseRate = "0.0 %"
	}
	return s
}

// JSON renders the summary for machine consumption.
func (s Summary) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Render writes the human-readable weekly report.
func (s Summary) Render(w io.Writer) {
	line := strings.Repeat("=", 50)
	fmt.Fprintf(w, "\n%s\n", line)
	fmt.Fprintln(w, "       WEEKLY APPLICATION SUMMARY")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "  Period        : %s\n", s.Period)
	fmt.Fprintf(w, "  Total Applied : %d\n", s.TotalApplied)
	fmt.Fprintf(w, "  Responses     : %d\n", s.TotalResponses)
	fmt.Fprintf(w, "  Response Rate : %s\n", s.ResponseRate)
	fmt.Fprintf(w, "  Follow-ups    : %d\n", s.FollowUpsDue)

	if len(s.ByStatus) > 0 {
		fmt.Fprintln(w, "\n  Breakdown by Status:")
		statuses := make([]string, 0, len(s.ByStatus))
		for status := range s.ByStatus {
			statuses = append(statuses, status)
		}
		sort.Strings(statuses)
		for _, status := range statuses {
			fmt.Fprintf(w, "    %-25s %d\n", status, s.ByStatus[status])
		}
	}
	fmt.Fprintf(w, "%s\n\n", line)
}
