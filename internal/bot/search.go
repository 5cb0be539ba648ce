package bot

import (
	"net/url"
	"strings"

	"github.com/xkilldash9x/applypilot/internal/config"
)

const (
	loginURL = "https://www.linkedin.com/login"
	jobsURL  = "https://www.linkedin.com/jobs/search/"
)

// expLevelCodes maps configuration experience levels to the f_E filter codes.
var expLevelCodes = map[string]string{
	"internship":       "1",
	"entry level":      "2",
	"associate":        "3",
	"mid-senior level": "4",
	"director":         "5",
	"executive":        "6",
}

// datePostedCodes maps configuration date windows to the f_TPR filter values.
// any_time maps to the empty string, which omits the filter.
var datePostedCodes = map[string]string{
	"past_24_hours": "r86400",
	"past_week":     "r604800",
	"past_month":    "r2592000",
	"any_time":      "",
}

// BuildSearchURL constructs a jobs search URL for one title and location with
// the configured filters applied.
func BuildSearchURL(jobTitle, location string, cfg config.SearchConfig) string {
	params := url.Values{}
	params.Set("keywords", jobTitle)
	params.Set("location", location)

	if cfg.EasyApplyOnly {
		params.Set("f_LF", "f_AL")
	}

	if code := datePostedCodes[cfg.DatePosted]; code != "" {
		params.Set("f_TPR", code)
	}

	var codes []string
	for _, level := range cfg.ExperienceLevels {
		if code, ok := expLevelCodes[strings.ToLower(level)]; ok {
			codes = append(codes, code)
		}
	}
	if len(codes) > 0 {
		params.Set("f_E", strings.Join(codes, ","))
	}

	return jobsURL + "?" + params.Encode()
}
