// Package profile holds the normalized, read-only answer data the engine
// draws from: flat fact tables plus ordered matching rules. It contains no
// matching logic of its own.
package profile

import "strings"

// Personal holds identity and contact facts.
type Personal struct {
	FirstName string `mapstructure:"first_name" yaml:"first_name"`
	LastName  string `mapstructure:"last_name" yaml:"last_name"`
	Email     string `mapstructure:"email" yaml:"email"`
	Phone     string `mapstructure:"phone" yaml:"phone"`
	City      string `mapstructure:"city" yaml:"city"`
	Country   string `mapstructure:"country" yaml:"country"`
	LinkedIn  string `mapstructure:"linkedin_profile" yaml:"linkedin_profile"`
	GitHub    string `mapstructure:"github_url" yaml:"github_url"`
	Portfolio string `mapstructure:"portfolio_url" yaml:"portfolio_url"`
}

// Background holds career facts.
type Background struct {
	YearsOfExperience float64 `mapstructure:"years_of_experience" yaml:"years_of_experience"`
	NoticePeriodDays  float64 `mapstructure:"notice_period_days" yaml:"notice_period_days"`
	ExpectedSalary    float64 `mapstructure:"expected_salary" yaml:"expected_salary"`
	HighestEducation  string  `mapstructure:"highest_education" yaml:"highest_education"`
	Currency          string  `mapstructure:"currency" yaml:"currency"`
}

// Eligibility holds work-authorization facts.
type Eligibility struct {
	LegallyAuthorized  bool `mapstructure:"legally_authorized" yaml:"legally_authorized"`
	RequireSponsorship bool `mapstructure:"require_sponsorship" yaml:"require_sponsorship"`
}

// YesNoRule maps a label keyword to a boolean answer.
type YesNoRule struct {
	Match string `mapstructure:"match" yaml:"match"`
	Value bool   `mapstructure:"value" yaml:"value"`
}

// NumericRule maps a label keyword to a number.
type NumericRule struct {
	Match string  `mapstructure:"match" yaml:"match"`
	Value float64 `mapstructure:"value" yaml:"value"`
}

// NarrativeRule maps a keyword phrase to a prepared free-text answer.
type NarrativeRule struct {
	Match  string `mapstructure:"match" yaml:"match"`
	Answer string `mapstructure:"answer" yaml:"answer"`
}

// Answers holds the configured rule tables. Rules are ordered slices, not
// maps: the first matching rule wins and that order is part of the contract
// with the user's configuration file.
type Answers struct {
	YesNo     []YesNoRule     `mapstructure:"yes_no" yaml:"yes_no"`
	Numeric   []NumericRule   `mapstructure:"numeric" yaml:"numeric"`
	Narrative []NarrativeRule `mapstructure:"narrative" yaml:"narrative"`
}

// Profile is the structured input to the answer engine.
type Profile struct {
	Personal    Personal    `mapstructure:"personal" yaml:"personal"`
	Background  Background  `mapstructure:"background" yaml:"background"`
	Eligibility Eligibility `mapstructure:"eligibility" yaml:"eligibility"`
	Answers     Answers     `mapstructure:"answers" yaml:"answers"`
}

// Normalize lower-cases the rule match keys and fills absent facts with the
// same fallbacks the engine's heuristics assume. Call once after decoding.
func (p *Profile) Normalize() {
	for i := range p.Answers.YesNo {
		p.Answers.YesNo[i].Match = strings.ToLower(p.Answers.YesNo[i].Match)
	}
	for i := range p.Answers.Numeric {
		p.Answers.Numeric[i].Match = strings.ToLower(p.Answers.Numeric[i].Match)
	}
	for i := range p.Answers.Narrative {
		p.Answers.Narrative[i].Match = strings.ToLower(p.Answers.Narrative[i].Match)
	}

	if p.Personal.City == "" {
		p.Personal.City = "Bangalore"
	}
	if p.Personal.Country == "" {
		p.Personal.Country = "India"
	}
	if p.Background.YearsOfExperience == 0 {
		p.Background.YearsOfExperience = 2
	}
	if p.Background.ExpectedSalary == 0 {
		p.Background.ExpectedSalary = 600000
	}
	if p.Background.HighestEducation == "" {
		p.Background.HighestEducation = "Bachelor"
	}
	if p.Background.Currency == "" {
		p.Background.Currency = "INR"
	}
	// LegallyAuthorized defaults to true at the config layer
	// (viper.SetDefault); RequireSponsorship's zero value is already the
	// safe default.
}

// LookupYesNo scans the ordered yes-no rules for the first whose key is a
// substring of the lower-cased label. The second return reports a hit.
func (p *Profile) LookupYesNo(label string) (bool, bool) {
	q := strings.ToLower(label)
	for _, r := range p.Answers.YesNo {
		if r.Match != "" && strings.Contains(q, r.Match) {
			return r.Value, true
		}
	}
	return false, false
}

// LookupNumeric scans the ordered numeric rules for the first whose key is a
// substring of the lower-cased label.
func (p *Profile) LookupNumeric(label string) (float64, bool) {
	q := strings.ToLower(label)
	for _, r := range p.Answers.Numeric {
		if r.Match != "" && strings.Contains(q, r.Match) {
			return r.Value, true
		}
	}
	return 0, false
}
