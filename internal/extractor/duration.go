package extractor

import (
	"regexp"
	"strings"
)

// DurationClass classifies how long symptoms have been present.
type DurationClass string

const (
	DurationAcute    DurationClass = "acute"
	DurationSubacute DurationClass = "subacute"
	DurationChronic  DurationClass = "chronic"
	DurationUnknown  DurationClass = "unknown"
)

// AcuityClass drives frequency and prognosis defaults.
type AcuityClass string

const (
	AcuityAcute    AcuityClass = "acute"
	AcuitySubacute AcuityClass = "subacute"
	AcuityChronic  AcuityClass = "chronic"
	AcuityWellness AcuityClass = "wellness"
)

// Duration patterns are checked chronic first, then subacute, then acute:
// text mentioning both "2 years" and "this week" classifies as chronic.
var (
	chronicPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d+\s*(?:year|yr)s?\b`),
		regexp.MustCompile(`\b(?:[3-9]|1[0-9]|2[0-9])\s*(?:month|mo)s?\b`),
		regexp.MustCompile(`\bover\s+a\s+year\b`),
		regexp.MustCompile(`\bfor\s+years\b`),
	}
	subacutePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b[1-2]\s*(?:month|mo)s?\b`),
		regexp.MustCompile(`\b(?:[4-9]|1[0-2])\s*(?:week|wk)s?\b`),
		regexp.MustCompile(`\bseveral\s+weeks\b`),
		regexp.MustCompile(`\ba\s+month\b`),
	}
	acutePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d+\s*days?\b`),
		regexp.MustCompile(`\b[1-3]\s*(?:week|wk)s?\b`),
		regexp.MustCompile(`\bthis\s+week\b`),
		regexp.MustCompile(`\blast\s+week\b`),
		regexp.MustCompile(`\byesterday\b`),
		regexp.MustCompile(`\bfew\s+days\b`),
	}

	// Literal terms mapped straight to acute.
	acuteTerms = []string{"recently", "sudden", "suddenly", "just started", "new onset"}
)

// ClassifyDuration classifies symptom duration from normalized text.
// The most specific (longest-timescale) pattern wins.
func ClassifyDuration(text string) DurationClass {
	if strings.TrimSpace(text) == "" {
		return DurationUnknown
	}
	for _, p := range chronicPatterns {
		if p.MatchString(text) {
			return DurationChronic
		}
	}
	for _, p := range subacutePatterns {
		if p.MatchString(text) {
			return DurationSubacute
		}
	}
	for _, p := range acutePatterns {
		if p.MatchString(text) {
			return DurationAcute
		}
	}
	for _, t := range acuteTerms {
		if strings.Contains(text, t) {
			return DurationAcute
		}
	}
	return DurationUnknown
}

var (
	wellnessTerms = []string{"wellness", "maintenance", "check-up", "checkup", "tune-up", "no complaints"}
	chronicTerms  = []string{"chronic", "long-standing", "longstanding", "persistent", "ongoing"}
	acuityAcute   = []string{"acute", "sudden", "injury", "recently", "new onset", "flare"}
)

// ClassifyAcuity derives the visit acuity from keywords, informed by the
// duration class, defaulting to subacute when nothing matches.
func ClassifyAcuity(text string, duration DurationClass) AcuityClass {
	for _, t := range wellnessTerms {
		if strings.Contains(text, t) {
			return AcuityWellness
		}
	}
	if duration == DurationChronic {
		return AcuityChronic
	}
	for _, t := range chronicTerms {
		if strings.Contains(text, t) {
			return AcuityChronic
		}
	}
	if duration == DurationAcute {
		return AcuityAcute
	}
	for _, t := range acuityAcute {
		if strings.Contains(text, t) {
			return AcuityAcute
		}
	}
	return AcuitySubacute
}
