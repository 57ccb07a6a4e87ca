package safety

import (
	"strconv"
	"strings"

	"github.com/jwalitptl/cds-engine/internal/extractor"
	"github.com/jwalitptl/cds-engine/internal/model"
)

// Age thresholds for the age-sourced rules.
const (
	ElderlyAge   = 75
	PediatricAge = 12
)

// ruleApplies reports whether a rule covers the requested procedure. A rule
// covers a procedure when either name contains the other, or when the rule
// lists the wildcard.
func ruleApplies(rule model.ClinicalRule, procedure string) bool {
	proc := strings.ToLower(strings.TrimSpace(procedure))
	if proc == "" {
		return false
	}
	for _, affected := range rule.AffectedProcedures {
		if affected == model.ProcedureWildcard {
			return true
		}
		a := strings.ToLower(affected)
		if strings.Contains(proc, a) || strings.Contains(a, proc) {
			return true
		}
	}
	return false
}

// matchRule evaluates one rule against the extracted evidence, dispatching
// on the rule's evidence source. The switch is exhaustive over
// model.EvidenceSource; an unknown source never fires.
func matchRule(rule model.ClinicalRule, ev *extractor.Evidence, procedure string) (matched []string, matchSource string, fired bool) {
	switch rule.Source {
	case model.SourceCondition:
		for _, kw := range rule.Keywords {
			if containsAny(ev.Conditions, kw) {
				matched = append(matched, kw)
				matchSource = "active condition list"
			} else if ev.TextContains(kw) {
				matched = append(matched, kw)
				if matchSource == "" {
					matchSource = "clinical notes"
				}
			}
		}

	case model.SourceMedication:
		for _, kw := range rule.Keywords {
			if containsAny(ev.Medications, kw) {
				matched = append(matched, kw)
				matchSource = "medication list"
			} else if ev.TextContains(kw) {
				matched = append(matched, kw)
				if matchSource == "" {
					matchSource = "clinical notes"
				}
			}
		}

	case model.SourceAge:
		matched, matchSource = matchAgeRule(rule, ev, procedure)

	case model.SourceSurgery:
		for _, s := range ev.RecentSurgeries {
			name := strings.ToLower(s.Name)
			for _, kw := range rule.Keywords {
				if strings.Contains(name, kw) {
					matched = append(matched, s.Name)
					matchSource = "recent surgery"
					break
				}
			}
		}

	case model.SourceTrauma:
		for _, t := range ev.RecentTraumas {
			desc := strings.ToLower(t.Description)
			for _, kw := range rule.Keywords {
				if strings.Contains(desc, kw) {
					matched = append(matched, t.Description)
					matchSource = "recent trauma"
					break
				}
			}
		}

	case model.SourceRedFlag, model.SourceGeneral:
		for _, kw := range rule.Keywords {
			if ev.TextContains(kw) || containsAny(ev.Conditions, kw) {
				matched = append(matched, kw)
				matchSource = "clinical notes"
			}
		}
	}

	return matched, matchSource, len(matched) > 0
}

// matchAgeRule fires the elderly rule above ElderlyAge and the pediatric
// rule below PediatricAge when the procedure involves the cervical spine.
// The rule's keyword vocabulary selects which population it guards.
func matchAgeRule(rule model.ClinicalRule, ev *extractor.Evidence, procedure string) ([]string, string) {
	proc := strings.ToLower(procedure)
	for _, kw := range rule.Keywords {
		switch kw {
		case "elderly":
			if ev.Age > ElderlyAge {
				return []string{"age " + strconv.Itoa(ev.Age)}, "patient demographics"
			}
		case "pediatric":
			if ev.Age > 0 && ev.Age < PediatricAge && strings.Contains(proc, "cervical") {
				return []string{"age " + strconv.Itoa(ev.Age)}, "patient demographics"
			}
		}
	}
	return nil, ""
}

// MatchRedFlags screens the combined encounter text for red flag keywords.
// Exported because the diagnosis scorer marks suggestions that co-occur
// with red flags.
func MatchRedFlags(flags []model.RedFlag, ev *extractor.Evidence) []model.RedFlagFinding {
	var findings []model.RedFlagFinding
	for _, f := range flags {
		var matched []string
		for _, kw := range f.Keywords {
			if ev.TextContains(kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			findings = append(findings, model.RedFlagFinding{Flag: f, MatchedKeywords: matched})
		}
	}
	return findings
}

// containsAny reports whether any entry in the list contains the keyword.
func containsAny(list []string, keyword string) bool {
	for _, item := range list {
		if strings.Contains(item, keyword) {
			return true
		}
	}
	return false
}
