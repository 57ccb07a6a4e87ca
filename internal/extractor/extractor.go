// Package extractor turns free-text and structured encounter data into the
// normalized evidence the scoring and safety engines consume. Extraction is
// total: malformed or empty input produces empty evidence and defaults,
// never an error.
package extractor

import (
	"strings"
	"time"

	"github.com/jwalitptl/cds-engine/internal/model"
)

// Recency windows for structured events. Events outside the window stay on
// the chart but are ignored for rule matching.
const (
	SurgeryWindow = 183 * 24 * time.Hour // 6 months
	TraumaWindow  = 14 * 24 * time.Hour
)

// Input is everything the extractor reads for one request.
type Input struct {
	ChiefComplaint string
	Subjective     string
	Objective      string
	ClinicalNotes  string
	Conditions     []string
	Medications    []string
	Allergies      []string
	Surgeries      []model.SurgeryEvent
	Traumas        []model.TraumaEvent
	Age            int
	Now            time.Time
}

// Evidence is the normalized output consumed by the scorer, safety engine
// and predictor.
type Evidence struct {
	Keywords        []string
	Text            string
	Duration        DurationClass
	Acuity          AcuityClass
	Conditions      []string
	Medications     []string
	RecentSurgeries []model.SurgeryEvent
	RecentTraumas   []model.TraumaEvent
	Age             int

	keywordSet map[string]struct{}
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "with": {}, "for": {}, "has": {}, "had": {},
	"was": {}, "are": {}, "this": {}, "that": {}, "have": {}, "from": {},
	"patient": {}, "reports": {}, "complains": {}, "denies": {}, "states": {},
}

// Extract normalizes one request's worth of input.
func Extract(in Input) Evidence {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	text := normalize(strings.Join([]string{
		in.ChiefComplaint, in.Subjective, in.Objective, in.ClinicalNotes,
	}, " "))

	ev := Evidence{
		Text:       text,
		Age:        in.Age,
		keywordSet: make(map[string]struct{}),
	}

	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,;:!?()[]\"'")
		if len(w) < 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		ev.addKeyword(w)
	}

	for _, c := range in.Conditions {
		c = normalize(c)
		if c == "" {
			continue
		}
		ev.Conditions = append(ev.Conditions, c)
		ev.addKeyword(c)
	}
	for _, m := range in.Medications {
		m = normalize(m)
		if m == "" {
			continue
		}
		ev.Medications = append(ev.Medications, m)
		ev.addKeyword(m)
	}
	for _, a := range in.Allergies {
		if a = normalize(a); a != "" {
			ev.addKeyword(a)
		}
	}

	for _, s := range in.Surgeries {
		if !s.Date.IsZero() && now.Sub(s.Date) <= SurgeryWindow && !s.Date.After(now) {
			ev.RecentSurgeries = append(ev.RecentSurgeries, s)
			ev.addKeyword(normalize(s.Name))
		}
	}
	for _, t := range in.Traumas {
		if !t.Date.IsZero() && now.Sub(t.Date) <= TraumaWindow && !t.Date.After(now) {
			ev.RecentTraumas = append(ev.RecentTraumas, t)
			ev.addKeyword(normalize(t.Description))
		}
	}

	ev.Duration = ClassifyDuration(text)
	ev.Acuity = ClassifyAcuity(text, ev.Duration)

	return ev
}

// HasKeyword reports whether the exact normalized keyword was extracted.
func (e *Evidence) HasKeyword(k string) bool {
	_, ok := e.keywordSet[normalize(k)]
	return ok
}

// TextContains reports whether the combined free text contains the phrase.
func (e *Evidence) TextContains(phrase string) bool {
	phrase = normalize(phrase)
	return phrase != "" && strings.Contains(e.Text, phrase)
}

func (e *Evidence) addKeyword(k string) {
	if k == "" {
		return
	}
	if _, dup := e.keywordSet[k]; dup {
		return
	}
	e.keywordSet[k] = struct{}{}
	e.Keywords = append(e.Keywords, k)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
