// Package knowledge holds the static clinical catalogs: contraindication
// rules, red flags, the diagnosis catalog, treatment protocols and outcome
// baselines. Everything here is immutable after construction; the catalog is
// versioned as a whole and never mutated at request time.
package knowledge

import (
	"strings"

	"github.com/jwalitptl/cds-engine/internal/model"
)

// Version identifies the catalog release as a whole.
const Version = "2024.2"

// Catalog bundles every static knowledge table.
type Catalog struct {
	Version     string
	Rules       []model.ClinicalRule
	RedFlags    []model.RedFlag
	Diagnoses   []model.CatalogEntry
	Protocols   []model.TreatmentProtocol
	Baselines   []model.OutcomeBaseline
	Frequencies []model.VisitFrequency
	Guidelines  []model.Guideline

	rulesByID map[string]model.ClinicalRule
}

// New builds the catalog once at process start.
func New() *Catalog {
	c := &Catalog{
		Version:     Version,
		Rules:       clinicalRules(),
		RedFlags:    redFlags(),
		Diagnoses:   diagnosisCatalog(),
		Protocols:   treatmentProtocols(),
		Baselines:   outcomeBaselines(),
		Frequencies: visitFrequencies(),
		Guidelines:  guidelines(),
	}
	c.rulesByID = make(map[string]model.ClinicalRule, len(c.Rules))
	for _, r := range c.Rules {
		c.rulesByID[r.ID] = r
	}
	return c
}

// RuleByID looks a rule up by its catalog id.
func (c *Catalog) RuleByID(id string) (model.ClinicalRule, bool) {
	r, ok := c.rulesByID[id]
	return r, ok
}

// BaselineFor returns the outcome baseline whose code prefix matches the
// diagnosis code, longest prefix winning. With no match it falls back to
// the low back pain baseline.
func (c *Catalog) BaselineFor(code string) model.OutcomeBaseline {
	code = strings.ToUpper(strings.TrimSpace(code))
	best := -1
	var found model.OutcomeBaseline
	for _, b := range c.Baselines {
		if strings.HasPrefix(code, b.CodePrefix) && len(b.CodePrefix) > best {
			best = len(b.CodePrefix)
			found = b
		}
	}
	if best < 0 {
		return c.defaultBaseline()
	}
	return found
}

// ProtocolFor returns the treatment protocol matching the diagnosis code by
// prefix, longest prefix winning.
func (c *Catalog) ProtocolFor(code string) (model.TreatmentProtocol, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	best := -1
	var found model.TreatmentProtocol
	for _, p := range c.Protocols {
		for _, pc := range p.Codes {
			if strings.HasPrefix(code, pc) && len(pc) > best {
				best = len(pc)
				found = p
			}
		}
	}
	return found, best >= 0
}

func (c *Catalog) defaultBaseline() model.OutcomeBaseline {
	for _, b := range c.Baselines {
		if b.CodePrefix == "M54.5" {
			return b
		}
	}
	// Unreachable while the table carries the low back pain row.
	return model.OutcomeBaseline{
		CodePrefix:          "M54.5",
		Condition:           "Low back pain",
		ExpectedImprovement: 75,
		TimelineValue:       6,
		TimelineUnit:        "weeks",
		Description:         "significant improvement",
	}
}

// RegionSynonyms maps a catalog body region to the words patients and
// clinicians use for it. The scorer awards a bonus when one appears in
// the extracted evidence.
var RegionSynonyms = map[string][]string{
	"lumbar":   {"lumbar", "low back", "lower back", "lumbosacral", "lba"},
	"cervical": {"cervical", "neck", "cervicothoracic"},
	"thoracic": {"thoracic", "mid back", "upper back", "midback"},
	"shoulder": {"shoulder", "rotator cuff", "glenohumeral"},
	"head":     {"headache", "head", "occipital", "suboccipital"},
}

// Risk factor vocabularies for the outcome predictor.
var (
	// HighRiskFactors cut improvement and confidence per match.
	HighRiskFactors = []string{
		"chronic duration",
		"previous treatment failure",
		"failed previous treatment",
		"psychological distress",
		"depression",
		"anxiety",
		"workers compensation",
		"work injury claim",
		"fear avoidance",
		"fear-avoidance",
	}

	// ModerateRiskFactors cut improvement per match.
	ModerateRiskFactors = []string{
		"sedentary",
		"sedentary lifestyle",
		"smoking",
		"smoker",
		"obesity",
		"obese",
		"heavy labor",
		"heavy lifting occupation",
		"neurological involvement",
		"radiculopathy",
	}

	// HighChronicityFactors raise the chronicity risk score per match.
	HighChronicityFactors = []string{
		"psychological distress",
		"depression",
		"fear avoidance",
		"fear-avoidance",
		"workers compensation",
		"previous treatment failure",
		"failed previous treatment",
	}
)
