package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/cds-engine/internal/extractor"
	"github.com/jwalitptl/cds-engine/internal/knowledge"
	"github.com/jwalitptl/cds-engine/internal/model"
)

func TestRuleApplies(t *testing.T) {
	wildcard := model.ClinicalRule{AffectedProcedures: []string{model.ProcedureWildcard}}
	cervical := model.ClinicalRule{AffectedProcedures: []string{"Cervical Manipulation"}}

	assert.True(t, ruleApplies(wildcard, "Anything At All"))
	assert.False(t, ruleApplies(wildcard, "  "))

	// Name containment works in either direction.
	assert.True(t, ruleApplies(cervical, "cervical manipulation"))
	assert.True(t, ruleApplies(cervical, "Upper Cervical Manipulation HVLA"))
	assert.True(t, ruleApplies(cervical, "cervical"))
	assert.False(t, ruleApplies(cervical, "Lumbar Flexion-Distraction"))
}

func TestMatchRuleConditionSource(t *testing.T) {
	rule := model.ClinicalRule{
		Source:   model.SourceCondition,
		Keywords: []string{"osteoporosis", "osteopenia"},
	}

	fromList := extractor.Extract(extractor.Input{Conditions: []string{"Severe Osteoporosis"}})
	matched, source, fired := matchRule(rule, &fromList, "Diversified Technique")
	require.True(t, fired)
	assert.Equal(t, []string{"osteoporosis"}, matched)
	assert.Equal(t, "active condition list", source)

	fromNotes := extractor.Extract(extractor.Input{ClinicalNotes: "history of osteopenia on DEXA"})
	matched, source, fired = matchRule(rule, &fromNotes, "Diversified Technique")
	require.True(t, fired)
	assert.Equal(t, []string{"osteopenia"}, matched)
	assert.Equal(t, "clinical notes", source)
}

func TestMatchRuleMedicationFromNotes(t *testing.T) {
	rule := model.ClinicalRule{
		Source:   model.SourceMedication,
		Keywords: []string{"warfarin"},
	}
	ev := extractor.Extract(extractor.Input{ClinicalNotes: "patient mentions taking warfarin for afib"})

	matched, source, fired := matchRule(rule, &ev, "Diversified Technique")
	require.True(t, fired)
	assert.Equal(t, []string{"warfarin"}, matched)
	assert.Equal(t, "clinical notes", source)
}

func TestMatchAgeRuleElderly(t *testing.T) {
	rule := model.ClinicalRule{Source: model.SourceAge, Keywords: []string{"elderly"}}

	young := extractor.Extract(extractor.Input{Age: ElderlyAge})
	_, _, fired := matchRule(rule, &young, "Diversified Technique")
	assert.False(t, fired, "threshold age itself does not fire")

	old := extractor.Extract(extractor.Input{Age: ElderlyAge + 1})
	matched, source, fired := matchRule(rule, &old, "Diversified Technique")
	require.True(t, fired)
	assert.Equal(t, []string{"age 76"}, matched)
	assert.Equal(t, "patient demographics", source)
}

func TestMatchAgeRulePediatricNeedsCervicalProcedure(t *testing.T) {
	rule := model.ClinicalRule{Source: model.SourceAge, Keywords: []string{"pediatric"}}
	child := extractor.Extract(extractor.Input{Age: 8})

	_, _, fired := matchRule(rule, &child, "Lumbar Flexion-Distraction")
	assert.False(t, fired)

	_, _, fired = matchRule(rule, &child, "Cervical Manipulation")
	assert.True(t, fired)

	// Unknown age never fires the pediatric rule.
	unknown := extractor.Extract(extractor.Input{})
	_, _, fired = matchRule(rule, &unknown, "Cervical Manipulation")
	assert.False(t, fired)
}

func TestMatchRuleSurgeryAndTrauma(t *testing.T) {
	ev := extractor.Evidence{
		RecentSurgeries: []model.SurgeryEvent{{Name: "L4-L5 Spinal Fusion"}},
		RecentTraumas:   []model.TraumaEvent{{Description: "MVA rear-end collision"}},
	}

	surgery := model.ClinicalRule{Source: model.SourceSurgery, Keywords: []string{"spinal fusion", "laminectomy"}}
	matched, source, fired := matchRule(surgery, &ev, "Diversified Technique")
	require.True(t, fired)
	assert.Equal(t, []string{"L4-L5 Spinal Fusion"}, matched)
	assert.Equal(t, "recent surgery", source)

	trauma := model.ClinicalRule{Source: model.SourceTrauma, Keywords: []string{"mva", "fall"}}
	matched, source, fired = matchRule(trauma, &ev, "Diversified Technique")
	require.True(t, fired)
	assert.Equal(t, []string{"MVA rear-end collision"}, matched)
	assert.Equal(t, "recent trauma", source)
}

func TestMatchRedFlags(t *testing.T) {
	cat := knowledge.New()

	clean := extractor.Extract(extractor.Input{ChiefComplaint: "low back pain after lifting"})
	assert.Empty(t, MatchRedFlags(cat.RedFlags, &clean))

	urgent := extractor.Extract(extractor.Input{
		ChiefComplaint: "low back pain",
		ClinicalNotes:  "fever and chills for two days, recent infection treated with IV antibiotics",
	})
	findings := MatchRedFlags(cat.RedFlags, &urgent)
	require.NotEmpty(t, findings)

	var infection *model.RedFlagFinding
	for i := range findings {
		if findings[i].Flag.Type == "infection" {
			infection = &findings[i]
		}
	}
	require.NotNil(t, infection)
	assert.Contains(t, infection.MatchedKeywords, "fever")
	assert.Contains(t, infection.MatchedKeywords, "chills")
}
