package outcome

import (
	"fmt"
	"strings"

	"github.com/jwalitptl/cds-engine/internal/extractor"
	"github.com/jwalitptl/cds-engine/internal/knowledge"
	"github.com/jwalitptl/cds-engine/internal/model"
)

// Adjustment constants for the prognosis model. Improvement and confidence
// are percentages.
const (
	acuteImprovementBonus  = 15
	chronicImprovementCut  = 25
	highRiskImprovementCut = 10
	highRiskConfidenceCut  = 5
	moderateRiskCut        = 5
	youngAgeBonus          = 5
	olderAgeCut            = 10
	olderAgeThreshold      = 65
	youngAgeThreshold      = 40
	noRiskFactorBonus      = 5

	confidenceAcute    = 80
	confidenceSubacute = 75
	confidenceChronic  = 60
	confidenceUnknown  = 65
	historyConfBonus   = 10

	improvementFloor = 10
	improvementCeil  = 95
	confidenceFloor  = 40
	confidenceCeil   = 95

	blendWeightRules = 0.7

	chronicityBase          = 15
	chronicitySubacuteAdd   = 10
	chronicityChronicAdd    = 30
	chronicityAgeAdd        = 10
	chronicityAgeThreshold  = 55
	chronicityFactorAdd     = 15
	chronicityDiscAdd       = 15
	chronicitySpondyloAdd   = 10
	chronicityFloor         = 5
	chronicityCeil          = 95
	chronicityAlertCutoff   = 40
	accuracyTolerancePoints = 15
)

// predictionInput is the normalized input to the pure prognosis model.
type predictionInput struct {
	Code          string
	Duration      extractor.DurationClass
	Age           int
	RiskFactors   []string
	Comorbidities []string
	History       *historyStats
}

// historyStats summarizes the similar treated cases found for the blend.
type historyStats struct {
	CaseCount       int
	AvgImprovement  float64
	AgeBandApplied  bool
	DurationMatched bool
}

type predictionOutput struct {
	Baseline          model.OutcomeBaseline
	Improvement       int
	Confidence        int
	ChronicityRisk    int
	Response          model.TreatmentResponse
	Timeline          string
	Favorable         []string
	Unfavorable       []string
	Neutral           []string
	Explanation       string
	ExpectationPoints []string
	Stats             model.SimilarCaseStats
}

// predict runs the full prognosis model: condition baseline, duration and
// patient-factor adjustments, optional empirical blend, chronicity risk
// score and patient-facing narrative.
func predict(cat *knowledge.Catalog, in predictionInput) predictionOutput {
	baseline := cat.BaselineFor(in.Code)

	improvement := baseline.ExpectedImprovement
	timelineValue := baseline.TimelineValue
	confidence := confidenceUnknown

	switch in.Duration {
	case extractor.DurationAcute:
		improvement += acuteImprovementBonus
		if improvement > improvementCeil {
			improvement = improvementCeil
		}
		timelineValue -= 2
		if timelineValue < 1 {
			timelineValue = 1
		}
		confidence = confidenceAcute
	case extractor.DurationSubacute:
		confidence = confidenceSubacute
	case extractor.DurationChronic:
		improvement -= chronicImprovementCut
		if improvement < 30 {
			improvement = 30
		}
		timelineValue *= 2
		confidence = confidenceChronic
	}

	var favorable, unfavorable, neutral []string

	if in.Age > 0 && in.Age < youngAgeThreshold {
		improvement += youngAgeBonus
		favorable = append(favorable, "younger age supports tissue recovery")
	}
	if in.Age > olderAgeThreshold {
		improvement -= olderAgeCut
		unfavorable = append(unfavorable, fmt.Sprintf("age %d may slow recovery", in.Age))
	}

	highMatches := matchFactors(in.RiskFactors, knowledge.HighRiskFactors)
	if in.Duration == extractor.DurationChronic {
		highMatches = append(highMatches, "chronic duration")
	}
	for _, f := range highMatches {
		improvement -= highRiskImprovementCut
		confidence -= highRiskConfidenceCut
		unfavorable = append(unfavorable, f)
	}

	moderateMatches := matchFactors(in.RiskFactors, knowledge.ModerateRiskFactors)
	for _, f := range moderateMatches {
		improvement -= moderateRiskCut
		unfavorable = append(unfavorable, f)
	}

	switch n := len(in.Comorbidities); {
	case n > 2:
		improvement -= 10
		unfavorable = append(unfavorable, fmt.Sprintf("%d comorbid conditions", n))
	case n > 0:
		improvement -= 5
		neutral = append(neutral, "comorbid conditions may modestly slow progress")
	default:
		favorable = append(favorable, "no comorbid conditions on record")
	}

	if len(highMatches) == 0 && len(moderateMatches) == 0 {
		improvement += noRiskFactorBonus
		favorable = append(favorable, "no major prognostic risk factors identified")
	}

	stats := model.SimilarCaseStats{
		DurationClass:    string(in.Duration),
		BlendWeightRules: 1.0,
	}
	if in.History != nil && in.History.CaseCount > 0 {
		blended := blendWeightRules*float64(improvement) + (1-blendWeightRules)*in.History.AvgImprovement
		improvement = int(blended + 0.5)
		confidence += historyConfBonus
		stats.CaseCount = in.History.CaseCount
		stats.AvgImprovement = in.History.AvgImprovement
		stats.AgeBandApplied = in.History.AgeBandApplied
		stats.DurationMatched = in.History.DurationMatched
		stats.BlendWeightRules = blendWeightRules
		neutral = append(neutral, fmt.Sprintf("informed by %d similar treated cases", in.History.CaseCount))
	}

	improvement = clamp(improvement, improvementFloor, improvementCeil)
	confidence = clamp(confidence, confidenceFloor, confidenceCeil)

	chronicity := chronicityRisk(in, highMatches)
	response := responseBand(improvement)
	timeline := fmt.Sprintf("%d %s", timelineValue, baseline.TimelineUnit)

	out := predictionOutput{
		Baseline:       baseline,
		Improvement:    improvement,
		Confidence:     confidence,
		ChronicityRisk: chronicity,
		Response:       response,
		Timeline:       timeline,
		Favorable:      favorable,
		Unfavorable:    unfavorable,
		Neutral:        neutral,
		Stats:          stats,
	}
	out.Explanation = buildExplanation(baseline, out)
	out.ExpectationPoints = buildExpectationPoints(cat, in, out)
	return out
}

func chronicityRisk(in predictionInput, highRiskMatches []string) int {
	risk := chronicityBase
	switch in.Duration {
	case extractor.DurationSubacute:
		risk += chronicitySubacuteAdd
	case extractor.DurationChronic:
		risk += chronicityChronicAdd
	}
	if in.Age > chronicityAgeThreshold {
		risk += chronicityAgeAdd
	}
	risk += chronicityFactorAdd * len(matchFactors(highRiskMatches, knowledge.HighChronicityFactors))
	code := strings.ToUpper(in.Code)
	if strings.HasPrefix(code, "M50") || strings.HasPrefix(code, "M51") {
		risk += chronicityDiscAdd
	}
	if strings.HasPrefix(code, "M47") {
		risk += chronicitySpondyloAdd
	}
	return clamp(risk, chronicityFloor, chronicityCeil)
}

func responseBand(improvement int) model.TreatmentResponse {
	switch {
	case improvement >= 75:
		return model.ResponseExcellent
	case improvement >= 60:
		return model.ResponseGood
	case improvement >= 40:
		return model.ResponseModerate
	default:
		return model.ResponsePoor
	}
}

func buildExplanation(baseline model.OutcomeBaseline, out predictionOutput) string {
	var b strings.Builder
	switch out.Response {
	case model.ResponseExcellent:
		fmt.Fprintf(&b, "The outlook for %s is excellent.", strings.ToLower(baseline.Condition))
	case model.ResponseGood:
		fmt.Fprintf(&b, "The outlook for %s is good.", strings.ToLower(baseline.Condition))
	case model.ResponseModerate:
		fmt.Fprintf(&b, "The outlook for %s is guarded, though meaningful improvement is still expected.", strings.ToLower(baseline.Condition))
	default:
		fmt.Fprintf(&b, "The outlook for %s is limited; a trial of care with early reassessment is recommended.", strings.ToLower(baseline.Condition))
	}
	fmt.Fprintf(&b, " We expect roughly %d%% improvement over %s.", out.Improvement, out.Timeline)

	if len(out.Favorable) > 0 {
		fmt.Fprintf(&b, " Working in the patient's favor: %s.", joinTwo(out.Favorable))
	}
	if len(out.Unfavorable) > 0 {
		fmt.Fprintf(&b, " Factors to manage: %s.", joinTwo(out.Unfavorable))
	}
	return b.String()
}

func buildExpectationPoints(cat *knowledge.Catalog, in predictionInput, out predictionOutput) []string {
	points := []string{
		"Most patients notice initial relief within the first one to two weeks of care",
		fmt.Sprintf("Expect roughly %d%% improvement over %s", out.Improvement, out.Timeline),
	}
	if freq, ok := frequencyFor(cat, in.Duration); ok {
		points = append(points, fmt.Sprintf("Plan on %s visits per week initially, reassessed every %d visits", freq.VisitsPerWeek, freq.ReassessVisits))
	}
	if out.ChronicityRisk > chronicityAlertCutoff {
		points = append(points, "Chronicity risk is elevated; starting care promptly improves the odds of full recovery")
	}
	return points
}

func frequencyFor(cat *knowledge.Catalog, d extractor.DurationClass) (model.VisitFrequency, bool) {
	acuity := map[extractor.DurationClass]string{
		extractor.DurationAcute:    "acute",
		extractor.DurationSubacute: "subacute",
		extractor.DurationChronic:  "chronic",
	}[d]
	for _, f := range cat.Frequencies {
		if f.Acuity == acuity {
			return f, true
		}
	}
	return model.VisitFrequency{}, false
}

// matchFactors returns the vocabulary entries matched by the input factors,
// substring containment either direction, deduplicated by vocabulary entry.
func matchFactors(inputs, vocabulary []string) []string {
	var matched []string
	seen := make(map[string]struct{})
	for _, vocab := range vocabulary {
		if _, dup := seen[vocab]; dup {
			continue
		}
		for _, input := range inputs {
			in := strings.ToLower(strings.TrimSpace(input))
			if in == "" {
				continue
			}
			if strings.Contains(in, vocab) || strings.Contains(vocab, in) {
				matched = append(matched, vocab)
				seen[vocab] = struct{}{}
				break
			}
		}
	}
	return matched
}

func joinTwo(items []string) string {
	if len(items) > 2 {
		items = items[:2]
	}
	return strings.Join(items, " and ")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
