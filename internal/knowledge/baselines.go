package knowledge

import "github.com/jwalitptl/cds-engine/internal/model"

// outcomeBaselines keys prognosis starting points by diagnosis code prefix.
// The predictor falls back to the M54.5 row when nothing matches.
func outcomeBaselines() []model.OutcomeBaseline {
	return []model.OutcomeBaseline{
		{
			CodePrefix:          "M54.5",
			Condition:           "Low back pain",
			ExpectedImprovement: 75,
			TimelineValue:       6,
			TimelineUnit:        "weeks",
			Description:         "significant improvement in pain and function",
		},
		{
			CodePrefix:          "M54.2",
			Condition:           "Neck pain",
			ExpectedImprovement: 72,
			TimelineValue:       5,
			TimelineUnit:        "weeks",
			Description:         "substantial reduction in pain with restored motion",
		},
		{
			CodePrefix:          "M54.1",
			Condition:           "Radiculopathy",
			ExpectedImprovement: 65,
			TimelineValue:       8,
			TimelineUnit:        "weeks",
			Description:         "centralization of radiating symptoms followed by functional recovery",
		},
		{
			CodePrefix:          "M54.3",
			Condition:           "Sciatica",
			ExpectedImprovement: 65,
			TimelineValue:       8,
			TimelineUnit:        "weeks",
			Description:         "progressive reduction of leg symptoms",
		},
		{
			CodePrefix:          "M51",
			Condition:           "Lumbar disc displacement",
			ExpectedImprovement: 60,
			TimelineValue:       10,
			TimelineUnit:        "weeks",
			Description:         "gradual improvement; disc conditions respond more slowly",
		},
		{
			CodePrefix:          "M50",
			Condition:           "Cervical disc displacement",
			ExpectedImprovement: 60,
			TimelineValue:       10,
			TimelineUnit:        "weeks",
			Description:         "gradual improvement; disc conditions respond more slowly",
		},
		{
			CodePrefix:          "M47",
			Condition:           "Spondylosis",
			ExpectedImprovement: 50,
			TimelineValue:       12,
			TimelineUnit:        "weeks",
			Description:         "symptom management with functional maintenance",
		},
		{
			CodePrefix:          "S13.4",
			Condition:           "Whiplash",
			ExpectedImprovement: 70,
			TimelineValue:       7,
			TimelineUnit:        "weeks",
			Description:         "graded restoration of motion and activity",
		},
		{
			CodePrefix:          "G44.2",
			Condition:           "Tension-type headache",
			ExpectedImprovement: 68,
			TimelineValue:       5,
			TimelineUnit:        "weeks",
			Description:         "reduced headache frequency and intensity",
		},
		{
			CodePrefix:          "M62.83",
			Condition:           "Muscle spasm",
			ExpectedImprovement: 80,
			TimelineValue:       3,
			TimelineUnit:        "weeks",
			Description:         "rapid resolution of acute spasm",
		},
		{
			CodePrefix:          "M99.0",
			Condition:           "Segmental dysfunction",
			ExpectedImprovement: 78,
			TimelineValue:       4,
			TimelineUnit:        "weeks",
			Description:         "restored segmental motion and reduced pain",
		},
	}
}

func visitFrequencies() []model.VisitFrequency {
	return []model.VisitFrequency{
		{Acuity: "acute", VisitsPerWeek: "3", TypicalCourse: "2-4 weeks", ReassessVisits: 6},
		{Acuity: "subacute", VisitsPerWeek: "2", TypicalCourse: "4-6 weeks", ReassessVisits: 8},
		{Acuity: "chronic", VisitsPerWeek: "1-2", TypicalCourse: "6-12 weeks", ReassessVisits: 12},
		{Acuity: "wellness", VisitsPerWeek: "monthly", TypicalCourse: "ongoing", ReassessVisits: 12},
	}
}

func guidelines() []model.Guideline {
	return []model.Guideline{
		{
			Name:      "Acute low back pain, first-line care",
			Condition: "Low back pain",
			Summary:   "Spinal manipulation, superficial heat and reassurance before imaging or medication in the absence of red flags.",
			Citations: []string{"ACP Clinical Practice Guideline 2017"},
		},
		{
			Name:      "Neck pain classification-based care",
			Condition: "Neck pain",
			Summary:   "Match intervention to mobility, centralization, exercise-conditioning or headache subgroup.",
			Citations: []string{"Neck Pain CPG, JOSPT 2017"},
		},
		{
			Name:      "Red flag screening before manual therapy",
			Condition: "All spinal complaints",
			Summary:   "Screen every new episode for fracture, malignancy, infection, cauda equina and vascular signs before initiating care.",
			Citations: []string{"WHO guideline on chronic LBP 2023"},
		},
	}
}
