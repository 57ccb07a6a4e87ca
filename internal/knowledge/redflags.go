package knowledge

import "github.com/jwalitptl/cds-engine/internal/model"

// redFlags returns the red flag definitions checked against raw encounter
// text. They mirror red_flag rules but are matched on free text only.
func redFlags() []model.RedFlag {
	return []model.RedFlag{
		{
			Type:           "cauda_equina",
			Severity:       model.SeverityCritical,
			Keywords:       []string{"bladder dysfunction", "bowel incontinence", "urinary retention", "saddle anesthesia", "saddle numbness", "bilateral leg weakness"},
			Message:        "Possible cauda equina syndrome",
			Recommendation: "Emergency referral now. This is a surgical emergency.",
		},
		{
			Type:           "cancer",
			Severity:       model.SeverityHigh,
			Keywords:       []string{"unexplained weight loss", "night pain", "history of cancer", "prior cancer", "night sweats"},
			Message:        "Findings raise suspicion of malignancy",
			Recommendation: "Refer for imaging and laboratory workup before continuing care.",
		},
		{
			Type:           "fracture",
			Severity:       model.SeverityHigh,
			Keywords:       []string{"major trauma", "significant trauma", "osteoporosis with trauma", "point tenderness over spine"},
			Message:        "Possible spinal fracture",
			Recommendation: "Radiographs before any manual treatment.",
		},
		{
			Type:           "infection",
			Severity:       model.SeverityHigh,
			Keywords:       []string{"fever", "chills", "iv drug use", "recent infection", "immunosuppressed"},
			Message:        "Possible spinal infection",
			Recommendation: "Urgent medical referral for infectious workup.",
		},
		{
			Type:           "vascular",
			Severity:       model.SeverityCritical,
			Keywords:       []string{"pulsating abdominal mass", "tearing pain", "abdominal aneurysm"},
			Message:        "Possible vascular pathology (AAA)",
			Recommendation: "Emergency referral; do not treat.",
		},
		{
			Type:           "myelopathy",
			Severity:       model.SeverityHigh,
			Keywords:       []string{"gait disturbance", "clumsy hands", "hyperreflexia", "bilateral numbness"},
			Message:        "Signs consistent with cervical myelopathy",
			Recommendation: "Neurological referral before cervical manual care.",
		},
		{
			Type:           "inflammatory",
			Severity:       model.SeverityModerate,
			Keywords:       []string{"morning stiffness over an hour", "prolonged morning stiffness", "improves with activity", "alternating buttock pain"},
			Message:        "Pattern suggests inflammatory arthropathy",
			Recommendation: "Rheumatology referral for confirmatory testing; care may continue with modification.",
		},
	}
}
