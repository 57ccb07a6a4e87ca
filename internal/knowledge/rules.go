package knowledge

import "github.com/jwalitptl/cds-engine/internal/model"

// clinicalRules returns the contraindication rule catalog. Order matters:
// the safety engine breaks severity ties by catalog position.
func clinicalRules() []model.ClinicalRule {
	return []model.ClinicalRule{
		{
			ID:                    "ci-cauda-equina",
			Name:                  "Cauda equina syndrome",
			Type:                  model.RuleTypeAbsolute,
			Severity:              model.SeverityCritical,
			AffectedProcedures:    []string{model.ProcedureWildcard},
			Source:                model.SourceRedFlag,
			Keywords:              []string{"bladder dysfunction", "bowel incontinence", "urinary retention", "saddle anesthesia", "saddle numbness", "cauda equina"},
			Reason:                "Signs of cauda equina syndrome: manual therapy is contraindicated and emergency referral is required.",
			Recommendation:        "Immediate emergency referral. Do not treat.",
			Overridable:           false,
			DocumentationRequired: true,
		},
		{
			ID:                    "ci-spinal-fracture",
			Name:                  "Suspected spinal fracture",
			Type:                  model.RuleTypeAbsolute,
			Severity:              model.SeverityCritical,
			AffectedProcedures:    []string{model.ProcedureWildcard},
			Source:                model.SourceCondition,
			Keywords:              []string{"fracture", "compression fracture", "vertebral fracture", "unhealed fracture"},
			Reason:                "Manipulation over an unhealed fracture risks catastrophic injury.",
			Recommendation:        "Refer for imaging; resume care only after radiographic healing.",
			Overridable:           false,
			DocumentationRequired: true,
		},
		{
			ID:                    "ci-spinal-malignancy",
			Name:                  "Spinal malignancy",
			Type:                  model.RuleTypeAbsolute,
			Severity:              model.SeverityCritical,
			AffectedProcedures:    []string{model.ProcedureWildcard},
			Source:                model.SourceCondition,
			Keywords:              []string{"spinal tumor", "metastasis", "metastatic", "bone cancer", "multiple myeloma"},
			Reason:                "Malignancy involving the spine contraindicates manual therapy at the affected levels.",
			Recommendation:        "Coordinate with oncology before any manual care.",
			Overridable:           false,
			DocumentationRequired: true,
		},
		{
			ID:                    "ci-spinal-infection",
			Name:                  "Active spinal infection",
			Type:                  model.RuleTypeAbsolute,
			Severity:              model.SeverityCritical,
			AffectedProcedures:    []string{model.ProcedureWildcard},
			Source:                model.SourceCondition,
			Keywords:              []string{"osteomyelitis", "discitis", "spinal infection", "epidural abscess"},
			Reason:                "Active infection of spinal structures contraindicates manual therapy.",
			Recommendation:        "Urgent medical referral for infectious workup.",
			Overridable:           false,
			DocumentationRequired: true,
		},
		{
			ID:                    "ci-vbi-cervical",
			Name:                  "Vertebrobasilar insufficiency",
			Type:                  model.RuleTypeAbsolute,
			Severity:              model.SeverityCritical,
			AffectedProcedures:    []string{"Cervical Manipulation", "Diversified Technique", "Gonstead Technique"},
			Source:                model.SourceCondition,
			Keywords:              []string{"vertebrobasilar insufficiency", "vertebral artery", "drop attacks", "diplopia", "dysarthria", "5d", "dizziness with neck rotation"},
			Reason:                "VBI signs contraindicate high-velocity cervical manipulation.",
			Recommendation:        "Vascular screening before any cervical manipulation; use low-force alternatives.",
			Overridable:           false,
			DocumentationRequired: true,
		},
		{
			ID:                    "ci-anticoagulant",
			Name:                  "Anticoagulant therapy",
			Type:                  model.RuleTypeRelative,
			Severity:              model.SeverityHigh,
			AffectedProcedures:    []string{model.ProcedureWildcard},
			Source:                model.SourceMedication,
			Keywords:              []string{"warfarin", "coumadin", "xarelto", "rivaroxaban", "eliquis", "apixaban", "heparin", "pradaxa", "dabigatran", "anticoagulant"},
			Reason:                "Anticoagulation raises bleeding and hematoma risk with high-velocity techniques.",
			Recommendation:        "Prefer low-force techniques; verify INR status where applicable.",
			Overridable:           true,
			DocumentationRequired: true,
			ReviewPeriodDays:      90,
		},
		{
			ID:                    "ci-osteoporosis",
			Name:                  "Osteoporosis",
			Type:                  model.RuleTypeRelative,
			Severity:              model.SeverityHigh,
			AffectedProcedures:    []string{"Diversified Technique", "Gonstead Technique", "Thompson Drop Table", "HVLA Manipulation"},
			Source:                model.SourceCondition,
			Keywords:              []string{"osteoporosis", "osteopenia", "low bone density", "fragility fracture"},
			Reason:                "Reduced bone density raises fracture risk under high-velocity loading.",
			Recommendation:        "Use low-force techniques (Activator, mobilization) instead of HVLA.",
			Overridable:           true,
			DocumentationRequired: true,
			ReviewPeriodDays:      180,
		},
		{
			ID:                    "ci-recent-spinal-surgery",
			Name:                  "Recent spinal surgery",
			Type:                  model.RuleTypeRelative,
			Severity:              model.SeverityHigh,
			AffectedProcedures:    []string{model.ProcedureWildcard},
			Source:                model.SourceSurgery,
			Keywords:              []string{"spinal fusion", "laminectomy", "discectomy", "microdiscectomy", "surgery", "surgical"},
			Reason:                "Surgical sites within the recovery window must not be loaded.",
			Recommendation:        "Obtain surgical clearance; avoid the operated region.",
			Overridable:           true,
			DocumentationRequired: true,
			ReviewPeriodDays:      30,
		},
		{
			ID:                    "ci-recent-trauma",
			Name:                  "Recent significant trauma",
			Type:                  model.RuleTypeRelative,
			Severity:              model.SeverityHigh,
			AffectedProcedures:    []string{model.ProcedureWildcard},
			Source:                model.SourceTrauma,
			Keywords:              []string{"motor vehicle", "mva", "fall", "whiplash", "collision", "accident"},
			Reason:                "Recent trauma requires fracture and ligamentous injury to be ruled out first.",
			Recommendation:        "Screen with imaging before manipulation; start with gentle care.",
			Overridable:           true,
			DocumentationRequired: true,
			ReviewPeriodDays:      14,
		},
		{
			ID:                    "ci-rheumatoid-cervical",
			Name:                  "Rheumatoid arthritis with cervical involvement",
			Type:                  model.RuleTypeRelative,
			Severity:              model.SeverityHigh,
			AffectedProcedures:    []string{"Cervical Manipulation", "Diversified Technique"},
			Source:                model.SourceCondition,
			Keywords:              []string{"rheumatoid arthritis", "atlantoaxial instability", "cervical instability"},
			Reason:                "RA can cause upper cervical ligamentous laxity; HVLA is dangerous without instability screening.",
			Recommendation:        "Flexion-extension imaging before cervical manipulation; use mobilization otherwise.",
			Overridable:           true,
			DocumentationRequired: true,
			ReviewPeriodDays:      365,
		},
		{
			ID:                    "ci-corticosteroid-use",
			Name:                  "Long-term corticosteroid use",
			Type:                  model.RuleTypePrecaution,
			Severity:              model.SeverityModerate,
			AffectedProcedures:    []string{"Diversified Technique", "Gonstead Technique", "HVLA Manipulation"},
			Source:                model.SourceMedication,
			Keywords:              []string{"prednisone", "prednisolone", "corticosteroid", "steroid therapy"},
			Reason:                "Chronic steroid use reduces bone and connective tissue integrity.",
			Recommendation:        "Moderate force; consider bone density screening for long-term users.",
			Overridable:           true,
			DocumentationRequired: false,
			ReviewPeriodDays:      180,
		},
		{
			ID:                    "ci-elderly-general",
			Name:                  "Advanced age",
			Type:                  model.RuleTypePrecaution,
			Severity:              model.SeverityModerate,
			AffectedProcedures:    []string{model.ProcedureWildcard},
			Source:                model.SourceAge,
			Keywords:              []string{"elderly"},
			Reason:                "Patients over 75 need force and amplitude adjusted for tissue tolerance.",
			Recommendation:        "Prefer low-force techniques; reassess tolerance frequently.",
			Overridable:           true,
			DocumentationRequired: false,
		},
		{
			ID:                    "ci-pediatric-cervical",
			Name:                  "Pediatric cervical care",
			Type:                  model.RuleTypePrecaution,
			Severity:              model.SeverityModerate,
			AffectedProcedures:    []string{"Cervical Manipulation", "Diversified Technique"},
			Source:                model.SourceAge,
			Keywords:              []string{"pediatric"},
			Reason:                "Cervical manipulation under age 12 calls for modified low-force technique.",
			Recommendation:        "Use age-appropriate low-force adjusting.",
			Overridable:           true,
			DocumentationRequired: false,
		},
		{
			ID:                    "ci-pregnancy",
			Name:                  "Pregnancy",
			Type:                  model.RuleTypePrecaution,
			Severity:              model.SeverityModerate,
			AffectedProcedures:    []string{"Thompson Drop Table", "Diversified Technique", "Flexion-Distraction"},
			Source:                model.SourceCondition,
			Keywords:              []string{"pregnant", "pregnancy", "gravid"},
			Reason:                "Positioning and technique need modification throughout pregnancy.",
			Recommendation:        "Use pregnancy-adapted positioning (side posture, pelvic blocks).",
			Overridable:           true,
			DocumentationRequired: false,
		},
		{
			ID:                    "ci-hypermobility",
			Name:                  "Joint hypermobility",
			Type:                  model.RuleTypePrecaution,
			Severity:              model.SeverityLow,
			AffectedProcedures:    []string{model.ProcedureWildcard},
			Source:                model.SourceCondition,
			Keywords:              []string{"hypermobility", "ehlers-danlos", "ligamentous laxity"},
			Reason:                "Hypermobile joints respond poorly to repeated end-range manipulation.",
			Recommendation:        "Emphasize stabilization exercise over manipulation.",
			Overridable:           true,
			DocumentationRequired: false,
		},
		{
			ID:                    "ci-severe-pain-general",
			Name:                  "Disproportionate unexplained pain",
			Type:                  model.RuleTypePrecaution,
			Severity:              model.SeverityLow,
			AffectedProcedures:    []string{model.ProcedureWildcard},
			Source:                model.SourceGeneral,
			Keywords:              []string{"unrelenting pain", "pain at rest", "non-mechanical pain"},
			Reason:                "Pain that does not vary with position or activity needs further workup.",
			Recommendation:        "Trial of care with early reassessment; refer if no mechanical pattern emerges.",
			Overridable:           true,
			DocumentationRequired: false,
		},
	}
}
