package knowledge

import "github.com/jwalitptl/cds-engine/internal/model"

func treatmentProtocols() []model.TreatmentProtocol {
	return []model.TreatmentProtocol{
		{
			Condition:         "Low back pain, mechanical",
			Codes:             []string{"M54.5", "M62.830", "M99.03"},
			PrimaryTechniques: []string{"Diversified Technique", "Flexion-Distraction"},
			AdjunctTherapies:  []string{"Interferential current", "Moist heat"},
			Exercises:         []string{"McGill big three", "Hip hinge training", "Walking program"},
			ExpectedOutcome:   "Meaningful pain and function gains within the first month of care",
			TypicalDuration:   "4-6 weeks",
			Prognosis:         "Good; most mechanical low back pain responds well to conservative care",
			EvidenceLevel:     "A",
			Alternatives:      []string{"Activator Method", "Instrument-assisted mobilization"},
			Contraindications: []string{"ci-spinal-fracture", "ci-cauda-equina", "ci-spinal-malignancy"},
		},
		{
			Condition:         "Neck pain, mechanical",
			Codes:             []string{"M54.2", "M99.01", "M43.6"},
			PrimaryTechniques: []string{"Diversified Technique", "Cervical Mobilization"},
			AdjunctTherapies:  []string{"Manual traction", "Soft tissue therapy"},
			Exercises:         []string{"Deep neck flexor training", "Scapular retraining"},
			ExpectedOutcome:   "Reduced pain and restored rotation within 3-5 weeks",
			TypicalDuration:   "3-5 weeks",
			Prognosis:         "Good with active care participation",
			EvidenceLevel:     "A",
			Alternatives:      []string{"Activator Method", "Thoracic manipulation"},
			Contraindications: []string{"ci-vbi-cervical", "ci-rheumatoid-cervical"},
		},
		{
			Condition:         "Lumbar radiculopathy / disc involvement",
			Codes:             []string{"M54.16", "M54.30", "M51"},
			PrimaryTechniques: []string{"Flexion-Distraction", "Neural mobilization"},
			AdjunctTherapies:  []string{"Mechanical traction", "Low-level laser"},
			Exercises:         []string{"Directional preference exercise", "Nerve glides"},
			ExpectedOutcome:   "Centralization of leg symptoms, then functional recovery",
			TypicalDuration:   "6-10 weeks",
			Prognosis:         "Fair to good; slower than uncomplicated back pain",
			EvidenceLevel:     "B",
			Alternatives:      []string{"McKenzie protocol", "Co-managed epidural referral"},
			Contraindications: []string{"ci-cauda-equina", "ci-spinal-fracture"},
		},
		{
			Condition:         "Cervical radiculopathy / disc involvement",
			Codes:             []string{"M54.12", "M50", "M53.1"},
			PrimaryTechniques: []string{"Cervical Mobilization", "Neural mobilization"},
			AdjunctTherapies:  []string{"Manual traction", "Postural retraining"},
			Exercises:         []string{"Nerve glides", "Deep neck flexor training"},
			ExpectedOutcome:   "Arm symptom centralization within 4-6 weeks",
			TypicalDuration:   "6-8 weeks",
			Prognosis:         "Fair to good; avoid end-range loading early",
			EvidenceLevel:     "B",
			Alternatives:      []string{"Mechanical traction program"},
			Contraindications: []string{"ci-vbi-cervical", "ci-rheumatoid-cervical"},
		},
		{
			Condition:         "Degenerative spondylosis",
			Codes:             []string{"M47"},
			PrimaryTechniques: []string{"Mobilization", "Activator Method"},
			AdjunctTherapies:  []string{"Moist heat", "Therapeutic ultrasound"},
			Exercises:         []string{"Graded walking", "Core endurance", "Flexibility program"},
			ExpectedOutcome:   "Symptom management and functional maintenance",
			TypicalDuration:   "8-12 weeks, then maintenance",
			Prognosis:         "Guarded for full resolution; good for management",
			EvidenceLevel:     "B",
			Alternatives:      []string{"Aquatic exercise program"},
			Contraindications: []string{"ci-osteoporosis"},
		},
		{
			Condition:         "Whiplash-associated disorder",
			Codes:             []string{"S13.4"},
			PrimaryTechniques: []string{"Gentle Mobilization", "Soft tissue therapy"},
			AdjunctTherapies:  []string{"Early active motion guidance", "Heat/ice counseling"},
			Exercises:         []string{"Range of motion program", "Isometric progression"},
			ExpectedOutcome:   "Graded return to full motion over 6-8 weeks",
			TypicalDuration:   "6-8 weeks",
			Prognosis:         "Good for grade I-II; guarded for grade III",
			EvidenceLevel:     "B",
			Alternatives:      []string{"Multimodal rehab referral"},
			Contraindications: []string{"ci-recent-trauma", "ci-spinal-fracture"},
		},
		{
			Condition:         "Tension-type headache",
			Codes:             []string{"G44.2"},
			PrimaryTechniques: []string{"Suboccipital release", "Cervical Mobilization"},
			AdjunctTherapies:  []string{"Trigger point therapy", "Ergonomic counseling"},
			Exercises:         []string{"Postural endurance", "Stress-management pacing"},
			ExpectedOutcome:   "Reduced headache frequency within a month",
			TypicalDuration:   "4-6 weeks",
			Prognosis:         "Good when cervicogenic contribution is present",
			EvidenceLevel:     "B",
			Alternatives:      []string{"Co-managed pharmacologic care"},
			Contraindications: []string{"ci-vbi-cervical"},
		},
	}
}
