package knowledge

import "github.com/jwalitptl/cds-engine/internal/model"

// diagnosisCatalog returns the ICD-10 subset the engine can suggest.
// Common entries get a scoring bonus.
func diagnosisCatalog() []model.CatalogEntry {
	return []model.CatalogEntry{
		{Code: "M54.5", Description: "Low back pain", BodyRegion: "lumbar", Common: true},
		{Code: "M54.2", Description: "Cervicalgia (neck pain)", BodyRegion: "cervical", Common: true},
		{Code: "M54.6", Description: "Pain in thoracic spine", BodyRegion: "thoracic", Common: true},
		{Code: "M54.16", Description: "Radiculopathy, lumbar region", BodyRegion: "lumbar", Common: true},
		{Code: "M54.12", Description: "Radiculopathy, cervical region", BodyRegion: "cervical", Common: false},
		{Code: "M54.30", Description: "Sciatica, unspecified side", BodyRegion: "lumbar", Common: true},
		{Code: "M51.26", Description: "Intervertebral disc displacement, lumbar region", BodyRegion: "lumbar", Common: false},
		{Code: "M50.20", Description: "Cervical disc displacement, unspecified level", BodyRegion: "cervical", Common: false},
		{Code: "M47.816", Description: "Spondylosis without myelopathy, lumbar region", BodyRegion: "lumbar", Common: false},
		{Code: "M47.812", Description: "Spondylosis without myelopathy, cervical region", BodyRegion: "cervical", Common: false},
		{Code: "M53.1", Description: "Cervicobrachial syndrome", BodyRegion: "cervical", Common: false},
		{Code: "S13.4XXA", Description: "Sprain of ligaments of cervical spine (whiplash), initial encounter", BodyRegion: "cervical", Common: false},
		{Code: "M62.830", Description: "Muscle spasm of back", BodyRegion: "lumbar", Common: true},
		{Code: "M99.01", Description: "Segmental and somatic dysfunction of cervical region", BodyRegion: "cervical", Common: true},
		{Code: "M99.03", Description: "Segmental and somatic dysfunction of lumbar region", BodyRegion: "lumbar", Common: true},
		{Code: "G44.209", Description: "Tension-type headache, unspecified, not intractable", BodyRegion: "head", Common: true},
		{Code: "M25.511", Description: "Pain in right shoulder", BodyRegion: "shoulder", Common: false},
		{Code: "M79.1", Description: "Myalgia", BodyRegion: "lumbar", Common: false},
		{Code: "M43.6", Description: "Torticollis", BodyRegion: "cervical", Common: false},
		{Code: "M53.3", Description: "Sacrococcygeal disorders, not elsewhere classified", BodyRegion: "lumbar", Common: false},
	}
}
