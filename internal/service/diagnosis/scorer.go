package diagnosis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwalitptl/cds-engine/internal/extractor"
	"github.com/jwalitptl/cds-engine/internal/knowledge"
	"github.com/jwalitptl/cds-engine/internal/model"
)

// Scoring weights. Entries at or below the discard threshold never reach
// the caller.
const (
	complaintWordScore = 20
	keywordScore       = 15
	regionBonus        = 25
	commonBonus        = 10
	discardThreshold   = 20
	maxConfidence      = 100
)

type scoredEntry struct {
	Entry      model.CatalogEntry
	Confidence int
	Evidence   []string
	Reasoning  string
	Source     string
}

// scoreCatalog ranks every catalog entry against the extracted evidence.
// Results come back sorted by confidence descending, catalog order breaking
// ties.
func scoreCatalog(cat *knowledge.Catalog, chiefComplaint string, ev *extractor.Evidence) []scoredEntry {
	complaintWords := complaintWords(chiefComplaint)

	var results []scoredEntry
	for _, entry := range cat.Diagnoses {
		desc := strings.ToLower(entry.Description)
		score := 0
		var evidence []string

		for _, w := range complaintWords {
			if strings.Contains(desc, w) {
				score += complaintWordScore
				evidence = append(evidence, fmt.Sprintf("complaint mentions %q", w))
			}
		}
		for _, kw := range ev.Keywords {
			if strings.Contains(desc, kw) {
				score += keywordScore
				evidence = append(evidence, fmt.Sprintf("documented %q", kw))
			}
		}
		if regionIndicated(entry.BodyRegion, ev) {
			score += regionBonus
			evidence = append(evidence, fmt.Sprintf("symptoms localize to the %s region", entry.BodyRegion))
		}
		if entry.Common {
			score += commonBonus
		}

		if score > maxConfidence {
			score = maxConfidence
		}
		if score <= discardThreshold {
			continue
		}

		results = append(results, scoredEntry{
			Entry:      entry,
			Confidence: score,
			Evidence:   evidence,
			Reasoning:  buildReasoning(entry, evidence),
			Source:     sourceRules,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results
}

// complaintWords keeps complaint words longer than three characters.
func complaintWords(complaint string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(complaint)) {
		w = strings.Trim(w, ".,;:!?()")
		if len(w) > 3 {
			words = append(words, w)
		}
	}
	return words
}

func regionIndicated(region string, ev *extractor.Evidence) bool {
	for _, syn := range knowledge.RegionSynonyms[region] {
		if ev.TextContains(syn) || ev.HasKeyword(syn) {
			return true
		}
	}
	return false
}

func buildReasoning(entry model.CatalogEntry, evidence []string) string {
	if len(evidence) == 0 {
		return fmt.Sprintf("%s is a common presentation for this complaint profile", entry.Description)
	}
	return fmt.Sprintf("%s matches the documented presentation: %s",
		entry.Description, strings.Join(evidence, "; "))
}
