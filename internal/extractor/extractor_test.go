package extractor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/cds-engine/internal/model"
)

func TestClassifyDuration(t *testing.T) {
	tests := []struct {
		name string
		text string
		want DurationClass
	}{
		{"empty", "", DurationUnknown},
		{"years", "back pain for 2 years", DurationChronic},
		{"months chronic", "symptoms for 6 months", DurationChronic},
		{"over a year", "pain for over a year", DurationChronic},
		{"subacute weeks", "neck pain for 6 weeks", DurationSubacute},
		{"one month", "shoulder pain for 1 month", DurationSubacute},
		{"acute days", "started 3 days ago", DurationAcute},
		{"acute week", "pain since this week", DurationAcute},
		{"acute terms", "sudden onset of low back pain", DurationAcute},
		{"no signal", "low back pain with stiffness", DurationUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDuration(tt.text))
		})
	}
}

func TestClassifyDurationChronicWinsOverAcute(t *testing.T) {
	// Chronic phrasing outranks acute phrasing in the same note.
	got := ClassifyDuration("pain for 2 years, much worse this week")
	assert.Equal(t, DurationChronic, got)
}

func TestClassifyAcuity(t *testing.T) {
	assert.Equal(t, AcuityWellness, ClassifyAcuity("here for maintenance care", DurationUnknown))
	assert.Equal(t, AcuityChronic, ClassifyAcuity("ongoing neck pain", DurationChronic))
	assert.Equal(t, AcuityAcute, ClassifyAcuity("hurt yesterday", DurationAcute))
	assert.Equal(t, AcuitySubacute, ClassifyAcuity("neck pain", DurationUnknown))
}

func TestExtractKeywordsAndText(t *testing.T) {
	ev := Extract(Input{
		ChiefComplaint: "Severe low back pain",
		ClinicalNotes:  "Patient reports numbness in left leg",
		Conditions:     []string{"Osteoporosis"},
		Medications:    []string{"Warfarin"},
		Age:            62,
	})

	assert.True(t, ev.TextContains("low back pain"))
	assert.True(t, ev.TextContains("numbness"))
	assert.True(t, ev.HasKeyword("osteoporosis"))
	assert.True(t, ev.HasKeyword("warfarin"))
	assert.Equal(t, 62, ev.Age)
	assert.Equal(t, []string{"osteoporosis"}, ev.Conditions)
	assert.Equal(t, []string{"warfarin"}, ev.Medications)

	// Stop words never become keywords.
	assert.False(t, ev.HasKeyword("patient"))
	assert.False(t, ev.HasKeyword("reports"))
}

func TestExtractEmptyInputIsTotal(t *testing.T) {
	ev := Extract(Input{})
	assert.Empty(t, ev.Keywords)
	assert.Equal(t, DurationUnknown, ev.Duration)
	assert.False(t, ev.HasKeyword(""))
	assert.False(t, ev.TextContains(""))
}

func TestExtractSurgeryWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ev := Extract(Input{
		Now: now,
		Surgeries: []model.SurgeryEvent{
			{Name: "Lumbar fusion", Date: now.AddDate(0, -2, 0)},
			{Name: "Appendectomy", Date: now.AddDate(-2, 0, 0)},
			{Name: "Scheduled discectomy", Date: now.AddDate(0, 1, 0)},
		},
	})

	assert.Len(t, ev.RecentSurgeries, 1)
	assert.Equal(t, "Lumbar fusion", ev.RecentSurgeries[0].Name)
	assert.True(t, ev.HasKeyword("lumbar fusion"))
}

func TestExtractTraumaWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ev := Extract(Input{
		Now: now,
		Traumas: []model.TraumaEvent{
			{Description: "Car accident", Date: now.AddDate(0, 0, -7)},
			{Description: "Fall from ladder", Date: now.AddDate(0, 0, -30)},
		},
	})

	assert.Len(t, ev.RecentTraumas, 1)
	assert.Equal(t, "Car accident", ev.RecentTraumas[0].Description)
}

func TestExtractDeduplicatesKeywords(t *testing.T) {
	ev := Extract(Input{
		ChiefComplaint: "neck pain neck pain",
		Conditions:     []string{"neck pain"},
	})

	count := 0
	for _, k := range ev.Keywords {
		if k == "neck" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
