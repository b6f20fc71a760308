package narrative

import (
	"strings"
	"testing"

	"github.com/wellsite-tools/mudwatch/internal/causal"
	"github.com/wellsite-tools/mudwatch/internal/event"
	"github.com/wellsite-tools/mudwatch/internal/timeline"
)

func fp(v float64) *float64 { return &v }

func TestFillResolvesKnownPlaceholders(t *testing.T) {
	got := fill("{shaker} dropped to {hours}h.", map[string]any{
		"shaker": "Shaker 1",
		"hours":  7.5,
	})
	if got != "Shaker 1 dropped to 7.5h." {
		t.Errorf("unexpected fill result %q", got)
	}
}

func TestFillLeavesUnknownPlaceholdersVerbatim(t *testing.T) {
	got := fill("value {present} and {missing}", map[string]any{"present": 1.0})
	if got != "value 1 and {missing}" {
		t.Errorf("unexpected fill result %q", got)
	}
}

func TestFillNilValue(t *testing.T) {
	got := fill("prev {prev}", map[string]any{"prev": nil})
	if got != "prev n/a" {
		t.Errorf("unexpected fill result %q", got)
	}
}

func TestGenerateInsightsOrdersBySeverity(t *testing.T) {
	events := []event.Event{
		{ID: "low", Type: event.TypeDilution, Severity: event.SeverityLow, Date: "2018-03-05",
			Values: map[string]any{"prev_mw": 9.0, "curr_mw": 8.7}},
		{ID: "high", Type: event.TypeSolidsSpike, Severity: event.SeverityHigh, Date: "2018-03-05",
			Values: map[string]any{"prev": 5.0, "curr": 6.5, "change_pct": 30.0}},
		{ID: "med", Type: event.TypeWeightUp, Severity: event.SeverityMedium, Date: "2018-03-05",
			Values: map[string]any{"prev": 8.6, "curr": 9.1, "delta": 0.5}},
	}
	result := GenerateInsights("2018-03-05", events, nil, timeline.Day{Date: "2018-03-05"})

	if len(result.Insights) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(result.Insights))
	}
	order := []event.Severity{event.SeverityHigh, event.SeverityMedium, event.SeverityLow}
	for i, want := range order {
		if result.Insights[i].Severity != want {
			t.Errorf("insight %d severity = %s, want %s", i, result.Insights[i].Severity, want)
		}
	}
	if result.Insights[0].Title != "Solids Content Spike" {
		t.Errorf("unexpected title %q", result.Insights[0].Title)
	}
	if result.Insights[0].Narrative != "Total solids increased 30% in one day (from 5% to 6.5%)." {
		t.Errorf("unexpected narrative %q", result.Insights[0].Narrative)
	}
}

func TestCausePicksHighestConfidence(t *testing.T) {
	events := []event.Event{
		{ID: "eff", Type: event.TypeRheologyShift, Severity: event.SeverityMedium,
			Date: "2018-03-05", Values: map[string]any{"direction": "UP"}},
	}
	links := []causal.Link{
		{CauseEventID: "c1", EffectEventID: "eff", RuleName: "rheology_from_lgs",
			Explanation: "medium cause", Confidence: causal.ConfidenceMedium},
		{CauseEventID: "c2", EffectEventID: "eff", RuleName: "rheology_from_new_chemical",
			Explanation: "high cause", Confidence: causal.ConfidenceHigh},
	}
	result := GenerateInsights("2018-03-05", events, links, timeline.Day{})
	if result.Insights[0].Cause == nil {
		t.Fatal("expected a cause")
	}
	if *result.Insights[0].Cause != "Likely cause: high cause" {
		t.Errorf("unexpected cause %q", *result.Insights[0].Cause)
	}
}

func TestRheologyDirVerb(t *testing.T) {
	events := []event.Event{
		{ID: "e", Type: event.TypeRheologyShift, Severity: event.SeverityMedium,
			Date: "2018-03-05", Values: map[string]any{"direction": "DOWN"}},
	}
	result := GenerateInsights("2018-03-05", events, nil, timeline.Day{})
	if !strings.Contains(result.Insights[0].Recommendation, "decreasing") {
		t.Errorf("expected decreasing verb, got %q", result.Insights[0].Recommendation)
	}
}

func TestFallbackTemplate(t *testing.T) {
	events := []event.Event{
		{ID: "e", Type: event.Type("mystery"), Severity: event.SeverityLow,
			Date: "2018-03-05", Description: "something odd happened",
			Values: map[string]any{}},
	}
	result := GenerateInsights("2018-03-05", events, nil, timeline.Day{})
	if result.Insights[0].Title != "Event Detected" {
		t.Errorf("unexpected title %q", result.Insights[0].Title)
	}
	if result.Insights[0].Narrative != "something odd happened" {
		t.Errorf("fallback must narrate the description, got %q", result.Insights[0].Narrative)
	}
}

func TestShiftNotes(t *testing.T) {
	day := timeline.Day{
		Date: "2018-03-05",
		MudByShift: map[string]timeline.MudProperties{
			timeline.ShiftDay: {
				MudWeight: fp(8.7), PV: fp(12), YP: fp(38),
				Solids: fp(4.2), Sand: fp(0.3), LGS: fp(3.1), PH: fp(9.6),
				SampleCount: 2,
			},
		},
	}
	result := GenerateInsights("2018-03-05", nil, nil, day)

	note := result.ShiftNotes[timeline.ShiftDay]
	if !strings.HasPrefix(note, "Day shift (2 samples): ") {
		t.Errorf("unexpected note prefix %q", note)
	}
	// Capped at five properties: pH and LGS fall off.
	if strings.Contains(note, "pH") {
		t.Errorf("expected at most 5 properties, got %q", note)
	}
	if !strings.Contains(note, "MW 8.7 ppg") || !strings.Contains(note, "Sand 0.3 %") {
		t.Errorf("missing properties in %q", note)
	}

	for _, shift := range []string{timeline.ShiftEvening, timeline.ShiftNight} {
		want := "No samples recorded during " + shift + " shift."
		if result.ShiftNotes[shift] != want {
			t.Errorf("shift %s note = %q, want %q", shift, result.ShiftNotes[shift], want)
		}
	}
}

func TestSummaryLine(t *testing.T) {
	quiet := GenerateInsights("2018-03-05", nil, nil, timeline.Day{})
	if quiet.Summary != "Normal operations. All equipment and mud properties within expected parameters." {
		t.Errorf("unexpected quiet summary %q", quiet.Summary)
	}

	events := []event.Event{
		{ID: "a", Type: event.TypeSolidsSpike, Severity: event.SeverityHigh,
			Date: "2018-03-05", Title: "Solids Spike", Values: map[string]any{}},
		{ID: "b", Type: event.TypeWeightUp, Severity: event.SeverityMedium,
			Date: "2018-03-05", Title: "Weight Up", Values: map[string]any{}},
	}
	busy := GenerateInsights("2018-03-05", events, nil, timeline.Day{})
	if busy.Summary != "2 events detected including 1 high-severity — Solids Spike." {
		t.Errorf("unexpected summary %q", busy.Summary)
	}
}

func TestRecommendationsDeduplicated(t *testing.T) {
	// Two weight-up events share a recommendation template; it must
	// appear once.
	events := []event.Event{
		{ID: "a", Type: event.TypeWeightUp, Severity: event.SeverityMedium,
			Date: "2018-03-05", Values: map[string]any{"prev": 8.6, "curr": 9.1, "delta": 0.5}},
		{ID: "b", Type: event.TypeWeightUp, Severity: event.SeverityMedium,
			Date: "2018-03-05", Values: map[string]any{"prev": 9.1, "curr": 9.6, "delta": 0.5}},
	}
	result := GenerateInsights("2018-03-05", events, nil, timeline.Day{})
	if len(result.Recommendations) != 1 {
		t.Errorf("expected 1 deduplicated recommendation, got %d", len(result.Recommendations))
	}
}
