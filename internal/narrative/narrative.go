// Package narrative turns events and causal links into plain-English
// insights for shift handover.
//
// Template based: one template per event type, filled from the event's
// values bag. Causal links contribute "Likely cause" sentences. Shift
// notes summarise per-shift mud properties.
package narrative

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wellsite-tools/mudwatch/internal/causal"
	"github.com/wellsite-tools/mudwatch/internal/event"
	"github.com/wellsite-tools/mudwatch/internal/timeline"
)

type template struct {
	Title          string
	Narrative      string
	Recommendation string
}

var templates = map[event.Type]template{
	// Equipment.
	event.TypeShakerDown: {
		Title:          "Shaker Underperformance",
		Narrative:      "{shaker} hours dropped to {hours}h, {drop_pct}% below the 7-day average of {prev_avg}h.",
		Recommendation: "Inspect {shaker} screens for blinding or damage. If hours remain low, consider a screen change or equipment review.",
	},
	event.TypeScreenChange: {
		Title:          "Screen Mesh Change",
		Narrative:      "{shaker} mesh changed from {prev_mesh} to {new_mesh}.",
		Recommendation: "Monitor shaker performance for improved solids removal with the new mesh configuration.",
	},
	event.TypeCentrifugeDown: {
		Title:          "Centrifuge Downtime",
		Narrative:      "{centrifuge} hours dropped to {hours}h, {drop_pct}% below the 7-day average of {prev_avg}h.",
		Recommendation: "Check centrifuge for mechanical issues. Monitor LGS levels since reduced centrifuge capacity may cause LGS accumulation.",
	},
	event.TypeCentrifugeFeedChange: {
		Title:          "Centrifuge Feed Rate Change",
		Narrative:      "Centrifuge feed rate changed ({change_pct}% change).",
		Recommendation: "Verify the feed rate adjustment is producing the desired separation. Monitor overflow and underflow quality.",
	},
	event.TypeHydrocycloneDown: {
		Title:          "Hydrocyclone Downtime",
		Narrative:      "{unit} hours dropped to {hours}h, {drop_pct}% below the 7-day average of {prev_avg}h.",
		Recommendation: "Inspect {unit} cones for plugging or wear. Reduced hydrocyclone time may impact fine solids removal.",
	},
	event.TypeEquipmentStartup: {
		Title:          "Equipment Started",
		Narrative:      "{equipment} was brought online ({hours}h recorded).",
		Recommendation: "Verify {equipment} is operating within expected parameters after startup.",
	},

	// Mud properties.
	event.TypeSolidsSpike: {
		Title:          "Solids Content Spike",
		Narrative:      "Total solids increased {change_pct}% in one day (from {prev}% to {curr}%).",
		Recommendation: "Increase solids-control equipment run time. If drilling rate is high, consider additional centrifuge capacity.",
	},
	event.TypeSandIncrease: {
		Title:          "Sand Content Increase",
		Narrative:      "Sand content reached {curr}% (previous: {prev}%).",
		Recommendation: "Check shaker screen integrity. Elevated sand indicates possible screen bypass or coarser formation.",
	},
	event.TypeLGSCreep: {
		Title:          "Low-Gravity Solids Creep",
		Narrative:      "LGS increased by {delta}% over the last {window_days} days (from {base}% to {curr}%).",
		Recommendation: "Increase centrifuge feed rate or runtime to manage LGS build-up. Consider adding a second centrifuge if available.",
	},
	event.TypeDrillSolidsRise: {
		Title:          "Drill Solids Rise",
		Narrative:      "Drill solids rose from {prev}% to {curr}% in one day (+{delta}%).",
		Recommendation: "Evaluate ROP vs. solids-control capacity. Optimize centrifuge and shaker settings to manage drill solids.",
	},
	event.TypeRheologyShift: {
		Title:          "Rheology Shift",
		Narrative:      "Rheology shifted {direction}: PV {pv} cP (avg {pv_avg}), YP {yp} (avg {yp_avg}).",
		Recommendation: "Monitor rheology trend. If PV continues {dir_verb}, evaluate dilution or chemical treatment.",
	},
	event.TypeWeightUp: {
		Title:          "Mud Weight Increase",
		Narrative:      "Mud weight increased from {prev} to {curr} ppg (+{delta} ppg).",
		Recommendation: "Confirm weight-up was planned. Monitor equivalent circulating density (ECD) and hole-cleaning efficiency at the new weight.",
	},
	event.TypeDilution: {
		Title:          "Dilution Treatment",
		Narrative:      "Mud weight decreased from {prev_mw} to {curr_mw} ppg with simultaneous water addition detected.",
		Recommendation: "Check post-dilution rheology. Verify mud weight and solids are trending toward target.",
	},
	event.TypePHShift: {
		Title:          "pH Shift",
		Narrative:      "pH changed from {prev} to {curr} ({delta} units).",
		Recommendation: "Review chemical additions that may have affected pH. Ensure pH remains within the target range (9.0-10.5).",
	},

	// Inventory.
	event.TypeNewChemical: {
		Title:          "New Chemical Introduced",
		Narrative:      "'{item_name}' ({category}) was used for the first time on this job ({quantity} {units}).",
		Recommendation: "Monitor mud properties over the next 1-2 days for impact from the new chemical addition.",
	},
	event.TypeChemicalSpike: {
		Title:          "Chemical Usage Spike",
		Narrative:      "'{item_name}' usage spiked to {quantity}, {multiple}x the 7-day average of {avg_7d}.",
		Recommendation: "Verify the high usage was intentional. Check for any correlation with mud property changes.",
	},
	event.TypeLargeFormationLoss: {
		Title:          "Large Formation Loss",
		Narrative:      "Formation loss of {quantity} {units} recorded, exceeding the 100 bbl threshold.",
		Recommendation: "Evaluate lost circulation material (LCM) pill. Monitor pit levels and maintain adequate reserves.",
	},
	event.TypeHighSCRemoval: {
		Title:          "High Solids-Control Removal",
		Narrative:      "Solids-control equipment removed {daily_removal}, above the 7-day baseline of {avg_7d}.",
		Recommendation: "Positive signal: equipment is actively removing solids. Verify removal volume matches centrifuge/screen discharge estimates.",
	},
}

// fallback covers any event type without a registered template.
var fallback = template{
	Title:          "Event Detected",
	Narrative:      "{description}",
	Recommendation: "Review the event data and take appropriate action.",
}

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// fill resolves {key} placeholders against the values bag. Placeholders
// with no matching key stay verbatim so a template gap is visible instead
// of silently blank.
func fill(tmpl string, values map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := match[1 : len(match)-1]
		v, ok := values[key]
		if !ok {
			return match
		}
		return formatValue(v)
	})
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "n/a"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Insight is one narrated event.
type Insight struct {
	Severity       event.Severity `json:"severity"`
	Title          string         `json:"title"`
	Narrative      string         `json:"narrative"`
	Cause          *string        `json:"cause"`
	Recommendation string         `json:"recommendation"`
	EventType      event.Type     `json:"event_type"`
	Values         map[string]any `json:"values"`
}

// InsightsResult is the full narrated view of one day.
type InsightsResult struct {
	Date            string            `json:"date"`
	Summary         string            `json:"summary"`
	Insights        []Insight         `json:"insights"`
	ShiftNotes      map[string]string `json:"shift_notes"`
	Recommendations []string          `json:"recommendations"`
}

// causeText picks the highest-confidence explanation among links where the
// event is the effect, or nil when the event has no known cause.
func causeText(evt event.Event, links []causal.Link) *string {
	var best *causal.Link
	for i := range links {
		l := &links[i]
		if l.EffectEventID != evt.ID {
			continue
		}
		if best == nil || (l.Confidence == causal.ConfidenceHigh && best.Confidence != causal.ConfidenceHigh) {
			best = l
		}
	}
	if best == nil {
		return nil
	}
	s := "Likely cause: " + best.Explanation
	return &s
}

// GenerateInsights narrates one day's events. Events must already be
// filtered to the target date; links are filtered here.
func GenerateInsights(targetDate string, events []event.Event, links []causal.Link, day timeline.Day) InsightsResult {
	sorted := append([]event.Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Severity.Rank() != sorted[j].Severity.Rank() {
			return sorted[i].Severity.Rank() < sorted[j].Severity.Rank()
		}
		return sorted[i].Date < sorted[j].Date
	})

	insights := make([]Insight, 0, len(sorted))
	for _, evt := range sorted {
		tmpl, ok := templates[evt.Type]
		if !ok {
			tmpl = fallback
		}

		values := make(map[string]any, len(evt.Values)+2)
		for k, v := range evt.Values {
			values[k] = v
		}
		values["description"] = evt.Description
		if evt.Type == event.TypeRheologyShift {
			if dir, _ := evt.Values["direction"].(string); dir == "UP" {
				values["dir_verb"] = "increasing"
			} else {
				values["dir_verb"] = "decreasing"
			}
		}

		insights = append(insights, Insight{
			Severity:       evt.Severity,
			Title:          fill(tmpl.Title, values),
			Narrative:      fill(tmpl.Narrative, values),
			Cause:          causeText(evt, links),
			Recommendation: fill(tmpl.Recommendation, values),
			EventType:      evt.Type,
			Values:         evt.Values,
		})
	}

	shiftNotes := map[string]string{}
	for _, shift := range []string{timeline.ShiftDay, timeline.ShiftEvening, timeline.ShiftNight} {
		props, ok := day.MudByShift[shift]
		if !ok {
			shiftNotes[shift] = fmt.Sprintf("No samples recorded during %s shift.", shift)
			continue
		}
		shiftNotes[shift] = buildShiftNote(props, shift)
	}

	var recs []string
	seenRecs := map[string]bool{}
	for _, ins := range insights {
		if ins.Recommendation != "" && !seenRecs[ins.Recommendation] {
			seenRecs[ins.Recommendation] = true
			recs = append(recs, ins.Recommendation)
		}
	}
	if len(recs) > 5 {
		recs = recs[:5]
	}

	return InsightsResult{
		Date:            targetDate,
		Summary:         summaryLine(sorted),
		Insights:        insights,
		ShiftNotes:      shiftNotes,
		Recommendations: recs,
	}
}

// shiftPropLabels caps the shift note at the five most useful properties.
var shiftPropLabels = []struct {
	get   func(timeline.MudProperties) *float64
	label string
	unit  string
}{
	{func(p timeline.MudProperties) *float64 { return p.MudWeight }, "MW", "ppg"},
	{func(p timeline.MudProperties) *float64 { return p.PV }, "PV", "cP"},
	{func(p timeline.MudProperties) *float64 { return p.YP }, "YP", "lb"},
	{func(p timeline.MudProperties) *float64 { return p.Solids }, "Solids", "%"},
	{func(p timeline.MudProperties) *float64 { return p.Sand }, "Sand", "%"},
	{func(p timeline.MudProperties) *float64 { return p.LGS }, "LGS", "%"},
	{func(p timeline.MudProperties) *float64 { return p.PH }, "pH", ""},
}

func buildShiftNote(props timeline.MudProperties, shift string) string {
	if props.SampleCount == 0 {
		return fmt.Sprintf("No samples recorded during %s shift.", shift)
	}
	var parts []string
	for _, pl := range shiftPropLabels {
		if v := pl.get(props); v != nil {
			s := pl.label + " " + strconv.FormatFloat(*v, 'g', -1, 64)
			if pl.unit != "" {
				s += " " + pl.unit
			}
			parts = append(parts, s)
		}
	}
	if len(parts) > 5 {
		parts = parts[:5]
	}
	plural := "s"
	if props.SampleCount == 1 {
		plural = ""
	}
	return fmt.Sprintf("%s shift (%d sample%s): %s.",
		strings.ToUpper(shift[:1])+shift[1:], props.SampleCount, plural, strings.Join(parts, ", "))
}

func summaryLine(sorted []event.Event) string {
	if len(sorted) == 0 {
		return "Normal operations. All equipment and mud properties within expected parameters."
	}
	highCount := 0
	for _, e := range sorted {
		if e.Severity == event.SeverityHigh {
			highCount++
		}
	}
	plural := "s"
	if len(sorted) == 1 {
		plural = ""
	}
	parts := []string{fmt.Sprintf("%d event%s detected", len(sorted), plural)}
	if highCount > 0 {
		parts = append(parts, fmt.Sprintf("including %d high-severity", highCount))
	}
	parts = append(parts, "— "+sorted[0].Title)
	return strings.Join(parts, " ") + "."
}
