// Package causal connects cause-effect event pairs via a fixed rule set.
//
// Rules are pure: each scans the event list and returns candidate links
// without touching the events. Link applies the rules in registry order,
// deduplicates on (cause, effect) with the first rule winning, and builds
// an adjacency map. Annotate is a separate idempotent step that writes the
// adjacency onto the events.
package causal

import (
	"fmt"
	"time"

	"github.com/wellsite-tools/mudwatch/internal/event"
)

// Confidence grades a link.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
)

// Link records one directed cause-effect connection.
type Link struct {
	CauseEventID  string     `json:"cause_event_id"`
	EffectEventID string     `json:"effect_event_id"`
	RuleName      string     `json:"rule_name"`
	Explanation   string     `json:"explanation"`
	Confidence    Confidence `json:"confidence"`
}

// Rule is one registered linking rule.
type Rule struct {
	Name string
	Run  func(events []event.Event) []Link
}

// Rules is the ordered registry. Order matters: on a duplicate
// (cause, effect) pair the earlier rule's link survives.
var Rules = []Rule{
	{"screen_failure_from_solids", ruleScreenFailureFromSolids},
	{"lgs_from_centrifuge_down", ruleLGSFromCentrifugeDown},
	{"rheology_from_new_chemical", ruleRheologyFromNewChemical},
	{"rheology_from_lgs", ruleRheologyFromLGS},
	{"weight_up_operation", ruleWeightUpOperation},
	{"screen_change_preventive", ruleScreenChangePreventive},
	{"dilution_effective", ruleDilutionEffective},
}

// Result carries the deduplicated links and the adjacency they induce.
type Result struct {
	Links     []Link
	Adjacency map[string][]string
}

// LinkEvents applies every rule and deduplicates by (cause, effect) pair,
// keeping the first rule's link. Events are not modified.
func LinkEvents(events []event.Event) Result {
	var links []Link
	seen := map[[2]string]bool{}
	adjacency := map[string][]string{}

	for _, rule := range Rules {
		for _, l := range rule.Run(events) {
			pair := [2]string{l.CauseEventID, l.EffectEventID}
			if seen[pair] {
				continue
			}
			seen[pair] = true
			links = append(links, l)
			addEdge(adjacency, l.CauseEventID, l.EffectEventID)
			addEdge(adjacency, l.EffectEventID, l.CauseEventID)
		}
	}
	return Result{Links: links, Adjacency: adjacency}
}

func addEdge(adj map[string][]string, from, to string) {
	for _, existing := range adj[from] {
		if existing == to {
			return
		}
	}
	adj[from] = append(adj[from], to)
}

// Annotate writes the adjacency onto each event's Related list. Replaces
// rather than appends, so running it twice yields the same result.
func Annotate(events []event.Event, adjacency map[string][]string) {
	for i := range events {
		if related, ok := adjacency[events[i].ID]; ok {
			events[i].Related = append([]string(nil), related...)
		} else {
			events[i].Related = nil
		}
	}
}

// parseDate panics never: callers only pass dates produced by the timeline
// assembler, which are valid ISO. Invalid input yields the zero time and
// the window check simply fails.
func parseDate(iso string) time.Time {
	t, _ := time.Parse("2006-01-02", iso)
	return t
}

// inWindow reports whether causeDate falls within
// [effectDate - daysBack, effectDate + daysForward].
func inWindow(causeDate, effectDate string, daysBack, daysForward int) bool {
	cd := parseDate(causeDate)
	ed := parseDate(effectDate)
	if cd.IsZero() || ed.IsZero() {
		return false
	}
	return !cd.Before(ed.AddDate(0, 0, -daysBack)) && !cd.After(ed.AddDate(0, 0, daysForward))
}

func ofType(events []event.Event, types ...event.Type) []event.Event {
	var out []event.Event
	for _, e := range events {
		for _, t := range types {
			if e.Type == t {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func strValue(e event.Event, key, fallback string) string {
	if v, ok := e.Values[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// ruleScreenFailureFromSolids: solids spike or sand increase within 1 day
// before a shaker going down. HIGH.
func ruleScreenFailureFromSolids(events []event.Event) []Link {
	var links []Link
	causes := ofType(events, event.TypeSolidsSpike, event.TypeSandIncrease)
	effects := ofType(events, event.TypeShakerDown)
	for _, effect := range effects {
		for _, cause := range causes {
			if !inWindow(cause.Date, effect.Date, 1, 0) {
				continue
			}
			causeLabel := "sand increase"
			if cause.Type == event.TypeSolidsSpike {
				causeLabel = "elevated solids"
			}
			links = append(links, Link{
				CauseEventID:  cause.ID,
				EffectEventID: effect.ID,
				RuleName:      "screen_failure_from_solids",
				Explanation:   fmt.Sprintf("%s likely caused by %s on %s.", effect.Title, causeLabel, cause.Date),
				Confidence:    ConfidenceHigh,
			})
		}
	}
	return links
}

// ruleLGSFromCentrifugeDown: centrifuge downtime within 3 days before LGS
// creep. HIGH.
func ruleLGSFromCentrifugeDown(events []event.Event) []Link {
	var links []Link
	causes := ofType(events, event.TypeCentrifugeDown)
	effects := ofType(events, event.TypeLGSCreep)
	for _, effect := range effects {
		for _, cause := range causes {
			if !inWindow(cause.Date, effect.Date, 3, 0) {
				continue
			}
			links = append(links, Link{
				CauseEventID:  cause.ID,
				EffectEventID: effect.ID,
				RuleName:      "lgs_from_centrifuge_down",
				Explanation: fmt.Sprintf("LGS accumulation correlates with %s downtime on %s.",
					strValue(cause, "centrifuge", "centrifuge"), cause.Date),
				Confidence: ConfidenceHigh,
			})
		}
	}
	return links
}

// ruleRheologyFromNewChemical: new chemical within 1 day before a rheology
// shift. HIGH.
func ruleRheologyFromNewChemical(events []event.Event) []Link {
	var links []Link
	causes := ofType(events, event.TypeNewChemical)
	effects := ofType(events, event.TypeRheologyShift)
	for _, effect := range effects {
		for _, cause := range causes {
			if !inWindow(cause.Date, effect.Date, 1, 0) {
				continue
			}
			links = append(links, Link{
				CauseEventID:  cause.ID,
				EffectEventID: effect.ID,
				RuleName:      "rheology_from_new_chemical",
				Explanation: fmt.Sprintf("Rheology change follows introduction of '%s' on %s.",
					strValue(cause, "item_name", "new chemical"), cause.Date),
				Confidence: ConfidenceHigh,
			})
		}
	}
	return links
}

// ruleRheologyFromLGS: LGS creep within 3 days before an upward rheology
// shift. MEDIUM.
func ruleRheologyFromLGS(events []event.Event) []Link {
	var links []Link
	causes := ofType(events, event.TypeLGSCreep)
	for _, effect := range ofType(events, event.TypeRheologyShift) {
		if strValue(effect, "direction", "") != "UP" {
			continue
		}
		for _, cause := range causes {
			if !inWindow(cause.Date, effect.Date, 3, 0) {
				continue
			}
			delta := "?"
			if v, ok := cause.Values["delta"].(float64); ok {
				delta = fmt.Sprintf("%v", v)
			}
			links = append(links, Link{
				CauseEventID:  cause.ID,
				EffectEventID: effect.ID,
				RuleName:      "rheology_from_lgs",
				Explanation:   fmt.Sprintf("Increasing PV/YP consistent with LGS buildup (+%s%% over 3 days).", delta),
				Confidence:    ConfidenceMedium,
			})
		}
	}
	return links
}

// ruleWeightUpOperation: weight-up on the same day as a weighting agent
// addition signal. HIGH.
func ruleWeightUpOperation(events []event.Event) []Link {
	var links []Link
	effects := ofType(events, event.TypeWeightUp)
	var causes []event.Event
	for _, e := range events {
		if (e.Type == event.TypeNewChemical || e.Type == event.TypeChemicalSpike) &&
			strValue(e, "category", "") == "Weighting Agent" {
			causes = append(causes, e)
		}
	}
	for _, effect := range effects {
		for _, cause := range causes {
			if cause.Date != effect.Date {
				continue
			}
			links = append(links, Link{
				CauseEventID:  cause.ID,
				EffectEventID: effect.ID,
				RuleName:      "weight_up_operation",
				Explanation: fmt.Sprintf("Planned weight-up operation with %s.",
					strValue(cause, "item_name", "weighting agent")),
				Confidence: ConfidenceHigh,
			})
		}
	}
	return links
}

// ruleScreenChangePreventive: sand increase 1 to 3 days before a screen
// change, strictly earlier. MEDIUM.
func ruleScreenChangePreventive(events []event.Event) []Link {
	var links []Link
	causes := ofType(events, event.TypeSandIncrease)
	effects := ofType(events, event.TypeScreenChange)
	for _, effect := range effects {
		for _, cause := range causes {
			cd := parseDate(cause.Date)
			ed := parseDate(effect.Date)
			if cd.IsZero() || ed.IsZero() {
				continue
			}
			gap := ed.Sub(cd).Hours() / 24
			if gap < 1 || gap > 3 {
				continue
			}
			links = append(links, Link{
				CauseEventID:  cause.ID,
				EffectEventID: effect.ID,
				RuleName:      "screen_change_preventive",
				Explanation:   fmt.Sprintf("Screen mesh changed in response to sand trend (sand increase on %s).", cause.Date),
				Confidence:    ConfidenceMedium,
			})
		}
	}
	return links
}

// ruleDilutionEffective: downward rheology shift on the dilution day or the
// day after. MEDIUM.
func ruleDilutionEffective(events []event.Event) []Link {
	var links []Link
	causes := ofType(events, event.TypeDilution)
	for _, cause := range causes {
		for _, effect := range ofType(events, event.TypeRheologyShift) {
			if strValue(effect, "direction", "") != "DOWN" {
				continue
			}
			if !inWindow(cause.Date, effect.Date, 1, 0) {
				continue
			}
			links = append(links, Link{
				CauseEventID:  cause.ID,
				EffectEventID: effect.ID,
				RuleName:      "dilution_effective",
				Explanation:   "Dilution treatment successfully reduced rheology.",
				Confidence:    ConfidenceMedium,
			})
		}
	}
	return links
}
