package event

import (
	"fmt"

	"github.com/wellsite-tools/mudwatch/internal/timeline"
)

// detectShakerDown fires when a shaker's hours drop below 50% of its own
// 7-day rolling average. HIGH.
func detectShakerDown(days []timeline.Day, job string) []Event {
	var events []Event
	history := map[string][]*float64{}

	for i, day := range days {
		for _, shaker := range day.Equipment.Shakers {
			hist := history[shaker.Name]

			if i > 0 && len(hist) >= 1 {
				avg := rollingAvg(hist, 7)
				if avg != nil && *avg > 0 && shaker.Hours != nil && *shaker.Hours < *avg*0.5 {
					dropPct := round1((*avg - *shaker.Hours) / *avg * 100)
					events = append(events, Event{
						ID:       evtID(job, day.Date, TypeShakerDown, nameDetail(shaker.Name)),
						Type:     TypeShakerDown,
						Severity: SeverityHigh,
						Date:     day.Date,
						Title:    shaker.Name + " Down",
						Description: fmt.Sprintf("%s hours dropped to %sh, %s%% below 7-day average of %sh.",
							shaker.Name, num(*shaker.Hours), num(dropPct), num(round1(*avg))),
						Values: map[string]any{
							"shaker":   shaker.Name,
							"hours":    *shaker.Hours,
							"prev_avg": round1(*avg),
							"drop_pct": dropPct,
						},
					})
				}
			}
			history[shaker.Name] = append(hist, shaker.Hours)
		}
	}
	return events
}

// detectScreenChange fires when any of a shaker's mesh slots differs from
// the previous day (both values present). MEDIUM.
func detectScreenChange(days []timeline.Day, job string) []Event {
	var events []Event
	prevShakers := map[string]timeline.Shaker{}

	for i, day := range days {
		if i > 0 {
			for _, curr := range day.Equipment.Shakers {
				prev, ok := prevShakers[curr.Name]
				if !ok {
					continue
				}
				changed := false
				for slot := range curr.Mesh {
					c, p := curr.Mesh[slot], prev.Mesh[slot]
					if c != nil && p != nil && *c != *p {
						changed = true
						break
					}
				}
				if changed {
					events = append(events, Event{
						ID:       evtID(job, day.Date, TypeScreenChange, nameDetail(curr.Name)),
						Type:     TypeScreenChange,
						Severity: SeverityMedium,
						Date:     day.Date,
						Title:    curr.Name + " Screen Change",
						Description: fmt.Sprintf("%s mesh changed from %s to %s.",
							curr.Name, meshString(prev.Mesh), meshString(curr.Mesh)),
						Values: map[string]any{
							"shaker":    curr.Name,
							"prev_mesh": meshValues(prev.Mesh),
							"new_mesh":  meshValues(curr.Mesh),
						},
					})
				}
			}
		}
		prevShakers = shakerMap(day.Equipment)
	}
	return events
}

func meshString(mesh [4]*float64) string {
	s := "["
	for i, m := range mesh {
		if i > 0 {
			s += " "
		}
		s += numPtr(m)
	}
	return s + "]"
}

func meshValues(mesh [4]*float64) []any {
	out := make([]any, len(mesh))
	for i, m := range mesh {
		out[i] = valOrNil(m)
	}
	return out
}

// detectCentrifugeDown fires when a centrifuge's hours hit zero or fall
// below 50% of its 7-day rolling average. HIGH.
func detectCentrifugeDown(days []timeline.Day, job string) []Event {
	var events []Event
	history := map[string][]*float64{}

	for i, day := range days {
		for _, cent := range day.Equipment.Centrifuges {
			hist := history[cent.Name]

			if i > 0 && len(hist) >= 1 {
				avg := rollingAvg(hist, 7)
				if avg != nil && *avg > 0 && cent.Hours != nil && (*cent.Hours == 0 || *cent.Hours < *avg*0.5) {
					dropPct := round1((*avg - *cent.Hours) / *avg * 100)
					events = append(events, Event{
						ID:       evtID(job, day.Date, TypeCentrifugeDown, nameDetail(cent.Name)),
						Type:     TypeCentrifugeDown,
						Severity: SeverityHigh,
						Date:     day.Date,
						Title:    cent.Name + " Down",
						Description: fmt.Sprintf("%s hours dropped to %sh (%s%% below 7-day avg of %sh).",
							cent.Name, num(*cent.Hours), num(dropPct), num(round1(*avg))),
						Values: map[string]any{
							"centrifuge": cent.Name,
							"hours":      *cent.Hours,
							"prev_avg":   round1(*avg),
							"drop_pct":   dropPct,
						},
					})
				}
			}
			history[cent.Name] = append(hist, cent.Hours)
		}
	}
	return events
}

// detectCentrifugeFeedChange fires on a >25% day-over-day feed rate
// change. MEDIUM.
func detectCentrifugeFeedChange(days []timeline.Day, job string) []Event {
	var events []Event
	prevCents := map[string]timeline.Centrifuge{}

	for i, day := range days {
		if i > 0 {
			for _, curr := range day.Equipment.Centrifuges {
				prev, ok := prevCents[curr.Name]
				if !ok {
					continue
				}
				pct := pctChange(prev.FeedRate, curr.FeedRate)
				if pct != nil && (*pct > 25 || *pct < -25) {
					events = append(events, Event{
						ID:       evtID(job, day.Date, TypeCentrifugeFeedChange, nameDetail(curr.Name)),
						Type:     TypeCentrifugeFeedChange,
						Severity: SeverityMedium,
						Date:     day.Date,
						Title:    curr.Name + " Feed Rate Change",
						Description: fmt.Sprintf("%s feed rate changed from %s to %s (%s%%).",
							curr.Name, numPtr(prev.FeedRate), numPtr(curr.FeedRate), signed(round1(*pct))),
						Values: map[string]any{
							"centrifuge":     curr.Name,
							"prev_feed_rate": valOrNil(prev.FeedRate),
							"new_feed_rate":  valOrNil(curr.FeedRate),
							"change_pct":     round1(*pct),
						},
					})
				}
			}
		}
		prevCents = centrifugeMap(day.Equipment)
	}
	return events
}

// detectHydrocycloneDown fires when a desander/desilter/mud-cleaner's
// hours fall below 50% of its 7-day rolling average. MEDIUM.
func detectHydrocycloneDown(days []timeline.Day, job string) []Event {
	var events []Event
	history := map[string][]*float64{}

	for i, day := range days {
		for _, unit := range timeline.HydrocycloneUnits {
			hours := day.Equipment.Hydrocyclones[unit].Hours
			hist := history[unit]

			if i > 0 && len(hist) >= 1 {
				avg := rollingAvg(hist, 7)
				if avg != nil && *avg > 0 && hours != nil && *hours < *avg*0.5 {
					dropPct := round1((*avg - *hours) / *avg * 100)
					label := titleWords(unit)
					events = append(events, Event{
						ID:       evtID(job, day.Date, TypeHydrocycloneDown, unit),
						Type:     TypeHydrocycloneDown,
						Severity: SeverityMedium,
						Date:     day.Date,
						Title:    label + " Down",
						Description: fmt.Sprintf("%s hours dropped to %sh (%s%% below 7-day avg of %sh).",
							label, num(*hours), num(dropPct), num(round1(*avg))),
						Values: map[string]any{
							"unit":     unit,
							"hours":    *hours,
							"prev_avg": round1(*avg),
							"drop_pct": dropPct,
						},
					})
				}
			}
			history[unit] = append(hist, hours)
		}
	}
	return events
}

// detectEquipmentStartup fires when a unit's hours go from zero (or
// missing, for shakers and centrifuges) to positive versus the prior day.
// LOW.
func detectEquipmentStartup(days []timeline.Day, job string) []Event {
	var events []Event

	for i, day := range days {
		if i == 0 {
			continue
		}
		prevEq := days[i-1].Equipment

		prevShakers := shakerMap(prevEq)
		for _, curr := range day.Equipment.Shakers {
			prev, ok := prevShakers[curr.Name]
			if ok && zeroOrNil(prev.Hours) && curr.Hours != nil && *curr.Hours > 0 {
				events = append(events, startupEvent(job, day.Date, curr.Name, curr.Name, nameDetail(curr.Name), *curr.Hours))
			}
		}

		prevCents := centrifugeMap(prevEq)
		for _, curr := range day.Equipment.Centrifuges {
			prev, ok := prevCents[curr.Name]
			if ok && zeroOrNil(prev.Hours) && curr.Hours != nil && *curr.Hours > 0 {
				events = append(events, startupEvent(job, day.Date, curr.Name, curr.Name, nameDetail(curr.Name), *curr.Hours))
			}
		}

		// Hydrocyclone slots are always present, so a missing reading means
		// no data rather than an idle unit; startup needs an explicit zero.
		for _, unit := range timeline.HydrocycloneUnits {
			prevH := prevEq.Hydrocyclones[unit].Hours
			currH := day.Equipment.Hydrocyclones[unit].Hours
			if prevH != nil && *prevH == 0 && currH != nil && *currH > 0 {
				events = append(events, startupEvent(job, day.Date, titleWords(unit), unit, unit, *currH))
			}
		}
	}
	return events
}

func zeroOrNil(v *float64) bool {
	return v == nil || *v == 0
}

// startupEvent carries the display name in the values bag for shakers and
// centrifuges, the unit key for hydrocyclones.
func startupEvent(job, date, label, equipment, detail string, hours float64) Event {
	return Event{
		ID:          evtID(job, date, TypeEquipmentStartup, detail),
		Type:        TypeEquipmentStartup,
		Severity:    SeverityLow,
		Date:        date,
		Title:       label + " Started",
		Description: fmt.Sprintf("%s started operating (%sh).", label, num(hours)),
		Values: map[string]any{
			"equipment": equipment,
			"hours":     hours,
		},
	}
}
