package event

import (
	"fmt"
	"math"
	"strings"

	"github.com/wellsite-tools/mudwatch/internal/timeline"
)

// detectSolidsSpike fires on a >15% day-over-day solids content increase.
// HIGH.
func detectSolidsSpike(days []timeline.Day, job string) []Event {
	var events []Event
	for i := 1; i < len(days); i++ {
		prev := days[i-1].MudProps.Solids
		curr := days[i].MudProps.Solids
		pct := pctChange(prev, curr)
		if pct != nil && *pct > 15 {
			events = append(events, Event{
				ID:       evtID(job, days[i].Date, TypeSolidsSpike, ""),
				Type:     TypeSolidsSpike,
				Severity: SeverityHigh,
				Date:     days[i].Date,
				Title:    "Solids Spike",
				Description: fmt.Sprintf("Solids content increased from %s%% to %s%% (+%s%%).",
					numPtr(prev), numPtr(curr), num(round1(*pct))),
				Values: map[string]any{
					"prev":       valOrNil(prev),
					"curr":       valOrNil(curr),
					"change_pct": round1(*pct),
				},
			})
		}
	}
	return events
}

// detectSandIncrease fires when sand content exceeds 0.5% absolute or at
// least doubles from the previous day. HIGH.
func detectSandIncrease(days []timeline.Day, job string) []Event {
	var events []Event
	for i := 1; i < len(days); i++ {
		prev := days[i-1].MudProps.Sand
		curr := days[i].MudProps.Sand
		if curr == nil {
			continue
		}
		exceededAbs := *curr > 0.5
		doubled := prev != nil && *prev > 0 && *curr >= *prev*2
		if !exceededAbs && !doubled {
			continue
		}
		var parts []string
		if exceededAbs {
			parts = append(parts, fmt.Sprintf("Sand content at %s%% (threshold 0.5%%)", num(*curr)))
		}
		if doubled {
			parts = append(parts, fmt.Sprintf("doubled from %s%%", num(*prev)))
		}
		events = append(events, Event{
			ID:          evtID(job, days[i].Date, TypeSandIncrease, ""),
			Type:        TypeSandIncrease,
			Severity:    SeverityHigh,
			Date:        days[i].Date,
			Title:       "Sand Increase",
			Description: strings.Join(parts, ". ") + ".",
			Values: map[string]any{
				"prev":      valOrNil(prev),
				"curr":      *curr,
				"threshold": 0.5,
			},
		})
	}
	return events
}

// detectLGSCreep fires when low-gravity solids rise more than 0.5% over a
// 3-day window. MEDIUM.
func detectLGSCreep(days []timeline.Day, job string) []Event {
	var events []Event
	for i := 3; i < len(days); i++ {
		curr := days[i].MudProps.LGS
		base := days[i-3].MudProps.LGS
		if curr == nil || base == nil {
			continue
		}
		delta := *curr - *base
		if delta > 0.5 {
			events = append(events, Event{
				ID:       evtID(job, days[i].Date, TypeLGSCreep, ""),
				Type:     TypeLGSCreep,
				Severity: SeverityMedium,
				Date:     days[i].Date,
				Title:    "LGS Creep",
				Description: fmt.Sprintf("Low-gravity solids increased by %s%% over 3 days (%s%% → %s%%).",
					num(round2(delta)), num(*base), num(*curr)),
				Values: map[string]any{
					"base":        *base,
					"curr":        *curr,
					"delta":       round2(delta),
					"window_days": 3,
				},
			})
		}
	}
	return events
}

// detectDrillSolidsRise fires on a >0.3% day-over-day drill solids
// increase. MEDIUM.
func detectDrillSolidsRise(days []timeline.Day, job string) []Event {
	var events []Event
	for i := 1; i < len(days); i++ {
		prev := days[i-1].MudProps.DrillSolids
		curr := days[i].MudProps.DrillSolids
		if prev == nil || curr == nil {
			continue
		}
		delta := *curr - *prev
		if delta > 0.3 {
			events = append(events, Event{
				ID:       evtID(job, days[i].Date, TypeDrillSolidsRise, ""),
				Type:     TypeDrillSolidsRise,
				Severity: SeverityMedium,
				Date:     days[i].Date,
				Title:    "Drill Solids Rise",
				Description: fmt.Sprintf("Drill solids increased by %s%% in 1 day (%s%% → %s%%).",
					num(round2(delta)), num(*prev), num(*curr)),
				Values: map[string]any{
					"prev":  *prev,
					"curr":  *curr,
					"delta": round2(delta),
				},
			})
		}
	}
	return events
}

// detectRheologyShift fires when PV or YP moves more than 20% from its own
// 3-day rolling average. One event per day regardless of how many
// properties trigger; when both move in opposite directions the PV
// direction labels the event. MEDIUM.
func detectRheologyShift(days []timeline.Day, job string) []Event {
	var events []Event
	var pvHistory, ypHistory []*float64

	for i, day := range days {
		pv := day.MudProps.PV
		yp := day.MudProps.YP

		if i >= 3 {
			pvAvg := rollingAvg(pvHistory, 3)
			ypAvg := rollingAvg(ypHistory, 3)

			var triggers []string
			direction := ""
			values := map[string]any{}

			pvPct := pctChange(pvAvg, pv)
			if pvPct != nil && math.Abs(*pvPct) > 20 {
				if *pvPct > 0 {
					direction = "UP"
				} else {
					direction = "DOWN"
				}
				triggers = append(triggers, fmt.Sprintf("PV %s%% vs 3-day avg", signed(round1(*pvPct))))
				values["pv"] = valOrNil(pv)
				values["pv_avg"] = roundedOrNil(pvAvg)
				values["pv_change_pct"] = round1(*pvPct)
			}

			ypPct := pctChange(ypAvg, yp)
			if ypPct != nil && math.Abs(*ypPct) > 20 {
				if direction == "" {
					if *ypPct > 0 {
						direction = "UP"
					} else {
						direction = "DOWN"
					}
				}
				triggers = append(triggers, fmt.Sprintf("YP %s%% vs 3-day avg", signed(round1(*ypPct))))
				values["yp"] = valOrNil(yp)
				values["yp_avg"] = roundedOrNil(ypAvg)
				values["yp_change_pct"] = round1(*ypPct)
			}

			if len(triggers) > 0 {
				values["direction"] = direction
				events = append(events, Event{
					ID:          evtID(job, day.Date, TypeRheologyShift, ""),
					Type:        TypeRheologyShift,
					Severity:    SeverityMedium,
					Date:        day.Date,
					Title:       fmt.Sprintf("Rheology Shift (%s)", direction),
					Description: "Rheology shift detected: " + strings.Join(triggers, "; ") + ".",
					Values:      values,
				})
			}
		}

		pvHistory = append(pvHistory, pv)
		ypHistory = append(ypHistory, yp)
	}
	return events
}

func roundedOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return round1(*v)
}

// detectWeightUp fires on a >0.3 ppg day-over-day mud weight increase.
// MEDIUM.
func detectWeightUp(days []timeline.Day, job string) []Event {
	var events []Event
	for i := 1; i < len(days); i++ {
		prev := days[i-1].MudProps.MudWeight
		curr := days[i].MudProps.MudWeight
		if prev == nil || curr == nil {
			continue
		}
		delta := *curr - *prev
		if delta > 0.3 {
			events = append(events, Event{
				ID:       evtID(job, days[i].Date, TypeWeightUp, ""),
				Type:     TypeWeightUp,
				Severity: SeverityMedium,
				Date:     days[i].Date,
				Title:    "Weight Up",
				Description: fmt.Sprintf("Mud weight increased by %s ppg (%s → %s ppg).",
					num(round2(delta)), num(*prev), num(*curr)),
				Values: map[string]any{
					"prev":  *prev,
					"curr":  *curr,
					"delta": round2(delta),
				},
			})
		}
	}
	return events
}

// detectDilution fires when mud weight drops on a day that also recorded
// base fluid additions. LOW.
func detectDilution(days []timeline.Day, job string) []Event {
	var events []Event
	for i := 1; i < len(days); i++ {
		prev := days[i-1].MudProps.MudWeight
		curr := days[i].MudProps.MudWeight
		if prev == nil || curr == nil {
			continue
		}
		drop := *prev - *curr
		if drop <= 0 {
			continue
		}

		var totalWater float64
		found := false
		for _, c := range days[i].Chemicals {
			if c.Category != "Base Fluid" {
				continue
			}
			al := strings.ToLower(c.AddLoss)
			if al != "add" && al != "mud" {
				continue
			}
			if c.Quantity == nil || *c.Quantity <= 0 {
				continue
			}
			totalWater += *c.Quantity
			found = true
		}
		if !found {
			continue
		}

		events = append(events, Event{
			ID:       evtID(job, days[i].Date, TypeDilution, ""),
			Type:     TypeDilution,
			Severity: SeverityLow,
			Date:     days[i].Date,
			Title:    "Dilution",
			Description: fmt.Sprintf("Mud weight dropped %s ppg (%s → %s) with %s units of base fluid added.",
				num(round2(drop)), num(*prev), num(*curr), num(round1(totalWater))),
			Values: map[string]any{
				"prev_mw":     *prev,
				"curr_mw":     *curr,
				"mw_drop":     round2(drop),
				"water_added": round1(totalWater),
			},
		})
	}
	return events
}

// detectPHShift fires on a pH change of more than 0.5 units in either
// direction. MEDIUM.
func detectPHShift(days []timeline.Day, job string) []Event {
	var events []Event
	for i := 1; i < len(days); i++ {
		prev := days[i-1].MudProps.PH
		curr := days[i].MudProps.PH
		if prev == nil || curr == nil {
			continue
		}
		delta := *curr - *prev
		if math.Abs(delta) > 0.5 {
			direction := "UP"
			if delta < 0 {
				direction = "DOWN"
			}
			events = append(events, Event{
				ID:       evtID(job, days[i].Date, TypePHShift, ""),
				Type:     TypePHShift,
				Severity: SeverityMedium,
				Date:     days[i].Date,
				Title:    fmt.Sprintf("pH Shift (%s)", direction),
				Description: fmt.Sprintf("pH changed by %s units (%s → %s).",
					num(round2(delta)), num(*prev), num(*curr)),
				Values: map[string]any{
					"prev":      *prev,
					"curr":      *curr,
					"delta":     round2(delta),
					"direction": direction,
				},
			})
		}
	}
	return events
}
