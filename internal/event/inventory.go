package event

import (
	"fmt"
	"strings"

	"github.com/wellsite-tools/mudwatch/internal/timeline"
)

// detectNewChemical fires on the first appearance of an item name within
// the job's whole history. HIGH.
func detectNewChemical(days []timeline.Day, job string) []Event {
	var events []Event
	seen := map[string]bool{}

	for _, day := range days {
		for _, c := range day.Chemicals {
			if c.Item == "" || seen[c.Item] {
				continue
			}
			seen[c.Item] = true
			category := c.Category
			if category == "" {
				category = "Unknown"
			}
			var qty float64
			if c.Quantity != nil {
				qty = *c.Quantity
			}
			units := ""
			if c.Units != nil {
				units = *c.Units
			}
			events = append(events, Event{
				ID:       evtID(job, day.Date, TypeNewChemical, itemDetail(c.Item)),
				Type:     TypeNewChemical,
				Severity: SeverityHigh,
				Date:     day.Date,
				Title:    "New Chemical: " + c.Item,
				Description: fmt.Sprintf("First appearance of '%s' (category: %s), %s %s.",
					c.Item, category, num(qty), units),
				Values: map[string]any{
					"item_name": c.Item,
					"category":  c.Category,
					"quantity":  valOrNil(c.Quantity),
					"units":     units,
					"add_loss":  c.AddLoss,
				},
			})
		}
	}
	return events
}

// detectChemicalSpike fires when an item's daily added quantity exceeds 3x
// its own 7-day average. Requires at least 7 prior days of history for the
// item. MEDIUM.
func detectChemicalSpike(days []timeline.Day, job string) []Event {
	var events []Event
	itemHistory := map[string][]float64{}

	for _, day := range days {
		// Per-item daily totals, in first-appearance order so same-day
		// events come out in a stable order.
		dailyTotals := map[string]float64{}
		dailyCategory := map[string]string{}
		var order []string
		for _, c := range day.Chemicals {
			al := strings.ToLower(c.AddLoss)
			if c.Item == "" || (al != "add" && al != "mud") {
				continue
			}
			if _, ok := dailyTotals[c.Item]; !ok {
				order = append(order, c.Item)
				dailyCategory[c.Item] = c.Category
			}
			if c.Quantity != nil {
				dailyTotals[c.Item] += *c.Quantity
			}
		}

		for _, item := range order {
			qty := dailyTotals[item]
			hist := itemHistory[item]
			if len(hist) >= 7 {
				avg := rollingAvgFloat(hist, 7)
				if avg > 0 && qty > avg*3 {
					events = append(events, Event{
						ID:       evtID(job, day.Date, TypeChemicalSpike, itemDetail(item)),
						Type:     TypeChemicalSpike,
						Severity: SeverityMedium,
						Date:     day.Date,
						Title:    "Chemical Spike: " + item,
						Description: fmt.Sprintf("'%s' quantity (%s) is %sx the 7-day average (%s).",
							item, num(qty), num(round1(qty/avg)), num(round1(avg))),
						Values: map[string]any{
							"item_name": item,
							"category":  dailyCategory[item],
							"quantity":  qty,
							"avg_7d":    round1(avg),
							"multiple":  round1(qty / avg),
						},
					})
				}
			}
			itemHistory[item] = append(hist, qty)
		}

		// Items with history but no additions today count as zero, so the
		// average reflects idle days.
		for item, hist := range itemHistory {
			if _, present := dailyTotals[item]; !present {
				itemHistory[item] = append(hist, 0)
			}
		}
	}
	return events
}

// rollingAvgFloat averages the trailing window of a dense history.
func rollingAvgFloat(values []float64, window int) float64 {
	start := len(values) - window
	if start < 0 {
		start = 0
	}
	if len(values[start:]) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values[start:] {
		sum += v
	}
	return sum / float64(len(values[start:]))
}

// detectLargeFormationLoss fires on a Downhole Loss transaction over 100
// units. HIGH.
func detectLargeFormationLoss(days []timeline.Day, job string) []Event {
	var events []Event
	for _, day := range days {
		for _, c := range day.Chemicals {
			var qty float64
			if c.Quantity != nil {
				qty = *c.Quantity
			}
			if c.Category != "Downhole Loss" || strings.ToLower(c.AddLoss) != "loss" || qty <= 100 {
				continue
			}
			units := "bbl"
			if c.Units != nil && *c.Units != "" {
				units = *c.Units
			}
			events = append(events, Event{
				ID:          evtID(job, day.Date, TypeLargeFormationLoss, ""),
				Type:        TypeLargeFormationLoss,
				Severity:    SeverityHigh,
				Date:        day.Date,
				Title:       "Large Formation Loss",
				Description: fmt.Sprintf("Formation loss of %s %s detected.", num(qty), units),
				Values: map[string]any{
					"item_name": c.Item,
					"quantity":  qty,
					"units":     valOrNilStr(c.Units),
				},
			})
		}
	}
	return events
}

// detectHighSCRemoval fires when a day's total SC Removal quantity exceeds
// 1.5x its 7-day baseline. A positive signal: the solids control package
// is pulling more than usual. LOW.
func detectHighSCRemoval(days []timeline.Day, job string) []Event {
	var events []Event
	var scHistory []float64

	for i, day := range days {
		var dailySC float64
		for _, c := range day.Chemicals {
			if c.Category == "SC Removal" && c.Quantity != nil {
				dailySC += *c.Quantity
			}
		}

		if i >= 7 && dailySC > 0 {
			avg := rollingAvgFloat(scHistory, 7)
			if avg > 0 && dailySC > avg*1.5 {
				events = append(events, Event{
					ID:       evtID(job, day.Date, TypeHighSCRemoval, ""),
					Type:     TypeHighSCRemoval,
					Severity: SeverityLow,
					Date:     day.Date,
					Title:    "High SC Removal",
					Description: fmt.Sprintf("Solids control removal (%s) exceeds 7-day avg (%s) by %s%%.",
						num(dailySC), num(round1(avg)), num(round1((dailySC/avg-1)*100))),
					Values: map[string]any{
						"daily_removal": dailySC,
						"avg_7d":        round1(avg),
					},
				})
			}
		}
		scHistory = append(scHistory, dailySC)
	}
	return events
}

func valOrNilStr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
