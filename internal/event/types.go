// Package event detects anomalies over a job's assembled timeline.
//
// Detectors are organised in three families: equipment, mud properties,
// and inventory. Each detector receives the full ordered timeline and
// returns zero or more Events; no detector consumes another detector's
// output. Detection must always run over the complete history because the
// rolling-window detectors need prior days — callers filter the output,
// never the input.
package event

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wellsite-tools/mudwatch/internal/timeline"
)

// Severity ranks an event.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

var severityRank = map[Severity]int{
	SeverityHigh:   0,
	SeverityMedium: 1,
	SeverityLow:    2,
}

// Rank returns the sort rank of a severity (HIGH first). Unknown
// severities sort last.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return 9
}

// Type identifies the detector that produced an event.
type Type string

const (
	// Equipment family.
	TypeShakerDown           Type = "shaker_down"
	TypeScreenChange         Type = "screen_change"
	TypeCentrifugeDown       Type = "centrifuge_down"
	TypeCentrifugeFeedChange Type = "centrifuge_feed_change"
	TypeHydrocycloneDown     Type = "hydrocyclone_down"
	TypeEquipmentStartup     Type = "equipment_startup"
	// Mud property family.
	TypeSolidsSpike     Type = "solids_spike"
	TypeSandIncrease    Type = "sand_increase"
	TypeLGSCreep        Type = "lgs_creep"
	TypeDrillSolidsRise Type = "drill_solids_rise"
	TypeRheologyShift   Type = "rheology_shift"
	TypeWeightUp        Type = "weight_up"
	TypeDilution        Type = "dilution"
	TypePHShift         Type = "ph_shift"
	// Inventory family.
	TypeNewChemical        Type = "new_chemical"
	TypeChemicalSpike      Type = "chemical_spike"
	TypeLargeFormationLoss Type = "large_formation_loss"
	TypeHighSCRemoval      Type = "high_sc_removal"
)

// Event is an immutable detection result. Related is populated only by the
// causal linking annotation step.
type Event struct {
	ID          string         `json:"id"`
	Type        Type           `json:"event_type"`
	Severity    Severity       `json:"severity"`
	Date        string         `json:"date"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Values      map[string]any `json:"values"`
	Related     []string       `json:"related_events"`
}

// evtID builds a deterministic event ID from job, date, detector type, and
// an optional per-entity disambiguator. Identical input always reproduces
// identical IDs.
func evtID(job, date string, etype Type, detail string) string {
	id := fmt.Sprintf("evt_%s_%s_%s", job, date, etype)
	if detail != "" {
		id += "_" + detail
	}
	return id
}

// itemDetail normalizes an item name into an ID disambiguator: spaces
// become underscores, truncated to 20 bytes.
func itemDetail(item string) string {
	s := strings.ReplaceAll(item, " ", "_")
	if len(s) > 20 {
		s = s[:20]
	}
	return s
}

// nameDetail strips spaces from a unit name for use as an ID disambiguator.
func nameDetail(name string) string {
	return strings.ReplaceAll(name, " ", "")
}

// Detector is one registered detection unit.
type Detector struct {
	Name string
	Run  func(days []timeline.Day, job string) []Event
}

// Detectors is the ordered registry of all 18 detection units.
var Detectors = []Detector{
	// Equipment.
	{"shaker_down", detectShakerDown},
	{"screen_change", detectScreenChange},
	{"centrifuge_down", detectCentrifugeDown},
	{"centrifuge_feed_change", detectCentrifugeFeedChange},
	{"hydrocyclone_down", detectHydrocycloneDown},
	{"equipment_startup", detectEquipmentStartup},
	// Mud properties.
	{"solids_spike", detectSolidsSpike},
	{"sand_increase", detectSandIncrease},
	{"lgs_creep", detectLGSCreep},
	{"drill_solids_rise", detectDrillSolidsRise},
	{"rheology_shift", detectRheologyShift},
	{"weight_up", detectWeightUp},
	{"dilution", detectDilution},
	{"ph_shift", detectPHShift},
	// Inventory.
	{"new_chemical", detectNewChemical},
	{"chemical_spike", detectChemicalSpike},
	{"large_formation_loss", detectLargeFormationLoss},
	{"high_sc_removal", detectHighSCRemoval},
}

// DetectAll runs every registered detector over the full timeline and
// returns one merged list, sorted by date with same-day ties broken by
// severity (HIGH first). The sort is stable so same-day same-severity
// events keep registry order.
func DetectAll(days []timeline.Day, job string) []Event {
	var all []Event
	for _, d := range Detectors {
		all = append(all, d.Run(days, job)...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Date != all[j].Date {
			return all[i].Date < all[j].Date
		}
		return all[i].Severity.Rank() < all[j].Severity.Rank()
	})
	return all
}
