// Package timeline joins the five operational record sets into ordered
// per-day summaries for one job.
package timeline

// Shift bucket keys. Assignment is purely time-of-day based:
// day 06:00-13:59, evening 14:00-21:59, night 22:00-05:59. Samples whose
// time cannot be parsed land in "unknown".
const (
	ShiftDay     = "day"
	ShiftEvening = "evening"
	ShiftNight   = "night"
	ShiftUnknown = "unknown"
)

var shiftLabels = map[string]string{
	ShiftDay:     "Day (06:00–14:00)",
	ShiftEvening: "Evening (14:00–22:00)",
	ShiftNight:   "Night (22:00–06:00)",
	ShiftUnknown: "Unknown Shift",
}

// ShiftLabel returns the human-readable label for a shift key.
func ShiftLabel(shift string) string {
	if label, ok := shiftLabels[shift]; ok {
		return label
	}
	return shift
}

// Day is one job's aggregated operational snapshot for a single calendar
// date. Immutable once assembled: detectors and linkers never modify it.
type Day struct {
	Date        string                   `json:"date"`
	DepthMD     *float64                 `json:"depth_md"`
	DepthTVD    *float64                 `json:"depth_tvd"`
	Activity    *string                  `json:"activity"`
	Equipment   Equipment                `json:"equipment"`
	MudProps    MudProperties            `json:"mud_properties"`
	MudByShift  map[string]MudProperties `json:"mud_properties_by_shift"`
	Chemicals   []Chemical               `json:"chemicals"`
	Volumes     *Volumes                 `json:"volumes"`
	Remarks     *string                  `json:"remarks"`
	Engineer    *string                  `json:"engineer"`
}

// Equipment holds the day's solids-control equipment state.
type Equipment struct {
	Shakers       []Shaker                `json:"shakers"`
	Centrifuges   []Centrifuge            `json:"centrifuges"`
	Hydrocyclones map[string]Hydrocyclone `json:"hydrocyclones"`
}

type Shaker struct {
	Name  string      `json:"name"`
	Hours *float64    `json:"hours"`
	Mesh  [4]*float64 `json:"mesh"`
}

type Centrifuge struct {
	Name     string   `json:"name"`
	Hours    *float64 `json:"hours"`
	FeedRate *float64 `json:"feed_rate"`
	Type     *string  `json:"type"`
}

type Hydrocyclone struct {
	Hours *float64 `json:"hours"`
	Size  *float64 `json:"size"`
	Cones *int64   `json:"cones"`
}

// Hydrocyclone role keys in Equipment.Hydrocyclones.
const (
	UnitDesander   = "desander"
	UnitDesilter   = "desilter"
	UnitMudCleaner = "mud_cleaner"
)

// HydrocycloneUnits lists the roles in stable iteration order.
var HydrocycloneUnits = []string{UnitDesander, UnitDesilter, UnitMudCleaner}

// MudProperties holds the averaged fluid properties for a day or shift.
// Each value is the mean of the non-null samples; nil when no sample
// carried the property.
type MudProperties struct {
	MudWeight   *float64 `json:"mud_weight"`
	PV          *float64 `json:"pv"`
	YP          *float64 `json:"yp"`
	Gel10s      *float64 `json:"gel_10s"`
	Gel10m      *float64 `json:"gel_10m"`
	Gel30m      *float64 `json:"gel_30m"`
	Solids      *float64 `json:"solids"`
	Sand        *float64 `json:"sand"`
	LGS         *float64 `json:"lgs"`
	HGS         *float64 `json:"hgs"`
	DrillSolids *float64 `json:"drill_solids"`
	PH          *float64 `json:"ph"`
	Chloride    *float64 `json:"chloride"`
	Filtrate    *float64 `json:"filtrate"`
	OilRatio    *float64 `json:"oil_ratio"`
	ES          *float64 `json:"es"`
	SampleCount int      `json:"samples_count"`
}

// Chemical is one enriched add/loss transaction.
type Chemical struct {
	Item     string   `json:"item"`
	AddLoss  string   `json:"add_loss"`
	Quantity *float64 `json:"quantity"`
	Units    *string  `json:"units"`
	Category string   `json:"category"`
}

// Volumes is the day's circulating volume snapshot.
type Volumes struct {
	TotalCirc *float64 `json:"total_circ"`
	Pits      *float64 `json:"pits"`
	InStorage *float64 `json:"in_storage"`
	MudType   *string  `json:"mud_type"`
}

// PreviousDay returns the entry immediately before targetDate, or nil.
func PreviousDay(days []Day, targetDate string) *Day {
	for i := range days {
		if days[i].Date == targetDate && i > 0 {
			return &days[i-1]
		}
	}
	return nil
}

// FindDay returns the entry for targetDate, or nil.
func FindDay(days []Day, targetDate string) *Day {
	for i := range days {
		if days[i].Date == targetDate {
			return &days[i]
		}
	}
	return nil
}
