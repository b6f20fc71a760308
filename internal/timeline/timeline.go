package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/wellsite-tools/mudwatch/internal/chem"
	"github.com/wellsite-tools/mudwatch/internal/database"
)

// Precedence picks the surviving row when a source table holds more than
// one equipment/report/circulation row for the same (job, date).
type Precedence int

const (
	// LastWins keeps the row with the highest rowid (source default).
	LastWins Precedence = iota
	// FirstWins keeps the earliest row.
	FirstWins
)

// Builder assembles per-day summaries from the record source.
type Builder struct {
	db         *database.DB
	precedence Precedence

	// Categorize enriches chemical transactions with a category. Pure
	// function of the item name; replaceable in tests.
	Categorize func(string) string
}

// NewBuilder creates a timeline builder over the given record database.
func NewBuilder(db *database.DB, precedence Precedence) *Builder {
	return &Builder{db: db, precedence: precedence, Categorize: chem.Categorize}
}

// Build joins the five record sets for a job into a date-ascending sequence
// of Days, optionally restricted to the inclusive [start, end] ISO date
// range. Records whose date cannot be parsed are silently excluded.
func (b *Builder) Build(job, start, end string) ([]Day, error) {
	equipment, err := b.db.GetEquipmentForJob(job)
	if err != nil {
		return nil, fmt.Errorf("loading equipment records: %w", err)
	}
	samples, err := b.db.GetSamplesForJob(job)
	if err != nil {
		return nil, fmt.Errorf("loading mud samples: %w", err)
	}
	chemicals, err := b.db.GetChemicalsForJob(job)
	if err != nil {
		return nil, fmt.Errorf("loading chemical transactions: %w", err)
	}
	reports, err := b.db.GetReportsForJob(job)
	if err != nil {
		return nil, fmt.Errorf("loading daily reports: %w", err)
	}
	circulation, err := b.db.GetCirculationForJob(job)
	if err != nil {
		return nil, fmt.Errorf("loading circulation records: %w", err)
	}

	equipByDate := map[string]database.EquipmentStatus{}
	for _, row := range equipment {
		d := ParseReportDate(row.ReportDate)
		if d == "" {
			continue
		}
		if _, seen := equipByDate[d]; seen && b.precedence == FirstWins {
			continue
		}
		equipByDate[d] = row
	}

	samplesByDate := map[string][]database.MudSample{}
	for _, row := range samples {
		if d := ParseReportDate(row.ReportDate); d != "" {
			samplesByDate[d] = append(samplesByDate[d], row)
		}
	}

	chemsByDate := map[string][]database.ChemicalTxn{}
	for _, row := range chemicals {
		if d := ParseReportDate(row.ReportDate); d != "" {
			chemsByDate[d] = append(chemsByDate[d], row)
		}
	}

	reportsByDate := map[string]database.DailyReport{}
	for _, row := range reports {
		d := ParseReportDate(row.ReportDate)
		if d == "" {
			continue
		}
		if _, seen := reportsByDate[d]; seen && b.precedence == FirstWins {
			continue
		}
		reportsByDate[d] = row
	}

	circByDate := map[string]database.Circulation{}
	for _, row := range circulation {
		d := ParseReportDate(row.ReportDate)
		if d == "" {
			continue
		}
		if _, seen := circByDate[d]; seen && b.precedence == FirstWins {
			continue
		}
		circByDate[d] = row
	}

	dateSet := map[string]bool{}
	for d := range equipByDate {
		dateSet[d] = true
	}
	for d := range samplesByDate {
		dateSet[d] = true
	}
	for d := range chemsByDate {
		dateSet[d] = true
	}
	for d := range reportsByDate {
		dateSet[d] = true
	}
	for d := range circByDate {
		dateSet[d] = true
	}

	var dates []string
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	dates = filterDateRange(dates, start, end)

	days := make([]Day, 0, len(dates))
	for _, d := range dates {
		days = append(days, b.buildDay(d,
			reportsByDate, equipByDate, samplesByDate, chemsByDate, circByDate))
	}
	return days, nil
}

// filterDateRange applies inclusive ISO bounds, ignoring unparseable ones.
func filterDateRange(dates []string, start, end string) []string {
	if start != "" {
		if _, err := time.Parse("2006-01-02", start); err == nil {
			kept := dates[:0]
			for _, d := range dates {
				if d >= start {
					kept = append(kept, d)
				}
			}
			dates = kept
		}
	}
	if end != "" {
		if _, err := time.Parse("2006-01-02", end); err == nil {
			kept := dates[:0]
			for _, d := range dates {
				if d <= end {
					kept = append(kept, d)
				}
			}
			dates = kept
		}
	}
	return dates
}

func (b *Builder) buildDay(
	date string,
	reports map[string]database.DailyReport,
	equipment map[string]database.EquipmentStatus,
	samples map[string][]database.MudSample,
	chemicals map[string][]database.ChemicalTxn,
	circulation map[string]database.Circulation,
) Day {
	day := Day{Date: date}

	if r, ok := reports[date]; ok {
		day.DepthMD = r.MDDepth
		day.DepthTVD = r.TVDDepth
		day.Activity = r.PresentActivity
		day.Remarks = r.Remarks
		day.Engineer = r.Engineer
	}

	if e, ok := equipment[date]; ok {
		day.Equipment = extractEquipment(e)
	} else {
		day.Equipment = Equipment{
			Shakers:       []Shaker{},
			Centrifuges:   []Centrifuge{},
			Hydrocyclones: map[string]Hydrocyclone{},
		}
	}

	daySamples := samples[date]
	day.MudProps = averageMudProps(daySamples)

	// Shift buckets only exist for shifts that actually had samples.
	buckets := map[string][]database.MudSample{}
	for _, s := range daySamples {
		raw := ""
		if s.SampleTime != nil {
			raw = *s.SampleTime
		}
		hour, _, ok := ParseSampleTime(raw)
		shift := AssignShift(hour, ok)
		buckets[shift] = append(buckets[shift], s)
	}
	day.MudByShift = make(map[string]MudProperties, len(buckets))
	for shift, shiftSamples := range buckets {
		day.MudByShift[shift] = averageMudProps(shiftSamples)
	}

	day.Chemicals = []Chemical{}
	for _, c := range chemicals[date] {
		item := ""
		if c.ItemName != nil {
			item = *c.ItemName
		}
		addLoss := ""
		if c.AddLoss != nil {
			addLoss = *c.AddLoss
		}
		day.Chemicals = append(day.Chemicals, Chemical{
			Item:     item,
			AddLoss:  addLoss,
			Quantity: c.Quantity,
			Units:    c.RepUnits,
			Category: b.Categorize(item),
		})
	}

	if c, ok := circulation[date]; ok {
		day.Volumes = &Volumes{
			TotalCirc: c.TotalCirc,
			Pits:      c.PitVolume,
			InStorage: c.InStorage,
			MudType:   c.MudType,
		}
	}

	return day
}

// extractEquipment flattens a wide equipment row into named collections.
// A shaker slot is included when it has hours or any mesh data; a
// centrifuge slot when it has hours or a type.
func extractEquipment(row database.EquipmentStatus) Equipment {
	eq := Equipment{
		Shakers:       []Shaker{},
		Centrifuges:   []Centrifuge{},
		Hydrocyclones: map[string]Hydrocyclone{},
	}

	for i, slot := range row.Shakers {
		hasMesh := false
		for _, m := range slot.Mesh {
			if m != nil {
				hasMesh = true
				break
			}
		}
		if slot.Hours == nil && !hasMesh {
			continue
		}
		name := fmt.Sprintf("Shaker %d", i+1)
		if slot.Name != nil && *slot.Name != "" {
			name = *slot.Name
		}
		eq.Shakers = append(eq.Shakers, Shaker{Name: name, Hours: slot.Hours, Mesh: slot.Mesh})
	}

	for i, slot := range row.Centrifuges {
		if slot.Hours == nil && (slot.Type == nil || *slot.Type == "") {
			continue
		}
		name := fmt.Sprintf("Centrifuge %d", i+1)
		if slot.Name != nil && *slot.Name != "" {
			name = *slot.Name
		}
		eq.Centrifuges = append(eq.Centrifuges, Centrifuge{
			Name:     name,
			Hours:    slot.Hours,
			FeedRate: slot.FeedRate,
			Type:     slot.Type,
		})
	}

	eq.Hydrocyclones[UnitDesander] = Hydrocyclone{Hours: row.Desander.Hours, Size: row.Desander.Size, Cones: row.Desander.Cones}
	eq.Hydrocyclones[UnitDesilter] = Hydrocyclone{Hours: row.Desilter.Hours, Size: row.Desilter.Size, Cones: row.Desilter.Cones}
	eq.Hydrocyclones[UnitMudCleaner] = Hydrocyclone{Hours: row.MudCleaner.Hours, Size: row.MudCleaner.Size, Cones: row.MudCleaner.Cones}

	return eq
}

// averageMudProps averages each property over the non-null sample values.
// A property with zero non-null values stays nil, never zero.
func averageMudProps(samples []database.MudSample) MudProperties {
	mp := MudProperties{SampleCount: len(samples)}
	if len(samples) == 0 {
		return mp
	}

	pick := func(get func(database.MudSample) *float64) []*float64 {
		values := make([]*float64, len(samples))
		for i, s := range samples {
			values[i] = get(s)
		}
		return values
	}

	mp.MudWeight = meanRounded(pick(func(s database.MudSample) *float64 { return s.MudWeight }), 2)
	mp.PV = meanRounded(pick(func(s database.MudSample) *float64 { return s.PlasticViscosity }), 2)
	mp.YP = meanRounded(pick(func(s database.MudSample) *float64 { return s.YieldPoint }), 2)
	mp.Gel10s = meanRounded(pick(func(s database.MudSample) *float64 { return s.Gel10s }), 2)
	mp.Gel10m = meanRounded(pick(func(s database.MudSample) *float64 { return s.Gel10m }), 2)
	mp.Gel30m = meanRounded(pick(func(s database.MudSample) *float64 { return s.Gel30m }), 2)
	mp.Solids = meanRounded(pick(func(s database.MudSample) *float64 { return s.SolidsContent }), 2)
	mp.LGS = meanRounded(pick(func(s database.MudSample) *float64 { return s.LGSPct }), 2)
	mp.HGS = meanRounded(pick(func(s database.MudSample) *float64 { return s.HGSPct }), 2)
	mp.DrillSolids = meanRounded(pick(func(s database.MudSample) *float64 { return s.DrillSolidsPct }), 2)
	mp.PH = meanRounded(pick(func(s database.MudSample) *float64 { return s.PH }), 2)
	mp.Chloride = meanRounded(pick(func(s database.MudSample) *float64 { return s.Chloride }), 2)
	mp.Filtrate = meanRounded(pick(func(s database.MudSample) *float64 { return s.FiltrateAPI }), 2)
	mp.OilRatio = meanRounded(pick(func(s database.MudSample) *float64 { return s.OilRatio }), 2)
	mp.ES = meanRounded(pick(func(s database.MudSample) *float64 { return s.ElectricalStability }), 2)

	// Sand content needs comma-decimal normalization before averaging.
	mp.Sand = meanRounded(pick(func(s database.MudSample) *float64 { return ParseSandContent(s.SandContent) }), 3)

	return mp
}
