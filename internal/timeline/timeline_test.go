package timeline

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wellsite-tools/mudwatch/internal/database"
)

func sp(s string) *string { return &s }

func openFixture(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "fixture.db"))
	if err != nil {
		t.Fatalf("opening fixture db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustInsert(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("inserting fixture row: %v", err)
	}
}

func TestBuildJoinsRecordSets(t *testing.T) {
	db := openFixture(t)

	_, err := db.InsertReport(database.DailyReport{
		Job: "TK021", ReportDate: "3/5/2018 12:00:00 AM",
		MDDepth: fp(4200), TVDDepth: fp(4100),
		PresentActivity: sp("Drilling 12-1/4\" section"),
		Engineer:        sp("J. Smith"),
	})
	mustInsert(t, err)
	eq := database.EquipmentStatus{Job: "TK021", ReportDate: "3/5/2018 12:00:00 AM"}
	eq.Shakers[0] = database.ShakerSlot{Hours: fp(24), Mesh: [4]*float64{fp(140), fp(140), nil, nil}}
	eq.Centrifuges[0] = database.CentrifugeSlot{Hours: fp(20), FeedRate: fp(45), Type: sp("HS")}
	eq.Desilter = database.HydrocycloneSlot{Hours: fp(12), Size: fp(4)}
	_, err = db.InsertEquipment(eq)
	mustInsert(t, err)
	_, err = db.InsertSample(database.MudSample{
		Job: "TK021", ReportDate: "3/5/2018 12:00:00 AM",
		SampleTime: sp("12/30/1899 9:00:00 AM"),
		MudWeight:  fp(8.7), PlasticViscosity: fp(12), SandContent: sp("0,5"),
	})
	mustInsert(t, err)
	_, err = db.InsertChemical(database.ChemicalTxn{
		Job: "TK021", ReportDate: "3/5/2018 12:00:00 AM",
		ItemName: sp("Barite"), AddLoss: sp("add"), Quantity: fp(40), RepUnits: sp("sacks"),
	})
	mustInsert(t, err)
	_, err = db.InsertCirculation(database.Circulation{
		Job: "TK021", ReportDate: "3/5/2018 12:00:00 AM",
		TotalCirc: fp(1850), PitVolume: fp(620), MudType: sp("WBM"),
	})
	mustInsert(t, err)

	days, err := NewBuilder(db, LastWins).Build("TK021", "", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	day := days[0]

	if day.Date != "2018-03-05" {
		t.Errorf("date = %s, want 2018-03-05", day.Date)
	}
	if day.DepthMD == nil || *day.DepthMD != 4200 {
		t.Errorf("unexpected depth %v", day.DepthMD)
	}
	if len(day.Equipment.Shakers) != 1 || day.Equipment.Shakers[0].Name != "Shaker 1" {
		t.Errorf("unexpected shakers %+v", day.Equipment.Shakers)
	}
	if len(day.Equipment.Centrifuges) != 1 || *day.Equipment.Centrifuges[0].FeedRate != 45 {
		t.Errorf("unexpected centrifuges %+v", day.Equipment.Centrifuges)
	}
	if h := day.Equipment.Hydrocyclones[UnitDesilter]; h.Hours == nil || *h.Hours != 12 {
		t.Errorf("unexpected desilter %+v", h)
	}
	if day.MudProps.MudWeight == nil || *day.MudProps.MudWeight != 8.7 {
		t.Errorf("unexpected mud weight %v", day.MudProps.MudWeight)
	}
	if day.MudProps.Sand == nil || *day.MudProps.Sand != 0.5 {
		t.Errorf("comma decimal sand content not normalized: %v", day.MudProps.Sand)
	}
	if len(day.Chemicals) != 1 {
		t.Fatalf("expected 1 chemical, got %d", len(day.Chemicals))
	}
	want := Chemical{Item: "Barite", AddLoss: "add", Quantity: fp(40), Units: sp("sacks"), Category: "Weighting Agent"}
	if diff := cmp.Diff(want, day.Chemicals[0]); diff != "" {
		t.Errorf("chemical mismatch:\n%s", diff)
	}
	if day.Volumes == nil || *day.Volumes.MudType != "WBM" {
		t.Errorf("unexpected volumes %+v", day.Volumes)
	}
}

func TestBuildDuplicateRowPrecedence(t *testing.T) {
	db := openFixture(t)
	for _, depth := range []float64{4000, 4100} {
		d := depth
		_, err := db.InsertReport(database.DailyReport{
			Job: "TK021", ReportDate: "3/5/2018 12:00:00 AM", MDDepth: &d,
		})
		mustInsert(t, err)
	}

	days, err := NewBuilder(db, LastWins).Build("TK021", "", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(days) != 1 || days[0].DepthMD == nil || *days[0].DepthMD != 4100 {
		t.Errorf("LastWins should keep the later row, got %+v", days)
	}

	days, err = NewBuilder(db, FirstWins).Build("TK021", "", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(days) != 1 || days[0].DepthMD == nil || *days[0].DepthMD != 4000 {
		t.Errorf("FirstWins should keep the earlier row, got %+v", days)
	}
}

func TestBuildDateRangeFilter(t *testing.T) {
	db := openFixture(t)
	for _, raw := range []string{"3/4/2018", "3/5/2018", "3/6/2018", "3/7/2018"} {
		_, err := db.InsertReport(database.DailyReport{Job: "TK021", ReportDate: raw})
		mustInsert(t, err)
	}

	days, err := NewBuilder(db, LastWins).Build("TK021", "2018-03-05", "2018-03-06")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := make([]string, len(days))
	for i, d := range days {
		got[i] = d.Date
	}
	want := []string{"2018-03-05", "2018-03-06"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("date range mismatch:\n%s", diff)
	}

	// Unparseable bounds are ignored rather than erroring.
	days, err = NewBuilder(db, LastWins).Build("TK021", "bogus", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(days) != 4 {
		t.Errorf("bogus bound must not filter, got %d days", len(days))
	}
}

func TestBuildDropsUnparseableDates(t *testing.T) {
	db := openFixture(t)
	for _, raw := range []string{"3/5/2018", "not a date"} {
		_, err := db.InsertReport(database.DailyReport{Job: "TK021", ReportDate: raw})
		mustInsert(t, err)
	}

	days, err := NewBuilder(db, LastWins).Build("TK021", "", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(days) != 1 {
		t.Errorf("unparseable report date must be dropped, got %d days", len(days))
	}
}

func TestBuildShiftBuckets(t *testing.T) {
	db := openFixture(t)
	samples := []struct {
		time string
		mw   float64
	}{
		{"12/30/1899 9:00:00 AM", 8.6},
		{"12/30/1899 11:00:00 AM", 8.8},
		{"12/30/1899 3:00:00 PM", 9.0},
		{"12/30/1899 11:30:00 PM", 9.2},
	}
	for _, s := range samples {
		mw := s.mw
		_, err := db.InsertSample(database.MudSample{
			Job: "TK021", ReportDate: "3/5/2018",
			SampleTime: sp(s.time), MudWeight: &mw,
		})
		mustInsert(t, err)
	}

	days, err := NewBuilder(db, LastWins).Build("TK021", "", "")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	day := days[0]

	if day.MudProps.SampleCount != 4 {
		t.Errorf("daily sample count = %d, want 4", day.MudProps.SampleCount)
	}
	dayShift := day.MudByShift[ShiftDay]
	if dayShift.SampleCount != 2 || dayShift.MudWeight == nil || *dayShift.MudWeight != 8.7 {
		t.Errorf("unexpected day shift bucket %+v", dayShift)
	}
	if day.MudByShift[ShiftEvening].SampleCount != 1 {
		t.Errorf("expected 1 evening sample")
	}
	if day.MudByShift[ShiftNight].SampleCount != 1 {
		t.Errorf("expected 1 night sample")
	}
	if _, ok := day.MudByShift[ShiftUnknown]; ok {
		t.Errorf("no unknown bucket expected when every sample has a time")
	}
}

func TestAverageMudPropsNilHandling(t *testing.T) {
	samples := []database.MudSample{
		{MudWeight: fp(8.6), PlasticViscosity: nil},
		{MudWeight: fp(9.0), PlasticViscosity: nil},
	}
	mp := averageMudProps(samples)
	if mp.MudWeight == nil || *mp.MudWeight != 8.8 {
		t.Errorf("unexpected mud weight %v", mp.MudWeight)
	}
	if mp.PV != nil {
		t.Errorf("property with no values must stay nil, got %v", *mp.PV)
	}
	if mp.SampleCount != 2 {
		t.Errorf("sample count = %d, want 2", mp.SampleCount)
	}
}

func TestExtractEquipmentSkipsEmptySlots(t *testing.T) {
	row := database.EquipmentStatus{}
	row.Shakers[1] = database.ShakerSlot{Mesh: [4]*float64{fp(200), nil, nil, nil}}
	eq := extractEquipment(row)
	if len(eq.Shakers) != 1 || eq.Shakers[0].Name != "Shaker 2" {
		t.Errorf("mesh-only slot must be kept with positional name, got %+v", eq.Shakers)
	}
	if len(eq.Centrifuges) != 0 {
		t.Errorf("empty centrifuge slots must be dropped, got %+v", eq.Centrifuges)
	}
	if len(eq.Hydrocyclones) != 3 {
		t.Errorf("all hydrocyclone roles present even when empty, got %d", len(eq.Hydrocyclones))
	}
}

func TestPreviousDayAndFindDay(t *testing.T) {
	days := []Day{{Date: "2018-03-04"}, {Date: "2018-03-05"}}
	if d := FindDay(days, "2018-03-05"); d == nil || d.Date != "2018-03-05" {
		t.Errorf("FindDay failed: %+v", d)
	}
	if d := FindDay(days, "2018-03-09"); d != nil {
		t.Errorf("expected nil for missing date, got %+v", d)
	}
	if d := PreviousDay(days, "2018-03-05"); d == nil || d.Date != "2018-03-04" {
		t.Errorf("PreviousDay failed: %+v", d)
	}
	if d := PreviousDay(days, "2018-03-04"); d != nil {
		t.Errorf("first day has no previous, got %+v", d)
	}
}
