package database

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func fp(v float64) *float64 { return &v }
func sp(s string) *string   { return &s }

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	db.Close()
	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen must rerun migrations cleanly: %v", err)
	}
	db.Close()
}

func TestReportRoundTrip(t *testing.T) {
	db := openTestDB(t)
	in := DailyReport{
		Job: "TK021", ReportDate: "3/5/2018 12:00:00 AM",
		MDDepth: fp(4200.5), TVDDepth: fp(4100),
		PresentActivity: sp("Drilling"), Engineer: sp("J. Smith"),
		Remarks: sp("Normal ops"),
	}
	id, err := db.InsertReport(in)
	if err != nil {
		t.Fatalf("InsertReport: %v", err)
	}
	in.ID = id

	got, err := db.GetReportsForJob("TK021")
	if err != nil {
		t.Fatalf("GetReportsForJob: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 report, got %d", len(got))
	}
	if diff := cmp.Diff(in, got[0]); diff != "" {
		t.Errorf("report mismatch:\n%s", diff)
	}

	other, err := db.GetReportsForJob("OTHER")
	if err != nil {
		t.Fatalf("GetReportsForJob: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("job filter leaked %d rows", len(other))
	}
}

func TestEquipmentRoundTrip(t *testing.T) {
	db := openTestDB(t)
	in := EquipmentStatus{Job: "TK021", ReportDate: "3/5/2018"}
	in.Shakers[0] = ShakerSlot{Name: sp("Derrick 1"), Hours: fp(24), Mesh: [4]*float64{fp(140), fp(140), fp(170), nil}}
	in.Centrifuges[1] = CentrifugeSlot{Hours: fp(18), FeedRate: fp(50), Type: sp("HS")}
	in.Desander = HydrocycloneSlot{Hours: fp(10), Size: fp(10)}
	cones := int64(12)
	in.Desilter = HydrocycloneSlot{Hours: fp(12), Size: fp(4), Cones: &cones}

	id, err := db.InsertEquipment(in)
	if err != nil {
		t.Fatalf("InsertEquipment: %v", err)
	}
	in.ID = id

	got, err := db.GetEquipmentForJob("TK021")
	if err != nil {
		t.Fatalf("GetEquipmentForJob: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if diff := cmp.Diff(in, got[0]); diff != "" {
		t.Errorf("equipment mismatch:\n%s", diff)
	}
}

func TestSampleAndChemicalRoundTrip(t *testing.T) {
	db := openTestDB(t)

	sample := MudSample{
		Job: "TK021", ReportDate: "3/5/2018",
		SampleTime: sp("12/30/1899 9:00:00 AM"),
		MudWeight:  fp(8.7), PlasticViscosity: fp(12), YieldPoint: fp(38),
		SandContent: sp("0,5"), PH: fp(9.6),
	}
	sid, err := db.InsertSample(sample)
	if err != nil {
		t.Fatalf("InsertSample: %v", err)
	}
	sample.ID = sid

	chem := ChemicalTxn{
		Job: "TK021", ReportDate: "3/5/2018",
		ItemName: sp("Barite"), AddLoss: sp("add"), Quantity: fp(40), RepUnits: sp("sacks"),
	}
	cid, err := db.InsertChemical(chem)
	if err != nil {
		t.Fatalf("InsertChemical: %v", err)
	}
	chem.ID = cid

	circ := Circulation{
		Job: "TK021", ReportDate: "3/5/2018",
		TotalCirc: fp(1850), PitVolume: fp(620), InStorage: fp(200), MudType: sp("WBM"),
	}
	vid, err := db.InsertCirculation(circ)
	if err != nil {
		t.Fatalf("InsertCirculation: %v", err)
	}
	circ.ID = vid

	samples, err := db.GetSamplesForJob("TK021")
	if err != nil {
		t.Fatalf("GetSamplesForJob: %v", err)
	}
	if diff := cmp.Diff([]MudSample{sample}, samples); diff != "" {
		t.Errorf("sample mismatch:\n%s", diff)
	}

	chems, err := db.GetChemicalsForJob("TK021")
	if err != nil {
		t.Fatalf("GetChemicalsForJob: %v", err)
	}
	if diff := cmp.Diff([]ChemicalTxn{chem}, chems); diff != "" {
		t.Errorf("chemical mismatch:\n%s", diff)
	}

	circs, err := db.GetCirculationForJob("TK021")
	if err != nil {
		t.Fatalf("GetCirculationForJob: %v", err)
	}
	if diff := cmp.Diff([]Circulation{circ}, circs); diff != "" {
		t.Errorf("circulation mismatch:\n%s", diff)
	}
}

func TestRowsReturnInInsertionOrder(t *testing.T) {
	db := openTestDB(t)
	for _, depth := range []float64{4000, 4100, 4200} {
		d := depth
		if _, err := db.InsertReport(DailyReport{Job: "TK021", ReportDate: "3/5/2018", MDDepth: &d}); err != nil {
			t.Fatalf("InsertReport: %v", err)
		}
	}
	got, err := db.GetReportsForJob("TK021")
	if err != nil {
		t.Fatalf("GetReportsForJob: %v", err)
	}
	var depths []float64
	for _, r := range got {
		depths = append(depths, *r.MDDepth)
	}
	if diff := cmp.Diff([]float64{4000, 4100, 4200}, depths); diff != "" {
		t.Errorf("insertion order not preserved:\n%s", diff)
	}
}

func TestListJobsMinReportsThreshold(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 5; i++ {
		if _, err := db.InsertReport(DailyReport{Job: "BIG", ReportDate: "3/5/2018"}); err != nil {
			t.Fatalf("InsertReport: %v", err)
		}
	}
	if _, err := db.InsertReport(DailyReport{Job: "SMALL", ReportDate: "3/5/2018"}); err != nil {
		t.Fatalf("InsertReport: %v", err)
	}
	if _, err := db.InsertSample(MudSample{Job: "BIG", ReportDate: "3/5/2018"}); err != nil {
		t.Fatalf("InsertSample: %v", err)
	}

	jobs, err := db.ListJobs(3)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Job != "BIG" {
		t.Fatalf("expected only BIG above threshold, got %+v", jobs)
	}
	if jobs[0].ReportCount != 5 || jobs[0].SampleCount != 1 || jobs[0].ChemicalTxns != 0 {
		t.Errorf("unexpected counts %+v", jobs[0])
	}

	jobs, err = db.ListJobs(1)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("expected both jobs at threshold 1, got %d", len(jobs))
	}
}

func TestGetJobStats(t *testing.T) {
	db := openTestDB(t)

	stats, err := db.GetJobStats("MISSING")
	if err != nil {
		t.Fatalf("GetJobStats: %v", err)
	}
	if stats != nil {
		t.Fatalf("expected nil stats for unknown job, got %+v", stats)
	}

	for _, r := range []DailyReport{
		{Job: "TK021", ReportDate: "3/4/2018", MDDepth: fp(4100), Engineer: sp("J. Smith")},
		{Job: "TK021", ReportDate: "3/5/2018", MDDepth: fp(4200), TVDDepth: fp(4050), Engineer: sp("A. Jones")},
		{Job: "TK021", ReportDate: "3/6/2018", Engineer: sp("J. Smith")},
	} {
		if _, err := db.InsertReport(r); err != nil {
			t.Fatalf("InsertReport: %v", err)
		}
	}
	for _, item := range []string{"Barite", "Barite", "Caustic Soda"} {
		name := item
		if _, err := db.InsertChemical(ChemicalTxn{Job: "TK021", ReportDate: "3/5/2018", ItemName: &name}); err != nil {
			t.Fatalf("InsertChemical: %v", err)
		}
	}
	if _, err := db.InsertCirculation(Circulation{Job: "TK021", ReportDate: "3/5/2018", MudType: sp("WBM")}); err != nil {
		t.Fatalf("InsertCirculation: %v", err)
	}

	stats, err = db.GetJobStats("TK021")
	if err != nil {
		t.Fatalf("GetJobStats: %v", err)
	}
	want := &JobStats{
		Job:             "TK021",
		ReportCount:     3,
		ChemicalTxns:    3,
		UniqueChemicals: 2,
		FirstDateRaw:    sp("3/4/2018"),
		LastDateRaw:     sp("3/6/2018"),
		MaxDepthMD:      fp(4200),
		MaxDepthTVD:     fp(4050),
		MudType:         sp("WBM"),
		Engineers:       []string{"A. Jones", "J. Smith"},
	}
	if diff := cmp.Diff(want, stats, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("stats mismatch:\n%s", diff)
	}
}
