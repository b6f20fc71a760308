package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wellsite-tools/mudwatch/internal/analysis"
	"github.com/wellsite-tools/mudwatch/internal/database"
	"github.com/wellsite-tools/mudwatch/internal/timeline"
)

func sp(s string) *string { return &s }

// newTestServer seeds nine days of TK021 records: a shaker hours drop on
// day 9 and one chemical addition on day 3.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "fixture.db"))
	if err != nil {
		t.Fatalf("opening fixture db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for i := 1; i <= 9; i++ {
		date := fmt.Sprintf("3/%d/2018 12:00:00 AM", i)
		if _, err := db.InsertReport(database.DailyReport{Job: "TK021", ReportDate: date}); err != nil {
			t.Fatalf("InsertReport: %v", err)
		}
		hours := 24.0
		if i == 9 {
			hours = 8
		}
		eq := database.EquipmentStatus{Job: "TK021", ReportDate: date}
		eq.Shakers[0] = database.ShakerSlot{Name: sp("Shaker1"), Hours: &hours}
		if _, err := db.InsertEquipment(eq); err != nil {
			t.Fatalf("InsertEquipment: %v", err)
		}
	}
	qty := 40.0
	if _, err := db.InsertChemical(database.ChemicalTxn{
		Job: "TK021", ReportDate: "3/3/2018",
		ItemName: sp("Barite"), AddLoss: sp("add"), Quantity: &qty, RepUnits: sp("sacks"),
	}); err != nil {
		t.Fatalf("InsertChemical: %v", err)
	}

	engine := analysis.New(db, timeline.LastWins, 1)
	ts := httptest.NewServer(New(engine).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, wantStatus int) map[string]any {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding %s: %v", url, err)
	}
	return body
}

func TestJobsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	body := getJSON(t, ts.URL+"/api/jobs", http.StatusOK)
	jobs, ok := body["jobs"].([]any)
	if !ok || len(jobs) != 1 {
		t.Fatalf("unexpected jobs payload %+v", body)
	}
	job := jobs[0].(map[string]any)
	if job["job_id"] != "TK021" || job["first_date"] != "2018-03-01" {
		t.Errorf("unexpected job entry %+v", job)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	ts := newTestServer(t)
	body := getJSON(t, ts.URL+"/api/jobs/TK021/summary", http.StatusOK)
	if body["job_id"] != "TK021" || body["total_days"] != float64(9) {
		t.Errorf("unexpected summary %+v", body)
	}

	body = getJSON(t, ts.URL+"/api/jobs/NOPE/summary", http.StatusNotFound)
	if _, ok := body["error"]; !ok {
		t.Errorf("404 body missing error field: %+v", body)
	}
}

func TestTimelineEndpoint(t *testing.T) {
	ts := newTestServer(t)
	body := getJSON(t, ts.URL+"/api/jobs/TK021/timeline?start=2018-03-02&end=2018-03-04", http.StatusOK)
	if body["days"] != float64(3) {
		t.Errorf("expected 3 days, got %v", body["days"])
	}
	days := body["timeline"].([]any)
	first := days[0].(map[string]any)
	if first["date"] != "2018-03-02" {
		t.Errorf("unexpected first day %v", first["date"])
	}
}

func TestEventsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	body := getJSON(t, ts.URL+"/api/jobs/TK021/events", http.StatusOK)
	// Shaker drop on day 9 plus the Barite first appearance on day 3.
	if body["total"] != float64(2) {
		t.Fatalf("expected 2 events, got %v", body["total"])
	}

	body = getJSON(t, ts.URL+"/api/jobs/TK021/events?severity=HIGH", http.StatusOK)
	if body["total"] != float64(2) {
		t.Errorf("severity must be case-insensitive, got %v", body["total"])
	}
	filters := body["filters"].(map[string]any)
	if filters["severity"] != "HIGH" {
		t.Errorf("filters must echo the raw query, got %+v", filters)
	}

	body = getJSON(t, ts.URL+"/api/jobs/TK021/events?start=2018-03-09", http.StatusOK)
	if body["total"] != float64(1) {
		t.Errorf("expected 1 event after start bound, got %v", body["total"])
	}
}

func TestNewChemicalsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	body := getJSON(t, ts.URL+"/api/jobs/TK021/chemicals/new", http.StatusOK)
	if body["total"] != float64(1) {
		t.Fatalf("expected 1 new chemical, got %v", body["total"])
	}
	chem := body["new_chemicals"].([]any)[0].(map[string]any)
	if chem["item_name"] != "Barite" || chem["first_date"] != "2018-03-03" {
		t.Errorf("unexpected chemical %+v", chem)
	}
}

func TestInsightsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	body := getJSON(t, ts.URL+"/api/jobs/TK021/insights/2018-03-09", http.StatusOK)
	if body["date"] != "2018-03-09" {
		t.Errorf("unexpected date %v", body["date"])
	}
	insights := body["insights"].([]any)
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}

	getJSON(t, ts.URL+"/api/jobs/TK021/insights/2099-01-01", http.StatusNotFound)
	getJSON(t, ts.URL+"/api/jobs/NOPE/insights/2018-03-09", http.StatusNotFound)
}

func TestReportFormats(t *testing.T) {
	ts := newTestServer(t)

	body := getJSON(t, ts.URL+"/api/jobs/TK021/report/2018-03-09", http.StatusOK)
	if body["job_id"] != "TK021" || body["shift"] != "day" {
		t.Errorf("unexpected report payload %+v", body)
	}

	resp, err := http.Get(ts.URL + "/api/jobs/TK021/report/2018-03-09?format=md&shift=night")
	if err != nil {
		t.Fatalf("GET markdown: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("markdown content type = %q", ct)
	}

	resp2, err := http.Get(ts.URL + "/api/jobs/TK021/report/2018-03-09?format=html")
	if err != nil {
		t.Fatalf("GET html: %v", err)
	}
	defer resp2.Body.Close()
	if ct := resp2.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("html content type = %q", ct)
	}

	getJSON(t, ts.URL+"/api/jobs/TK021/report/2018-03-09?format=pdf", http.StatusBadRequest)
}

func TestUnknownRoutes(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{
		"/api/jobs/TK021/bogus",
		"/api/jobs//summary",
		"/api/jobs/TK021/chemicals/old",
		"/api/jobs/TK021",
	} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
	}
}
