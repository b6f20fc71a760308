// Package analysis runs the full pipeline for a job: timeline assembly,
// event detection, causal linking, and narrative generation. The pipeline
// is strictly one-way; each stage only consumes the previous stage's
// output.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wellsite-tools/mudwatch/internal/causal"
	"github.com/wellsite-tools/mudwatch/internal/database"
	"github.com/wellsite-tools/mudwatch/internal/event"
	"github.com/wellsite-tools/mudwatch/internal/narrative"
	"github.com/wellsite-tools/mudwatch/internal/timeline"
)

var (
	ErrNoSuchJob  = errors.New("job not found")
	ErrNoTimeline = errors.New("no timeline data for job")
	ErrNoSuchDay  = errors.New("no data for date")
)

// Engine ties the record source to the pipeline stages.
type Engine struct {
	db         *database.DB
	builder    *timeline.Builder
	minReports int
}

// New creates an engine over the given database. minReports gates the job
// catalog; precedence resolves duplicate source rows.
func New(db *database.DB, precedence timeline.Precedence, minReports int) *Engine {
	return &Engine{
		db:         db,
		builder:    timeline.NewBuilder(db, precedence),
		minReports: minReports,
	}
}

// JobInfo is one catalog entry.
type JobInfo struct {
	JobID            string `json:"job_id"`
	FirstDate        string `json:"first_date"`
	LastDate         string `json:"last_date"`
	ReportCount      int    `json:"report_count"`
	SampleCount      int    `json:"sample_count"`
	ChemicalTxnCount int    `json:"chemical_txn_count"`
}

// ListJobs returns the catalog of jobs meeting the report-count threshold.
// Raw dates that fail to normalize pass through unchanged.
func (e *Engine) ListJobs() ([]JobInfo, error) {
	rows, err := e.db.ListJobs(e.minReports)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	jobs := make([]JobInfo, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, JobInfo{
			JobID:            r.Job,
			FirstDate:        normalizeDate(r.FirstDateRaw),
			LastDate:         normalizeDate(r.LastDateRaw),
			ReportCount:      r.ReportCount,
			SampleCount:      r.SampleCount,
			ChemicalTxnCount: r.ChemicalTxns,
		})
	}
	return jobs, nil
}

func normalizeDate(raw *string) string {
	if raw == nil {
		return ""
	}
	if iso := timeline.ParseReportDate(*raw); iso != "" {
		return iso
	}
	return *raw
}

// JobSummary is the aggregate view of one job.
type JobSummary struct {
	JobID           string   `json:"job_id"`
	FirstDate       string   `json:"first_date"`
	LastDate        string   `json:"last_date"`
	TotalDays       int      `json:"total_days"`
	MaxDepthMD      *float64 `json:"max_depth_md"`
	MaxDepthTVD     *float64 `json:"max_depth_tvd"`
	MudType         *string  `json:"mud_type"`
	UniqueChemicals int      `json:"unique_chemicals"`
	TotalSamples    int      `json:"total_samples"`
	EquipmentDays   int      `json:"equipment_days"`
	ChemicalTxns    int      `json:"chemical_transactions"`
	Engineers       []string `json:"engineers"`
}

// Summary returns aggregate stats for one job, or ErrNoSuchJob when it has
// no daily reports.
func (e *Engine) Summary(job string) (*JobSummary, error) {
	stats, err := e.db.GetJobStats(job)
	if err != nil {
		return nil, fmt.Errorf("loading job stats: %w", err)
	}
	if stats == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchJob, job)
	}
	engineers := stats.Engineers
	if engineers == nil {
		engineers = []string{}
	}
	return &JobSummary{
		JobID:           job,
		FirstDate:       normalizeDate(stats.FirstDateRaw),
		LastDate:        normalizeDate(stats.LastDateRaw),
		TotalDays:       stats.ReportCount,
		MaxDepthMD:      stats.MaxDepthMD,
		MaxDepthTVD:     stats.MaxDepthTVD,
		MudType:         stats.MudType,
		UniqueChemicals: stats.UniqueChemicals,
		TotalSamples:    stats.SampleCount,
		EquipmentDays:   stats.EquipmentDays,
		ChemicalTxns:    stats.ChemicalTxns,
		Engineers:       engineers,
	}, nil
}

// Timeline assembles the per-day view, optionally bounded to an inclusive
// ISO date range.
func (e *Engine) Timeline(job, start, end string) ([]timeline.Day, error) {
	return e.builder.Build(job, start, end)
}

// EventsResult bundles detection output with the links it induced.
type EventsResult struct {
	Events []event.Event `json:"events"`
	Links  []causal.Link `json:"causal_links"`
	Total  int           `json:"total"`
}

// Events detects over the job's complete history, then filters the output
// by date range and severity. Detection never sees the filters: rolling
// windows always use full history.
func (e *Engine) Events(job, start, end, severity string) (EventsResult, error) {
	days, err := e.builder.Build(job, "", "")
	if err != nil {
		return EventsResult{}, err
	}

	events := event.DetectAll(days, job)
	linked := causal.LinkEvents(events)
	causal.Annotate(events, linked.Adjacency)
	links := linked.Links

	if start != "" {
		events = filterEvents(events, func(ev event.Event) bool { return ev.Date >= start })
		links = filterLinks(links, eventIDSet(events))
	}
	if end != "" {
		events = filterEvents(events, func(ev event.Event) bool { return ev.Date <= end })
		links = filterLinks(links, eventIDSet(events))
	}
	if severity != "" {
		switch sev := event.Severity(severity); sev {
		case event.SeverityHigh, event.SeverityMedium, event.SeverityLow:
			events = filterEvents(events, func(ev event.Event) bool { return ev.Severity == sev })
			links = filterLinks(links, eventIDSet(events))
		}
		// Unknown severity values leave the result unfiltered.
	}

	if events == nil {
		events = []event.Event{}
	}
	if links == nil {
		links = []causal.Link{}
	}
	return EventsResult{Events: events, Links: links, Total: len(events)}, nil
}

func filterEvents(events []event.Event, keep func(event.Event) bool) []event.Event {
	var out []event.Event
	for _, ev := range events {
		if keep(ev) {
			out = append(out, ev)
		}
	}
	return out
}

func eventIDSet(events []event.Event) map[string]bool {
	ids := make(map[string]bool, len(events))
	for _, ev := range events {
		ids[ev.ID] = true
	}
	return ids
}

// filterLinks keeps links touching at least one surviving event.
func filterLinks(links []causal.Link, ids map[string]bool) []causal.Link {
	var out []causal.Link
	for _, l := range links {
		if ids[l.CauseEventID] || ids[l.EffectEventID] {
			out = append(out, l)
		}
	}
	return out
}

// NewChemical is the first recorded appearance of an item on a job.
type NewChemical struct {
	ItemName      string   `json:"item_name"`
	Category      string   `json:"category"`
	FirstDate     string   `json:"first_date"`
	FirstQuantity *float64 `json:"first_quantity"`
	Units         *string  `json:"units"`
}

// NewChemicals returns the first appearance of each unique item, ordered
// by first date with ties in first-encounter order.
func (e *Engine) NewChemicals(job string) ([]NewChemical, error) {
	txns, err := e.db.GetChemicalsForJob(job)
	if err != nil {
		return nil, fmt.Errorf("loading chemical transactions: %w", err)
	}

	firstSeen := map[string]int{}
	var out []NewChemical
	for _, t := range txns {
		if t.ItemName == nil || *t.ItemName == "" {
			continue
		}
		d := timeline.ParseReportDate(t.ReportDate)
		if d == "" {
			continue
		}
		item := *t.ItemName
		if idx, seen := firstSeen[item]; seen {
			if d < out[idx].FirstDate {
				out[idx].FirstDate = d
				out[idx].FirstQuantity = t.Quantity
				out[idx].Units = t.RepUnits
			}
			continue
		}
		firstSeen[item] = len(out)
		out = append(out, NewChemical{
			ItemName:      item,
			Category:      e.builder.Categorize(item),
			FirstDate:     d,
			FirstQuantity: t.Quantity,
			Units:         t.RepUnits,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].FirstDate < out[j].FirstDate })
	if out == nil {
		out = []NewChemical{}
	}
	return out, nil
}

// dayContext is the shared setup for insights and reports: full-history
// detection plus the target day's slice of events and links.
type dayContext struct {
	day    *timeline.Day
	prev   *timeline.Day
	events []event.Event
	links  []causal.Link
}

func (e *Engine) analyzeDay(job, date string) (*dayContext, error) {
	days, err := e.builder.Build(job, "", "")
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTimeline, job)
	}
	target := timeline.FindDay(days, date)
	if target == nil {
		return nil, fmt.Errorf("%w: %s (job %s)", ErrNoSuchDay, date, job)
	}

	all := event.DetectAll(days, job)
	linked := causal.LinkEvents(all)
	causal.Annotate(all, linked.Adjacency)

	var dayEvents []event.Event
	for _, ev := range all {
		if ev.Date == date {
			dayEvents = append(dayEvents, ev)
		}
	}
	ids := eventIDSet(dayEvents)
	dayLinks := filterLinks(linked.Links, ids)

	return &dayContext{
		day:    target,
		prev:   timeline.PreviousDay(days, date),
		events: dayEvents,
		links:  dayLinks,
	}, nil
}

// Insights narrates one day of a job.
func (e *Engine) Insights(job, date string) (narrative.InsightsResult, error) {
	ctx, err := e.analyzeDay(job, date)
	if err != nil {
		return narrative.InsightsResult{}, err
	}
	return narrative.GenerateInsights(date, ctx.events, ctx.links, *ctx.day), nil
}

// ReportData is everything a shift handover report needs for one day.
type ReportData struct {
	JobID     string                   `json:"job_id"`
	Date      string                   `json:"date"`
	Shift     string                   `json:"shift"`
	Engineer  *string                  `json:"engineer"`
	Activity  *string                  `json:"activity"`
	DepthMD   *float64                 `json:"depth_md"`
	Equipment timeline.Equipment       `json:"equipment"`
	MudShift  timeline.MudProperties   `json:"mud_properties_shift"`
	MudDaily  timeline.MudProperties   `json:"mud_properties_daily"`
	Chemicals []timeline.Chemical      `json:"chemicals"`
	Volumes   *timeline.Volumes        `json:"volumes"`
	Remarks   *string                  `json:"remarks"`
	Insights  narrative.InsightsResult `json:"insights"`

	// PrevDaily feeds the report's delta column; not serialized.
	PrevDaily *timeline.MudProperties `json:"-"`
}

// Report assembles the handover data for one day and shift. An unknown
// shift falls back to the day shift; a shift with no samples falls back to
// the daily average.
func (e *Engine) Report(job, date, shift string) (*ReportData, error) {
	switch shift {
	case timeline.ShiftDay, timeline.ShiftEvening, timeline.ShiftNight:
	default:
		shift = timeline.ShiftDay
	}

	ctx, err := e.analyzeDay(job, date)
	if err != nil {
		return nil, err
	}
	day := ctx.day

	shiftProps, ok := day.MudByShift[shift]
	if !ok || shiftProps.SampleCount == 0 {
		shiftProps = day.MudProps
	}

	var prevDaily *timeline.MudProperties
	if ctx.prev != nil {
		prevDaily = &ctx.prev.MudProps
	}

	return &ReportData{
		JobID:     job,
		Date:      date,
		Shift:     shift,
		Engineer:  day.Engineer,
		Activity:  day.Activity,
		DepthMD:   day.DepthMD,
		Equipment: day.Equipment,
		MudShift:  shiftProps,
		MudDaily:  day.MudProps,
		Chemicals: day.Chemicals,
		Volumes:   day.Volumes,
		Remarks:   day.Remarks,
		Insights:  narrative.GenerateInsights(date, ctx.events, ctx.links, *day),
		PrevDaily: prevDaily,
	}, nil
}

// AnalyzeAll runs detection for several jobs concurrently. Results arrive
// keyed by job; the first error cancels the remaining work.
func (e *Engine) AnalyzeAll(ctx context.Context, jobs []string) (map[string]EventsResult, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	var mu sync.Mutex
	results := make(map[string]EventsResult, len(jobs))

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.Events(job, "", "", "")
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", job, err)
			}
			mu.Lock()
			results[job] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
