// Package report renders a shift handover document as Markdown, with an
// HTML variant for browsers.
//
// Layout: header, equipment summary, mud properties with day-over-day
// deltas and target ranges, key insights, chemical inventory, volume
// accounting, recommendations, remarks.
package report

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/wellsite-tools/mudwatch/internal/analysis"
	"github.com/wellsite-tools/mudwatch/internal/timeline"
)

const version = "1.0"

// Equipment status labels, thresholded on recorded hours.
const (
	statusOK   = "OK"
	statusWarn = "WARN"
	statusCrit = "CRIT"
	statusOff  = "OFF"
)

func equipStatus(hours *float64) string {
	switch {
	case hours == nil || *hours == 0:
		return statusOff
	case *hours >= 16:
		return statusOK
	case *hours >= 8:
		return statusWarn
	default:
		return statusCrit
	}
}

// Default water-based mud target ranges shown in the properties table.
var targets = map[string]string{
	"mud_weight":   "8.5 - 9.0 ppg",
	"pv":           "8 - 15 cP",
	"yp":           "30 - 50 lb",
	"gel_10s":      "15 - 35 lb",
	"solids":       "< 5 %",
	"sand":         "< 0.5 %",
	"lgs":          "< 4 %",
	"hgs":          "n/a",
	"drill_solids": "< 3 %",
	"ph":           "9.0 - 10.5",
	"filtrate":     "< 15 ml",
}

// displayProps lists the properties shown in the report, in order.
var displayProps = []struct {
	key   string
	label string
	get   func(timeline.MudProperties) *float64
}{
	{"mud_weight", "Mud Weight", func(p timeline.MudProperties) *float64 { return p.MudWeight }},
	{"pv", "PV", func(p timeline.MudProperties) *float64 { return p.PV }},
	{"yp", "YP", func(p timeline.MudProperties) *float64 { return p.YP }},
	{"gel_10s", "Gel 10s", func(p timeline.MudProperties) *float64 { return p.Gel10s }},
	{"solids", "Total Solids", func(p timeline.MudProperties) *float64 { return p.Solids }},
	{"sand", "Sand", func(p timeline.MudProperties) *float64 { return p.Sand }},
	{"lgs", "LGS", func(p timeline.MudProperties) *float64 { return p.LGS }},
	{"hgs", "HGS", func(p timeline.MudProperties) *float64 { return p.HGS }},
	{"drill_solids", "Drill Solids", func(p timeline.MudProperties) *float64 { return p.DrillSolids }},
	{"ph", "pH", func(p timeline.MudProperties) *float64 { return p.PH }},
	{"filtrate", "Filtrate API", func(p timeline.MudProperties) *float64 { return p.Filtrate }},
}

func fv(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func sv(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}

func deltaStr(curr, prev *float64) string {
	if curr == nil || prev == nil {
		return "-"
	}
	d := math.Round((*curr-*prev)*100) / 100
	switch {
	case d > 0:
		return "+" + strconv.FormatFloat(d, 'f', -1, 64)
	case d < 0:
		return strconv.FormatFloat(d, 'f', -1, 64)
	default:
		return "0"
	}
}

// Clock is overridable so tests get a stable footer.
var Clock = func() time.Time { return time.Now().UTC() }

// Markdown renders the handover document.
func Markdown(data *analysis.ReportData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Solids Control — Shift Handover Report\n\n")
	fmt.Fprintf(&b, "**Job:** %s  |  **Date:** %s  |  **Shift:** %s\n\n",
		data.JobID, data.Date, timeline.ShiftLabel(data.Shift))
	fmt.Fprintf(&b, "**Engineer:** %s  |  **Depth:** %sm MD  |  **Activity:** %s\n\n",
		sv(data.Engineer), fv(data.DepthMD), sv(data.Activity))

	writeEquipment(&b, data.Equipment)
	writeMudProps(&b, data)
	writeInsights(&b, data)
	writeChemicals(&b, data.Chemicals)
	writeVolumes(&b, data.Volumes)
	writeRecommendations(&b, data.Insights.Recommendations)
	writeRemarks(&b, data.Remarks)

	fmt.Fprintf(&b, "---\n\nGenerated: %s  |  mudwatch v%s\n",
		Clock().Format("Jan 02, 2006 15:04 UTC"), version)
	return b.String()
}

func writeEquipment(b *strings.Builder, eq timeline.Equipment) {
	b.WriteString("## Equipment Summary\n\n")

	rowCount := len(eq.Shakers) + len(eq.Centrifuges) + len(eq.Hydrocyclones)
	if rowCount == 0 {
		b.WriteString("No equipment data available.\n\n")
		return
	}

	b.WriteString("| Equipment | Hours | Feed/Size | Mesh | Status |\n")
	b.WriteString("|---|---|---|---|---|\n")

	for _, s := range eq.Shakers {
		var mesh []string
		for _, m := range s.Mesh {
			if m != nil {
				mesh = append(mesh, strconv.Itoa(int(*m)))
			}
		}
		meshStr := strings.Join(mesh, "/")
		if meshStr == "" {
			meshStr = "-"
		}
		fmt.Fprintf(b, "| %s | %s | - | %s | %s |\n", s.Name, hoursStr(s.Hours), meshStr, equipStatus(s.Hours))
	}

	for _, c := range eq.Centrifuges {
		name := c.Name
		if c.Type != nil && *c.Type != "" {
			name = fmt.Sprintf("%s (%s)", c.Name, *c.Type)
		}
		feed := "-"
		if c.FeedRate != nil {
			feed = fmt.Sprintf("%s GPM", strconv.FormatFloat(*c.FeedRate, 'f', 0, 64))
		}
		fmt.Fprintf(b, "| %s | %s | %s | - | %s |\n", name, hoursStr(c.Hours), feed, equipStatus(c.Hours))
	}

	for _, unit := range timeline.HydrocycloneUnits {
		h, ok := eq.Hydrocyclones[unit]
		if !ok {
			continue
		}
		size := "-"
		if h.Size != nil {
			size = fmt.Sprintf("%s\"", strconv.FormatFloat(*h.Size, 'f', 0, 64))
			if h.Cones != nil {
				size += fmt.Sprintf(" x%d", *h.Cones)
			}
		}
		label := titleCase(unit)
		fmt.Fprintf(b, "| %s | %s | %s | - | %s |\n", label, hoursStr(h.Hours), size, equipStatus(h.Hours))
	}
	b.WriteString("\n")
}

// titleCase turns "mud_cleaner" into "Mud Cleaner".
func titleCase(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func hoursStr(h *float64) string {
	if h == nil {
		return "-"
	}
	return strconv.FormatFloat(*h, 'f', 0, 64) + "h"
}

func writeMudProps(b *strings.Builder, data *analysis.ReportData) {
	fmt.Fprintf(b, "## Mud Properties (%s)\n\n", timeline.ShiftLabel(data.Shift))
	b.WriteString("| Property | Value | Prev Day | Delta | Target Range |\n")
	b.WriteString("|---|---|---|---|---|\n")

	for _, p := range displayProps {
		curr := p.get(data.MudShift)
		var prev *float64
		if data.PrevDaily != nil {
			prev = p.get(*data.PrevDaily)
		}
		target, ok := targets[p.key]
		if !ok {
			target = "-"
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			p.label, fv(curr), fv(prev), deltaStr(curr, prev), target)
	}
	b.WriteString("\n")
}

func writeInsights(b *strings.Builder, data *analysis.ReportData) {
	b.WriteString("## Key Insights\n\n")
	if len(data.Insights.Insights) == 0 {
		b.WriteString("Normal operations. All equipment and mud properties within expected parameters.\n\n")
		return
	}
	icons := map[string]string{"high": "!!", "medium": "!", "low": "~"}
	shown := data.Insights.Insights
	if len(shown) > 6 {
		shown = shown[:6]
	}
	for _, ins := range shown {
		icon := icons[string(ins.Severity)]
		fmt.Fprintf(b, "- **[%s] %s**: %s\n", icon, ins.Title, ins.Narrative)
		if ins.Cause != nil {
			fmt.Fprintf(b, "  - *%s*\n", *ins.Cause)
		}
	}
	b.WriteString("\n")
}

func writeChemicals(b *strings.Builder, chemicals []timeline.Chemical) {
	b.WriteString("## Chemical Inventory Changes\n\n")

	var additions, losses []timeline.Chemical
	for _, c := range chemicals {
		switch strings.ToLower(strings.TrimSpace(c.AddLoss)) {
		case "add", "addition", "added":
			additions = append(additions, c)
		default:
			losses = append(losses, c)
		}
	}

	writeChemTable(b, "Additions", additions, "No additions recorded.")
	writeChemTable(b, "Losses", losses, "No losses recorded.")
}

func writeChemTable(b *strings.Builder, heading string, rows []timeline.Chemical, empty string) {
	fmt.Fprintf(b, "### %s\n\n", heading)
	if len(rows) == 0 {
		b.WriteString(empty + "\n\n")
		return
	}
	b.WriteString("| Item | Qty | Units | Category |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, c := range rows {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", c.Item, fv(c.Quantity), sv(c.Units), c.Category)
	}
	b.WriteString("\n")
}

func writeVolumes(b *strings.Builder, v *timeline.Volumes) {
	b.WriteString("## Volume Accounting\n\n")
	if v == nil {
		b.WriteString("No volume data available.\n\n")
		return
	}
	fmt.Fprintf(b, "**Total Circ:** %s bbl  |  **In Storage:** %s bbl\n\n", fv(v.TotalCirc), fv(v.InStorage))
	fmt.Fprintf(b, "**Pits:** %s bbl  |  **Mud Type:** %s\n\n", fv(v.Pits), sv(v.MudType))
}

func writeRecommendations(b *strings.Builder, recs []string) {
	b.WriteString("## Recommendations for Incoming Shift\n\n")
	if len(recs) == 0 {
		b.WriteString("No specific recommendations. Continue normal operations.\n\n")
		return
	}
	for i, r := range recs {
		fmt.Fprintf(b, "%d. %s\n", i+1, r)
	}
	b.WriteString("\n")
}

func writeRemarks(b *strings.Builder, remarks *string) {
	b.WriteString("## Operational Remarks\n\n")
	if remarks == nil || *remarks == "" {
		b.WriteString("No remarks recorded.\n\n")
		return
	}
	b.WriteString(stripTags(*remarks) + "\n\n")
}

// stripTags removes embedded HTML from free-text remarks.
func stripTags(s string) string {
	var out strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			out.WriteRune(r)
		}
	}
	return out.String()
}

// renderer needs the table extension for the pipe tables above.
var renderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML converts the Markdown rendering to a standalone HTML page.
func HTML(data *analysis.ReportData) (string, error) {
	md := Markdown(data)
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("rendering report HTML: %w", err)
	}
	title := fmt.Sprintf("Shift Report - %s - %s", data.JobID, data.Date)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; color: #1f2e48; }
table { border-collapse: collapse; margin: 0.5rem 0; }
th, td { border: 1px solid #ccc; padding: 4px 8px; font-size: 0.9rem; }
th { background: #1f2e48; color: #fff; }
tr:nth-child(even) { background: #f2f2f7; }
</style>
</head>
<body>
%s</body>
</html>
`, title, buf.String()), nil
}
