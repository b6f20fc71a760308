package event

import (
	"math"
	"strconv"
	"strings"

	"github.com/wellsite-tools/mudwatch/internal/timeline"
)

// rollingAvg averages the non-nil values in the trailing window, or nil
// when the window holds no values. An empty window suppresses the detector
// for that day; it never produces a false trigger on missing data.
func rollingAvg(values []*float64, window int) *float64 {
	start := len(values) - window
	if start < 0 {
		start = 0
	}
	var sum float64
	var n int
	for _, v := range values[start:] {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// pctChange returns the percentage change from prev to curr, or nil when
// either is missing or the baseline is zero. Never divides by zero.
func pctChange(prev, curr *float64) *float64 {
	if prev == nil || curr == nil || *prev == 0 {
		return nil
	}
	pct := ((*curr - *prev) / math.Abs(*prev)) * 100
	return &pct
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// num renders a float without trailing zeros for event text.
func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// numPtr renders an optional float, "<nil>"-free: missing values print as
// "n/a" in event text.
func numPtr(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return num(*v)
}

// signed renders a float with an explicit sign, e.g. "+27.5" or "-31".
func signed(v float64) string {
	if v >= 0 {
		return "+" + num(v)
	}
	return num(v)
}

// titleWords turns "mud_cleaner" into "Mud Cleaner".
func titleWords(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// shakerMap indexes a day's shakers by name for cross-day matching.
func shakerMap(eq timeline.Equipment) map[string]timeline.Shaker {
	m := make(map[string]timeline.Shaker, len(eq.Shakers))
	for _, s := range eq.Shakers {
		m[s.Name] = s
	}
	return m
}

// centrifugeMap indexes a day's centrifuges by name.
func centrifugeMap(eq timeline.Equipment) map[string]timeline.Centrifuge {
	m := make(map[string]timeline.Centrifuge, len(eq.Centrifuges))
	for _, c := range eq.Centrifuges {
		m[c.Name] = c
	}
	return m
}

// valOrNil boxes an optional float for an event's values bag.
func valOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
