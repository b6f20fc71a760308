package timeline

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseReportDate normalizes a source report date string to an ISO calendar
// date. Typical source format: "1/15/2018 12:00:00 AM". Returns "" when the
// value cannot be parsed; the caller drops the record from the join.
func ParseReportDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	// Only the leading M/D/YYYY portion matters.
	if i := strings.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	t, err := time.Parse("1/2/2006", s)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// ParseSampleTime extracts the time of day from a sample time string.
// Typical format: "12/30/1899 9:00:00 AM" — the date portion is the OLE
// epoch and is ignored. Returns ok=false when no time can be parsed.
func ParseSampleTime(raw string) (hour, minute int, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, 0, false
	}
	parts := strings.SplitN(s, " ", 2)
	if len(parts) < 2 {
		return 0, 0, false
	}
	timeStr := parts[1] // e.g. "9:00:00 AM" or "14:00:00"
	for _, layout := range []string{"3:04:05 PM", "15:04:05", "3:04 PM", "15:04"} {
		if t, err := time.Parse(layout, timeStr); err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}

// AssignShift buckets a time of day into a shift key.
func AssignShift(hour int, ok bool) string {
	if !ok {
		return ShiftUnknown
	}
	switch {
	case hour >= 6 && hour < 14:
		return ShiftDay
	case hour >= 14 && hour < 22:
		return ShiftEvening
	default:
		return ShiftNight
	}
}

// ParseSandContent parses a sand content value that may use a comma as the
// decimal separator. Returns nil on unparseable input.
func ParseSandContent(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// round returns v rounded to the given number of decimal places.
func round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// meanRounded averages the non-nil values, rounded, or nil when the slice
// holds no values at all. Zero non-nil values yields nil, never zero.
func meanRounded(values []*float64, decimals int) *float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	m := round(sum/float64(n), decimals)
	return &m
}
