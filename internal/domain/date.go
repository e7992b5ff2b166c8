package domain

import (
	"regexp"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

var (
	// textRangeRe matches "04-07 October 2018" at the start of the segment.
	textRangeRe = regexp.MustCompile(`^(\d+)-(\d+)\s+([A-Za-z]+)\s+(\d{4})`)

	// slashRangeRe matches "2/16-19/2014" at the start of the segment.
	slashRangeRe = regexp.MustCompile(`^(\d+)/(\d+)-(\d+)/(\d{4})`)

	// weekdaySuffixRe matches a trailing ", Fri" or ", Saturday".
	weekdaySuffixRe = regexp.MustCompile(`,\s*[A-Za-z]+\s*$`)

	singleDateLayouts = []string{"1/2/2006", "1-2-2006"}
)

// NormalizedDate is the result of NormalizeDate. EndDate is empty unless
// Status is DateRange.
type NormalizedDate struct {
	Date    string
	EndDate string
	Status  DateStatus
}

// NormalizeDate converts a diary date segment to ISO form. Rules are tried in
// priority order: text-month range, slash range, single date. When none match
// the trimmed segment is returned unchanged with status DateRaw. It never fails.
func NormalizeDate(segment string) NormalizedDate {
	segment = strings.TrimSpace(segment)

	if d, ok := parseTextMonthRange(segment); ok {
		return d
	}
	if d, ok := parseSlashRange(segment); ok {
		return d
	}
	if d, ok := parseSingleDate(segment); ok {
		return d
	}
	return NormalizedDate{Date: segment, Status: DateRaw}
}

// parseTextMonthRange handles "D1-D2 MonthName YYYY". Both ends must be real
// calendar dates, otherwise the rule does not apply.
func parseTextMonthRange(segment string) (NormalizedDate, bool) {
	m := textRangeRe.FindStringSubmatch(segment)
	if m == nil {
		return NormalizedDate{}, false
	}
	d1, d2, month, year := m[1], m[2], m[3], m[4]

	start, err := time.Parse("2 January 2006", d1+" "+month+" "+year)
	if err != nil {
		return NormalizedDate{}, false
	}
	end, err := time.Parse("2 January 2006", d2+" "+month+" "+year)
	if err != nil {
		return NormalizedDate{}, false
	}

	return NormalizedDate{
		Date:    start.Format(isoLayout),
		EndDate: end.Format(isoLayout),
		Status:  DateRange,
	}, true
}

// parseSlashRange handles "M/D1-D2/YYYY". Components are zero-padded but not
// checked against the calendar.
func parseSlashRange(segment string) (NormalizedDate, bool) {
	m := slashRangeRe.FindStringSubmatch(segment)
	if m == nil {
		return NormalizedDate{}, false
	}
	month, d1, d2, year := zeroPad(m[1]), zeroPad(m[2]), zeroPad(m[3]), m[4]

	return NormalizedDate{
		Date:    year + "-" + month + "-" + d1,
		EndDate: year + "-" + month + "-" + d2,
		Status:  DateRange,
	}, true
}

// parseSingleDate strips a trailing weekday and tries M/D/YYYY then M-D-YYYY.
func parseSingleDate(segment string) (NormalizedDate, bool) {
	clean := strings.TrimSpace(weekdaySuffixRe.ReplaceAllString(segment, ""))
	for _, layout := range singleDateLayouts {
		t, err := time.Parse(layout, clean)
		if err == nil {
			return NormalizedDate{Date: t.Format(isoLayout), Status: DateSingle}, true
		}
	}
	return NormalizedDate{}, false
}

// zeroPad left-pads a numeric string to at least two digits.
func zeroPad(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}
