package domain

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sentinel errors classifying lines that do not produce a record. None of them
// are fatal; callers count and log them.
var (
	ErrBlankLine     = errors.New("blank line")
	ErrNotEntry      = errors.New("line does not start with a digit")
	ErrMalformedLine = errors.New("fewer than three dash-delimited segments")
)

// SkipReason labels a skipped line for diagnostics and metrics.
type SkipReason string

const (
	ReasonBlank     SkipReason = "blank"
	ReasonNotEntry  SkipReason = "not_entry"
	ReasonMalformed SkipReason = "malformed"
	ReasonUnknown   SkipReason = "unknown"
)

// ReasonFor maps a skip error to its reason label.
func ReasonFor(err error) SkipReason {
	switch {
	case errors.Is(err, ErrBlankLine):
		return ReasonBlank
	case errors.Is(err, ErrNotEntry):
		return ReasonNotEntry
	case errors.Is(err, ErrMalformedLine):
		return ReasonMalformed
	default:
		return ReasonUnknown
	}
}

// delimiterRe matches a field separator: a hyphen or en-dash with optional
// whitespace on either side.
var delimiterRe = regexp.MustCompile(`\s*[-–]\s*`)

// CheckCandidate reports whether a raw line can be a diary entry. It returns
// ErrBlankLine or ErrNotEntry for lines that should be skipped.
func CheckCandidate(line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ErrBlankLine
	}
	first, _ := utf8.DecodeRuneInString(trimmed)
	if !unicode.IsDigit(first) {
		return ErrNotEntry
	}
	return nil
}

// SplitSegments splits a trimmed candidate line on its first two delimiters.
// The content segment keeps any later dashes. Lines with fewer than two
// delimiters return ErrMalformedLine.
func SplitSegments(line string) (Segments, error) {
	cuts := make([][]int, 0, 2)
	for _, loc := range delimiterRe.FindAllStringIndex(line, -1) {
		if isDateHyphen(line, loc) {
			continue
		}
		cuts = append(cuts, loc)
		if len(cuts) == 2 {
			break
		}
	}
	if len(cuts) < 2 {
		return Segments{}, ErrMalformedLine
	}

	return Segments{
		Date:    line[:cuts[0][0]],
		Anglers: line[cuts[0][1]:cuts[1][0]],
		Content: line[cuts[1][1]:],
	}, nil
}

// isDateHyphen reports whether the match is a bare hyphen between two digits,
// as in "04-07 October 2018" or "2/16-19/2014".
func isDateHyphen(line string, loc []int) bool {
	if line[loc[0]:loc[1]] != "-" {
		return false
	}
	if loc[0] == 0 || loc[1] >= len(line) {
		return false
	}
	return isASCIIDigit(line[loc[0]-1]) && isASCIIDigit(line[loc[1]])
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
