package domain

// DateStatus reports which date rule produced a record's date.
type DateStatus string

const (
	// DateSingle is a single calendar date parsed from M/D/YYYY or M-D-YYYY.
	DateSingle DateStatus = "single"
	// DateRange is an inclusive range; EndDate is set.
	DateRange DateStatus = "range"
	// DateRaw means no rule matched and Date echoes the source text.
	DateRaw DateStatus = "raw"
)

// DiaryRecord is the structured form of one diary line. Records are built once
// by a Parser and must not be modified afterwards.
type DiaryRecord struct {
	ID           string     `json:"id"`
	OriginalText string     `json:"originalText"`
	Date         string     `json:"date"`
	EndDate      string     `json:"endDate,omitempty"`
	DateStatus   DateStatus `json:"dateStatus"`
	Anglers      []string   `json:"anglers"`
	Location     string     `json:"location"`
	Notes        string     `json:"notes"`
	Details      Details    `json:"details"`
}

// Details holds values extracted from the free-text content.
type Details struct {
	Lures   []string `json:"lures"`
	Weather *string  `json:"weather,omitempty"`

	// SpeciesCaught is reserved for a later enrichment step and is always empty here.
	SpeciesCaught []string `json:"speciesCaught"`
}

// Segments are the three dash-delimited fields of a diary line.
type Segments struct {
	Date    string
	Anglers string
	Content string
}
