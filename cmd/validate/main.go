// Command validate checks diary-etl output files for integrity: record
// schema rules, parity with a fresh parse of the source diary, and water
// readings that reference existing records.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -json diary_entries.json \
//	  -diary docs/spring_river_fishing_diary.md \
//	  -water water_readings.json \
//	  -vocab vocabulary.yaml \
//	  -default-location "Spring River"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/fishing-diary-etl/internal/adapter/file"
	"github.com/couchcryptid/fishing-diary-etl/internal/config"
	"github.com/couchcryptid/fishing-diary-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const isoDate = "2006-01-02"

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	skipped bool
	errors  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	recordsJSON := flag.String("json", "", "path to the diary records JSON output (required)")
	diaryPath := flag.String("diary", "", "path to the source diary; enables the parity phase")
	waterJSON := flag.String("water", "", "path to the water readings JSON output; enables the water phase")
	vocabFile := flag.String("vocab", "", "vocabulary override used to produce the output, if any")
	defaultLocation := flag.String("default-location", "", "DEFAULT_LOCATION used to produce the output, if set")
	flag.Parse()

	if *recordsJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*recordsJSON, *diaryPath, *waterJSON, parityConfig{vocabFile: *vocabFile, defaultLocation: *defaultLocation}); code != 0 {
		os.Exit(code)
	}
}

func run(recordsPath, diaryPath, waterPath string, pc parityConfig) int {
	fmt.Println("=== Fishing Diary Output Validation ===")
	fmt.Println()

	records, err := loadJSON[domain.DiaryRecord](recordsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load records JSON: %v\n", err)
		return 1
	}

	parser, err := pc.parser()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	var lines []string
	if diaryPath != "" {
		if lines, err = file.NewSource(diaryPath).ReadLines(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
	}

	var readings []domain.WaterReading
	if waterPath != "" {
		if readings, err = loadJSON[domain.WaterReading](waterPath); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load water JSON: %v\n", err)
			return 1
		}
	}

	phases := []*phase{
		validateRecordSchema(records),
		validateSourceParity(parser, records, lines, diaryPath != ""),
		validateWaterReadings(readings, records, waterPath != ""),
	}

	return report(phases, len(records), len(readings))
}

func report(phases []*phase, records, readings int) int {
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.skipped:
			status = "\033[33mSKIP\033[0m"
		case !p.passed():
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d diary records, %d water readings\n", records, readings)

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// parityConfig holds the extraction settings the output was produced with.
type parityConfig struct {
	vocabFile       string
	defaultLocation string
}

// parser builds a parser with the same vocabulary the pipeline used.
func (pc parityConfig) parser() (*domain.Parser, error) {
	cfg := config.Config{VocabularyFile: pc.vocabFile, DefaultLocation: pc.defaultLocation}
	vocab, err := cfg.Vocabulary()
	if err != nil {
		return nil, err
	}
	return domain.NewParser(domain.WithVocabulary(vocab)), nil
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Record Schema ──
// Every record must satisfy the per-record output rules on its own.

func validateRecordSchema(records []domain.DiaryRecord) *phase {
	p := &phase{name: "Phase 1: Record Schema"}
	seen := make(map[string]int, len(records))
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			p.errorf("record %d: empty id", i)
		} else if prev, dup := seen[rec.ID]; dup {
			p.errorf("record %d: id %s duplicates record %d", i, rec.ID, prev)
		} else {
			seen[rec.ID] = i
		}
		checkRecord(p.errorf, i, rec)
	}
	return p
}

func checkRecord(pf func(string, ...any), i int, rec *domain.DiaryRecord) {
	if len(rec.Anglers) == 0 {
		pf("record %d: no anglers", i)
	}
	if rec.Date == "" {
		pf("record %d: empty date", i)
	}
	if rec.Location == "" {
		pf("record %d: empty location", i)
	}
	if rec.Details.SpeciesCaught == nil || len(rec.Details.SpeciesCaught) != 0 {
		pf("record %d: speciesCaught must be an empty array", i)
	}
	if rec.Details.Lures == nil {
		pf("record %d: lures must be an array", i)
	}
	if rec.Details.Weather != nil && *rec.Details.Weather == "" {
		pf("record %d: weather present but empty", i)
	}
	checkDates(pf, i, rec)
}

func checkDates(pf func(string, ...any), i int, rec *domain.DiaryRecord) {
	switch rec.DateStatus {
	case domain.DateRaw:
		if rec.EndDate != "" {
			pf("record %d: raw date with endDate %q", i, rec.EndDate)
		}
		return
	case domain.DateSingle:
		if rec.EndDate != "" {
			pf("record %d: single date with endDate %q", i, rec.EndDate)
		}
	case domain.DateRange:
		if rec.EndDate == "" {
			pf("record %d: range without endDate", i)
		}
	default:
		pf("record %d: unknown dateStatus %q", i, rec.DateStatus)
		return
	}

	start, err := time.Parse(isoDate, rec.Date)
	if err != nil {
		pf("record %d: date %q is not YYYY-MM-DD", i, rec.Date)
		return
	}
	if rec.EndDate == "" {
		return
	}
	// Slash ranges are not calendar-checked, so only the shape is enforced.
	if len(rec.EndDate) != len(isoDate) {
		pf("record %d: endDate %q is not YYYY-MM-DD", i, rec.EndDate)
		return
	}
	if end, err := time.Parse(isoDate, rec.EndDate); err == nil && end.Before(start) {
		pf("record %d: endDate %s before date %s", i, rec.EndDate, rec.Date)
	}
}

// ── Phase 2: Source Parity ──
// A fresh parse of the diary must reproduce the output, ids aside.

func validateSourceParity(parser *domain.Parser, records []domain.DiaryRecord, lines []string, enabled bool) *phase {
	p := &phase{name: "Phase 2: Source Parity (diary re-parse)", skipped: !enabled}
	if !enabled {
		return p
	}

	fresh := parser.ParseLines(lines)
	if len(fresh.Records) != len(records) {
		p.errorf("record count: output has %d, diary parses to %d", len(records), len(fresh.Records))
	}

	ignoreID := cmpopts.IgnoreFields(domain.DiaryRecord{}, "ID")
	for i := 0; i < min(len(records), len(fresh.Records)); i++ {
		if diff := cmp.Diff(fresh.Records[i], records[i], ignoreID); diff != "" {
			p.errorf("record %d (%q) differs (-diary +output):\n%s", i, records[i].OriginalText, diff)
		}
	}
	return p
}

// ── Phase 3: Water Readings ──
// Every reading must reference an output record and carry a known tier.

func validateWaterReadings(readings []domain.WaterReading, records []domain.DiaryRecord, enabled bool) *phase {
	p := &phase{name: "Phase 3: Water Readings", skipped: !enabled}
	if !enabled {
		return p
	}

	byID := make(map[string]*domain.DiaryRecord, len(records))
	for i := range records {
		byID[records[i].ID] = &records[i]
	}

	for i := range readings {
		r := &readings[i]
		rec, ok := byID[r.RecordID]
		if !ok {
			p.errorf("reading %d: unknown recordId %q", i, r.RecordID)
			continue
		}
		if r.StationID != domain.StationFor(rec.Location) {
			p.errorf("reading %d: station %s does not match location %q", i, r.StationID, rec.Location)
		}
		checkTier(p.errorf, i, r, rec)
	}
	return p
}

func checkTier(pf func(string, ...any), i int, r *domain.WaterReading, rec *domain.DiaryRecord) {
	switch r.Tier {
	case domain.TierDaily:
		if r.Discharge == "" && r.GageHeight == "" {
			pf("reading %d: daily tier without values", i)
		}
	case domain.TierInstantaneous:
		if r.GageHeight == "" {
			pf("reading %d: instantaneous tier without gage height", i)
		}
	case domain.TierSkipped:
		if rec.DateStatus != domain.DateRaw {
			pf("reading %d: skipped but record date %q is parsed", i, rec.Date)
		}
	case domain.TierNone, domain.TierFailed:
	default:
		pf("reading %d: unknown tier %q", i, r.Tier)
	}
}
