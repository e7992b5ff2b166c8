// Command genmock writes a synthetic fishing diary for load and parity
// testing. Entries cover every date format, delimiter style, and vocabulary
// term. It can also write the expected records fixture, produced with the
// real domain parser so the fixture matches pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/diary_mock.md \
//	  -json data/mock/diary_mock_expected.json \
//	  -entries 5000 -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/fishing-diary-etl/internal/domain"
)

var (
	anglers = []string{"Bob", "Jim", "Al", "Sue", "Dale", "Wes"}
	places  = []string{"Spring River", "Eleven Point River", "Strawberry River", "Mammoth Spring", "the dam"}
	months  = []string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}
	weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
)

// noiseRatio is the share of generated lines that are not well-formed entries.
const noiseRatio = 0.1

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the generated diary")
	jsonOut := flag.String("json", "", "optional output path for the expected records fixture")
	entries := flag.Int("entries", 1000, "number of lines to generate")
	seed := flag.Uint64("seed", 1, "random seed for reproducible output")
	flag.Parse()

	if *out == "" || *entries <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out, positive -entries")
	}

	g := &generator{rng: rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))}
	lines := make([]string, 0, *entries+1)
	lines = append(lines, "# Spring River Fishing Diary")
	for range *entries {
		lines = append(lines, g.line())
	}

	if err := os.WriteFile(*out, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing diary: %w", err)
	}
	log.Printf("wrote diary: %s (%d lines)", *out, len(lines))

	n := 0
	parser := domain.NewParser(domain.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("mock-%06d", n)
	}))
	res := parser.ParseLines(lines)

	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, res.Records); err != nil {
			return fmt.Errorf("writing records fixture: %w", err)
		}
		log.Printf("wrote records fixture: %s", *jsonOut)
	}

	printStats(res)
	return nil
}

type generator struct {
	rng *rand.Rand
}

func (g *generator) line() string {
	if g.rng.Float64() < noiseRatio {
		return g.noise()
	}
	dash := " - "
	if g.rng.IntN(3) == 0 {
		dash = " – "
	}
	return g.date() + dash + g.anglerList() + dash + g.content()
}

func (g *generator) noise() string {
	switch g.rng.IntN(3) {
	case 0:
		return ""
	case 1:
		return "Notes from the " + pick(g.rng, places)
	default:
		// Two segments only.
		return g.date() + " - " + pick(g.rng, anglers)
	}
}

func (g *generator) date() string {
	day := time.Date(1985+g.rng.IntN(40), time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, g.rng.IntN(365))
	switch g.rng.IntN(6) {
	case 0:
		end := day.AddDate(0, 0, 1+g.rng.IntN(4))
		if end.Month() != day.Month() {
			end = day
		}
		return fmt.Sprintf("%02d-%02d %s %d", day.Day(), end.Day(), months[day.Month()-1], day.Year())
	case 1:
		end := day.Day() + g.rng.IntN(3)
		if end > 28 {
			end = day.Day()
		}
		return fmt.Sprintf("%d/%d-%d/%d", day.Month(), day.Day(), end, day.Year())
	case 2:
		return fmt.Sprintf("%d-%d-%d", day.Month(), day.Day(), day.Year())
	case 3:
		return fmt.Sprintf("%d/%d/%d, %s", day.Month(), day.Day(), day.Year(), pick(g.rng, weekdays))
	case 4:
		return fmt.Sprintf("%ds sometime", day.Year()/10*10)
	default:
		return fmt.Sprintf("%d/%d/%d", day.Month(), day.Day(), day.Year())
	}
}

func (g *generator) anglerList() string {
	names := make([]string, 1+g.rng.IntN(3))
	for i := range names {
		names[i] = pick(g.rng, anglers)
	}
	return strings.Join(names, "/")
}

func (g *generator) content() string {
	vocab := domain.DefaultVocabulary()
	parts := []string{pick(g.rng, places)}
	if g.rng.IntN(2) == 0 {
		parts = append(parts, pick(g.rng, []domain.Tag(vocab.Weather)).Term)
	}
	if g.rng.IntN(2) == 0 {
		parts = append(parts, "caught a few on a "+pick(g.rng, []domain.Tag(vocab.Lures)).Term)
	}
	return strings.Join(parts, ", ")
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printStats(res domain.Result) {
	byStatus := map[string]int{}
	byLocation := map[string]int{}
	for _, r := range res.Records {
		byStatus[string(r.DateStatus)]++
		byLocation[r.Location]++
	}
	byReason := map[string]int{}
	for reason, n := range res.SkipCounts() {
		byReason[string(reason)] = n
	}

	fmt.Printf("\nrecords: %d, skipped: %d\n", len(res.Records), len(res.Skipped))
	printCounts("date status", byStatus)
	printCounts("location", byLocation)
	printCounts("skip reason", byReason)
}

func printCounts(title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("  %s:\n", title)
	for _, k := range keys {
		fmt.Printf("    %-22s %d\n", k, counts[k])
	}
}
