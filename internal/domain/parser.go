package domain

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Parser turns diary lines into DiaryRecords. It holds no per-line state and
// is safe for concurrent use as long as its ID generator is.
type Parser struct {
	vocab Vocabulary
	newID func() string
}

// Option configures a Parser.
type Option func(*Parser)

// WithVocabulary replaces the built-in vocabularies.
func WithVocabulary(v Vocabulary) Option {
	return func(p *Parser) { p.vocab = v }
}

// WithIDGenerator replaces the UUID generator, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(p *Parser) { p.newID = fn }
}

// NewParser creates a Parser with the default vocabulary and random UUIDs.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		vocab: DefaultVocabulary(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Vocabulary returns the vocabulary the parser extracts with.
func (p *Parser) Vocabulary() Vocabulary {
	return p.vocab
}

// ParseLine builds a record from one raw line. Lines that are not entries
// return ErrBlankLine, ErrNotEntry, or ErrMalformedLine.
func (p *Parser) ParseLine(line string) (DiaryRecord, error) {
	if err := CheckCandidate(line); err != nil {
		return DiaryRecord{}, err
	}

	segs, err := SplitSegments(strings.TrimSpace(line))
	if err != nil {
		return DiaryRecord{}, err
	}

	date := NormalizeDate(segs.Date)
	content := p.vocab.ExtractContent(segs.Content)

	return DiaryRecord{
		ID:           p.newID(),
		OriginalText: line,
		Date:         date.Date,
		EndDate:      date.EndDate,
		DateStatus:   date.Status,
		Anglers:      ParseAnglers(segs.Anglers),
		Location:     content.Location,
		Notes:        segs.Content,
		Details: Details{
			Lures:         content.Lures,
			Weather:       content.Weather,
			SpeciesCaught: []string{},
		},
	}, nil
}

// Skip describes a line that produced no record. Line is 1-based.
type Skip struct {
	Line   int        `json:"line"`
	Reason SkipReason `json:"reason"`
	Text   string     `json:"text"`
}

// Result is the ordered output of a batch parse.
type Result struct {
	Records []DiaryRecord `json:"records"`
	Skipped []Skip        `json:"skipped"`
}

// SkipCounts tallies skipped lines by reason.
func (r Result) SkipCounts() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, s := range r.Skipped {
		counts[s.Reason]++
	}
	return counts
}

// ParseLines parses every line in a single forward pass. Records keep input
// order; lines that are not entries are reported in Skipped instead.
func (p *Parser) ParseLines(lines []string) Result {
	outcomes := make([]lineOutcome, len(lines))
	for i, line := range lines {
		outcomes[i] = p.parseOutcome(line)
	}
	return collect(lines, outcomes)
}

// ParseLinesParallel is ParseLines spread over the given number of workers.
// Each worker writes into the slot of the line it parsed, so the result order
// is identical to ParseLines.
func (p *Parser) ParseLinesParallel(lines []string, workers int) Result {
	if workers <= 1 || len(lines) < 2 {
		return p.ParseLines(lines)
	}
	if workers > len(lines) {
		workers = len(lines)
	}

	outcomes := make([]lineOutcome, len(lines))
	indexes := make(chan int, workers*2)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = p.parseOutcome(lines[i])
			}
		}()
	}
	for i := range lines {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return collect(lines, outcomes)
}

type lineOutcome struct {
	record DiaryRecord
	err    error
}

func (p *Parser) parseOutcome(line string) lineOutcome {
	rec, err := p.ParseLine(line)
	return lineOutcome{record: rec, err: err}
}

func collect(lines []string, outcomes []lineOutcome) Result {
	res := Result{
		Records: make([]DiaryRecord, 0, len(lines)),
		Skipped: []Skip{},
	}
	for i, o := range outcomes {
		if o.err != nil {
			res.Skipped = append(res.Skipped, Skip{Line: i + 1, Reason: ReasonFor(o.err), Text: lines[i]})
			continue
		}
		res.Records = append(res.Records, o.record)
	}
	return res
}
