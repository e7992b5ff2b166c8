package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLineRange  = "04-07 October 2018 – Bob/Jim – Spring River, cloudy and cool. Shad Rap."
	testLineSingle = "2/15/2002, Fri - Al - Eleven Point River - Greer to Whitten, sunny, spoon"
)

// sequentialIDs returns a goroutine-safe generator of "id-1", "id-2", ...
func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id-%d", n.Add(1)) }
}

func TestParser_ParseLine(t *testing.T) {
	p := NewParser(WithIDGenerator(func() string { return "rec-1" }))

	t.Run("range entry", func(t *testing.T) {
		rec, err := p.ParseLine(testLineRange)
		require.NoError(t, err)

		assert.Equal(t, "rec-1", rec.ID)
		assert.Equal(t, testLineRange, rec.OriginalText)
		assert.Equal(t, "2018-10-04", rec.Date)
		assert.Equal(t, "2018-10-07", rec.EndDate)
		assert.Equal(t, DateRange, rec.DateStatus)
		assert.Equal(t, []string{"Bob", "Jim"}, rec.Anglers)
		assert.Equal(t, SpringRiver, rec.Location)
		assert.Equal(t, "Spring River, cloudy and cool. Shad Rap.", rec.Notes)
		assert.Equal(t, []string{"Shad Rap"}, rec.Details.Lures)
		require.NotNil(t, rec.Details.Weather)
		assert.Equal(t, "Cloudy, Cool", *rec.Details.Weather)
		assert.NotNil(t, rec.Details.SpeciesCaught)
		assert.Empty(t, rec.Details.SpeciesCaught)
	})

	t.Run("single entry with dashes in content", func(t *testing.T) {
		rec, err := p.ParseLine(testLineSingle)
		require.NoError(t, err)

		assert.Equal(t, "2002-02-15", rec.Date)
		assert.Empty(t, rec.EndDate)
		assert.Equal(t, DateSingle, rec.DateStatus)
		assert.Equal(t, ElevenPointRiver, rec.Location)
		assert.Equal(t, "Eleven Point River - Greer to Whitten, sunny, spoon", rec.Notes)
		assert.Equal(t, []string{"Spoon"}, rec.Details.Lures)
	})

	t.Run("unparseable date echoes segment", func(t *testing.T) {
		rec, err := p.ParseLine("1990s sometime - Bob - Spring River")
		require.NoError(t, err)
		assert.Equal(t, "1990s sometime", rec.Date)
		assert.Equal(t, DateRaw, rec.DateStatus)
	})

	t.Run("original text kept verbatim", func(t *testing.T) {
		line := "  10/7/1994 - Bob - Spring River  "
		rec, err := p.ParseLine(line)
		require.NoError(t, err)
		assert.Equal(t, line, rec.OriginalText)
		assert.Equal(t, "Spring River", rec.Notes)
	})

	t.Run("skips", func(t *testing.T) {
		_, err := p.ParseLine("")
		assert.ErrorIs(t, err, ErrBlankLine)
		_, err = p.ParseLine("Spring River Diary")
		assert.ErrorIs(t, err, ErrNotEntry)
		_, err = p.ParseLine("10/7/1994 - Bob")
		assert.ErrorIs(t, err, ErrMalformedLine)
	})
}

func TestParser_ParseLine_JSONShape(t *testing.T) {
	p := NewParser(WithIDGenerator(func() string { return "rec-1" }))
	rec, err := p.ParseLine("10/7/1994 - Bob - nothing notable")
	require.NoError(t, err)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "rec-1",
		"originalText": "10/7/1994 - Bob - nothing notable",
		"date": "1994-10-07",
		"dateStatus": "single",
		"anglers": ["Bob"],
		"location": "Spring River",
		"notes": "nothing notable",
		"details": {"lures": [], "speciesCaught": []}
	}`, string(data))
}

func TestParser_AnglerCountMatchesSegment(t *testing.T) {
	p := NewParser()
	lines := []string{
		"10/7/1994 - Bob - x",
		"10/8/1994 - Bob/Jim - x",
		"2/16-19/2014 - Bob/Jim/Al - x",
		"04-07 October 2018 – A / B / C / D – x",
		"10/9/1994 - Bob// - x",
	}
	for _, line := range lines {
		segs, err := SplitSegments(line)
		require.NoError(t, err)
		rec, err := p.ParseLine(line)
		require.NoError(t, err)
		assert.Len(t, rec.Anglers, strings.Count(segs.Anglers, "/")+1, line)
		assert.NotEmpty(t, rec.Anglers)
	}
}

func diaryFixture() []string {
	return []string{
		"# Spring River Fishing Diary",
		"",
		"10/7/1994 - Bob - Spring River, sunny",
		"Notes: water was high that year",
		"10/8/1994 - Bob/Jim",
		"2/16-19/2014 – Jim – Strawberry River, rain and wind",
		"   ",
		"04-07 October 2018 – Bob/Jim/Al – Eleven Point River, jig",
		"1990s - Al - warm",
		"3/3/2003 - Al",
	}
}

func TestParser_ParseLines(t *testing.T) {
	p := NewParser(WithIDGenerator(sequentialIDs()))
	res := p.ParseLines(diaryFixture())

	require.Len(t, res.Records, 4)
	assert.Equal(t, "1994-10-07", res.Records[0].Date)
	assert.Equal(t, "2014-02-16", res.Records[1].Date)
	assert.Equal(t, "2018-10-04", res.Records[2].Date)
	assert.Equal(t, "1990s", res.Records[3].Date)
	assert.Equal(t, DateRaw, res.Records[3].DateStatus)

	counts := res.SkipCounts()
	assert.Equal(t, 2, counts[ReasonBlank])
	assert.Equal(t, 2, counts[ReasonNotEntry])
	assert.Equal(t, 2, counts[ReasonMalformed])

	assert.Equal(t, Skip{Line: 5, Reason: ReasonMalformed, Text: "10/8/1994 - Bob/Jim"}, res.Skipped[3])
}

func TestParser_ParseLines_CountProperty(t *testing.T) {
	lines := diaryFixture()
	qualifying, malformed := 0, 0
	for _, l := range lines {
		if CheckCandidate(l) != nil {
			continue
		}
		qualifying++
		if _, err := SplitSegments(strings.TrimSpace(l)); err != nil {
			malformed++
		}
	}

	res := NewParser().ParseLines(lines)
	assert.Len(t, res.Records, qualifying-malformed)
}

func TestParser_ParseLines_UniqueIDs(t *testing.T) {
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = "10/7/1994 - Bob - Spring River"
	}
	res := NewParser().ParseLines(lines)

	seen := make(map[string]bool, len(res.Records))
	for _, r := range res.Records {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestParser_ParseLines_Deterministic(t *testing.T) {
	p := NewParser()
	first := p.ParseLines(diaryFixture())
	second := p.ParseLines(diaryFixture())

	require.Len(t, second.Records, len(first.Records))
	for i := range first.Records {
		a, b := first.Records[i], second.Records[i]
		assert.NotEqual(t, a.ID, b.ID)
		a.ID, b.ID = "", ""
		assert.Equal(t, a, b)
	}
	assert.Equal(t, first.Skipped, second.Skipped)
}

func TestParser_ParseLinesParallel_PreservesOrder(t *testing.T) {
	var lines []string
	for i := 0; i < 500; i++ {
		lines = append(lines, fmt.Sprintf("%d/%d/2001 - Angler%d - Spring River", i%12+1, i%28+1, i))
		if i%7 == 0 {
			lines = append(lines, "heading")
		}
	}

	seq := NewParser(WithIDGenerator(func() string { return "x" })).ParseLines(lines)
	for _, workers := range []int{2, 8, 1000} {
		par := NewParser(WithIDGenerator(func() string { return "x" })).ParseLinesParallel(lines, workers)
		assert.Equal(t, seq, par, "workers=%d", workers)
	}
}

func TestParser_WithVocabulary(t *testing.T) {
	vocab := DefaultVocabulary()
	vocab.Locations = TagSet{{Label: "White River", Term: "White River"}}
	vocab.DefaultLocation = "Unknown"

	p := NewParser(WithVocabulary(vocab))
	rec, err := p.ParseLine("10/7/1994 - Bob - Spring River")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", rec.Location)
	assert.Equal(t, "Unknown", p.Vocabulary().DefaultLocation)
}
