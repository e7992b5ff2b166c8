package domain

import "strings"

// Tag pairs a search term with the label reported when it matches.
type Tag struct {
	Label string `yaml:"label" json:"label"`
	Term  string `yaml:"term" json:"term"`
}

// TagSet is an ordered vocabulary. Order decides which match wins for prefix
// lookups and the output order for containment lookups.
type TagSet []Tag

// MatchPrefix returns the first tag whose term is a literal, case-sensitive
// prefix of text.
func (s TagSet) MatchPrefix(text string) (Tag, bool) {
	for _, t := range s {
		if t.Term != "" && strings.HasPrefix(text, t.Term) {
			return t, true
		}
	}
	return Tag{}, false
}

// MatchAll returns the labels of every tag whose term occurs anywhere in text,
// ignoring case. Labels appear once, in set order.
func (s TagSet) MatchAll(text string) []string {
	lower := strings.ToLower(text)
	labels := []string{}
	seen := make(map[string]bool, len(s))
	for _, t := range s {
		if t.Term == "" || seen[t.Label] {
			continue
		}
		if strings.Contains(lower, strings.ToLower(t.Term)) {
			labels = append(labels, t.Label)
			seen[t.Label] = true
		}
	}
	return labels
}

// Vocabulary groups the tag sets used by content extraction.
type Vocabulary struct {
	Locations       TagSet
	Lures           TagSet
	Weather         TagSet
	DefaultLocation string
}

// Known stream names.
const (
	SpringRiver      = "Spring River"
	ElevenPointRiver = "Eleven Point River"
	StrawberryRiver  = "Strawberry River"
)

// DefaultVocabulary returns the built-in vocabularies.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Locations: TagSet{
			{Label: SpringRiver, Term: SpringRiver},
			{Label: ElevenPointRiver, Term: ElevenPointRiver},
			{Label: StrawberryRiver, Term: StrawberryRiver},
		},
		Lures: TagSet{
			{Label: "Shad Rap", Term: "shad rap"},
			{Label: "Jig", Term: "jig"},
			{Label: "Spoon", Term: "spoon"},
		},
		Weather: TagSet{
			{Label: "Sunny", Term: "sunny"},
			{Label: "Cloudy", Term: "cloudy"},
			{Label: "Rain", Term: "rain"},
			{Label: "Windy", Term: "wind"},
			{Label: "Cool", Term: "cool"},
			{Label: "Warm", Term: "warm"},
		},
		DefaultLocation: SpringRiver,
	}
}

// Content is what ExtractContent derives from a content segment.
type Content struct {
	Location string
	Lures    []string
	Weather  *string
}

// ExtractContent runs the location, lure, and weather passes over the content
// segment. The passes are independent of each other.
func (v Vocabulary) ExtractContent(content string) Content {
	return Content{
		Location: v.location(content),
		Lures:    v.Lures.MatchAll(content),
		Weather:  v.weather(content),
	}
}

func (v Vocabulary) location(content string) string {
	if t, ok := v.Locations.MatchPrefix(content); ok {
		return t.Label
	}
	return v.DefaultLocation
}

// weather joins matched labels with ", ". Returns nil when nothing matched.
func (v Vocabulary) weather(content string) *string {
	labels := v.Weather.MatchAll(content)
	if len(labels) == 0 {
		return nil
	}
	joined := strings.Join(labels, ", ")
	return &joined
}
