package config

import (
	"fmt"
	"os"

	"github.com/couchcryptid/fishing-diary-etl/internal/domain"
	"gopkg.in/yaml.v3"
)

// vocabularyFile is the YAML layout of VOCABULARY_FILE. Lists that are present
// replace the built-in list of the same name.
type vocabularyFile struct {
	Locations []domain.Tag `yaml:"locations"`
	Lures     []domain.Tag `yaml:"lures"`
	Weather   []domain.Tag `yaml:"weather"`
}

// Vocabulary returns the extraction vocabulary for this configuration: the
// built-in lists, the configured default location, and any overrides read
// from VocabularyFile.
func (c *Config) Vocabulary() (domain.Vocabulary, error) {
	vocab := domain.DefaultVocabulary()
	if c.DefaultLocation != "" {
		vocab.DefaultLocation = c.DefaultLocation
	}
	if c.VocabularyFile == "" {
		return vocab, nil
	}

	data, err := os.ReadFile(c.VocabularyFile)
	if err != nil {
		return domain.Vocabulary{}, fmt.Errorf("read vocabulary file: %w", err)
	}

	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.Vocabulary{}, fmt.Errorf("parse vocabulary file %s: %w", c.VocabularyFile, err)
	}

	if file.Locations != nil {
		vocab.Locations = withDefaultLabels(file.Locations)
	}
	if file.Lures != nil {
		vocab.Lures = withDefaultLabels(file.Lures)
	}
	if file.Weather != nil {
		vocab.Weather = withDefaultLabels(file.Weather)
	}
	return vocab, nil
}

// withDefaultLabels fills an empty label or term from the other field.
func withDefaultLabels(tags []domain.Tag) domain.TagSet {
	set := make(domain.TagSet, len(tags))
	for i, t := range tags {
		if t.Label == "" {
			t.Label = t.Term
		}
		if t.Term == "" {
			t.Term = t.Label
		}
		set[i] = t
	}
	return set
}
