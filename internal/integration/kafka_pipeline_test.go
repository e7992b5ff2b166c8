//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/fishing-diary-etl/internal/adapter/file"
	"github.com/couchcryptid/fishing-diary-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/fishing-diary-etl/internal/adapter/kafka"
	"github.com/couchcryptid/fishing-diary-etl/internal/config"
	"github.com/couchcryptid/fishing-diary-etl/internal/domain"
	"github.com/couchcryptid/fishing-diary-etl/internal/observability"
	"github.com/couchcryptid/fishing-diary-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSinkTopic = "test-diary-entries"

var diary = []string{
	"# Spring River Fishing Diary",
	"",
	"04-07 October 2018 – Bob/Jim – Spring River, cloudy and cool. Shad Rap.",
	"2/16-19/2014 - Al - Eleven Point River, rain all day, jig",
	"10/7/1994 - Bob",
	"2/15/2002, Fri - Al/Sue - Strawberry River, sunny, spoon",
	"1990s sometime - Dale - the dam, windy",
}

// publishedRecord holds a deserialized message read from the sink topic.
type publishedRecord struct {
	Record  domain.DiaryRecord
	Key     string
	Headers map[string]string
}

// readPublished reads n messages from the sink consumer and deserializes them.
func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader, n int) []publishedRecord {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out := make([]publishedRecord, 0, n)
	for range n {
		msg, err := consumer.ReadMessage(readCtx)
		require.NoError(t, err, "read from sink topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		var rec domain.DiaryRecord
		require.NoError(t, json.Unmarshal(msg.Value, &rec), "unmarshal sink message")
		out = append(out, publishedRecord{Record: rec, Key: string(msg.Key), Headers: headers})
	}
	return out
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaWriter verifies that kafka.Writer publishes one keyed message per
// record with the routing headers set.
func TestKafkaWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaSinkTopic: testSinkTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	rec, err := domain.NewParser().ParseLine(diary[2])
	require.NoError(t, err)
	require.NoError(t, writer.LoadBatch(ctx, []domain.DiaryRecord{rec}))

	got := readPublished(ctx, t, newConsumer(t, broker), 1)[0]
	assert.Equal(t, rec.ID, got.Key)
	assert.Equal(t, "2018-10-04", got.Headers["date"])
	assert.Equal(t, domain.SpringRiver, got.Headers["location"])
	assert.Equal(t, "range", got.Headers["date_status"])
	if diff := cmp.Diff(rec, got.Record); diff != "" {
		t.Errorf("published record mismatch (-want +got):\n%s", diff)
	}
}

// TestPipelineEndToEnd wires the full pipeline (file source → parser →
// JSON file + Kafka) and verifies both sinks carry the same records.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	dir := t.TempDir()
	diaryPath := filepath.Join(dir, "diary.md")
	outputPath := filepath.Join(dir, "diary_entries.json")
	require.NoError(t, os.WriteFile(diaryPath, []byte(strings.Join(diary, "\n")), 0o600))

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaSinkTopic: testSinkTopic}
	kafkaWriter := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = kafkaWriter.Close() })
	fileWriter := jsonfile.NewWriter[domain.DiaryRecord](outputPath)

	p := pipeline.New(
		file.NewSource(diaryPath),
		domain.NewParser(),
		pipeline.FanOut[domain.DiaryRecord]{fileWriter, kafkaWriter},
		discardLogger(),
		observability.NewMetricsForTesting(),
		pipeline.WithBatchSize(2),
	)

	summary, err := p.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, fileWriter.Close())
	assert.Equal(t, 4, summary.Records)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	var written []domain.DiaryRecord
	require.NoError(t, json.Unmarshal(data, &written))
	require.Len(t, written, 4)

	published := readPublished(ctx, t, newConsumer(t, broker), 4)
	for i, pub := range published {
		assert.Equal(t, written[i].ID, pub.Key, "single partition keeps file order")
		if diff := cmp.Diff(written[i], pub.Record); diff != "" {
			t.Errorf("record %d mismatch between sinks (-file +kafka):\n%s", i, diff)
		}
	}

	assert.Equal(t, "raw", published[3].Headers["date_status"])
	assert.Equal(t, "1990s sometime", published[3].Headers["date"])
}
