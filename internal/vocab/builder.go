package vocab

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dconathan/tweet2vec/internal/normalize"
	"github.com/dconathan/tweet2vec/internal/source"
)

// Builder counts hashtag frequency across a source and selects the top-N,
// producing the vocabulary list consumed by NewBinarizer.
type Builder struct {
	topN   int
	logger *logrus.Entry
}

func NewBuilder(topN int, logger *logrus.Entry) *Builder {
	return &Builder{
		topN:   topN,
		logger: logger.WithField("component", "vocab_builder"),
	}
}

// Build makes one pass over src, counting every extracted hashtag, and
// returns the topN hashtags by descending count plus the full count map.
// Tweets without hashtags contribute nothing.
func (b *Builder) Build(src source.Source) ([]string, map[string]int, error) {
	cursor, err := src.Scan()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan source: %w", err)
	}
	defer cursor.Close()

	counts := make(map[string]int)
	tweets := 0
	for cursor.Next() {
		_, hashtags := normalize.SplitHashtags(cursor.Text())
		if len(hashtags) == 0 {
			continue
		}
		tweets++
		if tweets%1000 == 0 {
			b.logger.WithField("tweets", tweets).Info("Processed tweets")
		}
		for _, h := range hashtags {
			counts[h]++
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read source: %w", err)
	}

	sorted := make([]string, 0, len(counts))
	for h := range counts {
		sorted = append(sorted, h)
	}
	// Descending count, ties broken alphabetically so the selection is stable.
	sort.Slice(sorted, func(i, j int) bool {
		if counts[sorted[i]] != counts[sorted[j]] {
			return counts[sorted[i]] > counts[sorted[j]]
		}
		return sorted[i] < sorted[j]
	})

	if len(sorted) > b.topN {
		sorted = sorted[:b.topN]
	}

	b.logger.WithFields(logrus.Fields{
		"tweets":   tweets,
		"hashtags": len(counts),
		"selected": len(sorted),
	}).Info("Built hashtag vocabulary")

	return sorted, counts, nil
}

// SaveList writes hashtags to path, one per line.
func SaveList(hashtags []string, path string) error {
	var sb strings.Builder
	for _, h := range hashtags {
		sb.WriteString(h)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write hashtag list: %w", err)
	}
	return nil
}

// LoadList reads a hashtag list previously written by SaveList.
func LoadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hashtag list: %w", err)
	}
	defer f.Close()

	var hashtags []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			hashtags = append(hashtags, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hashtag list: %w", err)
	}
	return hashtags, nil
}

// SaveCounts writes the full hashtag count map to path as JSON.
func SaveCounts(counts map[string]int, path string) error {
	data, err := json.MarshalIndent(counts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal counts: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write counts: %w", err)
	}
	return nil
}
