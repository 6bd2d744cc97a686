package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/samber/lo"
)

// Binarizer maps a list of hashtags onto a fixed-width binary label vector.
// The class order is fixed at construction (deduplicated, sorted) and
// defines the column positions, so the same Binarizer always produces
// directly comparable vectors. A Binarizer is read-only after construction
// and safe to share.
type Binarizer struct {
	classes []string
	index   map[string]int
}

// NewBinarizer builds a Binarizer from the recognized hashtag classes.
func NewBinarizer(classes []string) *Binarizer {
	sorted := lo.Uniq(classes)
	sort.Strings(sorted)
	index := make(map[string]int, len(sorted))
	for i, c := range sorted {
		index[c] = i
	}
	return &Binarizer{classes: sorted, index: index}
}

// Transform encodes hashtags as a binary row vector of width Width(): 1 at
// each position whose class appears in hashtags, 0 elsewhere. Unrecognized
// hashtags are ignored.
func (b *Binarizer) Transform(hashtags []string) []float64 {
	vec := make([]float64, len(b.classes))
	for _, h := range hashtags {
		if i, ok := b.index[h]; ok {
			vec[i] = 1
		}
	}
	return vec
}

// Contains reports whether hashtag is a recognized class.
func (b *Binarizer) Contains(hashtag string) bool {
	_, ok := b.index[hashtag]
	return ok
}

// Classes returns the fixed class order.
func (b *Binarizer) Classes() []string {
	out := make([]string, len(b.classes))
	copy(out, b.classes)
	return out
}

// Width returns the label vector width.
func (b *Binarizer) Width() int {
	return len(b.classes)
}

// binarizerArtifact is the JSON persistence shape of a Binarizer.
type binarizerArtifact struct {
	Classes []string `json:"classes"`
}

// Save writes the Binarizer artifact to path as JSON.
func (b *Binarizer) Save(path string) error {
	data, err := json.MarshalIndent(binarizerArtifact{Classes: b.classes}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal binarizer: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write binarizer: %w", err)
	}
	return nil
}

// LoadBinarizer reads a Binarizer artifact previously written by Save.
func LoadBinarizer(path string) (*Binarizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read binarizer: %w", err)
	}
	var artifact binarizerArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal binarizer: %w", err)
	}
	return NewBinarizer(artifact.Classes), nil
}
