package augment

import (
	"strings"

	"github.com/dconathan/tweet2vec/internal/embedding"
)

// Substitute produces a near-duplicate of text for data augmentation by
// replacing the first token whose nearest embedding neighbor scores above
// threshold with that neighbor. At most one token is replaced per call, so
// repeated calls drift gradually. Tokens absent from the store are left
// untouched.
func Substitute(text string, store *embedding.Store, threshold float64) string {
	words := strings.Fields(text)
	for i, w := range words {
		if !store.Contains(w) {
			continue
		}
		neighbor, similarity, err := store.MostSimilar(w)
		if err != nil {
			continue
		}
		if similarity > threshold {
			words[i] = neighbor
			break
		}
	}
	return strings.Join(words, " ")
}
