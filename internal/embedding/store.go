package embedding

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ynqa/wego/pkg/embedding"
	"github.com/ynqa/wego/pkg/search"
)

// Store is a read-only token -> vector lookup built from a trained word
// embedding model. It is a long-lived resource, safe to share across any
// number of sequences because nothing mutates it after construction.
type Store struct {
	vectors  map[string][]float64
	dim      int
	searcher *search.Searcher
}

// New builds a Store from loaded embeddings. All vectors must share one
// dimension; the first entry declares it.
func New(embs embedding.Embeddings) (*Store, error) {
	if len(embs) == 0 {
		return nil, fmt.Errorf("no embeddings provided")
	}
	dim := len(embs[0].Vector)
	vectors := make(map[string][]float64, len(embs))
	for _, e := range embs {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf("embedding for %q has dimension %d, expected %d", e.Word, len(e.Vector), dim)
		}
		vectors[e.Word] = e.Vector
	}
	searcher, err := search.New(embs...)
	if err != nil {
		return nil, fmt.Errorf("failed to build similarity searcher: %w", err)
	}
	return &Store{
		vectors:  vectors,
		dim:      dim,
		searcher: searcher,
	}, nil
}

// Load reads a word2vec text-format model ("word v1 v2 ..." per line) from
// path and builds a Store. Files ending in ".gz" are decompressed first.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open embeddings %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress embeddings %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	embs, err := embedding.Load(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embeddings %s: %w", path, err)
	}
	return New(embs)
}

// Dimension returns the width of every vector in the store.
func (s *Store) Dimension() int {
	return s.dim
}

// Vector returns the embedding for token, and whether the token is known.
func (s *Store) Vector(token string) ([]float64, bool) {
	v, ok := s.vectors[token]
	return v, ok
}

// Contains reports whether token has an embedding.
func (s *Store) Contains(token string) bool {
	_, ok := s.vectors[token]
	return ok
}

// Len returns the number of tokens in the store.
func (s *Store) Len() int {
	return len(s.vectors)
}

// MostSimilar returns the nearest neighbor of token and its cosine
// similarity. Used by the augmentation helper, not by the encoding path.
func (s *Store) MostSimilar(token string) (string, float64, error) {
	neighbors, err := s.searcher.SearchInternal(token, 1)
	if err != nil {
		return "", 0, fmt.Errorf("similarity search for %q failed: %w", token, err)
	}
	if len(neighbors) == 0 {
		return "", 0, fmt.Errorf("no neighbors found for %q", token)
	}
	return neighbors[0].Word, neighbors[0].Similarity, nil
}
