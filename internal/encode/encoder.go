package encode

import (
	"fmt"
	"strings"

	"gorgonia.org/tensor"

	"github.com/dconathan/tweet2vec/internal/embedding"
	"github.com/dconathan/tweet2vec/internal/normalize"
)

// CharVocabulary is the fixed ordered character set used by the char and
// chrd matrix variants: lowercase letters, digits, then ASCII punctuation.
// Its order defines the one-hot column positions and must stay stable.
const CharVocabulary = "abcdefghijklmnopqrstuvwxyz" +
	"0123456789" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// CharWidth is the number of columns of the char and chrd matrix variants.
const CharWidth = len(CharVocabulary)

var charIndex = buildCharIndex()

func buildCharIndex() map[rune]int {
	index := make(map[rune]int, len(CharVocabulary))
	for i, r := range CharVocabulary {
		index[r] = i
	}
	return index
}

// MatrixType selects which fixed-shape encoding Encode produces.
type MatrixType int

const (
	// Char is a (maxChars, CharWidth) one-hot matrix over the characters of
	// the lowercased and trimmed raw text. It deliberately keeps the
	// punctuation of the raw surface form.
	Char MatrixType = iota
	// CharDist ("chrd") is a (maxWords, CharWidth) matrix whose rows are
	// per-character occurrence counts of each token of the cleaned text.
	CharDist
	// Word is a (maxWords, dim) matrix whose rows are embedding vectors for
	// each token of the cleaned text.
	Word
)

func (t MatrixType) String() string {
	switch t {
	case Char:
		return "char"
	case CharDist:
		return "chrd"
	case Word:
		return "word"
	default:
		return fmt.Sprintf("MatrixType(%d)", int(t))
	}
}

// Encoder turns text into fixed-shape feature matrices. The shape of every
// matrix is declared at construction; input text only ever truncates or
// zero-pads to fit, it never causes an error.
type Encoder struct {
	maxChars int
	maxWords int
	store    *embedding.Store
}

// New creates an Encoder. store may be nil when the Word variant is never
// requested; callers that need word matrices must check CanEncodeWords once
// up front rather than failing per item.
func New(maxChars, maxWords int, store *embedding.Store) *Encoder {
	return &Encoder{
		maxChars: maxChars,
		maxWords: maxWords,
		store:    store,
	}
}

// CanEncodeWords reports whether an embedding store is available for the
// Word variant.
func (e *Encoder) CanEncodeWords() bool {
	return e.store != nil
}

// Encode produces the fixed-shape matrix for text. Unknown characters and
// out-of-vocabulary words yield zero rows; empty text yields an all-zero
// matrix of the declared shape. The only error conditions are an invalid
// matrix type and requesting Word without an embedding store.
func (e *Encoder) Encode(text string, matType MatrixType) (*tensor.Dense, error) {
	text = strings.TrimSpace(strings.ToLower(text))
	switch matType {
	case Char:
		return e.encodeChar(text), nil
	case CharDist:
		return e.encodeCharDist(text), nil
	case Word:
		if e.store == nil {
			return nil, fmt.Errorf("no embedding store configured, can't encode word matrices")
		}
		return e.encodeWord(text), nil
	default:
		return nil, fmt.Errorf("unknown matrix type %v", matType)
	}
}

func (e *Encoder) encodeChar(text string) *tensor.Dense {
	backing := make([]float64, e.maxChars*CharWidth)
	i := 0
	for _, r := range text {
		if i >= e.maxChars {
			break
		}
		if pos, ok := charIndex[r]; ok {
			backing[i*CharWidth+pos] = 1
		}
		i++
	}
	return tensor.New(tensor.WithShape(e.maxChars, CharWidth), tensor.WithBacking(backing))
}

func (e *Encoder) encodeCharDist(text string) *tensor.Dense {
	backing := make([]float64, e.maxWords*CharWidth)
	for i, word := range strings.Fields(normalize.Clean(text)) {
		if i >= e.maxWords {
			break
		}
		for _, r := range word {
			if pos, ok := charIndex[r]; ok {
				backing[i*CharWidth+pos]++
			}
		}
	}
	return tensor.New(tensor.WithShape(e.maxWords, CharWidth), tensor.WithBacking(backing))
}

func (e *Encoder) encodeWord(text string) *tensor.Dense {
	dim := e.store.Dimension()
	backing := make([]float64, e.maxWords*dim)
	for i, word := range strings.Fields(normalize.Clean(text)) {
		if i >= e.maxWords {
			break
		}
		if vec, ok := e.store.Vector(word); ok {
			copy(backing[i*dim:(i+1)*dim], vec)
		}
	}
	return tensor.New(tensor.WithShape(e.maxWords, dim), tensor.WithBacking(backing))
}
