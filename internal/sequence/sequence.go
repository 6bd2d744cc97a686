package sequence

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorgonia.org/tensor"

	"github.com/dconathan/tweet2vec/internal/embedding"
	"github.com/dconathan/tweet2vec/internal/encode"
	"github.com/dconathan/tweet2vec/internal/normalize"
	"github.com/dconathan/tweet2vec/internal/source"
	"github.com/dconathan/tweet2vec/internal/vocab"
)

// Resources are the shared read-only collaborators a Sequence draws on.
// Either may be nil; requesting a field that needs an absent resource is a
// construction error, never a per-item one.
type Resources struct {
	Store     *embedding.Store
	Binarizer *vocab.Binarizer
}

// Config holds the per-sequence knobs.
type Config struct {
	// MaxChars is the row count of char matrices. Default 140.
	MaxChars int
	// MaxWords is the row count of word and chrd matrices. Default 30.
	MaxWords int
	// SkipNoHashtag drops tweets whose (binarizer-filtered) hashtag list is
	// empty. This changes both what iteration yields and how Len is computed.
	SkipNoHashtag bool
}

func (c Config) withDefaults() Config {
	if c.MaxChars <= 0 {
		c.MaxChars = 140
	}
	if c.MaxWords <= 0 {
		c.MaxWords = 30
	}
	return c
}

// Item is the bundle of derived values produced for one tweet. Only the
// requested fields are populated.
type Item struct {
	Hashtags           []string
	RawTweet           string
	RawTweetNoHashtags string
	TokenizedTweet     []string
	CleanTweet         string
	WordMatrix         *tensor.Dense
	CharMatrix         *tensor.Dense
	ChrdMatrix         *tensor.Dense
	Label              []float64

	fields []Field
}

// Fields returns the populated fields in canonical order.
func (it *Item) Fields() []Field {
	return it.fields
}

// Values returns the populated values as an ordered tuple, one entry per
// requested field in canonical order.
func (it *Item) Values() []any {
	out := make([]any, 0, len(it.fields))
	for _, f := range it.fields {
		switch f {
		case FieldHashtags:
			out = append(out, it.Hashtags)
		case FieldRawTweet:
			out = append(out, it.RawTweet)
		case FieldRawTweetNoHashtags:
			out = append(out, it.RawTweetNoHashtags)
		case FieldTokenizedTweet:
			out = append(out, it.TokenizedTweet)
		case FieldCleanTweet:
			out = append(out, it.CleanTweet)
		case FieldWordMatrix:
			out = append(out, it.WordMatrix)
		case FieldCharMatrix:
			out = append(out, it.CharMatrix)
		case FieldChrdMatrix:
			out = append(out, it.ChrdMatrix)
		case FieldLabel:
			out = append(out, it.Label)
		}
	}
	return out
}

// IndexError reports an explicit positive out-of-range access.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("can't get tweet %d, only %d in source", e.Index, e.Len)
}

// tweetContext carries the per-tweet intermediate values the field builders
// share. The cleaned text is computed at most once per tweet.
type tweetContext struct {
	raw      string
	stripped string
	hashtags []string

	clean    string
	hasClean bool
}

func (c *tweetContext) cleanText() string {
	if !c.hasClean {
		c.clean = normalize.Clean(c.stripped)
		c.hasClean = true
	}
	return c.clean
}

type fieldBuilder func(*tweetContext, *Item) error

// Sequence is a lazy, optionally-filtering, randomly-indexable sequence of
// per-tweet derived values over a line-oriented source. Iteration is
// forward-only and restartable; integer indexing re-scans from the start,
// so each At call costs O(index). Callers that need O(1) access should keep
// their own cache of items.
//
// A Sequence is meant for single-threaded pull-based use. It shares its
// Resources read-only, so many Sequence instances can safely coexist.
type Sequence struct {
	cfg      Config
	src      source.Source
	res      Resources
	fields   []Field
	builders []fieldBuilder
	logger   *logrus.Entry

	// Memoized length; -1 until computed. Which computation runs depends on
	// SkipNoHashtag (see Len).
	length int
}

// New constructs a Sequence producing the given fields for every tweet in
// src. Fields are deduplicated and reordered canonically. Requesting
// FieldLabel without a Binarizer, or FieldWordMatrix without an embedding
// Store, fails here rather than per item.
func New(cfg Config, src source.Source, res Resources, logger *logrus.Entry, fields ...Field) (*Sequence, error) {
	cfg = cfg.withDefaults()
	log := logger.WithField("component", "tweet_sequence")

	valid := lo.Uniq(lo.Filter(fields, func(f Field, _ int) bool {
		return f >= 0 && f < numFields
	}))
	sort.Slice(valid, func(i, j int) bool { return valid[i] < valid[j] })

	if len(valid) == 0 {
		log.Warn("No valid fields requested, this sequence won't yield anything useful")
	}
	if lo.Contains(valid, FieldLabel) && res.Binarizer == nil {
		return nil, fmt.Errorf("label output requested but no binarizer configured")
	}
	if lo.Contains(valid, FieldWordMatrix) && res.Store == nil {
		return nil, fmt.Errorf("word matrix output requested but no embedding store configured")
	}

	s := &Sequence{
		cfg:    cfg,
		src:    src,
		res:    res,
		fields: valid,
		logger: log,
		length: -1,
	}
	s.builders = s.buildTable(valid)
	return s, nil
}

// NewFromNames is the string-keyed convenience constructor. Unknown field
// names are dropped with a warning, not an error.
func NewFromNames(cfg Config, src source.Source, res Resources, logger *logrus.Entry, names ...string) (*Sequence, error) {
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		f, ok := ParseField(name)
		if !ok {
			logger.WithField("field", name).Warn("Can't yield unknown field, skipping")
			continue
		}
		fields = append(fields, f)
	}
	return New(cfg, src, res, logger, fields...)
}

// buildTable resolves each requested field to its builder function once, so
// the per-item loop does no name dispatch.
func (s *Sequence) buildTable(fields []Field) []fieldBuilder {
	enc := encode.New(s.cfg.MaxChars, s.cfg.MaxWords, s.res.Store)

	encodeInto := func(matType encode.MatrixType, assign func(*Item, *tensor.Dense)) fieldBuilder {
		return func(c *tweetContext, item *Item) error {
			m, err := enc.Encode(c.stripped, matType)
			if err != nil {
				return err
			}
			assign(item, m)
			return nil
		}
	}

	table := map[Field]fieldBuilder{
		FieldHashtags: func(c *tweetContext, item *Item) error {
			item.Hashtags = c.hashtags
			return nil
		},
		FieldRawTweet: func(c *tweetContext, item *Item) error {
			item.RawTweet = strings.TrimSpace(c.raw)
			return nil
		},
		FieldRawTweetNoHashtags: func(c *tweetContext, item *Item) error {
			item.RawTweetNoHashtags = c.stripped
			return nil
		},
		FieldTokenizedTweet: func(c *tweetContext, item *Item) error {
			item.TokenizedTweet = strings.Fields(c.cleanText())
			return nil
		},
		FieldCleanTweet: func(c *tweetContext, item *Item) error {
			item.CleanTweet = c.cleanText()
			return nil
		},
		FieldWordMatrix: encodeInto(encode.Word, func(item *Item, m *tensor.Dense) { item.WordMatrix = m }),
		FieldCharMatrix: encodeInto(encode.Char, func(item *Item, m *tensor.Dense) { item.CharMatrix = m }),
		FieldChrdMatrix: encodeInto(encode.CharDist, func(item *Item, m *tensor.Dense) { item.ChrdMatrix = m }),
		FieldLabel: func(c *tweetContext, item *Item) error {
			item.Label = s.res.Binarizer.Transform(c.hashtags)
			return nil
		},
	}

	builders := make([]fieldBuilder, len(fields))
	for i, f := range fields {
		builders[i] = table[f]
	}
	return builders
}

// filterHashtags applies the binarizer's known-class filter when one is
// configured.
func (s *Sequence) filterHashtags(hashtags []string) []string {
	if s.res.Binarizer == nil {
		return hashtags
	}
	return lo.Filter(hashtags, func(h string, _ int) bool {
		return s.res.Binarizer.Contains(h)
	})
}

// produce builds the Item for one raw tweet. ok is false when the tweet is
// skipped by the no-hashtag filter.
func (s *Sequence) produce(raw string) (item *Item, ok bool, err error) {
	stripped, hashtags := normalize.SplitHashtags(raw)
	hashtags = s.filterHashtags(hashtags)
	if s.cfg.SkipNoHashtag && len(hashtags) == 0 {
		return nil, false, nil
	}

	ctx := &tweetContext{raw: raw, stripped: stripped, hashtags: hashtags}
	item = &Item{fields: s.fields}
	for _, build := range s.builders {
		if err := build(ctx, item); err != nil {
			return nil, false, err
		}
	}
	return item, true, nil
}

// Iterator is a forward-only pass over a Sequence, in the style of
// bufio.Scanner. Discarding it (after Close) simply ends consumption.
type Iterator struct {
	seq    *Sequence
	cursor source.Cursor
	item   *Item
	err    error
	done   bool
}

// Scan starts a fresh pass from the beginning of the source.
func (s *Sequence) Scan() (*Iterator, error) {
	cursor, err := s.src.Scan()
	if err != nil {
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}
	return &Iterator{seq: s, cursor: cursor}, nil
}

// Next advances to the next surviving tweet. It returns false at the end of
// the source or on error; check Err afterwards.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	for it.cursor.Next() {
		item, ok, err := it.seq.produce(it.cursor.Text())
		if err != nil {
			it.err = err
			it.finish()
			return false
		}
		if !ok {
			continue
		}
		it.item = item
		return true
	}
	if err := it.cursor.Err(); err != nil {
		it.err = err
	}
	it.finish()
	return false
}

// Item returns the item produced by the last successful Next.
func (it *Iterator) Item() *Item {
	return it.item
}

// Err returns the first error encountered during iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Close releases the underlying source cursor. Safe to call more than once.
func (it *Iterator) Close() error {
	return it.finish()
}

func (it *Iterator) finish() error {
	if it.done {
		return nil
	}
	it.done = true
	return it.cursor.Close()
}

// Len returns the number of items iteration yields, memoized per instance.
// With SkipNoHashtag it costs one full filtering pass over the source; that
// pass only extracts hashtags, it never encodes matrices. Without skipping
// it is a cheap line-count probe on the source.
func (s *Sequence) Len() (int, error) {
	if s.length >= 0 {
		return s.length, nil
	}
	if !s.cfg.SkipNoHashtag {
		n, err := s.src.Count()
		if err != nil {
			return 0, fmt.Errorf("failed to count source lines: %w", err)
		}
		s.length = n
		return n, nil
	}

	cursor, err := s.src.Scan()
	if err != nil {
		return 0, fmt.Errorf("failed to scan source: %w", err)
	}
	defer cursor.Close()

	n := 0
	for cursor.Next() {
		_, hashtags := normalize.SplitHashtags(cursor.Text())
		if len(s.filterHashtags(hashtags)) > 0 {
			n++
		}
	}
	if err := cursor.Err(); err != nil {
		return 0, fmt.Errorf("failed to read source: %w", err)
	}
	s.length = n
	return n, nil
}

// At returns the i-th item. Negative indices wrap modulo Len. Positive
// indices past the end fail with an IndexError. Every call re-scans from
// the start of the source, so the cost is O(i).
func (s *Sequence) At(i int) (*Item, error) {
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	if i < 0 {
		if n == 0 {
			return nil, &IndexError{Index: i, Len: n}
		}
		i = ((i % n) + n) % n
	} else if i >= n {
		return nil, &IndexError{Index: i, Len: n}
	}

	it, err := s.Scan()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	for j := 0; j <= i; j++ {
		if !it.Next() {
			if err := it.Err(); err != nil {
				return nil, err
			}
			// The source shrank between Len and this scan.
			return nil, &IndexError{Index: i, Len: j}
		}
	}
	return it.Item(), nil
}

// Slice returns the items in [start, stop), resolving negative bounds
// against Len and clamping like a Go slice. It is implemented by repeated
// At calls and inherits their O(index) cost.
func (s *Sequence) Slice(start, stop int) ([]*Item, error) {
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	start = max(0, min(start, n))
	stop = max(0, min(stop, n))

	var items []*Item
	for i := start; i < stop; i++ {
		item, err := s.At(i)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Random returns one item chosen uniformly at random.
func (s *Sequence) Random() (*Item, error) {
	n, err := s.Len()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("can't pick from an empty sequence")
	}
	return s.At(rand.Intn(n))
}
