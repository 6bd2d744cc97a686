package batch

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorgonia.org/tensor"

	"github.com/dconathan/tweet2vec/internal/sequence"
	"github.com/dconathan/tweet2vec/internal/source"
)

// Config holds the aggregator knobs. Each matrix type can be enabled
// independently; the label output is always included.
type Config struct {
	// BatchSize is the number of tweets stacked per batch. Default 10.
	BatchSize int
	// MaxChars and MaxWords are forwarded to the underlying sequence.
	MaxChars int
	MaxWords int

	Char bool
	Chrd bool
	Word bool
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	return c
}

// Batch is one unit of training input: the enabled feature tensors stacked
// along a new leading axis, plus the stacked label matrix.
type Batch struct {
	// Inputs holds one (n, rows, cols) tensor per enabled matrix type, in
	// char, chrd, word order.
	Inputs []*tensor.Dense
	// Labels is the (n, vocabulary width) label matrix.
	Labels *tensor.Dense
	// Size is n, the number of tweets in this batch. The final batch of a
	// pass may be short.
	Size int
}

// Aggregator regroups the per-tweet encodings of a hashtag-filtered
// sequence into fixed-size batches. Iteration is infinite: when one pass
// over the source ends, any nonempty partial batch is flushed and the next
// pass begins, so the caller supplies its own stopping condition (typically
// an epoch-driven training loop). Single-threaded pull-based use only.
type Aggregator struct {
	cfg      Config
	seq      *sequence.Sequence
	logger   *logrus.Entry
	matrices []sequence.Field

	it        *sequence.Iterator
	passCount int
}

// New constructs an Aggregator over src. The underlying sequence always
// skips tweets without recognized hashtags, so a binarizer is required (and
// an embedding store whenever Word is enabled).
func New(cfg Config, src source.Source, res sequence.Resources, logger *logrus.Entry) (*Aggregator, error) {
	cfg = cfg.withDefaults()
	log := logger.WithField("component", "batch_aggregator")

	var matrices []sequence.Field
	if cfg.Char {
		matrices = append(matrices, sequence.FieldCharMatrix)
	}
	if cfg.Chrd {
		matrices = append(matrices, sequence.FieldChrdMatrix)
	}
	if cfg.Word {
		matrices = append(matrices, sequence.FieldWordMatrix)
	}
	if len(matrices) == 0 {
		log.Warn("No matrix type enabled, batches will carry labels only")
	}

	fields := append(append([]sequence.Field{}, matrices...), sequence.FieldLabel)
	seq, err := sequence.New(sequence.Config{
		MaxChars:      cfg.MaxChars,
		MaxWords:      cfg.MaxWords,
		SkipNoHashtag: true,
	}, src, res, logger, fields...)
	if err != nil {
		return nil, err
	}

	return &Aggregator{
		cfg:      cfg,
		seq:      seq,
		logger:   log,
		matrices: matrices,
	}, nil
}

// Next produces the next batch. It never reports exhaustion: at the end of
// a pass it flushes the partial batch (if any) and restarts from the top of
// the source. Errors are limited to source I/O failures and a source that
// yields no qualifying tweets at all (which would otherwise spin forever).
func (a *Aggregator) Next() (*Batch, error) {
	acc := newAccumulator(len(a.matrices))
	for {
		if a.it == nil {
			it, err := a.seq.Scan()
			if err != nil {
				return nil, err
			}
			a.it = it
			a.passCount = 0
		}

		if a.it.Next() {
			item := a.it.Item()
			for i, f := range a.matrices {
				acc.addInput(i, a.matrix(item, f))
			}
			acc.addLabel(item.Label)
			a.passCount++
			if acc.size == a.cfg.BatchSize {
				return acc.stack()
			}
			continue
		}

		if err := a.it.Err(); err != nil {
			a.it = nil
			return nil, err
		}

		// End of one pass over the source.
		a.it = nil
		if acc.size > 0 {
			return acc.stack()
		}
		if a.passCount == 0 {
			return nil, fmt.Errorf("source has no tweets with recognized hashtags")
		}
	}
}

func (a *Aggregator) matrix(item *sequence.Item, f sequence.Field) *tensor.Dense {
	switch f {
	case sequence.FieldCharMatrix:
		return item.CharMatrix
	case sequence.FieldChrdMatrix:
		return item.ChrdMatrix
	default:
		return item.WordMatrix
	}
}

// accumulator collects per-tweet matrices until a batch is full, then
// stacks them. Stacking concatenates the row-major backings, which is
// exactly a new leading axis.
type accumulator struct {
	inputs [][]float64
	shapes []tensor.Shape
	labels []float64
	width  int
	size   int
}

func newAccumulator(numInputs int) *accumulator {
	return &accumulator{
		inputs: make([][]float64, numInputs),
		shapes: make([]tensor.Shape, numInputs),
	}
}

func (acc *accumulator) addInput(i int, m *tensor.Dense) {
	acc.shapes[i] = m.Shape()
	acc.inputs[i] = append(acc.inputs[i], m.Data().([]float64)...)
}

func (acc *accumulator) addLabel(label []float64) {
	acc.width = len(label)
	acc.labels = append(acc.labels, label...)
	acc.size++
}

func (acc *accumulator) stack() (*Batch, error) {
	batch := &Batch{Size: acc.size}
	for i, backing := range acc.inputs {
		rows, cols := acc.shapes[i][0], acc.shapes[i][1]
		batch.Inputs = append(batch.Inputs, tensor.New(
			tensor.WithShape(acc.size, rows, cols),
			tensor.WithBacking(backing),
		))
	}
	batch.Labels = tensor.New(
		tensor.WithShape(acc.size, acc.width),
		tensor.WithBacking(acc.labels),
	)
	return batch, nil
}
