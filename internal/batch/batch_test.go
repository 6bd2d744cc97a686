package batch_test

import (
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dconathan/tweet2vec/internal/batch"
	"github.com/dconathan/tweet2vec/internal/sequence"
	"github.com/dconathan/tweet2vec/internal/source"
	"github.com/dconathan/tweet2vec/internal/vocab"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce log noise in tests
	return logrus.NewEntry(logger)
}

// qualifyingSource builds a source with n tagged tweets, interleaved with
// lines the skip filter drops.
func qualifyingSource(n int) source.Source {
	var lines source.Slice
	for i := 0; i < n; i++ {
		lines = append(lines, fmt.Sprintf("#ok tweet number %d", i))
		lines = append(lines, "filler line with no tags")
	}
	return lines
}

func testConfig() batch.Config {
	return batch.Config{
		BatchSize: 3,
		MaxChars:  20,
		MaxWords:  5,
		Char:      true,
		Chrd:      true,
	}
}

func testResources() sequence.Resources {
	return sequence.Resources{Binarizer: vocab.NewBinarizer([]string{"#ok"})}
}

func TestBatchSizesOverOnePass(t *testing.T) {
	agg, err := batch.New(testConfig(), qualifyingSource(7), testResources(), testLogger())
	require.NoError(t, err)

	var sizes []int
	for i := 0; i < 3; i++ {
		b, err := agg.Next()
		require.NoError(t, err)
		sizes = append(sizes, b.Size)
	}
	assert.Equal(t, []int{3, 3, 1}, sizes, "one pass over 7 items at batch size 3, partial flushed")

	// The aggregator cycles: the next request starts pass 2 with fresh
	// accumulation, it never reports exhaustion.
	b, err := agg.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, b.Size)
}

func TestBatchShapes(t *testing.T) {
	agg, err := batch.New(testConfig(), qualifyingSource(7), testResources(), testLogger())
	require.NoError(t, err)

	b, err := agg.Next()
	require.NoError(t, err)

	require.Len(t, b.Inputs, 2)
	assert.Equal(t, []int{3, 20, 68}, []int(b.Inputs[0].Shape()), "stacked char tensor")
	assert.Equal(t, []int{3, 5, 68}, []int(b.Inputs[1].Shape()), "stacked chrd tensor")
	assert.Equal(t, []int{3, 1}, []int(b.Labels.Shape()), "stacked label matrix")
}

func TestExactMultipleHasNoPartialBatch(t *testing.T) {
	agg, err := batch.New(testConfig(), qualifyingSource(6), testResources(), testLogger())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		b, err := agg.Next()
		require.NoError(t, err)
		assert.Equal(t, 3, b.Size)
	}
	// Pass 2 starts immediately, no size-0 flush in between.
	b, err := agg.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, b.Size)
}

func TestBatchLabels(t *testing.T) {
	agg, err := batch.New(testConfig(), qualifyingSource(3), testResources(), testLogger())
	require.NoError(t, err)

	b, err := agg.Next()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, b.Labels.Data().([]float64), "every stacked row labels #ok")
}

func TestNoQualifyingItems(t *testing.T) {
	src := source.Slice{"no tags", "none here either"}
	agg, err := batch.New(testConfig(), src, testResources(), testLogger())
	require.NoError(t, err)

	_, err = agg.Next()
	assert.Error(t, err, "a source with no recognized hashtags can't batch forever")
}

func TestLabelsOnlyBatches(t *testing.T) {
	cfg := testConfig()
	cfg.Char = false
	cfg.Chrd = false

	agg, err := batch.New(cfg, qualifyingSource(4), testResources(), testLogger())
	require.NoError(t, err)

	b, err := agg.Next()
	require.NoError(t, err)
	assert.Empty(t, b.Inputs)
	assert.Equal(t, []int{3, 1}, []int(b.Labels.Shape()))
}

func TestMissingBinarizer(t *testing.T) {
	_, err := batch.New(testConfig(), qualifyingSource(1), sequence.Resources{}, testLogger())
	assert.Error(t, err, "the aggregator always emits labels, so a binarizer is required")
}

func TestWordBatchesWithoutStore(t *testing.T) {
	cfg := testConfig()
	cfg.Word = true

	_, err := batch.New(cfg, qualifyingSource(1), testResources(), testLogger())
	assert.Error(t, err)
}
