package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorgonia.org/tensor"

	"github.com/dconathan/tweet2vec/internal/batch"
	"github.com/dconathan/tweet2vec/internal/config"
	"github.com/dconathan/tweet2vec/internal/embedding"
	"github.com/dconathan/tweet2vec/internal/sequence"
	"github.com/dconathan/tweet2vec/internal/source"
	"github.com/dconathan/tweet2vec/internal/vocab"
)

// testTweets is a tiny built-in corpus for trying the pipeline without a
// source file.
var testTweets = source.Slice{
	"RT @realDonaldTrump: A Clinton economy = more taxes and more spending! #DebateNight https://t.co/oFlaAhrwe5",
	"RT @NimbleNavgater: Literally TENS of people showed up to see Hillary and Tim Kaine today in PA! #WeHateHillary #CrookedHillary https://t.c…",
	"RT @AP: Nielsen estimates Clinton speech watched by 29.8 million people; 32.2 million watched Trump at RNC. https://t.co/S5CtwXj29A",
	"#FreeLeonardPelter @BarackObama @POTUS Please do the right thing. Let him spend his last days at home. https://t.co/b4DCFy78mi",
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "tweet2vec")

	cfg := config.Load()

	root := &cobra.Command{
		Use:   "tweet2vec",
		Short: "Turn raw tweets into fixed-shape training encodings",
	}
	root.AddCommand(
		prepareCmd(cfg, entry),
		binarizeCmd(cfg, entry),
		previewCmd(cfg, entry),
		batchesCmd(cfg, entry),
	)

	if err := root.Execute(); err != nil {
		entry.Fatal(err)
	}
}

// resolveSource turns an optional positional path into a Source, falling
// back to the built-in test tweets.
func resolveSource(args []string, entry *logrus.Entry) source.Source {
	if len(args) == 0 {
		entry.Info("No source given, using built-in test tweets")
		return testTweets
	}
	return source.NewFile(args[0])
}

// loadResources loads whichever shared collaborators exist on disk. Missing
// artifacts are warnings here: sequences that actually need them fail fast
// at construction.
func loadResources(cfg *config.Config, entry *logrus.Entry) sequence.Resources {
	var res sequence.Resources

	if _, err := os.Stat(cfg.Models.EmbeddingsPath); err == nil {
		store, err := embedding.Load(cfg.Models.EmbeddingsPath)
		if err != nil {
			entry.WithError(err).Fatal("Failed to load embeddings")
		}
		res.Store = store
	} else {
		entry.WithField("path", cfg.Models.EmbeddingsPath).
			Warn("Embeddings not found, will not be able to create word matrices")
	}

	if _, err := os.Stat(cfg.Models.BinarizerPath); err == nil {
		b, err := vocab.LoadBinarizer(cfg.Models.BinarizerPath)
		if err != nil {
			entry.WithError(err).Fatal("Failed to load binarizer")
		}
		res.Binarizer = b
	} else {
		entry.WithField("path", cfg.Models.BinarizerPath).
			Warn("Binarizer not found, will not be able to encode labels")
	}

	return res
}

func prepareCmd(cfg *config.Config, entry *logrus.Entry) *cobra.Command {
	topN := cfg.Models.PrepareTopN
	cmd := &cobra.Command{
		Use:   "prepare [source]",
		Short: "Count hashtag frequency and save the top-N vocabulary list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(cfg.Models.Dir, 0755); err != nil {
				return fmt.Errorf("failed to create model dir: %w", err)
			}

			builder := vocab.NewBuilder(topN, entry)
			top, counts, err := builder.Build(resolveSource(args, entry))
			if err != nil {
				return err
			}

			if err := vocab.SaveList(top, cfg.Models.HashtagsPath); err != nil {
				return err
			}
			if err := vocab.SaveCounts(counts, cfg.Models.CountsPath); err != nil {
				return err
			}
			entry.WithFields(logrus.Fields{
				"hashtags": len(top),
				"path":     cfg.Models.HashtagsPath,
			}).Info("Saved hashtag vocabulary")
			return nil
		},
	}
	cmd.Flags().IntVar(&topN, "top-n", topN, "number of hashtags to keep")
	return cmd
}

func binarizeCmd(cfg *config.Config, entry *logrus.Entry) *cobra.Command {
	topN := cfg.Models.BinarizerTopN
	cmd := &cobra.Command{
		Use:   "binarize",
		Short: "Build the label binarizer artifact from the saved vocabulary list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(filepath.Dir(cfg.Models.BinarizerPath), 0755); err != nil {
				return fmt.Errorf("failed to create model dir: %w", err)
			}

			hashtags, err := vocab.LoadList(cfg.Models.HashtagsPath)
			if err != nil {
				return err
			}
			if len(hashtags) > topN {
				hashtags = hashtags[:topN]
			}

			b := vocab.NewBinarizer(hashtags)
			if err := b.Save(cfg.Models.BinarizerPath); err != nil {
				return err
			}
			entry.WithFields(logrus.Fields{
				"classes": b.Width(),
				"path":    cfg.Models.BinarizerPath,
			}).Info("Saved binarizer")
			return nil
		},
	}
	cmd.Flags().IntVar(&topN, "top-n", topN, "number of vocabulary classes to keep")
	return cmd
}

func previewCmd(cfg *config.Config, entry *logrus.Entry) *cobra.Command {
	fields := []string{"clean_tweet"}
	skip := cfg.Pipeline.SkipNoHashtag
	cmd := &cobra.Command{
		Use:   "preview [source]",
		Short: "Print per-tweet derived values for a source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := loadResources(cfg, entry)
			seq, err := sequence.NewFromNames(sequence.Config{
				MaxChars:      cfg.Pipeline.MaxChars,
				MaxWords:      cfg.Pipeline.MaxWords,
				SkipNoHashtag: skip,
			}, resolveSource(args, entry), res, entry, fields...)
			if err != nil {
				return err
			}

			it, err := seq.Scan()
			if err != nil {
				return err
			}
			defer it.Close()

			for it.Next() {
				values := it.Item().Values()
				parts := make([]string, len(values))
				for i, v := range values {
					parts[i] = formatValue(v)
				}
				fmt.Println(strings.Join(parts, "\t"))
			}
			return it.Err()
		},
	}
	cmd.Flags().StringSliceVar(&fields, "fields", fields,
		"fields to produce (hashtags, raw_tweet, raw_tweet_nohashtags, tokenized_tweet, clean_tweet, word_mat, char_mat, chrd_mat, label)")
	cmd.Flags().BoolVar(&skip, "skip-nohashtag", skip, "skip tweets without recognized hashtags")
	return cmd
}

func batchesCmd(cfg *config.Config, entry *logrus.Entry) *cobra.Command {
	count := 3
	cmd := &cobra.Command{
		Use:   "batches [source]",
		Short: "Produce a few batches and print their shapes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := loadResources(cfg, entry)
			agg, err := batch.New(batch.Config{
				BatchSize: cfg.Pipeline.BatchSize,
				MaxChars:  cfg.Pipeline.MaxChars,
				MaxWords:  cfg.Pipeline.MaxWords,
				Char:      cfg.Pipeline.CharMatrix,
				Chrd:      cfg.Pipeline.ChrdMatrix,
				Word:      cfg.Pipeline.WordMatrix,
			}, resolveSource(args, entry), res, entry)
			if err != nil {
				return err
			}

			for i := 0; i < count; i++ {
				b, err := agg.Next()
				if err != nil {
					return err
				}
				shapes := make([]string, len(b.Inputs))
				for j, in := range b.Inputs {
					shapes[j] = fmt.Sprint(in.Shape())
				}
				fmt.Printf("batch %d: size=%d inputs=[%s] labels=%s\n",
					i, b.Size, strings.Join(shapes, " "), b.Labels.Shape())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", count, "number of batches to produce")
	return cmd
}

func formatValue(v any) string {
	switch val := v.(type) {
	case *tensor.Dense:
		return fmt.Sprint(val.Shape())
	case []string:
		return strings.Join(val, ",")
	case []float64:
		return fmt.Sprintf("label(width=%d)", len(val))
	default:
		return fmt.Sprint(val)
	}
}
