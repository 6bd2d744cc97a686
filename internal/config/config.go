package config

import (
	"os"
	"strconv"
)

// Config holds the configuration for the preprocessing pipeline
type Config struct {
	Pipeline PipelineConfig
	Models   ModelsConfig
}

// PipelineConfig holds encoding and batching knobs
type PipelineConfig struct {
	MaxChars      int
	MaxWords      int
	BatchSize     int
	SkipNoHashtag bool
	CharMatrix    bool
	ChrdMatrix    bool
	WordMatrix    bool
}

// ModelsConfig holds paths to the persisted model artifacts
type ModelsConfig struct {
	Dir            string
	EmbeddingsPath string
	HashtagsPath   string
	CountsPath     string
	BinarizerPath  string
	PrepareTopN    int
	BinarizerTopN  int
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			MaxChars:      GetIntEnv("TWEET2VEC_MAX_CHARS", 140),
			MaxWords:      GetIntEnv("TWEET2VEC_MAX_WORDS", 30),
			BatchSize:     GetIntEnv("TWEET2VEC_BATCH_SIZE", 10),
			SkipNoHashtag: GetBoolEnv("TWEET2VEC_SKIP_NOHASHTAG", true),
			CharMatrix:    GetBoolEnv("TWEET2VEC_CHAR_MATRIX", true),
			ChrdMatrix:    GetBoolEnv("TWEET2VEC_CHRD_MATRIX", true),
			WordMatrix:    GetBoolEnv("TWEET2VEC_WORD_MATRIX", true),
		},
		Models: ModelsConfig{
			Dir:            GetStringEnv("TWEET2VEC_MODEL_DIR", "./models"),
			EmbeddingsPath: GetStringEnv("TWEET2VEC_EMBEDDINGS", "./models/w2v.txt"),
			HashtagsPath:   GetStringEnv("TWEET2VEC_HASHTAGS", "./models/hashtags.txt"),
			CountsPath:     GetStringEnv("TWEET2VEC_HASHTAG_COUNTS", "./models/hashtag_counts.json"),
			BinarizerPath:  GetStringEnv("TWEET2VEC_BINARIZER", "./models/binarizer.json"),
			PrepareTopN:    GetIntEnv("TWEET2VEC_PREPARE_TOP_N", 2000),
			BinarizerTopN:  GetIntEnv("TWEET2VEC_BINARIZER_TOP_N", 1000),
		},
	}
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
