package sequence

import "fmt"

// Field identifies one per-tweet derived value a Sequence can produce.
// The declaration order here is the canonical production order: requested
// fields are always built and yielded in this order, regardless of the
// order they were requested in.
type Field int

const (
	FieldHashtags Field = iota
	FieldRawTweet
	FieldRawTweetNoHashtags
	FieldTokenizedTweet
	FieldCleanTweet
	FieldWordMatrix
	FieldCharMatrix
	FieldChrdMatrix
	FieldLabel
	numFields
)

var fieldNames = map[Field]string{
	FieldHashtags:           "hashtags",
	FieldRawTweet:           "raw_tweet",
	FieldRawTweetNoHashtags: "raw_tweet_nohashtags",
	FieldTokenizedTweet:     "tokenized_tweet",
	FieldCleanTweet:         "clean_tweet",
	FieldWordMatrix:         "word_mat",
	FieldCharMatrix:         "char_mat",
	FieldChrdMatrix:         "chrd_mat",
	FieldLabel:              "label",
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(fieldNames))
	for f, name := range fieldNames {
		m[name] = f
	}
	return m
}()

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField resolves a field name like "clean_tweet" to its Field.
func ParseField(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}
