package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dconathan/tweet2vec/internal/normalize"
)

func TestCleanIdempotent(t *testing.T) {
	tweets := []string{
		"",
		"RT @realDonaldTrump: A Clinton economy = more taxes and more spending! #DebateNight https://t.co/oFlaAhrwe5",
		"   lots    of   whitespace   ",
		"ALL CAPS TWEET!!!",
		"@mention at the start",
	}
	for _, tweet := range tweets {
		once := normalize.Clean(tweet)
		assert.Equal(t, once, normalize.Clean(once), "Clean should be idempotent for %q", tweet)
	}
}

func TestCleanSubstitutions(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Check https://t.co/xyz", "check httpurl"},
		{"@user123 hi", "@user hi"},
		{"RT @someone: hello", "@user hello"},
		{"contact me@example.com now", "contact email@address now"},
		{"Hello, World!", "hello world"},
		{"", ""},
		{"!!!###$$$", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, normalize.Clean(c.in), "Clean(%q)", c.in)
	}
}

func TestSplitHashtags(t *testing.T) {
	stripped, hashtags := normalize.SplitHashtags("hello #World! foo")
	assert.Equal(t, []string{"#world"}, hashtags)
	assert.Equal(t, "hello! foo", stripped)
}

func TestSplitHashtagsLeading(t *testing.T) {
	stripped, hashtags := normalize.SplitHashtags("#Trump2016 wins")
	assert.Equal(t, []string{"#trump2016"}, hashtags)
	assert.Equal(t, " wins", stripped)
}

func TestSplitHashtagsMidWordIgnored(t *testing.T) {
	// A '#' not at start-of-text or after whitespace is not a hashtag.
	stripped, hashtags := normalize.SplitHashtags("foo#bar baz")
	assert.Empty(t, hashtags)
	assert.Equal(t, "foo#bar baz", stripped)
}

func TestSplitHashtagsEmptyBodyDiscarded(t *testing.T) {
	_, hashtags := normalize.SplitHashtags("#_ foo")
	assert.Empty(t, hashtags)
}

func TestSplitHashtagsDuplicatesPreserved(t *testing.T) {
	_, hashtags := normalize.SplitHashtags("#a b #a")
	assert.Equal(t, []string{"#a", "#a"}, hashtags)
}

func TestSplitHashtagsEmptyInput(t *testing.T) {
	stripped, hashtags := normalize.SplitHashtags("")
	assert.Empty(t, hashtags)
	assert.Equal(t, "", stripped)
}

func TestCleanAll(t *testing.T) {
	out := normalize.CleanAll([]string{"Hello!", "WORLD"})
	assert.Equal(t, []string{"hello", "world"}, out)
}

func TestSplitHashtagsAll(t *testing.T) {
	stripped, hashtags := normalize.SplitHashtagsAll([]string{"#a one", "two"})
	assert.Equal(t, []string{" one", "two"}, stripped)
	assert.Equal(t, [][]string{{"#a"}, {}}, hashtags)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, normalize.Tokenize("Hello, World!"))
	assert.Empty(t, normalize.Tokenize(""))
}
