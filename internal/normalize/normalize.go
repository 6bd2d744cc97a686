package normalize

import (
	"regexp"
	"strings"
)

// Regular expressions are compiled once at package load. The hashtag and
// mention patterns only match at start-of-text or after whitespace so that
// things like "foo#bar" or email local parts are left alone.
var (
	hashtagRegex      = regexp.MustCompile(`\A#\w+|\s#\w+`)
	mentionRegex      = regexp.MustCompile(`\A@\w+|\s@\w+`)
	emailRegex        = regexp.MustCompile(`\S+@\S+.\S+`)
	urlRegex          = regexp.MustCompile(`\Ahttp\S+|\shttp\S+`)
	retweetRegex      = regexp.MustCompile(`\Art\s|\srt\s`)
	nonCharacterRegex = regexp.MustCompile(`[^@0-9a-zA-Z]+`)
	multiSpaceRegex   = regexp.MustCompile(`\s+`)
)

// Clean turns raw tweet text into its canonical cleaned form: lowercased,
// URLs/emails/mentions replaced with placeholder tokens, retweet markers
// removed, everything outside {@, 0-9, a-z} collapsed to single spaces,
// and the ends trimmed.
//
// The substitution order is significant and must not be rearranged: the URL
// substitution has to run before the generic non-character collapse (the
// collapse would destroy the "://" that makes a URL recognizable), and the
// mention substitution relies on '@' surviving the collapse.
//
// Clean is pure and total: it never fails, including on empty input, and
// Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	t := strings.ToLower(text)
	t = urlRegex.ReplaceAllString(t, " httpurl")
	t = nonCharacterRegex.ReplaceAllString(t, " ")
	t = emailRegex.ReplaceAllString(t, " email@address ")
	t = mentionRegex.ReplaceAllString(t, " @user")
	t = retweetRegex.ReplaceAllString(t, " ")
	t = multiSpaceRegex.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// CleanAll applies Clean element-wise.
func CleanAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = Clean(t)
	}
	return out
}

// SplitHashtags extracts hashtags from raw tweet text and returns the text
// with the matched spans removed, plus the extracted hashtags in order of
// occurrence (duplicates preserved). Each hashtag body is normalized with
// Clean and re-prefixed with '#'; a hashtag that cleans down to nothing is
// discarded. Extraction happens on the raw text, so changing the cleaning
// rules never changes which spans are recognized.
func SplitHashtags(text string) (string, []string) {
	matches := hashtagRegex.FindAllString(text, -1)
	hashtags := make([]string, 0, len(matches))
	for _, m := range matches {
		if h := "#" + Clean(m); h != "#" {
			hashtags = append(hashtags, h)
		}
	}
	return hashtagRegex.ReplaceAllString(text, ""), hashtags
}

// SplitHashtagsAll applies SplitHashtags element-wise.
func SplitHashtagsAll(texts []string) ([]string, [][]string) {
	stripped := make([]string, len(texts))
	hashtags := make([][]string, len(texts))
	for i, t := range texts {
		stripped[i], hashtags[i] = SplitHashtags(t)
	}
	return stripped, hashtags
}

// Tokenize returns the whitespace-delimited tokens of the cleaned text.
func Tokenize(text string) []string {
	return strings.Fields(Clean(text))
}
