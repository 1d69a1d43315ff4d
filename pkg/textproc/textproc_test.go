package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	c := NewCleaner()

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Hello World", "hello world"},
		{"strips punctuation", "hello, world! how are you?", "hello world how are you"},
		{"collapses whitespace", "hello   world\t\nagain", "hello world again"},
		{"keeps apostrophes", "don't stop", "don't stop"},
		{"trims", "  hello  ", "hello"},
		{"empty", "", ""},
		{"only punctuation", "?!.,;", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Clean(tc.in))
		})
	}
}

func TestTokens(t *testing.T) {
	c := NewCleaner()

	assert.Equal(t, []string{"one", "fish", "two", "fish"}, c.Tokens("One fish, two fish!"))
	assert.Nil(t, c.Tokens("  ...  "))
}

func TestCleanerOptions(t *testing.T) {
	c := NewCleaner(WithLowercase(false), WithPunctRegex(`[!?]`))

	assert.Equal(t, "Keep, Case", c.Clean("Keep, Case!?"))
}

func TestCorrect(t *testing.T) {
	vocab := []string{"hello", "world", "fish", "generate"}

	testCases := []struct {
		name string
		word string
		want string
	}{
		{"exact match", "fish", "fish"},
		{"one edit", "fich", "fish"},
		{"two edits", "wrold", "world"},
		{"too far", "zzzzzz", "zzzzzz"},
		{"empty vocab entry irrelevant", "helo", "hello"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Correct(tc.word, vocab))
		})
	}

	assert.Equal(t, "unchanged", Correct("unchanged", nil))
}

func TestCorrectAll(t *testing.T) {
	vocab := []string{"one", "fish", "two"}
	got := CorrectAll([]string{"one", "fihs", "twp"}, vocab)
	assert.Equal(t, []string{"one", "fish", "two"}, got)
}

func TestLevenshtein(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, levenshtein(tc.a, tc.b), "levenshtein(%q, %q)", tc.a, tc.b)
	}
}
