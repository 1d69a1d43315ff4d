// Package textproc normalizes raw text into the whitespace-delimited,
// lowercase token stream the n-gram engine consumes, and offers a naive
// edit-distance spell corrector against a known vocabulary.
package textproc

import (
	"regexp"
	"strings"
)

// Cleaner normalizes raw text. Its behavior can be customized with
// functional options; the defaults lowercase the input, strip punctuation,
// and collapse runs of whitespace into single spaces.
type Cleaner struct {
	punctRegex *regexp.Regexp
	spaceRegex *regexp.Regexp
	lowercase  bool
}

// Option is a function that configures a Cleaner.
type Option func(*Cleaner)

// WithPunctRegex sets the regex whose matches are removed from the input.
// Default: `[^\w\s']`
func WithPunctRegex(expr string) Option {
	return func(c *Cleaner) {
		c.punctRegex = regexp.MustCompile(expr)
	}
}

// WithLowercase controls whether the input is case-folded.
// Default: true
func WithLowercase(lower bool) Option {
	return func(c *Cleaner) {
		c.lowercase = lower
	}
}

// NewCleaner creates a Cleaner with default settings, which can be
// overridden by providing one or more Option functions.
func NewCleaner(opts ...Option) *Cleaner {
	c := &Cleaner{
		// Everything that is not a word character, whitespace, or an
		// apostrophe is treated as punctuation and removed.
		punctRegex: regexp.MustCompile(`[^\w\s']`),
		spaceRegex: regexp.MustCompile(`\s+`),
		lowercase:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean returns the normalized form of text: case-folded (unless disabled),
// punctuation removed, whitespace collapsed, leading/trailing space trimmed.
func (c *Cleaner) Clean(text string) string {
	if c.lowercase {
		text = strings.ToLower(text)
	}
	text = c.punctRegex.ReplaceAllString(text, "")
	text = c.spaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Tokens cleans text and splits it into word tokens. The result is the
// exact input shape expected by ngram.Build.
func (c *Cleaner) Tokens(text string) []string {
	cleaned := c.Clean(text)
	if cleaned == "" {
		return nil
	}
	return strings.Fields(cleaned)
}
