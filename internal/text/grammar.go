// Package text splits recognizer output into paragraphs, sentences and words.
package text

import (
	"regexp"
	"strings"
)

var (
	// Sentences end at runs of terminators followed by optional whitespace, or at end of text.
	basicSentence = regexp.MustCompile(`.*?([.?!]+\s*|$)`)
	// Same, but a dot only ends a sentence when a non-word character follows it (keeps "google.com").
	sentenceKeepURL = regexp.MustCompile(`.*?(\.+[^\p{L}\p{N}_]+|[?!]+\s*|$)`)

	basicWord   = regexp.MustCompile(`([\p{L}\p{N}_]|[-'])+[^\p{L}\p{N}_]*`)
	wordKeepURL = regexp.MustCompile(`([\p{L}\p{N}_]|[-'.])+[^\p{L}\p{N}_]*`)

	// Complete-only variants require a boundary after the word, so a word the
	// recognizer is still spelling out is left out.
	wordOnlyComplete        = regexp.MustCompile(`([\p{L}\p{N}_]|[-'][\p{L}\p{N}_])+[^\p{L}\p{N}_\-']+`)
	wordOnlyCompleteKeepURL = regexp.MustCompile(`([\p{L}\p{N}_]|[-'.][\p{L}\p{N}_])+[^\p{L}\p{N}_\-']+`)
)

// Grammar is a sentence and word segmentation rule pair.
type Grammar struct {
	sentence *regexp.Regexp
	word     *regexp.Regexp
}

var (
	// Live is used for partial hypotheses: incomplete trailing words are dropped.
	Live = NewGrammar(true, true)
	// Final is used for final hypotheses: every word is kept.
	Final = NewGrammar(false, true)
)

// NewGrammar selects the regex pair. completeWordsOnly drops a trailing word
// with no boundary after it; keepURLs keeps dotted tokens such as "example.com" whole.
func NewGrammar(completeWordsOnly, keepURLs bool) Grammar {
	g := Grammar{sentence: basicSentence}
	if keepURLs {
		g.sentence = sentenceKeepURL
	}

	switch {
	case completeWordsOnly && keepURLs:
		g.word = wordOnlyCompleteKeepURL
	case completeWordsOnly:
		g.word = wordOnlyComplete
	case keepURLs:
		g.word = wordKeepURL
	default:
		g.word = basicWord
	}
	return g
}

// Parse splits text into a paragraph. It never fails; text without any
// recognizable word yields the empty paragraph.
func (g Grammar) Parse(text string) Paragraph {
	if strings.TrimSpace(text) == "" {
		return Paragraph{}
	}

	var sentences []Sentence
	for _, raw := range g.sentence.FindAllString(text, -1) {
		if raw == "" {
			continue
		}
		s := g.ParseSentence(raw)
		if len(s.Words) == 0 {
			continue
		}
		sentences = append(sentences, s)
	}
	if len(sentences) == 0 {
		return Paragraph{}
	}
	return NewParagraph(sentences)
}

// ParseSentence splits a single sentence into words, appending a space to
// every word that does not already end with one.
func (g Grammar) ParseSentence(text string) Sentence {
	matches := g.word.FindAllString(text, -1)
	words := make([]Word, 0, len(matches))
	for _, m := range matches {
		if !strings.HasSuffix(m, " ") {
			m += " "
		}
		words = append(words, NewWord(m))
	}
	return NewSentence(words)
}

// Parse splits partial recognizer text with the Live grammar.
func Parse(text string) Paragraph {
	return Live.Parse(text)
}

// ParseFinal splits final recognizer text with the Final grammar.
func ParseFinal(text string) Paragraph {
	return Final.Parse(text)
}
