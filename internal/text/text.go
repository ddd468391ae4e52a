package text

import (
	"strings"
	"unicode/utf8"
)

// Word is a single token of recognized text, including the separator that
// followed it, so words can be concatenated without re-inserting spaces.
type Word struct {
	Text   string
	Length int
}

func NewWord(text string) Word {
	return Word{Text: text, Length: utf8.RuneCountInString(text)}
}

type Sentence struct {
	Words  []Word
	Length int
}

func NewSentence(words []Word) Sentence {
	length := 0
	for _, w := range words {
		length += w.Length
	}
	return Sentence{Words: words, Length: length}
}

// Paragraph is an ordered list of sentences. The zero value is the empty paragraph.
type Paragraph struct {
	Sentences []Sentence
	Length    int
}

func NewParagraph(sentences []Sentence) Paragraph {
	length := 0
	for _, s := range sentences {
		length += s.Length
	}
	return Paragraph{Sentences: sentences, Length: length}
}

// IsEmpty reports whether the paragraph holds no text.
func (p Paragraph) IsEmpty() bool {
	return p.Length <= 0
}

// WordCount returns the number of words across all sentences.
func (p Paragraph) WordCount() int {
	n := 0
	for _, s := range p.Sentences {
		n += len(s.Words)
	}
	return n
}

// Words flattens the paragraph into its words in reading order.
func (p Paragraph) Words() []Word {
	words := make([]Word, 0, p.WordCount())
	for _, s := range p.Sentences {
		words = append(words, s.Words...)
	}
	return words
}

func (p Paragraph) String() string {
	var b strings.Builder
	b.Grow(p.Length)
	for _, s := range p.Sentences {
		for _, w := range s.Words {
			b.WriteString(w.Text)
		}
	}
	return b.String()
}
