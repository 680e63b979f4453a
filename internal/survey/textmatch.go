package survey

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

var leadingEnumeration = regexp.MustCompile(`^[0-9]+\.\s*`)

const droppedPunctuation = ".,。、?!ー・"

// NormalizeText reduces a question label to its matching key. Template labels and upload
// headers are authored independently, so enumeration prefixes, whitespace, common
// punctuation, character width and case are ignored.
func NormalizeText(label string) string {
	folded := width.Fold.String(label)
	folded = leadingEnumeration.ReplaceAllString(strings.TrimLeftFunc(folded, unicode.IsSpace), "")

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) || strings.ContainsRune(droppedPunctuation, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// QuestionIndex resolves free-text labels to canonical question labels.
type QuestionIndex struct {
	byKey map[string]string
}

// NewQuestionIndex indexes questions by normalized text. When two questions share a key
// the first one wins.
func NewQuestionIndex(questions []string) *QuestionIndex {
	idx := &QuestionIndex{byKey: make(map[string]string, len(questions))}
	for _, q := range questions {
		key := NormalizeText(q)
		if key == "" {
			continue
		}
		if _, exists := idx.byKey[key]; exists {
			continue
		}
		idx.byKey[key] = q
	}
	return idx
}

// Lookup returns the canonical question for label.
func (i *QuestionIndex) Lookup(label string) (string, bool) {
	if i == nil {
		return "", false
	}
	key := NormalizeText(label)
	if key == "" {
		return "", false
	}
	q, ok := i.byKey[key]
	return q, ok
}

// Len reports the number of indexed questions.
func (i *QuestionIndex) Len() int {
	if i == nil {
		return 0
	}
	return len(i.byKey)
}
