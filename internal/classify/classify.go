// Package classify assigns a content kind to captured clipboard text.
//
// Classification is an ordered list of cheap heuristics, not a parser: the
// first rule whose predicate matches wins, and prose that happens to contain
// a brace will be tagged as code. That trade-off is deliberate — the kinds
// only drive grouping and display in the history, so a misclassification is
// cosmetic.
package classify

import (
	"regexp"
	"strings"
)

// Kind is the inferred content kind of a capture.
type Kind string

const (
	KindText Kind = "text"
	KindURL  Kind = "url"
	KindCode Kind = "code"
)

// Rule pairs a kind with the predicate that detects it.
type Rule struct {
	Kind  Kind
	Match func(text string) bool
}

// Classifier runs rules in order and returns the first matching kind.
type Classifier struct {
	rules []Rule
}

var urlPattern = regexp.MustCompile(`(?i)^https?://\S+$`)

// codeMarkers are substrings whose presence suggests source code.
var codeMarkers = []string{"function", "const", "=>", "class", "{", "}"}

// New returns a classifier with the default rule order: URL before code,
// falling through to plain text.
func New() *Classifier {
	return &Classifier{
		rules: []Rule{
			{Kind: KindURL, Match: isURL},
			{Kind: KindCode, Match: looksLikeCode},
		},
	}
}

// NewWithRules returns a classifier using the given rules verbatim. Rules are
// evaluated in slice order; text matching no rule is KindText.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify maps text to a Kind. Pure and total: any input yields a kind.
func (c *Classifier) Classify(text string) Kind {
	for _, r := range c.rules {
		if r.Match(text) {
			return r.Kind
		}
	}
	return KindText
}

func isURL(text string) bool {
	return urlPattern.MatchString(strings.TrimSpace(text))
}

func looksLikeCode(text string) bool {
	for _, m := range codeMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
