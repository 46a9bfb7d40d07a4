// Package completion detects the end of an interview from the model's reply.
//
// The check is purely syntactic: a reply is final when it carries the
// "MODELO SBMN" marker and a horizontal rule drawn with '═'. Nothing about the
// artifact's structure is validated.
package completion

import (
	"strings"

	"sbmn-interviewer/internal/llm"
)

const (
	Marker  = "MODELO SBMN"
	Rule    = '═'
	MinRule = 3
)

type Detector struct {
	Marker  string
	Rule    rune
	MinRule int
}

// Default matches the marker and a run of at least three '═'.
var Default = Detector{Marker: Marker, Rule: Rule, MinRule: MinRule}

// IsComplete reports whether text holds both the marker and the rule, in any order.
func (d Detector) IsComplete(text string) bool {
	if d.Marker == "" || !strings.Contains(text, d.Marker) {
		return false
	}
	n := d.MinRule
	if n < 1 {
		n = 1
	}
	return strings.Contains(text, strings.Repeat(string(d.Rule), n))
}

// Extract returns the content of the most recent message holding the marker,
// or "" when none does.
func (d Detector) Extract(messages []llm.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.Contains(messages[i].Content, d.Marker) {
			return messages[i].Content
		}
	}
	return ""
}

func IsComplete(text string) bool { return Default.IsComplete(text) }

func Extract(messages []llm.Message) string { return Default.Extract(messages) }
