package transcript

import (
	"errors"
	"strings"
	"time"

	"sbmn-interviewer/internal/llm"
)

// TimestampLayout is the wall-clock format of the first column.
const TimestampLayout = "2006-01-02 15:04:05"

const separator = "\n\n"

// ErrMalformed is returned by Parse when a block lacks a role prefix.
var ErrMalformed = errors.New("transcript block without role prefix")

// Record is one completed interview as written to the sheet.
type Record struct {
	Timestamp    time.Time
	Conversation string
	Artifact     string
}

// Row returns the record as spreadsheet cells: timestamp, conversation, artifact.
func (r Record) Row() []string {
	return []string{r.Timestamp.Local().Format(TimestampLayout), r.Conversation, r.Artifact}
}

// Retain drops messages whose role is in exclude.
func Retain(messages []llm.Message, exclude []llm.Role) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		if !excluded(exclude, m.Role) {
			out = append(out, m)
		}
	}
	return out
}

// Format renders messages as "ROLE: content" blocks separated by a blank line.
func Format(messages []llm.Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString(separator)
		}
		b.WriteString(prefix(m.Role))
		b.WriteString(m.Content)
	}
	return b.String()
}

// Parse splits a formatted conversation back into messages. Content holding a
// blank line followed by a role prefix is split there.
func Parse(text string) ([]llm.Message, error) {
	if text == "" {
		return nil, nil
	}
	var out []llm.Message
	rest := text
	for {
		role, body, ok := cutRole(rest)
		if !ok {
			return out, ErrMalformed
		}
		i := nextBoundary(body)
		if i < 0 {
			return append(out, llm.Message{Role: role, Content: body}), nil
		}
		out = append(out, llm.Message{Role: role, Content: body[:i]})
		rest = body[i+len(separator):]
	}
}

var knownRoles = []llm.Role{llm.RoleUser, llm.RoleAssistant, llm.RoleSystem}

func prefix(r llm.Role) string { return strings.ToUpper(string(r)) + ": " }

func cutRole(s string) (llm.Role, string, bool) {
	for _, r := range knownRoles {
		if body, ok := strings.CutPrefix(s, prefix(r)); ok {
			return r, body, true
		}
	}
	return "", "", false
}

func nextBoundary(s string) int {
	from := 0
	for {
		i := strings.Index(s[from:], separator)
		if i < 0 {
			return -1
		}
		at := from + i
		if _, _, ok := cutRole(s[at+len(separator):]); ok {
			return at
		}
		from = at + 1
	}
}

func excluded(roles []llm.Role, r llm.Role) bool {
	for _, x := range roles {
		if strings.EqualFold(string(x), string(r)) {
			return true
		}
	}
	return false
}
