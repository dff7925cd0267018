package draft

import (
	"fmt"
	"strings"
)

// WriterSystemPrompt sets the voice of the drafting agent
const WriterSystemPrompt = `You are a LinkedIn writer who sounds like a person, not a brand.
You write the way people talk to friends about something they just read: short sentences,
the odd fragment, a rhetorical question, a clear opinion. You poke at hype when it deserves it.
You never use corporate jargon, bullet lists, headings, or any Markdown.
You always include the link to the original X post you are commenting on.`

// DraftPrompt holds the inputs of one drafting call
type DraftPrompt struct {
	Brief         string
	PreviousDraft string // body of the rejected draft, without caption
	Feedback      string // reviewer feedback on PreviousDraft
	Revision      bool
}

// Build renders the prompt sent to the drafting agent
func (p DraftPrompt) Build() string {
	var b strings.Builder

	b.WriteString("Here is research on an X post worth sharing:\n\n")
	b.WriteString(strings.TrimSpace(p.Brief))
	b.WriteString("\n\n")
	b.WriteString("Write a LinkedIn post about it. Keep it casual and opinionated, show that you ")
	b.WriteString("understand the topic without lecturing, keep it short, and include the link ")
	b.WriteString("to the original post. Plain text only.")

	if p.Revision {
		b.WriteString("\n\nThe previous draft was rejected:\n")
		b.WriteString(p.PreviousDraft)
		b.WriteString("\n\n")
		if strings.TrimSpace(p.Feedback) != "" {
			fmt.Fprintf(&b, "Reviewer feedback: %s\n\n", p.Feedback)
		} else {
			b.WriteString("Reviewer feedback: none given, try a different angle.\n\n")
		}
		b.WriteString("Write a revised post addressing the feedback.")
	}

	return b.String()
}

// WithCaption appends the footer to a draft body. An empty caption leaves the body unchanged.
func WithCaption(body, caption string) string {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return body
	}
	return body + "\n\n" + caption
}

// cleanOutput trims whitespace and a surrounding code fence some models add
func cleanOutput(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		if idx := strings.Index(s, "\n"); idx >= 0 && !strings.Contains(s[:idx], " ") {
			s = s[idx+1:] // drop a language tag such as ```text
		}
		s = strings.TrimSpace(s)
	}
	return s
}
