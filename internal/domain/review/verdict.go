package review

import (
	"strings"
)

// VerdictKind is the reviewer's decision on a single draft
type VerdictKind string

const (
	VerdictApproved  VerdictKind = "approved"  // Publish the draft
	VerdictRejected  VerdictKind = "rejected"  // Revise with feedback
	VerdictCancelled VerdictKind = "cancelled" // Stop without publishing
)

// String returns the string representation of the verdict kind
func (k VerdictKind) String() string {
	return string(k)
}

// IsValid returns true if the verdict kind is known
func (k VerdictKind) IsValid() bool {
	switch k {
	case VerdictApproved, VerdictRejected, VerdictCancelled:
		return true
	default:
		return false
	}
}

// Verdict is what a ReviewGate returns for one draft.
// Feedback is the revision request for rejections and an optional note otherwise.
type Verdict struct {
	Kind     VerdictKind `json:"kind" yaml:"kind"`
	Feedback string      `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// Approve builds an approval, optionally carrying a reviewer note
func Approve(note string) Verdict {
	return Verdict{Kind: VerdictApproved, Feedback: strings.TrimSpace(note)}
}

// Reject builds a rejection carrying the revision feedback
func Reject(feedback string) Verdict {
	return Verdict{Kind: VerdictRejected, Feedback: strings.TrimSpace(feedback)}
}

// Cancel builds a cancellation
func Cancel() Verdict {
	return Verdict{Kind: VerdictCancelled}
}

// IsApproved returns true for approvals
func (v Verdict) IsApproved() bool { return v.Kind == VerdictApproved }

// IsRejected returns true for rejections
func (v Verdict) IsRejected() bool { return v.Kind == VerdictRejected }

// IsCancelled returns true for cancellations
func (v Verdict) IsCancelled() bool { return v.Kind == VerdictCancelled }

// String renders the verdict the way ParseVerdict accepts it back
func (v Verdict) String() string {
	if v.Feedback == "" {
		return string(v.Kind)
	}
	return string(v.Kind) + ": " + v.Feedback
}

// ParseVerdict turns free-form reviewer input into a Verdict.
// The first word selects the kind; the rest is the feedback. Text that starts
// with no keyword is treated as revision feedback.
func ParseVerdict(input string) (Verdict, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Verdict{}, ErrInvalidVerdict
	}

	keyword, rest := splitKeyword(text)
	switch strings.ToLower(keyword) {
	case "approve", "approved", "ok", "yes", "y", "publish", "lgtm":
		return Approve(rest), nil
	case "reject", "rejected", "no", "n", "revise", "changes":
		return Reject(rest), nil
	case "cancel", "cancelled", "canceled", "skip", "quit", "abort":
		return Cancel(), nil
	default:
		return Reject(text), nil
	}
}

// ParseVerdictKind parses a bare kind such as a configured default verdict
func ParseVerdictKind(s string) (VerdictKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved", "approve":
		return VerdictApproved, nil
	case "rejected", "reject":
		return VerdictRejected, nil
	case "cancelled", "canceled", "cancel":
		return VerdictCancelled, nil
	default:
		return "", ErrInvalidVerdict.WithDetails(map[string]interface{}{"value": s})
	}
}

// splitKeyword separates the first word from the remainder.
// "reject: too long" and "reject - too long" both yield ("reject", "too long").
func splitKeyword(text string) (string, string) {
	idx := strings.IndexAny(text, " \t\n:")
	if idx < 0 {
		return text, ""
	}
	rest := strings.TrimSpace(text[idx:])
	rest = strings.TrimLeft(rest, ":-")
	return text[:idx], strings.TrimSpace(rest)
}
