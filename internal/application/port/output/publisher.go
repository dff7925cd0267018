package output

import "context"

// Publisher posts approved text to the social network.
// Failures are reported in the result, never as a Go error, so a
// publishing problem ends the flow with a readable outcome.
type Publisher interface {
	Publish(ctx context.Context, text string) PublishResult
}

// PublishResult describes what happened to a publish attempt
type PublishResult struct {
	OK      bool
	PostID  string
	Message string // human-readable result line
}

// String returns the human-readable result line
func (r PublishResult) String() string {
	return r.Message
}
