package social

import (
	"fmt"
	"strings"
)

// NoResultsMessage is the digest when no profile produced a section
const NoResultsMessage = "No results retrieved from any profile."

// dateLayout renders creation times as "2025-01-31 14:05 UTC"
const dateLayout = "2006-01-02 15:04"

// Section is one profile's block in a digest
type Section struct {
	Username string
	Window   Window
	Posts    []Post
	// Message replaces the post listing for failures and empty profiles
	Message string
}

// NotFoundSection reports a username that does not exist
func NotFoundSection(username string) Section {
	return Section{Username: username, Message: fmt.Sprintf("Error: User '@%s' not found on X.com", username)}
}

// UserErrorSection reports a failed user lookup
func UserErrorSection(username string, err error) Section {
	return Section{Username: username, Message: fmt.Sprintf("Error fetching user '@%s': %v", username, err)}
}

// TweetsErrorSection reports a failed timeline fetch
func TweetsErrorSection(username string, err error) Section {
	return Section{Username: username, Message: fmt.Sprintf("Error fetching tweets for @%s: %v", username, err)}
}

// EmptySection reports a profile without any original post
func EmptySection(username string) Section {
	return Section{Username: username, Message: fmt.Sprintf("No posts found for @%s.", username)}
}

// MessageSection is a section that only carries msg, not tied to a profile
func MessageSection(msg string) Section {
	return Section{Message: msg}
}

// PostsSection lists posts selected by the given window
func PostsSection(username string, window Window, posts []Post) Section {
	return Section{Username: username, Window: window, Posts: posts}
}

// IsError returns true if the section reports a failure
func (s Section) IsError() bool {
	return strings.HasPrefix(s.Message, "Error")
}

// String renders the section in the digest layout
func (s Section) String() string {
	if s.Message != "" {
		return s.Message
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Posts from @%s (%s):\n", s.Username, s.Window)
	for i, p := range s.Posts {
		fmt.Fprintf(&b, "\n--- Post %d ---\n", i+1)
		fmt.Fprintf(&b, "Date: %s UTC\n", p.CreatedAt.UTC().Format(dateLayout))
		fmt.Fprintf(&b, "Text: %s\n", p.Text)
		fmt.Fprintf(&b, "URL: %s\n", p.URL(s.Username))
		fmt.Fprintf(&b, "Likes: %d, Retweets: %d, Replies: %d\n", p.Metrics.Likes, p.Metrics.Retweets, p.Metrics.Replies)
	}
	fmt.Fprintf(&b, "\nTotal posts from @%s: %d", s.Username, len(s.Posts))
	return b.String()
}

// Digest is the per-profile result of one fetch, in input order
type Digest struct {
	Sections []Section
}

// String joins the sections with a blank line between them
func (d Digest) String() string {
	if len(d.Sections) == 0 {
		return NoResultsMessage
	}
	parts := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		parts[i] = s.String()
	}
	return strings.Join(parts, "\n\n")
}

// PostCount returns the number of posts across all sections
func (d Digest) PostCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Posts)
	}
	return n
}
