package output

import (
	"context"
	"errors"

	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

// ErrSessionNotFound is returned by FindSession for unknown IDs
var ErrSessionNotFound = errors.New("session not found")

// SessionRecorder persists review sessions for the history command.
// SaveSession is an upsert and is called after every state change.
// ListSessions returns the most recent sessions first.
type SessionRecorder interface {
	SaveSession(ctx context.Context, s *review.Session) error
	FindSession(ctx context.Context, id review.SessionID) (*review.Session, error)
	ListSessions(ctx context.Context, limit int) ([]*review.Session, error)
	Close() error
}
