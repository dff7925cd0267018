package output

import (
	"github.com/YoshitsuguKoike/repostflow/internal/application/dto"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

// Presenter defines the interface for presenting output to users.
// Implementations format for a terminal or as JSON.
type Presenter interface {
	PresentSuccess(message string, data interface{}) error
	PresentError(err error) error
}

// RunPresenter presents the results of repost runs
type RunPresenter interface {
	Presenter

	// PresentOutcome presents a finished run
	PresentOutcome(out *dto.KickoffOutput) error

	// PresentHistory presents recorded sessions, newest first
	PresentHistory(sessions []*review.Session) error
}
