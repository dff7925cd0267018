package review

import (
	"errors"
	"fmt"
)

// ReviewError represents domain-specific errors for a review session
type ReviewError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e ReviewError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is matches review errors by code so wrapped and detailed copies compare equal
func (e ReviewError) Is(target error) bool {
	var other ReviewError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

var (
	// ErrMaxAttemptsReached indicates no further draft may be requested
	ErrMaxAttemptsReached = ReviewError{
		Code:    "REVIEW_MAX_ATTEMPTS",
		Message: "Maximum drafting attempts reached",
	}

	// ErrInvalidTransition indicates an invalid state transition
	ErrInvalidTransition = ReviewError{
		Code:    "REVIEW_INVALID_TRANSITION",
		Message: "Invalid state transition",
	}

	// ErrSessionCompleted indicates an operation on a finished session
	ErrSessionCompleted = ReviewError{
		Code:    "REVIEW_ALREADY_COMPLETED",
		Message: "Review session is already completed",
	}

	// ErrInvalidVerdict indicates reviewer input that maps to no verdict
	ErrInvalidVerdict = ReviewError{
		Code:    "REVIEW_INVALID_VERDICT",
		Message: "Invalid verdict value",
	}

	// ErrBriefAlreadySet indicates a second write to the research brief
	ErrBriefAlreadySet = ReviewError{
		Code:    "REVIEW_BRIEF_ALREADY_SET",
		Message: "Research brief is write-once",
	}

	// ErrNoDraft indicates a draft was required but none was produced yet
	ErrNoDraft = ReviewError{
		Code:    "REVIEW_NO_DRAFT",
		Message: "No draft has been produced",
	}

	// ErrDraftingFailed indicates the drafting collaborator or the review gate failed
	ErrDraftingFailed = ReviewError{
		Code:    "REVIEW_DRAFTING_FAILED",
		Message: "Drafting failed",
	}
)

// NewReviewError creates a new review error with details
func NewReviewError(code, message string, details map[string]interface{}) ReviewError {
	return ReviewError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// WithDetails adds details to an existing error
func (e ReviewError) WithDetails(details map[string]interface{}) ReviewError {
	e.Details = details
	return e
}

// IsMaxAttempts checks if the error is a max attempts error
func IsMaxAttempts(err error) bool {
	return errors.Is(err, ErrMaxAttemptsReached)
}

// IsInvalidTransition checks if the error is an invalid transition error
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsCompleted checks if the error is a completed session error
func IsCompleted(err error) bool {
	return errors.Is(err, ErrSessionCompleted)
}

// IsInvalidVerdict checks if the error is an invalid verdict error
func IsInvalidVerdict(err error) bool {
	return errors.Is(err, ErrInvalidVerdict)
}

// IsDraftingFailed checks if the error is a drafting failure
func IsDraftingFailed(err error) bool {
	return errors.Is(err, ErrDraftingFailed)
}
