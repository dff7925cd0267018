package presenter

import (
	"encoding/json"
	"io"

	"github.com/YoshitsuguKoike/repostflow/internal/application/dto"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

// JSONPresenter implements output.RunPresenter for programmatic consumption
type JSONPresenter struct {
	output io.Writer
}

var _ output.RunPresenter = (*JSONPresenter)(nil)

// NewJSONPresenter creates a new JSON presenter
func NewJSONPresenter(output io.Writer) *JSONPresenter {
	return &JSONPresenter{output: output}
}

// PresentSuccess presents a successful result as JSON
func (p *JSONPresenter) PresentSuccess(message string, data interface{}) error {
	return p.encode(map[string]interface{}{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// PresentError presents an error as JSON
func (p *JSONPresenter) PresentError(err error) error {
	return p.encode(map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	})
}

// PresentOutcome encodes the run output as one JSON object
func (p *JSONPresenter) PresentOutcome(out *dto.KickoffOutput) error {
	return p.encode(out)
}

// PresentHistory encodes the sessions as a JSON array
func (p *JSONPresenter) PresentHistory(sessions []*review.Session) error {
	if sessions == nil {
		sessions = []*review.Session{}
	}
	return p.encode(sessions)
}

func (p *JSONPresenter) encode(v interface{}) error {
	enc := json.NewEncoder(p.output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewRunPresenter returns the presenter for a --format value
func NewRunPresenter(format string, w io.Writer) output.RunPresenter {
	if format == "json" {
		return NewJSONPresenter(w)
	}
	return NewCLIPresenter(w)
}
