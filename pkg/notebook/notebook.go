package notebook

import (
	"encoding/json"
	"errors"
	"time"

	"notebook-markdown-be/pkg/formatting"
)

// DefaultRelativeMinutes is the time range given to notebooks built from Markdown.
const DefaultRelativeMinutes int64 = -60

var ErrInvalidTimeRange = errors.New("time range must be either relative or absolute")

// TimeRange is either relative to now (Minutes, negative means the past) or
// absolute (From, To). Exactly one form is set.
type TimeRange struct {
	Minutes *int64     `json:"minutes,omitempty"`
	From    *time.Time `json:"from,omitempty"`
	To      *time.Time `json:"to,omitempty"`
}

func RelativeTimeRange(minutes int64) TimeRange {
	return TimeRange{Minutes: &minutes}
}

func AbsoluteTimeRange(from, to time.Time) TimeRange {
	return TimeRange{From: &from, To: &to}
}

func DefaultTimeRange() TimeRange {
	return RelativeTimeRange(DefaultRelativeMinutes)
}

func (r TimeRange) IsRelative() bool {
	return r.Minutes != nil
}

func (r TimeRange) Validate() error {
	relative := r.Minutes != nil
	absolute := r.From != nil && r.To != nil
	if relative == absolute {
		return ErrInvalidTimeRange
	}
	if absolute && r.To.Before(*r.From) {
		return ErrInvalidTimeRange
	}
	return nil
}

// Resolve returns the concrete window the range covers at the given instant.
func (r TimeRange) Resolve(now time.Time) (time.Time, time.Time) {
	if r.Minutes != nil {
		other := now.Add(time.Duration(*r.Minutes) * time.Minute)
		if other.After(now) {
			return now, other
		}
		return other, now
	}
	if r.From != nil && r.To != nil {
		return *r.From, *r.To
	}
	return now, now
}

// NewNotebook is a notebook that has not been stored yet.
type NewNotebook struct {
	Title     string
	Cells     []Cell
	TimeRange TimeRange
	Labels    []formatting.Label
}

type newNotebookJSON struct {
	Title     string             `json:"title"`
	Cells     json.RawMessage    `json:"cells"`
	TimeRange TimeRange          `json:"timeRange"`
	Labels    []formatting.Label `json:"labels"`
}

func (n NewNotebook) MarshalJSON() ([]byte, error) {
	cells, err := MarshalCells(n.Cells)
	if err != nil {
		return nil, err
	}
	labels := n.Labels
	if labels == nil {
		labels = []formatting.Label{}
	}
	return json.Marshal(newNotebookJSON{
		Title:     n.Title,
		Cells:     cells,
		TimeRange: n.TimeRange,
		Labels:    labels,
	})
}

func (n *NewNotebook) UnmarshalJSON(data []byte) error {
	var in newNotebookJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	cells, err := UnmarshalCells(in.Cells)
	if err != nil {
		return err
	}
	n.Title = in.Title
	n.Cells = cells
	n.TimeRange = in.TimeRange
	n.Labels = in.Labels
	return nil
}
