package deliverable

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

var hundred = decimal.NewFromInt(100)

type Deliverable struct {
	Id        int
	ProjectId int
	// ProjectName is joined for listings spanning projects.
	ProjectName string
	Name        string
	DueDate     time.Time
	// Hours is the estimated effort.
	Hours  decimal.Decimal
	Status Status
}

func (s Status) Valid() bool {
	return s == StatusNotStarted || s == StatusInProgress || s == StatusCompleted
}

type Progress struct {
	CompletedHours decimal.Decimal
	TotalHours     decimal.Decimal
	Percent        decimal.Decimal
	Completed      int
	Total          int
}

// ComputeProgress weighs deliverables by their estimated hours. Without any hours the progress is 0.
func ComputeProgress(deliverables []Deliverable) Progress {
	progress := Progress{Total: len(deliverables)}
	for _, d := range deliverables {
		progress.TotalHours = progress.TotalHours.Add(d.Hours)
		if d.Status == StatusCompleted {
			progress.Completed++
			progress.CompletedHours = progress.CompletedHours.Add(d.Hours)
		}
	}
	if progress.TotalHours.IsPositive() {
		progress.Percent = progress.CompletedHours.Div(progress.TotalHours).Mul(hundred).Round(2)
	}
	return progress
}
