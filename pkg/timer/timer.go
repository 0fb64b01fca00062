package timer

import (
	"time"
)

// Timer is the running time measurement of a user. A user has at most one.
type Timer struct {
	UserId      int
	ProjectId   int
	ProjectName string
	TaskId      *int
	Description string
	Billable    bool
	StartTime   time.Time
}

func (t Timer) Running() bool {
	return t.UserId != 0
}
