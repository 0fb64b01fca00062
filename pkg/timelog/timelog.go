package timelog

import (
	"time"

	"github.com/marginly/marginly/pkg/finance"
	"github.com/shopspring/decimal"
)

type TimeLog struct {
	Id        int
	ProjectId int
	UserId    int
	// UserName and UserRate are joined from the user for reporting.
	UserName    string
	UserRate    decimal.NullDecimal
	TaskId      *int
	Date        time.Time
	Hours       decimal.Decimal
	Billable    bool
	Description string
	StartTime   *time.Time
	EndTime     *time.Time
}

// Filter narrows a listing. Zero values mean no restriction; From and To are inclusive dates.
type Filter struct {
	ProjectId int
	UserId    int
	From      time.Time
	To        time.Time
	Billable  *bool
}

// LaborRecords converts logged time into actual labor records.
func LaborRecords(logs []TimeLog) []finance.LaborRecord {
	records := make([]finance.LaborRecord, 0, len(logs))
	for _, l := range logs {
		records = append(records, finance.LaborRecord{UserRate: l.UserRate, Hours: l.Hours, Billable: l.Billable})
	}
	return records
}
