package timelog

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	nextId int
	logs   map[int]TimeLog
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{logs: map[int]TimeLog{}}
}

func (s *RepositoryStub) Create(ctx context.Context, timeLog TimeLog) (TimeLog, error) {
	s.nextId++
	timeLog.Id = s.nextId
	s.logs[timeLog.Id] = timeLog
	return timeLog, nil
}

func (s *RepositoryStub) Get(ctx context.Context, id int) (TimeLog, error) {
	l, ok := s.logs[id]
	if !ok {
		return TimeLog{}, ErrTimeLogNotFound
	}
	return l, nil
}

func (s *RepositoryStub) List(ctx context.Context, filter Filter) ([]TimeLog, error) {
	logs := make([]TimeLog, 0)
	for _, l := range s.logs {
		if filter.ProjectId != 0 && l.ProjectId != filter.ProjectId {
			continue
		}
		if filter.UserId != 0 && l.UserId != filter.UserId {
			continue
		}
		if !filter.From.IsZero() && l.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && l.Date.After(filter.To) {
			continue
		}
		if filter.Billable != nil && l.Billable != *filter.Billable {
			continue
		}
		logs = append(logs, l)
	}
	sort.Slice(logs, func(i, j int) bool {
		if !logs[i].Date.Equal(logs[j].Date) {
			return logs[i].Date.After(logs[j].Date)
		}
		return logs[i].Id > logs[j].Id
	})
	return logs, nil
}

func (s *RepositoryStub) Update(ctx context.Context, timeLog TimeLog) (TimeLog, error) {
	existing, ok := s.logs[timeLog.Id]
	if !ok {
		return TimeLog{}, ErrTimeLogNotFound
	}
	timeLog.UserName = existing.UserName
	timeLog.UserRate = existing.UserRate
	s.logs[timeLog.Id] = timeLog
	return timeLog, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, id int) error {
	if _, ok := s.logs[id]; !ok {
		return ErrTimeLogNotFound
	}
	delete(s.logs, id)
	return nil
}
