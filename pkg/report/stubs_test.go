package report

import (
	"context"
	"sort"

	"github.com/marginly/marginly/pkg/deliverable"
	"github.com/marginly/marginly/pkg/expense"
	"github.com/marginly/marginly/pkg/project"
	"github.com/marginly/marginly/pkg/timelog"
)

type projectReaderStub struct {
	projects map[int]project.Project
	members  map[int][]project.TeamMember
}

func (s *projectReaderStub) GetProject(ctx context.Context, id int) (project.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return project.Project{}, project.ErrProjectNotFound
	}
	return p, nil
}

func (s *projectReaderStub) ListProjects(ctx context.Context, filter project.Filter) ([]project.Project, error) {
	projects := make([]project.Project, 0, len(s.projects))
	for _, p := range s.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Id < projects[j].Id })
	return projects, nil
}

func (s *projectReaderStub) ListTeamMembers(ctx context.Context, projectId int) ([]project.TeamMember, error) {
	if _, ok := s.projects[projectId]; !ok {
		return nil, project.ErrProjectNotFound
	}
	return s.members[projectId], nil
}

type timeLogReaderStub []timelog.TimeLog

func (s timeLogReaderStub) List(ctx context.Context, filter timelog.Filter) ([]timelog.TimeLog, error) {
	result := make([]timelog.TimeLog, 0)
	for _, l := range s {
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
		result = append(result, l)
	}
	return result, nil
}

type expenseReaderStub map[int][]expense.Expense

func (s expenseReaderStub) ListByProject(ctx context.Context, projectId int) ([]expense.Expense, error) {
	return s[projectId], nil
}

type deliverableReaderStub struct {
	items         []deliverable.Deliverable
	requestedDays int
}

func (s *deliverableReaderStub) Upcoming(ctx context.Context, days int) ([]deliverable.Deliverable, error) {
	s.requestedDays = days
	return s.items, nil
}
