package project

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

type stubUser struct {
	name string
	rate decimal.NullDecimal
}

type RepositoryStub struct {
	mu           sync.Mutex
	nextId       int
	projects     map[int]Project
	members      map[int]TeamMember
	users        map[int]stubUser
	expenses     map[int][]decimal.Decimal
	budgetWrites int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		projects: map[int]Project{},
		members:  map[int]TeamMember{},
		users:    map[int]stubUser{},
		expenses: map[int][]decimal.Decimal{},
	}
}

// SetUser registers a user that team members can reference.
func (s *RepositoryStub) SetUser(id int, name string, rate decimal.NullDecimal) {
	s.users[id] = stubUser{name: name, rate: rate}
}

// SetExpenses replaces the expense amounts of a project.
func (s *RepositoryStub) SetExpenses(projectId int, amounts ...decimal.Decimal) {
	s.expenses[projectId] = amounts
}

// BudgetWrites counts UpdateProjectBudget calls.
func (s *RepositoryStub) BudgetWrites() int {
	return s.budgetWrites
}

func (s *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := make(map[int]Project, len(s.projects))
	for k, v := range s.projects {
		projects[k] = v
	}
	members := make(map[int]TeamMember, len(s.members))
	for k, v := range s.members {
		members[k] = v
	}
	nextId := s.nextId

	if err := fn(s); err != nil {
		s.projects = projects
		s.members = members
		s.nextId = nextId
		return err
	}
	return nil
}

func (s *RepositoryStub) CreateProject(ctx context.Context, project Project) (Project, error) {
	s.nextId++
	project.Id = s.nextId
	s.projects[project.Id] = project
	return project, nil
}

func (s *RepositoryStub) GetProject(ctx context.Context, id int) (Project, error) {
	project, ok := s.projects[id]
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	return project, nil
}

func (s *RepositoryStub) LockProject(ctx context.Context, id int) (Project, error) {
	return s.GetProject(ctx, id)
}

func (s *RepositoryStub) ListProjects(ctx context.Context, filter Filter) ([]Project, error) {
	projects := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.ClientId != 0 && (p.ClientId == nil || *p.ClientId != filter.ClientId) {
			continue
		}
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Id < projects[j].Id })
	return projects, nil
}

func (s *RepositoryStub) UpdateProject(ctx context.Context, project Project) (Project, error) {
	existing, ok := s.projects[project.Id]
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	project.Budget = existing.Budget
	s.projects[project.Id] = project
	return project, nil
}

func (s *RepositoryStub) UpdateProjectBudget(ctx context.Context, id int, budget decimal.Decimal) error {
	project, ok := s.projects[id]
	if !ok {
		return ErrProjectNotFound
	}
	s.budgetWrites++
	project.Budget = budget
	s.projects[id] = project
	return nil
}

func (s *RepositoryStub) DeleteProject(ctx context.Context, id int) error {
	if _, ok := s.projects[id]; !ok {
		return ErrProjectNotFound
	}
	delete(s.projects, id)
	for memberId, m := range s.members {
		if m.ProjectId == id {
			delete(s.members, memberId)
		}
	}
	return nil
}

func (s *RepositoryStub) ListTeamMembers(ctx context.Context, projectId int) ([]TeamMember, error) {
	members := make([]TeamMember, 0)
	for _, m := range s.members {
		if m.ProjectId == projectId {
			members = append(members, s.joinUser(m))
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Id < members[j].Id })
	return members, nil
}

func (s *RepositoryStub) GetTeamMember(ctx context.Context, projectId int, memberId int) (TeamMember, error) {
	m, ok := s.members[memberId]
	if !ok || m.ProjectId != projectId {
		return TeamMember{}, ErrTeamMemberNotFound
	}
	return s.joinUser(m), nil
}

func (s *RepositoryStub) AddTeamMember(ctx context.Context, member TeamMember) (TeamMember, error) {
	if _, ok := s.projects[member.ProjectId]; !ok {
		return TeamMember{}, ErrProjectNotFound
	}
	if _, ok := s.users[member.UserId]; !ok {
		return TeamMember{}, ErrUserNotFound
	}
	for _, m := range s.members {
		if m.ProjectId == member.ProjectId && m.UserId == member.UserId {
			return TeamMember{}, ErrMemberAlreadyAssigned
		}
	}
	s.nextId++
	member.Id = s.nextId
	s.members[member.Id] = member
	return s.joinUser(member), nil
}

func (s *RepositoryStub) UpdateTeamMember(ctx context.Context, member TeamMember) (TeamMember, error) {
	existing, err := s.GetTeamMember(ctx, member.ProjectId, member.Id)
	if err != nil {
		return TeamMember{}, err
	}
	existing.Role = member.Role
	existing.Hours = member.Hours
	s.members[member.Id] = existing
	return s.joinUser(existing), nil
}

func (s *RepositoryStub) RemoveTeamMember(ctx context.Context, projectId int, memberId int) error {
	if _, err := s.GetTeamMember(ctx, projectId, memberId); err != nil {
		return err
	}
	delete(s.members, memberId)
	return nil
}

func (s *RepositoryStub) ProjectIdsWithMember(ctx context.Context, userId int) ([]int, error) {
	ids := make([]int, 0)
	for _, m := range s.members {
		if m.UserId == userId {
			ids = append(ids, m.ProjectId)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (s *RepositoryStub) ListExpenseAmounts(ctx context.Context, projectId int) ([]decimal.Decimal, error) {
	if _, ok := s.projects[projectId]; !ok {
		return nil, errors.New("unknown project")
	}
	return s.expenses[projectId], nil
}

func (s *RepositoryStub) joinUser(m TeamMember) TeamMember {
	u := s.users[m.UserId]
	m.UserName = u.name
	m.UserRate = u.rate
	return m
}
