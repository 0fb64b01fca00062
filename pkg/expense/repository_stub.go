package expense

import (
	"context"
	"sort"

	"github.com/marginly/marginly/pkg/project"
)

type RepositoryStub struct {
	nextId   int
	expenses map[int]Expense
	// Projects lists the project ids that exist. Nil accepts any project.
	Projects map[int]bool
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{expenses: map[int]Expense{}}
}

func (s *RepositoryStub) Create(ctx context.Context, expense Expense) (Expense, error) {
	if s.Projects != nil && !s.Projects[expense.ProjectId] {
		return Expense{}, project.ErrProjectNotFound
	}
	s.nextId++
	expense.Id = s.nextId
	s.expenses[expense.Id] = expense
	return expense, nil
}

func (s *RepositoryStub) Get(ctx context.Context, projectId int, id int) (Expense, error) {
	e, ok := s.expenses[id]
	if !ok || e.ProjectId != projectId {
		return Expense{}, ErrExpenseNotFound
	}
	return e, nil
}

func (s *RepositoryStub) ListByProject(ctx context.Context, projectId int) ([]Expense, error) {
	expenses := make([]Expense, 0)
	for _, e := range s.expenses {
		if e.ProjectId == projectId {
			expenses = append(expenses, e)
		}
	}
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date) {
			return expenses[i].Date.After(expenses[j].Date)
		}
		return expenses[i].Id > expenses[j].Id
	})
	return expenses, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, projectId int, id int) error {
	if _, err := s.Get(ctx, projectId, id); err != nil {
		return err
	}
	delete(s.expenses, id)
	return nil
}
