package deliverable

import (
	"context"
	"sort"
	"time"
)

type RepositoryStub struct {
	nextId       int
	deliverables map[int]Deliverable
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{deliverables: map[int]Deliverable{}}
}

func (s *RepositoryStub) Create(ctx context.Context, deliverable Deliverable) (Deliverable, error) {
	s.nextId++
	deliverable.Id = s.nextId
	s.deliverables[deliverable.Id] = deliverable
	return deliverable, nil
}

func (s *RepositoryStub) Get(ctx context.Context, projectId int, id int) (Deliverable, error) {
	d, ok := s.deliverables[id]
	if !ok || d.ProjectId != projectId {
		return Deliverable{}, ErrDeliverableNotFound
	}
	return d, nil
}

func (s *RepositoryStub) ListByProject(ctx context.Context, projectId int) ([]Deliverable, error) {
	return s.filter(func(d Deliverable) bool { return d.ProjectId == projectId }), nil
}

func (s *RepositoryStub) ListOpenDueBetween(ctx context.Context, from, to time.Time) ([]Deliverable, error) {
	return s.filter(func(d Deliverable) bool {
		return d.Status != StatusCompleted && !d.DueDate.Before(from) && !d.DueDate.After(to)
	}), nil
}

func (s *RepositoryStub) Update(ctx context.Context, deliverable Deliverable) (Deliverable, error) {
	existing, err := s.Get(ctx, deliverable.ProjectId, deliverable.Id)
	if err != nil {
		return Deliverable{}, err
	}
	deliverable.ProjectName = existing.ProjectName
	s.deliverables[deliverable.Id] = deliverable
	return deliverable, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, projectId int, id int) error {
	if _, err := s.Get(ctx, projectId, id); err != nil {
		return err
	}
	delete(s.deliverables, id)
	return nil
}

func (s *RepositoryStub) filter(keep func(Deliverable) bool) []Deliverable {
	result := make([]Deliverable, 0)
	for _, d := range s.deliverables {
		if keep(d) {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DueDate.Equal(result[j].DueDate) {
			return result[i].DueDate.Before(result[j].DueDate)
		}
		return result[i].Id < result[j].Id
	})
	return result
}
