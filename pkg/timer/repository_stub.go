package timer

import (
	"context"
)

type RepositoryStub struct {
	timers map[int]Timer // userId -> timer
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{timers: map[int]Timer{}}
}

func (s *RepositoryStub) Replace(ctx context.Context, timer Timer) (Timer, error) {
	s.timers[timer.UserId] = timer
	return timer, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, userId int) error {
	delete(s.timers, userId)
	return nil
}

func (s *RepositoryStub) Find(ctx context.Context, userId int) (Timer, error) {
	return s.timers[userId], nil
}
