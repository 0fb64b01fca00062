package client

import "context"

type Service interface {
	Create(ctx context.Context, client Client) (Client, error)
	Get(ctx context.Context, id int) (Client, error)
	List(ctx context.Context) ([]Client, error)
	Update(ctx context.Context, client Client) (Client, error)
	Delete(ctx context.Context, id int) error
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Create(ctx context.Context, client Client) (Client, error) {
	return s.repo.Create(ctx, client)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) List(ctx context.Context) ([]Client, error) {
	return s.repo.List(ctx)
}

func (s *ServiceImpl) Update(ctx context.Context, client Client) (Client, error) {
	return s.repo.Update(ctx, client)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
