package client

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	nextId  int
	clients map[int]Client
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{clients: map[int]Client{}}
}

func (s *RepositoryStub) Create(ctx context.Context, client Client) (Client, error) {
	s.nextId++
	client.Id = s.nextId
	s.clients[client.Id] = client
	return client, nil
}

func (s *RepositoryStub) Get(ctx context.Context, id int) (Client, error) {
	client, ok := s.clients[id]
	if !ok {
		return Client{}, ErrClientNotFound
	}
	return client, nil
}

func (s *RepositoryStub) List(ctx context.Context) ([]Client, error) {
	clients := make([]Client, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].Id < clients[j].Id })
	return clients, nil
}

func (s *RepositoryStub) Update(ctx context.Context, client Client) (Client, error) {
	if _, ok := s.clients[client.Id]; !ok {
		return Client{}, ErrClientNotFound
	}
	s.clients[client.Id] = client
	return client, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, id int) error {
	if _, ok := s.clients[id]; !ok {
		return ErrClientNotFound
	}
	delete(s.clients, id)
	return nil
}
