package user

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	nextId int
	data   map[int]User
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{nextId: 0, data: map[int]User{}}
}

func (s *RepositoryStub) CreateUser(ctx context.Context, user User) (int, error) {
	for _, existing := range s.data {
		if existing.Email == user.Email {
			return 0, ErrEmailTaken
		}
	}
	s.nextId++
	user.Id = s.nextId
	s.data[user.Id] = user
	return user.Id, nil
}

func (s *RepositoryStub) GetUser(ctx context.Context, id int) (User, error) {
	user, ok := s.data[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *RepositoryStub) GetUserByUid(ctx context.Context, uid string) (User, error) {
	for _, user := range s.data {
		if user.Uid == uid {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (s *RepositoryStub) UpdateUser(ctx context.Context, user User) (User, error) {
	existing, ok := s.data[user.Id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	user.Uid = existing.Uid
	s.data[user.Id] = user
	return user, nil
}

func (s *RepositoryStub) DeleteUser(ctx context.Context, id int) error {
	if _, ok := s.data[id]; !ok {
		return ErrUserNotFound
	}
	delete(s.data, id)
	return nil
}

func (s *RepositoryStub) GetAllUsers(ctx context.Context) ([]User, error) {
	users := make([]User, 0, len(s.data))
	for _, user := range s.data {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Id < users[j].Id })
	return users, nil
}

func (s *RepositoryStub) Reset() {
	s.nextId = 0
	s.data = map[int]User{}
}
