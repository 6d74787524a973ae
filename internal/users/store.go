package users

import (
	"context"
	"sort"
	"sync"
)

// Store persists users. Lookups of unknown ids return a USERS_NOT_FOUND
// *rpc.Error.
type Store interface {
	Get(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context, filter ListUsersInput) ([]User, error)
	Create(ctx context.Context, in CreateUserInput) (*User, error)
}

type record struct {
	name      string
	role      Role
	managerID *int64
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, users: make(map[int64]record)}
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.resolve(id, true)
	if !ok {
		return nil, notFound(id)
	}
	return u, nil
}

func (s *MemoryStore) List(_ context.Context, filter ListUsersInput) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.users))
	for id, rec := range s.users {
		if filter.Role != nil && rec.role != *filter.Role {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if filter.Limit > 0 && len(ids) > filter.Limit {
		ids = ids[:filter.Limit]
	}

	out := make([]User, 0, len(ids))
	for _, id := range ids {
		u, _ := s.resolve(id, true)
		out = append(out, *u)
	}
	return out, nil
}

func (s *MemoryStore) Create(_ context.Context, in CreateUserInput) (*User, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.ManagerID != nil {
		if _, ok := s.users[*in.ManagerID]; !ok {
			return nil, notFound(*in.ManagerID)
		}
	}
	id := s.nextID
	s.nextID++
	s.users[id] = record{name: in.Name, role: in.Role, managerID: in.ManagerID}

	u, _ := s.resolve(id, true)
	return u, nil
}

// resolve builds the User for id. Callers hold the lock.
func (s *MemoryStore) resolve(id int64, withManager bool) (*User, bool) {
	rec, ok := s.users[id]
	if !ok {
		return nil, false
	}
	u := &User{ID: id, Name: rec.name, Role: rec.role}
	if withManager && rec.managerID != nil {
		u.Manager, _ = s.resolve(*rec.managerID, false)
	}
	return u, true
}
