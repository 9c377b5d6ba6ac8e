package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/taskdeck/taskdeck/pkg/models"
)

// MemoryStore is an in-memory EntityStore for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	lists    map[string]*models.List
	folders  map[string]*models.Folder
	spaces   map[string]*models.Space
	tasks    map[string]*models.TaskSnapshot
	statuses map[string][]*models.Status // keyed by scope string
	tags     map[string][]*models.Tag
	members  map[string][]*models.Member
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lists:    make(map[string]*models.List),
		folders:  make(map[string]*models.Folder),
		spaces:   make(map[string]*models.Space),
		tasks:    make(map[string]*models.TaskSnapshot),
		statuses: make(map[string][]*models.Status),
		tags:     make(map[string][]*models.Tag),
		members:  make(map[string][]*models.Member),
	}
}

func (s *MemoryStore) AddList(list *models.List) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[list.ID] = list
}

func (s *MemoryStore) AddFolder(folder *models.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders[folder.ID] = folder
}

func (s *MemoryStore) AddSpace(space *models.Space) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spaces[space.ID] = space
}

func (s *MemoryStore) AddTask(task *models.TaskSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
}

func (s *MemoryStore) SetStatuses(scope models.ScopeRef, statuses []*models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[scope.String()] = statuses
}

func (s *MemoryStore) SetTags(workspaceID string, tags []*models.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[workspaceID] = tags
}

func (s *MemoryStore) SetMembers(workspaceID string, members []*models.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[workspaceID] = members
}

func (s *MemoryStore) RemoveList(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, id)
}

func (s *MemoryStore) GetList(_ context.Context, id string) (*models.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.lists[id]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", id, ErrNotFound)
	}

	return list, nil
}

func (s *MemoryStore) GetFolder(_ context.Context, id string) (*models.Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folder, ok := s.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, ErrNotFound)
	}

	return folder, nil
}

func (s *MemoryStore) GetSpace(_ context.Context, id string) (*models.Space, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	space, ok := s.spaces[id]
	if !ok {
		return nil, fmt.Errorf("space %s: %w", id, ErrNotFound)
	}

	return space, nil
}

func (s *MemoryStore) GetTask(_ context.Context, id string) (*models.TaskSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	return task, nil
}

func (s *MemoryStore) GetStatusesForScope(_ context.Context, scope models.ScopeRef) ([]*models.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.statuses[scope.String()], nil
}

func (s *MemoryStore) GetTags(_ context.Context, workspaceID string) ([]*models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tags[workspaceID], nil
}

func (s *MemoryStore) GetWorkspaceMembers(_ context.Context, workspaceID string) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.members[workspaceID], nil
}
