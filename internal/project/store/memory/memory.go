// Package memory provides the in-memory ProjectStore used by tests and
// single-node development setups.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"docshost/internal/project/models"
	id "docshost/pkg/domain"
	"docshost/pkg/platform/sentinel"
)

// Store keeps projects in a mutex-guarded map. Hierarchy pointers are stored
// as-is, so the relation graph returned to callers is always hydrated.
type Store struct {
	mu       sync.RWMutex
	bySlug   map[string]*models.Project
	slugByID map[id.ProjectID]string
}

// New constructs an empty in-memory project store.
func New() *Store {
	return &Store{
		bySlug:   make(map[string]*models.Project),
		slugByID: make(map[id.ProjectID]string),
	}
}

func (s *Store) Create(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(project.Slug)
	if _, exists := s.bySlug[key]; exists {
		return fmt.Errorf("project slug %q: %w", project.Slug, sentinel.ErrAlreadyUsed)
	}
	s.bySlug[key] = project
	s.slugByID[project.ID] = key
	return nil
}

func (s *Store) FindBySlug(_ context.Context, slug string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if project, ok := s.bySlug[strings.ToLower(slug)]; ok {
		return project, nil
	}
	return nil, fmt.Errorf("project %q: %w", slug, sentinel.ErrNotFound)
}

func (s *Store) FindByID(_ context.Context, projectID id.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if slug, ok := s.slugByID[projectID]; ok {
		return s.bySlug[slug], nil
	}
	return nil, fmt.Errorf("project %s: %w", projectID, sentinel.ErrNotFound)
}

func (s *Store) List(_ context.Context) ([]*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]*models.Project, 0, len(s.bySlug))
	for _, project := range s.bySlug {
		projects = append(projects, project)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Slug < projects[j].Slug })
	return projects, nil
}

func (s *Store) Update(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slug, ok := s.slugByID[project.ID]
	if !ok {
		return fmt.Errorf("project %s: %w", project.ID, sentinel.ErrNotFound)
	}
	newKey := strings.ToLower(project.Slug)
	if newKey != slug {
		if _, taken := s.bySlug[newKey]; taken {
			return fmt.Errorf("project slug %q: %w", project.Slug, sentinel.ErrAlreadyUsed)
		}
		delete(s.bySlug, slug)
		s.slugByID[project.ID] = newKey
	}
	s.bySlug[newKey] = project
	return nil
}

func (s *Store) Delete(_ context.Context, projectID id.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slug, ok := s.slugByID[projectID]
	if !ok {
		return fmt.Errorf("project %s: %w", projectID, sentinel.ErrNotFound)
	}
	delete(s.bySlug, slug)
	delete(s.slugByID, projectID)
	return nil
}
