// Package service orchestrates project lifecycle management: creation,
// hierarchy links, and attached domains and versions.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	projectmetrics "docshost/internal/project/metrics"
	"docshost/internal/project/models"
	"docshost/internal/project/store"
	id "docshost/pkg/domain"
	dErrors "docshost/pkg/domain-errors"
	"docshost/pkg/platform/sentinel"
	"docshost/pkg/requestcontext"
)

// Service manages project records and their hierarchy.
type Service struct {
	projects store.ProjectStore
	metrics  *projectmetrics.Metrics
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithMetrics attaches project module metrics.
func WithMetrics(m *projectmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the project service.
func New(projects store.ProjectStore, opts ...Option) *Service {
	s := &Service{projects: projects}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProject registers a new project under a unique slug.
func (s *Service) CreateProject(ctx context.Context, slug, language string, singleVersion bool) (*models.Project, error) {
	project, err := models.NewProject(id.ProjectID(uuid.New()), slug, language, singleVersion, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.projects.Create(ctx, project); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "project slug must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create project")
	}
	if s.metrics != nil {
		s.metrics.ProjectsCreated.Inc()
	}
	return project, nil
}

// GetBySlug retrieves a project with its hierarchy hydrated.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "project slug is required")
	}
	project, err := s.projects.FindBySlug(ctx, slug)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return project, nil
}

// ListProjects returns all projects ordered by slug.
func (s *Service) ListProjects(ctx context.Context) ([]*models.Project, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
	}
	return projects, nil
}

// AttachTranslation marks child as a translation of parent. The relation
// graph is not checked for cycles here: the resolver tolerates them, and
// imports may legitimately create links in any order.
func (s *Service) AttachTranslation(ctx context.Context, childSlug, parentSlug string) (*models.Project, error) {
	if strings.EqualFold(childSlug, parentSlug) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a project cannot translate itself")
	}
	child, err := s.GetBySlug(ctx, childSlug)
	if err != nil {
		return nil, err
	}
	parent, err := s.GetBySlug(ctx, parentSlug)
	if err != nil {
		return nil, err
	}

	child.MainLanguageProject = parent
	child.UpdatedAt = requestcontext.Now(ctx)
	if err := s.projects.Update(ctx, child); err != nil {
		return nil, wrapStoreErr(err)
	}
	return child, nil
}

// AttachSubproject nests child under parent at /projects/<alias>/.
func (s *Service) AttachSubproject(ctx context.Context, parentSlug, childSlug, alias string) (*models.Project, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subproject alias is required")
	}
	if strings.EqualFold(childSlug, parentSlug) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a project cannot be its own subproject")
	}
	child, err := s.GetBySlug(ctx, childSlug)
	if err != nil {
		return nil, err
	}
	parent, err := s.GetBySlug(ctx, parentSlug)
	if err != nil {
		return nil, err
	}

	child.ParentRelation = &models.Relation{Parent: parent, Alias: alias}
	child.UpdatedAt = requestcontext.Now(ctx)
	if err := s.projects.Update(ctx, child); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "subproject alias already in use under this parent")
		}
		return nil, wrapStoreErr(err)
	}
	return child, nil
}

// AddDomain attaches a custom domain to a project. Marking the new domain
// canonical clears the flag on the project's other domains, preserving the
// one-canonical-domain invariant the resolver assumes.
func (s *Service) AddDomain(ctx context.Context, slug, name string, canonical, https bool) (*models.Domain, error) {
	project, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	domain, err := models.NewDomain(id.DomainID(uuid.New()), project.ID, name, canonical, https, now)
	if err != nil {
		return nil, err
	}

	if canonical {
		for _, existing := range project.Domains {
			existing.Canonical = false
		}
	}
	project.Domains = append(project.Domains, domain)
	project.UpdatedAt = now

	if err := s.projects.Update(ctx, project); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "domain is already attached to a project")
		}
		return nil, wrapStoreErr(err)
	}
	if s.metrics != nil {
		s.metrics.DomainsAttached.Inc()
	}
	return domain, nil
}

// AddVersion attaches a built version to a project.
func (s *Service) AddVersion(ctx context.Context, slug, versionSlug string, versionType models.VersionType) (*models.Version, error) {
	project, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	version, err := models.NewVersion(id.VersionID(uuid.New()), project.ID, versionSlug, versionType, now)
	if err != nil {
		return nil, err
	}
	if _, exists := project.VersionType(version.Slug); exists {
		return nil, dErrors.New(dErrors.CodeConflict, "version slug already exists for this project")
	}

	project.Versions = append(project.Versions, version)
	project.UpdatedAt = now
	if err := s.projects.Update(ctx, project); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "version slug already exists for this project")
		}
		return nil, wrapStoreErr(err)
	}
	return version, nil
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "project not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "project store failure")
}
