// Package postgres provides the PostgreSQL-backed ProjectStore.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"docshost/internal/project/models"
	id "docshost/pkg/domain"
	"docshost/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// Store persists projects in PostgreSQL. Reads hydrate the full relation
// graph (translation and subproject ancestors with their domains and
// versions) so the resolver can walk it without further queries.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed project store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, project *models.Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, slug, language, single_version, default_version_slug, main_language_project_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(project.ID), project.Slug, project.Language, project.SingleVersion,
		project.DefaultVersionSlug, translationParentID(project), project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("project slug %q: %w", project.Slug, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (s *Store) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	return s.hydrate(ctx, `SELECT `+projectColumns+` FROM projects WHERE lower(slug) = lower($1)`, slug)
}

func (s *Store) FindByID(ctx context.Context, projectID id.ProjectID) (*models.Project, error) {
	return s.hydrate(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, uuid.UUID(projectID))
}

func (s *Store) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, _, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *Store) Update(ctx context.Context, project *models.Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE projects
		SET slug = $2, language = $3, single_version = $4, default_version_slug = $5,
		    main_language_project_id = $6, updated_at = $7
		WHERE id = $1`,
		uuid.UUID(project.ID), project.Slug, project.Language, project.SingleVersion,
		project.DefaultVersionSlug, translationParentID(project), project.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("project slug %q: %w", project.Slug, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("project %s: %w", project.ID, sentinel.ErrNotFound)
	}

	if err := s.replaceRelation(ctx, tx, project); err != nil {
		return err
	}
	if err := s.replaceDomains(ctx, tx, project); err != nil {
		return err
	}
	if err := s.replaceVersions(ctx, tx, project); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, projectID id.ProjectID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, uuid.UUID(projectID))
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("project %s: %w", projectID, sentinel.ErrNotFound)
	}
	return nil
}

const projectColumns = `id, slug, language, single_version, default_version_slug, main_language_project_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, uuid.NullUUID, error) {
	var (
		project  models.Project
		rawID    uuid.UUID
		parentID uuid.NullUUID
	)
	err := row.Scan(&rawID, &project.Slug, &project.Language, &project.SingleVersion,
		&project.DefaultVersionSlug, &parentID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, uuid.NullUUID{}, err
	}
	project.ID = id.ProjectID(rawID)
	return &project, parentID, nil
}

// hydrate loads the project plus its versions, domains, and ancestor chain.
// Ancestors are loaded iteratively with a visited set: the hierarchy may be
// cyclic and the resolver, not the store, decides how to treat that.
func (s *Store) hydrate(ctx context.Context, query string, arg any) (*models.Project, error) {
	root, parentID, err := scanProject(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %v: %w", arg, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}

	loaded := map[uuid.UUID]*models.Project{uuid.UUID(root.ID): root}
	pending := []pendingLink{{project: root, translationParent: parentID}}

	for len(pending) > 0 {
		link := pending[0]
		pending = pending[1:]

		if err := s.loadAttachments(ctx, link.project); err != nil {
			return nil, err
		}

		if link.translationParent.Valid {
			parent, err := s.loadAncestor(ctx, link.translationParent.UUID, loaded, &pending)
			if err != nil {
				return nil, err
			}
			link.project.MainLanguageProject = parent
		}

		parent, alias, ok, err := s.findRelation(ctx, uuid.UUID(link.project.ID), loaded, &pending)
		if err != nil {
			return nil, err
		}
		if ok {
			link.project.ParentRelation = &models.Relation{Parent: parent, Alias: alias}
		}
	}

	return root, nil
}

type pendingLink struct {
	project           *models.Project
	translationParent uuid.NullUUID
}

// loadAncestor fetches a parent project unless it is already part of the
// graph being built, queueing it for its own hydration when new.
func (s *Store) loadAncestor(ctx context.Context, parentID uuid.UUID, loaded map[uuid.UUID]*models.Project, pending *[]pendingLink) (*models.Project, error) {
	if parent, ok := loaded[parentID]; ok {
		return parent, nil
	}
	parent, grandparentID, err := scanProject(s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, parentID))
	if errors.Is(err, sql.ErrNoRows) {
		// Dangling link; treat as no parent rather than failing the read.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load parent project: %w", err)
	}
	loaded[parentID] = parent
	*pending = append(*pending, pendingLink{project: parent, translationParent: grandparentID})
	return parent, nil
}

func (s *Store) findRelation(ctx context.Context, childID uuid.UUID, loaded map[uuid.UUID]*models.Project, pending *[]pendingLink) (*models.Project, string, bool, error) {
	var (
		parentID uuid.UUID
		alias    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT parent_id, alias FROM project_relations WHERE child_id = $1`, childID,
	).Scan(&parentID, &alias)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("load project relation: %w", err)
	}
	parent, err := s.loadAncestor(ctx, parentID, loaded, pending)
	if err != nil {
		return nil, "", false, err
	}
	if parent == nil {
		return nil, "", false, nil
	}
	return parent, alias, true, nil
}

func (s *Store) loadAttachments(ctx context.Context, project *models.Project) error {
	domainRows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, domain, canonical, https, created_at FROM domains WHERE project_id = $1 ORDER BY created_at`,
		uuid.UUID(project.ID))
	if err != nil {
		return fmt.Errorf("load domains: %w", err)
	}
	defer domainRows.Close()
	for domainRows.Next() {
		var (
			domain    models.Domain
			rawID     uuid.UUID
			projectID uuid.UUID
		)
		if err := domainRows.Scan(&rawID, &projectID, &domain.Name, &domain.Canonical, &domain.HTTPS, &domain.CreatedAt); err != nil {
			return fmt.Errorf("load domains: %w", err)
		}
		domain.ID = id.DomainID(rawID)
		domain.ProjectID = id.ProjectID(projectID)
		project.Domains = append(project.Domains, &domain)
	}
	if err := domainRows.Err(); err != nil {
		return fmt.Errorf("load domains: %w", err)
	}

	versionRows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, slug, type, created_at FROM versions WHERE project_id = $1 ORDER BY created_at`,
		uuid.UUID(project.ID))
	if err != nil {
		return fmt.Errorf("load versions: %w", err)
	}
	defer versionRows.Close()
	for versionRows.Next() {
		var (
			version   models.Version
			rawID     uuid.UUID
			projectID uuid.UUID
		)
		if err := versionRows.Scan(&rawID, &projectID, &version.Slug, &version.Type, &version.CreatedAt); err != nil {
			return fmt.Errorf("load versions: %w", err)
		}
		version.ID = id.VersionID(rawID)
		version.ProjectID = id.ProjectID(projectID)
		project.Versions = append(project.Versions, &version)
	}
	if err := versionRows.Err(); err != nil {
		return fmt.Errorf("load versions: %w", err)
	}
	return nil
}

func (s *Store) replaceRelation(ctx context.Context, tx *sql.Tx, project *models.Project) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM project_relations WHERE child_id = $1`, uuid.UUID(project.ID)); err != nil {
		return fmt.Errorf("replace relation: %w", err)
	}
	if project.ParentRelation == nil {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO project_relations (child_id, parent_id, alias) VALUES ($1, $2, $3)`,
		uuid.UUID(project.ID), uuid.UUID(project.ParentRelation.Parent.ID), project.ParentRelation.Alias)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("subproject alias %q: %w", project.ParentRelation.Alias, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("replace relation: %w", err)
	}
	return nil
}

func (s *Store) replaceDomains(ctx context.Context, tx *sql.Tx, project *models.Project) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM domains WHERE project_id = $1`, uuid.UUID(project.ID)); err != nil {
		return fmt.Errorf("replace domains: %w", err)
	}
	for _, domain := range project.Domains {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO domains (id, project_id, domain, canonical, https, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.UUID(domain.ID), uuid.UUID(project.ID), domain.Name, domain.Canonical, domain.HTTPS, domain.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("domain %q: %w", domain.Name, sentinel.ErrAlreadyUsed)
			}
			return fmt.Errorf("replace domains: %w", err)
		}
	}
	return nil
}

func (s *Store) replaceVersions(ctx context.Context, tx *sql.Tx, project *models.Project) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM versions WHERE project_id = $1`, uuid.UUID(project.ID)); err != nil {
		return fmt.Errorf("replace versions: %w", err)
	}
	for _, version := range project.Versions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO versions (id, project_id, slug, type, created_at) VALUES ($1, $2, $3, $4, $5)`,
			uuid.UUID(version.ID), uuid.UUID(project.ID), version.Slug, version.Type, version.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("version %q: %w", version.Slug, sentinel.ErrAlreadyUsed)
			}
			return fmt.Errorf("replace versions: %w", err)
		}
	}
	return nil
}

func translationParentID(project *models.Project) uuid.NullUUID {
	if project.MainLanguageProject == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(project.MainLanguageProject.ID), Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}
