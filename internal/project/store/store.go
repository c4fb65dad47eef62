// Package store defines the persistence boundary for project records.
//
// Stores are interface-driven to keep the domain logic testable and to allow
// swapping in-memory or PostgreSQL persistence without rewiring business code.
//
// Error contract: stores return sentinel errors (pkg/platform/sentinel),
// optionally wrapped with context. Services translate them into domain errors.
package store

import (
	"context"

	"docshost/internal/project/models"
	id "docshost/pkg/domain"
)

// ProjectStore persists projects together with their versions, domains, and
// hierarchy links. Implementations must return projects with the relation
// graph hydrated (translation parents and subproject parents reachable as
// pointers), since the resolver walks it.
type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	FindBySlug(ctx context.Context, slug string) (*models.Project, error)
	FindByID(ctx context.Context, projectID id.ProjectID) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)

	// Update persists mutated fields, attached domains/versions, and
	// hierarchy links of an existing project.
	Update(ctx context.Context, project *models.Project) error

	Delete(ctx context.Context, projectID id.ProjectID) error
}

// ProjectReader is the read-only subset the resolver service needs.
type ProjectReader interface {
	FindBySlug(ctx context.Context, slug string) (*models.Project, error)
}
