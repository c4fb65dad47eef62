package models

import (
	"strings"
	"time"

	id "docshost/pkg/domain"
	dErrors "docshost/pkg/domain-errors"
)

// VersionType classifies how a version was produced.
type VersionType string

const (
	// VersionTypeBranch tracks a repository branch.
	VersionTypeBranch VersionType = "branch"
	// VersionTypeTag tracks a repository tag.
	VersionTypeTag VersionType = "tag"
	// VersionTypeExternal marks a pull-request/preview build. External
	// versions are served from a dedicated hostname with the version slug
	// embedded, never from the project's normal domain.
	VersionTypeExternal VersionType = "external"
)

// IsValid reports whether the type is one of the known variants.
func (t VersionType) IsValid() bool {
	switch t {
	case VersionTypeBranch, VersionTypeTag, VersionTypeExternal:
		return true
	}
	return false
}

// Version is one built version of a project.
type Version struct {
	ID        id.VersionID `json:"id"`
	ProjectID id.ProjectID `json:"project_id"`
	Slug      string       `json:"slug"`
	Type      VersionType  `json:"type"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewVersion constructs a version, validating slug and type.
func NewVersion(versionID id.VersionID, projectID id.ProjectID, slug string, versionType VersionType, now time.Time) (*Version, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "version slug cannot be empty")
	}
	if !versionType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown version type")
	}
	return &Version{
		ID:        versionID,
		ProjectID: projectID,
		Slug:      slug,
		Type:      versionType,
		CreatedAt: now,
	}, nil
}
