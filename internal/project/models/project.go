package models

import (
	"regexp"
	"strings"
	"time"

	id "docshost/pkg/domain"
	dErrors "docshost/pkg/domain-errors"
)

// Project is the aggregate root for a hosted documentation project.
//
// Invariants:
//   - Slug is non-empty, lowercase, and URL-safe ([a-z0-9_-])
//   - Language is a non-empty language code
//   - At most one domain per project is canonical (enforced at write time
//     by the project service; the resolver picks the first canonical one)
//
// Hierarchy:
//   - MainLanguageProject points at the project this one translates. A
//     translation shares its parent's path-root slug when resolved.
//   - ParentRelation records this project's membership as a subproject of
//     another project, served under /projects/<alias>/.
//
// The relation graph is not guaranteed acyclic. Misconfigured hierarchies
// may form cycles; the resolver tolerates them rather than this layer
// rejecting them, since records are imported from sources we do not control.
type Project struct {
	ID            id.ProjectID `json:"id"`
	Slug          string       `json:"slug"`
	Language      string       `json:"language"`
	SingleVersion bool         `json:"single_version"`

	// DefaultVersionSlug is the version served when a request names none.
	DefaultVersionSlug string `json:"default_version"`

	// MainLanguageProject is the translation parent, nil when this project
	// is not a translation.
	MainLanguageProject *Project `json:"-"`

	// ParentRelation is this project's subproject membership, nil when it
	// is not nested under another project.
	ParentRelation *Relation `json:"-"`

	Domains  []*Domain  `json:"domains,omitempty"`
	Versions []*Version `json:"versions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Relation records a subproject membership: the child is exposed under the
// parent's tree at path segment /projects/<Alias>/.
type Relation struct {
	Parent *Project `json:"-"`
	Alias  string   `json:"alias"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// NewProject constructs a project, validating slug and language invariants.
func NewProject(projectID id.ProjectID, slug, language string, singleVersion bool, now time.Time) (*Project, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "project slug cannot be empty")
	}
	if !slugPattern.MatchString(slug) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "project slug must be lowercase and URL-safe")
	}
	language = strings.TrimSpace(language)
	if language == "" {
		language = "en"
	}
	return &Project{
		ID:                 projectID,
		Slug:               slug,
		Language:           language,
		SingleVersion:      singleVersion,
		DefaultVersionSlug: DefaultVersionSlug,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// DefaultVersionSlug is the version slug assigned to new projects.
const DefaultVersionSlug = "latest"

// DefaultVersion returns the version slug served when a request names none.
func (p *Project) DefaultVersion() string {
	if p.DefaultVersionSlug == "" {
		return DefaultVersionSlug
	}
	return p.DefaultVersionSlug
}

// TranslationParent returns the project this one translates, or nil.
func (p *Project) TranslationParent() *Project {
	return p.MainLanguageProject
}

// SubprojectRelation returns this project's subproject membership, or nil.
func (p *Project) SubprojectRelation() *Relation {
	return p.ParentRelation
}

// CanonicalCustomDomain returns the project's canonical custom domain, or
// nil when the project has none. At most one domain is canonical; if write
// invariants were bypassed the first one wins.
func (p *Project) CanonicalCustomDomain() *Domain {
	for _, domain := range p.Domains {
		if domain.Canonical {
			return domain
		}
	}
	return nil
}

// VersionType looks up the type of the version with the given slug. The
// second return is false when the project has no such version.
func (p *Project) VersionType(slug string) (VersionType, bool) {
	for _, version := range p.Versions {
		if version.Slug == slug {
			return version.Type, true
		}
	}
	return "", false
}
