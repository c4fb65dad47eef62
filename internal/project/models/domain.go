package models

import (
	"strings"
	"time"

	id "docshost/pkg/domain"
	dErrors "docshost/pkg/domain-errors"
)

// Domain is a custom hostname attached to a project.
type Domain struct {
	ID        id.DomainID  `json:"id"`
	ProjectID id.ProjectID `json:"project_id"`

	// Name is the bare hostname, no scheme or path.
	Name string `json:"domain"`

	// Canonical marks this domain as the one the project is served from.
	Canonical bool `json:"canonical"`

	// HTTPS forces https for documentation served from this domain.
	HTTPS bool `json:"https"`

	CreatedAt time.Time `json:"created_at"`
}

// NewDomain constructs a custom domain record, validating the hostname.
func NewDomain(domainID id.DomainID, projectID id.ProjectID, name string, canonical, https bool, now time.Time) (*Domain, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "domain name cannot be empty")
	}
	if strings.ContainsAny(name, "/: ") {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "domain name must be a bare hostname")
	}
	return &Domain{
		ID:        domainID,
		ProjectID: projectID,
		Name:      name,
		Canonical: canonical,
		HTTPS:     https,
		CreatedAt: now,
	}, nil
}
