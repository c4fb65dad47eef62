// Package domain defines typed identifiers shared across modules.
//
// IDs are distinct types over uuid.UUID so the compiler rejects accidental
// cross-assignment (a ProjectID can never be passed where a DomainID is
// expected). Parse helpers enforce the invariant that IDs are valid,
// non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "docshost/pkg/domain-errors"
)

type (
	// ProjectID identifies a hosted documentation project.
	ProjectID uuid.UUID
	// VersionID identifies a built version of a project.
	VersionID uuid.UUID
	// DomainID identifies a custom domain attached to a project.
	DomainID uuid.UUID
)

func (id ProjectID) String() string { return uuid.UUID(id).String() }
func (id VersionID) String() string { return uuid.UUID(id).String() }
func (id DomainID) String() string  { return uuid.UUID(id).String() }

// IsZero reports whether the ID is the nil UUID.
func (id ProjectID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id VersionID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id DomainID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }

// ParseProjectID parses and validates a project ID from its string form.
func ParseProjectID(value string) (ProjectID, error) {
	parsed, err := parseUUID(value)
	if err != nil {
		return ProjectID{}, err
	}
	return ProjectID(parsed), nil
}

// ParseVersionID parses and validates a version ID from its string form.
func ParseVersionID(value string) (VersionID, error) {
	parsed, err := parseUUID(value)
	if err != nil {
		return VersionID{}, err
	}
	return VersionID(parsed), nil
}

// ParseDomainID parses and validates a domain ID from its string form.
func ParseDomainID(value string) (DomainID, error) {
	parsed, err := parseUUID(value)
	if err != nil {
		return DomainID{}, err
	}
	return DomainID(parsed), nil
}

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return parsed, nil
}
