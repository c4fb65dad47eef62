package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "docshost/pkg/domain"
	dErrors "docshost/pkg/domain-errors"
)

func TestNewProjectInvariants(t *testing.T) {
	now := time.Now()

	t.Run("rejects empty slug", func(t *testing.T) {
		_, err := NewProject(id.ProjectID(uuid.New()), "", "en", false, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects uppercase and spaces", func(t *testing.T) {
		for _, slug := range []string{"My Docs", "UPPER", "-leading", "trailing space "} {
			_, err := NewProject(id.ProjectID(uuid.New()), slug, "en", false, now)
			require.Error(t, err, "slug %q", slug)
		}
	})

	t.Run("accepts underscores and hyphens", func(t *testing.T) {
		project, err := NewProject(id.ProjectID(uuid.New()), "my_project-2", "en", false, now)
		require.NoError(t, err)
		assert.Equal(t, "my_project-2", project.Slug)
	})

	t.Run("defaults language and version", func(t *testing.T) {
		project, err := NewProject(id.ProjectID(uuid.New()), "docs", "", false, now)
		require.NoError(t, err)
		assert.Equal(t, "en", project.Language)
		assert.Equal(t, DefaultVersionSlug, project.DefaultVersion())
	})
}

func TestCanonicalCustomDomain(t *testing.T) {
	project := &Project{Slug: "docs"}
	assert.Nil(t, project.CanonicalCustomDomain())

	project.Domains = []*Domain{
		{Name: "extra.example.com"},
		{Name: "docs.example.com", Canonical: true},
	}
	require.NotNil(t, project.CanonicalCustomDomain())
	assert.Equal(t, "docs.example.com", project.CanonicalCustomDomain().Name)
}

func TestVersionTypeLookup(t *testing.T) {
	project := &Project{
		Slug: "docs",
		Versions: []*Version{
			{Slug: "latest", Type: VersionTypeBranch},
			{Slug: "pr-42", Type: VersionTypeExternal},
		},
	}

	versionType, ok := project.VersionType("pr-42")
	require.True(t, ok)
	assert.Equal(t, VersionTypeExternal, versionType)

	_, ok = project.VersionType("ghost")
	assert.False(t, ok)
}

func TestNewDomainValidation(t *testing.T) {
	now := time.Now()
	projectID := id.ProjectID(uuid.New())

	t.Run("lowercases the hostname", func(t *testing.T) {
		domain, err := NewDomain(id.DomainID(uuid.New()), projectID, "Docs.Example.COM", true, true, now)
		require.NoError(t, err)
		assert.Equal(t, "docs.example.com", domain.Name)
	})

	t.Run("rejects schemes and paths", func(t *testing.T) {
		for _, name := range []string{"https://docs.example.com", "docs.example.com/path", "host name"} {
			_, err := NewDomain(id.DomainID(uuid.New()), projectID, name, false, false, now)
			require.Error(t, err, "domain %q", name)
		}
	})
}
