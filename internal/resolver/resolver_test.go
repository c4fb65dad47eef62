package resolver

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"docshost/internal/project/models"
	id "docshost/pkg/domain"
)

type ResolverSuite struct {
	suite.Suite
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

// defaultConfig mirrors the production serving setup: subdomain routing on,
// https enforced for platform-owned hostnames.
func defaultConfig() Config {
	return Config{
		UseSubdomain:          true,
		PublicDomain:          "docshost.io",
		ProductionDomain:      "app.docshost.org",
		ExternalVersionDomain: "build.docshost.io",
		PublicDomainUsesHTTPS: true,
	}
}

func newProject(slug string) *models.Project {
	return &models.Project{
		ID:                 id.ProjectID(uuid.New()),
		Slug:               slug,
		Language:           "en",
		DefaultVersionSlug: "latest",
	}
}

func withCanonicalDomain(p *models.Project, name string, https bool) *models.Project {
	p.Domains = append(p.Domains, &models.Domain{
		ID:        id.DomainID(uuid.New()),
		ProjectID: p.ID,
		Name:      name,
		Canonical: true,
		HTTPS:     https,
	})
	return p
}

func withVersion(p *models.Project, slug string, versionType models.VersionType) *models.Project {
	p.Versions = append(p.Versions, &models.Version{
		ID:        id.VersionID(uuid.New()),
		ProjectID: p.ID,
		Slug:      slug,
		Type:      versionType,
	})
	return p
}

func asTranslationOf(child, parent *models.Project) *models.Project {
	child.MainLanguageProject = parent
	return child
}

func asSubprojectOf(child, parent *models.Project, alias string) *models.Project {
	child.ParentRelation = &models.Relation{Parent: parent, Alias: alias}
	return child
}

func (s *ResolverSuite) TestCanonicalProject() {
	r := New(defaultConfig())

	s.Run("project with no parents is its own canonical project", func() {
		p := newProject("solo")
		s.Same(p, r.CanonicalProject(p))
	})

	s.Run("ascends through translation parent", func() {
		parent := newProject("main")
		child := asTranslationOf(newProject("main-es"), parent)
		s.Same(parent, r.CanonicalProject(child))
	})

	s.Run("ascends through subproject parent", func() {
		parent := newProject("umbrella")
		child := asSubprojectOf(newProject("api"), parent, "api")
		s.Same(parent, r.CanonicalProject(child))
	})

	s.Run("translation parent wins over subproject parent", func() {
		translationParent := newProject("main")
		subprojectParent := newProject("umbrella")
		child := newProject("main-es")
		asTranslationOf(child, translationParent)
		asSubprojectOf(child, subprojectParent, "es")
		s.Same(translationParent, r.CanonicalProject(child))
	})

	s.Run("ascends deeper than two levels", func() {
		root := newProject("root")
		mid := asSubprojectOf(newProject("mid"), root, "mid")
		leaf := asTranslationOf(newProject("leaf"), mid)
		s.Same(root, r.CanonicalProject(leaf))
	})

	s.Run("canonicalization is idempotent", func() {
		root := newProject("root")
		mid := asTranslationOf(newProject("mid"), root)
		leaf := asSubprojectOf(newProject("leaf"), mid, "leaf")
		once := r.CanonicalProject(leaf)
		s.Same(once, r.CanonicalProject(once))
	})

	s.Run("terminates on a two-project cycle", func() {
		a := newProject("a")
		b := newProject("b")
		asTranslationOf(a, b)
		asTranslationOf(b, a)
		// Ascends a -> b, then b's parent a is already visited.
		s.Same(b, r.CanonicalProject(a))
	})

	s.Run("terminates on a self-cycle", func() {
		a := newProject("a")
		asTranslationOf(a, a)
		s.Same(a, r.CanonicalProject(a))
	})

	s.Run("terminates on a three-project cycle", func() {
		a := newProject("a")
		b := newProject("b")
		c := newProject("c")
		asTranslationOf(a, b)
		asSubprojectOf(b, c, "b")
		asTranslationOf(c, a)
		s.Same(c, r.CanonicalProject(a))
	})
}

func (s *ResolverSuite) TestResolvePathShapes() {
	r := New(defaultConfig())

	s.Run("single version path omits language and version", func() {
		p := newProject("single")
		p.SingleVersion = true
		s.Equal("/index.html", r.ResolvePath(p, "index.html", PathOptions{Subdomain: true}))
	})

	s.Run("default multi-version path", func() {
		p := newProject("multi")
		got := r.ResolvePath(p, "guide/intro.html", PathOptions{VersionSlug: "latest", Subdomain: true})
		s.Equal("/en/latest/guide/intro.html", got)
	})

	s.Run("subproject path carries projects alias segment", func() {
		parent := newProject("umbrella")
		child := asSubprojectOf(newProject("umbrella-api"), parent, "api")
		got := r.ResolvePath(child, "ref.html", PathOptions{VersionSlug: "stable", Subdomain: true})
		s.Equal("/projects/api/en/stable/ref.html", got)
	})

	s.Run("subproject single version path", func() {
		parent := newProject("umbrella")
		child := asSubprojectOf(newProject("umbrella-api"), parent, "api")
		child.SingleVersion = true
		got := r.ResolvePath(child, "ref.html", PathOptions{Subdomain: true})
		s.Equal("/projects/api/ref.html", got)
	})

	s.Run("development fallback prefixes docs and project slug", func() {
		r := New(Config{ProductionDomain: "app.docshost.org"})
		p := newProject("docs-project")
		got := r.ResolvePath(p, "x.html", PathOptions{SingleVersion: true})
		s.Equal("/docs/docs-project/x.html", got)
	})

	s.Run("development fallback multi-version", func() {
		r := New(Config{ProductionDomain: "app.docshost.org"})
		p := newProject("docs-project")
		s.Equal("/docs/docs-project/en/latest/x.html", r.ResolvePath(p, "x.html", PathOptions{}))
	})

	s.Run("cname roots the path even without subdomain routing", func() {
		r := New(Config{ProductionDomain: "app.docshost.org"})
		p := newProject("branded")
		s.Equal("/en/latest/x.html", r.ResolvePath(p, "x.html", PathOptions{CNAME: "docs.example.com"}))
	})

	s.Run("project canonical domain is the default cname", func() {
		r := New(Config{ProductionDomain: "app.docshost.org"})
		p := withCanonicalDomain(newProject("branded"), "docs.example.com", true)
		s.Equal("/en/latest/x.html", r.ResolvePath(p, "x.html", PathOptions{}))
	})
}

func (s *ResolverSuite) TestFilenameNormalization() {
	r := New(defaultConfig())
	p := newProject("multi")

	withSlash := r.ResolvePath(p, "/x.html", PathOptions{Subdomain: true})
	without := r.ResolvePath(p, "x.html", PathOptions{Subdomain: true})
	s.Equal(without, withSlash)

	manySlashes := r.ResolvePath(p, "///x.html", PathOptions{Subdomain: true})
	s.Equal(without, manySlashes)
}

func (s *ResolverSuite) TestResolvePathDefaults() {
	r := New(defaultConfig())

	s.Run("version defaults to the project default version", func() {
		p := newProject("multi")
		p.DefaultVersionSlug = "stable"
		s.Equal("/en/stable/x.html", r.ResolvePath(p, "x.html", PathOptions{Subdomain: true}))
	})

	s.Run("language defaults to the project language", func() {
		p := newProject("multi")
		p.Language = "pt-br"
		s.Equal("/pt-br/latest/x.html", r.ResolvePath(p, "x.html", PathOptions{Subdomain: true}))
	})

	s.Run("caller overrides win over project defaults", func() {
		p := newProject("multi")
		got := r.ResolvePath(p, "x.html", PathOptions{VersionSlug: "v2", Language: "ja", Subdomain: true})
		s.Equal("/ja/v2/x.html", got)
	})

	s.Run("project single-version flag cannot be unset by caller", func() {
		p := newProject("single")
		p.SingleVersion = true
		s.Equal("/x.html", r.ResolvePath(p, "x.html", PathOptions{Subdomain: true}))
	})
}

// TestLanguageResetsToOriginalOnTranslationHop pins the walk's quirk: every
// translation hop resets the language segment to the *original* project's
// language, never the parent's. Any change here changes served URLs and
// must be deliberate.
func (s *ResolverSuite) TestLanguageResetsToOriginalOnTranslationHop() {
	r := New(defaultConfig())

	parent := newProject("main")
	parent.Language = "en"
	child := asTranslationOf(newProject("main-es"), parent)
	child.Language = "es"

	got := r.ResolvePath(child, "x.html", PathOptions{Subdomain: true})
	s.Equal("/es/latest/x.html", got, "translation keeps its own language under the parent slug")

	// Even a caller-supplied language is overridden by the reset once a
	// translation hop occurs.
	got = r.ResolvePath(child, "x.html", PathOptions{Language: "de", Subdomain: true})
	s.Equal("/es/latest/x.html", got)
}

func (s *ResolverSuite) TestHierarchyWalk() {
	r := New(defaultConfig())

	s.Run("translation of a subproject resolves to the root slug", func() {
		root := newProject("umbrella")
		sub := asSubprojectOf(newProject("umbrella-api"), root, "api")
		translation := asTranslationOf(newProject("umbrella-api-es"), sub)
		translation.Language = "es"

		// Hop 1: translation -> sub (language reset, alias cleared).
		// Hop 2: sub -> root (alias "api", root's domain adopted).
		got := r.ResolvePath(translation, "x.html", PathOptions{Subdomain: true})
		s.Equal("/projects/api/es/latest/x.html", got)
	})

	s.Run("subproject parent canonical domain becomes the cname", func() {
		r := New(Config{ProductionDomain: "app.docshost.org"})
		root := withCanonicalDomain(newProject("umbrella"), "docs.example.com", true)
		sub := asSubprojectOf(newProject("umbrella-api"), root, "api")

		// Without the adopted cname this would take the /docs/ form.
		got := r.ResolvePath(sub, "x.html", PathOptions{})
		s.Equal("/projects/api/en/latest/x.html", got)
	})

	s.Run("walk stops after two hops", func() {
		// Three levels of nesting: only two hops are followed, so the
		// path roots at the middle project, not the true root.
		root := newProject("root")
		l1 := asSubprojectOf(newProject("l1"), root, "one")
		l2 := asSubprojectOf(newProject("l2"), l1, "two")
		l3 := asSubprojectOf(newProject("l3"), l2, "three")

		got := r.ResolvePath(l3, "x.html", PathOptions{Subdomain: true})
		s.Equal("/projects/two/en/latest/x.html", got)
	})

	s.Run("checked variant reports truncation", func() {
		root := newProject("root")
		l1 := asSubprojectOf(newProject("l1"), root, "one")
		l2 := asSubprojectOf(newProject("l2"), l1, "two")
		l3 := asSubprojectOf(newProject("l3"), l2, "three")

		_, err := r.ResolvePathChecked(l3, "x.html", PathOptions{Subdomain: true})
		s.Require().ErrorIs(err, ErrWalkTruncated)

		path, err := r.ResolvePathChecked(l2, "x.html", PathOptions{Subdomain: true})
		s.Require().NoError(err)
		s.Equal("/projects/one/en/latest/x.html", path)
	})
}

func (s *ResolverSuite) TestResolveDomain() {
	s.Run("custom domain wins over subdomain routing", func() {
		r := New(defaultConfig())
		p := withCanonicalDomain(newProject("branded"), "docs.example.com", true)
		s.Equal("docs.example.com", r.ResolveDomain(p))
	})

	s.Run("subdomain form with underscore substitution", func() {
		r := New(defaultConfig())
		p := newProject("my_project")
		s.Equal("my-project.docshost.io", r.ResolveDomain(p))
	})

	s.Run("production domain when subdomain routing is off", func() {
		r := New(Config{ProductionDomain: "app.docshost.org"})
		p := newProject("plain")
		s.Equal("app.docshost.org", r.ResolveDomain(p))
	})

	s.Run("subdomain routing requires a public domain", func() {
		r := New(Config{UseSubdomain: true, ProductionDomain: "app.docshost.org"})
		p := newProject("plain")
		s.Equal("app.docshost.org", r.ResolveDomain(p))
	})

	s.Run("domain comes from the canonical project", func() {
		r := New(defaultConfig())
		parent := withCanonicalDomain(newProject("main"), "docs.example.com", true)
		child := asTranslationOf(newProject("main-es"), parent)
		s.Equal("docs.example.com", r.ResolveDomain(child))
	})
}

func (s *ResolverSuite) TestResolveExternalVersions() {
	r := New(defaultConfig())

	s.Run("external version embeds slug in hostname", func() {
		p := withVersion(newProject("my_project"), "pr-42", models.VersionTypeExternal)
		got := r.Resolve(p, "index.html", Options{PathOptions: PathOptions{VersionSlug: "pr-42", Subdomain: true}})
		s.Equal("https://my-project--pr-42.build.docshost.io/en/pr-42/index.html", got)
	})

	s.Run("external naming wins over custom domain and subdomain", func() {
		p := withCanonicalDomain(newProject("branded"), "docs.example.com", false)
		withVersion(p, "pr-7", models.VersionTypeExternal)
		got := r.Resolve(p, "", Options{PathOptions: PathOptions{VersionSlug: "pr-7", Subdomain: true}})
		s.Contains(got, "://branded--pr-7.build.docshost.io/")
	})

	s.Run("non-external version types use normal domains", func() {
		p := withVersion(newProject("plain"), "v1.0", models.VersionTypeTag)
		got := r.Resolve(p, "", Options{PathOptions: PathOptions{VersionSlug: "v1.0", Subdomain: true}})
		s.Contains(got, "://plain.docshost.io/")
	})

	s.Run("absent version is not external", func() {
		p := newProject("plain")
		got := r.Resolve(p, "", Options{PathOptions: PathOptions{VersionSlug: "ghost", Subdomain: true}})
		s.Contains(got, "://plain.docshost.io/")
	})

	s.Run("explicit external override skips version lookup", func() {
		external := true
		p := newProject("plain")
		got := r.Resolve(p, "", Options{External: &external, PathOptions: PathOptions{Subdomain: true}})
		s.Contains(got, "://plain--latest.build.docshost.io/")
	})

	s.Run("explicit non-external override wins over stored type", func() {
		external := false
		p := withVersion(newProject("plain"), "pr-1", models.VersionTypeExternal)
		got := r.Resolve(p, "", Options{External: &external, PathOptions: PathOptions{VersionSlug: "pr-1", Subdomain: true}})
		s.Contains(got, "://plain.docshost.io/")
	})
}

func (s *ResolverSuite) TestProtocolSelection() {
	s.Run("custom domain https flag forces https", func() {
		r := New(Config{ProductionDomain: "app.docshost.org"})
		p := withCanonicalDomain(newProject("branded"), "docs.example.com", true)
		got := r.Resolve(p, "", Options{})
		s.Equal("https://docs.example.com/en/latest/", got)
	})

	s.Run("custom domain without https flag serves http", func() {
		r := New(Config{ProductionDomain: "app.docshost.org"})
		p := withCanonicalDomain(newProject("branded"), "docs.example.com", false)
		got := r.Resolve(p, "", Options{})
		s.Equal("http://docs.example.com/en/latest/", got)
	})

	s.Run("caller requirement forces https on any domain", func() {
		r := New(Config{ProductionDomain: "app.docshost.org"})
		p := withCanonicalDomain(newProject("branded"), "docs.example.com", false)
		got := r.Resolve(p, "", Options{RequireHTTPS: true})
		s.Contains(got, "https://")
	})

	s.Run("platform policy forces https on public domain hosts", func() {
		r := New(defaultConfig())
		p := newProject("plain")
		got := r.Resolve(p, "", Options{})
		s.Contains(got, "https://plain.docshost.io/")
	})

	s.Run("platform policy does not apply to foreign domains", func() {
		cfg := defaultConfig()
		cfg.PublicDomainUsesHTTPS = true
		r := New(cfg)
		p := withCanonicalDomain(newProject("branded"), "docs.example.com", false)
		got := r.Resolve(p, "", Options{})
		s.Contains(got, "http://docs.example.com")
	})

	s.Run("policy needs a public domain to apply", func() {
		r := New(Config{ProductionDomain: "app.docshost.org", PublicDomainUsesHTTPS: true, ExternalVersionDomain: "build.docshost.io"})
		p := newProject("plain")
		got := r.Resolve(p, "", Options{})
		s.Contains(got, "http://app.docshost.org/")
	})

	s.Run("external hostname matches policy via external version domain", func() {
		cfg := defaultConfig()
		r := New(cfg)
		p := withVersion(newProject("plain"), "pr-9", models.VersionTypeExternal)
		got := r.Resolve(p, "", Options{PathOptions: PathOptions{VersionSlug: "pr-9"}})
		s.Contains(got, "https://plain--pr-9.build.docshost.io/")
	})
}

func (s *ResolverSuite) TestResolveAssembly() {
	r := New(defaultConfig())

	s.Run("query params are appended verbatim", func() {
		p := newProject("plain")
		got := r.Resolve(p, "search.html", Options{QueryParams: "q=install&page=2"})
		s.Equal("https://plain.docshost.io/en/latest/search.html?q=install&page=2", got)
	})

	s.Run("no question mark without query params", func() {
		p := newProject("plain")
		got := r.Resolve(p, "index.html", Options{})
		s.Equal("https://plain.docshost.io/en/latest/index.html", got)
	})

	s.Run("empty filename resolves the version root", func() {
		p := newProject("plain")
		s.Equal("https://plain.docshost.io/en/latest/", r.Resolve(p, "", Options{}))
	})

	s.Run("full resolution of a translated subproject", func() {
		root := withCanonicalDomain(newProject("umbrella"), "docs.example.com", true)
		sub := asSubprojectOf(newProject("umbrella-api"), root, "api")
		translation := asTranslationOf(newProject("umbrella-api-ja"), sub)
		translation.Language = "ja"

		got := r.Resolve(translation, "guide.html", Options{})
		s.Equal("https://docs.example.com/projects/api/ja/latest/guide.html", got)
	})
}
