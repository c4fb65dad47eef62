// Package resolver computes the canonical externally-visible URL for a
// documentation artifact.
//
// URL types:
//
//   - Subdomain
//   - CNAME
//
// Path types:
//
//   - Subproject
//   - Single version
//   - Normal
//
// All possible URLs:
//
//	Subdomain or CNAME:
//
//	# Default
//	/<lang>/<version>/<filename>
//	# Single version
//	/<filename>
//	# Subproject default
//	/projects/<subproject_alias>/<lang>/<version>/<filename>
//	# Subproject single version
//	/projects/<subproject_alias>/<filename>
//
//	Development serving:
//
//	# Default
//	/docs/<project_slug>/<lang>/<version>/<filename>
//	# Single version
//	/docs/<project_slug>/<filename>
//	# Subproject default
//	/docs/<project_slug>/projects/<subproject_alias>/<lang>/<version>/<filename>
//	# Subproject single version
//	/docs/<project_slug>/projects/<subproject_alias>/<filename>
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"docshost/internal/project/models"
)

// maxPathWalkDepth bounds the hierarchy walk in ResolvePath. Nesting of
// subprojects and translations beyond two levels is supported by the data
// model but not fully resolved here: the walk stops after the second hop.
// CanonicalProject ascends without such a bound; the two must not be
// unified, since served paths depend on this exact truncation.
const maxPathWalkDepth = 2

// ErrWalkTruncated reports that ResolvePathChecked stopped the hierarchy
// walk while an unvisited parent link remained. The returned path is still
// the one production serving uses; the error exists for observability.
var ErrWalkTruncated = errors.New("hierarchy walk truncated at depth limit")

// Config is the platform-level serving configuration the resolver needs.
// It is injected at construction; the resolver performs no ambient lookup.
type Config struct {
	// UseSubdomain serves projects from <slug>.<PublicDomain> instead of
	// the shared /docs/<slug>/ path prefix. Only effective when
	// PublicDomain is set.
	UseSubdomain bool

	// PublicDomain is the base domain for generated project subdomains.
	PublicDomain string

	// ProductionDomain is the platform's fixed serving domain, used when
	// neither a custom domain nor subdomain routing applies.
	ProductionDomain string

	// ExternalVersionDomain is the base domain pull-request preview builds
	// are served from.
	ExternalVersionDomain string

	// PublicDomainUsesHTTPS forces https for URLs on PublicDomain or
	// ExternalVersionDomain.
	PublicDomainUsesHTTPS bool
}

// PathOptions overrides the per-project defaults of ResolvePath. The zero
// value of each field means "use the project's own value".
type PathOptions struct {
	// VersionSlug defaults to the project's default version.
	VersionSlug string

	// Language defaults to the project's language.
	Language string

	// SingleVersion forces the single-version path shape. When false the
	// project's own flag still applies.
	SingleVersion bool

	// Subdomain marks that the path will be served from a project
	// subdomain, rooting it at /.
	Subdomain bool

	// CNAME marks that the path will be served from a custom domain,
	// rooting it at /. Defaults to the project's canonical custom domain.
	CNAME string
}

// Options configures a full Resolve call.
type Options struct {
	PathOptions

	// RequireHTTPS forces the https scheme regardless of domain policy.
	RequireHTTPS bool

	// QueryParams is appended verbatim after "?". No encoding is applied.
	QueryParams string

	// External overrides externality detection. When nil, the version's
	// stored type decides.
	External *bool
}

// Resolver computes serving URLs for documentation artifacts. The default
// implementation is URLResolver; alternates can be substituted at
// composition time.
type Resolver interface {
	// Resolve returns the full canonical URL for filename within project.
	Resolve(project *models.Project, filename string, opts Options) string

	// ResolvePath returns only the path portion.
	ResolvePath(project *models.Project, filename string, opts PathOptions) string

	// ResolvePathChecked is ResolvePath plus a truncation diagnostic: the
	// error is ErrWalkTruncated when the bounded hierarchy walk stopped
	// short. The path is valid either way.
	ResolvePathChecked(project *models.Project, filename string, opts PathOptions) (string, error)

	// ResolveDomain returns the hostname the project's canonical project
	// is served from.
	ResolveDomain(project *models.Project) string

	// CanonicalProject ascends translation/subproject relationships to the
	// project that owns domain and branding for the tree.
	CanonicalProject(project *models.Project) *models.Project
}

// URLResolver is the default Resolver over an injected platform Config.
type URLResolver struct {
	cfg Config
}

// New constructs the default resolver.
func New(cfg Config) *URLResolver {
	return &URLResolver{cfg: cfg}
}

// CanonicalProject walks upward through translation and subproject
// relationships. A translation parent is preferred over a subproject parent
// at every step. The walk tracks visited projects: a cycle in a
// misconfigured hierarchy terminates the ascent at the last project before
// re-entry rather than erroring — you get what you get if you have
// configured your projects in a strange manner.
func (r *URLResolver) CanonicalProject(project *models.Project) *models.Project {
	visited := map[*models.Project]struct{}{project: {}}
	current := project
	for {
		next := current.TranslationParent()
		if next == nil {
			if relation := current.SubprojectRelation(); relation != nil {
				next = relation.Parent
			}
		}
		if next == nil {
			return current
		}
		if _, seen := visited[next]; seen {
			return current
		}
		visited[next] = struct{}{}
		current = next
	}
}

// ResolvePath fills in defaults from the project, walks at most
// maxPathWalkDepth hierarchy hops, and assembles the path shape.
func (r *URLResolver) ResolvePath(project *models.Project, filename string, opts PathOptions) string {
	path, _ := r.ResolvePathChecked(project, filename, opts)
	return path
}

// ResolvePathChecked implements the bounded hierarchy walk. Per hop: a
// translation parent switches the path-root slug and resets the language to
// the original project's language; a subproject relation switches the
// path-root slug, records the alias segment, and adopts the parent's
// canonical domain. Translation wins when both links are present.
func (r *URLResolver) ResolvePathChecked(project *models.Project, filename string, opts PathOptions) (string, error) {
	cname := opts.CNAME
	if cname == "" {
		if domain := project.CanonicalCustomDomain(); domain != nil {
			cname = domain.Name
		}
	}
	versionSlug := opts.VersionSlug
	if versionSlug == "" {
		versionSlug = project.DefaultVersion()
	}
	language := opts.Language
	if language == "" {
		language = project.Language
	}
	filename = strings.TrimLeft(filename, "/")

	current := project
	projectSlug := project.Slug
	subprojectAlias := ""
	for i := 0; i < maxPathWalkDepth; i++ {
		if parent := current.TranslationParent(); parent != nil {
			current = parent
			projectSlug = parent.Slug
			// The original project's language, not the parent's. A
			// translated subproject keeps its own language segment even
			// while served under the main project's slug.
			language = project.Language
			subprojectAlias = ""
		} else if relation := current.SubprojectRelation(); relation != nil {
			current = relation.Parent
			projectSlug = relation.Parent.Slug
			subprojectAlias = relation.Alias
			if domain := relation.Parent.CanonicalCustomDomain(); domain != nil {
				cname = domain.Name
			}
		} else {
			break
		}
	}

	singleVersion := project.SingleVersion || opts.SingleVersion

	path := r.basePath(projectSlug, filename, versionSlug, language, singleVersion, subprojectAlias, opts.Subdomain, cname)

	if current.TranslationParent() != nil || current.SubprojectRelation() != nil {
		return path, fmt.Errorf("resolving %q: %w", project.Slug, ErrWalkTruncated)
	}
	return path, nil
}

// basePath assembles a path with nothing smart, just filling in the blanks.
func (r *URLResolver) basePath(projectSlug, filename, versionSlug, language string, singleVersion bool, subprojectAlias string, subdomain bool, cname string) string {
	var b strings.Builder

	// Only support /docs/<project>/ URLs outside the normal serving
	// environment. Production paths are always rooted at a subdomain or
	// custom domain.
	if subdomain || cname != "" || r.useSubdomain() {
		b.WriteString("/")
	} else {
		b.WriteString("/docs/")
		b.WriteString(projectSlug)
		b.WriteString("/")
	}

	if subprojectAlias != "" {
		b.WriteString("projects/")
		b.WriteString(subprojectAlias)
		b.WriteString("/")
	}

	if singleVersion {
		b.WriteString(filename)
	} else {
		b.WriteString(language)
		b.WriteString("/")
		b.WriteString(versionSlug)
		b.WriteString("/")
		b.WriteString(filename)
	}

	return b.String()
}

// ResolveDomain picks the hostname for the project's canonical project:
// custom domain, then generated subdomain, then the production domain.
func (r *URLResolver) ResolveDomain(project *models.Project) string {
	canonical := r.CanonicalProject(project)
	if domain := canonical.CanonicalCustomDomain(); domain != nil {
		return domain.Name
	}
	if r.useSubdomain() {
		return r.projectSubdomain(canonical)
	}
	return r.cfg.ProductionDomain
}

// Resolve computes the full URL: externality-aware domain, protocol, path,
// and query string.
func (r *URLResolver) Resolve(project *models.Project, filename string, opts Options) string {
	versionSlug := opts.VersionSlug
	if versionSlug == "" {
		versionSlug = project.DefaultVersion()
	}
	external := r.isExternal(project, versionSlug)
	if opts.External != nil {
		external = *opts.External
	}

	canonical := r.CanonicalProject(project)
	customDomain := canonical.CanonicalCustomDomain()

	var domain string
	switch {
	case external:
		// The version slug lives in the hostname so single-version
		// projects still resolve the right PR build without path
		// segments to disambiguate.
		domain = r.externalSubdomain(canonical, versionSlug)
	case customDomain != nil:
		domain = customDomain.Name
	case r.useSubdomain():
		domain = r.projectSubdomain(canonical)
	default:
		domain = r.cfg.ProductionDomain
	}

	// Any one source is sufficient: the Domain.https field, the caller,
	// or platform policy for platform-owned hostnames.
	useHTTPS := (customDomain != nil && customDomain.HTTPS) ||
		opts.RequireHTTPS ||
		(r.cfg.PublicDomainUsesHTTPS && r.cfg.PublicDomain != "" &&
			(strings.Contains(domain, r.cfg.PublicDomain) ||
				strings.Contains(domain, r.cfg.ExternalVersionDomain)))

	protocol := "http"
	if useHTTPS {
		protocol = "https"
	}

	pathOpts := opts.PathOptions
	pathOpts.VersionSlug = opts.VersionSlug
	path := r.ResolvePath(project, filename, pathOpts)

	url := protocol + "://" + domain + path
	if opts.QueryParams != "" {
		url += "?" + opts.QueryParams
	}
	return url
}

// isExternal reports whether the version with the given slug is a
// pull-request/preview build. An absent version is not external.
func (r *URLResolver) isExternal(project *models.Project, versionSlug string) bool {
	versionType, ok := project.VersionType(versionSlug)
	return ok && versionType == models.VersionTypeExternal
}

// externalSubdomain builds the hostname a preview build is served from.
func (r *URLResolver) externalSubdomain(project *models.Project, versionSlug string) string {
	return fmt.Sprintf("%s--%s.%s", subdomainSlug(project), versionSlug, r.cfg.ExternalVersionDomain)
}

// projectSubdomain builds the project's generated subdomain.
func (r *URLResolver) projectSubdomain(project *models.Project) string {
	return fmt.Sprintf("%s.%s", subdomainSlug(project), r.cfg.PublicDomain)
}

func (r *URLResolver) useSubdomain() bool {
	return r.cfg.UseSubdomain && r.cfg.PublicDomain != ""
}

// subdomainSlug makes a slug hostname-safe: underscores are valid in paths
// but not in DNS labels.
func subdomainSlug(project *models.Project) string {
	return strings.ReplaceAll(project.Slug, "_", "-")
}
