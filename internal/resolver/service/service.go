// Package service exposes the resolver to the rest of the platform: it joins
// project lookups, the pure URL resolver, the resolved-URL cache, and
// metrics.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"docshost/internal/project/models"
	"docshost/internal/project/store"
	"docshost/internal/resolver"
	"docshost/internal/resolver/cache"
	resolvermetrics "docshost/internal/resolver/metrics"
	dErrors "docshost/pkg/domain-errors"
	"docshost/pkg/platform/sentinel"
	"docshost/pkg/requestcontext"
)

// ResolveRequest names the inputs of a full URL resolution.
type ResolveRequest struct {
	ProjectSlug  string
	Filename     string
	VersionSlug  string
	Language     string
	QueryParams  string
	RequireHTTPS bool
	External     *bool
}

// PathRequest names the inputs of a path-only resolution.
type PathRequest struct {
	ProjectSlug   string
	Filename      string
	VersionSlug   string
	Language      string
	SingleVersion bool
	Subdomain     bool
	CNAME         string
}

// Service is the platform-facing resolution API.
type Service struct {
	projects store.ProjectReader
	resolver resolver.Resolver
	cache    *cache.Cache
	metrics  *resolvermetrics.Metrics
	logger   *slog.Logger
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithCache attaches a resolved-URL cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics attaches resolver module metrics.
func WithMetrics(m *resolvermetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the resolution service.
func New(projects store.ProjectReader, r resolver.Resolver, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		projects: projects,
		resolver: r,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveURL computes the full canonical URL for a file in a project.
func (s *Service) ResolveURL(ctx context.Context, req ResolveRequest) (string, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveResolve(start)
			s.metrics.Resolutions.WithLabelValues("url").Inc()
		}
	}()

	key := cache.Key(req.ProjectSlug, req.VersionSlug, req.Language, req.Filename,
		req.QueryParams, strconv.FormatBool(req.RequireHTTPS), externalKeyPart(req.External))
	if url, ok, err := s.cache.Get(ctx, key); err != nil {
		// Cache trouble must never fail resolution.
		s.logger.WarnContext(ctx, "resolve cache read failed", "error", err.Error())
	} else if ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return url, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	project, err := s.lookup(ctx, req.ProjectSlug)
	if err != nil {
		return "", err
	}

	url := s.resolver.Resolve(project, req.Filename, resolver.Options{
		RequireHTTPS: req.RequireHTTPS,
		QueryParams:  req.QueryParams,
		External:     req.External,
		PathOptions: resolver.PathOptions{
			VersionSlug: req.VersionSlug,
			Language:    req.Language,
		},
	})

	if err := s.cache.Set(ctx, key, url); err != nil {
		s.logger.WarnContext(ctx, "resolve cache write failed", "error", err.Error())
	}
	return url, nil
}

// ResolvePath computes only the path portion. Walk truncation on deep
// hierarchies is counted and logged but does not fail the call; the
// truncated path is what production serving uses.
func (s *Service) ResolvePath(ctx context.Context, req PathRequest) (string, error) {
	if s.metrics != nil {
		s.metrics.Resolutions.WithLabelValues("path").Inc()
	}
	project, err := s.lookup(ctx, req.ProjectSlug)
	if err != nil {
		return "", err
	}

	path, err := s.resolver.ResolvePathChecked(project, req.Filename, resolver.PathOptions{
		VersionSlug:   req.VersionSlug,
		Language:      req.Language,
		SingleVersion: req.SingleVersion,
		Subdomain:     req.Subdomain,
		CNAME:         req.CNAME,
	})
	if errors.Is(err, resolver.ErrWalkTruncated) {
		if s.metrics != nil {
			s.metrics.WalkTruncations.Inc()
		}
		s.logger.WarnContext(ctx, "hierarchy walk truncated",
			"project", req.ProjectSlug,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return path, nil
}

// ResolveDomain computes the hostname the project is served from.
func (s *Service) ResolveDomain(ctx context.Context, projectSlug string) (string, error) {
	if s.metrics != nil {
		s.metrics.Resolutions.WithLabelValues("domain").Inc()
	}
	project, err := s.lookup(ctx, projectSlug)
	if err != nil {
		return "", err
	}
	return s.resolver.ResolveDomain(project), nil
}

func (s *Service) lookup(ctx context.Context, slug string) (*models.Project, error) {
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "project slug is required")
	}
	project, err := s.projects.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "project lookup failed")
	}
	return project, nil
}

func externalKeyPart(external *bool) string {
	if external == nil {
		return "auto"
	}
	return strconv.FormatBool(*external)
}
