// Package handler exposes the resolver over HTTP for the platform's serving
// and link-rendering components.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"docshost/internal/platform/middleware"
	"docshost/internal/resolver/service"
	"docshost/internal/transport/http/shared"
	dErrors "docshost/pkg/domain-errors"
)

// Service defines the resolution operations the handler needs.
type Service interface {
	ResolveURL(ctx context.Context, req service.ResolveRequest) (string, error)
	ResolvePath(ctx context.Context, req service.PathRequest) (string, error)
	ResolveDomain(ctx context.Context, projectSlug string) (string, error)
}

// Handler handles resolution endpoints.
type Handler struct {
	logger  *slog.Logger
	resolve Service
}

// New creates a resolver Handler.
func New(resolve Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, resolve: resolve}
}

// Register mounts the resolution routes with their middleware chain.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(10 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Get("/resolve", h.handleResolveURL)
	router.Get("/resolve/path", h.handleResolvePath)
	router.Get("/resolve/domain", h.handleResolveDomain)

	r.Mount("/v1", router)
}

func (h *Handler) handleResolveURL(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := service.ResolveRequest{
		ProjectSlug:  query.Get("project"),
		Filename:     query.Get("filename"),
		VersionSlug:  query.Get("version"),
		Language:     query.Get("language"),
		QueryParams:  query.Get("query"),
		RequireHTTPS: queryBool(query.Get("require_https")),
	}
	if raw := query.Get("external"); raw != "" {
		external := queryBool(raw)
		req.External = &external
	}

	url, err := h.resolve.ResolveURL(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, "resolve url", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) handleResolvePath(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := service.PathRequest{
		ProjectSlug:   query.Get("project"),
		Filename:      query.Get("filename"),
		VersionSlug:   query.Get("version"),
		Language:      query.Get("language"),
		SingleVersion: queryBool(query.Get("single_version")),
		Subdomain:     queryBool(query.Get("subdomain")),
		CNAME:         query.Get("cname"),
	}

	path, err := h.resolve.ResolvePath(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, "resolve path", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (h *Handler) handleResolveDomain(w http.ResponseWriter, r *http.Request) {
	domain, err := h.resolve.ResolveDomain(r.Context(), r.URL.Query().Get("project"))
	if err != nil {
		h.writeServiceError(w, r, "resolve domain", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"domain": domain})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeBadRequest, dErrors.CodeNotFound:
		// Expected client outcomes, not worth an error-level log.
	default:
		h.logger.ErrorContext(r.Context(), "resolution failed",
			"op", op,
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}

func queryBool(raw string) bool {
	value, err := strconv.ParseBool(raw)
	return err == nil && value
}
