// Package handler wires admin-facing project management endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docshost/internal/platform/middleware"
	"docshost/internal/project/models"
	"docshost/internal/transport/http/shared"
	dErrors "docshost/pkg/domain-errors"
)

// Service defines the project operations the handler needs.
type Service interface {
	CreateProject(ctx context.Context, slug, language string, singleVersion bool) (*models.Project, error)
	GetBySlug(ctx context.Context, slug string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)
	AttachTranslation(ctx context.Context, childSlug, parentSlug string) (*models.Project, error)
	AttachSubproject(ctx context.Context, parentSlug, childSlug, alias string) (*models.Project, error)
	AddDomain(ctx context.Context, slug, name string, canonical, https bool) (*models.Domain, error)
	AddVersion(ctx context.Context, slug, versionSlug string, versionType models.VersionType) (*models.Version, error)
}

// Handler handles project administration endpoints.
type Handler struct {
	logger   *slog.Logger
	projects Service
}

// New creates a project admin Handler.
func New(projects Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, projects: projects}
}

// Register mounts the admin routes with their middleware chain.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Post("/projects", h.handleCreateProject)
	router.Get("/projects", h.handleListProjects)
	router.Get("/projects/{slug}", h.handleGetProject)
	router.Post("/projects/{slug}/translation", h.handleAttachTranslation)
	router.Post("/projects/{slug}/subprojects", h.handleAttachSubproject)
	router.Post("/projects/{slug}/domains", h.handleAddDomain)
	router.Post("/projects/{slug}/versions", h.handleAddVersion)

	r.Mount("/admin", router)
}

type createProjectRequest struct {
	Slug          string `json:"slug"`
	Language      string `json:"language"`
	SingleVersion bool   `json:"single_version"`
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	project, err := h.projects.CreateProject(r.Context(), req.Slug, req.Language, req.SingleVersion)
	if err != nil {
		h.writeServiceError(w, r, "create project", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, project)
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListProjects(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "list projects", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeServiceError(w, r, "get project", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, project)
}

type attachTranslationRequest struct {
	MainLanguageProject string `json:"main_language_project"`
}

func (h *Handler) handleAttachTranslation(w http.ResponseWriter, r *http.Request) {
	var req attachTranslationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	project, err := h.projects.AttachTranslation(r.Context(), chi.URLParam(r, "slug"), req.MainLanguageProject)
	if err != nil {
		h.writeServiceError(w, r, "attach translation", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, project)
}

type attachSubprojectRequest struct {
	Child string `json:"child"`
	Alias string `json:"alias"`
}

func (h *Handler) handleAttachSubproject(w http.ResponseWriter, r *http.Request) {
	var req attachSubprojectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	project, err := h.projects.AttachSubproject(r.Context(), chi.URLParam(r, "slug"), req.Child, req.Alias)
	if err != nil {
		h.writeServiceError(w, r, "attach subproject", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, project)
}

type addDomainRequest struct {
	Domain    string `json:"domain"`
	Canonical bool   `json:"canonical"`
	HTTPS     bool   `json:"https"`
}

func (h *Handler) handleAddDomain(w http.ResponseWriter, r *http.Request) {
	var req addDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	domain, err := h.projects.AddDomain(r.Context(), chi.URLParam(r, "slug"), req.Domain, req.Canonical, req.HTTPS)
	if err != nil {
		h.writeServiceError(w, r, "add domain", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, domain)
}

type addVersionRequest struct {
	Slug string `json:"slug"`
	Type string `json:"type"`
}

func (h *Handler) handleAddVersion(w http.ResponseWriter, r *http.Request) {
	var req addVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	version, err := h.projects.AddVersion(r.Context(), chi.URLParam(r, "slug"), req.Slug, models.VersionType(req.Type))
	if err != nil {
		h.writeServiceError(w, r, "add version", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, version)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(r.Context(), "project operation failed",
			"op", op,
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
