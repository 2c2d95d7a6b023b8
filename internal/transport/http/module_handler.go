package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/yashika-63/ESG-Analytics/internal/errors"
	"github.com/yashika-63/ESG-Analytics/internal/services"
	"github.com/yashika-63/ESG-Analytics/internal/workbook"
)

// ModuleHandler serves the per-module dashboard endpoints.
type ModuleHandler struct {
	service      *services.DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewModuleHandler creates a module handler.
func NewModuleHandler(service *services.DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ModuleHandler {
	return &ModuleHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "module_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the module routes.
func (h *ModuleHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListModules)
	r.Route("/{module}", func(r chi.Router) {
		r.Use(h.ModuleCtx)
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/status", h.GetStatus)
		r.Post("/upload", h.UploadWorkbook)
	})
	return r
}

// ModuleCtx validates the module key before the handlers run.
func (h *ModuleHandler) ModuleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "module")
		if key == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("module", "Module key is required"))
			return
		}
		if _, err := h.service.Status(key); errors.Is(err, services.ErrUnknownModule) {
			h.errorHandler.HandleError(w, r, apierrors.ModuleNotFoundError(key))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListModules handles GET /api/modules.
func (h *ModuleHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	infos := h.service.Modules()
	render.JSON(w, r, map[string]any{
		"status": "success",
		"data":   infos,
		"count":  len(infos),
	})
}

// GetDashboard handles GET /api/modules/{module}/dashboard. Every call
// recomputes from the current store rows; there is no cached increment.
func (h *ModuleHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "module")
	year := r.URL.Query().Get("year")

	h.logger.InfoContext(r.Context(), "dashboard requested",
		slog.String("module", key),
		slog.String("year", year),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	dash, err := h.service.Refresh(r.Context(), key, year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, dash)
}

// GetStatus handles GET /api/modules/{module}/status.
func (h *ModuleHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	dash, err := h.service.Status(chi.URLParam(r, "module"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, dash)
}

// UploadWorkbook handles POST /api/modules/{module}/upload. The body is
// a multipart form with the spreadsheet under the "file" field.
func (h *ModuleHandler) UploadWorkbook(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "module")

	if err := r.ParseMultipartForm(workbook.MaxUploadBytes); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.UploadError(err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A workbook file is required"))
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "workbook upload received",
		slog.String("module", key),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	dash, err := h.service.LoadWorkbook(r.Context(), key, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, dash)
}
