package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/miradorstack/sales-insights/internal/export"
	"github.com/miradorstack/sales-insights/internal/metrics"
	"github.com/miradorstack/sales-insights/internal/models"
)

// DashboardService is the behaviour the transports need from the service layer.
type DashboardService interface {
	Recompute(ctx context.Context, q models.DashboardQuery) (models.DashboardResult, error)
	Export(ctx context.Context, q models.DashboardQuery) ([]byte, int, error)
	Options() (models.FilterOptions, error)
}

// NewRouter builds the HTTP surface: JSON API, CSV download, HTML dashboard and liveness.
func NewRouter(logger *slog.Logger, svc DashboardService) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &httpHandlers{logger: logger, svc: svc, page: newDashboardPage()}

	r := chi.NewRouter()
	r.Use(
		Recoverer(logger),
		RequestID(),
		Logging(logger),
	)

	r.Get("/", h.dashboardPage)
	r.Get("/healthz", h.healthz)

	r.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Get("/", h.recomputeFromQuery)
		r.Post("/", h.recomputeFromBody)
		r.Get("/options", h.options)
		r.Get("/export.csv", h.exportCSV)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorEnvelope{Error: APIError{Code: CodeNotFound, Message: "route not found"}}, logger)
	})
	return r
}

type httpHandlers struct {
	logger *slog.Logger
	svc    DashboardService
	page   *dashboardPage
}

func (h *httpHandlers) healthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, map[string]string{"status": "ok"})
}

func (h *httpHandlers) recomputeFromQuery(w http.ResponseWriter, r *http.Request) {
	q, err := QueryFromValues(r.URL.Query())
	if err != nil {
		writeError(h.logger, r, w, err)
		return
	}
	h.recompute(w, r, q)
}

func (h *httpHandlers) recomputeFromBody(w http.ResponseWriter, r *http.Request) {
	q, err := decodeBody(r)
	if err != nil {
		writeError(h.logger, r, w, err)
		return
	}
	h.recompute(w, r, q)
}

func (h *httpHandlers) recompute(w http.ResponseWriter, r *http.Request, q models.DashboardQuery) {
	result, err := h.svc.Recompute(r.Context(), q)
	if err != nil {
		writeError(h.logger, r, w, err)
		return
	}
	writeSuccess(w, result)
}

func (h *httpHandlers) options(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.Options()
	if err != nil {
		writeError(h.logger, r, w, err)
		return
	}
	writeSuccess(w, opts)
}

func (h *httpHandlers) exportCSV(w http.ResponseWriter, r *http.Request) {
	q, err := QueryFromValues(r.URL.Query())
	if err != nil {
		writeError(h.logger, r, w, err)
		return
	}
	payload, rows, err := h.svc.Export(r.Context(), q)
	if err != nil {
		writeError(h.logger, r, w, err)
		return
	}
	metrics.IncExport(metrics.TransportHTTP)

	w.Header().Set("Content-Type", export.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("X-Row-Count", strconv.Itoa(rows))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		h.logger.Warn("csv download interrupted", slog.Any("error", err))
	}
}

func (h *httpHandlers) dashboardPage(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.Options()
	if err != nil {
		writeError(h.logger, r, w, err)
		return
	}

	view := pageData{Options: opts}
	statusCode := http.StatusOK

	q, err := QueryFromValues(r.URL.Query())
	if err == nil {
		var result models.DashboardResult
		result, err = h.svc.Recompute(r.Context(), q)
		if err == nil {
			view.fill(result, r.URL.RawQuery)
		}
	}
	if err != nil {
		code, apiErr := toAPIError(err)
		if code >= http.StatusInternalServerError {
			writeError(h.logger, r, w, err)
			return
		}
		statusCode = code
		view.Error = describeAPIError(apiErr)
		view.selectDefaults(opts)
	}

	h.page.render(h.logger, w, statusCode, view)
}
