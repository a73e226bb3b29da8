package reportshandler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/access"
	"appraisal/internal/domain/reports"
	"appraisal/internal/store"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
	Access  *access.Service
}

func NewHandler(service *reports.Service, acc *access.Service) *Handler {
	return &Handler{Service: service, Access: acc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireRoute(h.Access, "reports"))
		r.Get("/summary", h.handleSummary)
		r.Get("/departments", h.handleDepartmentAverages)
		r.Get("/distribution", h.handleScoreDistribution)
		r.Get("/criteria", h.handleCriteriaBreakdown)
		r.Get("/evaluations/{evaluationID}/pdf", h.handleEvaluationSheet)
	})
	r.With(middleware.RequireRoute(h.Access, "dashboard")).Get("/dashboard", h.handleDashboard)
}

func filterFrom(r *http.Request) (reports.Filter, error) {
	periodID, err := shared.QueryID(r, "periodId")
	if err != nil {
		return reports.Filter{}, err
	}
	departmentID, err := shared.QueryID(r, "departmentId")
	if err != nil {
		return reports.Filter{}, err
	}
	return reports.Filter{PeriodID: periodID, DepartmentID: departmentID}, nil
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFrom(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_filter", "invalid report filter", middleware.GetRequestID(r.Context()))
		return
	}
	summary, err := h.Service.Summary(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build summary report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDepartmentAverages(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFrom(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_filter", "invalid report filter", middleware.GetRequestID(r.Context()))
		return
	}
	averages, err := h.Service.DepartmentAverages(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build department report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, averages, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleScoreDistribution(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFrom(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_filter", "invalid report filter", middleware.GetRequestID(r.Context()))
		return
	}
	buckets, err := h.Service.ScoreDistribution(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build score distribution", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, buckets, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCriteriaBreakdown(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFrom(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_filter", "invalid report filter", middleware.GetRequestID(r.Context()))
		return
	}
	breakdown, err := h.Service.CriteriaBreakdown(r.Context(), filter.DepartmentID, filter.PeriodID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build criteria report", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, breakdown, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", "invalid limit", middleware.GetRequestID(r.Context()))
			return
		}
		limit = parsed
	}
	stats, err := h.Service.Dashboard(r.Context(), limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEvaluationSheet(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "evaluationID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid evaluation id", middleware.GetRequestID(r.Context()))
		return
	}

	pdfBytes, err := h.Service.EvaluationSheet(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render evaluation sheet", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=evaluation-%d.pdf", id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}
