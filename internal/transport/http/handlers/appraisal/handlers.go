package appraisalhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/access"
	"appraisal/internal/domain/appraisal"
	"appraisal/internal/store"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service *appraisal.Service
	Access  *access.Service
	Store   store.Store
}

func NewHandler(service *appraisal.Service, acc *access.Service, s store.Store) *Handler {
	return &Handler{Service: service, Access: acc, Store: s}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.Use(middleware.RequireRoute(h.Access, "evaluations"))
		r.Get("/", h.handleListEvaluations)
		r.Post("/", h.handleCreateEvaluation)
		r.Get("/{evaluationID}", h.handleGetEvaluation)
		r.Put("/{evaluationID}", h.handleSaveDraft)
		r.Post("/{evaluationID}/submit", h.handleSubmit)
		r.Post("/{evaluationID}/status", h.handleChangeStatus)
		r.Delete("/{evaluationID}", h.handleDeleteEvaluation)
	})

	r.Route("/criteria", func(r chi.Router) {
		r.Use(middleware.RequireRoute(h.Access, "criteria"))
		r.Get("/", h.handleListCriteria)
		r.Post("/", h.handleCreateCriterion)
		r.Put("/{criterionID}", h.handleUpdateCriterion)
		r.Delete("/{criterionID}", h.handleDeleteCriterion)
	})

	r.Route("/periods", func(r chi.Router) {
		r.Use(middleware.RequireRoute(h.Access, "periods"))
		r.Get("/", h.handleListPeriods)
		r.Post("/", h.handleCreatePeriod)
		r.Put("/{periodID}", h.handleUpdatePeriod)
		r.Post("/{periodID}/activate", h.handleActivatePeriod)
		r.Delete("/{periodID}", h.handleDeletePeriod)
	})
}

func failDomain(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMessage string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, store.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", requestID)
	case errors.Is(err, appraisal.ErrNotAuthorized):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, appraisal.ErrDuplicateEvaluation):
		api.Fail(w, http.StatusConflict, "duplicate_evaluation", "an evaluation already exists for this employee and period", requestID)
	case errors.Is(err, appraisal.ErrNoActivePeriod):
		api.Fail(w, http.StatusConflict, "no_active_period", "no evaluation period is active", requestID)
	case errors.Is(err, appraisal.ErrScoreOutOfRange):
		api.Fail(w, http.StatusBadRequest, "score_out_of_range", "a score is outside its criterion range", requestID)
	case errors.Is(err, appraisal.ErrInvalidStatus):
		api.Fail(w, http.StatusBadRequest, "invalid_status", "unknown evaluation status", requestID)
	case errors.Is(err, appraisal.ErrPeriodInUse):
		api.Fail(w, http.StatusConflict, "period_in_use", "period has evaluations", requestID)
	case errors.Is(err, appraisal.ErrCannotDeleteActivePeriod):
		api.Fail(w, http.StatusConflict, "active_period", "the active period cannot be deleted", requestID)
	case errors.Is(err, appraisal.ErrCriterionInUse):
		api.Fail(w, http.StatusConflict, "criterion_in_use", "criterion is used by evaluations", requestID)
	case errors.Is(err, appraisal.ErrInvalidDateRange):
		api.Fail(w, http.StatusBadRequest, "invalid_date_range", "end date must be after start date", requestID)
	case errors.Is(err, appraisal.ErrInvalidWeight):
		api.Fail(w, http.StatusBadRequest, "invalid_weight", "weight must be positive", requestID)
	case errors.Is(err, appraisal.ErrInvalidMaxScore):
		api.Fail(w, http.StatusBadRequest, "invalid_max_score", "max score must be positive", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMessage, requestID)
	}
}

func actorFrom(user middleware.UserContext) access.Actor {
	return access.Actor{UserID: user.UserID, EmployeeID: user.EmployeeID}
}

func (h *Handler) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	evaluations, err := h.Service.ListVisible(r.Context(), actorFrom(user))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evaluation_list_failed", "failed to list evaluations", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, evaluations, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEvaluation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeID int64 `json:"employeeId" validate:"required"`
		PeriodID   int64 `json:"periodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	evaluation, err := h.Service.Create(r.Context(), actorFrom(user), payload.EmployeeID, payload.PeriodID)
	if err != nil {
		failDomain(w, r, err, "evaluation_create_failed", "failed to create evaluation")
		return
	}
	api.Created(w, evaluation, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "evaluationID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid evaluation id", middleware.GetRequestID(r.Context()))
		return
	}
	evaluation, details, err := h.Service.Get(r.Context(), id)
	if err != nil {
		failDomain(w, r, err, "evaluation_get_failed", "failed to load evaluation")
		return
	}
	api.Success(w, map[string]any{"evaluation": evaluation, "details": details}, middleware.GetRequestID(r.Context()))
}

type scoresPayload struct {
	Comments string `json:"comments"`
	Scores   []struct {
		DetailID int64   `json:"detailId" validate:"required"`
		Score    float64 `json:"score"`
		Comments string  `json:"comments"`
	} `json:"scores" validate:"dive"`
}

func (p scoresPayload) toScores() []appraisal.DetailScore {
	scores := make([]appraisal.DetailScore, 0, len(p.Scores))
	for _, item := range p.Scores {
		scores = append(scores, appraisal.DetailScore{
			DetailID: item.DetailID,
			Score:    item.Score,
			Comments: item.Comments,
		})
	}
	return scores
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	id, err := shared.PathID(r, "evaluationID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid evaluation id", middleware.GetRequestID(r.Context()))
		return
	}

	var payload scoresPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.SaveDraft(r.Context(), actorFrom(user), id, payload.Comments, payload.toScores()); err != nil {
		failDomain(w, r, err, "evaluation_save_failed", "failed to save evaluation")
		return
	}
	api.Success(w, map[string]int64{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	id, err := shared.PathID(r, "evaluationID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid evaluation id", middleware.GetRequestID(r.Context()))
		return
	}

	var payload scoresPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.Submit(r.Context(), actorFrom(user), id, payload.Comments, payload.toScores()); err != nil {
		failDomain(w, r, err, "evaluation_submit_failed", "failed to submit evaluation")
		return
	}
	api.Success(w, map[string]string{"status": store.StatusSubmitted.String()}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	id, err := shared.PathID(r, "evaluationID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid evaluation id", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Status int64 `json:"status" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	status := store.EvaluationStatus(payload.Status)
	if err := h.Service.ChangeStatus(r.Context(), actorFrom(user), id, status); err != nil {
		failDomain(w, r, err, "evaluation_status_failed", "failed to change status")
		return
	}
	api.Success(w, map[string]string{"status": status.String()}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteEvaluation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	id, err := shared.PathID(r, "evaluationID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid evaluation id", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.Delete(r.Context(), actorFrom(user), id); err != nil {
		failDomain(w, r, err, "evaluation_delete_failed", "failed to delete evaluation")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListCriteria(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.Store.ListCriteria(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "criterion_list_failed", "failed to list criteria", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, criteria, middleware.GetRequestID(r.Context()))
}

type criterionPayload struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight" validate:"gt=0"`
	MaxScore    float64 `json:"maxScore" validate:"gt=0"`
	IsActive    *bool   `json:"isActive"`
}

func (p criterionPayload) toInput() appraisal.CriterionInput {
	input := appraisal.CriterionInput{
		Name:        p.Name,
		Description: p.Description,
		Weight:      p.Weight,
		MaxScore:    p.MaxScore,
		IsActive:    true,
	}
	if p.IsActive != nil {
		input.IsActive = *p.IsActive
	}
	return input
}

func (h *Handler) handleCreateCriterion(w http.ResponseWriter, r *http.Request) {
	var payload criterionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	criterion, err := h.Service.CreateCriterion(r.Context(), payload.toInput())
	if err != nil {
		failDomain(w, r, err, "criterion_create_failed", "failed to create criterion")
		return
	}
	api.Created(w, criterion, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateCriterion(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "criterionID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid criterion id", middleware.GetRequestID(r.Context()))
		return
	}

	var payload criterionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.UpdateCriterion(r.Context(), id, payload.toInput()); err != nil {
		failDomain(w, r, err, "criterion_update_failed", "failed to update criterion")
		return
	}
	api.Success(w, map[string]int64{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteCriterion(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "criterionID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid criterion id", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeleteCriterion(r.Context(), id); err != nil {
		failDomain(w, r, err, "criterion_delete_failed", "failed to delete criterion")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Store.ListPeriods(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "period_list_failed", "failed to list periods", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, periods, middleware.GetRequestID(r.Context()))
}

type periodPayload struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
	Year      int    `json:"year"`
	IsActive  bool   `json:"isActive"`
}

func (p periodPayload) toInput(w http.ResponseWriter, requestID string) (appraisal.PeriodInput, bool) {
	startDate, err := shared.ParseDate(p.StartDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid start date", requestID)
		return appraisal.PeriodInput{}, false
	}
	endDate, err := shared.ParseDate(p.EndDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid end date", requestID)
		return appraisal.PeriodInput{}, false
	}
	year := p.Year
	if year == 0 {
		year = startDate.Year()
	}
	return appraisal.PeriodInput{
		Name:      p.Name,
		StartDate: startDate,
		EndDate:   endDate,
		Year:      year,
		IsActive:  p.IsActive,
	}, true
}

func (h *Handler) handleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	var payload periodPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	input, ok := payload.toInput(w, middleware.GetRequestID(r.Context()))
	if !ok {
		return
	}
	period, err := h.Service.CreatePeriod(r.Context(), input)
	if err != nil {
		failDomain(w, r, err, "period_create_failed", "failed to create period")
		return
	}
	api.Created(w, period, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdatePeriod(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "periodID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid period id", middleware.GetRequestID(r.Context()))
		return
	}

	var payload periodPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if shared.RejectInvalid(w, payload, middleware.GetRequestID(r.Context())) {
		return
	}

	input, ok := payload.toInput(w, middleware.GetRequestID(r.Context()))
	if !ok {
		return
	}
	if err := h.Service.UpdatePeriod(r.Context(), id, input); err != nil {
		failDomain(w, r, err, "period_update_failed", "failed to update period")
		return
	}
	api.Success(w, map[string]int64{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleActivatePeriod(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "periodID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid period id", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.ActivatePeriod(r.Context(), id); err != nil {
		failDomain(w, r, err, "period_activate_failed", "failed to activate period")
		return
	}
	api.Success(w, map[string]int64{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeletePeriod(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "periodID")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid period id", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Service.DeletePeriod(r.Context(), id); err != nil {
		failDomain(w, r, err, "period_delete_failed", "failed to delete period")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
