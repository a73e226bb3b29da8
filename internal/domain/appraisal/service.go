// Package appraisal implements the evaluation workflow: the status lifecycle,
// detail score mutations, the weighted scoring computation, and the period and
// criteria lifecycle rules.
package appraisal

import (
	"context"
	"errors"
	"sync"
	"time"

	"appraisal/internal/domain/access"
	"appraisal/internal/store"
)

const lockStripes = 64

type Service struct {
	Store  store.Store
	Access *access.Service

	// createMu makes the duplicate check and the insert atomic; evalLocks
	// serialize mutations per evaluation; periodMu guards activation swaps.
	createMu  sync.Mutex
	periodMu  sync.Mutex
	evalLocks [lockStripes]sync.Mutex
}

func NewService(s store.Store, acc *access.Service) *Service {
	return &Service{Store: s, Access: acc}
}

func (s *Service) lockEvaluation(id int64) *sync.Mutex {
	return &s.evalLocks[uint64(id)%lockStripes]
}

// DetailScore is one criterion's score input for a save or submit.
type DetailScore struct {
	DetailID int64
	Score    float64
	Comments string
}

// Create starts a Draft evaluation for the employee in the given period and
// seeds one detail row per currently active criterion. A zero periodID means
// "the active period".
func (s *Service) Create(ctx context.Context, actor access.Actor, employeeID, periodID int64) (store.Evaluation, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	active, err := s.Store.ActivePeriod(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Evaluation{}, ErrNoActivePeriod
		}
		return store.Evaluation{}, err
	}
	if periodID == 0 {
		periodID = active.ID
	} else if _, err := s.Store.GetPeriod(ctx, periodID); err != nil {
		return store.Evaluation{}, err
	}

	target, err := s.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return store.Evaluation{}, err
	}

	if !s.Access.CanEvaluate(ctx, actor, target) {
		return store.Evaluation{}, ErrNotAuthorized
	}

	if _, err := s.Store.EvaluationByEmployeeAndPeriod(ctx, employeeID, periodID); err == nil {
		return store.Evaluation{}, ErrDuplicateEvaluation
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.Evaluation{}, err
	}

	evaluation := store.Evaluation{
		EmployeeID:  employeeID,
		EvaluatorID: actor.EmployeeID,
		PeriodID:    periodID,
		Status:      store.StatusDraft,
	}
	id, err := s.Store.CreateEvaluation(ctx, evaluation)
	if err != nil {
		return store.Evaluation{}, err
	}

	criteria, err := s.Store.ListActiveCriteria(ctx)
	if err != nil {
		return store.Evaluation{}, err
	}
	for _, criterion := range criteria {
		detail := store.EvaluationDetail{
			EvaluationID: id,
			CriterionID:  criterion.ID,
			Score:        0,
		}
		if _, err := s.Store.CreateDetail(ctx, detail); err != nil {
			return store.Evaluation{}, err
		}
	}

	return s.Store.GetEvaluation(ctx, id)
}

// UpdateDetailScores validates every score against its criterion before any
// write, then persists the details, the general comments, and the recomputed
// total score.
func (s *Service) UpdateDetailScores(ctx context.Context, actor access.Actor, evaluationID int64, comments string, scores []DetailScore) error {
	lock := s.lockEvaluation(evaluationID)
	lock.Lock()
	defer lock.Unlock()
	return s.updateDetailsLocked(ctx, actor, evaluationID, comments, scores)
}

func (s *Service) updateDetailsLocked(ctx context.Context, actor access.Actor, evaluationID int64, comments string, scores []DetailScore) error {
	evaluation, err := s.Store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return err
	}
	if !s.Access.CanEditEvaluation(ctx, actor, evaluation) {
		return ErrNotAuthorized
	}

	// All-or-nothing: the whole batch is checked before the first write.
	for _, input := range scores {
		detail, err := s.Store.GetDetail(ctx, input.DetailID)
		if err != nil {
			return err
		}
		if detail.EvaluationID != evaluationID {
			return store.ErrNotFound
		}
		criterion, err := s.Store.GetCriterion(ctx, detail.CriterionID)
		if err != nil {
			return err
		}
		if input.Score < 0 || input.Score > criterion.MaxScore {
			return ErrScoreOutOfRange
		}
	}

	for _, input := range scores {
		score := input.Score
		detailComments := input.Comments
		patch := store.EvaluationDetailPatch{Score: &score, Comments: &detailComments}
		if err := s.Store.UpdateDetail(ctx, input.DetailID, patch); err != nil {
			return err
		}
	}

	if err := s.Store.UpdateEvaluation(ctx, evaluationID, store.EvaluationPatch{Comments: &comments}); err != nil {
		return err
	}

	return s.ApplyTotalScore(ctx, evaluationID)
}

// SaveDraft persists scores and comments without touching the status.
func (s *Service) SaveDraft(ctx context.Context, actor access.Actor, evaluationID int64, comments string, scores []DetailScore) error {
	return s.UpdateDetailScores(ctx, actor, evaluationID, comments, scores)
}

// Submit saves the scores, then moves the evaluation to Submitted and stamps
// the submission date.
func (s *Service) Submit(ctx context.Context, actor access.Actor, evaluationID int64, comments string, scores []DetailScore) error {
	lock := s.lockEvaluation(evaluationID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.updateDetailsLocked(ctx, actor, evaluationID, comments, scores); err != nil {
		return err
	}

	now := time.Now().UTC()
	submitted := store.StatusSubmitted
	submission := &now
	return s.Store.UpdateEvaluation(ctx, evaluationID, store.EvaluationPatch{
		Status:         &submitted,
		SubmissionDate: &submission,
	})
}

// ChangeStatus moves the evaluation to any valid status. The lifecycle is
// deliberately permissive: any actor passing CanChangeStatus may set any
// target status. Reaching Completed stamps the completion date.
func (s *Service) ChangeStatus(ctx context.Context, actor access.Actor, evaluationID int64, status store.EvaluationStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	lock := s.lockEvaluation(evaluationID)
	lock.Lock()
	defer lock.Unlock()

	evaluation, err := s.Store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return err
	}
	if !s.Access.CanChangeStatus(ctx, actor, evaluation) {
		return ErrNotAuthorized
	}

	patch := store.EvaluationPatch{Status: &status}
	if status == store.StatusCompleted {
		now := time.Now().UTC()
		completion := &now
		patch.CompletionDate = &completion
	}
	return s.Store.UpdateEvaluation(ctx, evaluationID, patch)
}

// Delete removes the evaluation together with all of its detail rows.
func (s *Service) Delete(ctx context.Context, actor access.Actor, evaluationID int64) error {
	lock := s.lockEvaluation(evaluationID)
	lock.Lock()
	defer lock.Unlock()

	evaluation, err := s.Store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return err
	}
	if !s.Access.CanDeleteEvaluation(ctx, actor, evaluation) {
		return ErrNotAuthorized
	}

	if err := s.Store.DeleteDetailsByEvaluation(ctx, evaluationID); err != nil {
		return err
	}
	return s.Store.DeleteEvaluation(ctx, evaluationID)
}

// Get returns an evaluation with its detail rows.
func (s *Service) Get(ctx context.Context, evaluationID int64) (store.Evaluation, []store.EvaluationDetail, error) {
	evaluation, err := s.Store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return store.Evaluation{}, nil, err
	}
	details, err := s.Store.ListDetailsByEvaluation(ctx, evaluationID)
	if err != nil {
		return store.Evaluation{}, nil, err
	}
	return evaluation, details, nil
}

// ListVisible returns the evaluations the actor may see: everything for
// administrators and HR managers; for department managers, evaluations of
// their department's employees plus their own authored ones.
func (s *Service) ListVisible(ctx context.Context, actor access.Actor) ([]store.Evaluation, error) {
	evaluations, err := s.Store.ListEvaluations(ctx)
	if err != nil {
		return nil, err
	}

	if s.Access.IsAdmin(ctx, actor.UserID) || s.Access.IsHRManager(ctx, actor.UserID) {
		return evaluations, nil
	}

	if !s.Access.IsDepartmentManager(ctx, actor.UserID) || actor.EmployeeID == 0 {
		return nil, nil
	}

	actorEmployee, err := s.Store.GetEmployee(ctx, actor.EmployeeID)
	if err != nil {
		return nil, err
	}
	colleagues, err := s.Store.ListEmployeesByDepartment(ctx, actorEmployee.DepartmentID)
	if err != nil {
		return nil, err
	}
	inDepartment := map[int64]bool{}
	for _, colleague := range colleagues {
		inDepartment[colleague.ID] = true
	}

	var visible []store.Evaluation
	for _, evaluation := range evaluations {
		if inDepartment[evaluation.EmployeeID] || evaluation.EvaluatorID == actor.EmployeeID {
			visible = append(visible, evaluation)
		}
	}
	return visible, nil
}
