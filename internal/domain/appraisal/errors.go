package appraisal

import "errors"

var (
	ErrNotAuthorized            = errors.New("actor is not authorized for this operation")
	ErrDuplicateEvaluation      = errors.New("an evaluation already exists for this employee and period")
	ErrScoreOutOfRange          = errors.New("score is outside the allowed range for its criterion")
	ErrNoActivePeriod           = errors.New("no evaluation period is currently active")
	ErrInvalidStatus            = errors.New("unknown evaluation status")
	ErrPeriodInUse              = errors.New("period is referenced by evaluations")
	ErrCannotDeleteActivePeriod = errors.New("the active period cannot be deleted")
	ErrCriterionInUse           = errors.New("criterion is referenced by evaluation details")
	ErrInvalidDateRange         = errors.New("period end date must be after its start date")
	ErrInvalidWeight            = errors.New("criterion weight must be positive")
	ErrInvalidMaxScore          = errors.New("criterion max score must be positive")
)
