package shared

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"appraisal/internal/transport/http/api"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// CheckPayload runs the struct tag validation and converts failures into
// field-level issues.
func CheckPayload(payload any) []ValidationIssue {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationIssue{{Field: "", Reason: err.Error()}}
	}

	issues := make([]ValidationIssue, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		issues = append(issues, ValidationIssue{
			Field:  strings.ToLower(fieldErr.Field()[:1]) + fieldErr.Field()[1:],
			Reason: reasonFor(fieldErr),
		})
	}
	return issues
}

// RejectInvalid writes a validation failure response when the payload does not
// pass its tags. Returns true when the request was rejected.
func RejectInvalid(w http.ResponseWriter, payload any, requestID string) bool {
	issues := CheckPayload(payload)
	if len(issues) == 0 {
		return false
	}
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
	return true
}

func reasonFor(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fieldErr.Param()
	case "max":
		return "must be at most " + fieldErr.Param()
	case "gt":
		return "must be greater than " + fieldErr.Param()
	case "gte":
		return "must be at least " + fieldErr.Param()
	default:
		return "failed " + fieldErr.Tag() + " validation"
	}
}
