package validation

import (
	"fmt"
	"regexp"
	"strings"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/google/uuid"
)

// MaxDonationAmount is the ceiling for a single payment, in USD.
const MaxDonationAmount = 10000.0

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

// ValidationBuilder collects field rules. Validate stops at the first failing
// field when built with FailFast, otherwise reports every failure.
type ValidationBuilder struct {
	fields   []*FieldValidator
	failFast bool
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]*FieldValidator, 0),
	}
}

// FailFast makes Validate return after the first failing field.
func (v *ValidationBuilder) FailFast() *ValidationBuilder {
	v.failFast = true
	return v
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		missing := false
		switch v := value.(type) {
		case string:
			missing = strings.TrimSpace(v) == ""
		case float64:
			missing = v == 0
		case int64:
			missing = v == 0
		case *string:
			missing = v == nil || strings.TrimSpace(*v) == ""
		case *float64:
			missing = v == nil || *v == 0
		case nil:
			missing = true
		}
		if missing {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeMissingField)
		}
		return nil
	})
	return fv
}

// UUID accepts the canonical 8-4-4-4-12 form with a version 1-5 nibble and
// the RFC 4122 variant.
func (fv *FieldValidator) UUID() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := value.(string)
		if !ok || !IsUUID(s) {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("invalid %s format", fv.FieldName), errors.ErrCodeInvalidUUID)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		s, ok := value.(string)
		if !ok || !IsEmail(s) {
			return errors.NewValidationFieldError(fv.FieldName, "Please enter a valid email address", errors.ErrCodeInvalidEmail)
		}
		return nil
	})
	return fv
}

// PositiveAtMost requires 0 < value <= max.
func (fv *FieldValidator) PositiveAtMost(max float64) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(float64)
		if !ok {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s must be a number", fv.FieldName), errors.ErrCodeInvalidAmount)
		}
		if v <= 0 {
			return errors.NewValidationFieldError(fv.FieldName, "Payment amount must be greater than $0", errors.ErrCodeAmountTooLow)
		}
		if v > max {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("Payment amount cannot exceed $%s", formatCeiling(max)), errors.ErrCodeAmountTooHigh)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) NonNegative() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(float64); ok && v < 0 {
			return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s cannot be negative", fv.FieldName), errors.ErrCodeInvalidAmount)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len(v) > max {
				message := fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

// EachUUID validates every element of a string slice.
func (fv *FieldValidator) EachUUID() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		ids, _ := value.([]string)
		for _, id := range ids {
			if !IsUUID(id) {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("invalid id %q in %s", id, fv.FieldName), errors.ErrCodeInvalidUUID)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			appErr := validator(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(errors.ValidationErrors); ok {
				validationErrors = append(validationErrors, details.Errors...)
			} else {
				validationErrors = append(validationErrors, errors.ValidationError{
					Field:   field.FieldName,
					Message: appErr.Message,
					Code:    string(appErr.Code),
				})
			}
			// one failure per field
			break
		}
		if v.failFast && len(validationErrors) > 0 {
			break
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewInvalidRequestError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return u.Variant() == uuid.RFC4122 && u.Version() >= 1 && u.Version() <= 5
}

func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func formatCeiling(max float64) string {
	whole := fmt.Sprintf("%.0f", max)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
