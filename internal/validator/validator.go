package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/adaptive-testing/quizclient/internal/errors"
	"github.com/adaptive-testing/quizclient/internal/models"
)

// Validator wraps struct-tag validation with the custom domain tags used
// across the client and the reference server.
type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)
	return &Validator{structValidator: structValidator}
}

// ValidateStruct validates struct tags and returns the raw validator error.
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures to the shared
// ValidationErrors type with user-friendly messages.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("difficulty", validateDifficulty)
	validate.RegisterValidation("selection_mode", validateSelectionMode)
	validate.RegisterValidation("attempt_status", validateAttemptStatus)

	// Report json field names in error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateDifficulty(fl validator.FieldLevel) bool {
	switch models.Difficulty(fl.Field().String()) {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return true
	}
	return false
}

func validateSelectionMode(fl validator.FieldLevel) bool {
	switch models.SelectionMode(fl.Field().String()) {
	case models.SelectionBank, models.SelectionFixed:
		return true
	}
	return false
}

func validateAttemptStatus(fl validator.FieldLevel) bool {
	switch models.AttemptStatus(fl.Field().String()) {
	case models.AttemptInProgress, models.AttemptCompleted:
		return true
	}
	return false
}
