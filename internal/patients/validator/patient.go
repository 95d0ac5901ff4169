package validator

import (
	"errors"
	"fmt"

	"medbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type PatientValidator struct {
	validate *validator.Validate
}

func NewPatientValidator() *PatientValidator {
	return &PatientValidator{
		validate: validator.New(),
	}
}

func (v *PatientValidator) ValidateProfile(profile *model.PatientProfile) error {
	return v.first(v.validate.Struct(profile), "")
}

func (v *PatientValidator) ValidateName(name string) error {
	return v.first(v.validate.Var(name, "required,min=2,max=100"), "Name")
}

// first reports only the first failed rule; patient payloads have two fields.
func (v *PatientValidator) first(err error, field string) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}

	fe := validationErrs[0]
	name := fe.Field()
	if field != "" {
		name = field
	}
	switch fe.Tag() {
	case "required":
		return ValidationError{Field: name, Message: "is required"}
	case "min", "max":
		return ValidationError{Field: name, Message: fmt.Sprintf("length must satisfy %s=%s", fe.Tag(), fe.Param())}
	case "uuid":
		return ValidationError{Field: name, Message: "must be a valid UUID"}
	default:
		return ValidationError{Field: name, Message: fe.Error()}
	}
}
