package validator

import (
	"errors"
	"fmt"
	"strings"

	"medbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

const maxSlotsPerRequest = 500

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type DoctorValidator struct {
	validate *validator.Validate
}

func NewDoctorValidator() *DoctorValidator {
	return &DoctorValidator{
		validate: validator.New(),
	}
}

func (v *DoctorValidator) ValidateProfile(profile *model.DoctorProfile) error {
	if err := v.validate.Struct(profile); err != nil {
		return v.translate(err)
	}
	if profile.Name == "" && profile.Specialization == "" {
		return ValidationErrors{{Field: "Name", Message: "name or specialization is required"}}
	}
	return nil
}

func (v *DoctorValidator) ValidateName(name string) error {
	if err := v.validate.Var(name, "required,min=2,max=100"); err != nil {
		return v.translateField(err, "Name")
	}
	return nil
}

func (v *DoctorValidator) ValidateSpecialization(specialization string) error {
	if err := v.validate.Var(specialization, "required,min=2,max=100"); err != nil {
		return v.translateField(err, "Specialization")
	}
	return nil
}

// ValidateSlots checks each definition and rejects duplicate ids in one batch.
func (v *DoctorValidator) ValidateSlots(slots []model.SlotDefinition) error {
	if len(slots) == 0 {
		return ValidationErrors{{Field: "Slots", Message: "at least one slot is required"}}
	}
	if len(slots) > maxSlotsPerRequest {
		return ValidationErrors{{Field: "Slots", Message: fmt.Sprintf("at most %d slots per request", maxSlotsPerRequest)}}
	}

	seen := make(map[string]struct{}, len(slots))
	for i := range slots {
		if err := v.validate.Struct(&slots[i]); err != nil {
			return v.translate(err)
		}
		if slots[i].Start.IsZero() {
			return ValidationErrors{{Field: "Start", Message: "Start is required"}}
		}
		if slots[i].ID == "" {
			continue
		}
		if _, dup := seen[slots[i].ID]; dup {
			return ValidationErrors{{Field: "ID", Message: fmt.Sprintf("slot id %s appears more than once", slots[i].ID)}}
		}
		seen[slots[i].ID] = struct{}{}
	}
	return nil
}

func (v *DoctorValidator) translate(err error) error {
	return v.translateField(err, "")
}

// translateField renders validator errors; field overrides the name for Var checks.
func (v *DoctorValidator) translateField(err error, field string) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var out ValidationErrors
	for _, fe := range validationErrs {
		name := fe.Field()
		if field != "" {
			name = field
		}
		message := fe.Error()
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", name)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", name, fe.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", name, fe.Param())
		case "uuid":
			message = fmt.Sprintf("%s must be a valid UUID", name)
		}
		out = append(out, ValidationError{Field: name, Message: message})
	}
	return out
}
