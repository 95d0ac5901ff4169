package validator

import (
	"errors"
	"testing"

	"medbook/pkg/model"
)

func TestValidateProfile(t *testing.T) {
	v := NewPatientValidator()

	tests := []struct {
		name      string
		profile   model.PatientProfile
		wantField string
	}{
		{name: "valid", profile: model.PatientProfile{Name: "Jane Doe"}},
		{name: "valid with id", profile: model.PatientProfile{ID: "6f1c2a9e-6a3b-4f0e-8d4c-1b2a3c4d5e6f", Name: "Jane Doe"}},
		{name: "missing name", profile: model.PatientProfile{}, wantField: "Name"},
		{name: "short name", profile: model.PatientProfile{Name: "J"}, wantField: "Name"},
		{name: "bad id", profile: model.PatientProfile{ID: "patient-1", Name: "Jane Doe"}, wantField: "ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateProfile(&tt.profile)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, verr.Field)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	v := NewPatientValidator()
	if err := v.ValidateName("John"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateName(""); err == nil {
		t.Error("expected empty name to be rejected")
	}
}
