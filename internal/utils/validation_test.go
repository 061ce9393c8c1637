package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type registrationPayload struct {
	Email string `validate:"required,email"`
	Role  string `validate:"required,oneof=patient doctor"`
}

func TestValidateAcceptsValidStruct(t *testing.T) {
	err := Validate(registrationPayload{Email: "pat@example.com", Role: "patient"})
	assert.NoError(t, err)
}

func TestValidateReportsAllFailingFields(t *testing.T) {
	err := Validate(registrationPayload{Email: "not-an-email", Role: "nurse"})
	assert.Error(t, err)

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "Email")
	assert.Contains(t, msg, "Role")
}

func TestValidateReusesSharedInstance(t *testing.T) {
	// Repeated calls must run against the same cached validator so struct
	// metadata is parsed once, not per request.
	first := validate
	for i := 0; i < 3; i++ {
		assert.NoError(t, Validate(registrationPayload{Email: "doc@example.com", Role: "doctor"}))
	}
	assert.Same(t, first, validate)
}
