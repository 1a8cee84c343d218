package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/bookhaven/bookhaven/internal/errors"
	"github.com/bookhaven/bookhaven/internal/validation"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Name     string `json:"name" validate:"required,max=100"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := registerRequest{
		Email:    "reader@example.com",
		Password: "Passw0rd",
		Name:     "Test Reader",
	}

	assert.NoError(t, v.Validate(req))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       registerRequest
		wantField string
	}{
		{
			name: "missing required field",
			req: registerRequest{
				Email:    "reader@example.com",
				Password: "Passw0rd",
				Name:     "",
			},
			wantField: "name",
		},
		{
			name: "invalid email",
			req: registerRequest{
				Email:    "not-an-email",
				Password: "Passw0rd",
				Name:     "Test",
			},
			wantField: "email",
		},
		{
			name: "weak password",
			req: registerRequest{
				Email:    "reader@example.com",
				Password: "alllowercase1",
				Name:     "Test",
			},
			wantField: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

			var domainErr *domainerrors.Error
			assert.True(t, domainerrors.As(err, &domainErr))
			fields, ok := domainErr.Details.(map[string]string)
			assert.True(t, ok)
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestPasswordAcceptable(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Passw0rd", true},
		{"Sh0rt", false},
		{"nouppercase1", false},
		{"NOLOWERCASE1", false},
		{"NoDigitsHere", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, validation.PasswordAcceptable(tt.password), tt.password)
	}
}
