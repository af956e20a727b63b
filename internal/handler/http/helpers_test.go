package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vasiliy-maslov/vura/internal/astro"
	"github.com/vasiliy-maslov/vura/internal/geo"
	"github.com/vasiliy-maslov/vura/internal/sign"
	"github.com/vasiliy-maslov/vura/internal/user"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &user.ValidationError{Message: "x"}, http.StatusBadRequest},
		{"bad body", fmt.Errorf("%w: eof", errBadBody), http.StatusBadRequest},
		{"short query", fmt.Errorf("geocoding: %w", geo.ErrQueryTooShort), http.StatusBadRequest},
		{"chart field", &astro.FieldError{Field: "lat"}, http.StatusBadRequest},
		{"duplicate email", user.ErrEmailExists, http.StatusBadRequest},
		{"invalid credentials", user.ErrInvalidCredentials, http.StatusUnauthorized},
		{"wrong current password", user.ErrWrongCurrentPassword, http.StatusUnauthorized},
		{"user not found", user.ErrNotFound, http.StatusNotFound},
		{"sign not found", sign.ErrNotFound, http.StatusNotFound},
		{"chart upstream", fmt.Errorf("render: %w", &astro.UpstreamError{Status: 422}), 422},
		{"geo upstream", fmt.Errorf("geocoding: %w", &geo.UpstreamError{Status: 503}), http.StatusBadGateway},
		{"missing api key", astro.ErrMissingAPIKey, http.StatusInternalServerError},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorToStatusCode(tt.err))
		})
	}
}
