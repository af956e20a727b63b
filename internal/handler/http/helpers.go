package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/vura/internal/astro"
	"github.com/vasiliy-maslov/vura/internal/geo"
	"github.com/vasiliy-maslov/vura/internal/sign"
	"github.com/vasiliy-maslov/vura/internal/user"
)

const maxBodyBytes = 1 << 20

var errBadBody = errors.New("invalid request body")

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// respondWithError sends {"error": message}.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Erro no servidor"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// decodeJSON reads at most maxBodyBytes into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required", "required_with":
			details[fe.Field()] = "campo obrigatório"
		case "email":
			details[fe.Field()] = "email inválido"
		default:
			details[fe.Field()] = fmt.Sprintf("falhou na regra '%s'", fe.Tag())
		}
	}
	return details
}

func mapErrorToStatusCode(err error) int {
	var fieldErr *astro.FieldError
	var chartErr *astro.UpstreamError
	var geoErr *geo.UpstreamError

	switch {
	case errors.Is(err, user.ErrValidation), errors.Is(err, errBadBody),
		errors.Is(err, geo.ErrQueryTooShort), errors.As(err, &fieldErr):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, user.ErrNotFound), errors.Is(err, sign.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrEmailExists):
		return http.StatusBadRequest
	case errors.As(err, &chartErr):
		return chartErr.Status
	case errors.As(err, &geoErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
