package astro

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrMissingField = errors.New("missing required field")

// FieldError names the first required field absent from a ChartRequest.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "missing required field: " + e.Field
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

// ChartRequest is the birth data shared by the SVG and natal-data calls.
// Numeric fields are pointers so that a zero hour or longitude counts as present.
// Field order matters: validation reports the first missing field in this order.
type ChartRequest struct {
	Name   string   `json:"name" validate:"required"`
	Year   *int     `json:"year" validate:"required"`
	Month  *int     `json:"month" validate:"required"`
	Day    *int     `json:"day" validate:"required"`
	Hour   *int     `json:"hour" validate:"required"`
	Minute *int     `json:"minute" validate:"required"`
	City   string   `json:"city" validate:"required"`
	Lat    *float64 `json:"lat" validate:"required"`
	Lng    *float64 `json:"lng" validate:"required"`
	TZStr  string   `json:"tz_str" validate:"required"`

	// Optional rendering options, honoured by the SVG call only.
	ZodiacType  string `json:"zodiac_type,omitempty"`
	HouseSystem string `json:"house_system,omitempty"`
	ThemeType   string `json:"theme_type,omitempty"`
	Size        int    `json:"size,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate returns a *FieldError for the first missing required field.
func (r *ChartRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field()}
	}
	return err
}
