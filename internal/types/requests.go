//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json/form names so error messages match what clients sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// CreateJobRequest is the body of POST /api/jobs.
type CreateJobRequest struct {
	Title       string `json:"title" validate:"required"`
	Department  string `json:"department" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Type        string `json:"type" validate:"required"`
	Description string `json:"description,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (r *CreateJobRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Department = strings.TrimSpace(r.Department)
	r.Location = strings.TrimSpace(r.Location)
	r.Type = strings.TrimSpace(r.Type)
	r.Description = strings.TrimSpace(r.Description)
}

// Validate normalizes the request and checks required fields.
func (r *CreateJobRequest) Validate() error {
	r.Normalize()
	return ValidationErrorFrom(validate.Struct(r))
}

// ApplyRequest holds the text fields of the POST /api/apply multipart form.
type ApplyRequest struct {
	JobID int64  `form:"job_id" validate:"required,gt=0"`
	Name  string `form:"name" validate:"required"`
	Email string `form:"email" validate:"required"`
}

// Validate normalizes the request and checks required fields.
// Email format is deliberately not checked.
func (r *ApplyRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	return ValidationErrorFrom(validate.Struct(r))
}

// ValidationErrorFrom converts validator output into a *ValidationError
// describing the first failing field. nil stays nil.
func ValidationErrorFrom(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := fmt.Sprintf("%s is required", fe.Field())
		if fe.Tag() != "required" {
			msg = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		}
		return &ValidationError{Field: fe.Field(), Message: msg}
	}
	return &ValidationError{Message: err.Error()}
}
