//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJobRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		request   CreateJobRequest
		wantField string
	}{
		{
			name: "valid request",
			request: CreateJobRequest{
				Title: "Backend Engineer", Department: "Eng", Location: "Remote", Type: "Full-time", Description: "desc",
			},
		},
		{
			name: "valid without description",
			request: CreateJobRequest{
				Title: "Backend Engineer", Department: "Eng", Location: "Remote", Type: "Full-time",
			},
		},
		{
			name:      "missing title",
			request:   CreateJobRequest{Department: "Eng", Location: "Remote", Type: "Full-time"},
			wantField: "title",
		},
		{
			name:      "whitespace department",
			request:   CreateJobRequest{Title: "X", Department: "   ", Location: "Remote", Type: "Full-time"},
			wantField: "department",
		},
		{
			name:      "missing location",
			request:   CreateJobRequest{Title: "X", Department: "Eng", Type: "Full-time"},
			wantField: "location",
		},
		{
			name:      "missing type",
			request:   CreateJobRequest{Title: "X", Department: "Eng", Location: "Remote"},
			wantField: "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Equal(t, tt.wantField+" is required", ve.Message)
		})
	}
}

func TestCreateJobRequest_NormalizeTrims(t *testing.T) {
	req := CreateJobRequest{Title: "  Designer ", Department: "Design\n", Location: " NYC", Type: "Contract ", Description: " hi "}
	req.Normalize()

	assert.Equal(t, "Designer", req.Title)
	assert.Equal(t, "Design", req.Department)
	assert.Equal(t, "NYC", req.Location)
	assert.Equal(t, "Contract", req.Type)
	assert.Equal(t, "hi", req.Description)
}

func TestApplyRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		request   ApplyRequest
		wantField string
	}{
		{"valid", ApplyRequest{JobID: 1, Name: "Ada Lovelace", Email: "ada@example.com"}, ""},
		{"email format is not checked", ApplyRequest{JobID: 1, Name: "Ada", Email: "not-an-email"}, ""},
		{"missing job id", ApplyRequest{Name: "Ada", Email: "ada@example.com"}, "job_id"},
		{"negative job id", ApplyRequest{JobID: -4, Name: "Ada", Email: "ada@example.com"}, "job_id"},
		{"missing name", ApplyRequest{JobID: 1, Email: "ada@example.com"}, "name"},
		{"blank email", ApplyRequest{JobID: 1, Name: "Ada", Email: "  "}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestValidationErrorFrom_Nil(t *testing.T) {
	assert.NoError(t, ValidationErrorFrom(nil))
}
