package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Type string `json:"type" validate:"required"`
	URL  string `json:"url"  validate:"required,url"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		requestBody string
		wantErr     error
		errContains string
	}{
		{
			name:        "valid json",
			requestBody: `{"type": "document-content", "url": "http://example.com/"}`,
		},
		{
			name:        "invalid json",
			requestBody: `{"type": "document-content",}`,
			errContains: "invalid character",
		},
		{
			name:        "empty body",
			requestBody: "",
			wantErr:     ErrEmptyBody,
		},
		{
			name:        "unknown field",
			requestBody: `{"type": "x", "colour": "blue"}`,
			errContains: "unknown field",
		},
		{
			name:        "trailing data",
			requestBody: `{"type": "x"} {"type": "y"}`,
			errContains: "unexpected data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.requestBody))
			w := httptest.NewRecorder()

			var target sampleRequest
			err := DecodeJSON(w, req, &target)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errContains != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			default:
				require.NoError(t, err)
				assert.Equal(t, "document-content", target.Type)
				assert.Equal(t, "http://example.com/", target.URL)
			}
		})
	}
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return assert.AnError
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(&sampleRequest{Type: "x", URL: "http://example.com/"}))
	})

	t.Run("missing required field", func(t *testing.T) {
		err := ValidateRequest(&sampleRequest{URL: "http://example.com/"})
		require.Error(t, err)

		var validationErrs validator.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		assert.Equal(t, "Type", validationErrs[0].Field())
		assert.Equal(t, "required", validationErrs[0].Tag())
	})

	t.Run("invalid url", func(t *testing.T) {
		err := ValidateRequest(&sampleRequest{Type: "x", URL: "not a url"})
		assert.Error(t, err)
	})

	t.Run("custom validator", func(t *testing.T) {
		assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
		assert.ErrorIs(t, ValidateRequest(selfValidating{ok: false}), assert.AnError)
	})
}
