package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	BaseURL  string `env:"ADMIN_API_BASE_URL" validate:"omitempty,url"`
	Backend  string `env:"SESSION_BACKEND" validate:"oneof=file memory redis"`
	Rate     int    `validate:"gte=0,lte=1000"`
}

func valid() testStruct {
	return testStruct{Email: "ops@example.com", Password: "secret1", Backend: "file"}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(valid()))
}

func TestValidate_EmptyURLAllowed(t *testing.T) {
	s := valid()
	s.BaseURL = ""
	assert.NoError(t, Validate(s))
}

func TestValidate_UsesJSONAndEnvNames(t *testing.T) {
	s := valid()
	s.Email = ""
	s.BaseURL = "not a url"

	fields := fieldsOf(t, Validate(s))
	assert.Equal(t, "is required", fields["email"])
	assert.Equal(t, "must be a valid URL", fields["ADMIN_API_BASE_URL"])
}

func TestValidate_Messages(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*testStruct)
		field string
		want  string
	}{
		{"email", func(s *testStruct) { s.Email = "nope" }, "email", "must be a valid email address"},
		{"min", func(s *testStruct) { s.Password = "abc" }, "password", "must be at least 6 characters"},
		{"oneof", func(s *testStruct) { s.Backend = "s3" }, "SESSION_BACKEND", "must be one of: file memory redis"},
		{"lte", func(s *testStruct) { s.Rate = 5000 }, "Rate", "must be less than or equal to 1000"},
		{"gte", func(s *testStruct) { s.Rate = -1 }, "Rate", "must be greater than or equal to 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mod(&s)
			fields := fieldsOf(t, Validate(s))
			assert.Equal(t, tt.want, fields[tt.field])
		})
	}
}

func TestValidationError_ErrorString(t *testing.T) {
	s := valid()
	s.Email = ""
	err := Validate(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'email' is required")
}
