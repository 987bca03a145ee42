package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tasky/utils"
)

type signup struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,mailformat"`
	Role  string `json:"role" validate:"omitempty,oneof=member admin"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name string
		in   signup
		want []utils.FieldError
	}{
		{name: "valid", in: signup{Name: "Ada", Email: "ada@example.com"}},
		{
			name: "missing fields",
			in:   signup{},
			want: []utils.FieldError{
				{Field: "name", Message: "name is required"},
				{Field: "email", Message: "email is required"},
			},
		},
		{
			name: "bad values",
			in:   signup{Name: "A", Email: "ada@", Role: "root"},
			want: []utils.FieldError{
				{Field: "name", Message: "name must be at least 2 characters"},
				{Field: "email", Message: "email must be a valid email"},
				{Field: "role", Message: "role must be one of: member admin"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.ValidateStruct(tt.in))
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.Empty(t, utils.ValidateVar("email", "bob@example.com", "required,mailformat"))
	assert.Equal(t,
		[]utils.FieldError{{Field: "email", Message: "email must be a valid email"}},
		utils.ValidateVar("email", "bob", "required,mailformat"),
	)
}
