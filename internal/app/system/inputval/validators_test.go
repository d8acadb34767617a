package inputval

import "testing"

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{"000000000000000000000000", true},
		{"FFFFFFFFFFFFFFFFFFFFFFFF", true}, // uppercase hex is valid
		{"  507f1f77bcf86cd799439011  ", true},

		{"", false},
		{"   ", false},
		{"507f1f77bcf86cd79943901", false},   // too short (23 chars)
		{"507f1f77bcf86cd7994390111", false}, // too long (25 chars)
		{"507f1f77bcf86cd79943901g", false},  // invalid hex char
		{"not-a-valid-id", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := IsValidObjectID(tt.id); got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name  string `validate:"required,max=10" label:"Full name"`
		Email string `validate:"required,strictemail" label:"Email address"`
		Phone string `validate:"omitempty,phone" label:"Phone"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
	}{
		{
			name:  "valid input",
			input: TestInput{Name: "John", Email: "john@example.com"},
		},
		{
			name:       "missing name",
			input:      TestInput{Name: "", Email: "john@example.com"},
			wantErrors: true,
			wantFirst:  "Full name is required.",
		},
		{
			name:       "name too long",
			input:      TestInput{Name: "VeryLongNameThatExceedsLimit", Email: "john@example.com"},
			wantErrors: true,
			wantFirst:  "Full name must be at most 10 characters.",
		},
		{
			name:       "invalid email",
			input:      TestInput{Name: "John", Email: "not-an-email"},
			wantErrors: true,
			wantFirst:  "A valid email address is required.",
		},
		{
			name:  "parenthesized area code",
			input: TestInput{Name: "John", Email: "john@example.com", Phone: "(011) 123-4567"},
		},
		{
			name:       "invalid phone",
			input:      TestInput{Name: "John", Email: "john@example.com", Phone: "call me"},
			wantErrors: true,
			wantFirst:  "Phone must be a valid phone number.",
		},
		{
			name:       "missing both",
			input:      TestInput{},
			wantErrors: true,
			wantFirst:  "Full name is required.", // First error
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v (%s)", result.HasErrors(), tt.wantErrors, result.All())
			}
			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestValidate_ObjectID(t *testing.T) {
	type IDInput struct {
		ID *string `validate:"omitempty,objectid" label:"Staff ID"`
	}

	good := "507f1f77bcf86cd799439011"
	bad := "invalid-id"

	if r := Validate(IDInput{ID: &good}); r.HasErrors() {
		t.Errorf("valid ID has errors: %v", r.Errors)
	}
	if r := Validate(IDInput{}); r.HasErrors() {
		t.Errorf("nil ID should be allowed: %v", r.Errors)
	}
	r := Validate(IDInput{ID: &bad})
	if r.First() != "Staff ID must be a valid ID." {
		t.Errorf("First() = %q", r.First())
	}
	if r.Errors[0].Field != "Staff ID" {
		t.Errorf("Field = %q, want label", r.Errors[0].Field)
	}
}

func TestResult_All(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &Result{}
		if r.All() != "" {
			t.Errorf("All() = %q, want empty", r.All())
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{
				{Message: "Error 1"},
				{Message: "Error 2"},
			},
		}
		want := "Error 1; Error 2"
		if r.All() != want {
			t.Errorf("All() = %q, want %q", r.All(), want)
		}
	})
}

func TestResult_First(t *testing.T) {
	r := &Result{}
	if r.First() != "" {
		t.Errorf("First() = %q, want empty", r.First())
	}
}
