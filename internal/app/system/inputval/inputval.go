// Package inputval validates request payloads with struct tags.
//
// Fields carry a `validate` tag (go-playground/validator rules plus the
// custom rules registered here) and a `label` tag used in messages:
//
//	type centerInput struct {
//	    Name string `validate:"required,max=200" label:"Name"`
//	}
package inputval

import (
	"fmt"
	"net/mail"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one failed rule, with a message ready to show to a client.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result collects the errors from one Validate call.
type Result struct {
	Errors []FieldError `json:"errors,omitempty"`
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("strictemail", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		})
	})
	return v
}

// Validate runs the struct's rules. A non-struct argument yields a single
// generic error.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: "Invalid input."})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "email", "strictemail":
		return "A valid email address is required."
	case "objectid":
		return label + " must be a valid ID."
	case "phone":
		return label + " must be a valid phone number."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return label + " is invalid."
}

/* -------------------------------------------------------------------------- */
/* standalone checks                                                           */
/* -------------------------------------------------------------------------- */

// IsValidEmail accepts a bare addr-spec (no display name). Single-label
// domains such as "localhost" are allowed.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	for _, part := range []string{local, domain} {
		if part == "" || strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

// IsValidObjectID reports whether s (trimmed) is a 24-character hex ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.ToLower(strings.TrimSpace(s)))
	return err == nil
}

var phoneRe = regexp.MustCompile(`^\+?[0-9(][0-9 ()./+-]{4,22}[0-9]$`)

// IsValidPhone accepts digits with common separators, an optional leading
// "+" and a parenthesized area or country code. At least five digits are
// required. Empty input is not valid; mark optional fields omitempty.
func IsValidPhone(s string) bool {
	s = strings.TrimSpace(s)
	if !phoneRe.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 5
}
