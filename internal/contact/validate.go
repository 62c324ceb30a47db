package contact

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("email_tld", emailTLD); err != nil {
		panic(err)
	}
	return v
}

// tld is the last label of an email domain: two or more letters.
var tld = regexp.MustCompile(`\.[A-Za-z]{2,}$`)

// emailTLD narrows the email rule to plain addresses under a real top-level
// domain. Quoted local parts and single-letter TLDs are rejected.
func emailTLD(fl validator.FieldLevel) bool {
	local, domain, ok := strings.Cut(fl.Field().String(), "@")
	if !ok || strings.HasPrefix(local, `"`) {
		return false
	}
	return tld.MatchString(domain)
}

// Validate checks a submission against the contact schema. Every violated
// field is reported, in declaration order.
func Validate(in Submission) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate submission: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s characters", fe.Param())
	case "email", "email_tld":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}

// DecodeError converts a request body decoding failure into a ValidationError
// so malformed payloads get the same 400 treatment as schema violations.
func DecodeError(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &ValidationError{Fields: []FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be a string, got %s", typeErr.Value),
		}}}
	}
	return &ValidationError{Fields: []FieldError{{Field: "body", Message: "must be a JSON object"}}}
}
