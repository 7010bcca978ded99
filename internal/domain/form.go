package domain

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form fields are validated before any database access. The rules:
//
//	username: 3-32 chars, first char ASCII alphanumeric, rest [A-Za-z0-9_]
//	prompt:   3-64 chars
//
// Suggestion text is deliberately unvalidated and unbounded.

type PollForm struct {
	Username string `form:"username" validate:"required,min=3,max=32,username_start,username_chars"`
	Prompt   string `form:"prompt" validate:"required,min=3,max=64"`
}

type JoinForm struct {
	Username string `form:"username" validate:"required,min=3,max=32,username_start,username_chars"`
}

type SuggestionForm struct {
	Suggestion string `form:"suggestion"`
}

// FieldError is a single user-visible validation failure, rendered in
// flash messages as "<field>: <message>".
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

const (
	msgLength            = "length is invalid."
	msgFirstChar         = "first character must be a letter or a number"
	msgDisallowedCharset = "string contains disallowed characters"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields under their form names ("username"), not the Go
	// struct field names ("Username").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// First character must be a letter or a number.
	must(v.RegisterValidation("username_start", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		return isASCIIAlphanumeric(rune(s[0]))
	}))

	// Every character after the first must be [A-Za-z0-9_].
	must(v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for i, c := range s {
			if i == 0 {
				continue
			}
			if !isASCIIAlphanumeric(c) && c != '_' {
				return false
			}
		}
		return true
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func isASCIIAlphanumeric(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Validate runs the struct's rules and returns one FieldError per invalid
// field. A nil return means the form is valid.
func Validate(form any) []FieldError {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "form", Message: err.Error()}}
	}

	var out []FieldError
	seen := make(map[string]bool)
	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		out = append(out, FieldError{Field: fe.Field(), Message: messageFor(fe.Tag())})
	}
	return out
}

func messageFor(tag string) string {
	switch tag {
	case "required", "min", "max":
		return msgLength
	case "username_start":
		return msgFirstChar
	case "username_chars":
		return msgDisallowedCharset
	default:
		return "is invalid."
	}
}
