// Package validation checks request payloads before anything reaches the store.
// Rules are declared as `validate` struct tags on the request types and run
// through go-playground/validator; the first failing field is reported as a
// BadRequest AppError whose message names that field.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/user/emojicringe-go/apperror"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// messages maps "<json field>.<tag>" to the client-facing error text.
var messages = map[string]string{
	"username.notblank": "Username must be at least 3 characters long",
	"username.min":      "Username must be at least 3 characters long",
	"username.max":      "Username cannot be longer than 30 characters",
	"username.username": "Username can only contain letters, numbers, underscores, and hyphens",

	"email.notblank":   "Email is required",
	"email.required":   "Email is required",
	"email.emailshape": "Please enter a valid email address",
	"email.max":        "Email cannot be longer than 254 characters",

	"password.required": "Password must be at least 6 characters long",
	"password.min":      "Password must be at least 6 characters long",
	"password.max":      "Password cannot be longer than 128 characters",

	"emojis.required": "Emojis field is required and must be a non-empty string",
	"emojis.notblank": "Emojis field is required and must be a non-empty string",
	"emojis.max":      "Emoji combination cannot be longer than 50 characters",
	"emojis.emoji":    "Emoji combination must contain at least one emoji",

	"description.required": "Description is required and must be a non-empty string",
	"description.notblank": "Description is required and must be a non-empty string",
	"description.max":      "Description cannot be longer than 200 characters",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	// Looser than the built-in "email" tag: local@domain.tld is enough.
	mustRegister(v, "emailshape", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "emoji", func(fl validator.FieldLevel) bool {
		return ContainsEmoji(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("validation: register " + tag + ": " + err.Error())
	}
}

// Struct validates a request struct (or pointer to one). It returns nil or a
// BadRequest AppError describing the first invalid field.
func Struct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.NewBadRequestError("Invalid request", err)
	}
	fe := fieldErrs[0]
	return apperror.NewValidationError(messageFor(fe.Field(), fe.Tag()), nil)
}

func messageFor(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return "Invalid value for field " + field
}
