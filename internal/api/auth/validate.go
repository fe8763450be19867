package auth

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const WeakPasswordMessage = "Password must contain at least one uppercase letter, one lowercase letter, and one number"

// NewValidator returns a validator with the strongpassword rule registered and
// field names reported by their json tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return v
}

func StrongPassword(p string) bool {
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// ValidationMessage turns the first validation failure into a sentence.
func ValidationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "Invalid request"
	}
	fe := ve[0]
	switch {
	case fe.Tag() == "strongpassword":
		return WeakPasswordMessage
	case fe.Tag() == "eqfield":
		return "Passwords do not match"
	case fe.Tag() == "email":
		return "Please enter a valid email address"
	case fe.Tag() == "min" && strings.Contains(fe.Field(), "password"):
		return "Password must be at least 8 characters"
	case fe.Tag() == "required":
		return fe.Field() + " is required"
	}
	return "Invalid " + fe.Field()
}

type signUpInput struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,strongpassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type signInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type emailInput struct {
	Email string `json:"email" validate:"required,email"`
}

type resetInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,strongpassword"`
}

type changePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"required,min=8,strongpassword"`
}
