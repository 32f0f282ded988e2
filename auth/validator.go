package auth

import (
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"

	"vitatrack/errors"
)

var validate = validator.New()

type RegisterRequest struct {
	Name     string  `validate:"required,max=100"`
	Email    string  `validate:"required,email"`
	Password string  `validate:"required,min=12,max=72"`
	Weight   float64 `validate:"gte=0,lte=500"`
	Height   float64 `validate:"gte=0,lte=300"`
}

// ProfileUpdate carries the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name   *string  `validate:"omitempty,min=1,max=100"`
	Weight *float64 `validate:"omitempty,gte=0,lte=500"`
	Height *float64 `validate:"omitempty,gte=0,lte=300"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func ValidateProfileUpdate(req ProfileUpdate) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
