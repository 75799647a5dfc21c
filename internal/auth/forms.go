package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type signInForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type signUpForm struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type emailForm struct {
	Email string `validate:"required,email"`
}

// FormError carries one user-facing message per invalid field.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range []string{"name", "email", "password"} {
		if msg, ok := e.Fields[field]; ok {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "; ")
}

func checkForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := &FormError{Fields: make(map[string]string)}
	for _, v := range verrs {
		field := strings.ToLower(v.Field())
		fe.Fields[field] = fieldMessage(field, v.Tag(), v.Param())
	}
	return fe
}

func fieldMessage(field, tag, param string) string {
	switch {
	case field == "email" && tag == "email":
		return "Please enter a valid email"
	case field == "password" && tag == "min":
		return fmt.Sprintf("Password must be at least %s characters", param)
	case field == "name":
		return "Full name is required"
	case field == "email":
		return "Email is required"
	case field == "password":
		return "Password is required"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
