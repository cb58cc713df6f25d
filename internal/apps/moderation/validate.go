package moderation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Text embedded inside a marker tag cannot close or open a tag itself.
	validate.RegisterValidation("nomarker", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "[]")
	})
}

type approvePayload struct {
	Message string `validate:"max=500,nomarker"`
}

type rejectPayload struct {
	Reason  string `validate:"required,max=100"`
	Message string `validate:"required,max=2000"`
}

type flagPayload struct {
	Severity string `validate:"required,oneof=low medium high critical"`
	Reason   string `validate:"required,max=500,nomarker"`
}

type clarificationPayload struct {
	Message string `validate:"required,max=2000"`
}

type escalatePayload struct {
	Reason string `validate:"required,max=500,nomarker"`
}

func validatePayload(p interface{}) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("", err.Error())
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return invalid(field, "is required")
	case "oneof":
		return invalid(field, "must be one of: "+strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return invalid(field, fmt.Sprintf("must be at most %s characters", fe.Param()))
	case "nomarker":
		return invalid(field, "must not contain square brackets")
	}
	return invalid(field, "is invalid")
}
