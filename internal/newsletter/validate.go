package newsletter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidatePublishRequest rejects requests with a blank subject or
// description or an empty image. The returned error is a *ValidationError.
func ValidatePublishRequest(req PublishRequest) error {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Description = strings.TrimSpace(req.Description)

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Details: []string{err.Error()}}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, describe(fe))
	}
	return &ValidationError{Details: details}
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	if fe.StructNamespace() == "PublishRequest.Image.Data" {
		field = "image"
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
