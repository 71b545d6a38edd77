// Package web defines common components for a web application.
package web

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	AccessToken          string `json:"access_token,omitempty"`
	AccessTokenExpiresAt string `json:"access_token_expires_at,omitempty"`
	Data                 any    `json:"data,omitempty"`
	Error                string `json:"error,omitempty"`
}

// Error wraps a given err into json friendly response.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns a human readable message for failed binding validations.
func GetErrorMsg(ve validator.ValidationErrors) string {
	msgs := make([]string, 0, len(ve))

	for _, fe := range ve {
		msgs = append(msgs, fe.Field()+tagMsg(fe))
	}

	return strings.Join(msgs, "; ")
}

func tagMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "alphanum":
		return " must contain only letters and numbers"
	case "min":
		return fmt.Sprintf(" must be at least %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf(" must be one of [%s]", fe.Param())
	case "uuid":
		return " must be a valid UUID"
	}

	return " is invalid"
}
