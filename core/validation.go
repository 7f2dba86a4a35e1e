package core

import (
	"errors"
	"net/http"
	"strings"
)

// Validator defines an interface for request validation operations.
type Validator interface {
	// ContentType checks if the request's Content-Type matches the allowed type.
	ContentType(r *http.Request, allowedType string) (jsonResponse, error)
}

// DefaultValidator implements the Validator interface.
type DefaultValidator struct{}

func NewValidator() Validator {
	return &DefaultValidator{}
}

// ContentType checks if the request's Content-Type matches the allowed
// type. The error is always the generic "invalid content type"; the
// jsonResponse is the precomputed 415 body.
func (v *DefaultValidator) ContentType(r *http.Request, allowedType string) (jsonResponse, error) {
	errInvalidType := errors.New("invalid content type")
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return errorInvalidContentType, errInvalidType
	}

	// Content-Type may include charset or other parameters,
	// e.g. "application/json; charset=utf-8".
	mediaType := strings.Split(contentType, ";")[0]
	mediaType = strings.TrimSpace(mediaType)

	if mediaType != allowedType {
		return errorInvalidContentType, errInvalidType
	}

	return jsonResponse{}, nil
}
