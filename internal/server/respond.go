package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"visionaid/pkg/types"

	"github.com/go-playground/validator/v10"
)

type envelope map[string]any

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report field errors under their wire names, not the Go names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode json response")
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Backend errors
// never reach the client verbatim; they are logged and replaced with a
// generic message.
func (s *Service) respondError(w http.ResponseWriter, err error) {
	var validation *types.ValidationError

	switch {
	case errors.As(err, &validation):
		s.respondJSON(w, http.StatusBadRequest, envelope{
			"success": false,
			"message": "Validation failed",
			"fields":  validation.Fields,
		})
	case errors.Is(err, types.ErrInvalidCredentials):
		s.respondJSON(w, http.StatusUnauthorized, envelope{
			"success": false,
			"message": "Invalid email or password",
		})
	case errors.Is(err, types.ErrUnauthenticated):
		s.respondJSON(w, http.StatusUnauthorized, envelope{
			"success": false,
			"message": "Please login first",
		})
	case errors.Is(err, types.ErrForbidden):
		s.respondJSON(w, http.StatusForbidden, envelope{
			"success": false,
			"message": "You are not allowed to do that",
		})
	case errors.Is(err, types.ErrNotFound):
		s.respondJSON(w, http.StatusNotFound, envelope{
			"success": false,
			"message": "Not found",
		})
	case errors.Is(err, types.ErrConflict):
		s.respondJSON(w, http.StatusConflict, envelope{
			"success": false,
			"message": "This request has already been taken",
		})
	default:
		s.logger.WithError(err).Error("unhandled error in request handler")
		s.respondJSON(w, http.StatusInternalServerError, envelope{
			"success": false,
			"message": "Something went wrong, please try again later",
		})
	}
}

func (s *Service) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &types.ValidationError{Fields: map[string]string{
			"body": "invalid json payload",
		}}
	}

	if err := validate.Struct(dst); err != nil {
		return validationFields(err)
	}

	return nil
}

func validationFields(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "this field is required"
		case "email":
			fields[fe.Field()] = "must be a valid email address"
		case "oneof":
			fields[fe.Field()] = "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
		default:
			fields[fe.Field()] = "invalid value"
		}
	}

	return &types.ValidationError{Fields: fields}
}
