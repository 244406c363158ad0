// Package request decodes and validates JSON request bodies.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fkhayef/tripsplit/pkg/apperror"
)

// ErrInvalidBody is returned for bodies that are not valid JSON or fail validation
var ErrInvalidBody = apperror.New(apperror.KindValidation, "INVALID_REQUEST", "invalid request body")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode reads the JSON body of r into dst and runs the struct's validate tags.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrInvalidBody.Wrap(err)
	}
	return Validate(dst)
}

// Validate runs the validate tags of a struct.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
			}
			return ErrInvalidBody.WithMessage("invalid request: %s", strings.Join(fields, ", "))
		}
		return ErrInvalidBody.Wrap(err)
	}
	return nil
}

// IDParam parses a positive int64 chi URL parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.New(apperror.KindValidation, "INVALID_ID", fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}
