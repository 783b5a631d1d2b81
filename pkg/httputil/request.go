package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/edgechat/edgechat/pkg/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseJSON decodes the request body into dest and runs struct validation.
// Failures are classified as validation errors so the translator emits 400.
func ParseJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
	}
	if err := validate.Struct(dest); err != nil {
		return apperr.Wrap(apperr.KindValidation, "Invalid request body: "+validationDetail(err), err)
	}
	return nil
}

// validationDetail renders the first failed field check in a form safe to
// show to clients (field + rule, never values).
func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if ok := isValidationErrors(err, &fieldErrs); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fe.Field() + " failed " + fe.Tag() + " validation"
	}
	return "validation failed"
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}
