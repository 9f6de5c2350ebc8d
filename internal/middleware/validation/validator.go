package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// EvaluateParams are the inputs of GET /evaluate/:articleId.
type EvaluateParams struct {
	ArticleID string `validate:"required"`
	User      string `validate:"required"`
}

// HistoryParams are the inputs of GET /history/:user.
type HistoryParams struct {
	User string `validate:"required"`
}

// Struct validates v and names the first failing field in the error.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%s is invalid (%s)", strings.ToLower(fe.Field()), fe.Tag())
	}
	return err
}
