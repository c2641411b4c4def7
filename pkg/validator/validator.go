package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground struct validation behind the interface
// the services use.
type Validator interface {
	Validate(interface{}) error
}

type structValidator struct {
	v *validator.Validate
}

// New builds a validator reading the binding tag, so the request
// structs carry one tag set for both gin and the services.
func New() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return &structValidator{v: v}
}

func (sv *structValidator) Validate(obj interface{}) error {
	if err := sv.v.Struct(obj); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("%s failed %s validation", first.Field(), first.Tag())
		}
		return err
	}
	return nil
}
