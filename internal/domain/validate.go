package domain

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. validator.Validate caches
// struct metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateResearchResult checks that a normalized result satisfies the
// canonical schema. Adapters call this before returning a record; a failure
// means the provider payload could not be normalized.
func ValidateResearchResult(r *ResearchResult) error {
	if err := validate.Struct(r); err != nil {
		return firstValidationError(err)
	}
	return nil
}

// ValidateExpertContent checks that a normalized expert-content item
// satisfies the canonical schema.
func ValidateExpertContent(c *ExpertContent) error {
	if err := validate.Struct(c); err != nil {
		return firstValidationError(err)
	}
	return nil
}

// firstValidationError converts a validator error into the domain's
// ValidationError, reporting the first failing field.
func firstValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return NewValidationError(verrs[0].Field(), "failed on '"+verrs[0].Tag()+"' constraint")
	}
	return NewValidationError("struct", err.Error())
}
