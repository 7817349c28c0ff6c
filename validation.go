package tasks

import (
	goerrors "errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/nyaruka/phonenumbers"
)

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field-to-message map the views can render next to each input.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if goerrors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["validation"] = err.Error()
	return out
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return goerrors.New("values must match")
		}
		return nil
	}
}

// ValidatePhoneNumber parses the value as a phone number in the given
// default region. Empty values pass; pair with validation.Required when the
// field is mandatory.
func ValidatePhoneNumber(region string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}

		num, err := phonenumbers.Parse(s, region)
		if err != nil {
			return goerrors.New("must be a valid phone number")
		}

		if !phonenumbers.IsValidNumber(num) {
			return goerrors.New("must be a valid phone number")
		}

		return nil
	}
}
