package employee

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"employee-directory/internal/apperror"
	"employee-directory/internal/models"
)

const (
	salaryMaxDigits     = 10
	salaryDecimalPlaces = 2

	msgRequired    = "This field is required."
	msgEmail       = "Enter a valid email address."
	msgEmailTaken  = "employee with this email already exists."
	msgDateFormat  = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgInvalidNum  = "A valid number is required."
	msgChoice      = "%q is not a valid choice."
	msgMaxLength   = "Ensure this field has no more than %s characters."
	msgMaxDigits   = "Ensure that there are no more than %d digits in total."
	msgMaxDecimals = "Ensure that there are no more than %d decimal places."
	msgMaxWhole    = "Ensure that there are no more than %d digits before the decimal point."
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return models.Department(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// validateInput returns nil when in satisfies every field constraint.
func validateInput(in CreateInput) apperror.FieldErrors {
	fields := apperror.FieldErrors{}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			fields.Add("non_field_errors", err.Error())
			return fields
		}
		for _, fe := range verrs {
			fields.Add(fe.Field(), fieldMessage(fe))
		}
	}

	if in.Salary != nil {
		if msg := salaryError(*in.Salary); msg != "" {
			fields.Add("salary", msg)
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "max":
		return fmt.Sprintf(msgMaxLength, fe.Param())
	case "email":
		return msgEmail
	case "department":
		return fmtChoice(fmt.Sprint(fe.Value()))
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

func fmtChoice(value string) string {
	return fmt.Sprintf(msgChoice, value)
}

// salaryError applies numeric(10,2) precision rules to d as written, so
// "100.50" counts five digits and two decimal places. Only the first
// violated rule is reported.
func salaryError(d decimal.Decimal) string {
	coefficient := new(big.Int).Abs(d.Coefficient()).String()
	exponent := int(d.Exponent())

	var digits, decimals int
	if exponent >= 0 {
		digits = len(coefficient) + exponent
	} else {
		decimals = -exponent
		digits = len(coefficient)
		if decimals > digits {
			digits = decimals
		}
	}
	whole := digits - decimals

	switch {
	case digits > salaryMaxDigits:
		return fmt.Sprintf(msgMaxDigits, salaryMaxDigits)
	case decimals > salaryDecimalPlaces:
		return fmt.Sprintf(msgMaxDecimals, salaryDecimalPlaces)
	case whole > salaryMaxDigits-salaryDecimalPlaces:
		return fmt.Sprintf(msgMaxWhole, salaryMaxDigits-salaryDecimalPlaces)
	}
	return ""
}
