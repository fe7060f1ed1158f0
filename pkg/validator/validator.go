package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

// 0x-prefixed hex, at most 20 bytes. Short forms are left-padded by the ledger binding.
var ledgerAddr = regexp.MustCompile(`^0x[0-9a-fA-F]{1,40}$`)

func init() {
	validate.RegisterValidation("ledger_addr", func(fl validator.FieldLevel) bool {
		return IsLedgerAddress(fl.Field().String())
	})
}

// IsLedgerAddress reports whether s can be used as an account address on the ledger.
func IsLedgerAddress(s string) bool {
	return ledgerAddr.MatchString(s)
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: err.Error()}}
		}
		for _, err := range validationErrors {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}
