package config

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	minAccountIDLen = 2
	maxAccountIDLen = 64
)

// accountIDPattern is the protocol's account id grammar: lowercase alphanumeric
// parts separated by '.', with single '-' or '_' allowed inside a part.
var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[\-_])*[a-z\d]+\.)*([a-z\d]+[\-_])*[a-z\d]+$`)

// ValidateAccountID checks id against the account id rules.
func ValidateAccountID(id string) error {
	if len(id) < minAccountIDLen || len(id) > maxAccountIDLen {
		return fmt.Errorf("account id %q must be between %d and %d characters", id, minAccountIDLen, maxAccountIDLen)
	}
	if !accountIDPattern.MatchString(id) {
		return fmt.Errorf("account id %q is not a valid account id", id)
	}
	return nil
}

// NewValidator returns a validator with the "account_id" tag registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("account_id", func(fl validator.FieldLevel) bool {
		return ValidateAccountID(fl.Field().String()) == nil
	})
	return v
}
