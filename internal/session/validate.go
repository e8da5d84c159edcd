package session

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"farmgate/internal/api"
	"farmgate/internal/types"
)

// Client-side form checks. These block submission before any network call;
// each failed rule gets its own message.

// ValidateLogin checks the login form inputs.
func ValidateLogin(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return errors.New("password is required")
	}
	return nil
}

// ValidateRegistration checks the registration form inputs.
func ValidateRegistration(req api.RegisterRequest, passwordConfirm string) error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("name is required")
	}
	if req.Role != types.RoleFarmer && req.Role != types.RoleCustomer {
		return fmt.Errorf("role must be %s or %s", types.RoleFarmer, types.RoleCustomer)
	}
	if err := ValidatePassword(req.Password); err != nil {
		return err
	}
	if req.Password != passwordConfirm {
		return errors.New("passwords do not match")
	}
	return nil
}

// ValidatePassword enforces the password strength rule: at least 8
// characters containing a letter and a digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return errors.New("password must contain both letters and digits")
	}
	return nil
}

// ValidateAddress checks the address form inputs.
func ValidateAddress(upd api.AddressUpdate) error {
	if strings.TrimSpace(upd.District) == "" {
		return errors.New("district is required")
	}
	if strings.TrimSpace(upd.Address) == "" {
		return errors.New("address is required")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return errors.New("email address is not valid")
	}
	return nil
}
