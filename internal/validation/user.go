// Package validation holds input rules shared by services and handlers.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt input limit
	maxNameLength     = 100
	maxEmailLength    = 254
	maxLocalPart      = 64
)

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?)+$`)

// ValidatePassword enforces length only. Hashing happens in the service layer.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("password is too short (minimum is %d characters)", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("password is too long (maximum is %d bytes)", maxPasswordBytes)
	}
	return nil
}

// ValidateName checks the display name.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("name can't be blank")
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return fmt.Errorf("name is too long (maximum is %d characters)", maxNameLength)
	}
	return nil
}

// ValidateEmail checks the address shape. Emails are compared exactly as
// stored, so no normalization happens here.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email can't be blank")
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("email is too long (maximum is %d characters)", maxEmailLength)
	}
	at := strings.LastIndex(email, "@")
	if at > maxLocalPart {
		return errors.New("email is invalid")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("email is invalid")
	}
	return nil
}
