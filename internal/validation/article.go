package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLength = 255
	maxBodyLength  = 50000
)

// ValidateArticleTitle requires a non-blank title that fits the column.
func ValidateArticleTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title can't be blank")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return fmt.Errorf("title is too long (maximum is %d characters)", maxTitleLength)
	}
	return nil
}

// ValidateArticleBody requires a non-blank body.
func ValidateArticleBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return errors.New("body can't be blank")
	}
	if utf8.RuneCountInString(body) > maxBodyLength {
		return fmt.Errorf("body is too long (maximum is %d characters)", maxBodyLength)
	}
	return nil
}
