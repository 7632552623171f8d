package validator

import (
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var monthRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// IsValidMonth checks the zero-padded "YYYY-MM" form used by every dataset.
func IsValidMonth(month string) bool {
	return monthRegex.MatchString(strings.TrimSpace(month))
}

// ParseMonth parses "YYYY-MM" into the first day of that month (UTC).
func ParseMonth(month string) (time.Time, bool) {
	if !IsValidMonth(month) {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01", strings.TrimSpace(month))
	return t, err == nil
}

// Date validation
func IsValidDate(dateStr string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", dateStr)
	return date, err == nil
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

var fileNameRegex = regexp.MustCompile(`^[A-Za-z0-9._-]{1,200}$`)

// IsSafeFileName rejects path separators and anything outside a plain file name.
func IsSafeFileName(name string) bool {
	return fileNameRegex.MatchString(name) && !strings.Contains(name, "..")
}
