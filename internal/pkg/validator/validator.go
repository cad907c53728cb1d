package validator

import (
	"regexp"
	"strconv"
	"strings"
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

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

// IsPercentage checks 0 <= v <= 100.
func IsPercentage(v float64) bool {
	return v >= 0 && v <= 100
}

// ParseIntInRange parses an optional query parameter. An empty value yields
// fallback; anything that is not an integer within [lo, hi] is a
// ValidationErrors for field.
func ParseIntInRange(field, value string, fallback, lo, hi int) (int, error) {
	if IsEmpty(value) {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, ValidationErrors{{Field: field, Message: "must be an integer"}}
	}
	if n < lo || n > hi {
		return 0, ValidationErrors{{Field: field, Message: "must be between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi)}}
	}
	return n, nil
}
