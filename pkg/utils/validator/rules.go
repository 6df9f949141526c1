package validator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Custom validation tags
const (
	TagUsername   = "username"   // Username (starts with letter, alphanumeric + underscore, 3-32 chars)
	TagPassword   = "password"   // Password (min 8 chars, at least 1 letter and 1 number)
	TagExperience = "experience" // Work experience level enum
	TagSafeString = "safestring" // Safe string (no SQL injection, XSS patterns)
	TagTrimmed    = "trimmed"    // String should be trimmed (no leading/trailing spaces)
)

// Experience levels accepted at registration.
// 回答 FAQ 需要 3 年以上经验（即非 0-2yr）。
const (
	ExperienceJunior = "0-2yr"
	ExperienceMid    = "3-5yr"
	ExperienceSenior = "6yr and above"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{2,31}$`)

	// Dangerous patterns for safe string validation
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:",
		"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "DROP ",
		"UNION ", "OR 1=1", "' OR '", "-- ", "/*", "*/",
	}
)

// ExperienceLevels lists the accepted experience level values.
func ExperienceLevels() []string {
	return []string{ExperienceJunior, ExperienceMid, ExperienceSenior}
}

// IsExperienced reports whether the level grants answer permission (3+ years).
func IsExperienced(level string) bool {
	return level == ExperienceMid || level == ExperienceSenior
}

// registerCustomRules registers all custom validation rules.
func (v *Validator) registerCustomRules() {
	_ = v.validate.RegisterValidation(TagUsername, validateUsername)
	_ = v.validate.RegisterValidation(TagPassword, validatePassword)
	_ = v.validate.RegisterValidation(TagExperience, validateExperience)
	_ = v.validate.RegisterValidation(TagSafeString, validateSafeString)
	_ = v.validate.RegisterValidation(TagTrimmed, validateTrimmed)
}

// validateUsername validates username format.
// Must start with a letter, contain only alphanumeric and underscore, 3-32 chars.
func validateUsername(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let 'required' handle empty values
	}
	return usernameRegex.MatchString(value)
}

// validatePassword validates basic password requirements.
// At least 8 characters, containing at least 1 letter and 1 number.
func validatePassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	if len(value) < 8 {
		return false
	}

	hasLetter := false
	hasNumber := false

	for _, char := range value {
		if unicode.IsLetter(char) {
			hasLetter = true
		}
		if unicode.IsDigit(char) {
			hasNumber = true
		}
		if hasLetter && hasNumber {
			return true
		}
	}

	return hasLetter && hasNumber
}

// validateExperience validates the work experience level enum.
func validateExperience(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	for _, level := range ExperienceLevels() {
		if value == level {
			return true
		}
	}
	return false
}

// validateSafeString checks for potentially dangerous patterns.
func validateSafeString(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	upperValue := strings.ToUpper(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(upperValue, strings.ToUpper(pattern)) {
			return false
		}
	}

	return true
}

// validateTrimmed validates that string has no leading/trailing whitespace.
func validateTrimmed(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	return value == strings.TrimSpace(value)
}
