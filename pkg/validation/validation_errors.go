package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"talentlink-appointments/internal/domain"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to the labels shown to API clients
var FieldLabels = map[string]string{
	"CandidateID":       "Candidate",
	"OfferID":           "Job offer",
	"RecruiterID":       "Recruiter",
	"CandidateName":     "Candidate name",
	"CandidateEmail":    "Candidate email",
	"PositionTitle":     "Position title",
	"CompanyName":       "Company name",
	"ApplicationStatus": "Application status",
	"ProposedSlots":     "Proposed slots",
	"Mode":              "Interview mode",
	"LocationDetails":   "Location details",
	"AdditionalNotes":   "Additional notes",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var messages []string

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	for _, e := range validationErrors {
		msg := formatSingleError(e)
		messages = append(messages, msg)
	}

	return messages
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", label)
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", label, param)
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s: at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", label, strings.Join(strings.Fields(param), ", "))
	case "email":
		return fmt.Sprintf("%s: invalid email address", label)
	case "valid_name":
		return fmt.Sprintf("%s: only letters, spaces and common punctuation (. ' - /) are allowed", label)
	case "no_emoji":
		return fmt.Sprintf("%s: must not contain emoji or special symbols", label)
	case "single_line":
		return fmt.Sprintf("%s: must not contain line breaks or control characters", label)
	case "slot_count":
		return fmt.Sprintf("%s: exactly %d distinct datetimes are required", label, domain.RequiredSlotCount)
	case "appointment_mode":
		return fmt.Sprintf("%s: must be one of: online, physical, phone", label)
	default:
		return fmt.Sprintf("%s: validation failed (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	// Return field name with spaces between camelCase words
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}

// Message joins the formatted errors into one response message
func Message(err error) string {
	return strings.Join(FormatValidationErrors(err), "; ")
}
