package register

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"entrada/models"
	"entrada/utils"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateSubmission checks attendee answers against the event's
// registration field schema. Every violation is reported, not just the
// first.
func ValidateSubmission(schema []models.FieldDef, answers map[string]string) []string {
	var problems []string

	for _, field := range schema {
		value, present := answers[field.Name]
		if value == "" {
			present = false
		}

		if !present {
			if field.Required {
				problems = append(problems, fmt.Sprintf("field %q is required", field.Name))
			}
			continue
		}

		switch field.Type {
		case "email":
			if !emailRe.MatchString(value) {
				problems = append(problems, fmt.Sprintf("field %q must be a valid email", field.Name))
			}
		case "number":
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				problems = append(problems, fmt.Sprintf("field %q must be a number", field.Name))
			}
		case "select":
			if !utils.ContainsFold(field.Options, value) {
				problems = append(problems, fmt.Sprintf("field %q must be one of its options", field.Name))
			}
		case "date":
			if _, err := time.Parse("2006-01-02", value); err != nil {
				problems = append(problems, fmt.Sprintf("field %q must be a date (YYYY-MM-DD)", field.Name))
			}
		}
	}

	return problems
}
