package events

import (
	"fmt"

	"entrada/models"
	"entrada/utils"
)

// NameKey builds the uniqueness key for a (company, event name) pair:
// both parts lowercased with whitespace collapsed.
func NameKey(company, name string) string {
	return utils.NormalizeName(company) + "|" + utils.NormalizeName(name)
}

// ValidateRoles checks every role and returns all violations, not just
// the first.
func ValidateRoles(roles []models.Role) []string {
	var problems []string
	if len(roles) == 0 {
		return []string{"at least one role is required"}
	}

	seen := make(map[string]bool)
	for i, role := range roles {
		if role.Name == "" {
			problems = append(problems, fmt.Sprintf("role %d: name is required", i+1))
			continue
		}
		key := utils.NormalizeName(role.Name)
		if seen[key] {
			problems = append(problems, fmt.Sprintf("role %q: duplicate name", role.Name))
		}
		seen[key] = true

		if role.Price < 0 {
			problems = append(problems, fmt.Sprintf("role %q: price must not be negative", role.Name))
		}
		if role.MaxCount <= 0 {
			problems = append(problems, fmt.Sprintf("role %q: max registrations must be positive", role.Name))
		}
		if len(role.Privileges) == 0 {
			problems = append(problems, fmt.Sprintf("role %q: at least one privilege is required", role.Name))
		}
	}
	return problems
}

// ValidateFieldDefs checks a registration form schema.
func ValidateFieldDefs(fields []models.FieldDef) []string {
	var problems []string
	seen := make(map[string]bool)
	for i, f := range fields {
		if f.Name == "" {
			problems = append(problems, fmt.Sprintf("field %d: name is required", i+1))
			continue
		}
		key := utils.NormalizeName(f.Name)
		if seen[key] {
			problems = append(problems, fmt.Sprintf("field %q: duplicate name", f.Name))
		}
		seen[key] = true

		switch f.Type {
		case "text", "email", "number", "select", "date":
		default:
			problems = append(problems, fmt.Sprintf("field %q: unknown type %q", f.Name, f.Type))
		}
		if f.Type == "select" && len(f.Options) == 0 {
			problems = append(problems, fmt.Sprintf("field %q: select fields need options", f.Name))
		}
	}
	return problems
}

// FindRole returns the role with the given name, case-insensitively.
func FindRole(event *models.Event, name string) *models.Role {
	for i := range event.Roles {
		if utils.NormalizeName(event.Roles[i].Name) == utils.NormalizeName(name) {
			return &event.Roles[i]
		}
	}
	return nil
}
