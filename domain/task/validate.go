package task

import "strings"

// ValidateNew checks the creation input.
func ValidateNew(in NewTask) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewError(ErrValidation, "Title of task is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return NewError(ErrValidation, "Description of task is required")
	}
	if in.Status != "" && !in.Status.IsValid() {
		return NewError(ErrValidation, invalidStatusMessage)
	}
	return nil
}

// ValidatePatch checks a partial update.
// Only the status enum is enforced; title and description accept any value.
func ValidatePatch(p Patch) error {
	if p.Status != nil && !p.Status.IsValid() {
		return NewError(ErrValidation, invalidStatusMessage)
	}
	return nil
}

const invalidStatusMessage = "Status must be one of todo, in-progress, done"
