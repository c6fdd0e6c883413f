package models

import (
	"fmt"
	"strings"
)

// UserRecord is the account record returned by the profile service.
type UserRecord struct {
	ID                 int    `json:"id"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	OnboardingComplete bool   `json:"onboardingComplete"`
}

// UpdateProfileResponse wraps the profile service response.
type UpdateProfileResponse struct {
	User UserRecord `json:"user"`
}

// DocumentDescriptor is returned by the document service for each stored file.
type DocumentDescriptor struct {
	ID       string           `json:"id"`
	URL      string           `json:"url"`
	Category DocumentCategory `json:"category"`
	Name     string           `json:"name"`
	Size     int64            `json:"size"`
}

// ProjectRecord is returned by the project service on creation.
type ProjectRecord struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FieldError is one entry of a structured validation failure from the
// profile service.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RemoteValidationError is a structured 4xx rejection from the profile
// service, listing per-field messages. It is the phase-fatal error the
// orchestrator turns into a single user-facing summary.
type RemoteValidationError struct {
	Fields []FieldError `json:"errors"`
}

func (e *RemoteValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "profile rejected"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(parts, "; ")
}
