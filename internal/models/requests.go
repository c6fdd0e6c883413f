package models

// StartOnboardingRequest opens a new onboarding session for a user.
type StartOnboardingRequest struct {
	UserID int    `json:"userId" binding:"required,gt=0"`
	Role   string `json:"role" binding:"required,oneof=client developer"`
}

// StartOnboardingResponse carries the session token; browser clients also
// receive it as a cookie.
type StartOnboardingResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

// AttachFileRequest selects a file into a section. Exactly one of Slot
// (identity), Category (credentials) or ProjectID (project media) applies,
// chosen by the section the request targets. Data is base64-encoded.
type AttachFileRequest struct {
	Slot      string `json:"slot,omitempty"`
	Category  string `json:"category,omitempty"`
	ProjectID string `json:"projectId,omitempty"`

	Name        string `json:"name" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required"`
	Data        string `json:"data" binding:"required"`
}

// RemoveFileRequest removes a previously attached file from a section.
type RemoveFileRequest struct {
	Slot      string `json:"slot,omitempty"`
	Category  string `json:"category,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
	Index     int    `json:"index"`
}

// UpdateProjectRequest edits the scalar fields of one project card.
type UpdateProjectRequest struct {
	Title       string `json:"title" binding:"max=200"`
	Type        string `json:"type" binding:"omitempty,oneof=residential commercial renovation interior landscape"`
	Location    string `json:"location" binding:"max=200"`
	Budget      string `json:"budget" binding:"omitempty,oneof=under_50k 50k_200k 200k_1m over_1m"`
	Description string `json:"description" binding:"max=2000"`
}
