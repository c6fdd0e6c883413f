// Package remote holds the clients for the three external collaborators
// the submission orchestrator talks to: the account/profile service, the
// document storage service, and the project service.
package remote

import (
	"context"

	"github.com/buildlink/onboarding-api/internal/models"
)

// ProfileAPI is the account service. UpdateProfile is the call that marks
// onboarding complete; its failure is fatal to a submission.
type ProfileAPI interface {
	UpdateProfile(ctx context.Context, payload map[string]any) (*models.UpdateProfileResponse, error)
	GetCurrentUser(ctx context.Context) (*models.UserRecord, error)
}

// DocumentAPI stores one file per call; calls fail independently of each
// other.
type DocumentAPI interface {
	UploadDocument(ctx context.Context, userID int, category models.DocumentCategory, meta models.FileMetadata, data []byte) (*models.DocumentDescriptor, error)
}

// ProjectAPI creates remote projects and, optionally, a portfolio record.
// AttachMedia ties an uploaded file to a created project. All three are
// best-effort from the orchestrator's point of view.
type ProjectAPI interface {
	CreateProject(ctx context.Context, payload map[string]any) (*models.ProjectRecord, error)
	AttachMedia(ctx context.Context, projectID string, meta models.FileMetadata, data []byte) error
	CreatePortfolio(ctx context.Context, payload map[string]any) error
}
