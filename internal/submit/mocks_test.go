package submit_test

import (
	"context"

	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockProfileAPI is a mock implementation of remote.ProfileAPI
type MockProfileAPI struct {
	mock.Mock
}

func (m *MockProfileAPI) UpdateProfile(ctx context.Context, payload map[string]any) (*models.UpdateProfileResponse, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UpdateProfileResponse), args.Error(1)
}

func (m *MockProfileAPI) GetCurrentUser(ctx context.Context) (*models.UserRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserRecord), args.Error(1)
}

// MockDocumentAPI is a mock implementation of remote.DocumentAPI
type MockDocumentAPI struct {
	mock.Mock
}

func (m *MockDocumentAPI) UploadDocument(ctx context.Context, userID int, category models.DocumentCategory, meta models.FileMetadata, data []byte) (*models.DocumentDescriptor, error) {
	args := m.Called(ctx, userID, category, meta, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DocumentDescriptor), args.Error(1)
}

// MockProjectAPI is a mock implementation of remote.ProjectAPI
type MockProjectAPI struct {
	mock.Mock
}

func (m *MockProjectAPI) CreateProject(ctx context.Context, payload map[string]any) (*models.ProjectRecord, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectRecord), args.Error(1)
}

func (m *MockProjectAPI) AttachMedia(ctx context.Context, projectID string, meta models.FileMetadata, data []byte) error {
	args := m.Called(ctx, projectID, meta, data)
	return args.Error(0)
}

func (m *MockProjectAPI) CreatePortfolio(ctx context.Context, payload map[string]any) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
