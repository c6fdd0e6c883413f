package submit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/buildlink/onboarding-api/internal/draftstore"
	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/internal/submit"
	apperrors "github.com/buildlink/onboarding-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSessionID = "sess-123"
	testUserID    = 42
)

func profileOK() *models.UpdateProfileResponse {
	return &models.UpdateProfileResponse{
		User: models.UserRecord{ID: testUserID, OnboardingComplete: true},
	}
}

func clientDraft() *models.Draft {
	d := models.NewDraft(models.RoleClient)
	d.Personal = models.PersonalInfo{
		FullName:         "Dana Osei",
		Phone:            "+233201234567",
		Location:         "Accra",
		Occupation:       "Architect",
		PreferredContact: "phone",
	}
	return d
}

// developerDraft builds a fully submit-ready developer draft with one file
// per slot and one complete project.
func developerDraft() *models.Draft {
	d := models.NewDraft(models.RoleDeveloper)
	d.Personal = models.PersonalInfo{
		FullName:        "Kwame Mensah",
		CompanyType:     "llc",
		YearsExperience: "5-10",
		CitiesCovered:   []string{"Accra", "Kumasi"},
		Languages:       []string{"English"},
	}
	d.Identity = models.IdentitySection{
		GovernmentID:    models.NewAttachment("id.png", "image/png", []byte("id-bytes")),
		RegistrationCer: models.NewAttachment("reg.pdf", "application/pdf", []byte("reg-bytes")),
		Selfie:          models.NewAttachment("selfie.jpg", "image/jpeg", []byte("selfie-bytes")),
	}
	d.Credentials = models.CredentialsSection{
		Licenses:       []models.Attachment{models.NewAttachment("lic.pdf", "application/pdf", []byte("lic"))},
		Certifications: []models.Attachment{models.NewAttachment("cert.pdf", "application/pdf", []byte("cert"))},
		Testimonials:   []models.Attachment{models.NewAttachment("ref.pdf", "application/pdf", []byte("ref"))},
	}
	project := &d.Projects.Projects[0]
	project.Title = "Lakeside Villa"
	project.Type = models.ProjectResidential
	project.Location = "Accra"
	project.Budget = models.Budget200KTo1M
	project.Description = "Six month residential build"
	project.Media = []models.Attachment{models.NewAttachment("villa.jpg", "image/jpeg", []byte("villa"))}
	d.Preferences = models.Preferences{
		ProjectTypes:    []models.ProjectType{models.ProjectResidential},
		PreferredCities: []string{"Accra"},
		Budget:          models.Budget200KTo1M,
		WorkingStyle:    models.WorkingTeam,
		Availability:    models.AvailabilityFullTime,
		Specializations: []string{"concrete"},
	}
	return d
}

// seedStore writes every section of the draft into the store, mimicking a
// session that edited each step.
func seedStore(t *testing.T, store draftstore.Store, draft *models.Draft) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, draftstore.SaveSection(ctx, store, testSessionID, models.SectionPersonal, draft.Personal))
	require.NoError(t, draftstore.SaveSection(ctx, store, testSessionID, models.SectionIdentity, draft.Identity))
	require.NoError(t, draftstore.SaveSection(ctx, store, testSessionID, models.SectionCredentials, draft.Credentials))
	require.NoError(t, draftstore.SaveSection(ctx, store, testSessionID, models.SectionProjects, draft.Projects))
	require.NoError(t, draftstore.SaveSection(ctx, store, testSessionID, models.SectionPreferences, draft.Preferences))
}

func storedSections(store draftstore.Store) int {
	count := 0
	for _, key := range models.SectionKeys() {
		if _, ok := store.Load(context.Background(), testSessionID, key); ok {
			count++
		}
	}
	return count
}

func TestSubmit_ClientFlowIsProfileOnly(t *testing.T) {
	profile := new(MockProfileAPI)
	documents := new(MockDocumentAPI)
	projects := new(MockProjectAPI)
	store := draftstore.NewMemoryStore()

	draft := clientDraft()
	seedStore(t, store, draft)

	profile.On("UpdateProfile", mock.Anything, mock.Anything).Return(profileOK(), nil).Once()

	orch := submit.NewOrchestrator(profile, documents, projects, store)
	result, err := orch.Submit(context.Background(), testSessionID, testUserID, draft)

	require.NoError(t, err)
	assert.Equal(t, submit.StateSucceeded, result.State)
	assert.Empty(t, result.DocumentTallies)
	assert.Zero(t, result.ProjectsCreated)
	assert.False(t, result.PortfolioCreated)

	profile.AssertExpectations(t)
	documents.AssertNotCalled(t, "UploadDocument")
	projects.AssertNotCalled(t, "CreateProject")
	projects.AssertNotCalled(t, "CreatePortfolio")

	assert.Zero(t, storedSections(store), "draft should be cleared after success")
}

func TestSubmit_DeveloperFullSuccess(t *testing.T) {
	profile := new(MockProfileAPI)
	documents := new(MockDocumentAPI)
	projects := new(MockProjectAPI)
	store := draftstore.NewMemoryStore()

	draft := developerDraft()
	seedStore(t, store, draft)

	documents.On("UploadDocument", mock.Anything, testUserID, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DocumentDescriptor{ID: "doc-1"}, nil)
	projects.On("CreatePortfolio", mock.Anything, mock.Anything).Return(nil).Once()
	projects.On("CreateProject", mock.Anything, mock.Anything).
		Return(&models.ProjectRecord{ID: "proj-1", Title: "Lakeside Villa"}, nil).Once()
	projects.On("AttachMedia", mock.Anything, "proj-1", mock.Anything, mock.Anything).Return(nil).Once()
	profile.On("UpdateProfile", mock.Anything, mock.Anything).Return(profileOK(), nil).Once()

	orch := submit.NewOrchestrator(profile, documents, projects, store)
	result, err := orch.Submit(context.Background(), testSessionID, testUserID, draft)

	require.NoError(t, err)
	assert.Equal(t, submit.StateSucceeded, result.State)
	assert.True(t, result.PortfolioCreated)
	assert.Equal(t, 1, result.ProjectsCreated)
	assert.Zero(t, result.ProjectsFailed)

	// identity 3, license 1, certification 1, testimonial 1, media 1
	documents.AssertNumberOfCalls(t, "UploadDocument", 7)
	for _, tally := range result.DocumentTallies {
		assert.Zero(t, tally.Failed, "category %s", tally.Category)
		assert.Zero(t, tally.Skipped, "category %s", tally.Category)
	}

	profile.AssertExpectations(t)
	projects.AssertExpectations(t)
	assert.Zero(t, storedSections(store))
}

func TestSubmit_DocumentFailureDoesNotStopSubmission(t *testing.T) {
	profile := new(MockProfileAPI)
	documents := new(MockDocumentAPI)
	projects := new(MockProjectAPI)
	store := draftstore.NewMemoryStore()

	draft := developerDraft()

	documents.On("UploadDocument", mock.Anything, testUserID, models.CategoryLicense, mock.Anything, mock.Anything).
		Return(nil, errors.New("storage unavailable"))
	documents.On("UploadDocument", mock.Anything, testUserID, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DocumentDescriptor{ID: "doc-1"}, nil)
	projects.On("CreatePortfolio", mock.Anything, mock.Anything).Return(nil)
	projects.On("CreateProject", mock.Anything, mock.Anything).
		Return(&models.ProjectRecord{ID: "proj-1"}, nil)
	projects.On("AttachMedia", mock.Anything, "proj-1", mock.Anything, mock.Anything).Return(nil)
	profile.On("UpdateProfile", mock.Anything, mock.Anything).Return(profileOK(), nil).Once()

	orch := submit.NewOrchestrator(profile, documents, projects, store)
	result, err := orch.Submit(context.Background(), testSessionID, testUserID, draft)

	require.NoError(t, err)
	assert.Equal(t, submit.StateSucceeded, result.State)

	var licenseTally submit.CategoryTally
	for _, tally := range result.DocumentTallies {
		if tally.Category == models.CategoryLicense {
			licenseTally = tally
		}
	}
	assert.Equal(t, 1, licenseTally.Failed)
	assert.Zero(t, licenseTally.Success)
}

func TestSubmit_MetadataOnlyAttachmentsAreSkipped(t *testing.T) {
	profile := new(MockProfileAPI)
	documents := new(MockDocumentAPI)
	projects := new(MockProjectAPI)
	store := draftstore.NewMemoryStore()

	draft := developerDraft()
	// Simulate a rehydrated slot: metadata survived, bytes did not.
	draft.Identity.Selfie = models.Attachment{
		Meta: &models.FileMetadata{Name: "selfie.jpg", Size: 1024, ContentType: "image/jpeg"},
	}

	documents.On("UploadDocument", mock.Anything, testUserID, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DocumentDescriptor{ID: "doc-1"}, nil)
	projects.On("CreatePortfolio", mock.Anything, mock.Anything).Return(nil)
	projects.On("CreateProject", mock.Anything, mock.Anything).
		Return(&models.ProjectRecord{ID: "proj-1"}, nil)
	projects.On("AttachMedia", mock.Anything, "proj-1", mock.Anything, mock.Anything).Return(nil)
	profile.On("UpdateProfile", mock.Anything, mock.Anything).Return(profileOK(), nil).Once()

	orch := submit.NewOrchestrator(profile, documents, projects, store)
	result, err := orch.Submit(context.Background(), testSessionID, testUserID, draft)

	require.NoError(t, err)

	var identityTally submit.CategoryTally
	for _, tally := range result.DocumentTallies {
		if tally.Category == models.CategoryIdentity {
			identityTally = tally
		}
	}
	assert.Equal(t, 2, identityTally.Success)
	assert.Equal(t, 1, identityTally.Skipped)
	assert.Zero(t, identityTally.Failed)
}

func TestSubmit_ProfileRejectionPreservesDraft(t *testing.T) {
	profile := new(MockProfileAPI)
	documents := new(MockDocumentAPI)
	projects := new(MockProjectAPI)
	store := draftstore.NewMemoryStore()

	draft := developerDraft()
	seedStore(t, store, draft)

	documents.On("UploadDocument", mock.Anything, testUserID, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DocumentDescriptor{ID: "doc-1"}, nil)
	projects.On("CreatePortfolio", mock.Anything, mock.Anything).Return(nil)
	projects.On("CreateProject", mock.Anything, mock.Anything).
		Return(&models.ProjectRecord{ID: "proj-1"}, nil)
	projects.On("AttachMedia", mock.Anything, "proj-1", mock.Anything, mock.Anything).Return(nil)

	rejection := &models.RemoteValidationError{
		Fields: []models.FieldError{{Field: "bio", Message: "contains a phone number"}},
	}
	profile.On("UpdateProfile", mock.Anything, mock.Anything).Return(nil, rejection).Once()

	orch := submit.NewOrchestrator(profile, documents, projects, store)
	result, err := orch.Submit(context.Background(), testSessionID, testUserID, draft)

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrSubmissionFailed))
	assert.Equal(t, submit.StateFailed, result.State)
	assert.Contains(t, result.UserMessage, "bio")

	assert.Equal(t, len(models.SectionKeys()), storedSections(store),
		"failed submission must leave the draft intact")
}

func TestSubmit_PortfolioFailureIsSwallowed(t *testing.T) {
	profile := new(MockProfileAPI)
	documents := new(MockDocumentAPI)
	projects := new(MockProjectAPI)
	store := draftstore.NewMemoryStore()

	draft := developerDraft()

	documents.On("UploadDocument", mock.Anything, testUserID, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DocumentDescriptor{ID: "doc-1"}, nil)
	projects.On("CreatePortfolio", mock.Anything, mock.Anything).Return(errors.New("portfolio service down"))
	projects.On("CreateProject", mock.Anything, mock.Anything).
		Return(&models.ProjectRecord{ID: "proj-1"}, nil)
	projects.On("AttachMedia", mock.Anything, "proj-1", mock.Anything, mock.Anything).Return(nil)
	profile.On("UpdateProfile", mock.Anything, mock.Anything).Return(profileOK(), nil).Once()

	orch := submit.NewOrchestrator(profile, documents, projects, store)
	result, err := orch.Submit(context.Background(), testSessionID, testUserID, draft)

	require.NoError(t, err)
	assert.Equal(t, submit.StateSucceeded, result.State)
	assert.False(t, result.PortfolioCreated)
}

func TestSubmit_UntitledProjectsAreNotCreated(t *testing.T) {
	profile := new(MockProfileAPI)
	documents := new(MockDocumentAPI)
	projects := new(MockProjectAPI)
	store := draftstore.NewMemoryStore()

	draft := developerDraft()
	draft.Projects.Add() // untouched empty card alongside the complete one

	documents.On("UploadDocument", mock.Anything, testUserID, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DocumentDescriptor{ID: "doc-1"}, nil)
	projects.On("CreatePortfolio", mock.Anything, mock.Anything).Return(nil)
	projects.On("CreateProject", mock.Anything, mock.Anything).
		Return(&models.ProjectRecord{ID: "proj-1"}, nil)
	projects.On("AttachMedia", mock.Anything, "proj-1", mock.Anything, mock.Anything).Return(nil)
	profile.On("UpdateProfile", mock.Anything, mock.Anything).Return(profileOK(), nil).Once()

	orch := submit.NewOrchestrator(profile, documents, projects, store)
	result, err := orch.Submit(context.Background(), testSessionID, testUserID, draft)

	require.NoError(t, err)
	assert.Equal(t, 1, result.ProjectsCreated)
	projects.AssertNumberOfCalls(t, "CreateProject", 1)
}

func TestSubmit_ProjectFailureContinues(t *testing.T) {
	profile := new(MockProfileAPI)
	documents := new(MockDocumentAPI)
	projects := new(MockProjectAPI)
	store := draftstore.NewMemoryStore()

	draft := developerDraft()
	second := draft.Projects.Add()
	second.Title = "Harbour Office Fit-out"
	second.Type = models.ProjectInterior
	second.Location = "Tema"
	second.Budget = models.Budget50To200K
	second.Description = "Open plan office interior"
	second.Media = []models.Attachment{models.NewAttachment("office.jpg", "image/jpeg", []byte("office"))}

	documents.On("UploadDocument", mock.Anything, testUserID, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.DocumentDescriptor{ID: "doc-1"}, nil)
	projects.On("CreatePortfolio", mock.Anything, mock.Anything).Return(nil)
	projects.On("CreateProject", mock.Anything, mock.MatchedBy(func(p map[string]any) bool {
		return p["title"] == "Lakeside Villa"
	})).Return(nil, errors.New("project service timeout")).Once()
	projects.On("CreateProject", mock.Anything, mock.MatchedBy(func(p map[string]any) bool {
		return p["title"] == "Harbour Office Fit-out"
	})).Return(&models.ProjectRecord{ID: "proj-2"}, nil).Once()
	projects.On("AttachMedia", mock.Anything, "proj-2", mock.Anything, mock.Anything).Return(nil)
	profile.On("UpdateProfile", mock.Anything, mock.Anything).Return(profileOK(), nil).Once()

	orch := submit.NewOrchestrator(profile, documents, projects, store)
	result, err := orch.Submit(context.Background(), testSessionID, testUserID, draft)

	require.NoError(t, err)
	assert.Equal(t, 1, result.ProjectsCreated)
	assert.Equal(t, 1, result.ProjectsFailed)
	projects.AssertNotCalled(t, "AttachMedia", mock.Anything, "proj-1", mock.Anything, mock.Anything)
}
