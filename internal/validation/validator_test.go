package validation_test

import (
	"strings"
	"testing"

	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/internal/validation"
	"github.com/stretchr/testify/assert"
)

func validClientDraft() *models.Draft {
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

func validDeveloperDraft() *models.Draft {
	d := models.NewDraft(models.RoleDeveloper)
	d.Personal = models.PersonalInfo{
		FullName:        "Kwame Mensah",
		CompanyType:     "llc",
		YearsExperience: "5-10",
		CitiesCovered:   []string{"Accra"},
		Languages:       []string{"English"},
	}
	d.Identity = models.IdentitySection{
		GovernmentID:    models.NewAttachment("id.png", "image/png", []byte("a")),
		RegistrationCer: models.NewAttachment("reg.pdf", "application/pdf", []byte("b")),
		Selfie:          models.NewAttachment("selfie.jpg", "image/jpeg", []byte("c")),
	}
	d.Credentials = models.CredentialsSection{
		Licenses:       []models.Attachment{models.NewAttachment("lic.pdf", "application/pdf", []byte("d"))},
		Certifications: []models.Attachment{models.NewAttachment("cert.pdf", "application/pdf", []byte("e"))},
		Testimonials:   []models.Attachment{models.NewAttachment("ref.pdf", "application/pdf", []byte("f"))},
	}
	p := &d.Projects.Projects[0]
	p.Title = "Lakeside Villa"
	p.Type = models.ProjectResidential
	p.Location = "Accra"
	p.Budget = models.Budget200KTo1M
	p.Description = "Residential build"
	p.Media = []models.Attachment{models.NewAttachment("v.jpg", "image/jpeg", []byte("g"))}
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

func TestStepCount(t *testing.T) {
	assert.Equal(t, 2, validation.StepCount(models.RoleClient))
	assert.Equal(t, 6, validation.StepCount(models.RoleDeveloper))
	assert.Equal(t, validation.StepCount(models.RoleClient), validation.FinalStep(models.RoleClient))
	assert.Equal(t, validation.StepCount(models.RoleDeveloper), validation.FinalStep(models.RoleDeveloper))
}

func TestCanContinue_PersonalStep(t *testing.T) {
	d := validDeveloperDraft()
	assert.True(t, validation.CanContinue(d, validation.StepPersonal))

	d.Personal.FullName = "   "
	assert.False(t, validation.CanContinue(d, validation.StepPersonal))

	d = validDeveloperDraft()
	d.Personal.Languages = nil
	assert.False(t, validation.CanContinue(d, validation.StepPersonal))
}

func TestCanContinue_BioLengthCap(t *testing.T) {
	d := validDeveloperDraft()
	d.Personal.Bio = strings.Repeat("a", validation.MaxBioLength)
	assert.True(t, validation.CanContinue(d, validation.StepPersonal))

	d.Personal.Bio = strings.Repeat("a", validation.MaxBioLength+1)
	assert.False(t, validation.CanContinue(d, validation.StepPersonal))
}

func TestCanContinue_IdentityRequiresAllThreeSlots(t *testing.T) {
	d := validDeveloperDraft()
	assert.True(t, validation.CanContinue(d, validation.StepIdentity))

	d.Identity.Selfie = models.Attachment{}
	assert.False(t, validation.CanContinue(d, validation.StepIdentity))

	// Metadata-only (rehydrated) attachments still count as present.
	d.Identity.Selfie = models.Attachment{
		Meta: &models.FileMetadata{Name: "selfie.jpg", Size: 1, ContentType: "image/jpeg"},
	}
	assert.True(t, validation.CanContinue(d, validation.StepIdentity))
}

func TestCanContinue_ProjectsStepIsLoose(t *testing.T) {
	d := validDeveloperDraft()

	// A single touched field on any project is enough to continue, even if
	// the project would fail the aggregate gate.
	d.Projects.Projects[0] = models.NewProject()
	d.Projects.Projects[0].Title = "Just a title"
	assert.True(t, validation.CanContinue(d, validation.StepProjects))
	assert.False(t, validation.SubmitReady(d))

	d.Projects.Projects[0] = models.NewProject()
	assert.False(t, validation.CanContinue(d, validation.StepProjects))
}

func TestSubmitReady_Developer(t *testing.T) {
	d := validDeveloperDraft()
	assert.True(t, validation.SubmitReady(d))

	d.Credentials.Testimonials = nil
	assert.False(t, validation.SubmitReady(d))
}

func TestSubmitReady_ClientIgnoresDeveloperSections(t *testing.T) {
	d := validClientDraft()
	assert.True(t, validation.SubmitReady(d), "client readiness is gated by the personal section only")

	d.Personal.Phone = ""
	assert.False(t, validation.SubmitReady(d))
}

func TestSubmitReady_IsIdempotent(t *testing.T) {
	d := validDeveloperDraft()
	before := *d
	assert.True(t, validation.SubmitReady(d))
	assert.True(t, validation.SubmitReady(d))
	assert.Equal(t, before.Personal, d.Personal, "the aggregate gate must not mutate the draft")
}

func TestSectionIssues(t *testing.T) {
	d := validDeveloperDraft()
	assert.Empty(t, validation.SectionIssues(d))

	d.Identity.GovernmentID = models.Attachment{}
	d.Preferences.Specializations = nil
	issues := validation.SectionIssues(d)
	assert.Contains(t, issues, models.SectionIdentity)
	assert.Contains(t, issues, models.SectionPreferences)
	assert.NotContains(t, issues, models.SectionPersonal)
}

func TestCanContinue_ReviewStepUsesAggregateGate(t *testing.T) {
	d := validDeveloperDraft()
	assert.True(t, validation.CanContinue(d, validation.StepReview))

	d.Credentials.Licenses = nil
	assert.False(t, validation.CanContinue(d, validation.StepReview))
}
