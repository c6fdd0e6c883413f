// Package validation holds the two tiers of draft validation: the per-step
// gate that lets the user advance, and the aggregate gate that must hold
// before the final submit. Everything here is pure; callers decide what to
// do with a false answer.
package validation

import (
	"strings"

	"github.com/buildlink/onboarding-api/internal/models"
)

// MaxBioLength caps the personal bio.
const MaxBioLength = 500

// Developer flow steps. The client flow only has Personal and Review.
const (
	StepPersonal    = 1
	StepIdentity    = 2
	StepCredentials = 3
	StepProjects    = 4
	StepPreferences = 5
	StepReview      = 6

	clientStepReview = 2
)

// StepCount returns the number of wizard steps for a role: 2 for a client,
// 6 for a developer.
func StepCount(role models.Role) int {
	if role == models.RoleClient {
		return 2
	}
	return 6
}

// FinalStep returns the review step index for the role's flow.
func FinalStep(role models.Role) int {
	return StepCount(role)
}

// CanContinue is the per-step gate: a minimal completeness check scoped to
// the step currently shown. Deliberately looser than SubmitReady for the
// project gallery, so users can proceed and fill gaps later.
func CanContinue(draft *models.Draft, step int) bool {
	if draft == nil {
		return false
	}

	if draft.Role == models.RoleClient {
		switch step {
		case StepPersonal:
			return personalValid(draft)
		case clientStepReview:
			return SubmitReady(draft)
		default:
			return false
		}
	}

	switch step {
	case StepPersonal:
		return personalValid(draft)
	case StepIdentity:
		return identityPresent(&draft.Identity)
	case StepCredentials:
		return credentialsValid(&draft.Credentials)
	case StepProjects:
		return anyProjectTouched(&draft.Projects)
	case StepPreferences:
		return preferencesValid(draft)
	case StepReview:
		return SubmitReady(draft)
	default:
		return false
	}
}

// SubmitReady is the aggregate gate, evaluated on the final step: every
// section must be fully valid for the draft's role. A client is gated by
// the Personal section alone. Pure and idempotent.
func SubmitReady(draft *models.Draft) bool {
	if draft == nil || !draft.Role.Valid() {
		return false
	}

	if !personalValid(draft) {
		return false
	}

	if draft.Role == models.RoleClient {
		return true
	}

	if !identityPresent(&draft.Identity) {
		return false
	}
	if !credentialsValid(&draft.Credentials) {
		return false
	}
	for i := range draft.Projects.Projects {
		if !draft.Projects.Projects[i].Complete() {
			return false
		}
	}
	if len(draft.Projects.Projects) == 0 {
		return false
	}
	return preferencesValid(draft)
}

// SectionIssues lists which sections currently fail the aggregate gate, for
// the "fix issues" affordance on the review step.
func SectionIssues(draft *models.Draft) []models.SectionKey {
	if draft == nil {
		return nil
	}

	var issues []models.SectionKey
	if !personalValid(draft) {
		issues = append(issues, models.SectionPersonal)
	}
	if draft.Role == models.RoleClient {
		return issues
	}

	if !identityPresent(&draft.Identity) {
		issues = append(issues, models.SectionIdentity)
	}
	if !credentialsValid(&draft.Credentials) {
		issues = append(issues, models.SectionCredentials)
	}
	projectsOK := len(draft.Projects.Projects) > 0
	for i := range draft.Projects.Projects {
		if !draft.Projects.Projects[i].Complete() {
			projectsOK = false
			break
		}
	}
	if !projectsOK {
		issues = append(issues, models.SectionProjects)
	}
	if !preferencesValid(draft) {
		issues = append(issues, models.SectionPreferences)
	}
	return issues
}

func personalValid(draft *models.Draft) bool {
	p := &draft.Personal

	if strings.TrimSpace(p.FullName) == "" {
		return false
	}
	if len(p.Bio) > MaxBioLength {
		return false
	}

	if draft.Role == models.RoleClient {
		return strings.TrimSpace(p.Phone) != "" &&
			strings.TrimSpace(p.Location) != "" &&
			strings.TrimSpace(p.Occupation) != "" &&
			strings.TrimSpace(p.PreferredContact) != ""
	}

	return strings.TrimSpace(p.CompanyType) != "" &&
		strings.TrimSpace(p.YearsExperience) != "" &&
		len(p.CitiesCovered) > 0 &&
		len(p.Languages) > 0
}

// identityPresent requires each of the three slots to hold either a live
// file or previously stored metadata.
func identityPresent(s *models.IdentitySection) bool {
	return s.GovernmentID.Present() &&
		s.RegistrationCer.Present() &&
		s.Selfie.Present()
}

func credentialsValid(s *models.CredentialsSection) bool {
	return len(s.Licenses) > 0 &&
		len(s.Certifications) > 0 &&
		len(s.Testimonials) > 0
}

// anyProjectTouched is the loose gallery gate: satisfied the moment any
// single field on any project is non-empty.
func anyProjectTouched(s *models.ProjectsSection) bool {
	for i := range s.Projects {
		if s.Projects[i].HasAnyField() {
			return true
		}
	}
	return false
}

func preferencesValid(draft *models.Draft) bool {
	p := &draft.Preferences

	if len(p.ProjectTypes) == 0 || len(p.PreferredCities) == 0 || p.Budget == "" {
		return false
	}
	if draft.Role == models.RoleClient {
		return true
	}
	return p.WorkingStyle != "" &&
		p.Availability != "" &&
		len(p.Specializations) > 0
}
