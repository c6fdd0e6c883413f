package models

// Role determines which onboarding flow and which required-field sets apply.
type Role string

const (
	RoleClient    Role = "client"
	RoleDeveloper Role = "developer"
)

// Valid reports whether the role is one of the two supported flows.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleDeveloper
}

// SectionKey identifies one independently-persisted slice of the draft.
// Keys are stable: they double as draft store keys, so renaming one orphans
// previously saved drafts.
type SectionKey string

const (
	SectionPersonal    SectionKey = "personal_info"
	SectionIdentity    SectionKey = "identity_documents"
	SectionCredentials SectionKey = "credentials"
	SectionProjects    SectionKey = "portfolio_projects"
	SectionPreferences SectionKey = "build_preferences"
)

// SectionKeys returns every draft store key for one onboarding flow,
// in wizard order.
func SectionKeys() []SectionKey {
	return []SectionKey{
		SectionPersonal,
		SectionIdentity,
		SectionCredentials,
		SectionProjects,
		SectionPreferences,
	}
}

// PersonalInfo is the first wizard section. The role tag on the draft
// decides which of the optional sub-fields are required.
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Bio      string `json:"bio"` // max 500 chars, enforced by the validator

	// Developer fields
	CompanyType     string   `json:"companyType,omitempty"`
	YearsExperience string   `json:"yearsExperience,omitempty"` // range, e.g. "5-10"
	CitiesCovered   []string `json:"citiesCovered,omitempty"`
	Languages       []string `json:"languages,omitempty"`

	// Client fields
	Phone            string `json:"phone,omitempty"`
	Location         string `json:"location,omitempty"`
	Occupation       string `json:"occupation,omitempty"`
	PreferredContact string `json:"preferredContact,omitempty"`
}

// IdentitySlot names one of the three fixed identity document slots.
type IdentitySlot string

const (
	SlotGovernmentID    IdentitySlot = "government_id"
	SlotRegistrationCer IdentitySlot = "registration_certificate"
	SlotSelfie          IdentitySlot = "selfie"
)

// IdentitySection holds the three named document slots. All three must be
// filled before the section validates for a developer.
type IdentitySection struct {
	GovernmentID    Attachment `json:"governmentId"`
	RegistrationCer Attachment `json:"registrationCertificate"`
	Selfie          Attachment `json:"selfie"`
}

// Slots returns the three slots with their names, in a fixed order.
func (s *IdentitySection) Slots() map[IdentitySlot]*Attachment {
	return map[IdentitySlot]*Attachment{
		SlotGovernmentID:    &s.GovernmentID,
		SlotRegistrationCer: &s.RegistrationCer,
		SlotSelfie:          &s.Selfie,
	}
}

// CredentialsSection holds the three credential collections. Each must be
// non-empty to validate.
type CredentialsSection struct {
	Licenses       []Attachment `json:"licenses"`
	Certifications []Attachment `json:"certifications"`
	Testimonials   []Attachment `json:"testimonials"`
}

// ProjectsSection is the ordered project gallery. At least one project
// always exists; the first one is not removable.
type ProjectsSection struct {
	Projects []Project `json:"projects"`
}

// WorkingStyle and Availability are developer-only preference enums.
type WorkingStyle string

const (
	WorkingSolo     WorkingStyle = "solo"
	WorkingTeam     WorkingStyle = "team"
	WorkingFlexible WorkingStyle = "flexible"
)

type Availability string

const (
	AvailabilityFullTime Availability = "full_time"
	AvailabilityPartTime Availability = "part_time"
	AvailabilityWeekends Availability = "weekends"
)

// Preferences is the final editing section. The client variant omits the
// developer-only fields.
type Preferences struct {
	ProjectTypes    []ProjectType `json:"projectTypes"`
	PreferredCities []string      `json:"preferredCities"`
	Budget          BudgetRange   `json:"budget"`

	// Developer-only
	WorkingStyle    WorkingStyle `json:"workingStyle,omitempty"`
	Availability    Availability `json:"availability,omitempty"`
	Specializations []string     `json:"specializations,omitempty"`
}

// Draft is the aggregate, resumable state of one onboarding attempt.
// Sections are owned by their editors and mirrored here on every change;
// the draft itself is owned by the wizard while the session is active.
type Draft struct {
	Role        Role               `json:"role"`
	Personal    PersonalInfo       `json:"personal"`
	Identity    IdentitySection    `json:"identity"`
	Credentials CredentialsSection `json:"credentials"`
	Projects    ProjectsSection    `json:"projects"`
	Preferences Preferences        `json:"preferences"`
}

// NewDraft creates an empty draft for the given role. The project gallery
// is seeded with one empty card so there is always a project to edit.
func NewDraft(role Role) *Draft {
	return &Draft{
		Role:     role,
		Projects: ProjectsSection{Projects: []Project{NewProject()}},
	}
}

// Clone returns a deep copy of the draft. Slices and metadata are copied,
// so a snapshot stays stable while editors keep mutating the original.
// File payloads are written once at selection time and never rewritten, so
// handles are shared between copies.
func (d *Draft) Clone() *Draft {
	c := *d

	c.Personal.CitiesCovered = cloneStrings(d.Personal.CitiesCovered)
	c.Personal.Languages = cloneStrings(d.Personal.Languages)

	c.Identity.GovernmentID = d.Identity.GovernmentID.clone()
	c.Identity.RegistrationCer = d.Identity.RegistrationCer.clone()
	c.Identity.Selfie = d.Identity.Selfie.clone()

	c.Credentials.Licenses = cloneAttachments(d.Credentials.Licenses)
	c.Credentials.Certifications = cloneAttachments(d.Credentials.Certifications)
	c.Credentials.Testimonials = cloneAttachments(d.Credentials.Testimonials)

	if d.Projects.Projects != nil {
		c.Projects.Projects = make([]Project, len(d.Projects.Projects))
		for i := range d.Projects.Projects {
			c.Projects.Projects[i] = d.Projects.Projects[i].clone()
		}
	}

	if d.Preferences.ProjectTypes != nil {
		c.Preferences.ProjectTypes = make([]ProjectType, len(d.Preferences.ProjectTypes))
		copy(c.Preferences.ProjectTypes, d.Preferences.ProjectTypes)
	}
	c.Preferences.PreferredCities = cloneStrings(d.Preferences.PreferredCities)
	c.Preferences.Specializations = cloneStrings(d.Preferences.Specializations)

	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
