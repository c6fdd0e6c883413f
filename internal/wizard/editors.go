package wizard

import (
	"context"

	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/internal/validation"
	apperrors "github.com/buildlink/onboarding-api/pkg/errors"
)

// The section editors are the only write path into the draft. Each edit
// mutates its section under the wizard's lock, then persists that section's
// snapshot; the file policy runs before any mutation, so a rejected file
// leaves the draft untouched.

// PersonalEditor edits the personal info section.
type PersonalEditor struct{ w *Wizard }

// IdentityEditor edits the three identity document slots.
type IdentityEditor struct{ w *Wizard }

// CredentialsEditor edits the license, certification and testimonial
// collections.
type CredentialsEditor struct{ w *Wizard }

// ProjectsEditor edits the portfolio project gallery.
type ProjectsEditor struct{ w *Wizard }

// PreferencesEditor edits the work preferences section.
type PreferencesEditor struct{ w *Wizard }

func (w *Wizard) Personal() *PersonalEditor       { return &PersonalEditor{w: w} }
func (w *Wizard) Identity() *IdentityEditor       { return &IdentityEditor{w: w} }
func (w *Wizard) Credentials() *CredentialsEditor { return &CredentialsEditor{w: w} }
func (w *Wizard) Projects() *ProjectsEditor       { return &ProjectsEditor{w: w} }
func (w *Wizard) Preferences() *PreferencesEditor { return &PreferencesEditor{w: w} }

// Update replaces the personal section. Field-level validity is only
// enforced by the step gate; partial input is always saved so nothing the
// user typed is lost.
func (e *PersonalEditor) Update(ctx context.Context, info models.PersonalInfo) error {
	w := e.w
	w.mu.Lock()
	defer w.mu.Unlock()

	before := snapshot(w.draft.Personal)
	w.draft.Personal = info
	return w.persistSection(ctx, models.SectionPersonal, before, w.draft.Personal)
}

// Attach selects a file into one identity slot, replacing any previous
// file there. The slot's file policy runs first.
func (e *IdentityEditor) Attach(ctx context.Context, slot models.IdentitySlot, name, contentType string, data []byte) error {
	att := models.NewAttachment(name, contentType, data)
	if err := validation.CheckFile(validation.SlotForIdentity(slot), *att.Meta); err != nil {
		return err
	}

	w := e.w
	w.mu.Lock()
	defer w.mu.Unlock()

	target, ok := w.draft.Identity.Slots()[slot]
	if !ok {
		return apperrors.InvalidInputError("slot", "unknown identity slot")
	}

	before := snapshot(w.draft.Identity)
	*target = att
	return w.persistSection(ctx, models.SectionIdentity, before, w.draft.Identity)
}

// Remove clears one identity slot.
func (e *IdentityEditor) Remove(ctx context.Context, slot models.IdentitySlot) error {
	w := e.w
	w.mu.Lock()
	defer w.mu.Unlock()

	target, ok := w.draft.Identity.Slots()[slot]
	if !ok {
		return apperrors.InvalidInputError("slot", "unknown identity slot")
	}

	before := snapshot(w.draft.Identity)
	*target = models.Attachment{}
	return w.persistSection(ctx, models.SectionIdentity, before, w.draft.Identity)
}

func (e *CredentialsEditor) collection(category models.DocumentCategory) *[]models.Attachment {
	switch category {
	case models.CategoryLicense:
		return &e.w.draft.Credentials.Licenses
	case models.CategoryCertification:
		return &e.w.draft.Credentials.Certifications
	case models.CategoryTestimonial:
		return &e.w.draft.Credentials.Testimonials
	default:
		return nil
	}
}

// Add appends a file to one credential collection.
func (e *CredentialsEditor) Add(ctx context.Context, category models.DocumentCategory, name, contentType string, data []byte) error {
	att := models.NewAttachment(name, contentType, data)
	if err := validation.CheckFile(validation.FileSlotCredential, *att.Meta); err != nil {
		return err
	}

	w := e.w
	w.mu.Lock()
	defer w.mu.Unlock()

	coll := e.collection(category)
	if coll == nil {
		return apperrors.InvalidInputError("category", "unknown credential category")
	}

	before := snapshot(w.draft.Credentials)
	*coll = append(*coll, att)
	return w.persistSection(ctx, models.SectionCredentials, before, w.draft.Credentials)
}

// Remove deletes the file at the given position in one credential
// collection.
func (e *CredentialsEditor) Remove(ctx context.Context, category models.DocumentCategory, index int) error {
	w := e.w
	w.mu.Lock()
	defer w.mu.Unlock()

	coll := e.collection(category)
	if coll == nil {
		return apperrors.InvalidInputError("category", "unknown credential category")
	}
	if index < 0 || index >= len(*coll) {
		return apperrors.InvalidInputError("index", "no file at that position")
	}

	before := snapshot(w.draft.Credentials)
	*coll = append((*coll)[:index], (*coll)[index+1:]...)
	return w.persistSection(ctx, models.SectionCredentials, before, w.draft.Credentials)
}

// Add creates a new empty project card and returns its identifier.
func (e *ProjectsEditor) Add(ctx context.Context) (string, error) {
	w := e.w
	w.mu.Lock()
	defer w.mu.Unlock()

	before := snapshot(w.draft.Projects)
	project := w.draft.Projects.Add()
	if err := w.persistSection(ctx, models.SectionProjects, before, w.draft.Projects); err != nil {
		return "", err
	}
	return project.ID, nil
}

// Remove deletes a project card. The first project is protected and cannot
// be removed.
func (e *ProjectsEditor) Remove(ctx context.Context, projectID string) error {
	w := e.w
	w.mu.Lock()
	defer w.mu.Unlock()

	before := snapshot(w.draft.Projects)
	if !w.draft.Projects.Remove(projectID) {
		return apperrors.InvalidInputError("projectId", "project not removable")
	}
	return w.persistSection(ctx, models.SectionProjects, before, w.draft.Projects)
}

// ProjectFields is the editable scalar subset of a project card. Media is
// managed through AttachMedia and RemoveMedia so a fields update can never
// drop a session's file handles.
type ProjectFields struct {
	Title       string             `json:"title"`
	Type        models.ProjectType `json:"type"`
	Location    string             `json:"location"`
	Budget      models.BudgetRange `json:"budget"`
	Description string             `json:"description"`
}

// Update replaces the scalar fields of one project card.
func (e *ProjectsEditor) Update(ctx context.Context, projectID string, fields ProjectFields) error {
	w := e.w
	w.mu.Lock()
	defer w.mu.Unlock()

	project := w.draft.Projects.Find(projectID)
	if project == nil {
		return apperrors.NotFoundError("project")
	}

	before := snapshot(w.draft.Projects)
	project.Title = fields.Title
	project.Type = fields.Type
	project.Location = fields.Location
	project.Budget = fields.Budget
	project.Description = fields.Description
	return w.persistSection(ctx, models.SectionProjects, before, w.draft.Projects)
}

// AttachMedia adds an image to a project's media gallery.
func (e *ProjectsEditor) AttachMedia(ctx context.Context, projectID, name, contentType string, data []byte) error {
	att := models.NewAttachment(name, contentType, data)
	if err := validation.CheckFile(validation.FileSlotProjectMedia, *att.Meta); err != nil {
		return err
	}

	w := e.w
	w.mu.Lock()
	defer w.mu.Unlock()

	project := w.draft.Projects.Find(projectID)
	if project == nil {
		return apperrors.NotFoundError("project")
	}

	before := snapshot(w.draft.Projects)
	project.Media = append(project.Media, att)
	return w.persistSection(ctx, models.SectionProjects, before, w.draft.Projects)
}

// RemoveMedia deletes the media file at the given position on one project.
func (e *ProjectsEditor) RemoveMedia(ctx context.Context, projectID string, index int) error {
	w := e.w
	w.mu.Lock()
	defer w.mu.Unlock()

	project := w.draft.Projects.Find(projectID)
	if project == nil {
		return apperrors.NotFoundError("project")
	}
	if index < 0 || index >= len(project.Media) {
		return apperrors.InvalidInputError("index", "no media at that position")
	}

	before := snapshot(w.draft.Projects)
	project.Media = append(project.Media[:index], project.Media[index+1:]...)
	return w.persistSection(ctx, models.SectionProjects, before, w.draft.Projects)
}

// Update replaces the preferences section.
func (e *PreferencesEditor) Update(ctx context.Context, prefs models.Preferences) error {
	w := e.w
	w.mu.Lock()
	defer w.mu.Unlock()

	before := snapshot(w.draft.Preferences)
	w.draft.Preferences = prefs
	return w.persistSection(ctx, models.SectionPreferences, before, w.draft.Preferences)
}
