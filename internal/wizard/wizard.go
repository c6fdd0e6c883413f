// Package wizard owns the per-session onboarding flow: a step pointer over
// the role's step sequence, the in-memory draft the section editors mutate,
// and the handoff to the submission orchestrator on the final step.
package wizard

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/buildlink/onboarding-api/internal/draftstore"
	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/internal/submit"
	"github.com/buildlink/onboarding-api/internal/validation"
	apperrors "github.com/buildlink/onboarding-api/pkg/errors"
	"github.com/buildlink/onboarding-api/pkg/logger"
	"github.com/buildlink/onboarding-api/pkg/metrics"
	"go.uber.org/zap"
)

// Submitter is the orchestrator as the wizard sees it.
type Submitter interface {
	Submit(ctx context.Context, sessionID string, userID int, draft *models.Draft) (*submit.Result, error)
}

// Wizard is one user's active onboarding session. All access goes through
// its mutex: the HTTP layer may issue concurrent requests for one session.
type Wizard struct {
	mu        sync.Mutex
	sessionID string
	userID    int
	step      int
	completed bool

	draft     *models.Draft
	store     draftstore.Store
	submitter Submitter

	lastResult *submit.Result
}

// State is the read-only snapshot served to clients. SectionIssues is only
// populated on the review step, where the "fix issues" affordance needs it.
type State struct {
	Step          int                 `json:"step"`
	StepCount     int                 `json:"stepCount"`
	Completed     bool                `json:"completed"`
	CanContinue   bool                `json:"canContinue"`
	SubmitReady   bool                `json:"submitReady"`
	SectionIssues []models.SectionKey `json:"sectionIssues,omitempty"`
	Draft         *models.Draft       `json:"draft"`
	LastResult    *submit.Result      `json:"lastResult,omitempty"`
}

// New builds a wizard for the session, rehydrating any previously saved
// sections from the draft store. Sections without a stored entry keep their
// defaults; a rehydrated section carries metadata-only attachments until
// the files are re-selected.
func New(ctx context.Context, sessionID string, userID int, role models.Role, store draftstore.Store, submitter Submitter) *Wizard {
	w := &Wizard{
		sessionID: sessionID,
		userID:    userID,
		step:      1,
		draft:     models.NewDraft(role),
		store:     store,
		submitter: submitter,
	}
	w.hydrate(ctx)
	return w
}

func (w *Wizard) hydrate(ctx context.Context) {
	if personal, ok := draftstore.LoadSection[models.PersonalInfo](ctx, w.store, w.sessionID, models.SectionPersonal); ok {
		w.draft.Personal = personal
	}
	if identity, ok := draftstore.LoadSection[models.IdentitySection](ctx, w.store, w.sessionID, models.SectionIdentity); ok {
		w.draft.Identity = identity
	}
	if credentials, ok := draftstore.LoadSection[models.CredentialsSection](ctx, w.store, w.sessionID, models.SectionCredentials); ok {
		w.draft.Credentials = credentials
	}
	if projects, ok := draftstore.LoadSection[models.ProjectsSection](ctx, w.store, w.sessionID, models.SectionProjects); ok {
		if len(projects.Projects) > 0 {
			w.draft.Projects = projects
		}
	}
	if prefs, ok := draftstore.LoadSection[models.Preferences](ctx, w.store, w.sessionID, models.SectionPreferences); ok {
		w.draft.Preferences = prefs
	}
}

// SessionID returns the session this wizard belongs to.
func (w *Wizard) SessionID() string {
	return w.sessionID
}

// Role returns the onboarding flow's role.
func (w *Wizard) Role() models.Role {
	return w.draft.Role
}

// State snapshots the wizard for the HTTP layer. The draft is deep-copied:
// handlers serialize the snapshot after the lock is released, while another
// request may already be editing the live draft.
func (w *Wizard) State() *State {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := &State{
		Step:        w.step,
		StepCount:   validation.StepCount(w.draft.Role),
		Completed:   w.completed,
		CanContinue: validation.CanContinue(w.draft, w.step),
		SubmitReady: validation.SubmitReady(w.draft),
		Draft:       w.draft.Clone(),
		LastResult:  w.lastResult,
	}
	if w.step == validation.FinalStep(w.draft.Role) && !s.SubmitReady {
		s.SectionIssues = validation.SectionIssues(w.draft)
	}
	return s
}

// Next advances the step pointer when the current step's gate passes. On
// the final step it runs the submission instead: the wizard completes only
// when the orchestrator confirms success, otherwise the step pointer stays
// on review and the draft survives for another attempt.
//
// The returned result is non-nil only for a final-step submission.
func (w *Wizard) Next(ctx context.Context) (*submit.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.completed {
		return w.lastResult, nil
	}

	if !validation.CanContinue(w.draft, w.step) {
		metrics.WizardSteps.WithLabelValues("next", "blocked").Inc()
		return nil, apperrors.ErrStepBlocked
	}

	if w.step < validation.FinalStep(w.draft.Role) {
		w.step++
		metrics.WizardSteps.WithLabelValues("next", "advanced").Inc()
		return nil, nil
	}

	result, err := w.submitter.Submit(ctx, w.sessionID, w.userID, w.draft)
	w.lastResult = result
	if err != nil {
		metrics.WizardSteps.WithLabelValues("next", "submit_failed").Inc()
		return result, err
	}

	w.completed = true
	metrics.WizardSteps.WithLabelValues("next", "completed").Inc()
	return result, nil
}

// Prev moves back one step. It never validates and never goes below the
// first step; calling it there is a no-op.
func (w *Wizard) Prev() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step > 1 && !w.completed {
		w.step--
		metrics.WizardSteps.WithLabelValues("prev", "moved").Inc()
	}
	return w.step
}

// persistSection stores one section and reports whether its serialized
// form actually changed. Unchanged writes are skipped so repeated identical
// saves stay cheap and produce no churn in the store. Callers hold the
// mutex.
func (w *Wizard) persistSection(ctx context.Context, key models.SectionKey, before json.RawMessage, section any) error {
	after, err := json.Marshal(section)
	if err != nil {
		return err
	}
	if string(before) == string(after) {
		return nil
	}

	if err := w.store.Save(ctx, w.sessionID, key, after); err != nil {
		logger.Error("Failed to persist draft section",
			zap.String("section", string(key)),
			zap.String("session_id", w.sessionID),
			zap.Error(err))
		return err
	}

	logger.Debug("Draft section updated",
		zap.String("section", string(key)),
		zap.String("session_id", w.sessionID))
	return nil
}

func snapshot(section any) json.RawMessage {
	raw, err := json.Marshal(section)
	if err != nil {
		return nil
	}
	return raw
}
