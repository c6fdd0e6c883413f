// Package submit converts a submit-ready draft into an ordered sequence of
// remote write operations. Phases run in a fixed order and tolerate
// per-item failure; only the profile write that marks onboarding complete
// is fatal to the whole submission.
package submit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/buildlink/onboarding-api/internal/draftstore"
	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/internal/remote"
	apperrors "github.com/buildlink/onboarding-api/pkg/errors"
	"github.com/buildlink/onboarding-api/pkg/logger"
	"github.com/buildlink/onboarding-api/pkg/metrics"
	"go.uber.org/zap"
)

// State tracks one submission attempt.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// CategoryTally reports the outcome of the document phase for one upload
// category. Skipped counts attachments whose bytes were lost to a reload
// and were never attempted.
type CategoryTally struct {
	Category models.DocumentCategory `json:"category"`
	Success  int                     `json:"success"`
	Failed   int                     `json:"failed"`
	Skipped  int                     `json:"skipped"`
}

// Result is the structured outcome of one submission attempt. Partial
// failure inside the best-effort phases is data here, not an error.
type Result struct {
	State            State           `json:"state"`
	DocumentTallies  []CategoryTally `json:"documentTallies"`
	PortfolioCreated bool            `json:"portfolioCreated"`
	ProjectsCreated  int             `json:"projectsCreated"`
	ProjectsFailed   int             `json:"projectsFailed"`
	UserMessage      string          `json:"userMessage,omitempty"`
}

// Orchestrator drives the phased submission. Remote errors never escape it
// un-wrapped: best-effort failures are tallied, the fatal profile failure
// comes back as a single apperrors.ErrSubmissionFailed.
type Orchestrator struct {
	profile   remote.ProfileAPI
	documents remote.DocumentAPI
	projects  remote.ProjectAPI
	store     draftstore.Store
}

// NewOrchestrator creates a submission orchestrator.
func NewOrchestrator(profile remote.ProfileAPI, documents remote.DocumentAPI, projects remote.ProjectAPI, store draftstore.Store) *Orchestrator {
	return &Orchestrator{
		profile:   profile,
		documents: documents,
		projects:  projects,
		store:     store,
	}
}

// Submit runs every phase for the draft's role. Items within the document
// and project phases are issued sequentially, so the tally is deterministic
// and the remote services see bounded load.
//
// Only a confirmed profile write clears the draft store; on fatal failure
// every section key is left intact so the user's edits survive.
func (o *Orchestrator) Submit(ctx context.Context, sessionID string, userID int, draft *models.Draft) (*Result, error) {
	result := &Result{State: StateRunning}

	logger.Info("Starting onboarding submission",
		zap.String("session_id", sessionID),
		zap.Int("user_id", userID),
		zap.String("role", string(draft.Role)))

	if draft.Role == models.RoleDeveloper {
		o.runDocumentPhase(ctx, userID, draft, result)
		o.runPortfolioPhase(ctx, userID, draft, result)
		o.runProjectPhase(ctx, userID, draft, result)
	}

	if err := o.runProfilePhase(ctx, draft); err != nil {
		result.State = StateFailed
		result.UserMessage = userMessage(err)
		metrics.Submissions.WithLabelValues(string(draft.Role), "failed").Inc()
		logger.Error("Onboarding submission failed",
			zap.String("session_id", sessionID),
			zap.Int("user_id", userID),
			zap.Error(err))
		return result, apperrors.SubmissionError(err)
	}

	// Profile write confirmed: the draft is now safe to purge.
	if err := o.store.ClearAll(ctx, sessionID, models.SectionKeys()); err != nil {
		// The submission itself succeeded; a stale draft is only cosmetic.
		logger.Error("Failed to clear draft after successful submission",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	result.State = StateSucceeded
	metrics.Submissions.WithLabelValues(string(draft.Role), "succeeded").Inc()
	logger.Info("Onboarding submission succeeded",
		zap.String("session_id", sessionID),
		zap.Int("user_id", userID))

	return result, nil
}

// runDocumentPhase uploads every attached file across all categories. One
// failed upload is logged, counted and skipped; it never stops the rest of
// the phase and the phase never raises.
func (o *Orchestrator) runDocumentPhase(ctx context.Context, userID int, draft *models.Draft, result *Result) {
	start := time.Now()

	categories := []struct {
		category    models.DocumentCategory
		attachments []models.Attachment
	}{
		{models.CategoryIdentity, identityAttachments(&draft.Identity)},
		{models.CategoryLicense, draft.Credentials.Licenses},
		{models.CategoryCertification, draft.Credentials.Certifications},
		{models.CategoryTestimonial, draft.Credentials.Testimonials},
		{models.CategoryProjectMedia, projectMedia(&draft.Projects)},
	}

	for _, group := range categories {
		tally := CategoryTally{Category: group.category}

		for _, att := range group.attachments {
			if !att.Present() || att.Meta == nil {
				continue
			}
			if !att.HasPayload() {
				// Metadata survived a reload but the bytes did not.
				tally.Skipped++
				logger.Warn("Skipping attachment without payload",
					zap.String("category", string(group.category)),
					zap.String("file", att.Meta.Name))
				continue
			}

			_, err := o.documents.UploadDocument(ctx, userID, group.category, *att.Meta, att.Handle.Data)
			if err != nil {
				tally.Failed++
				metrics.DocumentUploads.WithLabelValues(string(group.category), "error").Inc()
				logger.Error("Document upload failed, continuing",
					zap.String("category", string(group.category)),
					zap.String("file", att.Meta.Name),
					zap.Error(err))
				continue
			}

			tally.Success++
			metrics.DocumentUploads.WithLabelValues(string(group.category), "success").Inc()
		}

		result.DocumentTallies = append(result.DocumentTallies, tally)
	}

	metrics.SubmissionPhaseDuration.WithLabelValues("documents").Observe(metrics.MeasureDuration(start))
}

// runPortfolioPhase issues the single optional portfolio call. Its failure
// is swallowed and logged; the submission is never failed because of it.
func (o *Orchestrator) runPortfolioPhase(ctx context.Context, userID int, draft *models.Draft, result *Result) {
	start := time.Now()
	defer func() {
		metrics.SubmissionPhaseDuration.WithLabelValues("portfolio").Observe(metrics.MeasureDuration(start))
	}()

	if err := o.projects.CreatePortfolio(ctx, BuildPortfolioPayload(userID, draft)); err != nil {
		logger.Warn("Portfolio creation failed, continuing", zap.Error(err))
		return
	}
	result.PortfolioCreated = true
}

// runProjectPhase creates one remote project per titled draft project and
// attaches its media when creation returned an identifier. A failure on one
// project does not prevent attempting the next.
func (o *Orchestrator) runProjectPhase(ctx context.Context, userID int, draft *models.Draft, result *Result) {
	start := time.Now()
	defer func() {
		metrics.SubmissionPhaseDuration.WithLabelValues("projects").Observe(metrics.MeasureDuration(start))
	}()

	for i := range draft.Projects.Projects {
		project := &draft.Projects.Projects[i]
		if strings.TrimSpace(project.Title) == "" {
			continue
		}

		record, err := o.projects.CreateProject(ctx, BuildProjectPayload(userID, project))
		if err != nil {
			result.ProjectsFailed++
			metrics.ProjectCreations.WithLabelValues("error").Inc()
			logger.Error("Project creation failed, continuing",
				zap.String("project_title", project.Title),
				zap.Error(err))
			continue
		}

		result.ProjectsCreated++
		metrics.ProjectCreations.WithLabelValues("success").Inc()

		if record.ID == "" {
			continue
		}
		for _, media := range project.Media {
			if !media.HasPayload() || media.Meta == nil {
				continue
			}
			if err := o.projects.AttachMedia(ctx, record.ID, *media.Meta, media.Handle.Data); err != nil {
				logger.Error("Project media attach failed, continuing",
					zap.String("project_id", record.ID),
					zap.String("file", media.Meta.Name),
					zap.Error(err))
			}
		}
	}
}

// runProfilePhase issues the profile write that marks onboarding complete.
// The remote response either confirms completion explicitly or, absent that
// signal, not failing is treated as sufficient.
func (o *Orchestrator) runProfilePhase(ctx context.Context, draft *models.Draft) error {
	start := time.Now()
	defer func() {
		metrics.SubmissionPhaseDuration.WithLabelValues("profile").Observe(metrics.MeasureDuration(start))
	}()

	resp, err := o.profile.UpdateProfile(ctx, BuildProfilePayload(draft))
	if err != nil {
		return err
	}

	if resp != nil && resp.User.ID != 0 && !resp.User.OnboardingComplete {
		logger.Warn("Profile service did not confirm onboarding completion",
			zap.Int("user_id", resp.User.ID))
	}
	return nil
}

// userMessage reduces a fatal error to the single summary shown to the
// user: per-field details when the service sent a structured rejection,
// otherwise the raw transport message.
func userMessage(err error) string {
	var ve *models.RemoteValidationError
	if errors.As(err, &ve) {
		return "Your profile could not be saved: " + ve.Error()
	}
	return "Submission failed: " + err.Error()
}

func identityAttachments(s *models.IdentitySection) []models.Attachment {
	return []models.Attachment{s.GovernmentID, s.RegistrationCer, s.Selfie}
}

func projectMedia(s *models.ProjectsSection) []models.Attachment {
	var media []models.Attachment
	for i := range s.Projects {
		media = append(media, s.Projects[i].Media...)
	}
	return media
}
