package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/buildlink/onboarding-api/internal/middleware"
	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/internal/session"
	"github.com/buildlink/onboarding-api/internal/wizard"
	apperrors "github.com/buildlink/onboarding-api/pkg/errors"
	"github.com/buildlink/onboarding-api/pkg/jwt"
	"github.com/buildlink/onboarding-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OnboardingHandler serves the wizard endpoints. Every authenticated
// endpoint resolves its wizard through the session registry, so an expired
// instance is transparently rebuilt from the draft store.
type OnboardingHandler struct {
	registry     *session.Registry
	tokens       *jwt.TokenManager
	cookieDomain string
	cookieSecure bool
}

// NewOnboardingHandler creates a new OnboardingHandler
func NewOnboardingHandler(registry *session.Registry, tokens *jwt.TokenManager, cookieDomain string, cookieSecure bool) *OnboardingHandler {
	return &OnboardingHandler{
		registry:     registry,
		tokens:       tokens,
		cookieDomain: cookieDomain,
		cookieSecure: cookieSecure,
	}
}

// Start handles POST /api/v1/onboarding/start
// Opens a session for the given user and role and issues the session token.
// Starting again with the same user resumes whatever draft the store holds.
func (h *OnboardingHandler) Start(c *gin.Context) {
	var req models.StartOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	sessionID := uuid.NewString()
	token, err := h.tokens.GenerateToken(sessionID, req.UserID, req.Role)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create session", err)
		return
	}

	w := h.registry.GetOrCreate(c.Request.Context(), sessionID, req.UserID, models.Role(req.Role))

	ttlSeconds := int(h.tokens.GetExpirationTime().Seconds())
	middleware.SetSessionCookie(c, token, ttlSeconds, h.cookieDomain, h.cookieSecure)

	logger.Info("Onboarding started",
		zap.String("session_id", sessionID),
		zap.Int("user_id", req.UserID),
		zap.String("role", req.Role))

	c.JSON(http.StatusCreated, gin.H{
		"session": models.StartOnboardingResponse{SessionID: sessionID, Token: token},
		"state":   w.State(),
	})
}

// GetState handles GET /api/v1/onboarding/state
func (h *OnboardingHandler) GetState(c *gin.Context) {
	w, ok := h.wizardFor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": w.State()})
}

// UpdateSection handles PUT /api/v1/onboarding/sections/:section
// Replaces an editable section's value. File-backed sections are edited
// through the file and project endpoints instead.
func (h *OnboardingHandler) UpdateSection(c *gin.Context) {
	w, ok := h.wizardFor(c)
	if !ok {
		return
	}

	switch models.SectionKey(c.Param("section")) {
	case models.SectionPersonal:
		var info models.PersonalInfo
		if err := c.ShouldBindJSON(&info); err != nil {
			respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", gin.H{"message": err.Error()}, err)
			return
		}
		if err := w.Personal().Update(c.Request.Context(), info); err != nil {
			respondError(c, statusFor(err), "Failed to save section", err)
			return
		}

	case models.SectionPreferences:
		var prefs models.Preferences
		if err := c.ShouldBindJSON(&prefs); err != nil {
			respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", gin.H{"message": err.Error()}, err)
			return
		}
		if err := w.Preferences().Update(c.Request.Context(), prefs); err != nil {
			respondError(c, statusFor(err), "Failed to save section", err)
			return
		}

	default:
		respondError(c, http.StatusBadRequest, "Section is not editable via this endpoint", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": w.State()})
}

// AttachFile handles POST /api/v1/onboarding/sections/:section/files
// Selects a file into an identity slot, a credential collection or a
// project's media gallery. The payload arrives base64-encoded.
func (h *OnboardingHandler) AttachFile(c *gin.Context) {
	w, ok := h.wizardFor(c)
	if !ok {
		return
	}

	var req models.AttachFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		respondError(c, http.StatusBadRequest, "File data is not valid base64", err)
		return
	}

	ctx := c.Request.Context()
	switch models.SectionKey(c.Param("section")) {
	case models.SectionIdentity:
		err = w.Identity().Attach(ctx, models.IdentitySlot(req.Slot), req.Name, req.ContentType, data)
	case models.SectionCredentials:
		err = w.Credentials().Add(ctx, models.DocumentCategory(req.Category), req.Name, req.ContentType, data)
	case models.SectionProjects:
		err = w.Projects().AttachMedia(ctx, req.ProjectID, req.Name, req.ContentType, data)
	default:
		respondError(c, http.StatusBadRequest, "Section does not accept files", nil)
		return
	}

	if err != nil {
		respondError(c, statusFor(err), err.Error(), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": w.State()})
}

// RemoveFile handles DELETE /api/v1/onboarding/sections/:section/files
func (h *OnboardingHandler) RemoveFile(c *gin.Context) {
	w, ok := h.wizardFor(c)
	if !ok {
		return
	}

	var req models.RemoveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", gin.H{"message": err.Error()}, err)
		return
	}

	ctx := c.Request.Context()
	var err error
	switch models.SectionKey(c.Param("section")) {
	case models.SectionIdentity:
		err = w.Identity().Remove(ctx, models.IdentitySlot(req.Slot))
	case models.SectionCredentials:
		err = w.Credentials().Remove(ctx, models.DocumentCategory(req.Category), req.Index)
	case models.SectionProjects:
		err = w.Projects().RemoveMedia(ctx, req.ProjectID, req.Index)
	default:
		respondError(c, http.StatusBadRequest, "Section does not accept files", nil)
		return
	}

	if err != nil {
		respondError(c, statusFor(err), err.Error(), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": w.State()})
}

// AddProject handles POST /api/v1/onboarding/projects
func (h *OnboardingHandler) AddProject(c *gin.Context) {
	w, ok := h.wizardFor(c)
	if !ok {
		return
	}

	projectID, err := w.Projects().Add(c.Request.Context())
	if err != nil {
		respondError(c, statusFor(err), "Failed to add project", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"projectId": projectID, "state": w.State()})
}

// UpdateProject handles PUT /api/v1/onboarding/projects/:id
func (h *OnboardingHandler) UpdateProject(c *gin.Context) {
	w, ok := h.wizardFor(c)
	if !ok {
		return
	}

	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", ParseValidationErrors(err), err)
		return
	}

	fields := wizard.ProjectFields{
		Title:       req.Title,
		Type:        models.ProjectType(req.Type),
		Location:    req.Location,
		Budget:      models.BudgetRange(req.Budget),
		Description: req.Description,
	}
	if err := w.Projects().Update(c.Request.Context(), c.Param("id"), fields); err != nil {
		respondError(c, statusFor(err), "Failed to update project", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": w.State()})
}

// RemoveProject handles DELETE /api/v1/onboarding/projects/:id
func (h *OnboardingHandler) RemoveProject(c *gin.Context) {
	w, ok := h.wizardFor(c)
	if !ok {
		return
	}

	if err := w.Projects().Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, statusFor(err), "Project cannot be removed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": w.State()})
}

// Next handles POST /api/v1/onboarding/next
// Advances one step, or runs the submission when already on the review
// step. A blocked step returns the failing sections so the client can
// point the user at them.
func (h *OnboardingHandler) Next(c *gin.Context) {
	w, ok := h.wizardFor(c)
	if !ok {
		return
	}

	result, err := w.Next(c.Request.Context())
	if err != nil {
		state := w.State()
		if apperrors.Is(err, apperrors.ErrStepBlocked) {
			respondErrorWithDetails(c, http.StatusConflict, "Current step is incomplete",
				gin.H{"sectionIssues": state.SectionIssues}, err)
			return
		}
		respondErrorWithDetails(c, statusFor(err), "Submission failed",
			gin.H{"result": result}, err)
		return
	}

	state := w.State()
	if state.Completed {
		h.endSession(c, w.SessionID())
	}
	c.JSON(http.StatusOK, gin.H{"state": state, "result": result})
}

// Prev handles POST /api/v1/onboarding/prev
// Always succeeds; moving back never validates.
func (h *OnboardingHandler) Prev(c *gin.Context) {
	w, ok := h.wizardFor(c)
	if !ok {
		return
	}

	w.Prev()
	c.JSON(http.StatusOK, gin.H{"state": w.State()})
}

// Submit handles POST /api/v1/onboarding/submit
// Explicit submission from the review step. Anywhere else it refuses, so a
// client cannot skip the flow.
func (h *OnboardingHandler) Submit(c *gin.Context) {
	w, ok := h.wizardFor(c)
	if !ok {
		return
	}

	state := w.State()
	if !state.Completed && state.Step != state.StepCount {
		respondError(c, http.StatusConflict, "Submission is only available on the review step", nil)
		return
	}

	result, err := w.Next(c.Request.Context())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrStepBlocked) {
			respondErrorWithDetails(c, http.StatusConflict, "Draft is not ready to submit",
				gin.H{"sectionIssues": w.State().SectionIssues}, err)
			return
		}
		respondErrorWithDetails(c, statusFor(err), "Submission failed",
			gin.H{"result": result}, err)
		return
	}

	final := w.State()
	if final.Completed {
		h.endSession(c, w.SessionID())
	}
	c.JSON(http.StatusOK, gin.H{"state": final, "result": result})
}

// endSession drops the finished wizard from the registry and expires the
// session cookie. The orchestrator has already cleared the draft store.
func (h *OnboardingHandler) endSession(c *gin.Context, sessionID string) {
	h.registry.Remove(sessionID)
	middleware.ClearSessionCookie(c, h.cookieDomain, h.cookieSecure)

	logger.Info("Onboarding session closed", zap.String("session_id", sessionID))
}

// wizardFor resolves the session's wizard, rebuilding it from the draft
// store when the cached instance expired.
func (h *OnboardingHandler) wizardFor(c *gin.Context) (*wizard.Wizard, bool) {
	sess, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return nil, false
	}

	w := h.registry.GetOrCreate(c.Request.Context(), sess.SessionID, sess.UserID, sess.Role)
	return w, true
}
