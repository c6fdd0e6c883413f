package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/buildlink/onboarding-api/internal/models"
	"github.com/buildlink/onboarding-api/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

func newSessionTestRouter(tm *jwt.TokenManager, handlerCalled *bool, captured **Session) *gin.Engine {
	router := gin.New()
	router.Use(SessionMiddleware(tm, "", false))
	router.GET("/test", func(c *gin.Context) {
		*handlerCalled = true
		if captured != nil {
			if s, err := GetSession(c); err == nil {
				*captured = s
			}
		}
		c.Status(http.StatusOK)
	})
	return router
}

func TestSessionMiddleware_ValidBearerToken(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "onboarding-api", 1)
	token, err := tm.GenerateToken("sess-1", 42, "developer")
	require.NoError(t, err)

	handlerCalled := false
	var session *Session
	router := newSessionTestRouter(tm, &handlerCalled, &session)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, handlerCalled)
	require.NotNil(t, session)
	assert.Equal(t, "sess-1", session.SessionID)
	assert.Equal(t, 42, session.UserID)
	assert.Equal(t, models.RoleDeveloper, session.Role)
}

func TestSessionMiddleware_ValidCookie(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "onboarding-api", 1)
	token, err := tm.GenerateToken("sess-2", 7, "client")
	require.NoError(t, err)

	handlerCalled := false
	var session *Session
	router := newSessionTestRouter(tm, &handlerCalled, &session)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, handlerCalled)
	require.NotNil(t, session)
	assert.Equal(t, models.RoleClient, session.Role)
}

func TestSessionMiddleware_MissingToken(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "onboarding-api", 1)
	handlerCalled := false
	router := newSessionTestRouter(tm, &handlerCalled, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, handlerCalled)
}

func TestSessionMiddleware_InvalidToken(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "onboarding-api", 1)
	handlerCalled := false
	router := newSessionTestRouter(tm, &handlerCalled, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, handlerCalled)
}

func TestSessionMiddleware_WrongSecret(t *testing.T) {
	issuer := jwt.NewTokenManager("other-secret", "onboarding-api", 1)
	token, err := issuer.GenerateToken("sess-1", 42, "developer")
	require.NoError(t, err)

	tm := jwt.NewTokenManager("test-secret", "onboarding-api", 1)
	handlerCalled := false
	router := newSessionTestRouter(tm, &handlerCalled, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, handlerCalled)
}

func TestSessionMiddleware_ExpiredToken(t *testing.T) {
	// Negative TTL mints an already-expired token with the right secret.
	expired := jwt.NewTokenManager("test-secret", "onboarding-api", -1)
	token, err := expired.GenerateToken("sess-1", 42, "developer")
	require.NoError(t, err)

	tm := jwt.NewTokenManager("test-secret", "onboarding-api", 1)
	handlerCalled := false
	router := newSessionTestRouter(tm, &handlerCalled, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, handlerCalled)
	assert.Contains(t, w.Body.String(), "Session expired")

	// The stale cookie must be cleared so the client re-starts cleanly.
	cleared := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == SessionCookieName && cookie.Value == "" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestSessionMiddleware_UnknownRole(t *testing.T) {
	tm := jwt.NewTokenManager("test-secret", "onboarding-api", 1)
	token, err := tm.GenerateToken("sess-1", 42, "admin")
	require.NoError(t, err)

	handlerCalled := false
	router := newSessionTestRouter(tm, &handlerCalled, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, handlerCalled)
}

func TestGetSession_NotInContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	session, err := GetSession(c)
	assert.Nil(t, session)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSetSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SetSessionCookie(c, "token-value", 3600, "example.com", true)

	setCookie := w.Header().Get("Set-Cookie")
	assert.True(t, strings.Contains(setCookie, SessionCookieName+"=token-value"))
	assert.True(t, strings.Contains(setCookie, "HttpOnly"))
	assert.True(t, strings.Contains(setCookie, "Secure"))
	assert.True(t, strings.Contains(setCookie, "SameSite=Lax"))
}
