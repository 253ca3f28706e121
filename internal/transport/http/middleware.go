package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quiz-portal/internal/domain"
)

const (
	sessionCookie = "session"
	noticeCookie  = "notice"
	userKey       = "user"
	requestIDKey  = "request_id"
)

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		entry := s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Error("request failed")
			return
		}
		entry.Info("request")
	}
}

// requireAuth resolves the session cookie. Page routes bounce to /login;
// api routes answer 401.
func (s *Server) requireAuth(api bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(sessionCookie)
		user, err := s.auth.Authenticate(c.Request.Context(), token)
		if err == nil {
			c.Set(userKey, user)
			c.Next()
			return
		}
		if !errors.Is(err, domain.ErrUnauthenticated) {
			s.fail(c, err)
			return
		}
		if api {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		s.setNotice(c, "Please log in to access this page.")
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// guestOnly sends visitors who already hold a valid session to the index.
func (s *Server) guestOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		if _, err := s.auth.Authenticate(c.Request.Context(), token); err == nil {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// requireAdmin sends non-admins back to their dashboard.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).IsAdmin {
			c.Next()
			return
		}
		s.setNotice(c, domain.ErrForbidden.Error())
		c.Redirect(http.StatusFound, "/dashboard")
		c.Abort()
	}
}

func currentUser(c *gin.Context) domain.User {
	user, _ := c.MustGet(userKey).(domain.User)
	return user
}

func (s *Server) setSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(s.sessionTTL.Seconds()), "/", "", s.secureCookies, true)
}

func (s *Server) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", s.secureCookies, true)
}

// setNotice leaves a one-shot message for the next page the browser loads.
func (s *Server) setNotice(c *gin.Context, msg string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(noticeCookie, msg, 60, "/", "", s.secureCookies, true)
}

// takeNotice returns and clears the pending notice, if any.
func (s *Server) takeNotice(c *gin.Context) string {
	msg, err := c.Cookie(noticeCookie)
	if err != nil || msg == "" {
		return ""
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(noticeCookie, "", -1, "/", "", s.secureCookies, true)
	return msg
}

// page renders a page document, attaching the pending notice.
func (s *Server) page(c *gin.Context, body gin.H) {
	if notice := s.takeNotice(c); notice != "" {
		body["notice"] = notice
	}
	c.JSON(http.StatusOK, body)
}

// fail maps a use-case error onto a JSON error response.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuiz), errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUsernameTaken):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
