package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-portal/internal/app"
	"quiz-portal/internal/domain"
)

func (s *Server) loginPage(c *gin.Context) {
	s.page(c, gin.H{"page": "login"})
}

func (s *Server) login(c *gin.Context) {
	var creds app.Credentials
	_ = c.ShouldBind(&creds)

	token, user, err := s.auth.Login(c.Request.Context(), creds)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		s.setNotice(c, "Invalid username or password")
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	s.setSession(c, token)
	s.log.WithField("user_id", user.ID).Info("user logged in")
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) logout(c *gin.Context) {
	token, _ := c.Cookie(sessionCookie)
	if err := s.auth.Logout(c.Request.Context(), token); err != nil {
		s.log.WithError(err).Warn("drop session")
	}
	s.clearSession(c)
	c.Redirect(http.StatusFound, "/login")
}

func (s *Server) registerPage(c *gin.Context) {
	s.page(c, gin.H{"page": "register"})
}

func (s *Server) register(c *gin.Context) {
	var creds app.Credentials
	_ = c.ShouldBind(&creds)

	_, err := s.auth.Register(c.Request.Context(), creds)
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		s.setNotice(c, "Username already exists")
		c.Redirect(http.StatusFound, "/register")
	case errors.Is(err, domain.ErrInvalidInput):
		s.setNotice(c, "Username and password are required")
		c.Redirect(http.StatusFound, "/register")
	case err != nil:
		s.fail(c, err)
	default:
		s.setNotice(c, "Registration successful. Please log in.")
		c.Redirect(http.StatusFound, "/login")
	}
}
