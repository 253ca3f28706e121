package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"quiz-portal/internal/app"
	"quiz-portal/internal/metrics"
)

// Options wires the use cases and ambient services into the router.
type Options struct {
	Auth    *app.AuthService
	Quizzes *app.QuizService
	Reports *app.ReportService
	Logger  *logrus.Entry
	Metrics *metrics.Metrics

	// SessionTTL bounds the session cookie lifetime.
	SessionTTL    time.Duration
	SecureCookies bool
}

// Server holds the handlers shared by every route.
type Server struct {
	auth          *app.AuthService
	quizzes       *app.QuizService
	reports       *app.ReportService
	log           *logrus.Entry
	sessionTTL    time.Duration
	secureCookies bool
	upgrader      websocket.Upgrader
}

// NewRouter builds the gin engine with every route of the portal.
func NewRouter(opts Options) *gin.Engine {
	s := &Server{
		auth:          opts.Auth,
		quizzes:       opts.Quizzes,
		reports:       opts.Reports,
		log:           opts.Logger,
		sessionTTL:    opts.SessionTTL,
		secureCookies: opts.SecureCookies,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if s.log == nil {
		s.log = logrus.NewEntry(logrus.StandardLogger())
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = app.DefaultSessionTTL
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	guests := r.Group("/", s.guestOnly())
	guests.GET("/login", s.loginPage)
	guests.POST("/login", s.login)
	guests.GET("/register", s.registerPage)
	guests.POST("/register", s.register)
	r.GET("/logout", s.logout)

	pages := r.Group("/", s.requireAuth(false))
	pages.GET("/", s.index)
	pages.GET("/dashboard", s.dashboard)
	pages.GET("/quiz/:id", s.quizPage)
	pages.GET("/leaderboard/:id", s.leaderboard)

	admin := r.Group("/admin", s.requireAuth(false), s.requireAdmin())
	admin.GET("", s.adminDashboard)
	admin.GET("/create", s.createQuizPage)
	admin.POST("/create", s.createQuiz)
	admin.GET("/edit/:id", s.editQuizPage)
	admin.POST("/edit/:id", s.editQuiz)
	admin.POST("/delete_quiz/:id", s.deleteQuiz)
	admin.GET("/submissions", s.submissions)
	admin.GET("/analytics", s.analytics)

	api := r.Group("/api", s.requireAuth(true))
	api.GET("/quiz/:id", s.apiQuiz)
	api.POST("/submit/:id", s.apiSubmit)

	ws := r.Group("/ws", s.requireAuth(true))
	ws.GET("/leaderboard/:id", s.leaderboardFeed)

	return r
}
