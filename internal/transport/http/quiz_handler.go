package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quiz-portal/internal/app"
	"quiz-portal/internal/domain"
)

type quizSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type submitRequest struct {
	Answers map[string]app.OptionRef `json:"answers"`
}

// quizID parses the :id segment; anything but an integer is a 404 as with
// any other unknown path.
func quizID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": domain.ErrQuizNotFound.Error()})
		return 0, false
	}
	return id, true
}

func (s *Server) index(c *gin.Context) {
	if currentUser(c).IsAdmin {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

func (s *Server) dashboard(c *gin.Context) {
	summaries, err := s.quizSummaries(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.page(c, gin.H{"page": "dashboard", "user": currentUser(c), "quizzes": summaries})
}

func (s *Server) quizSummaries(c *gin.Context) ([]quizSummary, error) {
	quizzes, err := s.quizzes.ListQuizzes(c.Request.Context())
	if err != nil {
		return nil, err
	}
	out := make([]quizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, quizSummary{ID: q.ID, Title: q.Title, Description: q.Description})
	}
	return out, nil
}

func (s *Server) quizPage(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}
	view, err := s.quizzes.GetQuizForTaking(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.page(c, gin.H{"page": "take_quiz", "quiz": view})
}

func (s *Server) leaderboard(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}
	lb, err := s.reports.Leaderboard(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lb)
}

func (s *Server) apiQuiz(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}
	view, err := s.quizzes.GetQuizForTaking(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) apiSubmit(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid submission payload"})
		return
	}
	result, err := s.quizzes.SubmitQuiz(c.Request.Context(), id, currentUser(c).ID, req.Answers)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Quiz submitted successfully",
		"score":   result.Score,
		"total":   result.Total,
	})
}
