package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-portal/internal/domain"
)

func (s *Server) adminDashboard(c *gin.Context) {
	summaries, err := s.quizSummaries(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.page(c, gin.H{"page": "admin_dashboard", "user": currentUser(c), "quizzes": summaries})
}

func (s *Server) createQuizPage(c *gin.Context) {
	s.page(c, gin.H{"page": "create_quiz", "quiz": domain.QuizDraft{Questions: []domain.QuestionDraft{}}})
}

func (s *Server) createQuiz(c *gin.Context) {
	var draft domain.QuizDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid quiz payload"})
		return
	}
	id, err := s.quizzes.CreateQuiz(c.Request.Context(), draft)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.log.WithField("quiz_id", id).Info("quiz created")
	c.JSON(http.StatusOK, gin.H{"message": "Quiz created successfully", "quiz_id": id})
}

func (s *Server) editQuizPage(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}
	quiz, err := s.quizzes.GetQuizForEditing(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if quiz.Questions == nil {
		quiz.Questions = []domain.Question{}
	}
	s.page(c, gin.H{"page": "edit_quiz", "quiz": quiz})
}

func (s *Server) editQuiz(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}
	if err := s.quizzes.RequireQuiz(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	var draft domain.QuizDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid quiz payload"})
		return
	}
	if err := s.quizzes.EditQuiz(c.Request.Context(), id, draft); err != nil {
		s.fail(c, err)
		return
	}
	s.log.WithField("quiz_id", id).Info("quiz updated")
	c.JSON(http.StatusOK, gin.H{"message": "Quiz updated successfully", "quiz_id": id})
}

func (s *Server) deleteQuiz(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}
	if err := s.quizzes.DeleteQuiz(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	s.log.WithField("quiz_id", id).Info("quiz deleted")
	s.setNotice(c, "Quiz deleted successfully")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (s *Server) submissions(c *gin.Context) {
	log, err := s.reports.SubmissionLog(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.page(c, gin.H{"page": "submissions", "submissions": log})
}

func (s *Server) analytics(c *gin.Context) {
	stats, err := s.reports.Analytics(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
