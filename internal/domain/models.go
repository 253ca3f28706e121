package domain

import "time"

// User is an account that can take quizzes; admins can also author them.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
}

// Option represents a possible answer for a question.
type Option struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question models an MCQ prompt and its options.
type Question struct {
	ID      int64    `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Quiz is a collection of questions.
type Quiz struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

// QuizDraft is the authoring payload for creating or replacing a quiz.
type QuizDraft struct {
	Title       string          `json:"title" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=500"`
	Questions   []QuestionDraft `json:"questions" validate:"dive"`
}

type QuestionDraft struct {
	Text    string        `json:"text" validate:"max=500"`
	Options []OptionDraft `json:"options" validate:"dive"`
}

type OptionDraft struct {
	Text      string `json:"text" validate:"max=200"`
	IsCorrect bool   `json:"is_correct"`
}

// QuizView is what a participant sees before answering. It never carries
// correctness flags.
type QuizView struct {
	ID        int64          `json:"id"`
	Title     string         `json:"title"`
	Questions []QuestionView `json:"questions"`
}

type QuestionView struct {
	ID      int64        `json:"id"`
	Text    string       `json:"text"`
	Options []OptionView `json:"options"`
}

type OptionView struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// Submission is one recorded attempt at a quiz.
type Submission struct {
	ID        int64     `json:"id"`
	Score     int       `json:"score"`
	UserID    int64     `json:"user_id"`
	QuizID    int64     `json:"quiz_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmissionRecord is a submission joined with the names shown in reports.
type SubmissionRecord struct {
	Submission
	Username  string `json:"username"`
	QuizTitle string `json:"quiz_title"`
}

// Leaderboard captures the ranked submissions for a quiz.
type Leaderboard struct {
	QuizID  int64              `json:"quiz_id"`
	Title   string             `json:"title"`
	Entries []SubmissionRecord `json:"entries"`
}

// ScoreResult is returned to the participant after submitting.
type ScoreResult struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// Analytics holds the aggregate counters shown to admins.
type Analytics struct {
	TotalUsers       int `json:"total_users"`
	TotalQuizzes     int `json:"total_quizzes"`
	TotalSubmissions int `json:"total_submissions"`
}

// Session binds an authenticated browser to a user until logout or expiry.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// View strips correctness flags so the quiz can be sent to a participant.
func (q Quiz) View() QuizView {
	view := QuizView{
		ID:        q.ID,
		Title:     q.Title,
		Questions: make([]QuestionView, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		qv := QuestionView{
			ID:      question.ID,
			Text:    question.Text,
			Options: make([]OptionView, 0, len(question.Options)),
		}
		for _, opt := range question.Options {
			qv.Options = append(qv.Options, OptionView{ID: opt.ID, Text: opt.Text})
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}
