package sqldb

import (
	"time"

	"github.com/uptrace/bun"

	"quiz-portal/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64  `bun:"id,pk,autoincrement"`
	Username     string `bun:"username"`
	PasswordHash string `bun:"password_hash"`
	IsAdmin      bool   `bun:"is_admin"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{ID: r.ID, Username: r.Username, PasswordHash: r.PasswordHash, IsAdmin: r.IsAdmin}
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID          int64  `bun:"id,pk,autoincrement"`
	Title       string `bun:"title"`
	Description string `bun:"description"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qu"`

	ID       int64  `bun:"id,pk,autoincrement"`
	QuizID   int64  `bun:"quiz_id"`
	Text     string `bun:"text"`
	Position int    `bun:"position"`
}

type optionRow struct {
	bun.BaseModel `bun:"table:options,alias:o"`

	ID         int64  `bun:"id,pk,autoincrement"`
	QuestionID int64  `bun:"question_id"`
	Text       string `bun:"text"`
	IsCorrect  bool   `bun:"is_correct"`
	Position   int    `bun:"position"`
}

type submissionRow struct {
	bun.BaseModel `bun:"table:submissions,alias:s"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Score     int       `bun:"score"`
	UserID    int64     `bun:"user_id"`
	QuizID    int64     `bun:"quiz_id"`
	CreatedAt time.Time `bun:"created_at"`
}

// submissionRecordRow is the joined shape used by reports.
type submissionRecordRow struct {
	ID        int64     `bun:"id"`
	Score     int       `bun:"score"`
	UserID    int64     `bun:"user_id"`
	QuizID    int64     `bun:"quiz_id"`
	CreatedAt time.Time `bun:"created_at"`
	Username  string    `bun:"username"`
	QuizTitle string    `bun:"quiz_title"`
}

func (r submissionRecordRow) toDomain() domain.SubmissionRecord {
	return domain.SubmissionRecord{
		Submission: domain.Submission{
			ID:        r.ID,
			Score:     r.Score,
			UserID:    r.UserID,
			QuizID:    r.QuizID,
			CreatedAt: r.CreatedAt,
		},
		Username:  r.Username,
		QuizTitle: r.QuizTitle,
	}
}
