package app

import (
	"context"

	"quiz-portal/internal/domain"
)

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	UserByUsername(ctx context.Context, username string) (domain.User, error)
	UserByID(ctx context.Context, id int64) (domain.User, error)
}

// QuizRepository persists quizzes together with their questions and options.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, draft domain.QuizDraft) (int64, error)
	ReplaceQuiz(ctx context.Context, quizID int64, draft domain.QuizDraft) error
	DeleteQuiz(ctx context.Context, quizID int64) error
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
	QuizExists(ctx context.Context, quizID int64) (bool, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// SubmissionRepository stores attempts and answers the reporting queries.
type SubmissionRepository interface {
	CorrectOptionIDs(ctx context.Context, optionIDs []int64) (map[int64]bool, error)
	CreateSubmission(ctx context.Context, sub *domain.Submission) error
	Leaderboard(ctx context.Context, quizID int64) (domain.Leaderboard, error)
	SubmissionLog(ctx context.Context) ([]domain.SubmissionRecord, error)
	Analytics(ctx context.Context) (domain.Analytics, error)
}

// SessionStore abstracts where login sessions live (in-memory, Redis).
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// QuizCache serves quiz content for participants and forgets it on change.
type QuizCache interface {
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
	Invalidate(ctx context.Context, quizID int64) error
}
