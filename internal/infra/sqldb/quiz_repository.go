package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-portal/internal/domain"
)

// CreateQuiz inserts the quiz, then each question, then its options.
func (s *Store) CreateQuiz(ctx context.Context, draft domain.QuizDraft) (int64, error) {
	var quizID int64
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := quizRow{Title: draft.Title, Description: draft.Description}
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		quizID = row.ID
		return insertQuestions(ctx, tx, quizID, draft.Questions)
	})
	if err != nil {
		return 0, err
	}
	return quizID, nil
}

// ReplaceQuiz overwrites title and description and swaps the whole question
// set. Old question and option ids are not preserved.
func (s *Store) ReplaceQuiz(ctx context.Context, quizID int64, draft domain.QuizDraft) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := quizExists(ctx, tx, quizID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrQuizNotFound
		}

		if _, err := tx.NewUpdate().
			Table("quizzes").
			Set("title = ?", draft.Title).
			Set("description = ?", draft.Description).
			Where("id = ?", quizID).
			Exec(ctx); err != nil {
			return fmt.Errorf("update quiz: %w", err)
		}
		if err := deleteQuestions(ctx, tx, quizID); err != nil {
			return err
		}
		return insertQuestions(ctx, tx, quizID, draft.Questions)
	})
}

// DeleteQuiz removes options, questions, submissions and the quiz, in that order.
func (s *Store) DeleteQuiz(ctx context.Context, quizID int64) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := quizExists(ctx, tx, quizID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrQuizNotFound
		}

		if err := deleteQuestions(ctx, tx, quizID); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Table("submissions").Where("quiz_id = ?", quizID).Exec(ctx); err != nil {
			return fmt.Errorf("delete submissions: %w", err)
		}
		if _, err := tx.NewDelete().Table("quizzes").Where("id = ?", quizID).Exec(ctx); err != nil {
			return fmt.Errorf("delete quiz: %w", err)
		}
		return nil
	})
}

func (s *Store) QuizExists(ctx context.Context, quizID int64) (bool, error) {
	return quizExists(ctx, s.db, quizID)
}

// GetQuiz loads a quiz with its questions and options in authoring order.
func (s *Store) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	var row quizRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", quizID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	quiz := domain.Quiz{ID: row.ID, Title: row.Title, Description: row.Description}

	var questions []questionRow
	if err := s.db.NewSelect().
		Model(&questions).
		Where("quiz_id = ?", quizID).
		OrderExpr("position ASC, id ASC").
		Scan(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		quiz.Questions = []domain.Question{}
		return quiz, nil
	}

	ids := make([]int64, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	var options []optionRow
	if err := s.db.NewSelect().
		Model(&options).
		Where("question_id IN (?)", bun.In(ids)).
		OrderExpr("position ASC, id ASC").
		Scan(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("load options: %w", err)
	}

	byQuestion := make(map[int64][]domain.Option, len(questions))
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], domain.Option{
			ID:        o.ID,
			Text:      o.Text,
			IsCorrect: o.IsCorrect,
		})
	}

	quiz.Questions = make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		opts := byQuestion[q.ID]
		if opts == nil {
			opts = []domain.Option{}
		}
		quiz.Questions = append(quiz.Questions, domain.Question{ID: q.ID, Text: q.Text, Options: opts})
	}
	return quiz, nil
}

// LoadQuiz lets the store back the quiz caches.
func (s *Store) LoadQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	return s.GetQuiz(ctx, quizID)
}

// ListQuizzes returns quiz headers without questions.
func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var rows []quizRow
	if err := s.db.NewSelect().Model(&rows).Order("id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(rows))
	for _, r := range rows {
		quizzes = append(quizzes, domain.Quiz{ID: r.ID, Title: r.Title, Description: r.Description})
	}
	return quizzes, nil
}

func insertQuestions(ctx context.Context, db bun.IDB, quizID int64, questions []domain.QuestionDraft) error {
	for i, q := range questions {
		qrow := questionRow{QuizID: quizID, Text: q.Text, Position: i}
		if _, err := db.NewInsert().Model(&qrow).Exec(ctx); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		if len(q.Options) == 0 {
			continue
		}

		orows := make([]optionRow, 0, len(q.Options))
		for j, o := range q.Options {
			orows = append(orows, optionRow{
				QuestionID: qrow.ID,
				Text:       o.Text,
				IsCorrect:  o.IsCorrect,
				Position:   j,
			})
		}
		if _, err := db.NewInsert().Model(&orows).Exec(ctx); err != nil {
			return fmt.Errorf("insert options: %w", err)
		}
	}
	return nil
}

// deleteQuestions removes options before the questions they belong to.
func deleteQuestions(ctx context.Context, db bun.IDB, quizID int64) error {
	questionIDs := db.NewSelect().Table("questions").Column("id").Where("quiz_id = ?", quizID)
	if _, err := db.NewDelete().Table("options").Where("question_id IN (?)", questionIDs).Exec(ctx); err != nil {
		return fmt.Errorf("delete options: %w", err)
	}
	if _, err := db.NewDelete().Table("questions").Where("quiz_id = ?", quizID).Exec(ctx); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	return nil
}
