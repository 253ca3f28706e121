package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-portal/internal/domain"
)

// CorrectOptionIDs reports which of the given option ids exist and are
// flagged correct. Unknown ids are simply absent from the result.
func (s *Store) CorrectOptionIDs(ctx context.Context, optionIDs []int64) (map[int64]bool, error) {
	correct := make(map[int64]bool, len(optionIDs))
	if len(optionIDs) == 0 {
		return correct, nil
	}

	var ids []int64
	if err := s.db.NewSelect().
		Model((*optionRow)(nil)).
		Column("id").
		Where("id IN (?)", bun.In(optionIDs)).
		Where("is_correct = ?", true).
		Scan(ctx, &ids); err != nil {
		return nil, fmt.Errorf("load correct options: %w", err)
	}
	for _, id := range ids {
		correct[id] = true
	}
	return correct, nil
}

// CreateSubmission records one attempt. It fails with ErrQuizNotFound when
// the quiz is gone.
func (s *Store) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := quizExists(ctx, tx, sub.QuizID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrQuizNotFound
		}

		row := submissionRow{
			Score:     sub.Score,
			UserID:    sub.UserID,
			QuizID:    sub.QuizID,
			CreatedAt: sub.CreatedAt,
		}
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		sub.ID = row.ID
		return nil
	})
}

// Leaderboard lists every submission of the quiz, best score first and
// earlier submissions first among equal scores.
func (s *Store) Leaderboard(ctx context.Context, quizID int64) (domain.Leaderboard, error) {
	var quiz quizRow
	err := s.db.NewSelect().Model(&quiz).Where("id = ?", quizID).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Leaderboard{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("load quiz: %w", err)
	}

	entries, err := s.submissionRecords(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("s.quiz_id = ?", quizID).OrderExpr("s.score DESC, s.id ASC")
	})
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{QuizID: quiz.ID, Title: quiz.Title, Entries: entries}, nil
}

// SubmissionLog lists every submission, newest first.
func (s *Store) SubmissionLog(ctx context.Context) ([]domain.SubmissionRecord, error) {
	return s.submissionRecords(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("s.created_at DESC, s.id DESC")
	})
}

func (s *Store) submissionRecords(ctx context.Context, apply func(*bun.SelectQuery) *bun.SelectQuery) ([]domain.SubmissionRecord, error) {
	var rows []submissionRecordRow
	q := s.db.NewSelect().
		TableExpr("submissions AS s").
		ColumnExpr("s.id, s.score, s.user_id, s.quiz_id, s.created_at").
		ColumnExpr("u.username AS username").
		ColumnExpr("q.title AS quiz_title").
		Join("JOIN users AS u ON u.id = s.user_id").
		Join("JOIN quizzes AS q ON q.id = s.quiz_id").
		Apply(apply)
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}

	records := make([]domain.SubmissionRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.toDomain())
	}
	return records, nil
}

// Analytics counts users, quizzes and submissions.
func (s *Store) Analytics(ctx context.Context) (domain.Analytics, error) {
	var out domain.Analytics
	counts := []struct {
		model interface{}
		dst   *int
	}{
		{(*userRow)(nil), &out.TotalUsers},
		{(*quizRow)(nil), &out.TotalQuizzes},
		{(*submissionRow)(nil), &out.TotalSubmissions},
	}
	for _, c := range counts {
		n, err := s.db.NewSelect().Model(c.model).Count(ctx)
		if err != nil {
			return domain.Analytics{}, fmt.Errorf("count: %w", err)
		}
		*c.dst = n
	}
	return out, nil
}
