package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-portal/internal/domain"
)

// Store persists users, quizzes and submissions through bun. Every
// multi-statement operation runs in its own transaction and hands the
// bun.Tx down to the helpers explicitly.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *bun.DB {
	return s.db
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := tx.NewSelect().Model((*userRow)(nil)).Where("username = ?", user.Username).Exists(ctx)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return domain.ErrUsernameTaken
		}

		row := userRow{
			Username:     user.Username,
			PasswordHash: user.PasswordHash,
			IsAdmin:      user.IsAdmin,
		}
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrUsernameTaken
			}
			return fmt.Errorf("insert user: %w", err)
		}
		user.ID = row.ID
		return nil
	})
}

func (s *Store) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *Store) UserByID(ctx context.Context, id int64) (domain.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *Store) findUser(ctx context.Context, where string, arg interface{}) (domain.User, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where(where, arg).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return row.toDomain(), nil
}

func quizExists(ctx context.Context, db bun.IDB, quizID int64) (bool, error) {
	exists, err := db.NewSelect().Model((*quizRow)(nil)).Where("id = ?", quizID).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check quiz: %w", err)
	}
	return exists, nil
}
