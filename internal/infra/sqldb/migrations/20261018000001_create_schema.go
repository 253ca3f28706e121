package migrations

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

// Tables as they existed when this migration was written.

type user struct {
	bun.BaseModel `bun:"table:users"`

	ID           int64  `bun:"id,pk,autoincrement"`
	Username     string `bun:"username,notnull,unique,type:varchar(64)"`
	PasswordHash string `bun:"password_hash,notnull,type:varchar(256)"`
	IsAdmin      bool   `bun:"is_admin,notnull,default:false"`
}

type quiz struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID          int64  `bun:"id,pk,autoincrement"`
	Title       string `bun:"title,notnull,type:varchar(100)"`
	Description string `bun:"description,type:varchar(500)"`
}

type question struct {
	bun.BaseModel `bun:"table:questions"`

	ID       int64  `bun:"id,pk,autoincrement"`
	QuizID   int64  `bun:"quiz_id,notnull"`
	Text     string `bun:"text,notnull,type:varchar(500)"`
	Position int    `bun:"position,notnull,default:0"`
}

type option struct {
	bun.BaseModel `bun:"table:options"`

	ID         int64  `bun:"id,pk,autoincrement"`
	QuestionID int64  `bun:"question_id,notnull"`
	Text       string `bun:"text,notnull,type:varchar(200)"`
	IsCorrect  bool   `bun:"is_correct,notnull,default:false"`
	Position   int    `bun:"position,notnull,default:0"`
}

type submission struct {
	bun.BaseModel `bun:"table:submissions"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Score     int       `bun:"score,notnull"`
	UserID    int64     `bun:"user_id,notnull"`
	QuizID    int64     `bun:"quiz_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			tables := []struct {
				model       interface{}
				foreignKeys []string
			}{
				{model: (*user)(nil)},
				{model: (*quiz)(nil)},
				{model: (*question)(nil), foreignKeys: []string{`(quiz_id) REFERENCES quizzes (id)`}},
				{model: (*option)(nil), foreignKeys: []string{`(question_id) REFERENCES questions (id)`}},
				{model: (*submission)(nil), foreignKeys: []string{
					`(user_id) REFERENCES users (id)`,
					`(quiz_id) REFERENCES quizzes (id)`,
				}},
			}
			for _, t := range tables {
				q := db.NewCreateTable().Model(t.model).IfNotExists()
				for _, fk := range t.foreignKeys {
					q = q.ForeignKey(fk)
				}
				if _, err := q.Exec(ctx); err != nil {
					return fmt.Errorf("create table: %w", err)
				}
			}

			indexes := []struct {
				model   interface{}
				name    string
				columns []string
			}{
				{(*question)(nil), "idx_questions_quiz_id", []string{"quiz_id"}},
				{(*option)(nil), "idx_options_question_id", []string{"question_id"}},
				{(*submission)(nil), "idx_submissions_quiz_score", []string{"quiz_id", "score"}},
			}
			for _, idx := range indexes {
				if _, err := db.NewCreateIndex().
					Model(idx.model).
					Index(idx.name).
					Column(idx.columns...).
					Exec(ctx); err != nil {
					return fmt.Errorf("create index %s: %w", idx.name, err)
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			for _, model := range []interface{}{
				(*submission)(nil),
				(*option)(nil),
				(*question)(nil),
				(*quiz)(nil),
				(*user)(nil),
			} {
				if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
