package sqldb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-portal/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open("sqlite://:memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = Migrate(context.Background(), db)
	require.NoError(t, err)
	return NewStore(db)
}

func capitalsDraft() domain.QuizDraft {
	return domain.QuizDraft{
		Title:       "Capitals",
		Description: "European capitals",
		Questions: []domain.QuestionDraft{
			{
				Text: "Capital of France?",
				Options: []domain.OptionDraft{
					{Text: "Paris", IsCorrect: true},
					{Text: "Lyon"},
				},
			},
			{
				Text: "Capital of Italy?",
				Options: []domain.OptionDraft{
					{Text: "Milan"},
					{Text: "Rome", IsCorrect: true},
				},
			},
		},
	}
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	alice := domain.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, store.CreateUser(ctx, &alice))
	assert.NotZero(t, alice.ID)

	dup := domain.User{Username: "alice", PasswordHash: "other"}
	assert.ErrorIs(t, store.CreateUser(ctx, &dup), domain.ErrUsernameTaken)

	loaded, err := store.UserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, loaded.ID)
	assert.False(t, loaded.IsAdmin)

	_, err = store.UserByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCreateAndGetQuizKeepsAuthoringOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.CreateQuiz(ctx, capitalsDraft())
	require.NoError(t, err)

	quiz, err := store.GetQuiz(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Capitals", quiz.Title)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, "Capital of France?", quiz.Questions[0].Text)
	require.Len(t, quiz.Questions[1].Options, 2)
	assert.Equal(t, "Milan", quiz.Questions[1].Options[0].Text)
	assert.True(t, quiz.Questions[1].Options[1].IsCorrect)

	_, err = store.GetQuiz(ctx, id+100)
	assert.ErrorIs(t, err, domain.ErrQuizNotFound)
}

func TestReplaceQuizSwapsQuestionSet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.CreateQuiz(ctx, capitalsDraft())
	require.NoError(t, err)
	before, err := store.GetQuiz(ctx, id)
	require.NoError(t, err)

	replacement := domain.QuizDraft{
		Title: "Capitals v2",
		Questions: []domain.QuestionDraft{
			{Text: "Capital of Spain?", Options: []domain.OptionDraft{{Text: "Madrid", IsCorrect: true}}},
		},
	}
	require.NoError(t, store.ReplaceQuiz(ctx, id, replacement))

	after, err := store.GetQuiz(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Capitals v2", after.Title)
	require.Len(t, after.Questions, 1)
	assert.Equal(t, "Capital of Spain?", after.Questions[0].Text)
	for _, old := range before.Questions {
		assert.NotEqual(t, old.ID, after.Questions[0].ID)
	}

	var orphans int
	orphans, err = store.DB().NewSelect().Table("options").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, orphans, "options of replaced questions must be deleted")

	assert.ErrorIs(t, store.ReplaceQuiz(ctx, id+100, replacement), domain.ErrQuizNotFound)
}

func TestDeleteQuizRemovesEverythingItOwns(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	user := domain.User{Username: "bob", PasswordHash: "hash"}
	require.NoError(t, store.CreateUser(ctx, &user))
	keep, err := store.CreateQuiz(ctx, capitalsDraft())
	require.NoError(t, err)
	drop, err := store.CreateQuiz(ctx, capitalsDraft())
	require.NoError(t, err)

	for _, quizID := range []int64{keep, drop} {
		sub := domain.Submission{Score: 1, UserID: user.ID, QuizID: quizID, CreatedAt: time.Now().UTC()}
		require.NoError(t, store.CreateSubmission(ctx, &sub))
	}

	require.NoError(t, store.DeleteQuiz(ctx, drop))

	_, err = store.GetQuiz(ctx, drop)
	assert.ErrorIs(t, err, domain.ErrQuizNotFound)
	_, err = store.Leaderboard(ctx, drop)
	assert.ErrorIs(t, err, domain.ErrQuizNotFound)

	for table, want := range map[string]int{"questions": 2, "options": 4, "submissions": 1} {
		n, err := store.DB().NewSelect().Table(table).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, n, table)
	}

	assert.ErrorIs(t, store.DeleteQuiz(ctx, drop), domain.ErrQuizNotFound)
}

func TestCorrectOptionIDs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.CreateQuiz(ctx, capitalsDraft())
	require.NoError(t, err)
	quiz, err := store.GetQuiz(ctx, id)
	require.NoError(t, err)

	paris := quiz.Questions[0].Options[0].ID
	lyon := quiz.Questions[0].Options[1].ID

	correct, err := store.CorrectOptionIDs(ctx, []int64{paris, lyon, 12345})
	require.NoError(t, err)
	assert.True(t, correct[paris])
	assert.False(t, correct[lyon])
	assert.False(t, correct[12345])

	empty, err := store.CorrectOptionIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLeaderboardAndLogOrdering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	alice := domain.User{Username: "alice", PasswordHash: "x"}
	bob := domain.User{Username: "bob", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(ctx, &alice))
	require.NoError(t, store.CreateUser(ctx, &bob))
	quizID, err := store.CreateQuiz(ctx, capitalsDraft())
	require.NoError(t, err)

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	subs := []domain.Submission{
		{Score: 1, UserID: alice.ID, QuizID: quizID, CreatedAt: base},
		{Score: 2, UserID: bob.ID, QuizID: quizID, CreatedAt: base.Add(time.Minute)},
		{Score: 1, UserID: bob.ID, QuizID: quizID, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range subs {
		require.NoError(t, store.CreateSubmission(ctx, &subs[i]))
	}

	lb, err := store.Leaderboard(ctx, quizID)
	require.NoError(t, err)
	assert.Equal(t, "Capitals", lb.Title)
	require.Len(t, lb.Entries, 3)
	assert.Equal(t, subs[1].ID, lb.Entries[0].ID)
	assert.Equal(t, "bob", lb.Entries[0].Username)
	assert.Equal(t, subs[0].ID, lb.Entries[1].ID, "ties keep insertion order")
	assert.Equal(t, subs[2].ID, lb.Entries[2].ID)

	log, err := store.SubmissionLog(ctx)
	require.NoError(t, err)
	require.Len(t, log, 3)
	assert.Equal(t, subs[2].ID, log[0].ID)
	assert.Equal(t, "Capitals", log[0].QuizTitle)
	assert.Equal(t, subs[0].ID, log[2].ID)

	stats, err := store.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Analytics{TotalUsers: 2, TotalQuizzes: 1, TotalSubmissions: 3}, stats)
}

func TestCreateSubmissionUnknownQuiz(t *testing.T) {
	store := newTestStore(t)
	sub := domain.Submission{Score: 0, UserID: 1, QuizID: 42, CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, store.CreateSubmission(context.Background(), &sub), domain.ErrQuizNotFound)
}

func TestSQLiteDSN(t *testing.T) {
	cases := map[string]string{
		"sqlite:///quiz.db":     "file:quiz.db",
		"sqlite:////tmp/q.db":   "file:/tmp/q.db",
		"sqlite://":             ":memory:",
		"sqlite://:memory:":     ":memory:",
		"file:quiz.db?mode=rwc": "file:quiz.db?mode=rwc",
	}
	for in, want := range cases {
		assert.Equal(t, want, sqliteDSN(in), in)
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open("oracle://nope", 0)
	assert.Error(t, err)
}
