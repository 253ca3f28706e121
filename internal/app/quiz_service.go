package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"quiz-portal/internal/domain"
)

// SubmissionObserver is told about every stored submission (metrics).
type SubmissionObserver interface {
	SubmissionRecorded()
}

// QuizService contains the authoring and quiz-taking use cases.
type QuizService struct {
	quizzes     QuizRepository
	submissions SubmissionRepository
	cache       QuizCache
	feed        *LeaderboardFeed
	observer    SubmissionObserver
	now         func() time.Time
	validate    *validator.Validate
}

func NewQuizService(quizzes QuizRepository, submissions SubmissionRepository, cache QuizCache, feed *LeaderboardFeed) *QuizService {
	return &QuizService{
		quizzes:     quizzes,
		submissions: submissions,
		cache:       cache,
		feed:        feed,
		now:         time.Now,
		validate:    validator.New(),
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(quizzes QuizRepository, submissions SubmissionRepository, cache QuizCache, feed *LeaderboardFeed, now func() time.Time) *QuizService {
	s := NewQuizService(quizzes, submissions, cache, feed)
	s.now = now
	return s
}

// ObserveSubmissions registers the hook called after each stored submission.
func (s *QuizService) ObserveSubmissions(observer SubmissionObserver) {
	s.observer = observer
}

// CreateQuiz stores a new quiz with all its questions and options.
func (s *QuizService) CreateQuiz(ctx context.Context, draft domain.QuizDraft) (int64, error) {
	if err := s.check(draft); err != nil {
		return 0, err
	}
	return s.quizzes.CreateQuiz(ctx, draft)
}

// EditQuiz replaces title, description and the full question set. An unknown
// quiz is reported before the payload is validated.
func (s *QuizService) EditQuiz(ctx context.Context, quizID int64, draft domain.QuizDraft) error {
	if err := s.RequireQuiz(ctx, quizID); err != nil {
		return err
	}
	if err := s.check(draft); err != nil {
		return err
	}
	if err := s.quizzes.ReplaceQuiz(ctx, quizID, draft); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, quizID)
}

// DeleteQuiz removes the quiz with its questions, options and submissions.
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID int64) error {
	if err := s.quizzes.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, quizID)
}

// RequireQuiz returns domain.ErrQuizNotFound unless the quiz exists.
func (s *QuizService) RequireQuiz(ctx context.Context, quizID int64) error {
	exists, err := s.quizzes.QuizExists(ctx, quizID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrQuizNotFound
	}
	return nil
}

// GetQuizForEditing returns the quiz including correctness flags.
func (s *QuizService) GetQuizForEditing(ctx context.Context, quizID int64) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.quizzes.ListQuizzes(ctx)
}

// GetQuizForTaking returns the participant view, never the correct answers.
func (s *QuizService) GetQuizForTaking(ctx context.Context, quizID int64) (domain.QuizView, error) {
	quiz, err := s.cache.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizView{}, err
	}
	return quiz.View(), nil
}

// SubmitQuiz scores answers (question id -> chosen option) and records the
// attempt. Each answer whose option exists and is correct adds one point;
// total is the number of answers given. Options are not checked against
// the quiz or the question they answer.
func (s *QuizService) SubmitQuiz(ctx context.Context, quizID, userID int64, answers map[string]OptionRef) (domain.ScoreResult, error) {
	ids := make([]int64, 0, len(answers))
	for _, ref := range answers {
		if id, ok := ref.ID(); ok {
			ids = append(ids, id)
		}
	}
	correct, err := s.submissions.CorrectOptionIDs(ctx, ids)
	if err != nil {
		return domain.ScoreResult{}, err
	}

	result := domain.ScoreResult{Total: len(answers)}
	for _, ref := range answers {
		if id, ok := ref.ID(); ok && correct[id] {
			result.Score++
		}
	}

	sub := domain.Submission{
		Score:     result.Score,
		UserID:    userID,
		QuizID:    quizID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.submissions.CreateSubmission(ctx, &sub); err != nil {
		return domain.ScoreResult{}, err
	}
	if s.observer != nil {
		s.observer.SubmissionRecorded()
	}
	s.publish(ctx, quizID)
	return result, nil
}

func (s *QuizService) publish(ctx context.Context, quizID int64) {
	if s.feed == nil || !s.feed.HasSubscribers(quizID) {
		return
	}
	// The submission is already stored; a failed refresh only delays viewers.
	if lb, err := s.submissions.Leaderboard(ctx, quizID); err == nil {
		s.feed.Publish(lb)
	}
}

func (s *QuizService) check(draft domain.QuizDraft) error {
	if err := s.validate.Struct(draft); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed on %s", domain.ErrInvalidQuiz, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidQuiz, err)
	}
	return nil
}

// OptionRef is a chosen option id as posted by a client. Browsers send radio
// values as strings, API clients send numbers; both are accepted.
type OptionRef struct {
	raw string
}

// OptionID builds a reference from a numeric id.
func OptionID(id int64) OptionRef {
	return OptionRef{raw: strconv.FormatInt(id, 10)}
}

// ID returns the option id, or false when the value is not an integer.
func (r OptionRef) ID() (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (r OptionRef) String() string {
	return r.raw
}

func (r *OptionRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		r.raw = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// null, booleans and objects still count as an (unscorable) answer
		r.raw = string(data)
		return nil
	}
	r.raw = n.String()
	return nil
}

func (r OptionRef) MarshalJSON() ([]byte, error) {
	if id, ok := r.ID(); ok {
		return []byte(strconv.FormatInt(id, 10)), nil
	}
	return json.Marshal(r.raw)
}
