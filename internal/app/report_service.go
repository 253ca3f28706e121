package app

import (
	"context"

	"quiz-portal/internal/domain"
)

// ReportService answers the read-only views over recorded submissions.
type ReportService struct {
	submissions SubmissionRepository
	feed        *LeaderboardFeed
}

func NewReportService(submissions SubmissionRepository, feed *LeaderboardFeed) *ReportService {
	return &ReportService{submissions: submissions, feed: feed}
}

// Leaderboard ranks every submission of a quiz by score, then by age.
func (s *ReportService) Leaderboard(ctx context.Context, quizID int64) (domain.Leaderboard, error) {
	return s.submissions.Leaderboard(ctx, quizID)
}

// SubmissionLog lists all submissions, newest first.
func (s *ReportService) SubmissionLog(ctx context.Context) ([]domain.SubmissionRecord, error) {
	return s.submissions.SubmissionLog(ctx)
}

func (s *ReportService) Analytics(ctx context.Context) (domain.Analytics, error) {
	return s.submissions.Analytics(ctx)
}

// WatchLeaderboard returns the current leaderboard followed by a fresh
// snapshot after every submission to the quiz.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *ReportService) WatchLeaderboard(ctx context.Context, quizID int64) (<-chan domain.Leaderboard, func(), error) {
	lb, err := s.submissions.Leaderboard(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.Subscribe(quizID, lb)
	return ch, cancel, nil
}
