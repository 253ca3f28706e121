package app

import (
	"sync"

	"quiz-portal/internal/domain"
)

// LeaderboardFeed fans leaderboard snapshots out to live viewers of a quiz.
type LeaderboardFeed struct {
	mu          sync.Mutex
	subscribers map[int64]map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardFeed() *LeaderboardFeed {
	return &LeaderboardFeed{subscribers: make(map[int64]map[chan domain.Leaderboard]struct{})}
}

// Subscribe registers a viewer and primes the channel with initial.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *LeaderboardFeed) Subscribe(quizID int64, initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	f.mu.Lock()
	subs, ok := f.subscribers[quizID]
	if !ok {
		subs = make(map[chan domain.Leaderboard]struct{})
		f.subscribers[quizID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subscribers[quizID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(f.subscribers, quizID)
		}
	}
	return ch, cancel
}

// HasSubscribers reports whether anyone is watching quizID.
func (f *LeaderboardFeed) HasSubscribers(quizID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[quizID]) > 0
}

// Publish delivers lb to every viewer of its quiz without blocking.
func (f *LeaderboardFeed) Publish(lb domain.Leaderboard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[lb.QuizID] {
		select {
		case ch <- lb:
		default:
			// slow viewer: drop its oldest snapshot to make room
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
