package http

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-portal/internal/domain"
)

func TestLeaderboardFeedStreamsSubmissions(t *testing.T) {
	h := newHarness(t)
	admin := h.login(t, "admin", "password")
	quizID := h.createCapitals(t, admin)
	user := h.login(t, "alice", "pw")

	server := httptest.NewServer(h.router)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws/leaderboard/" + strconv.FormatInt(quizID, 10)
	header := http.Header{}
	header.Add("Cookie", user.Name+"="+user.Value)
	conn, _, err := websocket.DefaultDialer.Dial(u, header)
	require.NoError(t, err)
	defer conn.Close()

	// Expect the current (empty) standings first.
	initial := readLeaderboard(t, conn)
	assert.Equal(t, quizID, initial.QuizID)
	assert.Empty(t, initial.Entries)

	rec := h.postJSON("/api/submit/"+strconv.FormatInt(quizID, 10), map[string]any{"answers": map[string]any{}}, user)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	update := readLeaderboard(t, conn)
	require.Len(t, update.Entries, 1)
	assert.Equal(t, "alice", update.Entries[0].Username)
}

func TestLeaderboardFeedRejectsAnonymousAndUnknownQuiz(t *testing.T) {
	h := newHarness(t)
	server := httptest.NewServer(h.router)
	defer server.Close()
	base := "ws" + server.URL[len("http"):] + "/ws/leaderboard/"

	_, resp, err := websocket.DefaultDialer.Dial(base+"1", nil)
	require.Error(t, err, "expected anonymous dial to fail")
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	user := h.login(t, "alice", "pw")
	header := http.Header{}
	header.Add("Cookie", user.Name+"="+user.Value)
	_, resp, err = websocket.DefaultDialer.Dial(base+"999", header)
	require.Error(t, err, "expected dial to unknown quiz to fail")
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func readLeaderboard(t *testing.T, conn *websocket.Conn) domain.Leaderboard {
	t.Helper()
	var msg struct {
		Type    string             `json:"type"`
		Payload domain.Leaderboard `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "leaderboard", msg.Type)
	return msg.Payload
}
