package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// leaderboardFeed streams the quiz leaderboard over a websocket: the current
// standings first, then a fresh snapshot after every submission.
func (s *Server) leaderboardFeed(c *gin.Context) {
	id, ok := quizID(c)
	if !ok {
		return
	}
	updates, cancel, err := s.reports.WatchLeaderboard(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer cancel()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	// Viewers only listen; reading keeps control frames flowing and notices hang-ups.
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case lb, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(outboundMessage[any]{Type: "leaderboard", Payload: lb}); err != nil {
				s.log.WithError(err).Debug("ws write failed")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
