package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/bookclubhq/bookclub/internal/auth"
	"github.com/bookclubhq/bookclub/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// StateFeed streams auth state changes over a websocket so every connected
// screen observes the same current-user transitions simultaneously.
type StateFeed struct {
	auth     *auth.Service
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewStateFeed creates a state feed handler.
func NewStateFeed(authService *auth.Service, log zerolog.Logger) *StateFeed {
	return &StateFeed{
		auth: authService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log.With().Str("component", "state_feed").Logger(),
	}
}

// stateEvent is one pushed state snapshot.
type stateEvent struct {
	Type          string       `json:"type"`
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}

// Serve upgrades the connection and pushes the current user state, then
// every change, until the client disconnects.
func (f *StateFeed) Serve(c *gin.Context) {
	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		respondError(c, http.StatusBadRequest, "websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel := f.auth.CurrentUser().Subscribe()
	defer cancel()

	// Drain client frames so close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	pings := time.NewTicker(pingPeriod)
	defer pings.Stop()

	for {
		select {
		case user, ok := <-updates:
			if !ok {
				return
			}
			event := stateEvent{Type: "current_user", Authenticated: user != nil, User: user}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				f.log.Debug().Err(err).Msg("state feed client gone")
				return
			}
		case <-pings.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
