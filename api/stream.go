package api

import (
	"io"
	"net/http"

	"summa/domain/entities"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type summaryEvent struct {
	Summary *entities.SessionSummary `json:"summary"`
	Error   string                   `json:"error,omitempty"`
}

// streamGameSession pushes a summary event every time the session or its
// players change, until the client goes away
func (s *Server) streamGameSession(c *gin.Context) {
	id := c.Param("id")
	sub := s.hooks.GameSessions().WatchSummary(c.Request.Context(), id)
	defer sub.Cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	states := sub.States()
	c.Stream(func(w io.Writer) bool {
		state, ok := <-states
		if !ok {
			return false
		}
		if state.Loading {
			return true
		}

		event := summaryEvent{Summary: state.Data}
		if state.Err != nil {
			log.WithField("gameSessionId", id).WithError(state.Err).Warn("Game session stream load failed")
			event.Error = http.StatusText(statusFor(state.Err))
		}
		if state.Data == nil && state.Err == nil {
			c.SSEvent("missing", event)
			return true
		}
		c.SSEvent("summary", event)
		return true
	})
}
