package api

import (
	"errors"
	"net/http"
	"time"

	"summa/domain/entities"

	"github.com/gin-gonic/gin"
)

type addPlayerRequest struct {
	Username string `json:"username" binding:"required"`
}

type createGameSessionResponse struct {
	ID string `json:"id"`
}

type endGameSessionRequest struct {
	EndedAt *time.Time `json:"endedAt"`
}

func (s *Server) getMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentAccount(c))
}

func (s *Server) updateMe(c *gin.Context) {
	var patch entities.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortBadRequest(c, err)
		return
	}

	user, err := s.hooks.Users().UpdateMe(c.Request.Context(), currentAccount(c), &patch)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) getUser(c *gin.Context) {
	username := c.Param("username")
	user, err := s.hooks.Users().GetByUsername(c.Request.Context(), username)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if user == nil {
		abortWithError(c, &entities.NotFoundError{Resource: "user", Key: username})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) createGameSession(c *gin.Context) {
	var input entities.GameSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortBadRequest(c, err)
		return
	}

	id, err := s.hooks.GameSessions().Create(c.Request.Context(), currentAccount(c), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createGameSessionResponse{ID: id})
}

func (s *Server) listOngoingGameSessions(c *gin.Context) {
	sessions, err := s.hooks.GameSessions().Ongoing(c.Request.Context(), currentAccount(c).ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) getGameSession(c *gin.Context) {
	id := c.Param("id")
	summary, err := s.hooks.GameSessions().Summary(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if summary == nil {
		abortWithError(c, &entities.NotFoundError{Resource: "game session", Key: id})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) endGameSession(c *gin.Context) {
	var req endGameSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortBadRequest(c, err)
			return
		}
	}

	at := entities.ServerTimestamp()
	if req.EndedAt != nil {
		at = entities.At(*req.EndedAt)
	}

	session, err := s.hooks.GameSessions().End(c.Request.Context(), currentAccount(c), c.Param("id"), at)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) listPlayers(c *gin.Context) {
	players, err := s.hooks.Players(c.Param("id")).List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (s *Server) addPlayer(c *gin.Context) {
	var req addPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	player, err := s.hooks.Players(c.Param("id")).AddPlayer(c.Request.Context(), currentAccount(c), req.Username)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, player)
}

func (s *Server) removePlayer(c *gin.Context) {
	err := s.hooks.Players(c.Param("id")).RemovePlayer(c.Request.Context(), currentAccount(c), c.Param("userId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) updatePlayer(c *gin.Context) {
	var patch entities.GameSessionPlayerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortBadRequest(c, err)
		return
	}
	if patch.IsEmpty() {
		abortBadRequest(c, errors.New("patch changes nothing"))
		return
	}

	player, err := s.hooks.Player(c.Param("id"), c.Param("userId")).Update(c.Request.Context(), currentAccount(c), &patch)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}
