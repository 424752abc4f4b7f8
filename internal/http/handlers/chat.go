package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type chatRequest struct {
	TeamID  *uuid.UUID `json:"team_id"`
	Message string     `json:"message" binding:"required,max=1000"`
}

// optionalTeam reads ?team_id=. Absent means the global room.
func optionalTeam(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("team_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid team_id"})
		return nil, false
	}
	return &id, true
}

func (h *Handler) ChatHistory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	teamID, ok := optionalTeam(c)
	if !ok {
		return
	}
	msgs, err := h.Chat.History(c.Request.Context(), userID, teamID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) SendChat(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req chatRequest
	if !bind(c, &req) {
		return
	}
	msg, err := h.Chat.Send(c.Request.Context(), userID, req.TeamID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
