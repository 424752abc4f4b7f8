package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type friendRequest struct {
	FriendID uuid.UUID `json:"friend_id" binding:"required"`
}

type messageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
	Subject     string    `json:"subject" binding:"max=200"`
	Message     string    `json:"message" binding:"required,max=5000"`
}

type markReadRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"max=500"`
}

func (h *Handler) Friends(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	friends, err := h.Social.Friends(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

func (h *Handler) IncomingRequests(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	reqs, err := h.Social.Incoming(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

func (h *Handler) SendFriendRequest(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req friendRequest
	if !bind(c, &req) {
		return
	}
	f, err := h.Social.SendRequest(c.Request.Context(), userID, req.FriendID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *Handler) AcceptFriend(c *gin.Context) {
	userID, id, ok := idParams(c)
	if !ok {
		return
	}
	if err := h.Social.Accept(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveFriend deletes a friendship or declines a pending request.
func (h *Handler) RemoveFriend(c *gin.Context) {
	userID, id, ok := idParams(c)
	if !ok {
		return
	}
	if err := h.Social.Remove(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Messages(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	msgs, err := h.Social.Messages(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) Conversations(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	convs, err := h.Social.Conversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	n, err := h.Social.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

func (h *Handler) SendMessage(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req messageRequest
	if !bind(c, &req) {
		return
	}
	msg, err := h.Social.SendMessage(c.Request.Context(), userID, req.RecipientID, req.Subject, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) MarkRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req markReadRequest
	if !bind(c, &req) {
		return
	}
	n, err := h.Social.MarkRead(c.Request.Context(), userID, req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *Handler) RejectFriend(c *gin.Context) {
	userID, id, ok := idParams(c)
	if !ok {
		return
	}
	if err := h.Social.Reject(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
