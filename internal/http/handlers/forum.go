package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type topicRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required,max=5000"`
}

type replyRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

func (h *Handler) ListTopics(c *gin.Context) {
	caller, teamID, ok := idParams(c)
	if !ok {
		return
	}
	topics, err := h.Forum.ListTopics(c.Request.Context(), caller, teamID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

func (h *Handler) CreateTopic(c *gin.Context) {
	caller, teamID, ok := idParams(c)
	if !ok {
		return
	}
	var req topicRequest
	if !bind(c, &req) {
		return
	}
	topic, err := h.Forum.CreateTopic(c.Request.Context(), caller, teamID, req.Title, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

func (h *Handler) GetTopic(c *gin.Context) {
	caller, id, ok := idParams(c)
	if !ok {
		return
	}
	topic, err := h.Forum.GetTopic(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (h *Handler) UpdateTopic(c *gin.Context) {
	caller, id, ok := idParams(c)
	if !ok {
		return
	}
	var req topicRequest
	if !bind(c, &req) {
		return
	}
	topic, err := h.Forum.UpdateTopic(c.Request.Context(), caller, id, req.Title, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (h *Handler) DeleteTopic(c *gin.Context) {
	caller, id, ok := idParams(c)
	if !ok {
		return
	}
	if err := h.Forum.DeleteTopic(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListReplies(c *gin.Context) {
	caller, topicID, ok := idParams(c)
	if !ok {
		return
	}
	replies, err := h.Forum.ListReplies(c.Request.Context(), caller, topicID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

func (h *Handler) CreateReply(c *gin.Context) {
	caller, topicID, ok := idParams(c)
	if !ok {
		return
	}
	var req replyRequest
	if !bind(c, &req) {
		return
	}
	reply, err := h.Forum.Reply(c.Request.Context(), caller, topicID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

func (h *Handler) UpdateReply(c *gin.Context) {
	caller, id, ok := idParams(c)
	if !ok {
		return
	}
	var req replyRequest
	if !bind(c, &req) {
		return
	}
	reply, err := h.Forum.UpdateReply(c.Request.Context(), caller, id, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *Handler) DeleteReply(c *gin.Context) {
	caller, id, ok := idParams(c)
	if !ok {
		return
	}
	if err := h.Forum.DeleteReply(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
