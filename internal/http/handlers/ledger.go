package handlers

import (
	"net/http"

	"sales_arena/internal/domain"
	"sales_arena/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type addStageRequest struct {
	UserID      uuid.UUID `json:"user_id" binding:"required"`
	StageName   string    `json:"stage_name" binding:"required,stage_name"`
	Points      int64     `json:"points" binding:"required"`
	Description string    `json:"description" binding:"max=500"`
}

type selfStageRequest struct {
	StageName   string     `json:"stage_name" binding:"required,stage_name"`
	Points      int64      `json:"points" binding:"required,gt=0"`
	Description string     `json:"description" binding:"max=500"`
	ShareWith   *uuid.UUID `json:"share_with"`
	ShareSum    int64      `json:"share_sum" binding:"gte=0"`
}

type adjustRequest struct {
	UserID      uuid.UUID `json:"user_id" binding:"required"`
	Amount      int64     `json:"amount" binding:"required,gt=0"`
	Kind        string    `json:"kind" binding:"required,oneof=bonus penalty"`
	Description string    `json:"description" binding:"max=500"`
}

// StageVocabulary lists the stage kinds the caller may self-report.
func (h *Handler) StageVocabulary(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	p, err := h.Profiles.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"role":      p.Role,
		"stages":    h.Ledger.Vocabulary(p.Role),
		"can_share": domain.CanShareStages(p.Role),
	})
}

func (h *Handler) AddStage(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req addStageRequest
	if !bind(c, &req) {
		return
	}
	stage, err := h.Ledger.AddStage(c.Request.Context(), userID, service.StageInput{
		UserID:      req.UserID,
		StageName:   req.StageName,
		Points:      req.Points,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stage)
}

func (h *Handler) AddSelfStage(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req selfStageRequest
	if !bind(c, &req) {
		return
	}
	stages, err := h.Ledger.AddSelfStage(c.Request.Context(), userID, service.SelfStageInput{
		StageName:   req.StageName,
		Points:      req.Points,
		Description: req.Description,
		ShareWith:   req.ShareWith,
		ShareSum:    req.ShareSum,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stages": stages})
}

func (h *Handler) ApproveStage(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	stage, err := h.Ledger.ApproveStage(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stage)
}

func (h *Handler) RemoveStage(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.Ledger.RemoveStage(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AdjustPoints(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req adjustRequest
	if !bind(c, &req) {
		return
	}
	balance, err := h.Ledger.AdjustPoints(c.Request.Context(), userID, service.AdjustInput{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Kind:        domain.AdjustKind(req.Kind),
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": req.UserID, "points": balance})
}

func (h *Handler) PendingStages(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	teamID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	stages, err := h.Ledger.ListPendingStages(c.Request.Context(), userID, teamID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stages": stages})
}
