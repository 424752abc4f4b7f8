package handlers

import (
	"net/http"
	"strings"

	"sales_arena/internal/domain"
	"sales_arena/internal/service"

	"github.com/gin-gonic/gin"
)

type createProfileRequest struct {
	Username string      `json:"username" binding:"required,max=50"`
	FullName string      `json:"full_name" binding:"max=100"`
	Role     domain.Role `json:"role" binding:"required,role"`
	AvatarID int         `json:"avatar_id" binding:"omitempty,avatar_id"`
}

func (h *Handler) MyProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	p, err := h.Profiles.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProfile bootstraps the caller's profile after sign-up. Repeating it returns the existing one.
func (h *Handler) CreateProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req createProfileRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Profiles.Create(c.Request.Context(), userID, service.CreateProfileInput{
		Username: req.Username,
		FullName: req.FullName,
		Role:     req.Role,
		AvatarID: req.AvatarID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var patch domain.ProfilePatch
	if !bind(c, &patch) {
		return
	}
	p, err := h.Profiles.Update(c.Request.Context(), userID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Profile(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.Profiles.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ProfileStages(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	stages, err := h.Ledger.ListStages(c.Request.Context(), id, queryLimit(c, 100))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stages": stages})
}

func (h *Handler) ProfileFriends(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	friends, err := h.Social.Friends(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

func (h *Handler) PointsHistory(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	history, err := h.Profiles.PointHistory(c.Request.Context(), id, queryLimit(c, 100))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": history})
}

func (h *Handler) SearchUsers(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username required"})
		return
	}
	ref, err := h.Profiles.FindByUsername(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (h *Handler) Ranking(c *gin.Context) {
	entries, err := h.Profiles.Ranking(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranking": entries})
}
