package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"sales_arena/internal/http/middleware"
	"sales_arena/internal/logger"
	"sales_arena/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Services is everything the API handlers call into.
type Services struct {
	Sessions      *service.SessionService
	Profiles      *service.ProfileService
	Ledger        *service.LedgerService
	Teams         *service.TeamService
	Treasury      *service.TreasuryService
	Shop          *service.ShopService
	Social        *service.SocialService
	Forum         *service.ForumService
	Chat          *service.ChatService
	Notifications *service.NotificationService
	Audit         *service.AuditService
}

type Handler struct {
	Services
}

func NewHandler(s Services) *Handler {
	return &Handler{Services: s}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
	}
	return id, ok
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// bind decodes the JSON body and answers 400 with per-field messages on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		body := gin.H{"error": "invalid request"}
		if fields := fieldErrors(err); len(fields) > 0 {
			body["fields"] = fields
		}
		c.JSON(http.StatusBadRequest, body)
		return false
	}
	return true
}

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	log := logger.WithContext(c.Request.Context())

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
		return
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrForbidden):
		log.Warnw("forbidden", "path", c.FullPath())
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrDuplicate),
		errors.Is(err, service.ErrStageAlreadyVerified):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrInsufficientCrystals),
		errors.Is(err, service.ErrInsufficientTreasury),
		errors.Is(err, service.ErrOutOfStock):
		log.Warnw("rejected", "path", c.FullPath(), "reason", err.Error())
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidStage),
		errors.Is(err, service.ErrNotMember),
		errors.Is(err, service.ErrNotInTeam),
		errors.Is(err, service.ErrSelfAction),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Errorw("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
