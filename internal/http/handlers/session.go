package handlers

import (
	"net/http"

	"sales_arena/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// Session returns the signed-in user and their profile, which is null before bootstrap.
func (h *Handler) Session(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	sess, err := h.Sessions.Current(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) SignOut(c *gin.Context) {
	token := c.GetString(middleware.TokenKey)
	if err := h.Sessions.SignOut(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
