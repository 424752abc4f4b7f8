package handlers

import (
	"net/http"

	"sales_arena/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createTeamRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

type inviteRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

type roleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin member"`
}

type rankRequest struct {
	CustomRank string `json:"custom_rank" binding:"max=50"`
}

type crystalsRequest struct {
	Crystalls *int64 `json:"crystalls" binding:"required,gte=0"`
}

type contributeRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=500"`
}

type memberView struct {
	domain.TeamMember
	DisplayRank string `json:"display_rank"`
}

// teamMemberParams reads the caller, :id and :userId.
func teamMemberParams(c *gin.Context) (caller, teamID, userID uuid.UUID, ok bool) {
	if caller, ok = getUserID(c); !ok {
		return
	}
	if teamID, ok = paramUUID(c, "id"); !ok {
		return
	}
	userID, ok = paramUUID(c, "userId")
	return
}

// idParams reads the caller and :id.
func idParams(c *gin.Context) (caller, teamID uuid.UUID, ok bool) {
	if caller, ok = getUserID(c); !ok {
		return
	}
	teamID, ok = paramUUID(c, "id")
	return
}

func (h *Handler) MyTeams(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	teams, err := h.Teams.UserTeams(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

func (h *Handler) CreateTeam(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req createTeamRequest
	if !bind(c, &req) {
		return
	}
	team, err := h.Teams.CreateTeam(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

func (h *Handler) TeamRankings(c *gin.Context) {
	rankings, err := h.Teams.Rankings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rankings": rankings})
}

func (h *Handler) Team(c *gin.Context) {
	teamID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	team, err := h.Teams.Get(c.Request.Context(), teamID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

func (h *Handler) TeamMembers(c *gin.Context) {
	teamID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	members, err := h.Teams.Members(c.Request.Context(), teamID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]memberView, len(members))
	for i, m := range members {
		out[i] = memberView{TeamMember: m, DisplayRank: m.DisplayRank()}
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

func (h *Handler) InviteMember(c *gin.Context) {
	caller, teamID, ok := idParams(c)
	if !ok {
		return
	}
	var req inviteRequest
	if !bind(c, &req) {
		return
	}
	m, err := h.Teams.Invite(c.Request.Context(), caller, teamID, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) RemoveMember(c *gin.Context) {
	caller, teamID, userID, ok := teamMemberParams(c)
	if !ok {
		return
	}
	if err := h.Teams.RemoveMember(c.Request.Context(), caller, teamID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) LeaveTeam(c *gin.Context) {
	caller, teamID, ok := idParams(c)
	if !ok {
		return
	}
	if err := h.Teams.Leave(c.Request.Context(), caller, teamID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateMemberRole(c *gin.Context) {
	caller, teamID, userID, ok := teamMemberParams(c)
	if !ok {
		return
	}
	var req roleRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Teams.UpdateRole(c.Request.Context(), caller, teamID, userID, domain.TeamRole(req.Role)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": req.Role})
}

func (h *Handler) UpdateMemberRank(c *gin.Context) {
	caller, teamID, userID, ok := teamMemberParams(c)
	if !ok {
		return
	}
	var req rankRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Teams.UpdateCustomRank(c.Request.Context(), caller, teamID, userID, req.CustomRank); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "custom_rank": req.CustomRank})
}

func (h *Handler) SetMemberCrystals(c *gin.Context) {
	caller, teamID, userID, ok := teamMemberParams(c)
	if !ok {
		return
	}
	var req crystalsRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Teams.SetCrystals(c.Request.Context(), caller, teamID, userID, *req.Crystalls); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "crystalls": *req.Crystalls})
}

func (h *Handler) TreasuryHistory(c *gin.Context) {
	caller, teamID, ok := idParams(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	history, err := h.Treasury.History(ctx, caller, teamID, queryLimit(c, 50))
	if err != nil {
		respondError(c, err)
		return
	}
	balance, err := h.Treasury.Balance(ctx, teamID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance, "transactions": history})
}

func (h *Handler) Contribute(c *gin.Context) {
	caller, teamID, ok := idParams(c)
	if !ok {
		return
	}
	var req contributeRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.Treasury.Contribute(c.Request.Context(), caller, teamID, req.Amount, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) TeamNotifications(c *gin.Context) {
	caller, teamID, ok := idParams(c)
	if !ok {
		return
	}
	list, err := h.Notifications.List(c.Request.Context(), caller, teamID, queryLimit(c, 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *Handler) NotificationSettings(c *gin.Context) {
	caller, teamID, ok := idParams(c)
	if !ok {
		return
	}
	settings, err := h.Notifications.Settings(c.Request.Context(), caller, teamID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) UpdateNotificationSettings(c *gin.Context) {
	caller, teamID, ok := idParams(c)
	if !ok {
		return
	}
	var patch domain.NotificationSettingsPatch
	if !bind(c, &patch) {
		return
	}
	settings, err := h.Notifications.UpdateSettings(c.Request.Context(), caller, teamID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) TeamAudit(c *gin.Context) {
	caller, teamID, ok := idParams(c)
	if !ok {
		return
	}
	logs, err := h.Audit.TeamLogs(c.Request.Context(), caller, teamID, queryLimit(c, 100))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
