package handlers

import (
	"net/http"

	"sales_arena/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type shopItemRequest struct {
	Title       string `json:"title" binding:"required,max=100"`
	Avatar      string `json:"avatar" binding:"max=500"`
	Price       int64  `json:"price" binding:"gt=0"`
	Description string `json:"description" binding:"max=500"`
	Quantity    int    `json:"quantity" binding:"gte=0"`
}

func (r shopItemRequest) item() domain.ShopItem {
	return domain.ShopItem{
		Title:       r.Title,
		Avatar:      r.Avatar,
		Price:       r.Price,
		Description: r.Description,
		Quantity:    r.Quantity,
	}
}

// shopKind reads :kind. Unknown catalogs are 404.
func shopKind(c *gin.Context) (domain.ShopKind, bool) {
	kind := domain.ShopKind(c.Param("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown shop"})
		return "", false
	}
	return kind, true
}

func (h *Handler) ShopItems(c *gin.Context) {
	kind, ok := shopKind(c)
	if !ok {
		return
	}
	items, err := h.Shop.ListItems(c.Request.Context(), kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) CreateShopItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	kind, ok := shopKind(c)
	if !ok {
		return
	}
	var req shopItemRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.Shop.CreateItem(c.Request.Context(), userID, kind, req.item())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateShopItem(c *gin.Context) {
	userID, kind, itemID, ok := shopItemParams(c)
	if !ok {
		return
	}
	var req shopItemRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.Shop.UpdateItem(c.Request.Context(), userID, kind, itemID, req.item())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteShopItem(c *gin.Context) {
	userID, kind, itemID, ok := shopItemParams(c)
	if !ok {
		return
	}
	if err := h.Shop.DeleteItem(c.Request.Context(), userID, kind, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) PurchaseItem(c *gin.Context) {
	userID, kind, itemID, ok := shopItemParams(c)
	if !ok {
		return
	}
	res, err := h.Shop.Purchase(c.Request.Context(), userID, kind, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) MyPurchases(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	purchases, err := h.Shop.Purchases(c.Request.Context(), userID, queryLimit(c, 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

func shopItemParams(c *gin.Context) (userID uuid.UUID, kind domain.ShopKind, itemID uuid.UUID, ok bool) {
	if userID, ok = getUserID(c); !ok {
		return
	}
	if kind, ok = shopKind(c); !ok {
		return
	}
	itemID, ok = paramUUID(c, "itemId")
	return
}
