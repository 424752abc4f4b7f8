package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ShopKind selects a catalog and the balance it is paid from.
type ShopKind string

const (
	ShopPersonal ShopKind = "personal" // profile points
	ShopTeam     ShopKind = "team"     // team treasury
	ShopPremium  ShopKind = "premium"  // crystals
)

func (k ShopKind) Valid() bool {
	return k == ShopPersonal || k == ShopTeam || k == ShopPremium
}

type ShopItem struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Kind        ShopKind   `db:"kind" json:"kind"`
	Title       string     `db:"title" json:"title"`
	Avatar      string     `db:"avatar" json:"avatar"`
	Price       int64      `db:"price" json:"price"`
	Description string     `db:"description" json:"description"`
	Quantity    int        `db:"quantity" json:"quantity"`
	CreatedBy   *uuid.UUID `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Validate checks the catalog fields a leader controls.
func (i ShopItem) Validate() map[string]string {
	errs := make(map[string]string)
	if n := utf8.RuneCountInString(i.Title); n < 1 || n > 100 {
		errs["title"] = "must be 1-100 characters"
	}
	if i.Price <= 0 {
		errs["price"] = "must be positive"
	}
	if i.Quantity < 0 {
		errs["quantity"] = "must not be negative"
	}
	return errs
}

type Purchase struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Kind        ShopKind   `db:"kind" json:"kind"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	TeamID      *uuid.UUID `db:"team_id" json:"team_id,omitempty"`
	ItemID      uuid.UUID  `db:"item_id" json:"item_id"`
	ItemName    string     `db:"item_name" json:"item_name"`
	ItemCost    int64      `db:"item_cost" json:"item_cost"`
	PurchasedAt time.Time  `db:"purchased_at" json:"purchased_at"`
}

// PurchaseResult is what the buyer sees after checkout.
type PurchaseResult struct {
	Purchase     Purchase `json:"purchase"`
	NewBalance   int64    `json:"new_balance"`
	ItemQuantity int      `json:"item_quantity"`
}
