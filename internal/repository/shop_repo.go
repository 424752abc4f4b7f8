package repository

import (
	"context"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const shopItemColumns = `id, kind, title, COALESCE(avatar, ''), price, COALESCE(description, ''), quantity, created_by, created_at`

type ShopRepository struct {
	db db.Querier
}

func NewShopRepository(q db.Querier) *ShopRepository {
	return &ShopRepository{db: q}
}

// WithTx returns a copy bound to tx.
func (r *ShopRepository) WithTx(tx pgx.Tx) *ShopRepository {
	return &ShopRepository{db: tx}
}

func scanShopItem(row pgx.Row) (*domain.ShopItem, error) {
	var it domain.ShopItem
	if err := row.Scan(&it.ID, &it.Kind, &it.Title, &it.Avatar, &it.Price, &it.Description, &it.Quantity, &it.CreatedBy, &it.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &it, nil
}

// ListItems returns a catalog cheapest first.
func (r *ShopRepository) ListItems(ctx context.Context, kind domain.ShopKind) ([]*domain.ShopItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+shopItemColumns+` FROM shop_items WHERE kind = $1 ORDER BY price ASC, title ASC`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.ShopItem
	for rows.Next() {
		it, err := scanShopItem(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

func (r *ShopRepository) GetItem(ctx context.Context, kind domain.ShopKind, id uuid.UUID) (*domain.ShopItem, error) {
	return scanShopItem(r.db.QueryRow(ctx,
		`SELECT `+shopItemColumns+` FROM shop_items WHERE id = $1 AND kind = $2`, id, kind))
}

// GetItemForUpdate locks the item row until the surrounding transaction ends.
func (r *ShopRepository) GetItemForUpdate(ctx context.Context, kind domain.ShopKind, id uuid.UUID) (*domain.ShopItem, error) {
	return scanShopItem(r.db.QueryRow(ctx,
		`SELECT `+shopItemColumns+` FROM shop_items WHERE id = $1 AND kind = $2 FOR UPDATE`, id, kind))
}

func (r *ShopRepository) CreateItem(ctx context.Context, it *domain.ShopItem) error {
	return mapErr(r.db.QueryRow(ctx,
		`INSERT INTO shop_items (kind, title, avatar, price, description, quantity, created_by)
		 VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7)
		 RETURNING id, created_at`,
		it.Kind, it.Title, it.Avatar, it.Price, it.Description, it.Quantity, it.CreatedBy,
	).Scan(&it.ID, &it.CreatedAt))
}

func (r *ShopRepository) UpdateItem(ctx context.Context, it *domain.ShopItem) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE shop_items SET title = $1, avatar = NULLIF($2, ''), price = $3, description = NULLIF($4, ''), quantity = $5
		 WHERE id = $6 AND kind = $7`,
		it.Title, it.Avatar, it.Price, it.Description, it.Quantity, it.ID, it.Kind))
}

func (r *ShopRepository) DeleteItem(ctx context.Context, kind domain.ShopKind, id uuid.UUID) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM shop_items WHERE id = $1 AND kind = $2`, id, kind))
}

// DecrementQuantity takes one unit of stock and returns what is left.
func (r *ShopRepository) DecrementQuantity(ctx context.Context, id uuid.UUID) (int, error) {
	var left int
	err := r.db.QueryRow(ctx,
		`UPDATE shop_items SET quantity = quantity - 1 WHERE id = $1 AND quantity > 0 RETURNING quantity`, id,
	).Scan(&left)
	return left, mapErr(err)
}

func (r *ShopRepository) CreatePurchase(ctx context.Context, p *domain.Purchase) error {
	return mapErr(r.db.QueryRow(ctx,
		`INSERT INTO shop_purchases (kind, user_id, team_id, item_id, item_name, item_cost)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, purchased_at`,
		p.Kind, p.UserID, p.TeamID, p.ItemID, p.ItemName, p.ItemCost,
	).Scan(&p.ID, &p.PurchasedAt))
}

func (r *ShopRepository) ListPurchases(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Purchase, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, kind, user_id, team_id, COALESCE(item_id, '00000000-0000-0000-0000-000000000000'::uuid), item_name, item_cost, purchased_at
		 FROM shop_purchases WHERE user_id = $1 ORDER BY purchased_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(&p.ID, &p.Kind, &p.UserID, &p.TeamID, &p.ItemID, &p.ItemName, &p.ItemCost, &p.PurchasedAt); err != nil {
			return nil, err
		}
		res = append(res, &p)
	}
	return res, rows.Err()
}
