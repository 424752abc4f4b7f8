package service

import (
	"context"
	"fmt"
	"strings"

	"sales_arena/internal/db"
	"sales_arena/internal/domain"
	"sales_arena/internal/metrics"
	"sales_arena/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ShopService runs the three catalogs and their checkout.
type ShopService struct {
	db       db.DB
	profiles *repository.ProfileRepository
	teams    *repository.TeamRepository
	shop     *repository.ShopRepository
	notify   *NotificationService
	audit    *AuditService
}

func NewShopService(d db.DB, notify *NotificationService, audit *AuditService) *ShopService {
	return &ShopService{
		db:       d,
		profiles: repository.NewProfileRepository(d),
		teams:    repository.NewTeamRepository(d),
		shop:     repository.NewShopRepository(d),
		notify:   notify,
		audit:    audit,
	}
}

func (s *ShopService) ListItems(ctx context.Context, kind domain.ShopKind) ([]*domain.ShopItem, error) {
	if !kind.Valid() {
		return nil, ErrNotFound
	}
	return s.shop.ListItems(ctx, kind)
}

func (s *ShopService) Purchases(ctx context.Context, caller uuid.UUID, limit int) ([]*domain.Purchase, error) {
	return s.shop.ListPurchases(ctx, caller, limit)
}

// requireGlobalLeader allows only accounts whose global role is leader.
func (s *ShopService) requireGlobalLeader(ctx context.Context, caller uuid.UUID) error {
	p, err := s.profiles.GetByID(ctx, caller)
	if err != nil {
		return translate(err)
	}
	if p.Role != domain.RoleLeader {
		return ErrForbidden
	}
	return nil
}

func (s *ShopService) CreateItem(ctx context.Context, caller uuid.UUID, kind domain.ShopKind, item domain.ShopItem) (*domain.ShopItem, error) {
	if !kind.Valid() {
		return nil, ErrNotFound
	}
	if err := s.requireGlobalLeader(ctx, caller); err != nil {
		return nil, err
	}
	item.Kind = kind
	item.Title = strings.TrimSpace(item.Title)
	item.CreatedBy = &caller
	if err := invalid(item.Validate()); err != nil {
		return nil, err
	}
	if err := s.shop.CreateItem(ctx, &item); err != nil {
		return nil, translate(err)
	}
	s.audit.Log(ctx, caller, nil, domain.AuditActionItemCreate, domain.AuditCategoryShop, map[string]interface{}{
		"item_id": item.ID,
		"kind":    kind,
		"title":   item.Title,
		"price":   item.Price,
	})
	return &item, nil
}

func (s *ShopService) UpdateItem(ctx context.Context, caller uuid.UUID, kind domain.ShopKind, id uuid.UUID, item domain.ShopItem) (*domain.ShopItem, error) {
	if !kind.Valid() {
		return nil, ErrNotFound
	}
	if err := s.requireGlobalLeader(ctx, caller); err != nil {
		return nil, err
	}
	item.ID = id
	item.Kind = kind
	item.Title = strings.TrimSpace(item.Title)
	if err := invalid(item.Validate()); err != nil {
		return nil, err
	}
	if err := s.shop.UpdateItem(ctx, &item); err != nil {
		return nil, translate(err)
	}
	s.audit.Log(ctx, caller, nil, domain.AuditActionItemUpdate, domain.AuditCategoryShop, map[string]interface{}{
		"item_id": id,
		"kind":    kind,
	})
	return s.shopItem(ctx, kind, id)
}

func (s *ShopService) shopItem(ctx context.Context, kind domain.ShopKind, id uuid.UUID) (*domain.ShopItem, error) {
	it, err := s.shop.GetItem(ctx, kind, id)
	return it, translate(err)
}

func (s *ShopService) DeleteItem(ctx context.Context, caller uuid.UUID, kind domain.ShopKind, id uuid.UUID) error {
	if !kind.Valid() {
		return ErrNotFound
	}
	if err := s.requireGlobalLeader(ctx, caller); err != nil {
		return err
	}
	if err := s.shop.DeleteItem(ctx, kind, id); err != nil {
		return translate(err)
	}
	s.audit.Log(ctx, caller, nil, domain.AuditActionItemDelete, domain.AuditCategoryShop, map[string]interface{}{
		"item_id": id,
		"kind":    kind,
	})
	return nil
}

// Purchase pays for one unit of an item from the balance its catalog draws on.
// Nothing changes unless every step succeeds.
func (s *ShopService) Purchase(ctx context.Context, caller uuid.UUID, kind domain.ShopKind, itemID uuid.UUID) (res *domain.PurchaseResult, err error) {
	defer func() { metrics.Observe("purchase_"+string(kind), err) }()

	if !kind.Valid() {
		return nil, ErrNotFound
	}

	var (
		buyer    *domain.Profile
		team     *domain.Team
		change   pointsChange
		itemName string
	)
	err = db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		shop := s.shop.WithTx(tx)
		profiles := s.profiles.WithTx(tx)

		item, err := shop.GetItemForUpdate(ctx, kind, itemID)
		if err != nil {
			return translate(err)
		}
		if item.Quantity < 1 {
			return ErrOutOfStock
		}
		itemName = item.Title

		var balance int64
		switch kind {
		case domain.ShopPersonal:
			buyer, err = profiles.GetForUpdate(ctx, caller)
			if err != nil {
				return translate(err)
			}
			if buyer.Points < item.Price {
				return ErrInsufficientFunds
			}
			change, err = applyPoints(ctx, tx, buyer, -item.Price, domain.PointsPurchase, item.Title, &caller)
			if err != nil {
				return err
			}
			balance = change.Balance

		case domain.ShopPremium:
			buyer, err = profiles.GetForUpdate(ctx, caller)
			if err != nil {
				return translate(err)
			}
			if buyer.Crystalls < item.Price {
				return ErrInsufficientCrystals
			}
			if balance, err = profiles.AddCrystals(ctx, caller, -item.Price); err != nil {
				return translate(err)
			}

		case domain.ShopTeam:
			buyer, err = profiles.GetByID(ctx, caller)
			if err != nil {
				return translate(err)
			}
			if buyer.TeamID == nil {
				return ErrNotInTeam
			}
			teams := s.teams.WithTx(tx)
			if team, err = teams.GetForUpdate(ctx, *buyer.TeamID); err != nil {
				return translate(err)
			}
			if team.TreasuryBalance < item.Price {
				return ErrInsufficientTreasury
			}
			if balance, err = teams.AddTreasury(ctx, team.ID, -item.Price); err != nil {
				return translate(err)
			}
		}

		left, err := shop.DecrementQuantity(ctx, item.ID)
		if err != nil {
			if err = translate(err); err == ErrNotFound {
				return ErrOutOfStock
			}
			return err
		}

		res = &domain.PurchaseResult{
			Purchase: domain.Purchase{
				Kind:     kind,
				UserID:   caller,
				TeamID:   buyer.TeamID,
				ItemID:   item.ID,
				ItemName: item.Title,
				ItemCost: item.Price,
			},
			NewBalance:   balance,
			ItemQuantity: left,
		}
		return translate(shop.CreatePurchase(ctx, &res.Purchase))
	})
	if err != nil {
		return nil, err
	}

	if kind == domain.ShopPersonal {
		s.notify.announcePoints(ctx, change)
	}
	if buyer.TeamID != nil {
		s.notify.Notify(ctx, *buyer.TeamID, purchaseNotificationType(kind), purchaseMessage(kind, buyer, team, itemName, res.Purchase.ItemCost))
	}
	return res, nil
}

func purchaseNotificationType(kind domain.ShopKind) domain.NotificationType {
	if kind == domain.ShopTeam {
		return domain.NotifyShop
	}
	return domain.NotifyPurchase
}

func purchaseMessage(kind domain.ShopKind, buyer *domain.Profile, team *domain.Team, item string, cost int64) string {
	switch kind {
	case domain.ShopPremium:
		return fmt.Sprintf("Пользователь %s покупает %s за %d кристаллов 💎", buyer.Username, item, cost)
	case domain.ShopTeam:
		name := ""
		if team != nil {
			name = team.Name
		}
		return fmt.Sprintf("Команда %s покупает %s за %d баллов", name, item, cost)
	}
	return fmt.Sprintf("💰 %s приобрел \"%s\" за %d баллов!", displayName(buyer), item, cost)
}
