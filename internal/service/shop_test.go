package service

import (
	"context"
	"testing"

	"sales_arena/internal/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var itemID = uuid.MustParse("55555555-5555-5555-5555-555555555555")

func expectItem(mock pgxmock.PgxPoolIface, kind domain.ShopKind, price int64, quantity int) {
	mock.ExpectQuery("FROM shop_items WHERE id").
		WithArgs(itemID, kind).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "kind", "title", "avatar", "price", "description", "quantity", "created_by", "created_at",
		}).AddRow(itemID, kind, "Кофемашина", "", price, "", quantity, &leaderID, fixedNow))
}

func expectCheckout(mock pgxmock.PgxPoolIface, kind domain.ShopKind, price int64, left int) {
	mock.ExpectQuery("UPDATE shop_items SET quantity").
		WithArgs(itemID).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(left))
	mock.ExpectQuery("INSERT INTO shop_purchases").
		WithArgs(kind, memberID, teamPtr(), itemID, "Кофемашина", price).
		WillReturnRows(pgxmock.NewRows([]string{"id", "purchased_at"}).AddRow(uuid.New(), fixedNow))
}

func TestPurchase_PersonalDebitsPointsAndStock(t *testing.T) {
	f := newFixture(t)
	svc := NewShopService(f.mock, f.notify, f.audit)

	f.mock.ExpectBegin()
	expectItem(f.mock, domain.ShopPersonal, 300, 2)
	expectProfile(f.mock, testProfile(memberID, domain.RoleManager, 1000, teamPtr()))
	expectApplyPoints(f.mock, memberID, -300, 700, nil)
	expectCheckout(f.mock, domain.ShopPersonal, 300, 1)
	f.mock.ExpectCommit()
	expectNotify(f.mock, teamID, leaderID, memberID)

	res, err := svc.Purchase(context.Background(), memberID, domain.ShopPersonal, itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(700), res.NewBalance)
	assert.Equal(t, 1, res.ItemQuantity)
	assert.Equal(t, int64(300), res.Purchase.ItemCost)
	assert.Equal(t, []domain.EventType{domain.EventProfileUpdated, domain.EventTeamNotification}, f.pub.types())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPurchase_OutOfStock(t *testing.T) {
	f := newFixture(t)
	svc := NewShopService(f.mock, f.notify, f.audit)

	f.mock.ExpectBegin()
	expectItem(f.mock, domain.ShopPersonal, 300, 0)
	f.mock.ExpectRollback()

	_, err := svc.Purchase(context.Background(), memberID, domain.ShopPersonal, itemID)
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPurchase_InsufficientPointsLeavesStock(t *testing.T) {
	f := newFixture(t)
	svc := NewShopService(f.mock, f.notify, f.audit)

	f.mock.ExpectBegin()
	expectItem(f.mock, domain.ShopPersonal, 300, 5)
	expectProfile(f.mock, testProfile(memberID, domain.RoleManager, 299, teamPtr()))
	f.mock.ExpectRollback()

	_, err := svc.Purchase(context.Background(), memberID, domain.ShopPersonal, itemID)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPurchase_PremiumNeedsCrystals(t *testing.T) {
	f := newFixture(t)
	svc := NewShopService(f.mock, f.notify, f.audit)

	buyer := testProfile(memberID, domain.RoleManager, 5000, teamPtr())
	buyer.Crystalls = 2

	f.mock.ExpectBegin()
	expectItem(f.mock, domain.ShopPremium, 3, 5)
	expectProfile(f.mock, buyer)
	f.mock.ExpectRollback()

	_, err := svc.Purchase(context.Background(), memberID, domain.ShopPremium, itemID)
	assert.ErrorIs(t, err, ErrInsufficientCrystals)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPurchase_TeamPaysFromTreasury(t *testing.T) {
	f := newFixture(t)
	svc := NewShopService(f.mock, f.notify, f.audit)

	f.mock.ExpectBegin()
	expectItem(f.mock, domain.ShopTeam, 1000, 1)
	expectProfile(f.mock, testProfile(memberID, domain.RoleManager, 0, teamPtr()))
	expectTeam(f.mock, testTeam(1500))
	f.mock.ExpectQuery("UPDATE teams SET treasury_balance").
		WithArgs(int64(-1000), teamID).
		WillReturnRows(pgxmock.NewRows([]string{"treasury_balance"}).AddRow(int64(500)))
	expectCheckout(f.mock, domain.ShopTeam, 1000, 0)
	f.mock.ExpectCommit()
	expectNotify(f.mock, teamID, memberID)

	res, err := svc.Purchase(context.Background(), memberID, domain.ShopTeam, itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), res.NewBalance)
	assert.Equal(t, 0, res.ItemQuantity)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPurchase_TeamCatalogNeedsTeam(t *testing.T) {
	f := newFixture(t)
	svc := NewShopService(f.mock, f.notify, f.audit)

	f.mock.ExpectBegin()
	expectItem(f.mock, domain.ShopTeam, 1000, 1)
	expectProfile(f.mock, testProfile(memberID, domain.RoleManager, 0, nil))
	f.mock.ExpectRollback()

	_, err := svc.Purchase(context.Background(), memberID, domain.ShopTeam, itemID)
	assert.ErrorIs(t, err, ErrNotInTeam)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPurchaseMessage(t *testing.T) {
	buyer := testProfile(memberID, domain.RoleManager, 0, nil)
	buyer.FullName = "Анна"
	team := testTeam(0)

	assert.Equal(t, `💰 Анна приобрел "Кофе" за 50 баллов!`, purchaseMessage(domain.ShopPersonal, &buyer, nil, "Кофе", 50))
	assert.Equal(t, "Команда Alpha покупает Кофе за 50 баллов", purchaseMessage(domain.ShopTeam, &buyer, &team, "Кофе", 50))
	assert.Contains(t, purchaseMessage(domain.ShopPremium, &buyer, nil, "Кофе", 5), "5 кристаллов")
}
