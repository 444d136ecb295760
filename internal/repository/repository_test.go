package repository

import (
	"context"
	"testing"
	"time"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/testutil"
	"go-flowershop-admin/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCustomer(t *testing.T, db *gorm.DB, email string) *model.Customer {
	t.Helper()
	c := &model.Customer{FirstName: "Ana", LastName: "Reyes", Email: email}
	c.CreatedAt, c.UpdatedAt = testutil.Now, testutil.Now
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedOrder(t *testing.T, db *gorm.DB, number string, customerID uint, status model.OrderStatus, total string, at time.Time) *model.Order {
	t.Helper()
	o := &model.Order{
		OrderNumber: number,
		CustomerID:  customerID,
		Status:      status,
		Subtotal:    testutil.Dec(total),
		Tax:         decimal.Zero,
		Discount:    decimal.Zero,
		Total:       testutil.Dec(total),
	}
	o.CreatedAt, o.UpdatedAt = at, at
	require.NoError(t, db.Create(o).Error)
	return o
}

func TestCustomerInsertIfAbsent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCustomerRepo(db)
	ctx := context.Background()

	first := &model.Customer{FirstName: "Ana", Email: "ana@example.com"}
	inserted, err := repo.InsertIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, first.ID)

	dup := &model.Customer{FirstName: "Someone", Email: "ana@example.com"}
	inserted, err = repo.InsertIfAbsent(ctx, dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	found, err := repo.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", found.FirstName)

	err = repo.Create(ctx, &model.Customer{FirstName: "Again", Email: "ana@example.com"})
	assert.True(t, database.IsUniqueViolation(err))
}

func TestOrderMaxIDAndList(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewOrderRepo(db)
	ctx := context.Background()

	max, err := repo.MaxID(ctx)
	require.NoError(t, err)
	assert.Zero(t, max)

	ana := seedCustomer(t, db, "ana@example.com")
	seedOrder(t, db, "ORD-0001-20261017", ana.ID, model.OrderPending, "100", testutil.Now)
	second := seedOrder(t, db, "ORD-0002-20261017", ana.ID, model.OrderCompleted, "50", testutil.Now.Add(time.Minute))

	max, err = repo.MaxID(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, max)

	orders, err := repo.List(ctx, OrderFilter{Search: "0002"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].Customer)
	assert.Equal(t, "ana@example.com", orders[0].Customer.Email)

	recent, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, second.ID, recent[0].ID)

	n, err := repo.Count(ctx, model.OrderPending)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPaymentLastNumberWithPrefix(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPaymentRepo(db)
	ctx := context.Background()

	last, err := repo.LastNumberWithPrefix(ctx, "PAY-20261017-")
	require.NoError(t, err)
	assert.Empty(t, last)

	ana := seedCustomer(t, db, "ana@example.com")
	order := seedOrder(t, db, "ORD-0001-20261017", ana.ID, model.OrderPending, "10", testutil.Now)
	for _, number := range []string{"PAY-20261016-0007", "PAY-20261017-0002", "PAY-20261017-0010", "PAY-20261017-0009"} {
		p := &model.Payment{
			OrderID:       order.ID,
			PaymentNumber: number,
			Amount:        testutil.Dec("10"),
			PaymentMethod: model.PaymentCash,
			PaymentStatus: model.PaymentCompleted,
			PaymentDate:   testutil.Now,
		}
		p.CreatedAt, p.UpdatedAt = testutil.Now, testutil.Now
		require.NoError(t, repo.Create(ctx, p))
	}

	last, err = repo.LastNumberWithPrefix(ctx, "PAY-20261017-")
	require.NoError(t, err)
	assert.Equal(t, "PAY-20261017-0010", last)

	total, err := repo.SumAmount(ctx, model.PaymentCompleted, nil)
	require.NoError(t, err)
	testutil.DecEqual(t, "40", total)

	none, err := repo.SumAmount(ctx, model.PaymentRefunded, nil)
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func TestProductQueries(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepo(db)
	ctx := context.Background()

	rose := testutil.SeedProduct(t, db, "FLW-ROSE-0001", "Red Rose", "50.00", 100, 10)
	testutil.SeedProduct(t, db, "CUSTOM-1760664123-ABC123", "Red Rose", "0", model.SyntheticStock, 0)
	retired := testutil.SeedProduct(t, db, "FLW-OLD-0001", "Carnation", "20.00", 5, 10)
	require.NoError(t, db.Model(retired).Update("is_active", false).Error)

	found, err := repo.FindActiveByName(ctx, "RED ROSE")
	require.NoError(t, err)
	assert.Equal(t, rose.ID, found.ID, "oldest match wins")

	_, err = repo.FindActiveByName(ctx, "Carnation")
	assert.True(t, database.IsNotFound(err))

	inventory, err := repo.ListInventory(ctx, InventoryFilter{})
	require.NoError(t, err)
	require.Len(t, inventory, 1)
	assert.Equal(t, rose.ID, inventory[0].ID)

	// wildcard characters in search text match literally
	promo := testutil.SeedProduct(t, db, "FLW-MUM-0001", "Mum 50% Bundle", "120.00", 20, 10)
	for search, want := range map[string]int{"50%": 1, "%": 1, "_": 0, "flw-%": 0, "flw-mum": 1} {
		found, err := repo.ListInventory(ctx, InventoryFilter{Search: search})
		require.NoError(t, err)
		require.Len(t, found, want, search)
		if want == 1 {
			assert.Equal(t, promo.ID, found[0].ID, search)
		}
	}

	referenced, err := repo.IsReferenced(ctx, rose.ID)
	require.NoError(t, err)
	assert.False(t, referenced)
}

func TestActiveAlertIsUniquePerProduct(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAlertRepo(db)
	ctx := context.Background()
	tulip := testutil.SeedProduct(t, db, "FLW-TUL-0001", "Tulip", "35.00", 4, 10)

	alert := func(status model.AlertStatus) *model.StockAlert {
		return &model.StockAlert{
			ProductID:         tulip.ID,
			AlertType:         model.AlertLowStock,
			AlertStatus:       status,
			StockLevelAtAlert: 4,
			CreatedAt:         testutil.Now,
		}
	}

	require.NoError(t, repo.Create(ctx, alert(model.AlertResolved)))
	require.NoError(t, repo.Create(ctx, alert(model.AlertActive)))
	err := repo.Create(ctx, alert(model.AlertActive))
	assert.True(t, database.IsUniqueViolation(err))

	ids, err := repo.ActiveProductIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint]struct{}{tulip.ID: {}}, ids)

	all, err := repo.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMovementsBetween(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMovementRepo(db)
	ctx := context.Background()
	rose := testutil.SeedProduct(t, db, "FLW-ROSE-0001", "Red Rose", "50.00", 100, 10)

	for i, delta := range []int{5, -3, 8} {
		at := testutil.Now.Add(time.Duration(i) * 24 * time.Hour)
		require.NoError(t, repo.Create(ctx, model.NewStockMovement(rose.ID, model.MovementStockUpdate, 100, 100+delta, "test", at)))
	}

	got, err := repo.Between(ctx, testutil.Now, testutil.Now.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 5, got[0].Delta)
	assert.Equal(t, -3, got[1].Delta)

	latest, err := repo.ForProduct(ctx, rose.ID, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 8, latest[0].Delta)
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%ord\_0001%`, containsPattern("ORD_0001"))
	assert.Equal(t, `%50\% off%`, containsPattern("50% Off"))
	assert.Equal(t, `%a\\b%`, containsPattern(`a\b`))
}
