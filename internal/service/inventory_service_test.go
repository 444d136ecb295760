package service

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/internal/testutil"
	"go-flowershop-admin/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestGenerateSKU(t *testing.T) {
	at := time.Unix(1760664123, 0)
	assert.Equal(t, "FLO-RED-ROSE-4123", GenerateSKU("Flowers", "Red Rose", at))
	assert.Equal(t, "PRD-BABY'S-BRE-4123", GenerateSKU("", "Baby's Breath", at))
	assert.Equal(t, "GIF-CHOCOLATE--4123", GenerateSKU("Gifts", "Chocolate Box Deluxe", at))

	// multibyte names are cut by character
	for _, tc := range []struct{ category, name, want string }{
		{"Flowers", "Bouquet-Aé", "FLO-BOUQUET-AÉ-4123"},
		{"Éé", "Rosé", "ÉÉ-ROSÉ-4123"},
		{"ÑAÑA", "Niño Bouquet", "ÑAÑ-NIÑO-BOUQU-4123"},
	} {
		sku := GenerateSKU(tc.category, tc.name, at)
		assert.True(t, utf8.ValidString(sku), sku)
		assert.Equal(t, tc.want, sku)
	}
}

func TestCreateProductDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.catalog.CreateProduct(ctx, CreateProductRequest{
		Name:          " Pink Tulip ",
		Category:      "Flowers",
		Price:         testutil.Dec("45"),
		StockQuantity: 30,
	}, staff)
	require.NoError(t, err)

	assert.Equal(t, "Pink Tulip", product.Name)
	assert.Equal(t, GenerateSKU("Flowers", "Pink Tulip", testutil.Now), product.SKU)
	assert.Equal(t, model.DefaultLowStockThreshold, product.LowStockThreshold)
	assert.Equal(t, model.DefaultUnit, product.Unit)
	assert.True(t, product.IsActive)

	movements, err := f.catalog.ProductMovements(ctx, product.ID, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementCreated, movements[0].Reason)
	assert.Equal(t, 30, movements[0].Delta)
	assert.Equal(t, staff.Name, movements[0].CreatedBy)
	assert.Contains(t, f.pub.actions(), "product_created")
}

func TestCreateProductRejectsDuplicateSKU(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedProduct(t, f.db, "FLW-ROSE-0001", "Red Rose", "50.00", 100, 10)

	_, err := f.catalog.CreateProduct(ctx, CreateProductRequest{
		Name:  "Another Rose",
		SKU:   "FLW-ROSE-0001",
		Price: testutil.Dec("10"),
	}, staff)
	requireCode(t, err, apperr.CodeConflict)

	_, err = f.catalog.CreateProduct(ctx, CreateProductRequest{Name: "", Price: testutil.Dec("1")}, staff)
	appErr := requireCode(t, err, apperr.CodeValidation)
	assert.Equal(t, "name", appErr.Field())

	_, err = f.catalog.CreateProduct(ctx, CreateProductRequest{Name: "Fern", Price: testutil.Dec("-1")}, staff)
	appErr = requireCode(t, err, apperr.CodeValidation)
	assert.Equal(t, "price", appErr.Field())
}

func TestCreateProductBelowThresholdOpensAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.catalog.CreateProduct(ctx, CreateProductRequest{
		Name:              "Orchid",
		Category:          "Plants",
		Price:             testutil.Dec("350"),
		StockQuantity:     2,
		LowStockThreshold: intPtr(5),
	}, staff)
	require.NoError(t, err)

	alerts, err := f.alerts.ListAlerts(ctx, model.AlertActive)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, product.ID, alerts[0].ProductID)
	assert.Equal(t, model.AlertLowStock, alerts[0].AlertType)
	assert.Equal(t, 2, alerts[0].StockLevelAtAlert)
}

func TestUpdateStockRecordsMovementAndAlerts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rose := testutil.SeedProduct(t, f.db, "FLW-ROSE-0001", "Red Rose", "50.00", 100, 10)

	change, err := f.catalog.UpdateStock(ctx, rose.ID, UpdateStockRequest{StockQuantity: intPtr(0)}, staff)
	require.NoError(t, err)
	assert.Equal(t, 100, change.OldStock)
	assert.Equal(t, 0, change.NewStock)
	assert.Equal(t, model.StockOutOfStock, change.Product.StockStatus())

	alerts, err := f.alerts.ListAlerts(ctx, model.AlertActive)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertOutOfStock, alerts[0].AlertType)
	assert.Equal(t, "Red Rose is out of stock!", alerts[0].Message)

	movements, err := f.catalog.ProductMovements(ctx, rose.ID, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementStockUpdate, movements[0].Reason)
	assert.Equal(t, -100, movements[0].Delta)

	_, err = f.catalog.UpdateStock(ctx, rose.ID, UpdateStockRequest{}, staff)
	appErr := requireCode(t, err, apperr.CodeValidation)
	assert.Equal(t, "stock_quantity", appErr.Field())

	_, err = f.catalog.UpdateStock(ctx, rose.ID, UpdateStockRequest{StockQuantity: intPtr(-4)}, staff)
	requireCode(t, err, apperr.CodeValidation)

	_, err = f.catalog.UpdateStock(ctx, 777, UpdateStockRequest{StockQuantity: intPtr(4)}, staff)
	requireCode(t, err, apperr.CodeNotFound)
}

func TestEditProductPartialUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rose := testutil.SeedProduct(t, f.db, "FLW-ROSE-0001", "Red Rose", "50.00", 100, 10)
	testutil.SeedProduct(t, f.db, "FLW-TUL-0001", "Tulip", "35.00", 40, 10)

	price := testutil.Dec("55")
	product, err := f.catalog.EditProduct(ctx, rose.ID, EditProductRequest{
		Price:         &price,
		StockQuantity: intPtr(80),
	}, staff)
	require.NoError(t, err)
	testutil.DecEqual(t, "55", product.Price)
	assert.Equal(t, "Red Rose", product.Name)
	assert.Equal(t, 80, product.StockQuantity)

	movements, err := f.catalog.ProductMovements(ctx, rose.ID, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementEdit, movements[0].Reason)

	taken := "FLW-TUL-0001"
	_, err = f.catalog.EditProduct(ctx, rose.ID, EditProductRequest{SKU: &taken}, staff)
	requireCode(t, err, apperr.CodeConflict)

	blank := "   "
	_, err = f.catalog.EditProduct(ctx, rose.ID, EditProductRequest{Name: &blank}, staff)
	requireCode(t, err, apperr.CodeValidation)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rose := testutil.SeedProduct(t, f.db, "FLW-ROSE-0001", "Red Rose", "50.00", 100, 10)
	fern := testutil.SeedProduct(t, f.db, "GRN-FERN-0001", "Fern", "15.00", 0, 5)
	_, err := f.alerts.CheckAndCreateAlerts(ctx)
	require.NoError(t, err)

	_, err = f.orders.CreateOrder(ctx, orderRequest("a@example.com", OrderItemRequest{ProductName: "Red Rose", Quantity: 1}), staff)
	require.NoError(t, err)

	_, err = f.catalog.DeleteProduct(ctx, rose.ID, staff)
	requireCode(t, err, apperr.CodeConflict)

	deleted, err := f.catalog.DeleteProduct(ctx, fern.ID, staff)
	require.NoError(t, err)
	assert.Equal(t, "GRN-FERN-0001", deleted.SKU)
	assert.Zero(t, f.count(t, &model.StockAlert{}), "the fern's alert goes with it")

	_, err = f.catalog.GetProduct(ctx, fern.ID)
	requireCode(t, err, apperr.CodeNotFound)
}

func TestListInventoryFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedProduct(t, f.db, "FLW-ROSE-0001", "Red Rose", "50.00", 100, 10)
	testutil.SeedProduct(t, f.db, "FLW-TUL-0001", "Tulip", "35.00", 4, 10)
	testutil.SeedProduct(t, f.db, "FLW-LIL-0001", "Lily", "80.00", 0, 10)
	vase := testutil.SeedProduct(t, f.db, "ACC-VASE-0001", "Glass Vase", "250.00", 12, 3)
	require.NoError(t, f.db.Model(vase).Update("category", "Accessories").Error)

	view, err := f.catalog.ListInventory(ctx, repository.InventoryFilter{})
	require.NoError(t, err)
	assert.Len(t, view.Products, 4)
	assert.Equal(t, []string{"Accessories", "Flowers"}, view.Categories)

	low, err := f.catalog.ListInventory(ctx, repository.InventoryFilter{Stock: repository.StockFilterLow})
	require.NoError(t, err)
	require.Len(t, low.Products, 1)
	assert.Equal(t, "Tulip", low.Products[0].Name)
	assert.Equal(t, model.StockLowStock, low.Products[0].StockStatus)

	out, err := f.catalog.ListInventory(ctx, repository.InventoryFilter{Stock: repository.StockFilterOut})
	require.NoError(t, err)
	require.Len(t, out.Products, 1)
	assert.Equal(t, "Lily", out.Products[0].Name)

	search, err := f.catalog.ListInventory(ctx, repository.InventoryFilter{Search: "vase", Category: "Accessories"})
	require.NoError(t, err)
	require.Len(t, search.Products, 1)
	assert.Equal(t, "ACC-VASE-0001", search.Products[0].SKU)

	_, err = f.catalog.ListInventory(ctx, repository.InventoryFilter{Stock: "plenty"})
	appErr := requireCode(t, err, apperr.CodeValidation)
	assert.Equal(t, "stock_status", appErr.Field())
}
