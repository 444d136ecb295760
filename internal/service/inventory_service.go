package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/internal/ws"
	"go-flowershop-admin/pkg/apperr"
	"go-flowershop-admin/pkg/clock"
	"go-flowershop-admin/pkg/logger"
	"go-flowershop-admin/pkg/validator"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CatalogService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest, actor Actor) (*model.Product, error)
	EditProduct(ctx context.Context, id uint, req EditProductRequest, actor Actor) (*model.Product, error)
	UpdateStock(ctx context.Context, id uint, req UpdateStockRequest, actor Actor) (*StockChange, error)
	DeleteProduct(ctx context.Context, id uint, actor Actor) (*model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	ListInventory(ctx context.Context, filter repository.InventoryFilter) (*InventoryView, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	ProductMovements(ctx context.Context, id uint, limit int) ([]model.StockMovement, error)
}

type CreateProductRequest struct {
	Name              string              `json:"name" validate:"required"`
	SKU               string              `json:"sku"`
	Description       string              `json:"description"`
	Category          string              `json:"category"`
	Price             decimal.Decimal     `json:"price" validate:"gte=0"`
	CostPrice         decimal.NullDecimal `json:"cost_price" validate:"omitempty,gte=0"`
	StockQuantity     int                 `json:"stock_quantity" validate:"gte=0"`
	LowStockThreshold *int                `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	Unit              string              `json:"unit"`
}

// EditProductRequest is a partial update: nil fields are left alone.
type EditProductRequest struct {
	Name              *string          `json:"name" validate:"omitempty,min=1"`
	Description       *string          `json:"description"`
	SKU               *string          `json:"sku" validate:"omitempty,min=1"`
	Category          *string          `json:"category"`
	Price             *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	CostPrice         *decimal.Decimal `json:"cost_price" validate:"omitempty,gte=0"`
	StockQuantity     *int             `json:"stock_quantity" validate:"omitempty,gte=0"`
	LowStockThreshold *int             `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	Unit              *string          `json:"unit"`
	IsActive          *bool            `json:"is_active"`
}

type UpdateStockRequest struct {
	StockQuantity *int `json:"stock_quantity" validate:"required,gte=0"`
}

type StockChange struct {
	Product  *model.Product `json:"product"`
	OldStock int            `json:"old_stock"`
	NewStock int            `json:"new_stock"`
}

type InventoryView struct {
	Products   []model.ProductResponse `json:"products"`
	Categories []string                `json:"categories"`
}

type catalogService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	alerts       AlertService
	clock        clock.Clock
	log          *logger.Logger
	pub          Publisher
}

func NewCatalogService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	movementRepo repository.MovementRepository,
	alerts AlertService,
	clk clock.Clock,
	log *logger.Logger,
	pub Publisher,
) CatalogService {
	return &catalogService{
		db:           db,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		alerts:       alerts,
		clock:        clk,
		log:          log,
		pub:          publisherOrNop(pub),
	}
}

// GenerateSKU builds CAT-NAME-#### from the category, the name and the last
// four digits of the unix time.
func GenerateSKU(category, name string, now time.Time) string {
	prefix := strings.ToUpper(strings.TrimSpace(category))
	if prefix == "" {
		prefix = "PRD"
	}
	prefix = truncateRunes(prefix, 3)
	namePart := truncateRunes(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "-")), 10)
	unix := strconv.FormatInt(now.Unix(), 10)
	return fmt.Sprintf("%s-%s-%s", prefix, namePart, unix[len(unix)-4:])
}

// truncateRunes cuts s to at most n characters, never inside a multibyte one.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func (s *catalogService) CreateProduct(ctx context.Context, req CreateProductRequest, actor Actor) (*model.Product, error) {
	if err := validator.Check(&req); err != nil {
		return nil, err
	}
	now := s.clock.Now()

	product := &model.Product{
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		SKU:               strings.TrimSpace(req.SKU),
		Category:          strings.TrimSpace(req.Category),
		Price:             req.Price,
		CostPrice:         req.CostPrice,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: model.DefaultLowStockThreshold,
		Unit:              strings.TrimSpace(req.Unit),
		IsActive:          true,
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if product.Unit == "" {
		product.Unit = model.DefaultUnit
	}
	if product.SKU == "" {
		product.SKU = GenerateSKU(product.Category, product.Name, now)
	}
	if product.Name == "" {
		return nil, apperr.MissingField("name")
	}
	product.CreatedAt, product.UpdatedAt = now, now

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.productRepo.WithTx(tx).FindBySKU(ctx, product.SKU); err == nil {
			return apperr.Conflict(fmt.Sprintf("SKU %s already exists", product.SKU))
		}
		if err := s.productRepo.WithTx(tx).Create(ctx, product); err != nil {
			return err
		}
		return s.movementRepo.WithTx(tx).Create(ctx,
			model.NewStockMovement(product.ID, model.MovementCreated, 0, product.StockQuantity, actor.label(), now))
	})
	if err != nil {
		return nil, storeErr(err, "Product", "creating")
	}

	s.afterStockChange(ctx)
	s.pub.Publish(ws.Event{
		Type:    ws.TypeStockUpdate,
		Action:  "product_created",
		Data:    product.ToResponse(),
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s created product '%s'", actor.label(), product.Name),
	})
	return product, nil
}

func (s *catalogService) EditProduct(ctx context.Context, id uint, req EditProductRequest, actor Actor) (*model.Product, error) {
	if err := validator.Check(&req); err != nil {
		return nil, err
	}
	now := s.clock.Now()

	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.WithTx(tx).FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		oldStock := existing.StockQuantity

		if req.Name != nil {
			existing.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			existing.Description = *req.Description
		}
		if req.SKU != nil {
			sku := strings.TrimSpace(*req.SKU)
			if sku != existing.SKU {
				if _, err := s.productRepo.WithTx(tx).FindBySKU(ctx, sku); err == nil {
					return apperr.Conflict(fmt.Sprintf("SKU %s already exists", sku))
				}
			}
			existing.SKU = sku
		}
		if req.Category != nil {
			existing.Category = strings.TrimSpace(*req.Category)
		}
		if req.Price != nil {
			existing.Price = *req.Price
		}
		if req.CostPrice != nil {
			existing.CostPrice = decimal.NewNullDecimal(*req.CostPrice)
		}
		if req.StockQuantity != nil {
			existing.StockQuantity = *req.StockQuantity
		}
		if req.LowStockThreshold != nil {
			existing.LowStockThreshold = *req.LowStockThreshold
		}
		if req.Unit != nil {
			existing.Unit = strings.TrimSpace(*req.Unit)
			if existing.Unit == "" {
				existing.Unit = model.DefaultUnit
			}
		}
		if req.IsActive != nil {
			existing.IsActive = *req.IsActive
		}
		if existing.Name == "" || existing.SKU == "" {
			return apperr.Validation("Product name and SKU cannot be empty")
		}
		existing.UpdatedAt = now

		if err := s.productRepo.WithTx(tx).Save(ctx, existing); err != nil {
			return err
		}
		if existing.StockQuantity != oldStock {
			if err := s.movementRepo.WithTx(tx).Create(ctx,
				model.NewStockMovement(existing.ID, model.MovementEdit, oldStock, existing.StockQuantity, actor.label(), now)); err != nil {
				return err
			}
		}
		product = existing
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "Product", "updating")
	}

	s.afterStockChange(ctx)
	s.pub.Publish(ws.Event{
		Type:    ws.TypeStockUpdate,
		Action:  "product_updated",
		Data:    product.ToResponse(),
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s updated product '%s'", actor.label(), product.Name),
	})
	return product, nil
}

func (s *catalogService) UpdateStock(ctx context.Context, id uint, req UpdateStockRequest, actor Actor) (*StockChange, error) {
	if err := validator.Check(&req); err != nil {
		return nil, err
	}
	now := s.clock.Now()

	change := &StockChange{NewStock: *req.StockQuantity}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.WithTx(tx).FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		change.OldStock = product.StockQuantity
		product.StockQuantity = change.NewStock
		product.UpdatedAt = now

		if err := s.productRepo.WithTx(tx).Save(ctx, product); err != nil {
			return err
		}
		change.Product = product
		return s.movementRepo.WithTx(tx).Create(ctx,
			model.NewStockMovement(product.ID, model.MovementStockUpdate, change.OldStock, change.NewStock, actor.label(), now))
	})
	if err != nil {
		return nil, storeErr(err, "Product", "updating stock for")
	}

	s.afterStockChange(ctx)
	s.pub.Publish(ws.Event{
		Type:   ws.TypeStockUpdate,
		Action: "stock_updated",
		Data: map[string]any{
			"product":   change.Product.ToResponse(),
			"old_stock": change.OldStock,
			"new_stock": change.NewStock,
		},
		User:    actor.eventUser(),
		Message: fmt.Sprintf("Stock updated for %s: %d → %d", change.Product.Name, change.OldStock, change.NewStock),
	})
	return change, nil
}

// DeleteProduct removes a product that no order item points at. Its alerts
// and stock movements go with it.
func (s *catalogService) DeleteProduct(ctx context.Context, id uint, actor Actor) (*model.Product, error) {
	var product *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productRepo.WithTx(tx)
		existing, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		referenced, err := repo.IsReferenced(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return apperr.Conflict(fmt.Sprintf("Product %s is used by existing orders and cannot be deleted", existing.Name))
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.StockAlert{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.StockMovement{}).Error; err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		product = existing
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "Product", "deleting")
	}

	s.pub.Publish(ws.Event{
		Type:    ws.TypeStockUpdate,
		Action:  "product_deleted",
		Data:    map[string]any{"id": product.ID, "sku": product.SKU},
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s deleted product '%s'", actor.label(), product.Name),
	})
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product", "loading")
	}
	return product, nil
}

func (s *catalogService) ListInventory(ctx context.Context, filter repository.InventoryFilter) (*InventoryView, error) {
	switch filter.Stock {
	case "", repository.StockFilterLow, repository.StockFilterOut:
	default:
		return nil, apperr.InvalidField("stock_status", "must be low or out")
	}
	products, err := s.productRepo.ListInventory(ctx, filter)
	if err != nil {
		return nil, storeErr(err, "Product", "loading")
	}
	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		return nil, storeErr(err, "Product", "loading")
	}
	return &InventoryView{Products: model.ProductResponses(products), Categories: categories}, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindActive(ctx)
	if err != nil {
		return nil, storeErr(err, "Product", "loading")
	}
	return products, nil
}

func (s *catalogService) ProductMovements(ctx context.Context, id uint, limit int) ([]model.StockMovement, error) {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, storeErr(err, "Product", "loading")
	}
	movements, err := s.movementRepo.ForProduct(ctx, id, limit)
	if err != nil {
		return nil, storeErr(err, "Stock movement", "loading")
	}
	return movements, nil
}

// afterStockChange runs the alert rules once the product write is committed.
// A failed scan is logged; the write itself already succeeded.
func (s *catalogService) afterStockChange(ctx context.Context) {
	if s.alerts == nil {
		return
	}
	if _, err := s.alerts.CheckAndCreateAlerts(ctx); err != nil {
		s.log.Error(ctx, "stock alert scan failed", err)
	}
}
