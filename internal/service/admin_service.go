package service

import (
	"context"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/ws"
	"go-flowershop-admin/pkg/apperr"
	"go-flowershop-admin/pkg/logger"

	"gorm.io/gorm"
)

type AdminService interface {
	// ClearAllData wipes every business record. Staff accounts survive.
	ClearAllData(ctx context.Context, actor Actor) (*ClearResult, error)
}

// ClearResult counts the deleted rows per table.
type ClearResult struct {
	Deleted map[string]int64 `json:"deleted"`
}

type adminService struct {
	db  *gorm.DB
	log *logger.Logger
	pub Publisher
}

func NewAdminService(db *gorm.DB, log *logger.Logger, pub Publisher) AdminService {
	return &adminService{db: db, log: log, pub: publisherOrNop(pub)}
}

func (s *adminService) ClearAllData(ctx context.Context, actor Actor) (*ClearResult, error) {
	if !actor.Superuser {
		return nil, apperr.Forbidden("Only superusers can clear all data")
	}

	// Children before parents so restrict constraints never fire.
	tables := []struct {
		name  string
		model any
	}{
		{"payments", &model.Payment{}},
		{"order_items", &model.OrderItem{}},
		{"orders", &model.Order{}},
		{"stock_alerts", &model.StockAlert{}},
		{"stock_movements", &model.StockMovement{}},
		{"products", &model.Product{}},
		{"customers", &model.Customer{}},
	}

	result := &ClearResult{Deleted: make(map[string]int64, len(tables))}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range tables {
			res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(t.model)
			if res.Error != nil {
				return res.Error
			}
			result.Deleted[t.name] = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(err, "Error clearing data")
	}

	s.log.Warn(s.log.WithFields(ctx, map[string]any{
		"actor":   actor.label(),
		"deleted": result.Deleted,
	}), "all business data cleared")
	s.pub.Publish(ws.Event{
		Type:    ws.TypeStockUpdate,
		Action:  "data_cleared",
		Data:    result,
		User:    actor.eventUser(),
		Message: "All data cleared successfully!",
	})
	return result, nil
}
