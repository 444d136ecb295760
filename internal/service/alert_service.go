package service

import (
	"context"
	"fmt"
	"slices"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/internal/ws"
	"go-flowershop-admin/pkg/apperr"
	"go-flowershop-admin/pkg/clock"
	"go-flowershop-admin/pkg/database"
	"go-flowershop-admin/pkg/logger"
	"go-flowershop-admin/pkg/metrics"
)

type AlertService interface {
	// CheckAndCreateAlerts walks the active products, opens an alert for each
	// low or empty one without an active alert, and resolves active alerts on
	// products that are back in stock or no longer active.
	CheckAndCreateAlerts(ctx context.Context) (*AlertScanResult, error)
	ResolveAlert(ctx context.Context, id uint, actor Actor) (*model.StockAlert, error)
	IgnoreAlert(ctx context.Context, id uint, actor Actor) (*model.StockAlert, error)
	ListAlerts(ctx context.Context, status model.AlertStatus) ([]model.StockAlert, error)
}

type AlertScanResult struct {
	Created  []model.StockAlert `json:"created"`
	Resolved []model.StockAlert `json:"resolved"`
}

type alertService struct {
	alertRepo   repository.AlertRepository
	productRepo repository.ProductRepository
	clock       clock.Clock
	log         *logger.Logger
	metrics     *metrics.Metrics
	pub         Publisher
}

func NewAlertService(
	alertRepo repository.AlertRepository,
	productRepo repository.ProductRepository,
	clk clock.Clock,
	log *logger.Logger,
	m *metrics.Metrics,
	pub Publisher,
) AlertService {
	return &alertService{
		alertRepo:   alertRepo,
		productRepo: productRepo,
		clock:       clk,
		log:         log,
		metrics:     m,
		pub:         publisherOrNop(pub),
	}
}

func (s *alertService) CheckAndCreateAlerts(ctx context.Context) (*AlertScanResult, error) {
	products, err := s.productRepo.FindActive(ctx)
	if err != nil {
		return nil, storeErr(err, "Product", "loading")
	}
	alerted, err := s.alertRepo.ActiveProductIDs(ctx)
	if err != nil {
		return nil, storeErr(err, "Stock alert", "loading")
	}

	result := &AlertScanResult{Created: []model.StockAlert{}, Resolved: []model.StockAlert{}}
	scanned := make(map[uint]struct{}, len(products))
	for i := range products {
		product := &products[i]
		scanned[product.ID] = struct{}{}

		if _, ok := alerted[product.ID]; ok {
			if product.StockStatus() != model.StockInStock {
				continue
			}
			resolved, err := s.autoResolve(ctx, product.ID, fmt.Sprintf("%s is back in stock", product.Name))
			if err != nil {
				return nil, err
			}
			if resolved != nil {
				result.Resolved = append(result.Resolved, *resolved)
			}
			continue
		}

		alertType, message, ok := model.AlertFor(product)
		if !ok {
			continue
		}
		alert := &model.StockAlert{
			ProductID:         product.ID,
			AlertType:         alertType,
			AlertStatus:       model.AlertActive,
			StockLevelAtAlert: product.StockQuantity,
			Message:           message,
			CreatedAt:         s.clock.Now(),
		}
		if err := s.alertRepo.Create(ctx, alert); err != nil {
			if database.IsUniqueViolation(err) {
				// another scan got there first
				s.log.Debug(ctx, fmt.Sprintf("alert already exists for product %d", product.ID))
				continue
			}
			return nil, storeErr(err, "Stock alert", "creating")
		}
		alert.Product = product
		result.Created = append(result.Created, *alert)

		s.metrics.IncAlertCreated(string(alertType))
		s.pub.Publish(ws.Event{
			Type:    ws.TypeAlert,
			Action:  "alert_created",
			Data:    alert,
			Message: message,
		})
	}

	// deactivated products leave the scan, so their alerts are closed here
	retired := make([]uint, 0)
	for id := range alerted {
		if _, ok := scanned[id]; !ok {
			retired = append(retired, id)
		}
	}
	slices.Sort(retired)
	for _, id := range retired {
		resolved, err := s.autoResolve(ctx, id, fmt.Sprintf("Product %d is no longer active", id))
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			result.Resolved = append(result.Resolved, *resolved)
		}
	}

	if n := len(result.Created) + len(result.Resolved); n > 0 {
		s.log.Info(s.log.WithFields(ctx, map[string]any{
			"alerts_created":  len(result.Created),
			"alerts_resolved": len(result.Resolved),
		}), "stock alert scan finished")
	}
	return result, nil
}

func (s *alertService) autoResolve(ctx context.Context, productID uint, message string) (*model.StockAlert, error) {
	alert, err := s.alertRepo.FindActiveByProduct(ctx, productID)
	if database.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err, "Stock alert", "loading")
	}
	if err := s.close(ctx, alert, model.AlertResolved); err != nil {
		return nil, err
	}
	s.pub.Publish(ws.Event{
		Type:    ws.TypeAlert,
		Action:  "alert_resolved",
		Data:    alert,
		Message: message,
	})
	return alert, nil
}

func (s *alertService) ResolveAlert(ctx context.Context, id uint, actor Actor) (*model.StockAlert, error) {
	return s.transition(ctx, id, model.AlertResolved, actor)
}

func (s *alertService) IgnoreAlert(ctx context.Context, id uint, actor Actor) (*model.StockAlert, error) {
	return s.transition(ctx, id, model.AlertIgnored, actor)
}

func (s *alertService) transition(ctx context.Context, id uint, to model.AlertStatus, actor Actor) (*model.StockAlert, error) {
	alert, err := s.alertRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Stock alert", "loading")
	}
	if alert.AlertStatus != model.AlertActive {
		return nil, apperr.Conflict(fmt.Sprintf("Stock alert is already %s", alert.AlertStatus))
	}
	if err := s.close(ctx, alert, to); err != nil {
		return nil, err
	}

	s.pub.Publish(ws.Event{
		Type:    ws.TypeAlert,
		Action:  "alert_" + string(to),
		Data:    alert,
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s marked alert %d as %s", actor.label(), alert.ID, to),
	})
	return alert, nil
}

func (s *alertService) close(ctx context.Context, alert *model.StockAlert, to model.AlertStatus) error {
	now := s.clock.Now()
	alert.AlertStatus = to
	alert.ResolvedAt = &now
	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return storeErr(err, "Stock alert", "updating")
	}
	return nil
}

func (s *alertService) ListAlerts(ctx context.Context, status model.AlertStatus) ([]model.StockAlert, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.InvalidField("status", "must be one of: active, resolved, ignored")
	}
	alerts, err := s.alertRepo.List(ctx, status, 0)
	if err != nil {
		return nil, storeErr(err, "Stock alert", "loading")
	}
	return alerts, nil
}
