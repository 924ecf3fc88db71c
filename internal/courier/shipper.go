package courier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/oms/internal/domain"
)

// ShipmentStore reads an order for shipping and records its package id.
type ShipmentStore interface {
	Shipment(ctx context.Context, orderID int64) (*domain.Shipment, error)
	SetDeliveryPackageID(ctx context.Context, orderID int64, packageID string) error
}

// OrderCreator books a delivery with the courier.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req *Request) (string, error)
}

// Shipper books stored orders with the courier.
type Shipper struct {
	store      ShipmentStore
	courier    OrderCreator
	fromBranch string
	logger     *slog.Logger
}

// NewShipper creates a Shipper sending from fromBranch.
func NewShipper(store ShipmentStore, courier OrderCreator, fromBranch string, logger *slog.Logger) *Shipper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shipper{
		store:      store,
		courier:    courier,
		fromBranch: fromBranch,
		logger:     logger.With("component", "courier"),
	}
}

// Ship books orderID and stores the returned package id on the order.
func (s *Shipper) Ship(ctx context.Context, orderID int64) (string, error) {
	shipment, err := s.store.Shipment(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("load order %d: %w", orderID, err)
	}

	req, err := BuildRequest(shipment, s.fromBranch)
	if err != nil {
		return "", err
	}

	pkg, err := s.courier.CreateOrder(ctx, req)
	if err != nil {
		return "", fmt.Errorf("ship order %d: %w", orderID, err)
	}

	if err := s.store.SetDeliveryPackageID(ctx, orderID, pkg); err != nil {
		return "", fmt.Errorf("store package %s for order %d: %w", pkg, orderID, err)
	}

	s.logger.InfoContext(ctx, "order shipped", "order_id", orderID, "package_id", pkg,
		"to_branch", req.ToBranch, "cod_charge", req.CODCharge)
	return pkg, nil
}
