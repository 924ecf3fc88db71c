// Package courier books deliveries with the courier partner.
//
// BuildRequest turns a stored order into the courier's create-order body;
// Client posts it; Shipper does both and records the returned package id on
// the order.
package courier

import (
	"errors"
	"fmt"

	"github.com/roach88/oms/internal/domain"
)

var (
	// ErrNoBranch is returned for orders without a destination branch.
	ErrNoBranch = errors.New("order has no delivery branch")
	// ErrAlreadyShipped is returned for orders that already carry a package id.
	ErrAlreadyShipped = errors.New("order already has a delivery package")
)

// Request is the courier create-order body.
type Request struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Phone2     string `json:"phone2"`
	CODCharge  string `json:"cod_charge"`
	Address    string `json:"address"`
	FromBranch string `json:"from_branch"`
	ToBranch   string `json:"to_branch"`
}

// BuildRequest builds the create-order body for s.
//
// The cash-on-delivery charge is zero for paid orders, otherwise the total
// less any advance payments, never below zero.
func BuildRequest(s *domain.Shipment, fromBranch string) (*Request, error) {
	o := s.Order
	if o.DeliveryBranch == "" {
		return nil, fmt.Errorf("order %d: %w", o.ID, ErrNoBranch)
	}
	if o.DeliveryPackageID != "" {
		return nil, fmt.Errorf("order %d (package %s): %w", o.ID, o.DeliveryPackageID, ErrAlreadyShipped)
	}

	cod := domain.ZeroMoney
	if !o.IsPaid {
		cod = o.TotalPrice.Sub(s.AdvancePaid)
		if cod.IsNegative() {
			cod = domain.ZeroMoney
		}
	}

	return &Request{
		Name:       s.Customer.FullName,
		Phone:      s.Customer.Phone,
		Phone2:     s.Customer.Phone2,
		CODCharge:  domain.FormatMoney(cod),
		Address:    o.DeliveryTo,
		FromBranch: fromBranch,
		ToBranch:   o.DeliveryBranch,
	}, nil
}
