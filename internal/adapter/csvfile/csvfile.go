// Package csvfile reads the legacy spreadsheet export into raw records.
//
// The export is UTF-8, comma-delimited, with one header line and one
// order-item per row. Columns are positional; see the column constants.
package csvfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/oms/internal/domain"
)

// Column positions in the export (0-based).
const (
	colDeliveryPackageID = 1
	colStatus            = 3
	colQuantity          = 4
	colFullName          = 5
	colCategoryTitle     = 6
	colProductTitle      = 7
	colSize              = 8
	colColor             = 9
	colIsPaid            = 10
	colDisputed          = 11
	colTotalPrice        = 12
	colOrderedAt         = 13
	colShippedAt         = 14
	colPhone             = 15
	colPaymentMethod     = 16
	colAddress           = 17
	colPrice             = 18
	colDeliveryCharge    = 19
	colDiscount          = 20
	colMedium            = 21
	colDeliveryMethod    = 22
	colInstaHandle       = 23
	colPhone2            = 24
	colPaidAt            = 25
	colEmail             = 26
	colAmount            = 27
	colGiveaway          = 28

	// Columns is the width every row is padded to.
	Columns = colGiveaway + 1
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Read parses the export and returns one RawRecord per data row.
//
// Row numbers are 1-based file lines, so the first data row is 2. Short rows
// are padded with empty strings; the cleaner rejects them later if required
// fields end up missing. Quotes are read lazily: hand-typed cells such as
// Oversized "Rzzy" Tee keep their bare quotes and are left to the cleaner.
func Read(r io.Reader) ([]domain.RawRecord, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && bytes.Equal(head, bom) {
		if _, err := br.Discard(len(bom)); err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var out []domain.RawRecord
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		out = append(out, recordOf(line, pad(fields)))
	}
	return out, nil
}

func pad(fields []string) []string {
	if len(fields) >= Columns {
		return fields
	}
	padded := make([]string, Columns)
	copy(padded, fields)
	return padded
}

func recordOf(row int, f []string) domain.RawRecord {
	return domain.RawRecord{
		Row:               row,
		DeliveryPackageID: f[colDeliveryPackageID],
		Status:            f[colStatus],
		Quantity:          f[colQuantity],
		FullName:          f[colFullName],
		CategoryTitle:     f[colCategoryTitle],
		ProductTitle:      f[colProductTitle],
		Size:              f[colSize],
		Color:             f[colColor],
		IsPaid:            f[colIsPaid],
		IsDisputed:        f[colDisputed],
		DisputeRemarks:    f[colDisputed],
		TotalPrice:        f[colTotalPrice],
		OrderedAt:         f[colOrderedAt],
		ShippedAt:         f[colShippedAt],
		Phone:             f[colPhone],
		PaymentMethod:     f[colPaymentMethod],
		Address:           f[colAddress],
		DeliveryTo:        f[colAddress],
		SubtotalPrice:     f[colPrice],
		Price:             f[colPrice],
		DeliveryCharge:    f[colDeliveryCharge],
		Discount:          f[colDiscount],
		Medium:            f[colMedium],
		DeliveryMethod:    f[colDeliveryMethod],
		InstaHandle:       f[colInstaHandle],
		Phone2:            f[colPhone2],
		PaidAt:            f[colPaidAt],
		Email:             f[colEmail],
		Amount:            f[colAmount],
		IsGiveaway:        f[colGiveaway],
		GiveawayReason:    f[colGiveaway],
	}
}
