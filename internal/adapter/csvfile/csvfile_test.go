package csvfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/oms/internal/normalize"
)

const header = "sn,package,date,status,qty,name,category,product,size,color,paid,disputed," +
	"total,ordered,shipped,phone,payment,address,price,delivery,discount,medium,method," +
	"insta,phone2,paid_at,email,amount,giveaway\n"

func line(cols map[int]string) string {
	fields := make([]string, Columns)
	for i, v := range cols {
		fields[i] = v
	}
	return strings.Join(fields, ",") + "\n"
}

func TestRead_MapsColumns(t *testing.T) {
	input := header + line(map[int]string{
		colDeliveryPackageID: "PKG-1",
		colStatus:            "Shipped",
		colQuantity:          "2 pcs",
		colFullName:          "sita sharma",
		colCategoryTitle:     "tee",
		colProductTitle:      "minimal logo",
		colSize:              "2XL",
		colColor:             "white",
		colIsPaid:            "Paid",
		colDisputed:          "torn seam",
		colTotalPrice:        "1150",
		colOrderedAt:         "26/05/2024",
		colShippedAt:         `"May 28, 2024"`,
		colPhone:             "9841234567",
		colPaymentMethod:     "COD",
		colAddress:           `"Lakeside, Pokhara"`,
		colPrice:             "1000",
		colDeliveryCharge:    "150",
		colDiscount:          "0",
		colMedium:            "Instagram",
		colDeliveryMethod:    "NCM",
		colInstaHandle:       "@sita",
		colPhone2:            "9800000000",
		colPaidAt:            `"May 26, 2024"`,
		colEmail:             "sita@example.com",
		colAmount:            "300",
		colGiveaway:          "influencer",
	})

	recs, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, 2, r.Row)
	assert.Empty(t, r.GroupKey)
	assert.Equal(t, "PKG-1", r.DeliveryPackageID)
	assert.Equal(t, "Shipped", r.Status)
	assert.Equal(t, "2 pcs", r.Quantity)
	assert.Equal(t, "sita sharma", r.FullName)
	assert.Equal(t, "tee", r.CategoryTitle)
	assert.Equal(t, "minimal logo", r.ProductTitle)
	assert.Equal(t, "2XL", r.Size)
	assert.Equal(t, "white", r.Color)
	assert.Equal(t, "Paid", r.IsPaid)
	assert.Equal(t, "torn seam", r.IsDisputed)
	assert.Equal(t, "torn seam", r.DisputeRemarks)
	assert.Equal(t, "1150", r.TotalPrice)
	assert.Equal(t, "26/05/2024", r.OrderedAt)
	assert.Equal(t, "May 28, 2024", r.ShippedAt)
	assert.Equal(t, "9841234567", r.Phone)
	assert.Equal(t, "COD", r.PaymentMethod)
	assert.Equal(t, "Lakeside, Pokhara", r.Address)
	assert.Equal(t, "Lakeside, Pokhara", r.DeliveryTo)
	assert.Equal(t, "1000", r.Price)
	assert.Equal(t, "1000", r.SubtotalPrice)
	assert.Equal(t, "150", r.DeliveryCharge)
	assert.Equal(t, "0", r.Discount)
	assert.Equal(t, "Instagram", r.Medium)
	assert.Equal(t, "NCM", r.DeliveryMethod)
	assert.Equal(t, "@sita", r.InstaHandle)
	assert.Equal(t, "9800000000", r.Phone2)
	assert.Equal(t, "May 26, 2024", r.PaidAt)
	assert.Equal(t, "sita@example.com", r.Email)
	assert.Equal(t, "300", r.Amount)
	assert.Equal(t, "influencer", r.IsGiveaway)
	assert.Equal(t, "influencer", r.GiveawayReason)
}

func TestRead_StripsBOMAndPadsShortRows(t *testing.T) {
	input := "\xEF\xBB\xBF" + header + "1,PKG,,Pending,1,ram\n"

	recs, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ram", recs[0].FullName)
	assert.Empty(t, recs[0].Phone)
	assert.Empty(t, recs[0].GiveawayReason)
}

func TestRead_RowNumbersFollowFileLines(t *testing.T) {
	input := header +
		line(map[int]string{colPhone: "1"}) +
		line(map[int]string{colPhone: "2", colAddress: "\"multi\nline\""}) +
		line(map[int]string{colPhone: "3"})

	recs, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, 2, recs[0].Row)
	assert.Equal(t, 3, recs[1].Row)
	assert.Equal(t, 5, recs[2].Row)
	assert.Equal(t, "multi\nline", recs[1].Address)
}

func TestRead_EmptyInput(t *testing.T) {
	recs, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = Read(strings.NewReader(header))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRead_BareQuotesInCells(t *testing.T) {
	input := header +
		line(map[int]string{colPhone: "9800000001", colProductTitle: "minimal logo"}) +
		line(map[int]string{colPhone: "9800000002", colProductTitle: `Oversized "Rzzy" Tee`}) +
		line(map[int]string{colPhone: "9800000003", colAddress: `"Lakeside, Pokhara"`})

	recs, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "minimal logo", recs[0].ProductTitle)
	assert.Equal(t, `Oversized "Rzzy" Tee`, recs[1].ProductTitle)
	assert.Equal(t, 3, recs[1].Row)
	assert.Equal(t, "OVERSIZED-RZZY-TEE", normalize.ProductTitle(recs[1].ProductTitle))
	assert.Equal(t, "Lakeside, Pokhara", recs[2].Address)
}

func TestRead_UnterminatedQuoteKeepsEarlierRows(t *testing.T) {
	input := header +
		line(map[int]string{colPhone: "9800000001"}) +
		"1,\"unterminated\n"

	recs, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "9800000001", recs[0].Phone)
	assert.Equal(t, "unterminated\n", recs[1].DeliveryPackageID)
	assert.Empty(t, recs[1].Phone)
}
