package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEnumValid(t *testing.T) {
	assert.True(t, SizeFree.Valid())
	assert.False(t, Size("XS").Valid())
	assert.True(t, ColorWhite.Valid())
	assert.False(t, Color("black").Valid())
	assert.True(t, MediumContact.Valid())
	assert.False(t, Medium("Physically").Valid())
}

func TestRawRecord_Trimmed(t *testing.T) {
	r := RawRecord{Row: 3, Phone: " 98 ", Size: "\tXL\n", DeliveryBranch: " POKHARA "}
	got := r.Trimmed()

	assert.Equal(t, "98", got.Phone)
	assert.Equal(t, "XL", got.Size)
	assert.Equal(t, "POKHARA", got.DeliveryBranch)
	assert.Equal(t, 3, got.Row)
	assert.Equal(t, " 98 ", r.Phone, "original must be untouched")
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "0.00", FormatMoney(ZeroMoney))
	assert.Equal(t, "12.35", FormatMoney(RoundMoney(decimal.RequireFromString("12.345"))))
	assert.Equal(t, "7.00", FormatMoney(decimal.NewFromInt(7)))
}
