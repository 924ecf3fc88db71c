package cli

import (
	"fmt"
)

// storefrontOrder renders a storefront order for the fetch, serve and ship
// tests.
func storefrontOrder(id int64, status, phone string) string {
	return fmt.Sprintf(`{
  "id": %d,
  "status": %q,
  "date_created": "2024-05-21T10:30:00",
  "discount_total": "0.00",
  "shipping_total": "150.00",
  "total": "1950.00",
  "order_key": "wc_order_%d",
  "billing": {"first_name": "sita", "last_name": "sharma", "address_1": "Lakeside", "phone": %q},
  "shipping": {"address_1": "Bagar", "state": "NP041"},
  "payment_method": "cod",
  "line_items": [
    {"id": 41, "product_id": 9, "name": "Minimal Logo Tee", "quantity": 2, "subtotal": "1800.00", "total": "1800.00",
     "meta_data": [{"key": "pa_size", "value": "xl"}]}
  ]
}`, id, status, id, phone)
}
