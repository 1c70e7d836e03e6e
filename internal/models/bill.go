package models

// LineItem represents a single line on an extracted receipt.
type LineItem struct {
	// Name is the item description as read off the receipt.
	Name string `json:"name"`

	// Price is the total price for the whole line (quantity × unit
	// price), matching the extraction contract. Per-unit cost is
	// derived via UnitPrice.
	Price float64 `json:"price"`

	// Quantity is the number of units on this line. Always >= 1.
	Quantity int `json:"quantity"`
}

// UnitPrice returns the per-unit price for the line.
func (li LineItem) UnitPrice() float64 {
	return li.Price / float64(li.Quantity)
}

// Bill represents an extracted receipt. It is created once per
// receipt-processing cycle and replaced wholesale, never patched.
type Bill struct {
	// Items are the line items in receipt order. Items are immutable
	// after extraction and referenced elsewhere by index.
	Items []LineItem `json:"items"`

	// Tax is the tax amount on the receipt, 0 if none was found.
	Tax float64 `json:"tax"`

	// ServiceCharge is the service charge, 0 if none was found.
	ServiceCharge float64 `json:"service_charge"`

	// Total is the grand total printed on the receipt.
	Total float64 `json:"total"`
}

// Normalize repairs values the extraction model is allowed to get
// slightly wrong: quantities below 1 become 1 and negative amounts
// become 0. Items themselves are never invented or dropped.
func (b *Bill) Normalize() {
	for i := range b.Items {
		if b.Items[i].Quantity < 1 {
			b.Items[i].Quantity = 1
		}
		if b.Items[i].Price < 0 {
			b.Items[i].Price = 0
		}
	}
	if b.Tax < 0 {
		b.Tax = 0
	}
	if b.ServiceCharge < 0 {
		b.ServiceCharge = 0
	}
	if b.Total < 0 {
		b.Total = 0
	}
}

// Person is a participant in the split.
type Person struct {
	// ID is the opaque generated identifier (UUID format). Assignment
	// entries reference people by this ID, so removing a person never
	// disturbs entries belonging to anyone else.
	ID string `json:"id"`

	// Name is the display name, trimmed and unique within a roster.
	Name string `json:"name"`
}

// Assignments maps item index → person ID → assigned quantity.
// Quantities are strictly positive; an entry that would reach zero is
// removed instead, and an item with no remaining people is removed
// entirely.
type Assignments map[int]map[string]int

// Clone returns a deep copy.
func (a Assignments) Clone() Assignments {
	out := make(Assignments, len(a))
	for item, people := range a {
		entry := make(map[string]int, len(people))
		for id, qty := range people {
			entry[id] = qty
		}
		out[item] = entry
	}
	return out
}
