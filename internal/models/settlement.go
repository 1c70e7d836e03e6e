package models

// ShareItem is one item line in a person's settlement breakdown.
type ShareItem struct {
	// Name is the item name from the bill.
	Name string `json:"name"`

	// Quantity is how many units of the item this person claimed.
	Quantity int `json:"quantity"`

	// Amount is this person's cost for those units (unit price × quantity).
	Amount float64 `json:"amount"`
}

// PersonShare is one person's computed share of the bill.
type PersonShare struct {
	PersonID string `json:"person_id"`
	Name     string `json:"name"`

	// Items are the claimed item lines, in bill order.
	Items []ShareItem `json:"items"`

	// Subtotal is the sum of item amounts before tax and service.
	Subtotal float64 `json:"subtotal"`

	// TaxServiceShare is the proportional slice of tax + service charge.
	TaxServiceShare float64 `json:"tax_service_share"`

	// Total is Subtotal + TaxServiceShare.
	Total float64 `json:"total"`
}

// Settlement is the derived result of the split computation. Values are
// kept unrounded; formatting happens at display time only.
type Settlement struct {
	// Shares lists people with a non-zero claim, in roster order.
	// People who claimed nothing are omitted.
	Shares []PersonShare `json:"shares"`

	// TotalAssignedValue is the sum of all subtotals before tax and
	// service, used as the proportionality denominator.
	TotalAssignedValue float64 `json:"total_assigned_value"`
}
