package models

// SavedAssignment is one assignment row in the persistence document.
// People are referenced by their position in SavedBill.People, since a
// saved bill is a frozen snapshot and positions can no longer shift.
type SavedAssignment struct {
	ItemIndex   int `json:"item_index"`
	PersonIndex int `json:"person_index"`
	Quantity    int `json:"quantity"`
}

// SavedBill is the document persisted when a finished bill is saved.
// Saving is fire-and-forget from the session's point of view: a failed
// save never disturbs the in-memory settlement.
type SavedBill struct {
	// ID is the unique identifier (UUID format), assigned by the store.
	ID string `json:"id"`

	Items  []LineItem `json:"items"`
	People []string   `json:"people"`

	Assignments []SavedAssignment `json:"assignments"`

	Total         float64 `json:"total"`
	Tax           float64 `json:"tax"`
	ServiceCharge float64 `json:"service_charge"`

	// CreatedAt is the Unix timestamp when the bill was saved.
	CreatedAt int64 `json:"created_at"`
}
