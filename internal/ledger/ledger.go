// Package ledger tracks how many units of each bill item each person
// has claimed.
//
// The ledger is sparse: only strictly positive quantities are stored.
// Its single invariant is that the quantities claimed for an item never
// sum past the item's available quantity; Update enforces this by
// rejecting any change whose projected total would exceed it.
package ledger

import (
	"github.com/ahsanmubariz/splitbill/internal/models"
)

// Ledger is the assignment ledger for one live bill. It is not safe
// for concurrent use; the owning session serializes access.
type Ledger struct {
	entries models.Assignments
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(models.Assignments)}
}

// Update applies a quantity change for (itemIndex, personID).
// available is the item's total quantity on the bill.
//
// The new quantity is the current one plus delta, clamped at zero.
// If the item's projected total across all people would exceed
// available, the update is rejected and the ledger is left untouched;
// rejected calls are no-ops, not errors. Entries reaching zero are
// pruned, and an item left with no people is pruned entirely.
func (l *Ledger) Update(itemIndex int, personID string, delta, available int) bool {
	item := l.entries[itemIndex]
	current := item[personID]

	next := current + delta
	if next < 0 {
		next = 0
	}

	projected := l.Assigned(itemIndex) - current + next
	if projected > available {
		return false
	}

	if next == 0 {
		delete(item, personID)
		if len(item) == 0 {
			delete(l.entries, itemIndex)
		}
		return true
	}

	if item == nil {
		item = make(map[string]int)
		l.entries[itemIndex] = item
	}
	item[personID] = next
	return true
}

// Quantity returns the quantity assigned to personID for the item,
// zero if none.
func (l *Ledger) Quantity(itemIndex int, personID string) int {
	return l.entries[itemIndex][personID]
}

// Assigned returns the total quantity claimed for the item across all
// people.
func (l *Ledger) Assigned(itemIndex int) int {
	total := 0
	for _, qty := range l.entries[itemIndex] {
		total += qty
	}
	return total
}

// Remaining returns how many units of the item are still unclaimed.
// Given the Update invariant this never goes negative.
func (l *Ledger) Remaining(itemIndex, available int) int {
	return available - l.Assigned(itemIndex)
}

// RemovePerson deletes every entry belonging to personID. Entries for
// other people are untouched; items left empty are pruned.
func (l *Ledger) RemovePerson(personID string) {
	for itemIndex, item := range l.entries {
		if _, ok := item[personID]; !ok {
			continue
		}
		delete(item, personID)
		if len(item) == 0 {
			delete(l.entries, itemIndex)
		}
	}
}

// Entries returns a deep copy of the assignment map.
func (l *Ledger) Entries() models.Assignments {
	return l.entries.Clone()
}

// Reset drops every entry.
func (l *Ledger) Reset() {
	l.entries = make(models.Assignments)
}
