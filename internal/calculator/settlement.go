// Package calculator computes the final settlement from a bill, a
// roster, and the assignment ledger.
package calculator

import (
	"github.com/ahsanmubariz/splitbill/internal/models"
)

// Compute derives each person's share of the bill.
//
// Each claimed unit costs the item's per-unit price. Tax and service
// charge are then distributed proportionally to each person's subtotal
// relative to the total assigned value. People who claimed nothing are
// omitted from the result.
//
// Compute is pure: it never mutates its inputs, and the whole
// settlement is recomputed from scratch on every call. No rounding is
// applied; values stay unrounded so repeated recomputation cannot
// compound error.
func Compute(bill *models.Bill, people []models.Person, assignments models.Assignments) models.Settlement {
	if bill == nil || len(people) == 0 {
		return models.Settlement{}
	}

	type accum struct {
		items    []models.ShareItem
		subtotal float64
	}
	totals := make(map[string]*accum, len(people))
	for _, p := range people {
		totals[p.ID] = &accum{}
	}

	var totalAssigned float64

	// Walk items in bill order so each person's breakdown comes out in
	// receipt order.
	for i, item := range bill.Items {
		entry := assignments[i]
		if len(entry) == 0 {
			continue
		}
		unitPrice := item.UnitPrice()

		for _, p := range people {
			qty, ok := entry[p.ID]
			if !ok {
				continue
			}
			cost := unitPrice * float64(qty)
			acc := totals[p.ID]
			acc.subtotal += cost
			acc.items = append(acc.items, models.ShareItem{
				Name:     item.Name,
				Quantity: qty,
				Amount:   cost,
			})
			totalAssigned += cost
		}
	}

	settlement := models.Settlement{TotalAssignedValue: totalAssigned}

	for _, p := range people {
		acc := totals[p.ID]
		if acc.subtotal <= 0 {
			continue
		}
		share := models.PersonShare{
			PersonID: p.ID,
			Name:     p.Name,
			Items:    acc.items,
			Subtotal: acc.subtotal,
		}
		// Guarded: only reached when at least one claim exists, so the
		// denominator is non-zero.
		if totalAssigned > 0 {
			proportion := acc.subtotal / totalAssigned
			share.TaxServiceShare = proportion * (bill.Tax + bill.ServiceCharge)
		}
		share.Total = share.Subtotal + share.TaxServiceShare
		settlement.Shares = append(settlement.Shares, share)
	}

	return settlement
}
