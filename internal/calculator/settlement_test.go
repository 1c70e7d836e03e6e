package calculator

import (
	"math"
	"testing"

	"github.com/ahsanmubariz/splitbill/internal/models"
)

func TestCompute(t *testing.T) {
	alice := models.Person{ID: "p-alice", Name: "Alice"}
	bob := models.Person{ID: "p-bob", Name: "Bob"}
	cara := models.Person{ID: "p-cara", Name: "Cara"}

	tests := []struct {
		name         string
		bill         *models.Bill
		people       []models.Person
		assignments  models.Assignments
		validateFunc func(t *testing.T, s models.Settlement)
	}{
		{
			name:        "nil bill yields empty settlement",
			bill:        nil,
			people:      []models.Person{alice},
			assignments: models.Assignments{},
			validateFunc: func(t *testing.T, s models.Settlement) {
				if len(s.Shares) != 0 || s.TotalAssignedValue != 0 {
					t.Errorf("expected empty settlement, got %+v", s)
				}
			},
		},
		{
			name:        "empty roster yields empty settlement",
			bill:        &models.Bill{Items: []models.LineItem{{Name: "Teh", Price: 5000, Quantity: 1}}},
			people:      nil,
			assignments: models.Assignments{0: {"p-alice": 1}},
			validateFunc: func(t *testing.T, s models.Settlement) {
				if len(s.Shares) != 0 || s.TotalAssignedValue != 0 {
					t.Errorf("expected empty settlement, got %+v", s)
				}
			},
		},
		{
			name: "empty ledger yields zero subtotals",
			bill: &models.Bill{
				Items: []models.LineItem{{Name: "Teh", Price: 5000, Quantity: 1}},
				Tax:   500,
				Total: 5500,
			},
			people:      []models.Person{alice, bob},
			assignments: models.Assignments{},
			validateFunc: func(t *testing.T, s models.Settlement) {
				if s.TotalAssignedValue != 0 {
					t.Errorf("total assigned value = %v, want 0", s.TotalAssignedValue)
				}
				if len(s.Shares) != 0 {
					t.Errorf("expected no shares, got %d", len(s.Shares))
				}
			},
		},
		{
			name: "nasi goreng split between two people",
			bill: &models.Bill{
				Items:         []models.LineItem{{Name: "Nasi Goreng", Price: 50000, Quantity: 2}},
				Tax:           5000,
				ServiceCharge: 2500,
				Total:         57500,
			},
			people: []models.Person{alice, bob},
			assignments: models.Assignments{
				0: {"p-alice": 1, "p-bob": 1},
			},
			validateFunc: func(t *testing.T, s models.Settlement) {
				// unitPrice = 25000; each claims one unit, so each pays
				// 25000 plus half of 7500 tax+service = 28750.
				if math.Abs(s.TotalAssignedValue-50000) > 0.01 {
					t.Errorf("total assigned value = %v, want 50000", s.TotalAssignedValue)
				}
				if len(s.Shares) != 2 {
					t.Fatalf("expected 2 shares, got %d", len(s.Shares))
				}
				var sum float64
				for _, share := range s.Shares {
					if math.Abs(share.Subtotal-25000) > 0.01 {
						t.Errorf("%s subtotal = %v, want 25000", share.Name, share.Subtotal)
					}
					if math.Abs(share.TaxServiceShare-3750) > 0.01 {
						t.Errorf("%s tax/service share = %v, want 3750", share.Name, share.TaxServiceShare)
					}
					if math.Abs(share.Total-28750) > 0.01 {
						t.Errorf("%s total = %v, want 28750", share.Name, share.Total)
					}
					sum += share.Total
				}
				if math.Abs(sum-57500) > 0.01 {
					t.Errorf("sum of totals = %v, want bill total 57500", sum)
				}
			},
		},
		{
			name: "uneven claims get proportional tax",
			bill: &models.Bill{
				Items: []models.LineItem{
					{Name: "Sate", Price: 30000, Quantity: 3},
					{Name: "Es Teh", Price: 10000, Quantity: 2},
				},
				Tax:           4000,
				ServiceCharge: 0,
				Total:         44000,
			},
			people: []models.Person{alice, bob},
			assignments: models.Assignments{
				0: {"p-alice": 2, "p-bob": 1},
				1: {"p-bob": 2},
			},
			validateFunc: func(t *testing.T, s models.Settlement) {
				// Alice: 2×10000 = 20000. Bob: 10000 + 10000 = 20000.
				// Equal subtotals, so tax splits 2000/2000.
				if len(s.Shares) != 2 {
					t.Fatalf("expected 2 shares, got %d", len(s.Shares))
				}
				for _, share := range s.Shares {
					if math.Abs(share.Subtotal-20000) > 0.01 {
						t.Errorf("%s subtotal = %v, want 20000", share.Name, share.Subtotal)
					}
					if math.Abs(share.TaxServiceShare-2000) > 0.01 {
						t.Errorf("%s tax share = %v, want 2000", share.Name, share.TaxServiceShare)
					}
				}
			},
		},
		{
			name: "person with no claims is excluded",
			bill: &models.Bill{
				Items: []models.LineItem{{Name: "Bakso", Price: 15000, Quantity: 1}},
				Tax:   1500,
				Total: 16500,
			},
			people: []models.Person{alice, bob, cara},
			assignments: models.Assignments{
				0: {"p-bob": 1},
			},
			validateFunc: func(t *testing.T, s models.Settlement) {
				if len(s.Shares) != 1 {
					t.Fatalf("expected 1 share, got %d", len(s.Shares))
				}
				if s.Shares[0].PersonID != "p-bob" {
					t.Errorf("share belongs to %s, want p-bob", s.Shares[0].PersonID)
				}
				if math.Abs(s.Shares[0].Total-16500) > 0.01 {
					t.Errorf("Bob total = %v, want 16500", s.Shares[0].Total)
				}
			},
		},
		{
			name: "breakdown follows bill order and shares follow roster order",
			bill: &models.Bill{
				Items: []models.LineItem{
					{Name: "Ayam", Price: 20000, Quantity: 2},
					{Name: "Jus", Price: 12000, Quantity: 2},
				},
				Total: 32000,
			},
			people: []models.Person{alice, bob},
			assignments: models.Assignments{
				1: {"p-alice": 1, "p-bob": 1},
				0: {"p-alice": 1},
			},
			validateFunc: func(t *testing.T, s models.Settlement) {
				if len(s.Shares) != 2 {
					t.Fatalf("expected 2 shares, got %d", len(s.Shares))
				}
				if s.Shares[0].PersonID != "p-alice" || s.Shares[1].PersonID != "p-bob" {
					t.Errorf("shares out of roster order: %s, %s",
						s.Shares[0].PersonID, s.Shares[1].PersonID)
				}
				aliceItems := s.Shares[0].Items
				if len(aliceItems) != 2 || aliceItems[0].Name != "Ayam" || aliceItems[1].Name != "Jus" {
					t.Errorf("Alice breakdown out of bill order: %+v", aliceItems)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, Compute(tt.bill, tt.people, tt.assignments))
		})
	}
}

// The sum of every share's total must equal the assigned value plus all
// of the tax and service charge whenever anything was assigned.
func TestComputeConservation(t *testing.T) {
	bill := &models.Bill{
		Items: []models.LineItem{
			{Name: "A", Price: 17999, Quantity: 3},
			{Name: "B", Price: 23450, Quantity: 7},
			{Name: "C", Price: 999, Quantity: 1},
		},
		Tax:           3141,
		ServiceCharge: 2718,
		Total:         48307,
	}
	people := []models.Person{
		{ID: "x", Name: "X"}, {ID: "y", Name: "Y"}, {ID: "z", Name: "Z"},
	}
	assignments := models.Assignments{
		0: {"x": 1, "y": 2},
		1: {"x": 3, "z": 4},
		2: {"z": 1},
	}

	s := Compute(bill, people, assignments)

	var sum float64
	for _, share := range s.Shares {
		sum += share.Total
	}
	want := s.TotalAssignedValue + bill.Tax + bill.ServiceCharge
	if math.Abs(sum-want) > 1e-9*want {
		t.Errorf("sum of totals = %v, want %v", sum, want)
	}
}

// Compute must not mutate its inputs.
func TestComputePure(t *testing.T) {
	bill := &models.Bill{
		Items: []models.LineItem{{Name: "A", Price: 10000, Quantity: 2}},
		Tax:   1000,
		Total: 11000,
	}
	people := []models.Person{{ID: "x", Name: "X"}}
	assignments := models.Assignments{0: {"x": 1}}

	first := Compute(bill, people, assignments)
	second := Compute(bill, people, assignments)

	if len(first.Shares) != 1 || len(second.Shares) != 1 {
		t.Fatalf("expected 1 share in both runs")
	}
	if first.Shares[0].Total != second.Shares[0].Total {
		t.Errorf("repeated computation diverged: %v vs %v",
			first.Shares[0].Total, second.Shares[0].Total)
	}
	if bill.Items[0].Price != 10000 || assignments[0]["x"] != 1 {
		t.Errorf("inputs were mutated: %+v %+v", bill, assignments)
	}
}
