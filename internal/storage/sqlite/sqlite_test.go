package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ahsanmubariz/splitbill/internal/models"
)

// setupTestStore creates a store backed by a temp database.
func setupTestStore(t *testing.T) (*SQLiteStore, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.Remove(tmpFile.Name())
	}
	return store, cleanup
}

func sampleBill() *models.SavedBill {
	return &models.SavedBill{
		Items: []models.LineItem{
			{Name: "Nasi Goreng", Price: 50000, Quantity: 2},
			{Name: "Es Teh", Price: 10000, Quantity: 2},
		},
		People: []string{"Ali", "Budi"},
		Assignments: []models.SavedAssignment{
			{ItemIndex: 0, PersonIndex: 0, Quantity: 1},
			{ItemIndex: 0, PersonIndex: 1, Quantity: 1},
			{ItemIndex: 1, PersonIndex: 1, Quantity: 2},
		},
		Total:         67500,
		Tax:           5000,
		ServiceCharge: 2500,
	}
}

func TestSaveAndGetBill(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	bill := sampleBill()

	if err := store.SaveBill(ctx, bill); err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}
	if bill.ID == "" {
		t.Fatal("SaveBill did not assign an ID")
	}
	if bill.CreatedAt == 0 {
		t.Error("SaveBill did not set CreatedAt")
	}

	got, err := store.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}

	if !reflect.DeepEqual(got.Items, bill.Items) {
		t.Errorf("items = %+v, want %+v", got.Items, bill.Items)
	}
	if !reflect.DeepEqual(got.People, bill.People) {
		t.Errorf("people = %v, want %v", got.People, bill.People)
	}
	if !reflect.DeepEqual(got.Assignments, bill.Assignments) {
		t.Errorf("assignments = %+v, want %+v", got.Assignments, bill.Assignments)
	}
	if got.Total != bill.Total || got.Tax != bill.Tax || got.ServiceCharge != bill.ServiceCharge {
		t.Errorf("amounts = %v/%v/%v", got.Total, got.Tax, got.ServiceCharge)
	}
	if got.CreatedAt != bill.CreatedAt {
		t.Errorf("created_at = %d, want %d", got.CreatedAt, bill.CreatedAt)
	}
}

func TestGetBillNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetBill(context.Background(), "no-such-id")
	if err == nil {
		t.Fatal("expected error for missing bill")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want not-found", err)
	}
}

func TestSaveBillKeepsCallerID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	bill := sampleBill()
	bill.ID = "fixed-id"
	bill.CreatedAt = 1234567890

	if err := store.SaveBill(ctx, bill); err != nil {
		t.Fatalf("SaveBill failed: %v", err)
	}

	got, err := store.GetBill(ctx, "fixed-id")
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if got.CreatedAt != 1234567890 {
		t.Errorf("created_at = %d", got.CreatedAt)
	}
}

func TestNewCreatesParentDirectory(t *testing.T) {
	dir, err := os.MkdirTemp("", "store-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	store, err := New(filepath.Join(dir, "nested", "bills.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	store.Close()
}
