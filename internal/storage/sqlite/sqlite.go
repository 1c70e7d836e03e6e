// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/ahsanmubariz/splitbill/internal/models"
	"github.com/ahsanmubariz/splitbill/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path. It
// creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveBill persists a finished bill snapshot to the database.
func (s *SQLiteStore) SaveBill(ctx context.Context, bill *models.SavedBill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bills (id, total, tax, service_charge, created_at) VALUES (?, ?, ?, ?, ?)",
		bill.ID, bill.Total, bill.Tax, bill.ServiceCharge, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i, item := range bill.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (bill_id, position, name, price, quantity) VALUES (?, ?, ?, ?, ?)",
			bill.ID, i, item.Name, item.Price, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	for i, name := range bill.People {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO people (bill_id, position, name) VALUES (?, ?, ?)",
			bill.ID, i, name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
	}

	for _, a := range bill.Assignments {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO assignments (bill_id, item_position, person_position, quantity) VALUES (?, ?, ?, ?)",
			bill.ID, a.ItemIndex, a.PersonIndex, a.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBill retrieves a saved bill by ID, including items, people, and
// assignments in their stored positions.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.SavedBill, error) {
	bill := &models.SavedBill{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, total, tax, service_charge, created_at FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.ID, &bill.Total, &bill.Tax, &bill.ServiceCharge, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill not found: %s", billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx,
		"SELECT name, price, quantity FROM items WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.LineItem
		if err := itemRows.Scan(&item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		bill.Items = append(bill.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	peopleRows, err := s.db.QueryContext(ctx,
		"SELECT name FROM people WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer peopleRows.Close()

	for peopleRows.Next() {
		var name string
		if err := peopleRows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		bill.People = append(bill.People, name)
	}
	if err := peopleRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	assignRows, err := s.db.QueryContext(ctx,
		"SELECT item_position, person_position, quantity FROM assignments WHERE bill_id = ? ORDER BY item_position, person_position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var a models.SavedAssignment
		if err := assignRows.Scan(&a.ItemIndex, &a.PersonIndex, &a.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		bill.Assignments = append(bill.Assignments, a)
	}
	if err := assignRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	return bill, nil
}
