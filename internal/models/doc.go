// Package models defines the core domain models for the split-bill backend.
//
// # Models
//
//   - Bill: an extracted receipt (line items, tax, service charge, total)
//   - LineItem: one line on the receipt; its Price is the line total
//   - Person: a participant, identified by an opaque generated ID
//   - Assignments: sparse item-index → person-ID → quantity mapping
//   - Settlement: computed per-person shares (derived, never stored)
//   - SavedBill: the persistence document for a finished bill
//
// # Design Principles
//
//  1. A Bill is replaced wholesale on every receipt-processing cycle;
//     nothing mutates its items after extraction.
//  2. People are identified by generated IDs, not roster positions, so
//     removing a person never requires renumbering assignment entries.
//  3. Settlement is recomputed from scratch on every change; the inputs
//     are small enough that incremental updates are not worth the bugs.
package models
