// Package roster maintains the ordered, duplicate-free list of people
// splitting the bill.
package roster

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ahsanmubariz/splitbill/internal/models"
)

// Roster is the ordered list of participants. Each person carries an
// opaque generated ID; display order is the insertion order and has no
// bearing on identity.
type Roster struct {
	people []models.Person
}

// New returns an empty roster.
func New() *Roster {
	return &Roster{}
}

// Add appends a person with the given name. The name is trimmed first.
// Empty names and names already present (case-sensitive exact match)
// are silently ignored and Add reports false.
func (r *Roster) Add(name string) (models.Person, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Person{}, false
	}
	for _, p := range r.people {
		if p.Name == name {
			return models.Person{}, false
		}
	}
	person := models.Person{ID: uuid.New().String(), Name: name}
	r.people = append(r.people, person)
	return person, true
}

// Remove deletes the person with the given ID, preserving the order of
// everyone else. Reports false if the ID is not in the roster.
func (r *Roster) Remove(id string) (models.Person, bool) {
	for i, p := range r.people {
		if p.ID == id {
			r.people = append(r.people[:i], r.people[i+1:]...)
			return p, true
		}
	}
	return models.Person{}, false
}

// Get returns the person with the given ID.
func (r *Roster) Get(id string) (models.Person, bool) {
	for _, p := range r.people {
		if p.ID == id {
			return p, true
		}
	}
	return models.Person{}, false
}

// People returns the participants in display order. The returned slice
// is a copy.
func (r *Roster) People() []models.Person {
	out := make([]models.Person, len(r.people))
	copy(out, r.people)
	return out
}

// Names returns the display names in order.
func (r *Roster) Names() []string {
	names := make([]string, len(r.people))
	for i, p := range r.people {
		names[i] = p.Name
	}
	return names
}

// Len returns the number of participants.
func (r *Roster) Len() int {
	return len(r.people)
}

// Clear removes everyone.
func (r *Roster) Clear() {
	r.people = nil
}
