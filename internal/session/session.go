// Package session orchestrates one bill-splitting session: the
// upload → assign → summary stage machine, the live bill, the roster,
// and the assignment ledger.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/ahsanmubariz/splitbill/internal/calculator"
	"github.com/ahsanmubariz/splitbill/internal/ledger"
	"github.com/ahsanmubariz/splitbill/internal/models"
	"github.com/ahsanmubariz/splitbill/internal/roster"
	"github.com/ahsanmubariz/splitbill/internal/telemetry"
)

// Stage identifies where the session is in its lifecycle.
type Stage string

const (
	StageUpload  Stage = "upload"
	StageAssign  Stage = "assign"
	StageSummary Stage = "summary"
)

var (
	// ErrNoBill is returned for operations that need a processed bill.
	ErrNoBill = errors.New("no bill has been processed")

	// ErrEmptyRoster is returned when the summary is requested before
	// anyone has been added.
	ErrEmptyRoster = errors.New("no people have been added")

	// ErrBadItem is returned for an item index outside the bill.
	ErrBadItem = errors.New("item index out of range")

	// ErrUnknownPerson is returned for a person ID not in the roster.
	ErrUnknownPerson = errors.New("person not in roster")
)

// ItemView is the assign-stage view of one bill item.
type ItemView struct {
	Index     int            `json:"index"`
	Name      string         `json:"name"`
	Price     float64        `json:"price"`
	Quantity  int            `json:"quantity"`
	Remaining int            `json:"remaining"`
	Assigned  map[string]int `json:"assigned"`
}

// Session holds the mutable state for one splitting session. Every
// mutation is a single atomic step; the mutex exists only because the
// HTTP host serves requests concurrently.
type Session struct {
	mu sync.Mutex

	stage  Stage
	bill   *models.Bill
	roster *roster.Roster
	ledger *ledger.Ledger

	// generation counts uploads; an extraction result is installed
	// only if its generation still matches, so a superseded request
	// that eventually completes is discarded.
	generation uint64

	rec telemetry.Recorder
}

// New returns a fresh session in the upload stage. A nil recorder is
// replaced with a no-op.
func New(rec telemetry.Recorder) *Session {
	if rec == nil {
		rec = telemetry.Noop{}
	}
	return &Session{
		stage:  StageUpload,
		roster: roster.New(),
		ledger: ledger.New(),
		rec:    rec,
	}
}

// Stage returns the current stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Bill returns a copy of the live bill, or nil before one exists.
func (s *Session) Bill() *models.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bill == nil {
		return nil
	}
	b := *s.bill
	b.Items = make([]models.LineItem, len(s.bill.Items))
	copy(b.Items, s.bill.Items)
	return &b
}

// BeginExtraction marks the start of a receipt-processing attempt and
// returns its generation. Starting a new attempt supersedes any prior
// in-flight one.
func (s *Session) BeginExtraction() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// InstallBill installs an extraction result, provided gen still matches
// the current generation. The ledger starts empty for the new bill.
// Reports false when the result was superseded and discarded.
func (s *Session) InstallBill(gen uint64, bill *models.Bill) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.bill = bill
	s.ledger.Reset()
	s.setStage(StageAssign)
	s.rec.Record(telemetry.EventReceiptProcessed, map[string]any{
		"item_count":   len(bill.Items),
		"total_amount": bill.Total,
	})
	return true
}

// AddPerson adds a participant. Empty and duplicate names are silently
// ignored (no-op, reports false). Requires a live bill.
func (s *Session) AddPerson(name string) (models.Person, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bill == nil {
		return models.Person{}, false
	}
	person, ok := s.roster.Add(name)
	if !ok {
		return models.Person{}, false
	}
	s.rec.Record(telemetry.EventPersonAdded, map[string]any{
		"total_people": s.roster.Len(),
	})
	return person, true
}

// RemovePerson removes a participant and every ledger entry that
// belongs to them, in one step, so the roster and ledger are never
// observable out of agreement.
func (s *Session) RemovePerson(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roster.Remove(id); !ok {
		return false
	}
	s.ledger.RemovePerson(id)
	s.rec.Record(telemetry.EventPersonRemoved, map[string]any{
		"total_people": s.roster.Len(),
	})
	return true
}

// People returns the roster in display order.
func (s *Session) People() []models.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.People()
}

// UpdateAssignment changes the quantity of an item claimed by a person
// by delta. An update that would over-allocate the item is silently
// rejected (accepted=false) and the ledger is left unchanged; this is
// deliberate admission control, not an error. The returned view
// reflects the item after the call either way.
func (s *Session) UpdateAssignment(itemIndex int, personID string, delta int) (view ItemView, accepted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bill == nil {
		return ItemView{}, false, ErrNoBill
	}
	if itemIndex < 0 || itemIndex >= len(s.bill.Items) {
		return ItemView{}, false, ErrBadItem
	}
	if _, ok := s.roster.Get(personID); !ok {
		return ItemView{}, false, ErrUnknownPerson
	}

	item := s.bill.Items[itemIndex]
	accepted = s.ledger.Update(itemIndex, personID, delta, item.Quantity)
	if accepted {
		s.rec.Record(telemetry.EventItemAssigned, map[string]any{
			"item_name": item.Name,
			"quantity":  s.ledger.Quantity(itemIndex, personID),
		})
	}
	return s.itemView(itemIndex), accepted, nil
}

// Items returns the assign-stage view of every bill item.
func (s *Session) Items() ([]ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bill == nil {
		return nil, ErrNoBill
	}
	views := make([]ItemView, len(s.bill.Items))
	for i := range s.bill.Items {
		views[i] = s.itemView(i)
	}
	return views, nil
}

func (s *Session) itemView(i int) ItemView {
	item := s.bill.Items[i]
	assigned := make(map[string]int)
	for id, qty := range s.ledger.Entries()[i] {
		assigned[id] = qty
	}
	return ItemView{
		Index:     i,
		Name:      item.Name,
		Price:     item.Price,
		Quantity:  item.Quantity,
		Remaining: s.ledger.Remaining(i, item.Quantity),
		Assigned:  assigned,
	}
}

// Summarize computes the settlement and moves the session to the
// summary stage. It requires a processed bill and a non-empty roster.
func (s *Session) Summarize() (models.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bill == nil {
		return models.Settlement{}, ErrNoBill
	}
	if s.roster.Len() == 0 {
		return models.Settlement{}, ErrEmptyRoster
	}
	s.setStage(StageSummary)
	return calculator.Compute(s.bill, s.roster.People(), s.ledger.Entries()), nil
}

// SavedBill snapshots the session into the persistence document.
// Person references become positions in the frozen People list.
func (s *Session) SavedBill() (*models.SavedBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bill == nil {
		return nil, ErrNoBill
	}
	if s.roster.Len() == 0 {
		return nil, ErrEmptyRoster
	}

	position := make(map[string]int)
	for i, p := range s.roster.People() {
		position[p.ID] = i
	}

	saved := &models.SavedBill{
		Items:         make([]models.LineItem, len(s.bill.Items)),
		People:        s.roster.Names(),
		Total:         s.bill.Total,
		Tax:           s.bill.Tax,
		ServiceCharge: s.bill.ServiceCharge,
		CreatedAt:     time.Now().Unix(),
	}
	copy(saved.Items, s.bill.Items)

	for itemIndex, entry := range s.ledger.Entries() {
		for personID, qty := range entry {
			saved.Assignments = append(saved.Assignments, models.SavedAssignment{
				ItemIndex:   itemIndex,
				PersonIndex: position[personID],
				Quantity:    qty,
			})
		}
	}
	return saved, nil
}

// Reset returns the session to the upload stage and clears the bill,
// roster, and ledger. The generation is bumped so any still-running
// extraction is discarded on arrival. The session can restart
// indefinitely.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bill = nil
	s.roster.Clear()
	s.ledger.Reset()
	s.generation++
	s.setStage(StageUpload)
}

// setStage records a stage transition. Callers hold the mutex.
func (s *Session) setStage(stage Stage) {
	if s.stage == stage {
		return
	}
	from := s.stage
	s.stage = stage
	s.rec.Record(telemetry.EventStageChanged, map[string]any{
		"from": string(from),
		"to":   string(stage),
	})
}
