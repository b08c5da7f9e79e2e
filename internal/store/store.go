// Package store implements the in-memory domain repository for one planning
// session: recipients, occasions, and the budget, keyed by generated
// identifiers. Insertion order is preserved so listings and first-match
// lookups stay deterministic.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"giftplanner/internal/core"
	"giftplanner/internal/dates"
)

// Store owns all entity collections of a single session. It is safe for
// concurrent use; a single mutex is enough given the tiny state size.
type Store struct {
	mu    sync.Mutex
	clock dates.Clock

	recipients     map[string]*core.Recipient
	recipientOrder []string
	occasions      map[string]*core.Occasion
	occasionOrder  []string
	budget         core.Budget
}

// New creates an empty store. A nil clock falls back to the real one.
func New(clock dates.Clock) *Store {
	if clock == nil {
		clock = dates.RealClock{}
	}
	return &Store{
		clock:      clock,
		recipients: make(map[string]*core.Recipient),
		occasions:  make(map[string]*core.Occasion),
	}
}

// RecipientParams carries the creation attributes for a recipient. Only the
// name is required.
type RecipientParams struct {
	Name         string
	Age          *int
	Interests    []string
	Relationship string
	BudgetRange  *core.BudgetRange
	Style        string
}

func (s *Store) AddRecipient(p RecipientParams) (core.Recipient, error) {
	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}

	r := core.Recipient{
		ID:           uuid.NewString(),
		Name:         p.Name,
		Age:          p.Age,
		Interests:    interests,
		Relationship: p.Relationship,
		GiftHistory:  []core.GiftRecord{},
		Preferences: core.Preferences{
			BudgetRange: copyBudgetRange(p.BudgetRange),
			Style:       p.Style,
		},
		CreatedAt: s.clock.Now(),
	}
	if err := r.Validate(); err != nil {
		return core.Recipient{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients[r.ID] = &r
	s.recipientOrder = append(s.recipientOrder, r.ID)
	return copyRecipient(&r), nil
}

func (s *Store) GetRecipient(id string) (core.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipients[id]
	if !ok {
		return core.Recipient{}, core.NotFoundf("recipient %s not found", id)
	}
	return copyRecipient(r), nil
}

// GetRecipientByName performs a case-insensitive exact match against stored
// names. With duplicate names the first recipient in insertion order wins.
func (s *Store) GetRecipientByName(name string) (core.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lower := strings.ToLower(name)
	for _, id := range s.recipientOrder {
		if strings.ToLower(s.recipients[id].Name) == lower {
			return copyRecipient(s.recipients[id]), nil
		}
	}
	return core.Recipient{}, core.NotFoundf("recipient %q not found", name)
}

func (s *Store) ListRecipients() []core.Recipient {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Recipient, 0, len(s.recipientOrder))
	for _, id := range s.recipientOrder {
		out = append(out, copyRecipient(s.recipients[id]))
	}
	return out
}

// RecipientUpdate is the allow-list of mutable recipient fields. Nil fields
// are left untouched. Anything outside this struct cannot be mutated; the
// adapters drop unknown keys silently before building one of these.
type RecipientUpdate struct {
	Name         *string
	Age          *int
	Interests    *[]string
	Relationship *string
	BudgetRange  *core.BudgetRange
	Style        *string
}

func (s *Store) UpdateRecipient(id string, u RecipientUpdate) (core.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipients[id]
	if !ok {
		return core.Recipient{}, core.NotFoundf("recipient %s not found", id)
	}

	if u.Name != nil {
		if strings.TrimSpace(*u.Name) == "" {
			return core.Recipient{}, core.Validationf("recipient name is required")
		}
		r.Name = *u.Name
	}
	if u.Age != nil {
		if *u.Age < 0 {
			return core.Recipient{}, core.Validationf("age must not be negative")
		}
		r.Age = u.Age
	}
	if u.Interests != nil {
		r.Interests = append([]string{}, (*u.Interests)...)
	}
	if u.Relationship != nil {
		r.Relationship = *u.Relationship
	}
	if u.BudgetRange != nil {
		if err := u.BudgetRange.Validate(); err != nil {
			return core.Recipient{}, err
		}
		r.Preferences.BudgetRange = copyBudgetRange(u.BudgetRange)
	}
	if u.Style != nil {
		r.Preferences.Style = *u.Style
	}

	now := s.clock.Now()
	r.UpdatedAt = &now
	return copyRecipient(r), nil
}

// RecordGift appends an entry to the recipient's gift history. An empty
// date defaults to today.
func (s *Store) RecordGift(recipientID, gift, occasion string, cost float64, date string) (core.GiftRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipients[recipientID]
	if !ok {
		return core.GiftRecord{}, core.NotFoundf("recipient %s not found", recipientID)
	}
	if date == "" {
		date = s.clock.Now().Format("2006-01-02")
	}
	entry := core.GiftRecord{
		Date:     date,
		Occasion: occasion,
		Gift:     gift,
		Cost:     cost,
	}
	r.GiftHistory = append(r.GiftHistory, entry)
	return entry, nil
}

// AddOccasion attaches a dated occasion to an existing recipient. The date
// string is stored as given; only the derived views parse it, so an
// unparseable date surfaces there, not here.
func (s *Store) AddOccasion(recipientID, occasionType, date string, reminderDaysBefore int) (core.Occasion, error) {
	o := core.Occasion{
		ID:                 uuid.NewString(),
		RecipientID:        recipientID,
		Type:               occasionType,
		Date:               date,
		ReminderDaysBefore: reminderDaysBefore,
		Status:             core.OccasionUpcoming,
		CreatedAt:          s.clock.Now(),
	}
	if err := o.Validate(); err != nil {
		return core.Occasion{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipients[recipientID]; !ok {
		return core.Occasion{}, core.NotFoundf("recipient %s not found", recipientID)
	}
	s.occasions[o.ID] = &o
	s.occasionOrder = append(s.occasionOrder, o.ID)
	return o, nil
}

func (s *Store) GetOccasion(id string) (core.Occasion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.occasions[id]
	if !ok {
		return core.Occasion{}, core.NotFoundf("occasion %s not found", id)
	}
	return *o, nil
}

func (s *Store) OccasionsForRecipient(recipientID string) []core.Occasion {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Occasion
	for _, id := range s.occasionOrder {
		if s.occasions[id].RecipientID == recipientID {
			out = append(out, *s.occasions[id])
		}
	}
	return out
}

// UpcomingOccasion decorates an occasion with the day offset and the
// recipient name resolved at query time.
type UpcomingOccasion struct {
	core.Occasion
	DaysUntil     int    `json:"daysUntil"`
	RecipientName string `json:"recipientName"`
}

// GetUpcomingOccasions lists occasions still marked upcoming whose date
// falls within [0, daysAhead] days from today, sorted ascending by
// daysUntil with insertion order as the stable tie-break. Occasions whose
// date fails to parse are dropped silently to keep the listing total.
// A non-positive daysAhead falls back to the 30-day default window.
func (s *Store) GetUpcomingOccasions(daysAhead int) []UpcomingOccasion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upcomingLocked(daysAhead)
}

func (s *Store) upcomingLocked(daysAhead int) []UpcomingOccasion {
	if daysAhead <= 0 {
		daysAhead = 30
	}

	upcoming := make([]UpcomingOccasion, 0)
	for _, id := range s.occasionOrder {
		o := s.occasions[id]
		if o.Status != core.OccasionUpcoming {
			continue
		}
		res, err := dates.DaysUntil(s.clock, o.Date)
		if err != nil {
			continue
		}
		if res.DaysUntil < 0 || res.DaysUntil > daysAhead {
			continue
		}
		name := "Unknown"
		if r, ok := s.recipients[o.RecipientID]; ok {
			name = r.Name
		}
		upcoming = append(upcoming, UpcomingOccasion{
			Occasion:      *o,
			DaysUntil:     res.DaysUntil,
			RecipientName: name,
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DaysUntil < upcoming[j].DaysUntil
	})
	return upcoming
}

func (s *Store) MarkOccasionComplete(id string) (core.Occasion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.occasions[id]
	if !ok {
		return core.Occasion{}, core.NotFoundf("occasion %s not found", id)
	}
	o.Status = core.OccasionComplete
	return *o, nil
}

// SetTotalBudget overwrites the total unconditionally; lowering it below
// the amount already spent is allowed and simply reports as over budget.
func (s *Store) SetTotalBudget(amount float64) core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget.Total = amount
	return s.budgetCopyLocked()
}

// AddExpense records an expense against an existing recipient and bumps the
// spent accumulator. The amount's sign is not checked; refunds recorded as
// negative amounts reduce spent.
func (s *Store) AddExpense(recipientID string, amount float64, description string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipients[recipientID]
	if !ok {
		return core.Expense{}, core.NotFoundf("recipient %s not found", recipientID)
	}

	e := core.Expense{
		RecipientID:   recipientID,
		RecipientName: r.Name,
		Amount:        amount,
		Description:   description,
		Timestamp:     s.clock.Now(),
	}
	s.budget.Expenses = append(s.budget.Expenses, e)
	s.budget.Spent += amount
	return e, nil
}

type BudgetSummary struct {
	Total        float64        `json:"total"`
	Spent        float64        `json:"spent"`
	Remaining    float64        `json:"remaining"`
	Expenses     []core.Expense `json:"expenses"`
	ExpenseCount int            `json:"expenseCount"`
}

func (s *Store) GetBudgetSummary() BudgetSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.budgetCopyLocked()
	return BudgetSummary{
		Total:        b.Total,
		Spent:        b.Spent,
		Remaining:    b.Total - b.Spent,
		Expenses:     b.Expenses,
		ExpenseCount: len(b.Expenses),
	}
}

// Expenses returns the full expense log in record order.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense{}, s.budget.Expenses...)
}

type Stats struct {
	RecipientCount        int     `json:"recipientCount"`
	OccasionCount         int     `json:"occasionCount"`
	UpcomingOccasionCount int     `json:"upcomingOccasionCount"`
	TotalBudget           float64 `json:"totalBudget"`
	TotalSpent            float64 `json:"totalSpent"`
}

// GetStats summarizes the whole store. The upcoming count uses the fixed
// 30-day window regardless of any caller preference.
func (s *Store) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		RecipientCount:        len(s.recipients),
		OccasionCount:         len(s.occasions),
		UpcomingOccasionCount: len(s.upcomingLocked(30)),
		TotalBudget:           s.budget.Total,
		TotalSpent:            s.budget.Spent,
	}
}

// SearchRecipients matches a case-insensitive substring against recipient
// names and interests. A recipient matching on both is returned once.
func (s *Store) SearchRecipients(query string) []core.Recipient {
	s.mu.Lock()
	defer s.mu.Unlock()
	lower := strings.ToLower(query)
	out := make([]core.Recipient, 0)
	for _, id := range s.recipientOrder {
		r := s.recipients[id]
		if strings.Contains(strings.ToLower(r.Name), lower) {
			out = append(out, copyRecipient(r))
			continue
		}
		for _, interest := range r.Interests {
			if strings.Contains(strings.ToLower(interest), lower) {
				out = append(out, copyRecipient(r))
				break
			}
		}
	}
	return out
}

func (s *Store) budgetCopyLocked() core.Budget {
	return core.Budget{
		Total:    s.budget.Total,
		Spent:    s.budget.Spent,
		Expenses: append([]core.Expense{}, s.budget.Expenses...),
	}
}

// copyBudgetRange detaches a caller-supplied range so later mutation of the
// caller's struct cannot reach stored state.
func copyBudgetRange(br *core.BudgetRange) *core.BudgetRange {
	if br == nil {
		return nil
	}
	out := *br
	return &out
}

// copyRecipient returns a value copy whose slices do not alias the stored
// entity, so callers cannot mutate the store from outside.
func copyRecipient(r *core.Recipient) core.Recipient {
	out := *r
	out.Interests = append([]string{}, r.Interests...)
	out.GiftHistory = append([]core.GiftRecord{}, r.GiftHistory...)
	if r.Preferences.BudgetRange != nil {
		br := *r.Preferences.BudgetRange
		out.Preferences.BudgetRange = &br
	}
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
