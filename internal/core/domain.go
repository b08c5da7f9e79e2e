package core

import (
	"strings"
	"time"
)

const (
	OccasionUpcoming OccasionStatus = "upcoming"
	OccasionComplete OccasionStatus = "complete"
)

type (
	// OccasionStatus tracks the lifecycle of an occasion. The only
	// transition is upcoming -> complete; there is no way back.
	OccasionStatus string

	// BudgetRange is an optional (min, max) spending window for one
	// recipient, in whole currency units.
	BudgetRange struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}

	// Preferences holds gift-giving preferences attached to a recipient.
	Preferences struct {
		BudgetRange *BudgetRange `json:"budgetRange,omitempty"`
		Style       string       `json:"style,omitempty"`
	}

	// GiftRecord is one entry in a recipient's gift history. The history
	// is append-only; records are never edited or removed.
	GiftRecord struct {
		Date     string  `json:"date"`
		Occasion string  `json:"occasion"`
		Gift     string  `json:"gift"`
		Cost     float64 `json:"cost"`
	}

	Recipient struct {
		ID           string       `json:"id"`
		Name         string       `json:"name"`
		Age          *int         `json:"age,omitempty"`
		Interests    []string     `json:"interests"`
		Relationship string       `json:"relationship,omitempty"`
		GiftHistory  []GiftRecord `json:"giftHistory"`
		Preferences  Preferences  `json:"preferences"`
		CreatedAt    time.Time    `json:"createdAt"`
		UpdatedAt    *time.Time   `json:"updatedAt,omitempty"`
	}

	Occasion struct {
		ID                 string         `json:"id"`
		RecipientID        string         `json:"recipientId"`
		Type               string         `json:"type"`
		Date               string         `json:"date"`
		ReminderDaysBefore int            `json:"reminderDaysBefore"`
		Status             OccasionStatus `json:"status"`
		CreatedAt          time.Time      `json:"createdAt"`
	}

	// Expense is a recorded monetary outflow attributed to a recipient.
	// RecipientName is a denormalized snapshot taken at record time.
	Expense struct {
		RecipientID   string    `json:"recipientId"`
		RecipientName string    `json:"recipientName"`
		Amount        float64   `json:"amount"`
		Description   string    `json:"description"`
		Timestamp     time.Time `json:"timestamp"`
	}

	// Budget is the singleton spending state of one store. Spent is an
	// incremental accumulator that must always equal the sum of the
	// recorded expense amounts.
	Budget struct {
		Total    float64   `json:"total"`
		Spent    float64   `json:"spent"`
		Expenses []Expense `json:"expenses"`
	}
)

// DefaultReminderDaysBefore is applied when an occasion is created without
// an explicit reminder offset.
const DefaultReminderDaysBefore = 14

func (r BudgetRange) Validate() error {
	if r.Min < 0 || r.Max < 0 {
		return Validationf("budget range must not be negative")
	}
	if r.Min > r.Max {
		return Validationf("budget range min %.2f exceeds max %.2f", r.Min, r.Max)
	}
	return nil
}

func (r Recipient) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return Validationf("recipient name is required")
	}
	if r.Age != nil && *r.Age < 0 {
		return Validationf("age must not be negative")
	}
	if r.Preferences.BudgetRange != nil {
		if err := r.Preferences.BudgetRange.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (o Occasion) Validate() error {
	if o.RecipientID == "" {
		return Validationf("occasion requires a recipient id")
	}
	if strings.TrimSpace(o.Type) == "" {
		return Validationf("occasion type is required")
	}
	if strings.TrimSpace(o.Date) == "" {
		return Validationf("occasion date is required")
	}
	if o.ReminderDaysBefore < 0 {
		return Validationf("reminder days must not be negative")
	}
	return nil
}
