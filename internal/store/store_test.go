package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftplanner/internal/core"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestStore() *Store {
	return New(fixedClock{now: testNow})
}

func dateIn(days int) string {
	return testNow.AddDate(0, 0, days).Format("2006-01-02")
}

func TestAddAndGetRecipientByName(t *testing.T) {
	s := newTestStore()
	added, err := s.AddRecipient(RecipientParams{Name: "Sarah", Interests: []string{"yoga", "reading"}})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, []core.GiftRecord{}, added.GiftHistory)

	for _, lookup := range []string{"Sarah", "sarah", "SARAH", "sArAh"} {
		got, err := s.GetRecipientByName(lookup)
		require.NoError(t, err, lookup)
		assert.Equal(t, added.ID, got.ID, lookup)
	}
}

func TestAddRecipientRequiresName(t *testing.T) {
	s := newTestStore()
	_, err := s.AddRecipient(RecipientParams{Name: "  "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Empty(t, s.ListRecipients())
}

func TestGetRecipientByNameDuplicatesFirstWins(t *testing.T) {
	s := newTestStore()
	first, err := s.AddRecipient(RecipientParams{Name: "Alex"})
	require.NoError(t, err)
	_, err = s.AddRecipient(RecipientParams{Name: "alex"})
	require.NoError(t, err)

	got, err := s.GetRecipientByName("ALEX")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestListRecipientsInsertionOrder(t *testing.T) {
	s := newTestStore()
	names := []string{"Zoe", "Adam", "Mia"}
	for _, n := range names {
		_, err := s.AddRecipient(RecipientParams{Name: n})
		require.NoError(t, err)
	}
	listed := s.ListRecipients()
	require.Len(t, listed, 3)
	for i, n := range names {
		assert.Equal(t, n, listed[i].Name)
	}
}

func TestUpdateRecipientAllowList(t *testing.T) {
	s := newTestStore()
	age := 30
	added, err := s.AddRecipient(RecipientParams{Name: "Sarah", Age: &age, Interests: []string{"yoga"}})
	require.NoError(t, err)
	assert.Nil(t, added.UpdatedAt)

	interests := []string{"climbing", "pottery"}
	updated, err := s.UpdateRecipient(added.ID, RecipientUpdate{Interests: &interests})
	require.NoError(t, err)
	assert.Equal(t, interests, updated.Interests)
	require.NotNil(t, updated.UpdatedAt)

	// Unrelated fields stay untouched.
	got, err := s.GetRecipient(added.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Age)
	assert.Equal(t, 30, *got.Age)
	assert.Equal(t, "Sarah", got.Name)
}

func TestUpdateRecipientPreferences(t *testing.T) {
	s := newTestStore()
	added, err := s.AddRecipient(RecipientParams{Name: "Sarah"})
	require.NoError(t, err)

	style := "practical"
	updated, err := s.UpdateRecipient(added.ID, RecipientUpdate{
		BudgetRange: &core.BudgetRange{Min: 20, Max: 80},
		Style:       &style,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Preferences.BudgetRange)
	assert.Equal(t, 20.0, updated.Preferences.BudgetRange.Min)
	assert.Equal(t, "practical", updated.Preferences.Style)
}

func TestBudgetRangeInputIsDetached(t *testing.T) {
	s := newTestStore()

	br := &core.BudgetRange{Min: 20, Max: 80}
	added, err := s.AddRecipient(RecipientParams{Name: "Sarah", BudgetRange: br})
	require.NoError(t, err)

	// Mutating the caller's struct after the call must not reach the store.
	br.Max = 9000
	got, err := s.GetRecipient(added.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Preferences.BudgetRange)
	assert.Equal(t, 80.0, got.Preferences.BudgetRange.Max)

	update := &core.BudgetRange{Min: 10, Max: 50}
	_, err = s.UpdateRecipient(added.ID, RecipientUpdate{BudgetRange: update})
	require.NoError(t, err)

	update.Min = -1
	got, err = s.GetRecipient(added.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Preferences.BudgetRange.Min)
}

func TestUpdateRecipientNotFound(t *testing.T) {
	s := newTestStore()
	_, err := s.UpdateRecipient("missing", RecipientUpdate{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestRecordGiftAppendsHistory(t *testing.T) {
	s := newTestStore()
	added, err := s.AddRecipient(RecipientParams{Name: "Sarah"})
	require.NoError(t, err)

	entry, err := s.RecordGift(added.ID, "Yoga mat", "birthday", 45.50, "")
	require.NoError(t, err)
	assert.Equal(t, testNow.Format("2006-01-02"), entry.Date) // defaults to today

	_, err = s.RecordGift(added.ID, "Book", "holiday", 20, "2024-12-24")
	require.NoError(t, err)

	got, err := s.GetRecipient(added.ID)
	require.NoError(t, err)
	require.Len(t, got.GiftHistory, 2)
	assert.Equal(t, "Yoga mat", got.GiftHistory[0].Gift)
	assert.Equal(t, "2024-12-24", got.GiftHistory[1].Date)

	_, err = s.RecordGift("missing", "Book", "holiday", 20, "")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestAddOccasionUnknownRecipientDoesNotMutate(t *testing.T) {
	s := newTestStore()
	_, err := s.AddOccasion("missing", "birthday", dateIn(10), core.DefaultReminderDaysBefore)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.Empty(t, s.GetUpcomingOccasions(365))

	stats := s.GetStats()
	assert.Equal(t, 0, stats.OccasionCount)
}

func TestGetUpcomingOccasionsWindowAndSort(t *testing.T) {
	s := newTestStore()
	r, err := s.AddRecipient(RecipientParams{Name: "Sarah"})
	require.NoError(t, err)

	within, err := s.AddOccasion(r.ID, "birthday", dateIn(30), 14)
	require.NoError(t, err)
	_, err = s.AddOccasion(r.ID, "anniversary", dateIn(31), 14) // just outside
	require.NoError(t, err)
	soon, err := s.AddOccasion(r.ID, "graduation", dateIn(3), 7)
	require.NoError(t, err)
	today, err := s.AddOccasion(r.ID, "holiday", dateIn(0), 1)
	require.NoError(t, err)
	_, err = s.AddOccasion(r.ID, "party", dateIn(-1), 1) // already past
	require.NoError(t, err)

	got := s.GetUpcomingOccasions(30)
	require.Len(t, got, 3)
	assert.Equal(t, today.ID, got[0].ID)
	assert.Equal(t, soon.ID, got[1].ID)
	assert.Equal(t, within.ID, got[2].ID)
	assert.Equal(t, 0, got[0].DaysUntil)
	assert.Equal(t, 30, got[2].DaysUntil)
	assert.Equal(t, "Sarah", got[0].RecipientName)
}

func TestGetUpcomingOccasionsDropsUnparseableDates(t *testing.T) {
	s := newTestStore()
	r, err := s.AddRecipient(RecipientParams{Name: "Sarah"})
	require.NoError(t, err)

	_, err = s.AddOccasion(r.ID, "birthday", "sometime in summer", 14)
	require.NoError(t, err) // creation does not validate parseability

	ok, err := s.AddOccasion(r.ID, "holiday", dateIn(5), 14)
	require.NoError(t, err)

	got := s.GetUpcomingOccasions(30)
	require.Len(t, got, 1)
	assert.Equal(t, ok.ID, got[0].ID)
}

func TestGetUpcomingOccasionsStableTieBreak(t *testing.T) {
	s := newTestStore()
	r, err := s.AddRecipient(RecipientParams{Name: "Sarah"})
	require.NoError(t, err)

	first, err := s.AddOccasion(r.ID, "birthday", dateIn(5), 14)
	require.NoError(t, err)
	second, err := s.AddOccasion(r.ID, "anniversary", dateIn(5), 14)
	require.NoError(t, err)

	got := s.GetUpcomingOccasions(30)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
}

func TestMarkOccasionComplete(t *testing.T) {
	s := newTestStore()
	r, err := s.AddRecipient(RecipientParams{Name: "Sarah"})
	require.NoError(t, err)
	o, err := s.AddOccasion(r.ID, "birthday", dateIn(5), 14)
	require.NoError(t, err)
	assert.Equal(t, core.OccasionUpcoming, o.Status)

	done, err := s.MarkOccasionComplete(o.ID)
	require.NoError(t, err)
	assert.Equal(t, core.OccasionComplete, done.Status)

	// Completed occasions no longer show up as upcoming.
	assert.Empty(t, s.GetUpcomingOccasions(30))

	_, err = s.MarkOccasionComplete("missing")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestSpentTracksExpenseLog(t *testing.T) {
	s := newTestStore()
	r, err := s.AddRecipient(RecipientParams{Name: "Sarah"})
	require.NoError(t, err)

	amounts := []float64{25.50, 100, -10, 0, 3.25}
	var want float64
	for _, a := range amounts {
		_, err := s.AddExpense(r.ID, a, "gift")
		require.NoError(t, err)
		want += a

		// Invariant: the accumulator always equals the sum over the log.
		var recomputed float64
		for _, e := range s.Expenses() {
			recomputed += e.Amount
		}
		summary := s.GetBudgetSummary()
		assert.InDelta(t, recomputed, summary.Spent, 1e-9)
		assert.InDelta(t, want, summary.Spent, 1e-9)
	}
}

func TestAddExpenseSnapshotsRecipientName(t *testing.T) {
	s := newTestStore()
	r, err := s.AddRecipient(RecipientParams{Name: "Sarah"})
	require.NoError(t, err)

	e, err := s.AddExpense(r.ID, 40, "scarf")
	require.NoError(t, err)
	assert.Equal(t, "Sarah", e.RecipientName)

	// Renaming afterwards must not rewrite the recorded snapshot.
	newName := "Sara"
	_, err = s.UpdateRecipient(r.ID, RecipientUpdate{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Sarah", s.Expenses()[0].RecipientName)

	_, err = s.AddExpense("missing", 5, "card")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestBudgetSummaryAndStats(t *testing.T) {
	s := newTestStore()
	r, err := s.AddRecipient(RecipientParams{Name: "Sarah"})
	require.NoError(t, err)

	s.SetTotalBudget(500)
	_, err = s.AddExpense(r.ID, 120, "gift")
	require.NoError(t, err)
	_, err = s.AddOccasion(r.ID, "birthday", dateIn(10), 14)
	require.NoError(t, err)
	_, err = s.AddOccasion(r.ID, "anniversary", dateIn(90), 14)
	require.NoError(t, err)

	summary := s.GetBudgetSummary()
	assert.Equal(t, 500.0, summary.Total)
	assert.Equal(t, 120.0, summary.Spent)
	assert.Equal(t, 380.0, summary.Remaining)
	assert.Equal(t, 1, summary.ExpenseCount)

	stats := s.GetStats()
	assert.Equal(t, 1, stats.RecipientCount)
	assert.Equal(t, 2, stats.OccasionCount)
	assert.Equal(t, 1, stats.UpcomingOccasionCount) // fixed 30-day window
	assert.Equal(t, 500.0, stats.TotalBudget)
	assert.Equal(t, 120.0, stats.TotalSpent)
}

func TestSetTotalBudgetOverwritesUnconditionally(t *testing.T) {
	s := newTestStore()
	r, err := s.AddRecipient(RecipientParams{Name: "Sarah"})
	require.NoError(t, err)
	s.SetTotalBudget(100)
	_, err = s.AddExpense(r.ID, 80, "gift")
	require.NoError(t, err)

	// Lowering below spent is allowed; the summary just goes negative.
	b := s.SetTotalBudget(50)
	assert.Equal(t, 50.0, b.Total)
	assert.Equal(t, -30.0, s.GetBudgetSummary().Remaining)
}

func TestSearchRecipients(t *testing.T) {
	s := newTestStore()
	_, err := s.AddRecipient(RecipientParams{Name: "Sarah", Interests: []string{"yoga", "reading"}})
	require.NoError(t, err)
	_, err = s.AddRecipient(RecipientParams{Name: "Yolanda", Interests: []string{"chess"}})
	require.NoError(t, err)
	_, err = s.AddRecipient(RecipientParams{Name: "Bob", Interests: []string{"cooking"}})
	require.NoError(t, err)

	// "yo" matches Sarah via interest and Yolanda via name; each once.
	got := s.SearchRecipients("YO")
	require.Len(t, got, 2)
	assert.Equal(t, "Sarah", got[0].Name)
	assert.Equal(t, "Yolanda", got[1].Name)

	assert.Empty(t, s.SearchRecipients("zzz"))
}

func TestReturnedCopiesDoNotAliasStore(t *testing.T) {
	s := newTestStore()
	added, err := s.AddRecipient(RecipientParams{Name: "Sarah", Interests: []string{"yoga"}})
	require.NoError(t, err)

	added.Interests[0] = "tampered"
	got, err := s.GetRecipient(added.ID)
	require.NoError(t, err)
	assert.Equal(t, "yoga", got.Interests[0])
}

func TestOccasionsForRecipient(t *testing.T) {
	s := newTestStore()
	a, err := s.AddRecipient(RecipientParams{Name: "A"})
	require.NoError(t, err)
	b, err := s.AddRecipient(RecipientParams{Name: "B"})
	require.NoError(t, err)

	_, err = s.AddOccasion(a.ID, "birthday", dateIn(10), 14)
	require.NoError(t, err)
	_, err = s.AddOccasion(b.ID, "birthday", dateIn(20), 14)
	require.NoError(t, err)
	_, err = s.AddOccasion(a.ID, "holiday", dateIn(40), 14)
	require.NoError(t, err)

	got := s.OccasionsForRecipient(a.ID)
	require.Len(t, got, 2)
	assert.Equal(t, "birthday", got[0].Type)
	assert.Equal(t, "holiday", got[1].Type)
}
