package budget

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftplanner/internal/core"
)

func expenses(amounts ...float64) []core.Expense {
	out := make([]core.Expense, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, core.Expense{Amount: a})
	}
	return out
}

func ptr(v float64) *float64 { return &v }

func TestSummarizeTierBoundaries(t *testing.T) {
	cases := []struct {
		spent  float64
		status string
		alert  string
	}{
		{0, "healthy", "normal"},
		{75, "healthy", "normal"}, // exactly 75% is still healthy
		{75.01, "high_usage", "caution"},
		{89.99, "high_usage", "caution"},
		{90, "near_limit", "warning"},
		{100, "over_budget", "critical"},
		{120, "over_budget", "critical"},
	}
	for _, tc := range cases {
		got := Summarize(100, expenses(tc.spent))
		assert.Equal(t, tc.status, got.Status, "spent=%v", tc.spent)
		assert.Equal(t, tc.alert, got.AlertLevel, "spent=%v", tc.spent)
	}
}

func TestSummarizeOverBudgetRemaining(t *testing.T) {
	got := Summarize(100, expenses(50, 70))
	assert.Equal(t, 120.0, got.TotalSpent)
	assert.Equal(t, -20.0, got.Remaining)
	assert.Equal(t, "over_budget", got.Status)
	assert.Equal(t, 2, got.ExpenseCount)
	assert.Contains(t, got.Message, "$20.00 over")
}

func TestSummarizeZeroTotalBudget(t *testing.T) {
	got := Summarize(0, expenses(10))
	assert.Equal(t, 0.0, got.PercentageUsed)
	assert.Equal(t, "healthy", got.Status)
	assert.Equal(t, -10.0, got.Remaining)
}

func TestSummarizeNoExpenses(t *testing.T) {
	got := Summarize(500, nil)
	assert.Equal(t, 0.0, got.TotalSpent)
	assert.Equal(t, 500.0, got.Remaining)
	assert.Equal(t, 0, got.ExpenseCount)
}

func TestSuggestAllocationEqualSplit(t *testing.T) {
	plan, err := SuggestAllocation(300, []Participant{{Name: "A"}, {Name: "B"}, {Name: "C"}})
	require.NoError(t, err)
	assert.Equal(t, "equal", plan.Method)
	require.Len(t, plan.Allocations, 3)
	for _, a := range plan.Allocations {
		assert.Equal(t, 100.0, a.SuggestedAmount)
		assert.Equal(t, 1.0, a.Priority)
		assert.Equal(t, 33.3, a.Percentage)
	}
}

func TestSuggestAllocationWeighted(t *testing.T) {
	plan, err := SuggestAllocation(300, []Participant{
		{Name: "A", Priority: ptr(2)},
		{Name: "B", Priority: ptr(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "weighted", plan.Method)
	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, 200.0, plan.Allocations[0].SuggestedAmount)
	assert.Equal(t, 66.7, plan.Allocations[0].Percentage)
	assert.Equal(t, 100.0, plan.Allocations[1].SuggestedAmount)
	assert.Equal(t, 33.3, plan.Allocations[1].Percentage)
}

func TestSuggestAllocationDefaultsMissingPriorityToOne(t *testing.T) {
	plan, err := SuggestAllocation(400, []Participant{
		{Name: "A", Priority: ptr(3)},
		{Name: "B"}, // no explicit priority, weight 1
	})
	require.NoError(t, err)
	assert.Equal(t, "weighted", plan.Method)
	assert.Equal(t, 300.0, plan.Allocations[0].SuggestedAmount)
	assert.Equal(t, 100.0, plan.Allocations[1].SuggestedAmount)
}

func TestSuggestAllocationEmptyRecipients(t *testing.T) {
	_, err := SuggestAllocation(300, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
}

func TestCheckLimit(t *testing.T) {
	cases := []struct {
		cost   float64
		status string
		within bool
	}{
		{10, "below_range", false},
		{20, "within_range", true}, // boundaries are part of the range
		{35, "within_range", true},
		{50, "within_range", true},
		{50.01, "above_range", false},
	}
	for _, tc := range cases {
		got, err := CheckLimit(tc.cost, 20, 50)
		require.NoError(t, err)
		assert.Equal(t, tc.status, got.Status, "cost=%v", tc.cost)
		assert.Equal(t, tc.within, got.WithinBudget, "cost=%v", tc.cost)
	}
}

func TestCheckLimitZeroWidthRange(t *testing.T) {
	exact, err := CheckLimit(30, 30, 30)
	require.NoError(t, err)
	assert.Equal(t, "within_range", exact.Status)
	assert.Contains(t, exact.Message, "100% of range")

	above, err := CheckLimit(31, 30, 30)
	require.NoError(t, err)
	assert.Equal(t, "above_range", above.Status)
}

func TestCheckLimitInvertedRange(t *testing.T) {
	_, err := CheckLimit(30, 50, 20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrComputation))
}
