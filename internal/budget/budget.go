// Package budget provides pure budget analytics: spend summaries with
// health tiers, proportional allocation suggestions, and per-item range
// checks. Nothing in here holds state.
package budget

import (
	"fmt"
	"math"

	"giftplanner/internal/core"
)

type Summary struct {
	TotalBudget    float64 `json:"totalBudget"`
	TotalSpent     float64 `json:"totalSpent"`
	Remaining      float64 `json:"remaining"`
	PercentageUsed float64 `json:"percentageUsed"`
	Status         string  `json:"status"`
	AlertLevel     string  `json:"alertLevel"`
	ExpenseCount   int     `json:"expenseCount"`
	Message        string  `json:"message"`
}

// Summarize computes spend totals and classifies budget health. 100% is
// already over_budget and 90% already near_limit, but exactly 75% still
// counts as healthy; high_usage starts strictly above it. A zero total
// budget yields 0% usage rather than dividing by zero.
func Summarize(totalBudget float64, expenses []core.Expense) Summary {
	var spent float64
	for _, e := range expenses {
		spent += e.Amount
	}
	remaining := totalBudget - spent

	var pct float64
	if totalBudget > 0 {
		pct = spent / totalBudget * 100
	}

	var status, alert string
	switch {
	case pct >= 100:
		status, alert = "over_budget", "critical"
	case pct >= 90:
		status, alert = "near_limit", "warning"
	case pct > 75:
		status, alert = "high_usage", "caution"
	default:
		status, alert = "healthy", "normal"
	}

	return Summary{
		TotalBudget:    totalBudget,
		TotalSpent:     spent,
		Remaining:      remaining,
		PercentageUsed: round1(pct),
		Status:         status,
		AlertLevel:     alert,
		ExpenseCount:   len(expenses),
		Message:        summaryMessage(totalBudget, spent, remaining, pct),
	}
}

// Participant is one candidate for a budget allocation. Priority is an
// optional weight; participants without one default to weight 1 once any
// participant carries an explicit priority.
type Participant struct {
	Name     string   `json:"name"`
	Priority *float64 `json:"priority,omitempty"`
}

type Allocation struct {
	Recipient       string  `json:"recipient"`
	SuggestedAmount float64 `json:"suggestedAmount"`
	Priority        float64 `json:"priority"`
	Percentage      float64 `json:"percentage"`
}

type AllocationPlan struct {
	TotalBudget    float64      `json:"totalBudget"`
	RecipientCount int          `json:"recipientCount"`
	Method         string       `json:"allocationMethod"`
	Allocations    []Allocation `json:"allocations"`
}

// SuggestAllocation splits a total budget across participants, weighted by
// priority when any priority is present and equally otherwise. Amounts are
// rounded per row; the rounded rows may not re-sum to the exact total, which
// is accepted rounding drift.
func SuggestAllocation(totalBudget float64, participants []Participant) (AllocationPlan, error) {
	if len(participants) == 0 {
		return AllocationPlan{}, core.Validationf("no recipients provided")
	}

	hasPriorities := false
	for _, p := range participants {
		if p.Priority != nil {
			hasPriorities = true
			break
		}
	}

	plan := AllocationPlan{
		TotalBudget:    totalBudget,
		RecipientCount: len(participants),
		Allocations:    make([]Allocation, 0, len(participants)),
	}

	if hasPriorities {
		plan.Method = "weighted"
		var totalPriority float64
		for _, p := range participants {
			totalPriority += priorityOf(p)
		}
		for _, p := range participants {
			weight := priorityOf(p) / totalPriority
			plan.Allocations = append(plan.Allocations, Allocation{
				Recipient:       p.Name,
				SuggestedAmount: round2(totalBudget * weight),
				Priority:        priorityOf(p),
				Percentage:      round1(weight * 100),
			})
		}
		return plan, nil
	}

	plan.Method = "equal"
	n := float64(len(participants))
	for _, p := range participants {
		plan.Allocations = append(plan.Allocations, Allocation{
			Recipient:       p.Name,
			SuggestedAmount: round2(totalBudget / n),
			Priority:        1,
			Percentage:      round1(100 / n),
		})
	}
	return plan, nil
}

type LimitCheck struct {
	ItemCost     float64 `json:"itemCost"`
	MinBudget    float64 `json:"minBudget"`
	MaxBudget    float64 `json:"maxBudget"`
	WithinBudget bool    `json:"withinBudget"`
	Status       string  `json:"status"`
	Message      string  `json:"message"`
}

// CheckLimit classifies an item cost against a (min, max) budget range. A
// zero-width range accepts only the exact value, reported as 100% of range;
// an inverted range is degenerate input and fails with core.ErrComputation.
func CheckLimit(itemCost, minBudget, maxBudget float64) (LimitCheck, error) {
	if minBudget > maxBudget {
		return LimitCheck{}, core.Computationf("budget range min %.2f exceeds max %.2f", minBudget, maxBudget)
	}

	check := LimitCheck{
		ItemCost:     itemCost,
		MinBudget:    minBudget,
		MaxBudget:    maxBudget,
		WithinBudget: itemCost >= minBudget && itemCost <= maxBudget,
	}

	switch {
	case itemCost < minBudget:
		check.Status = "below_range"
		check.Message = fmt.Sprintf("$%.2f is below your minimum budget of $%.2f", itemCost, minBudget)
	case itemCost > maxBudget:
		check.Status = "above_range"
		check.Message = fmt.Sprintf("$%.2f exceeds your maximum budget of $%.2f", itemCost, maxBudget)
	default:
		check.Status = "within_range"
		pct := 100.0
		if maxBudget > minBudget {
			pct = (itemCost - minBudget) / (maxBudget - minBudget) * 100
		}
		check.Message = fmt.Sprintf("$%.2f is within budget (at %.0f%% of range)", itemCost, pct)
	}
	return check, nil
}

func priorityOf(p Participant) float64 {
	if p.Priority == nil {
		return 1
	}
	return *p.Priority
}

func summaryMessage(total, spent, remaining, pct float64) string {
	switch {
	case pct >= 100:
		return fmt.Sprintf("Over budget! Spent $%.2f of $%.2f budget ($%.2f over)", spent, total, math.Abs(remaining))
	case pct >= 90:
		return fmt.Sprintf("Approaching budget limit! $%.2f remaining of $%.2f", remaining, total)
	case pct > 75:
		return fmt.Sprintf("You've used %.1f%% of your budget. $%.2f remaining.", pct, remaining)
	default:
		return fmt.Sprintf("Budget is healthy. $%.2f remaining of $%.2f (%.1f%% available)", remaining, total, 100-pct)
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
