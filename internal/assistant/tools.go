package assistant

import (
	"fmt"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"giftplanner/internal/amqp"
	"giftplanner/internal/budget"
	"giftplanner/internal/core"
	"giftplanner/internal/dates"
	"giftplanner/internal/log"
	"giftplanner/internal/session"
	"giftplanner/internal/store"
)

// Toolset binds the planning tools to per-user stores. Every stateful tool
// resolves its store through the session manager keyed by the ADK user ID,
// so tool calls from different users never touch the same data.
type Toolset struct {
	sessions  *session.Manager
	clock     dates.Clock
	publisher *amqp.Client
	logger    *log.Logger
}

func NewToolset(sessions *session.Manager, clock dates.Clock, publisher *amqp.Client, logger *log.Logger) *Toolset {
	if clock == nil {
		clock = dates.RealClock{}
	}
	return &Toolset{
		sessions:  sessions,
		clock:     clock,
		publisher: publisher,
		logger:    logger,
	}
}

func (ts *Toolset) storeFor(tc tool.Context) *store.Store {
	return ts.sessions.For(tc.UserID())
}

// failure converts a domain error into the structured result shape the model
// sees. Tool handlers return these instead of Go errors so the agent can
// relay the problem to the user rather than aborting the turn.
func failure(err error) map[string]any {
	return map[string]any{
		"success": false,
		"error":   core.Classify(err),
		"message": err.Error(),
	}
}

// Tools builds the full planning toolset.
func (ts *Toolset) Tools() ([]tool.Tool, error) {
	specs := []struct {
		name        string
		description string
		build       func(functiontool.Config) (tool.Tool, error)
	}{
		{
			"add_recipient_profile",
			"Create a recipient profile. Use this whenever the user shares details about a new recipient (name required, other attributes optional).",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.addRecipient) },
		},
		{
			"update_recipient_profile",
			"Update attributes of an existing recipient identified by id or name. Only the provided fields change.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.updateRecipient) },
		},
		{
			"list_recipients",
			"Retrieve the set of known recipients. Use when you need to reference stored profiles or confirm whether someone already exists.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.listRecipients) },
		},
		{
			"search_recipients",
			"Find recipients whose name or interests contain the query string.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.searchRecipients) },
		},
		{
			"record_gift",
			"Record a gift that was given to a recipient, adding it to their gift history.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.recordGift) },
		},
		{
			"add_occasion_for_recipient",
			"Attach a dated occasion to an existing recipient so reminders and planning timelines stay accurate.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.addOccasion) },
		},
		{
			"list_upcoming_occasions",
			"View upcoming occasions within a time window (default 30 days).",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.listUpcoming) },
		},
		{
			"mark_occasion_complete",
			"Mark an occasion as complete once the gift has been handled.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.markComplete) },
		},
		{
			"calculate_days_until_event",
			"Calculate how many days remain until a specific date. Does not change any state.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.daysUntil) },
		},
		{
			"get_reminder_dates",
			"Compute reminder dates leading up to an event date, using the default 14/7/3/1 day schedule unless offsets are given.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.reminderDates) },
		},
		{
			"set_total_budget",
			"Set or update the overall gift budget. Call this when the user defines how much they plan to spend across all recipients.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.setBudget) },
		},
		{
			"record_gift_expense",
			"Log a specific gift purchase against the budget. Use when the user confirms they bought something.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.recordExpense) },
		},
		{
			"get_budget_status",
			"Summarise the budget health (total, spent, remaining, alerts). Use this before recommending expensive items.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.budgetStatus) },
		},
		{
			"suggest_budget_allocation",
			"Split a total budget across recipients, weighted by priority when priorities are given and equally otherwise.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.suggestAllocation) },
		},
		{
			"check_budget_limit",
			"Check whether an item cost falls inside a minimum/maximum budget range.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.checkLimit) },
		},
		{
			"get_planning_stats",
			"Summarise the whole planning session: recipient count, occasion counts, and budget totals.",
			func(cfg functiontool.Config) (tool.Tool, error) { return functiontool.New(cfg, ts.planningStats) },
		},
	}

	tools := make([]tool.Tool, 0, len(specs))
	for _, spec := range specs {
		t, err := spec.build(functiontool.Config{Name: spec.name, Description: spec.description})
		if err != nil {
			return nil, fmt.Errorf("create tool %s: %w", spec.name, err)
		}
		tools = append(tools, t)
	}
	return tools, nil
}

type addRecipientInput struct {
	Name           string   `json:"name"`
	Age            *int     `json:"age,omitempty"`
	Interests      []string `json:"interests,omitempty"`
	Relationship   string   `json:"relationship,omitempty"`
	PreferredStyle string   `json:"preferredStyle,omitempty"`
	MinBudget      *float64 `json:"minBudget,omitempty"`
	MaxBudget      *float64 `json:"maxBudget,omitempty"`
}

func (ts *Toolset) addRecipient(tc tool.Context, in addRecipientInput) (map[string]any, error) {
	var budgetRange *core.BudgetRange
	if in.MinBudget != nil && in.MaxBudget != nil {
		budgetRange = &core.BudgetRange{Min: *in.MinBudget, Max: *in.MaxBudget}
	}

	r, err := ts.storeFor(tc).AddRecipient(store.RecipientParams{
		Name:         in.Name,
		Age:          in.Age,
		Interests:    in.Interests,
		Relationship: in.Relationship,
		BudgetRange:  budgetRange,
		Style:        in.PreferredStyle,
	})
	if err != nil {
		return failure(err), nil
	}

	ts.logger.InfoContext(tc, "Recipient added",
		log.FieldRecipientID, r.ID,
		log.FieldTool, "add_recipient_profile")
	return map[string]any{
		"success":   true,
		"recipient": r,
		"message":   fmt.Sprintf("Added recipient %s", r.Name),
	}, nil
}

type updateRecipientInput struct {
	RecipientID    string    `json:"recipientId,omitempty"`
	Name           string    `json:"name,omitempty"`
	NewName        *string   `json:"newName,omitempty"`
	Age            *int      `json:"age,omitempty"`
	Interests      *[]string `json:"interests,omitempty"`
	Relationship   *string   `json:"relationship,omitempty"`
	PreferredStyle *string   `json:"preferredStyle,omitempty"`
	MinBudget      *float64  `json:"minBudget,omitempty"`
	MaxBudget      *float64  `json:"maxBudget,omitempty"`
}

func (ts *Toolset) updateRecipient(tc tool.Context, in updateRecipientInput) (map[string]any, error) {
	st := ts.storeFor(tc)

	id := in.RecipientID
	if id == "" {
		r, err := st.GetRecipientByName(in.Name)
		if err != nil {
			return failure(err), nil
		}
		id = r.ID
	}

	update := store.RecipientUpdate{
		Name:         in.NewName,
		Age:          in.Age,
		Interests:    in.Interests,
		Relationship: in.Relationship,
		Style:        in.PreferredStyle,
	}
	if in.MinBudget != nil && in.MaxBudget != nil {
		update.BudgetRange = &core.BudgetRange{Min: *in.MinBudget, Max: *in.MaxBudget}
	}

	r, err := st.UpdateRecipient(id, update)
	if err != nil {
		return failure(err), nil
	}
	return map[string]any{
		"success":   true,
		"recipient": r,
		"message":   fmt.Sprintf("Updated recipient %s", r.Name),
	}, nil
}

type listRecipientsInput struct{}

func (ts *Toolset) listRecipients(tc tool.Context, _ listRecipientsInput) (map[string]any, error) {
	recipients := ts.storeFor(tc).ListRecipients()
	return map[string]any{
		"success":    true,
		"count":      len(recipients),
		"recipients": recipients,
	}, nil
}

type searchRecipientsInput struct {
	Query string `json:"query"`
}

func (ts *Toolset) searchRecipients(tc tool.Context, in searchRecipientsInput) (map[string]any, error) {
	matches := ts.storeFor(tc).SearchRecipients(in.Query)
	return map[string]any{
		"success":    true,
		"count":      len(matches),
		"recipients": matches,
		"message":    fmt.Sprintf("Found %d recipients matching %q", len(matches), in.Query),
	}, nil
}

type recordGiftInput struct {
	RecipientName string  `json:"recipientName"`
	Gift          string  `json:"gift"`
	Occasion      string  `json:"occasion,omitempty"`
	Cost          float64 `json:"cost,omitempty"`
	Date          string  `json:"date,omitempty"`
}

func (ts *Toolset) recordGift(tc tool.Context, in recordGiftInput) (map[string]any, error) {
	st := ts.storeFor(tc)
	r, err := st.GetRecipientByName(in.RecipientName)
	if err != nil {
		return failure(err), nil
	}

	entry, err := st.RecordGift(r.ID, in.Gift, in.Occasion, in.Cost, in.Date)
	if err != nil {
		return failure(err), nil
	}
	return map[string]any{
		"success": true,
		"gift":    entry,
		"message": fmt.Sprintf("Recorded gift %q for %s", entry.Gift, r.Name),
	}, nil
}

type addOccasionInput struct {
	RecipientName      string `json:"recipientName"`
	OccasionType       string `json:"occasionType"`
	Date               string `json:"date"`
	ReminderDaysBefore *int   `json:"reminderDaysBefore,omitempty"`
}

func (ts *Toolset) addOccasion(tc tool.Context, in addOccasionInput) (map[string]any, error) {
	st := ts.storeFor(tc)
	r, err := st.GetRecipientByName(in.RecipientName)
	if err != nil {
		return failure(err), nil
	}

	reminderDays := core.DefaultReminderDaysBefore
	if in.ReminderDaysBefore != nil {
		reminderDays = *in.ReminderDaysBefore
	}

	o, err := st.AddOccasion(r.ID, in.OccasionType, in.Date, reminderDays)
	if err != nil {
		return failure(err), nil
	}

	ts.publishReminder(tc, o, r.Name)

	return map[string]any{
		"success":  true,
		"occasion": o,
		"message":  fmt.Sprintf("Added %s on %s for %s", o.Type, o.Date, r.Name),
	}, nil
}

// publishReminder emits a reminder scheduled event for a new occasion.
// Best effort: an unparseable date or a broker problem never fails the add.
func (ts *Toolset) publishReminder(tc tool.Context, o core.Occasion, recipientName string) {
	reminders, err := dates.ReminderDates(o.Date, nil)
	if err != nil {
		return
	}
	reminderDates := make([]string, 0, len(reminders))
	for _, r := range reminders {
		reminderDates = append(reminderDates, r.ReminderDate)
	}

	msg := amqp.NewReminderScheduledMessage(o.ID, recipientName, o.Type, o.Date, reminderDates)
	if err := ts.publisher.PublishReminderScheduled(tc, msg); err != nil {
		ts.logger.WarnContext(tc, "Failed to publish reminder scheduled message",
			log.FieldError, err,
			log.FieldOperation, log.OpPublish,
			log.FieldOccasionID, o.ID)
	}
}

type listUpcomingInput struct {
	DaysAhead int `json:"daysAhead,omitempty"`
}

func (ts *Toolset) listUpcoming(tc tool.Context, in listUpcomingInput) (map[string]any, error) {
	upcoming := ts.storeFor(tc).GetUpcomingOccasions(in.DaysAhead)
	return map[string]any{
		"success":   true,
		"count":     len(upcoming),
		"occasions": upcoming,
		"message":   fmt.Sprintf("Found %d upcoming occasions", len(upcoming)),
	}, nil
}

type markCompleteInput struct {
	OccasionID string `json:"occasionId"`
}

func (ts *Toolset) markComplete(tc tool.Context, in markCompleteInput) (map[string]any, error) {
	o, err := ts.storeFor(tc).MarkOccasionComplete(in.OccasionID)
	if err != nil {
		return failure(err), nil
	}
	return map[string]any{
		"success":  true,
		"occasion": o,
		"message":  fmt.Sprintf("Marked %s on %s as complete", o.Type, o.Date),
	}, nil
}

type daysUntilInput struct {
	Date string `json:"date"`
}

func (ts *Toolset) daysUntil(_ tool.Context, in daysUntilInput) (map[string]any, error) {
	res, err := dates.DaysUntil(ts.clock, in.Date)
	if err != nil {
		return failure(err), nil
	}
	return map[string]any{
		"success":       true,
		"daysUntil":     res.DaysUntil,
		"targetDate":    res.TargetDate,
		"formattedDate": res.FormattedDate,
		"status":        res.Status,
		"message":       res.Message,
	}, nil
}

type reminderDatesInput struct {
	Date    string `json:"date"`
	Offsets []int  `json:"offsets,omitempty"`
}

func (ts *Toolset) reminderDates(_ tool.Context, in reminderDatesInput) (map[string]any, error) {
	reminders, err := dates.ReminderDates(in.Date, in.Offsets)
	if err != nil {
		return failure(err), nil
	}
	return map[string]any{
		"success":   true,
		"reminders": reminders,
	}, nil
}

type setBudgetInput struct {
	TotalBudget float64 `json:"totalBudget"`
}

func (ts *Toolset) setBudget(tc tool.Context, in setBudgetInput) (map[string]any, error) {
	b := ts.storeFor(tc).SetTotalBudget(in.TotalBudget)
	return map[string]any{
		"success":     true,
		"totalBudget": b.Total,
		"spent":       b.Spent,
		"remaining":   b.Total - b.Spent,
		"message":     fmt.Sprintf("Budget set to $%.2f", b.Total),
	}, nil
}

type recordExpenseInput struct {
	RecipientName string  `json:"recipientName"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
}

func (ts *Toolset) recordExpense(tc tool.Context, in recordExpenseInput) (map[string]any, error) {
	st := ts.storeFor(tc)
	r, err := st.GetRecipientByName(in.RecipientName)
	if err != nil {
		return failure(err), nil
	}

	e, err := st.AddExpense(r.ID, in.Amount, in.Description)
	if err != nil {
		return failure(err), nil
	}

	ts.logger.InfoContext(tc, "Expense recorded",
		log.FieldRecipientID, r.ID,
		log.FieldAmount, e.Amount,
		log.FieldTool, "record_gift_expense")

	summary := budget.Summarize(st.GetBudgetSummary().Total, st.Expenses())
	return map[string]any{
		"success": true,
		"expense": e,
		"budget":  summary,
		"message": fmt.Sprintf("Recorded $%.2f for %s. %s", e.Amount, r.Name, summary.Message),
	}, nil
}

type budgetStatusInput struct{}

func (ts *Toolset) budgetStatus(tc tool.Context, _ budgetStatusInput) (map[string]any, error) {
	st := ts.storeFor(tc)
	b := st.GetBudgetSummary()
	if b.Total == 0 && b.ExpenseCount == 0 {
		return map[string]any{
			"success": true,
			"status":  "no_budget",
			"message": "No budget set yet",
		}, nil
	}

	summary := budget.Summarize(b.Total, st.Expenses())
	return map[string]any{
		"success": true,
		"budget":  summary,
		"message": summary.Message,
	}, nil
}

type suggestAllocationInput struct {
	TotalBudget *float64             `json:"totalBudget,omitempty"`
	Recipients  []budget.Participant `json:"recipients,omitempty"`
}

func (ts *Toolset) suggestAllocation(tc tool.Context, in suggestAllocationInput) (map[string]any, error) {
	st := ts.storeFor(tc)

	total := st.GetBudgetSummary().Total
	if in.TotalBudget != nil {
		total = *in.TotalBudget
	}

	participants := in.Recipients
	if len(participants) == 0 {
		for _, r := range st.ListRecipients() {
			participants = append(participants, budget.Participant{Name: r.Name})
		}
	}

	plan, err := budget.SuggestAllocation(total, participants)
	if err != nil {
		return failure(err), nil
	}
	return map[string]any{
		"success": true,
		"plan":    plan,
	}, nil
}

type checkLimitInput struct {
	ItemCost  float64 `json:"itemCost"`
	MinBudget float64 `json:"minBudget"`
	MaxBudget float64 `json:"maxBudget"`
}

func (ts *Toolset) checkLimit(_ tool.Context, in checkLimitInput) (map[string]any, error) {
	check, err := budget.CheckLimit(in.ItemCost, in.MinBudget, in.MaxBudget)
	if err != nil {
		return failure(err), nil
	}
	return map[string]any{
		"success": true,
		"check":   check,
		"message": check.Message,
	}, nil
}

type planningStatsInput struct{}

func (ts *Toolset) planningStats(tc tool.Context, _ planningStatsInput) (map[string]any, error) {
	stats := ts.storeFor(tc).GetStats()
	return map[string]any{
		"success": true,
		"stats":   stats,
	}, nil
}
