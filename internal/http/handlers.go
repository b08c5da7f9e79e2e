package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"giftplanner/internal/amqp"
	"giftplanner/internal/budget"
	"giftplanner/internal/core"
	"giftplanner/internal/dates"
	"giftplanner/internal/log"
	"giftplanner/internal/store"
)

// decode unmarshals the request body. Unknown keys are dropped silently so
// clients sending extra fields are not rejected.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return core.Parsef("invalid request body: %v", err)
	}
	return nil
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Success: false,
			Error:   "unavailable",
			Message: "assistant is not configured, set GEMINI_API_KEY",
		})
		return
	}

	var req chatRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Message == "" {
		writeError(w, core.Validationf("message is required"))
		return
	}

	key := sessionKey(r)
	reply, err := s.assistant.Chat(r.Context(), key, req.Message)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Chat failed",
			log.FieldError, err,
			log.FieldSessionID, key)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Success: false,
			Error:   "internal_error",
			Message: "failed to process message",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"reply":     reply,
		"sessionId": key,
	})
}

type createRecipientRequest struct {
	Name           string   `json:"name"`
	Age            *int     `json:"age"`
	Interests      []string `json:"interests"`
	Relationship   string   `json:"relationship"`
	PreferredStyle string   `json:"preferredStyle"`
	MinBudget      *float64 `json:"minBudget"`
	MaxBudget      *float64 `json:"maxBudget"`
}

func (s *Server) handleCreateRecipient(w http.ResponseWriter, r *http.Request) {
	var req createRecipientRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var budgetRange *core.BudgetRange
	if req.MinBudget != nil && req.MaxBudget != nil {
		budgetRange = &core.BudgetRange{Min: *req.MinBudget, Max: *req.MaxBudget}
	}

	recipient, err := s.storeFrom(r).AddRecipient(store.RecipientParams{
		Name:         req.Name,
		Age:          req.Age,
		Interests:    req.Interests,
		Relationship: req.Relationship,
		BudgetRange:  budgetRange,
		Style:        req.PreferredStyle,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"recipient": recipient,
	})
}

func (s *Server) handleListRecipients(w http.ResponseWriter, r *http.Request) {
	recipients := s.storeFrom(r).ListRecipients()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"count":      len(recipients),
		"recipients": recipients,
	})
}

func (s *Server) handleSearchRecipients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, core.Validationf("query parameter is required"))
		return
	}

	matches := s.storeFrom(r).SearchRecipients(query)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"count":      len(matches),
		"recipients": matches,
	})
}

type updateRecipientRequest struct {
	Name           *string   `json:"name"`
	Age            *int      `json:"age"`
	Interests      *[]string `json:"interests"`
	Relationship   *string   `json:"relationship"`
	PreferredStyle *string   `json:"preferredStyle"`
	MinBudget      *float64  `json:"minBudget"`
	MaxBudget      *float64  `json:"maxBudget"`
}

func (s *Server) handleUpdateRecipient(w http.ResponseWriter, r *http.Request) {
	var req updateRecipientRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	update := store.RecipientUpdate{
		Name:         req.Name,
		Age:          req.Age,
		Interests:    req.Interests,
		Relationship: req.Relationship,
		Style:        req.PreferredStyle,
	}
	if req.MinBudget != nil && req.MaxBudget != nil {
		update.BudgetRange = &core.BudgetRange{Min: *req.MinBudget, Max: *req.MaxBudget}
	}

	recipient, err := s.storeFrom(r).UpdateRecipient(r.PathValue("id"), update)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"recipient": recipient,
	})
}

type recordGiftRequest struct {
	Gift     string  `json:"gift"`
	Occasion string  `json:"occasion"`
	Cost     float64 `json:"cost"`
	Date     string  `json:"date"`
}

func (s *Server) handleRecordGift(w http.ResponseWriter, r *http.Request) {
	var req recordGiftRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	entry, err := s.storeFrom(r).RecordGift(r.PathValue("id"), req.Gift, req.Occasion, req.Cost, req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"gift":    entry,
	})
}

type createOccasionRequest struct {
	RecipientID        string `json:"recipientId"`
	RecipientName      string `json:"recipientName"`
	OccasionType       string `json:"occasionType"`
	Date               string `json:"date"`
	ReminderDaysBefore *int   `json:"reminderDaysBefore"`
}

func (s *Server) handleCreateOccasion(w http.ResponseWriter, r *http.Request) {
	var req createOccasionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	st := s.storeFrom(r)

	recipientID := req.RecipientID
	recipientName := req.RecipientName
	if recipientID == "" {
		recipient, err := st.GetRecipientByName(req.RecipientName)
		if err != nil {
			writeError(w, err)
			return
		}
		recipientID = recipient.ID
		recipientName = recipient.Name
	} else if recipient, err := st.GetRecipient(recipientID); err == nil {
		recipientName = recipient.Name
	}

	reminderDays := core.DefaultReminderDaysBefore
	if req.ReminderDaysBefore != nil {
		reminderDays = *req.ReminderDaysBefore
	}

	occasion, err := st.AddOccasion(recipientID, req.OccasionType, req.Date, reminderDays)
	if err != nil {
		writeError(w, err)
		return
	}

	s.publishReminder(r, occasion, recipientName)

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"occasion": occasion,
	})
}

// publishReminder emits the reminder scheduled event for a new occasion.
// Best effort: failures are logged and never surface to the caller.
func (s *Server) publishReminder(r *http.Request, o core.Occasion, recipientName string) {
	reminders, err := dates.ReminderDates(o.Date, nil)
	if err != nil {
		return
	}
	reminderDates := make([]string, 0, len(reminders))
	for _, rem := range reminders {
		reminderDates = append(reminderDates, rem.ReminderDate)
	}

	msg := amqp.NewReminderScheduledMessage(o.ID, recipientName, o.Type, o.Date, reminderDates)
	if err := s.publisher.PublishReminderScheduled(r.Context(), msg); err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(),
			"Failed to publish reminder scheduled message", err,
			log.ComponentAMQP, log.OpPublish,
			log.LogFields{log.FieldOccasionID: o.ID})
	}
}

func (s *Server) handleUpcomingOccasions(w http.ResponseWriter, r *http.Request) {
	daysAhead := 0
	if v := r.URL.Query().Get("daysAhead"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, core.Validationf("daysAhead must be a number"))
			return
		}
		daysAhead = parsed
	}

	upcoming := s.storeFrom(r).GetUpcomingOccasions(daysAhead)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"count":     len(upcoming),
		"occasions": upcoming,
	})
}

func (s *Server) handleCompleteOccasion(w http.ResponseWriter, r *http.Request) {
	occasion, err := s.storeFrom(r).MarkOccasionComplete(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"occasion": occasion,
	})
}

type setBudgetRequest struct {
	TotalBudget float64 `json:"totalBudget"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	b := s.storeFrom(r).SetTotalBudget(req.TotalBudget)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"totalBudget": b.Total,
		"spent":       b.Spent,
		"remaining":   b.Total - b.Spent,
	})
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	st := s.storeFrom(r)
	summary := budget.Summarize(st.GetBudgetSummary().Total, st.Expenses())
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"budget":  summary,
	})
}

func (s *Server) handleBudgetAllocation(w http.ResponseWriter, r *http.Request) {
	st := s.storeFrom(r)

	total := st.GetBudgetSummary().Total
	if v := r.URL.Query().Get("total"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, core.Validationf("total must be a number"))
			return
		}
		total = parsed
	}

	participants := make([]budget.Participant, 0)
	for _, recipient := range st.ListRecipients() {
		participants = append(participants, budget.Participant{Name: recipient.Name})
	}

	plan, err := budget.SuggestAllocation(total, participants)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"plan":    plan,
	})
}

type recordExpenseRequest struct {
	RecipientID   string  `json:"recipientId"`
	RecipientName string  `json:"recipientName"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
}

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	var req recordExpenseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	st := s.storeFrom(r)

	recipientID := req.RecipientID
	if recipientID == "" {
		recipient, err := st.GetRecipientByName(req.RecipientName)
		if err != nil {
			writeError(w, err)
			return
		}
		recipientID = recipient.ID
	}

	expense, err := st.AddExpense(recipientID, req.Amount, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	summary := budget.Summarize(st.GetBudgetSummary().Total, st.Expenses())
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"expense": expense,
		"budget":  summary,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   s.storeFrom(r).GetStats(),
	})
}
