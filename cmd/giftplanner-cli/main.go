// Command giftplanner-cli is the interactive console for the gift planning
// assistant. The menu drives the planning store directly; chat mode routes
// free-form messages through the agent when a Gemini API key is configured.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"giftplanner/internal/assistant"
	"giftplanner/internal/budget"
	"giftplanner/internal/cli"
	"giftplanner/internal/core"
	"giftplanner/internal/dates"
	"giftplanner/internal/log"
	"giftplanner/internal/session"
	"giftplanner/internal/store"
)

type console struct {
	reader   *bufio.Reader
	store    *store.Store
	clock    dates.Clock
	asst     *assistant.Assistant
	sessions *session.Manager
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	clock := dates.RealClock{}
	sessions := session.NewManager(0, clock)
	defer sessions.Shutdown()

	c := &console{
		reader:   bufio.NewReader(os.Stdin),
		store:    sessions.For(session.DefaultKey),
		clock:    clock,
		sessions: sessions,
	}

	if cfg.GeminiAPIKey != "" {
		appLogger := log.New(log.Config{Level: slog.LevelWarn, Component: log.ComponentAssistant})
		ctx := context.Background()

		model, err := assistant.NewModel(ctx, cfg)
		if err != nil {
			logger.Error("Failed to create model", "error", err)
			os.Exit(1)
		}
		toolset := assistant.NewToolset(sessions, clock, nil, appLogger)
		rootAgent, err := assistant.NewAgent(model, toolset)
		if err != nil {
			logger.Error("Failed to create agent", "error", err)
			os.Exit(1)
		}
		c.asst, err = assistant.New(rootAgent, appLogger)
		if err != nil {
			logger.Error("Failed to create assistant", "error", err)
			os.Exit(1)
		}
	} else {
		fmt.Println("Note: GEMINI_API_KEY is not set. Gift suggestions and chat mode are disabled.")
	}

	c.run()
}

func (c *console) run() {
	for {
		c.printMenu()
		choice := c.prompt("Your choice (1-8): ")

		switch choice {
		case "1":
			c.addRecipient()
		case "2":
			c.addOccasion()
		case "3":
			c.giftSuggestions()
		case "4":
			c.budgetSummary()
		case "5":
			c.upcomingOccasions()
		case "6":
			c.chatMode()
		case "7":
			c.statistics()
		case "8":
			fmt.Println("\nThank you for using the Gift Planning Assistant. Goodbye!")
			return
		default:
			fmt.Println("\nInvalid choice. Please select 1-8.")
		}
	}
}

func (c *console) printMenu() {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("                 GIFT PLANNING ASSISTANT")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("\nMenu Options:")
	fmt.Println("  1. Add Recipient")
	fmt.Println("  2. Add Occasion")
	fmt.Println("  3. Get Gift Suggestions")
	fmt.Println("  4. View Budget Summary")
	fmt.Println("  5. View Upcoming Occasions")
	fmt.Println("  6. Chat with Assistant")
	fmt.Println("  7. View Statistics")
	fmt.Println("  8. Exit")
	fmt.Println("\n" + strings.Repeat("-", 60))
}

func (c *console) prompt(label string) string {
	fmt.Print(label)
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func (c *console) addRecipient() {
	fmt.Println("\n--- Add New Recipient ---")

	name := c.prompt("Recipient name: ")
	if name == "" {
		fmt.Println("Name is required.")
		return
	}

	params := store.RecipientParams{Name: name}

	if v := c.prompt("Age (press Enter to skip): "); v != "" {
		if age, err := strconv.Atoi(v); err == nil {
			params.Age = &age
		}
	}
	if v := c.prompt("Interests (comma-separated, e.g., yoga, reading): "); v != "" {
		for _, interest := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(interest); trimmed != "" {
				params.Interests = append(params.Interests, trimmed)
			}
		}
	}
	params.Relationship = c.prompt("Relationship (friend, family, colleague, etc.): ")

	minStr := c.prompt("Min budget (press Enter to skip): ")
	maxStr := c.prompt("Max budget (press Enter to skip): ")
	if minStr != "" && maxStr != "" {
		min, errMin := strconv.ParseFloat(minStr, 64)
		max, errMax := strconv.ParseFloat(maxStr, 64)
		if errMin == nil && errMax == nil {
			params.BudgetRange = &core.BudgetRange{Min: min, Max: max}
		} else {
			fmt.Println("Invalid budget values, skipping.")
		}
	}
	params.Style = c.prompt("Gift style preference (practical, luxury, etc.): ")

	recipient, err := c.store.AddRecipient(params)
	if err != nil {
		fmt.Printf("\nError: %v\n", err)
		return
	}
	fmt.Printf("\nAdded recipient %s\n", recipient.Name)
}

func (c *console) addOccasion() {
	fmt.Println("\n--- Add New Occasion ---")

	recipients := c.store.ListRecipients()
	if len(recipients) == 0 {
		fmt.Println("No recipients found. Please add a recipient first.")
		return
	}

	fmt.Println("\nAvailable recipients:")
	for i, r := range recipients {
		fmt.Printf("  %d. %s\n", i+1, r.Name)
	}

	name := c.prompt("\nRecipient name: ")
	recipient, err := c.store.GetRecipientByName(name)
	if err != nil {
		fmt.Printf("\nError: %v\n", err)
		return
	}

	occasionType := c.prompt("Occasion type (birthday, anniversary, holiday, etc.): ")
	date := c.prompt("Date (YYYY-MM-DD): ")

	reminderDays := core.DefaultReminderDaysBefore
	if v := c.prompt(fmt.Sprintf("Reminder days before (default: %d): ", core.DefaultReminderDaysBefore)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			reminderDays = parsed
		}
	}

	occasion, err := c.store.AddOccasion(recipient.ID, occasionType, date, reminderDays)
	if err != nil {
		fmt.Printf("\nError: %v\n", err)
		return
	}
	fmt.Printf("\nAdded %s on %s for %s\n", occasion.Type, occasion.Date, recipient.Name)

	if res, err := dates.DaysUntil(c.clock, date); err == nil {
		fmt.Printf("   %s\n", res.Message)
	}
}

func (c *console) giftSuggestions() {
	fmt.Println("\n--- Get Gift Suggestions ---")

	if c.asst == nil {
		fmt.Println("Gift suggestions need the assistant. Set GEMINI_API_KEY and restart.")
		return
	}

	recipients := c.store.ListRecipients()
	if len(recipients) > 0 {
		fmt.Println("\nAvailable recipients:")
		for i, r := range recipients {
			interests := r.Interests
			if len(interests) > 3 {
				interests = interests[:3]
			}
			fmt.Printf("  %d. %s (%s)\n", i+1, r.Name, strings.Join(interests, ", "))
		}
	}

	name := c.prompt("\nRecipient name (or press Enter for general ideas): ")

	var message string
	if name != "" {
		message = fmt.Sprintf("Suggest gift ideas for %s based on their profile.", name)
	} else {
		message = c.prompt("Describe what kind of gift you're looking for: ")
	}

	fmt.Println("\nSearching for gift ideas...")
	reply, err := c.asst.Chat(context.Background(), session.DefaultKey, message)
	if err != nil {
		fmt.Printf("\nError: could not generate suggestions: %v\n", err)
		return
	}
	fmt.Println("\n" + reply)
}

func (c *console) budgetSummary() {
	fmt.Println("\n--- Budget Summary ---")

	b := c.store.GetBudgetSummary()
	summary := budget.Summarize(b.Total, c.store.Expenses())

	fmt.Printf("\nTotal Budget: $%.2f\n", summary.TotalBudget)
	fmt.Printf("Total Spent:  $%.2f\n", summary.TotalSpent)
	fmt.Printf("Remaining:    $%.2f\n", summary.Remaining)
	if summary.TotalBudget > 0 {
		fmt.Printf("Used:         %.1f%%\n", summary.PercentageUsed)
		fmt.Printf("Status:       %s\n", summary.Status)
	}

	if b.ExpenseCount > 0 {
		fmt.Printf("\nExpenses (%d):\n", b.ExpenseCount)
		expenses := b.Expenses
		if len(expenses) > 5 {
			expenses = expenses[:5]
		}
		for _, e := range expenses {
			fmt.Printf("  - $%.2f for %s: %s\n", e.Amount, e.RecipientName, e.Description)
		}
	}
	fmt.Printf("\n%s\n", summary.Message)

	if b.Total == 0 {
		if strings.ToLower(c.prompt("\nWould you like to set a budget? (y/n): ")) == "y" {
			amountStr := c.prompt("Enter total budget amount: $")
			amount, err := strconv.ParseFloat(amountStr, 64)
			if err != nil {
				fmt.Println("Invalid amount")
				return
			}
			updated := c.store.SetTotalBudget(amount)
			fmt.Printf("Budget set to $%.2f\n", updated.Total)
		}
	}
}

func (c *console) upcomingOccasions() {
	fmt.Println("\n--- Upcoming Occasions ---")

	daysAhead := 30
	if v := c.prompt("\nShow occasions in next how many days? (default: 30): "); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			daysAhead = parsed
		}
	}

	upcoming := c.store.GetUpcomingOccasions(daysAhead)
	if len(upcoming) == 0 {
		fmt.Printf("No upcoming occasions in the next %d days.\n", daysAhead)
		return
	}

	fmt.Printf("Found %d upcoming occasions:\n\n", len(upcoming))
	for _, o := range upcoming {
		fmt.Printf("%s's %s\n", o.RecipientName, o.Type)
		fmt.Printf("   Date: %s (%d days away)\n", o.Date, o.DaysUntil)
		fmt.Printf("   Reminder: %d days before\n\n", o.ReminderDaysBefore)
	}
}

func (c *console) statistics() {
	fmt.Println("\n--- System Statistics ---")

	stats := c.store.GetStats()
	fmt.Printf("\nTotal Recipients:       %d\n", stats.RecipientCount)
	fmt.Printf("Total Occasions:        %d\n", stats.OccasionCount)
	fmt.Printf("Upcoming (30 days):     %d\n", stats.UpcomingOccasionCount)
	fmt.Printf("Total Budget:           $%.2f\n", stats.TotalBudget)
	fmt.Printf("Total Spent:            $%.2f\n", stats.TotalSpent)
	fmt.Printf("Remaining:              $%.2f\n", stats.TotalBudget-stats.TotalSpent)
}

func (c *console) chatMode() {
	fmt.Println("\n--- Chat Mode ---")

	if c.asst == nil {
		fmt.Println("Chat mode needs the assistant. Set GEMINI_API_KEY and restart.")
		return
	}
	fmt.Println("Type your message and press Enter. Type 'menu' to return to main menu.")

	for {
		input := c.prompt("\nYou: ")
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "menu", "exit", "quit", "back":
			return
		}

		reply, err := c.asst.Chat(context.Background(), session.DefaultKey, input)
		if err != nil {
			fmt.Printf("\nAssistant error: %v\n", err)
			continue
		}
		fmt.Printf("\nAssistant: %s\n", reply)
	}
}
