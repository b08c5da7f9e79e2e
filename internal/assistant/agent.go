// Package assistant assembles the gift planning agent: a Gemini-backed root
// agent wired with the planning toolset, plus two search-capable sub-agents
// for gift ideas and purchase options. Google Search cannot share an agent
// with function tools, so the search work is delegated through agent tools.
package assistant

import (
	"context"
	"fmt"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/agenttool"
	"google.golang.org/adk/tool/geminitool"
	"google.golang.org/genai"

	"giftplanner/internal/config"
)

const rootInstruction = `You are the Gift Planning Assistant.

Always ground your answers by calling the provided tools:
1. Use add_recipient_profile/update_recipient_profile/list_recipients/search_recipients to manage recipient data.
2. Use add_occasion_for_recipient/list_upcoming_occasions/calculate_days_until_event/get_reminder_dates for scheduling questions.
3. Use set_total_budget/record_gift_expense/get_budget_status/suggest_budget_allocation/check_budget_limit before giving financial advice.
4. Use generate_gift_ideas to produce tailored gift suggestions.
5. Use find_purchase_options to surface prices and links.

Never invent data that is available via a tool call. Summarise tool results clearly,
and guide the user through next best actions in their gift planning workflow.`

const giftFinderInstruction = `You are a Gift Finder for a gift planning system.

When suggesting gifts:
1. Consider the recipient's interests and hobbies
2. Take age appropriateness into account
3. Check past gift history to avoid duplicates
4. Stay within budget constraints
5. Provide diverse options (practical, fun, experiential, etc.)

For each gift suggestion, provide the gift name, an estimated price range,
and why it suits this recipient.`

const purchaseInstruction = `You are a Purchase Coordinator for a gift planning system.

When searching for products:
1. Find multiple retailers for comparison
2. Include price information
3. Note any sales or discounts
4. Provide direct purchase links when possible
5. Warn about unreliable sellers

For each product option, provide the product name, price, retailer,
and a direct link if available.`

// NewModel creates the Gemini model from configuration.
func NewModel(ctx context.Context, cfg *config.Config) (model.LLM, error) {
	m, err := gemini.NewModel(ctx, cfg.ModelName, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini model: %w", err)
	}
	return m, nil
}

// NewAgent builds the root agent with the planning tools and the two
// search-backed sub-agents.
func NewAgent(m model.LLM, ts *Toolset) (agent.Agent, error) {
	giftFinder, err := llmagent.New(llmagent.Config{
		Name:        "generate_gift_ideas",
		Model:       m,
		Description: "Brainstorms personalised gift suggestions for a recipient, optionally constrained by a price ceiling.",
		Instruction: giftFinderInstruction,
		Tools: []tool.Tool{
			geminitool.GoogleSearch{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gift finder agent: %w", err)
	}

	purchaseCoordinator, err := llmagent.New(llmagent.Config{
		Name:        "find_purchase_options",
		Model:       m,
		Description: "Searches for retailers, prices, and links for a chosen product idea.",
		Instruction: purchaseInstruction,
		Tools: []tool.Tool{
			geminitool.GoogleSearch{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create purchase coordinator agent: %w", err)
	}

	tools, err := ts.Tools()
	if err != nil {
		return nil, err
	}
	tools = append(tools, agenttool.New(giftFinder, nil), agenttool.New(purchaseCoordinator, nil))

	root, err := llmagent.New(llmagent.Config{
		Name:        "gift_planning_assistant",
		Model:       m,
		Description: "Coordinates gift planning by managing recipients, occasions, budgets, and purchases",
		Instruction: rootInstruction,
		Tools:       tools,
	})
	if err != nil {
		return nil, fmt.Errorf("create root agent: %w", err)
	}
	return root, nil
}
