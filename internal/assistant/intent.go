package assistant

import "strings"

// Intent labels produced by Classify.
const (
	IntentAddRecipient      = "add_recipient"
	IntentAddOccasion       = "add_occasion"
	IntentFindGifts         = "find_gifts"
	IntentBudget            = "budget"
	IntentPurchase          = "purchase"
	IntentUpcomingOccasions = "upcoming_occasions"
	IntentGeneral           = "general"
)

type intentRule struct {
	keywords []string
	intent   string
}

// Rules are checked in order and the first match wins, so the more specific
// phrasings sit above the catch-all nouns.
var intentRules = []intentRule{
	{[]string{"add recipient", "new recipient", "add person", "create recipient"}, IntentAddRecipient},
	{[]string{"add occasion", "new occasion", "birthday", "anniversary", "add event"}, IntentAddOccasion},
	{[]string{"find gift", "suggest gift", "gift idea", "what should i get", "gift for"}, IntentFindGifts},
	{[]string{"budget", "spending", "how much", "set budget", "track expense"}, IntentBudget},
	{[]string{"where to buy", "purchase", "find price", "compare price", "buy"}, IntentPurchase},
	{[]string{"upcoming", "next occasion", "what's coming", "remind"}, IntentUpcomingOccasions},
}

// Classify maps a free-form user message to a coarse intent label. It is used
// for routing hints and structured logs, not for gating the agent.
func Classify(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}
