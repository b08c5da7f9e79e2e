package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	adksession "google.golang.org/adk/session"
	"google.golang.org/genai"

	"giftplanner/internal/log"
)

const appName = "gift_planning_assistant"

// Assistant drives conversations through the ADK runner. Each user ID gets
// one long-lived conversation session, created lazily on the first message.
type Assistant struct {
	runner         *runner.Runner
	sessionService adksession.Service
	logger         *log.Logger

	mu       sync.Mutex
	sessions map[string]string // user ID -> conversation session ID
}

// New wires the root agent into a runner with in-memory conversation state.
func New(rootAgent agent.Agent, logger *log.Logger) (*Assistant, error) {
	sessionService := adksession.InMemoryService()

	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          rootAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("create runner: %w", err)
	}

	return &Assistant{
		runner:         r,
		sessionService: sessionService,
		logger:         logger,
	}, nil
}

func (a *Assistant) sessionFor(ctx context.Context, userID string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sessions == nil {
		a.sessions = make(map[string]string)
	}
	if id, ok := a.sessions[userID]; ok {
		return id, nil
	}

	resp, err := a.sessionService.Create(ctx, &adksession.CreateRequest{
		AppName: appName,
		UserID:  userID,
	})
	if err != nil {
		return "", fmt.Errorf("create conversation session: %w", err)
	}
	id := resp.Session.ID()
	a.sessions[userID] = id
	return id, nil
}

// Chat sends one user message through the agent and returns the combined
// response text.
func (a *Assistant) Chat(ctx context.Context, userID, message string) (string, error) {
	sessionID, err := a.sessionFor(ctx, userID)
	if err != nil {
		return "", err
	}

	a.logger.InfoContext(ctx, "Processing chat message",
		log.FieldSessionID, userID,
		log.FieldIntent, Classify(message))

	userMsg := genai.NewContentFromText(message, genai.RoleUser)

	var reply strings.Builder
	for event, err := range a.runner.Run(ctx, userID, sessionID, userMsg, agent.RunConfig{}) {
		if err != nil {
			return "", fmt.Errorf("agent run: %w", err)
		}
		if event.LLMResponse.Partial || event.LLMResponse.Content == nil {
			continue
		}
		for _, p := range event.LLMResponse.Content.Parts {
			reply.WriteString(p.Text)
		}
	}
	return reply.String(), nil
}
