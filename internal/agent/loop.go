// Package agent drives the tool-calling orchestration loop: session
// state, argument injection, tool invocation with fallback, and the
// turn-by-turn exchange with the model.
package agent

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Vatsa10/Zomatooo/internal/domain"
	"github.com/Vatsa10/Zomatooo/internal/llm"
	"github.com/Vatsa10/Zomatooo/internal/location"
	"github.com/Vatsa10/Zomatooo/internal/logging"
	"github.com/Vatsa10/Zomatooo/internal/ordering"
	"github.com/Vatsa10/Zomatooo/internal/session"
)

// Canned replies emitted without a model round-trip.
const (
	replyAskLocation = "I don't have a delivery location yet. Tell me your city (e.g., 'in Vadodara') to start."
	replyGoodbye     = "Thanks for stopping by. See you next meal!"
	replyApology     = "Sorry, I'm having trouble responding right now. Please try again."
)

// LoopConfig configures the conversation loop.
type LoopConfig struct {
	Model           string
	Fallbacks       []string
	Temperature     *float64
	MaxOutputTokens int
	ToolTimeout     time.Duration // per remote tool call; zero means no limit
}

// TurnResult is the outcome of processing one user utterance.
type TurnResult struct {
	Reply     string        `json:"reply"`
	SessionID string        `json:"sessionId"`
	State     domain.State  `json:"state"`
	ToolUsed  string        `json:"toolUsed,omitempty"`
	Model     string        `json:"model,omitempty"`
	Ended     bool          `json:"ended,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// Loop is the conversation state machine. A session starts awaiting a
// location unless the saved-address fetch resolves one; once ready,
// each turn allows at most one tool call followed by exactly one
// follow-up generation.
type Loop struct {
	cfg      LoopConfig
	client   *FailoverClient
	sessions session.Store
	svc      ordering.Service
	catalog  *Catalog
	resolver *location.Resolver
	engine   *Engine
	log      *logging.Logger
}

// NewLoop creates the conversation loop.
func NewLoop(
	cfg LoopConfig,
	registry *llm.Registry,
	sessions session.Store,
	svc ordering.Service,
	catalog *Catalog,
	log *logging.Logger,
) *Loop {
	return &Loop{
		cfg:      cfg,
		client:   NewFailoverClient(registry, cfg.Model, cfg.Fallbacks, log),
		sessions: sessions,
		svc:      svc,
		catalog:  catalog,
		resolver: location.New(),
		engine:   NewEngine(svc, cfg.ToolTimeout, log),
		log:      log.Sub("loop"),
	}
}

// Turn processes one user utterance for a session and returns the
// reply. An empty sessionID starts a fresh session. Turns for the same
// session queue behind each other; distinct sessions run concurrently.
//
// A failed turn never corrupts the session: model failures produce a
// generic apology without touching history, and tool failures are fed
// back to the model as tool results rather than raised.
func (l *Loop) Turn(ctx context.Context, sessionID, text string) *TurnResult {
	start := time.Now()

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	release := l.sessions.Lock(sessionID)
	defer release()

	sess := l.sessions.Get(sessionID)
	l.bootstrap(ctx, sess)

	l.log.Info().
		Str("sessionId", sessionID).
		Str("state", string(sess.State())).
		Int("historyLen", len(sess.Messages)).
		Msg("processing turn")

	trimmed := strings.TrimSpace(text)
	if strings.EqualFold(trimmed, "quit") {
		return &TurnResult{
			Reply:     replyGoodbye,
			SessionID: sessionID,
			State:     sess.State(),
			Ended:     true,
			Duration:  time.Since(start),
		}
	}

	if sess.State() == domain.StateAwaitingLocation {
		return l.resolveTurn(sess, trimmed, start)
	}

	return l.modelTurn(ctx, sess, trimmed, start)
}

// bootstrap runs the one-time saved-address fetch. Fetch errors and
// malformed payloads leave the session unresolved, never fail the turn.
func (l *Loop) bootstrap(ctx context.Context, sess *domain.Session) {
	if sess.Bootstrapped {
		return
	}
	sess.Bootstrapped = true

	addrs, err := ordering.SavedAddresses(ctx, l.svc)
	if err != nil {
		l.log.Warn().Str("sessionId", sess.ID).Err(err).Msg("saved-address fetch failed, awaiting location from chat")
		return
	}

	sess.Addresses = addrs
	if loc, ok := l.resolver.FromSaved(addrs); ok {
		sess.Resolve(loc)
		l.log.Info().Str("sessionId", sess.ID).Str("location", loc.Name).Msg("resolved location from saved address")
	}
}

// resolveTurn handles utterances while no location is known. The model
// is never called in this state.
func (l *Loop) resolveTurn(sess *domain.Session, text string, start time.Time) *TurnResult {
	loc, ok := l.resolver.FromUtterance(text)

	var reply string
	if ok {
		sess.Resolve(loc)
		reply = "Location set to " + loc.Name + ". What would you like to order?"
		l.log.Info().Str("sessionId", sess.ID).Str("location", loc.Name).Msg("resolved location from chat")
	} else {
		reply = replyAskLocation
	}

	sess.Append(domain.Message{Role: domain.RoleUser, Content: text})
	sess.Append(domain.Message{Role: domain.RoleAssistant, Content: reply})
	l.sessions.Save(sess)

	return &TurnResult{
		Reply:     reply,
		SessionID: sess.ID,
		State:     sess.State(),
		Duration:  time.Since(start),
	}
}

// modelTurn runs the ready-state cycle: generate, optionally execute
// one tool call, then exactly one follow-up generation.
func (l *Loop) modelTurn(ctx context.Context, sess *domain.Session, text string, start time.Time) *TurnResult {
	system := BuildSystemPrompt(PromptConfig{
		Location:   sess.Location,
		PhoneBound: sess.PhoneBound,
		CartLine:   cartLine(sess),
	})

	// History for the request is assembled without touching the
	// session; turns commit only after a successful generation.
	messages := append(historyMessages(sess), llm.Message{Role: llm.RoleUser, Text: text})

	res, err := l.generate(ctx, system, messages)
	if err != nil {
		l.log.Error().Str("sessionId", sess.ID).Err(err).Msg("generation failed")
		return &TurnResult{Reply: replyApology, SessionID: sess.ID, State: sess.State(), Duration: time.Since(start)}
	}

	reply := res.Text
	var toolMsg *domain.Message

	if fc := res.FunctionCall; fc != nil {
		args := Inject(fc.Name, fc.Args, sess, text)
		outcome := l.engine.Invoke(ctx, sess, fc.Name, args)

		if fc.Name == ordering.ToolVerifyPhone && outcome.Kind == OutcomeOK &&
			strings.Contains(strings.ToLower(outcome.Text), "success") {
			sess.PhoneBound = true
		}

		toolMsg = &domain.Message{Role: domain.RoleTool, Content: outcome.Text, ToolName: fc.Name}
		messages = append(messages, llm.Message{
			Role: llm.RoleModel,
			FunctionResponse: &llm.FunctionResponse{
				Name:     fc.Name,
				Response: map[string]any{"result": outcome.Text},
			},
		})

		// Single-hop: one follow-up generation, and a tool call in
		// its output is not executed.
		follow, ferr := l.generate(ctx, system, messages)
		if ferr != nil {
			l.log.Error().Str("sessionId", sess.ID).Err(ferr).Msg("follow-up generation failed")
			reply = strings.TrimSpace(reply + "\n" + replyApology)
		} else {
			reply = strings.TrimSpace(reply + "\n" + follow.Text)
		}

		l.log.Info().
			Str("sessionId", sess.ID).
			Str("tool", fc.Name).
			Str("outcome", outcome.Kind.String()).
			Bool("fallback", outcome.Fallback).
			Msg("tool turn complete")
	}

	if reply == "" {
		reply = replyApology
	}

	sess.Append(domain.Message{Role: domain.RoleUser, Content: text})
	if toolMsg != nil {
		sess.Append(*toolMsg)
	}
	sess.Append(domain.Message{Role: domain.RoleAssistant, Content: reply})
	l.sessions.Save(sess)

	result := &TurnResult{
		Reply:     reply,
		SessionID: sess.ID,
		State:     sess.State(),
		Model:     res.Model,
		Duration:  time.Since(start),
	}
	if toolMsg != nil {
		result.ToolUsed = toolMsg.ToolName
	}
	return result
}

func (l *Loop) generate(ctx context.Context, system string, messages []llm.Message) (*llm.GenerateResult, error) {
	return l.client.Generate(ctx, llm.GenerateRequest{
		System:          system,
		Messages:        messages,
		Tools:           l.catalog.Declarations(),
		Temperature:     l.cfg.Temperature,
		MaxOutputTokens: l.cfg.MaxOutputTokens,
	})
}

// historyMessages maps the session history into the provider's turn
// format. Tool results ride as function responses on model turns.
func historyMessages(sess *domain.Session) []llm.Message {
	msgs := make([]llm.Message, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		switch m.Role {
		case domain.RoleUser:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Text: m.Content})
		case domain.RoleAssistant:
			msgs = append(msgs, llm.Message{Role: llm.RoleModel, Text: m.Content})
		case domain.RoleTool:
			msgs = append(msgs, llm.Message{
				Role: llm.RoleModel,
				FunctionResponse: &llm.FunctionResponse{
					Name:     m.ToolName,
					Response: map[string]any{"result": m.Content},
				},
			})
		}
	}
	return msgs
}

func cartLine(sess *domain.Session) string {
	if sess.Cart.Empty() {
		return ""
	}
	s := sess.Cart.Summary()
	return formatCart(s)
}
