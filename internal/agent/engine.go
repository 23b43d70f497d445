package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/Vatsa10/Zomatooo/internal/domain"
	"github.com/Vatsa10/Zomatooo/internal/logging"
	"github.com/Vatsa10/Zomatooo/internal/ordering"
)

// OutcomeKind classifies a tool invocation's result.
type OutcomeKind int

const (
	// OutcomeOK is a successful call with a usable payload.
	OutcomeOK OutcomeKind = iota
	// OutcomeEmpty is a structurally valid zero-result response.
	OutcomeEmpty
	// OutcomeFailed is a transport or remote-side failure.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// ToolOutcome is what a tool invocation produced. Failures are carried
// as text so the model can react conversationally; they are never
// surfaced to the end user directly.
type ToolOutcome struct {
	Tool     string
	Kind     OutcomeKind
	Text     string
	Fallback bool // a broader follow-up search was issued
}

// searchTools are the tools whose empty results trigger the fallback.
var searchTools = map[string]bool{
	ToolKeywordSearch:  true,
	ToolAllRestaurants: true,
}

// Engine executes tool calls against the ordering service and applies
// the empty-result fallback policy: when a search comes back with zero
// results, exactly one broader query runs and its summary is folded
// into the outcome text. The fallback never recurses.
type Engine struct {
	svc     ordering.Service
	timeout time.Duration // per remote call; zero means no limit
	log     *logging.Logger
}

// NewEngine creates a tool invocation engine.
func NewEngine(svc ordering.Service, timeout time.Duration, log *logging.Logger) *Engine {
	return &Engine{svc: svc, timeout: timeout, log: log.Sub("engine")}
}

// Invoke runs one tool call. Cart tools execute locally against the
// session; everything else goes to the ordering service.
func (e *Engine) Invoke(ctx context.Context, sess *domain.Session, name string, args map[string]any) ToolOutcome {
	if isCartTool(name) {
		out := executeCartTool(sess, name, args)
		e.log.Debug().Str("tool", name).Str("kind", out.Kind.String()).Msg("cart tool executed")
		return out
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	res, err := e.svc.Call(ctx, name, args)
	if err != nil {
		e.log.Warn().Str("tool", name).Err(err).Msg("tool call failed")
		return ToolOutcome{
			Tool: name,
			Kind: OutcomeFailed,
			Text: fmt.Sprintf("Error: %s. Check phone binding or location.", err),
		}
	}
	if res.IsError {
		e.log.Warn().Str("tool", name).Str("text", truncate(res.Text, 200)).Msg("tool returned error result")
		return ToolOutcome{Tool: name, Kind: OutcomeFailed, Text: res.Text}
	}

	if res.Empty() && searchTools[name] {
		return e.fallback(ctx, sess, name, res.Text)
	}

	e.log.Debug().Str("tool", name).Int("len", len(res.Text)).Msg("tool call ok")
	return ToolOutcome{Tool: name, Kind: OutcomeOK, Text: res.Text}
}

// fallback issues the single broader search and concatenates its
// summary. The fallback's own result is never re-checked for emptiness.
func (e *Engine) fallback(ctx context.Context, sess *domain.Session, name, text string) ToolOutcome {
	e.log.Info().Str("tool", name).Msg("zero results, trying broader search")

	out := ToolOutcome{Tool: name, Kind: OutcomeEmpty, Fallback: true}
	text += "\nFallback: trying a broader search..."

	args := map[string]any{}
	if sess.Location != nil {
		args["user_location"] = sess.Location.Argument()
	}

	res, err := e.svc.Call(ctx, ToolAllRestaurants, args)
	switch {
	case err != nil:
		text += fmt.Sprintf("\nBroader search failed: %s", err)
	case res.IsError:
		text += "\nBroader search failed: " + truncate(res.Text, 200)
	default:
		text += "\nAll restaurants: " + truncate(res.Text, 2000)
	}

	out.Text = text
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
