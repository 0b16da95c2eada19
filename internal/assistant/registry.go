package assistant

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/spec-kit/voice-support-agent/internal/observability"
)

// Args holds the decoded arguments of a tool call. The model serializes
// loosely, so accessors coerce across JSON number/string representations.
type Args map[string]any

// String returns the named argument as a trimmed string.
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// Int returns the named argument as an int64, ok=false when absent or not a
// number.
func (a Args) Int(key string) (int64, bool) {
	switch v := a[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Handler executes a tool call and returns the plain text the model speaks
// back to the caller.
type Handler func(ctx context.Context, args Args) (string, error)

// Tool is a named callable operation the conversational model may invoke
// mid-session.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON-schema object declaring the tool's arguments.
	Parameters map[string]any
	Handler    Handler
	// FailureText, when set, is spoken instead of the generic store-failure
	// message when the handler returns an error.
	FailureText string
}

// Registry holds the declared tool surface and dispatches incoming calls.
type Registry struct {
	tools   map[string]Tool
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger, metrics *observability.Metrics) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &Registry{
		tools:   make(map[string]Tool),
		logger:  logger,
		metrics: metrics,
	}
}

// Register adds a tool. Registering the same name twice is a programming
// error and panics at startup.
func (r *Registry) Register(tool Tool) {
	if tool.Name == "" || tool.Handler == nil {
		panic("assistant: tool requires name and handler")
	}
	if _, dup := r.tools[tool.Name]; dup {
		panic("assistant: duplicate tool " + tool.Name)
	}
	r.tools[tool.Name] = tool
}

// Declarations returns the registered tools sorted by name, for session
// configuration and the ops surface.
func (r *Registry) Declarations() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dispatch decodes rawArgs and runs the named tool. The return value is
// always speakable text: unknown tools, malformed arguments and store failures
// become distinct natural-language messages, never a panic or empty string.
// A single tool failure is never fatal to the session.
func (r *Registry) Dispatch(ctx context.Context, name, rawArgs string) string {
	start := time.Now()
	tool, ok := r.tools[name]
	if !ok {
		r.logger.Warn("unknown tool called", zap.String("tool", name))
		r.metrics.RecordTool(name, "unknown", time.Since(start))
		return fmt.Sprintf("Sorry, I can't do %q.", name)
	}

	args := Args{}
	if strings.TrimSpace(rawArgs) != "" {
		if err := sonic.UnmarshalString(rawArgs, &args); err != nil {
			r.logger.Warn("malformed tool arguments",
				zap.String("tool", name),
				zap.String("arguments", rawArgs),
				zap.Error(err))
			r.metrics.RecordTool(name, "bad_args", time.Since(start))
			return "Sorry, I didn't catch that. Could you repeat the details?"
		}
	}

	reply, err := tool.Handler(ctx, args)
	if err != nil {
		r.logger.Error("tool failed", zap.String("tool", name), zap.Error(err))
		r.metrics.RecordTool(name, "error", time.Since(start))
		if tool.FailureText != "" {
			return tool.FailureText
		}
		// Store failures are surfaced distinctly from "no record found".
		return "Sorry, I'm having trouble reaching our records right now. Please try again in a moment."
	}

	r.logger.Info("tool completed",
		zap.String("tool", name),
		zap.Duration("latency", time.Since(start)))
	r.metrics.RecordTool(name, "ok", time.Since(start))
	return reply
}
