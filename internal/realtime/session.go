package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/spec-kit/voice-support-agent/internal/assistant"
	"github.com/spec-kit/voice-support-agent/internal/config"
)

// Session is one live conversation with the hosted speech-to-speech model.
// The model decides when to call a tool; the session dispatches the call
// through the registry and returns the text result. One session per process
// run; tool calls within it arrive sequentially.
type Session struct {
	cfg      config.RealtimeConfig
	registry *assistant.Registry
	logger   *zap.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once

	errMu sync.Mutex
	err   error
}

// NewSession prepares a session; Connect establishes it.
func NewSession(cfg config.RealtimeConfig, registry *assistant.Registry, logger *zap.Logger) *Session {
	return &Session{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Connect dials the realtime endpoint, configures the session with the
// declared tool surface and starts the read loop.
func (s *Session) Connect(ctx context.Context) error {
	if s.cfg.APIKey == "" {
		return errors.New("realtime: API key required")
	}

	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+s.cfg.APIKey)
	headers.Set("OpenAI-Beta", "realtime=v1")

	wsURL := fmt.Sprintf("%s?model=%s", s.cfg.BaseURL, s.cfg.Model)

	dialer := websocket.DefaultDialer
	if dialer == nil {
		dialer = &websocket.Dialer{}
	}

	dialCtx := ctx
	var cancel context.CancelFunc
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		dialCtx, cancel = context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		defer cancel()
	}

	conn, resp, err := dialer.DialContext(dialCtx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("realtime dial failed (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("realtime dial failed: %w", err)
	}
	s.conn = conn

	if err := s.sendSessionUpdate(); err != nil {
		_ = conn.Close()
		return fmt.Errorf("send session.update: %w", err)
	}

	go s.readLoop(ctx)
	return nil
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the terminal session error, if any. Blocks until the session
// ends.
func (s *Session) Err() error {
	<-s.done
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Close closes the websocket session.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), closeDeadline())
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
	return nil
}

func (s *Session) sendSessionUpdate() error {
	decls := s.registry.Declarations()
	tools := make([]ToolDeclaration, 0, len(decls))
	for _, tool := range decls {
		tools = append(tools, ToolDeclaration{
			Type:        "function",
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  tool.Parameters,
		})
	}

	return s.sendJSON(SessionUpdateEvent{
		Type: ClientEventTypeSessionUpdate,
		Session: SessionConfig{
			Instructions: s.cfg.Instructions,
			Voice:        s.cfg.Voice,
			Modalities:   []string{"audio", "text"},
			Tools:        tools,
			ToolChoice:   "auto",
		},
	})
}

func (s *Session) sendJSON(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) readLoop(ctx context.Context) {
	defer close(s.done)

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			s.setErr(err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var event ServerEvent
		if err := sonic.Unmarshal(data, &event); err != nil {
			s.logger.Warn("undecodable server event", zap.ByteString("data", data), zap.Error(err))
			continue
		}
		s.handleEvent(ctx, event)
	}
}

func (s *Session) handleEvent(ctx context.Context, event ServerEvent) {
	switch event.Type {
	case ServerEventTypeSessionCreated, ServerEventTypeSessionUpdated:
		s.logger.Info("session event", zap.String("type", event.Type))

	case ServerEventTypeInputTranscriptCompleted:
		s.logger.Info("caller said", zap.String("transcript", event.Transcript))

	case ServerEventTypeOutputTranscriptDone:
		s.logger.Info("assistant said", zap.String("transcript", event.Transcript))

	case ServerEventTypeFunctionCallArgsDone:
		s.handleFunctionCall(ctx, event)

	case ServerEventTypeError:
		if event.Error != nil {
			s.logger.Error("server error event",
				zap.String("code", event.Error.Code),
				zap.String("message", event.Error.Message))
		}
	}
}

// handleFunctionCall runs the tool and feeds the result back so the model can
// speak it. Tool failures already surface as speakable text, so the round
// trip always completes.
func (s *Session) handleFunctionCall(ctx context.Context, event ServerEvent) {
	s.logger.Info("tool call",
		zap.String("tool", event.Name),
		zap.String("call_id", event.CallID))

	output := s.registry.Dispatch(ctx, event.Name, event.Arguments)

	if err := s.sendJSON(ConversationItemCreateEvent{
		Type: ClientEventTypeConversationItemCreate,
		Item: FunctionCallOutputItem{
			Type:   "function_call_output",
			CallID: event.CallID,
			Output: output,
		},
	}); err != nil {
		s.logger.Error("send function call output", zap.Error(err))
		return
	}
	if err := s.sendJSON(ResponseCreateEvent{Type: ClientEventTypeResponseCreate}); err != nil {
		s.logger.Error("request follow-up response", zap.Error(err))
	}
}

func closeDeadline() time.Time {
	return time.Now().Add(2 * time.Second)
}

func (s *Session) setErr(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}
