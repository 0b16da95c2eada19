// Package realtime speaks the hosted speech-to-speech session protocol. Only
// the slice of the event surface this agent needs is modeled: session setup,
// the function-call round trip, transcripts and errors. Audio frames travel on
// the hosted side and are ignored here.
package realtime

// Server event types the bridge reacts to.
const (
	ServerEventTypeError                    = "error"
	ServerEventTypeSessionCreated           = "session.created"
	ServerEventTypeSessionUpdated           = "session.updated"
	ServerEventTypeResponseDone             = "response.done"
	ServerEventTypeFunctionCallArgsDone     = "response.function_call_arguments.done"
	ServerEventTypeInputTranscriptCompleted = "conversation.item.input_audio_transcription.completed"
	ServerEventTypeOutputTranscriptDone     = "response.output_audio_transcript.done"
)

// Client event types the bridge emits.
const (
	ClientEventTypeSessionUpdate          = "session.update"
	ClientEventTypeConversationItemCreate = "conversation.item.create"
	ClientEventTypeResponseCreate         = "response.create"
)

// APIError is the error payload of an "error" server event.
type APIError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServerEvent is a decoded server frame. Fields are populated per event type;
// unneeded ones stay zero.
type ServerEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	Error      *APIError `json:"error,omitempty"`
	ItemID     string    `json:"item_id,omitempty"`
	CallID     string    `json:"call_id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Arguments  string    `json:"arguments,omitempty"`
	Transcript string    `json:"transcript,omitempty"`
}

// ToolDeclaration advertises one callable function to the model.
type ToolDeclaration struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// SessionConfig is the session.update payload.
type SessionConfig struct {
	Instructions string            `json:"instructions,omitempty"`
	Voice        string            `json:"voice,omitempty"`
	Modalities   []string          `json:"modalities,omitempty"`
	Tools        []ToolDeclaration `json:"tools,omitempty"`
	ToolChoice   string            `json:"tool_choice,omitempty"`
}

// SessionUpdateEvent configures the live session after connect.
type SessionUpdateEvent struct {
	Type    string        `json:"type"`
	Session SessionConfig `json:"session"`
}

// FunctionCallOutputItem carries a tool result back into the conversation.
type FunctionCallOutputItem struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

// ConversationItemCreateEvent appends an item to the conversation.
type ConversationItemCreateEvent struct {
	Type string                 `json:"type"`
	Item FunctionCallOutputItem `json:"item"`
}

// ResponseCreateEvent asks the model to produce its next response.
type ResponseCreateEvent struct {
	Type string `json:"type"`
}
